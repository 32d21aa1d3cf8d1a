// Package audit provides audit sink implementations for lifecycle events.
// The NATS sink publishes each event as JSON on a per-entity subject so
// downstream consumers (compliance exports, notification fan-out) can filter
// by entity kind.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"prospecia/pkg/domain"
)

const defaultSubjectPrefix = "prospecia.audit."

// NATSConfig configures the NATS audit sink.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	Name          string
	Conn          *nats.Conn // optional pre-established connection
}

// NATSSink publishes audit events to NATS subjects of the form
// "<prefix><entity>", e.g. "prospecia.audit.client".
type NATSSink struct {
	publish       func(subject string, data []byte) error
	conn          *nats.Conn
	ownsConn      bool
	subjectPrefix string
}

var _ domain.AuditSink = (*NATSSink)(nil)

// NewNATSSink connects to NATS (unless a connection is supplied) and returns
// the sink. The caller owns Close.
func NewNATSSink(cfg NATSConfig) (*NATSSink, error) {
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = defaultSubjectPrefix
	}
	conn := cfg.Conn
	ownsConn := false
	if conn == nil {
		url := cfg.URL
		if url == "" {
			url = nats.DefaultURL
		}
		name := cfg.Name
		if name == "" {
			name = "prospecia-audit"
		}
		var err error
		conn, err = nats.Connect(url, nats.Name(name))
		if err != nil {
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		ownsConn = true
	}
	return &NATSSink{
		publish:       conn.Publish,
		conn:          conn,
		ownsConn:      ownsConn,
		subjectPrefix: prefix,
	}, nil
}

// Subject returns the subject an event of the given entity kind lands on.
func (s *NATSSink) Subject(entity domain.EntityType) string {
	return s.subjectPrefix + string(entity)
}

// Publish encodes the event as JSON and publishes it. The context is checked
// before publishing; the NATS client call itself is non-blocking.
func (s *NATSSink) Publish(ctx context.Context, event domain.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	if err := s.publish(s.Subject(event.Entity), data); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

// Close drains the connection when the sink established it.
func (s *NATSSink) Close() {
	if s.ownsConn && s.conn != nil {
		_ = s.conn.Drain()
	}
}
