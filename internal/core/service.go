// Package core exposes the transactional lifecycle service for the ProspecIA
// domain: tenant-scoped CRUD with append-only history, soft deletes, status
// transition enforcement, and fire-and-forget audit publication.
package core

import (
	"context"
	"time"

	"prospecia/internal/infra/blob"
	"prospecia/pkg/domain"
)

// auditPublishTimeout bounds how long a commit waits on the audit sink before
// giving up and logging the failure.
const auditPublishTimeout = 2 * time.Second

// Logger is the minimal structured logging contract the service depends on.
// Key/value pairs follow the message.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now invokes the wrapped function.
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// MetricsRecorder receives one observation per service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, op string, success bool, duration time.Duration)
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

// Actor identifies who performs an operation and which tenant scope applies.
type Actor struct {
	ID       string
	TenantID string
}

// Service provides the lifecycle operations over a persistent store.
type Service struct {
	store   domain.PersistentStore
	logger  Logger
	audit   domain.AuditSink
	metrics MetricsRecorder
	clock   Clock
	blobs   blob.Store
}

// Option customises service construction.
type Option func(*Service)

// WithLogger installs a structured logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuditSink installs the sink receiving lifecycle audit events. Publish
// failures are logged and never fail the originating operation.
func WithAuditSink(sink domain.AuditSink) Option {
	return func(s *Service) {
		if sink != nil {
			s.audit = sink
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetricsRecorder installs a metrics recorder observing every operation.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithBlobStore installs the object store used by history archive exports.
func WithBlobStore(store blob.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.blobs = store
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		logger:  noopLogger{},
		audit:   domain.NoopAuditSink{},
		metrics: noopMetricsRecorder{},
		clock:   systemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying persistent store.
func (s *Service) Store() domain.PersistentStore { return s.store }

func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	s.metrics.Observe(ctx, op, err == nil, s.clock.Now().Sub(start))
}

// publishAudit delivers a lifecycle event to the audit sink. The commit has
// already happened: failures here must not surface to the caller.
func (s *Service) publishAudit(ctx context.Context, entity domain.EntityType, entityID string, actor Actor, eventType string, payload map[string]any) {
	event := domain.AuditEvent{
		Entity:    entity,
		EntityID:  entityID,
		TenantID:  actor.TenantID,
		ActorID:   actor.ID,
		EventType: eventType,
		Payload:   payload,
		Timestamp: s.clock.Now(),
	}
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditPublishTimeout)
	defer cancel()
	if err := s.audit.Publish(publishCtx, event); err != nil {
		s.logger.Warn("audit publish failed",
			"event", eventType,
			"entity", string(entity),
			"entity_id", entityID,
			"error", err)
	}
}
