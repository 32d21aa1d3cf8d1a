package domain

import (
	"context"
	"time"
)

// AuditEvent is the best-effort notification emitted after every successful
// lifecycle mutation. Delivery is fire-and-forget: sink failures never roll
// back or fail the mutation that produced the event.
type AuditEvent struct {
	Entity    EntityType     `json:"entity"`
	EntityID  string         `json:"entity_id"`
	TenantID  string         `json:"tenant_id"`
	ActorID   string         `json:"actor_id"`
	EventType string         `json:"event_type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// AuditSink consumes lifecycle audit events. Implementations must be safe
// for concurrent use; errors are logged and swallowed by the caller.
type AuditSink interface {
	Publish(ctx context.Context, event AuditEvent) error
}

// NoopAuditSink discards every event. It is the default sink and the one
// used by tests that do not assert on audit delivery.
type NoopAuditSink struct{}

// Publish discards the event.
func (NoopAuditSink) Publish(context.Context, AuditEvent) error { return nil }
