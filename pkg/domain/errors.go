package domain

import "fmt"

// NotFoundError reports that an entity is absent, belongs to another tenant,
// or is hidden by the default excluded-status filter. Tenant mismatches are
// indistinguishable from missing records to avoid tenant-existence leakage.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InvalidTransitionError reports a status or stage move rejected by the
// entity kind's transition policy. The entity and its history are untouched.
type InvalidTransitionError struct {
	Entity EntityType
	ID     string
	Field  string
	From   string
	To     string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s: illegal %s transition %s -> %s", e.Entity, e.ID, e.Field, e.From, e.To)
}

// ValidationError reports a domain-field rule violation detected before any
// mutation or history append.
type ValidationError struct {
	Entity EntityType
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Entity, e.Field, e.Reason)
}

// RuleViolationError is returned when a transaction is blocked by rules.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
