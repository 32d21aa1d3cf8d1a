package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"prospecia/pkg/domain"
)

// kindSpec binds one lifecycle entity kind to the generic engine: field
// accessors, validation, and the store adapter closures the generic operations
// dispatch through.
type kindSpec[T any] struct {
	entity   domain.EntityType
	opPrefix string

	meta      func(*T) *domain.Base
	status    func(*T) string
	setStatus func(*T, string)
	validate  func(T) error

	// JSON field names callers may never patch through Update.
	protected map[string]struct{}

	// requireReason forces a non-empty justification on updates.
	requireReason bool

	create func(domain.Transaction, T) (T, error)
	update func(domain.Transaction, string, func(*T) error) (T, error)
	find   func(domain.TransactionView, string) (T, bool)
	list   func(domain.TransactionView) []T
}

// baseProtectedFields are stripped from every update payload regardless of
// kind. Lifecycle metadata only changes through dedicated operations.
func baseProtectedFields(extra ...string) map[string]struct{} {
	fields := map[string]struct{}{
		"id":         {},
		"tenant_id":  {},
		"created_by": {},
		"created_at": {},
		"updated_by": {},
		"updated_at": {},
		"history":    {},
	}
	for _, f := range extra {
		fields[f] = struct{}{}
	}
	return fields
}

func (k kindSpec[T]) excluded() string {
	status, _ := domain.ExcludedStatus(k.entity)
	return status
}

// visible reports whether the entity should surface to the caller given the
// tenant scope and the excluded-status filter.
func (k kindSpec[T]) visible(e *T, actor Actor, includeExcluded bool) bool {
	if k.meta(e).TenantID != actor.TenantID {
		return false
	}
	if includeExcluded {
		return true
	}
	return k.status(e) != k.excluded()
}

// createEntity persists a new entity: tenant stamping, initial status
// defaulting, status enum checking, validation, and the creation history
// entry. Supplied statuses must belong to the kind's enum and may not be
// the terminal excluded value.
func createEntity[T any](ctx context.Context, s *Service, spec kindSpec[T], actor Actor, input T) (T, error) {
	op := spec.opPrefix + ".create"
	start := s.clock.Now()
	var created T
	err := func() error {
		meta := spec.meta(&input)
		if actor.TenantID == "" {
			return domain.ValidationError{Entity: spec.entity, Field: "tenant_id", Reason: "actor tenant is required"}
		}
		meta.TenantID = actor.TenantID
		meta.CreatedBy = actor.ID
		meta.UpdatedBy = actor.ID
		switch status := spec.status(&input); {
		case status == "":
			initial, ok := domain.InitialStatus(spec.entity)
			if !ok {
				return domain.ValidationError{Entity: spec.entity, Field: "status", Reason: "status must be set explicitly"}
			}
			spec.setStatus(&input, initial)
		case !domain.ValidStatus(spec.entity, status):
			return domain.ValidationError{Entity: spec.entity, Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
		case status == spec.excluded():
			// The excluded status is only reachable through soft delete,
			// which records the history entry a born-excluded entity lacks.
			return domain.ValidationError{Entity: spec.entity, Field: "status", Reason: "entities cannot be created excluded"}
		}
		if err := spec.validate(input); err != nil {
			return err
		}
		meta.AppendHistory(actor.ID, domain.HistoryActionCreate, nil, "", start)
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = spec.create(tx, input)
			return err
		})
		return err
	}()
	s.observe(ctx, op, start, err)
	if err != nil {
		return created, err
	}
	s.publishAudit(ctx, spec.entity, spec.meta(&created).ID, actor, spec.opPrefix+".created", map[string]any{
		"status": spec.status(&created),
	})
	return created, nil
}

// getEntity fetches one entity within the actor's tenant. Excluded entities
// are reported as absent unless includeExcluded is set.
func getEntity[T any](ctx context.Context, s *Service, spec kindSpec[T], actor Actor, id string, includeExcluded bool) (T, error) {
	op := spec.opPrefix + ".get"
	start := s.clock.Now()
	var out T
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		found, ok := spec.find(view, id)
		if !ok || !spec.visible(&found, actor, includeExcluded) {
			return domain.NotFoundError{Entity: spec.entity, ID: id}
		}
		out = found
		return nil
	})
	s.observe(ctx, op, start, err)
	return out, err
}

// ListOptions scope a list call. Skip and Limit page over the stable
// creation-time ordering; a zero Limit returns everything after Skip.
type ListOptions struct {
	IncludeExcluded bool
	Skip            int
	Limit           int
}

// Page is one window of a tenant's entities. Total is the size of the whole
// filtered set, not of the window.
type Page[T any] struct {
	Items []T
	Total int
	Skip  int
	Limit int
}

// listEntities returns one page of the actor's tenant slice of a kind,
// sorted by creation time then ID for deterministic pagination.
func listEntities[T any](ctx context.Context, s *Service, spec kindSpec[T], actor Actor, opts ListOptions) (Page[T], error) {
	op := spec.opPrefix + ".list"
	start := s.clock.Now()
	var matched []T
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		for _, e := range spec.list(view) {
			e := e
			if spec.visible(&e, actor, opts.IncludeExcluded) {
				matched = append(matched, e)
			}
		}
		return nil
	})
	s.observe(ctx, op, start, err)
	if err != nil {
		return Page[T]{}, err
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := spec.meta(&matched[i]), spec.meta(&matched[j])
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return paginate(matched, opts), nil
}

// paginate windows a sorted, filtered result set per the skip/limit options.
func paginate[T any](matched []T, opts ListOptions) Page[T] {
	page := Page[T]{Total: len(matched), Skip: opts.Skip, Limit: opts.Limit}
	skip := opts.Skip
	if skip < 0 {
		skip = 0
	}
	if skip > len(matched) {
		skip = len(matched)
	}
	items := matched[skip:]
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	page.Items = items
	return page
}

// updateEntity applies a partial field-change map. Unknown and protected
// fields are rejected, status moves are policy-checked, and updates that
// change nothing leave the entity (and its history) untouched.
func updateEntity[T any](ctx context.Context, s *Service, spec kindSpec[T], actor Actor, id string, changes map[string]any, reason string) (T, error) {
	op := spec.opPrefix + ".update"
	start := s.clock.Now()
	var out T
	if spec.requireReason && strings.TrimSpace(reason) == "" {
		err := domain.ValidationError{Entity: spec.entity, Field: "reason", Reason: "required"}
		s.observe(ctx, op, start, err)
		return out, err
	}
	var changedFields map[string]any
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		current, ok := spec.find(tx.Snapshot(), id)
		if !ok || !spec.visible(&current, actor, false) {
			return domain.NotFoundError{Entity: spec.entity, ID: id}
		}
		merged := current
		changed, err := mergeChanges(spec.entity, &merged, changes, spec.protected)
		if err != nil {
			return err
		}
		if len(changed) == 0 {
			out = current
			return nil
		}
		if from, to := spec.status(&current), spec.status(&merged); from != to {
			if !domain.CanTransition(spec.entity, from, to) {
				return domain.InvalidTransitionError{Entity: spec.entity, ID: id, Field: "status", From: from, To: to}
			}
		}
		if err := spec.validate(merged); err != nil {
			return err
		}
		out, err = spec.update(tx, id, func(e *T) error {
			history := spec.meta(e).History
			*e = merged
			meta := spec.meta(e)
			meta.History = history
			meta.UpdatedBy = actor.ID
			meta.AppendHistory(actor.ID, domain.HistoryActionUpdate, changed, reason, s.clock.Now())
			return nil
		})
		if err == nil {
			changedFields = changed
		}
		return err
	})
	s.observe(ctx, op, start, err)
	if err != nil {
		return out, err
	}
	if len(changedFields) > 0 {
		s.publishAudit(ctx, spec.entity, id, actor, spec.opPrefix+".updated", map[string]any{
			"changed_fields": changedFields,
			"reason":         reason,
		})
	}
	return out, nil
}

// softDeleteEntity moves the entity to its terminal excluded status through
// the same transition policy as any other status move. The reason is
// mandatory for every deletion. Deleting an already-excluded entity succeeds
// without touching state or history.
func softDeleteEntity[T any](ctx context.Context, s *Service, spec kindSpec[T], actor Actor, id, reason string) (T, error) {
	op := spec.opPrefix + ".soft_delete"
	start := s.clock.Now()
	var out T
	if strings.TrimSpace(reason) == "" {
		err := domain.ValidationError{Entity: spec.entity, Field: "reason", Reason: "required"}
		s.observe(ctx, op, start, err)
		return out, err
	}
	var applied bool
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		current, ok := spec.find(tx.Snapshot(), id)
		if !ok || spec.meta(&current).TenantID != actor.TenantID {
			return domain.NotFoundError{Entity: spec.entity, ID: id}
		}
		excluded := spec.excluded()
		from := spec.status(&current)
		if from == excluded {
			out = current
			return nil
		}
		if !domain.CanTransition(spec.entity, from, excluded) {
			return domain.InvalidTransitionError{Entity: spec.entity, ID: id, Field: "status", From: from, To: excluded}
		}
		var err error
		out, err = spec.update(tx, id, func(e *T) error {
			spec.setStatus(e, excluded)
			meta := spec.meta(e)
			meta.UpdatedBy = actor.ID
			meta.AppendHistory(actor.ID, domain.HistoryActionSoftDelete, map[string]any{"status": excluded}, reason, s.clock.Now())
			return nil
		})
		if err == nil {
			applied = true
		}
		return err
	})
	s.observe(ctx, op, start, err)
	if err != nil {
		return out, err
	}
	if applied {
		s.publishAudit(ctx, spec.entity, id, actor, spec.opPrefix+".soft_deleted", map[string]any{
			"status": spec.excluded(),
			"reason": reason,
		})
	}
	return out, nil
}

// entityHistory returns the append-only history log. Excluded entities remain
// readable here so the soft-delete entry itself stays auditable.
func entityHistory[T any](ctx context.Context, s *Service, spec kindSpec[T], actor Actor, id string) ([]domain.HistoryEntry, error) {
	op := spec.opPrefix + ".history"
	start := s.clock.Now()
	var out []domain.HistoryEntry
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		found, ok := spec.find(view, id)
		if !ok || !spec.visible(&found, actor, true) {
			return domain.NotFoundError{Entity: spec.entity, ID: id}
		}
		out = domain.CloneHistory(spec.meta(&found).History)
		return nil
	})
	s.observe(ctx, op, start, err)
	return out, err
}

// mergeChanges applies a JSON field-change map onto the entity and reports
// which fields actually changed value. Unknown fields fail decoding, protected
// fields are rejected up front.
func mergeChanges[T any](entity domain.EntityType, target *T, changes map[string]any, protected map[string]struct{}) (map[string]any, error) {
	if len(changes) == 0 {
		return nil, nil
	}
	for field := range changes {
		if _, ok := protected[field]; ok {
			return nil, domain.ValidationError{Entity: entity, Field: field, Reason: "field cannot be updated"}
		}
	}
	before, err := json.Marshal(target)
	if err != nil {
		return nil, fmt.Errorf("encode current state: %w", err)
	}
	var beforeFields map[string]any
	if err := json.Unmarshal(before, &beforeFields); err != nil {
		return nil, fmt.Errorf("decode current state: %w", err)
	}
	patch, err := json.Marshal(changes)
	if err != nil {
		return nil, domain.ValidationError{Entity: entity, Field: "changes", Reason: "change set is not serialisable"}
	}
	dec := json.NewDecoder(bytes.NewReader(patch))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return nil, domain.ValidationError{Entity: entity, Field: "changes", Reason: err.Error()}
	}
	after, err := json.Marshal(target)
	if err != nil {
		return nil, fmt.Errorf("encode merged state: %w", err)
	}
	var afterFields map[string]any
	if err := json.Unmarshal(after, &afterFields); err != nil {
		return nil, fmt.Errorf("decode merged state: %w", err)
	}
	changed := map[string]any{}
	for field := range changes {
		if !reflect.DeepEqual(beforeFields[field], afterFields[field]) {
			changed[field] = afterFields[field]
		}
	}
	return changed, nil
}
