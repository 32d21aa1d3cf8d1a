package core

import (
	"context"
	"fmt"
	"strings"

	"prospecia/pkg/domain"
)

// CreateOpportunity persists a new opportunity. Every opportunity enters the
// pipeline at the intelligence stage; later stages are only reachable through
// TransitionOpportunityStage so the transition log stays complete.
func (s *Service) CreateOpportunity(ctx context.Context, actor Actor, opp domain.Opportunity) (domain.Opportunity, error) {
	if opp.Stage == "" {
		opp.Stage = domain.StageIntelligence
	} else if opp.Stage != domain.StageIntelligence {
		reason := "new opportunities start at the intelligence stage"
		if !domain.ValidStage(opp.Stage) {
			reason = fmt.Sprintf("unknown stage %q", opp.Stage)
		}
		return domain.Opportunity{}, domain.ValidationError{Entity: domain.EntityOpportunity, Field: "stage", Reason: reason}
	}
	opp.StageTransitions = nil
	return createEntity(ctx, s, opportunitySpec, actor, opp)
}

// GetOpportunity fetches an opportunity by ID.
func (s *Service) GetOpportunity(ctx context.Context, actor Actor, id string, includeExcluded bool) (domain.Opportunity, error) {
	return getEntity(ctx, s, opportunitySpec, actor, id, includeExcluded)
}

// ListOpportunities returns one page of the tenant's opportunities.
func (s *Service) ListOpportunities(ctx context.Context, actor Actor, opts ListOptions) (Page[domain.Opportunity], error) {
	return listEntities(ctx, s, opportunitySpec, actor, opts)
}

// UpdateOpportunity applies a partial field-change map. Stage moves are
// rejected here: they go through TransitionOpportunityStage.
func (s *Service) UpdateOpportunity(ctx context.Context, actor Actor, id string, changes map[string]any, reason string) (domain.Opportunity, error) {
	return updateEntity(ctx, s, opportunitySpec, actor, id, changes, reason)
}

// SoftDeleteOpportunity marks an opportunity excluded.
func (s *Service) SoftDeleteOpportunity(ctx context.Context, actor Actor, id, reason string) (domain.Opportunity, error) {
	return softDeleteEntity(ctx, s, opportunitySpec, actor, id, reason)
}

// OpportunityHistory returns the append-only history log.
func (s *Service) OpportunityHistory(ctx context.Context, actor Actor, id string) ([]domain.HistoryEntry, error) {
	return entityHistory(ctx, s, opportunitySpec, actor, id)
}

// TransitionOpportunityStage advances an opportunity one step along the
// pipeline. The move lands in both the stage transition log and the general
// history.
func (s *Service) TransitionOpportunityStage(ctx context.Context, actor Actor, id string, target domain.OpportunityStage, reason string) (domain.Opportunity, error) {
	op := "opportunity.transition_stage"
	start := s.clock.Now()
	var out domain.Opportunity
	if strings.TrimSpace(reason) == "" {
		err := domain.ValidationError{Entity: domain.EntityOpportunity, Field: "reason", Reason: "required"}
		s.observe(ctx, op, start, err)
		return out, err
	}
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		current, ok := tx.Snapshot().FindOpportunity(id)
		if !ok || !opportunitySpec.visible(&current, actor, false) {
			return domain.NotFoundError{Entity: domain.EntityOpportunity, ID: id}
		}
		if !domain.CanTransitionStage(current.Stage, target) {
			return domain.InvalidTransitionError{
				Entity: domain.EntityOpportunity,
				ID:     id,
				Field:  "stage",
				From:   string(current.Stage),
				To:     string(target),
			}
		}
		now := s.clock.Now()
		var err error
		out, err = tx.UpdateOpportunity(id, func(o *domain.Opportunity) error {
			o.StageTransitions = append(o.StageTransitions, domain.StageTransition{
				FromStage: o.Stage,
				ToStage:   target,
				ActorID:   actor.ID,
				Reason:    reason,
				Timestamp: now,
			})
			o.Stage = target
			o.UpdatedBy = actor.ID
			o.AppendHistory(actor.ID, domain.HistoryActionStageTransition, map[string]any{
				"stage": string(target),
			}, reason, now)
			return nil
		})
		return err
	})
	s.observe(ctx, op, start, err)
	if err != nil {
		return out, err
	}
	s.publishAudit(ctx, domain.EntityOpportunity, id, actor, "opportunity.stage_transitioned", map[string]any{
		"stage":  string(target),
		"reason": reason,
	})
	return out, nil
}

// OpportunityStageTransitions returns the ordered stage transition log.
func (s *Service) OpportunityStageTransitions(ctx context.Context, actor Actor, id string) ([]domain.StageTransition, error) {
	op := "opportunity.stage_transitions"
	start := s.clock.Now()
	var out []domain.StageTransition
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		found, ok := view.FindOpportunity(id)
		if !ok || !opportunitySpec.visible(&found, actor, true) {
			return domain.NotFoundError{Entity: domain.EntityOpportunity, ID: id}
		}
		out = domain.CloneStageTransitions(found.StageTransitions)
		return nil
	})
	s.observe(ctx, op, start, err)
	return out, err
}
