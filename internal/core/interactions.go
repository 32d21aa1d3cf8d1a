package core

import (
	"context"

	"prospecia/pkg/domain"
)

// CreateInteraction persists a new CRM interaction.
func (s *Service) CreateInteraction(ctx context.Context, actor Actor, interaction domain.Interaction) (domain.Interaction, error) {
	return createEntity(ctx, s, interactionSpec, actor, interaction)
}

// GetInteraction fetches an interaction by ID.
func (s *Service) GetInteraction(ctx context.Context, actor Actor, id string, includeExcluded bool) (domain.Interaction, error) {
	return getEntity(ctx, s, interactionSpec, actor, id, includeExcluded)
}

// ListInteractions returns one page of the tenant's interactions.
func (s *Service) ListInteractions(ctx context.Context, actor Actor, opts ListOptions) (Page[domain.Interaction], error) {
	return listEntities(ctx, s, interactionSpec, actor, opts)
}

// UpdateInteraction applies a partial field-change map.
func (s *Service) UpdateInteraction(ctx context.Context, actor Actor, id string, changes map[string]any, reason string) (domain.Interaction, error) {
	return updateEntity(ctx, s, interactionSpec, actor, id, changes, reason)
}

// SoftDeleteInteraction marks an interaction excluded.
func (s *Service) SoftDeleteInteraction(ctx context.Context, actor Actor, id, reason string) (domain.Interaction, error) {
	return softDeleteEntity(ctx, s, interactionSpec, actor, id, reason)
}

// InteractionHistory returns the append-only history log.
func (s *Service) InteractionHistory(ctx context.Context, actor Actor, id string) ([]domain.HistoryEntry, error) {
	return entityHistory(ctx, s, interactionSpec, actor, id)
}
