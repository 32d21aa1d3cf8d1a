package core

import (
	"context"

	"prospecia/pkg/domain"
)

// CreateFundingSource persists a new funding source in the actor's tenant.
func (s *Service) CreateFundingSource(ctx context.Context, actor Actor, source domain.FundingSource) (domain.FundingSource, error) {
	return createEntity(ctx, s, fundingSourceSpec, actor, source)
}

// GetFundingSource fetches a funding source by ID.
func (s *Service) GetFundingSource(ctx context.Context, actor Actor, id string, includeExcluded bool) (domain.FundingSource, error) {
	return getEntity(ctx, s, fundingSourceSpec, actor, id, includeExcluded)
}

// ListFundingSources returns one page of the tenant's funding sources.
func (s *Service) ListFundingSources(ctx context.Context, actor Actor, opts ListOptions) (Page[domain.FundingSource], error) {
	return listEntities(ctx, s, fundingSourceSpec, actor, opts)
}

// UpdateFundingSource applies a partial field-change map.
func (s *Service) UpdateFundingSource(ctx context.Context, actor Actor, id string, changes map[string]any, reason string) (domain.FundingSource, error) {
	return updateEntity(ctx, s, fundingSourceSpec, actor, id, changes, reason)
}

// SoftDeleteFundingSource marks a funding source excluded.
func (s *Service) SoftDeleteFundingSource(ctx context.Context, actor Actor, id, reason string) (domain.FundingSource, error) {
	return softDeleteEntity(ctx, s, fundingSourceSpec, actor, id, reason)
}

// FundingSourceHistory returns the append-only history log.
func (s *Service) FundingSourceHistory(ctx context.Context, actor Actor, id string) ([]domain.HistoryEntry, error) {
	return entityHistory(ctx, s, fundingSourceSpec, actor, id)
}
