package core

import (
	"context"

	"prospecia/pkg/domain"
)

// CreateIngestion records a new inbound data batch. New ingestions always
// start pending.
func (s *Service) CreateIngestion(ctx context.Context, actor Actor, ingestion domain.Ingestion) (domain.Ingestion, error) {
	return createEntity(ctx, s, ingestionSpec, actor, ingestion)
}

// GetIngestion fetches an ingestion record by ID. Cancelled ingestions are
// hidden unless includeExcluded is set.
func (s *Service) GetIngestion(ctx context.Context, actor Actor, id string, includeExcluded bool) (domain.Ingestion, error) {
	return getEntity(ctx, s, ingestionSpec, actor, id, includeExcluded)
}

// ListIngestions returns one page of the tenant's ingestion records.
func (s *Service) ListIngestions(ctx context.Context, actor Actor, opts ListOptions) (Page[domain.Ingestion], error) {
	return listEntities(ctx, s, ingestionSpec, actor, opts)
}

// UpdateIngestion applies a partial field-change map. Status moves follow the
// processing graph (pendente, processando, concluida, falha, cancelada).
func (s *Service) UpdateIngestion(ctx context.Context, actor Actor, id string, changes map[string]any, reason string) (domain.Ingestion, error) {
	return updateEntity(ctx, s, ingestionSpec, actor, id, changes, reason)
}

// SoftDeleteIngestion cancels an ingestion. Cancellation is the terminal
// soft-delete status for this kind.
func (s *Service) SoftDeleteIngestion(ctx context.Context, actor Actor, id, reason string) (domain.Ingestion, error) {
	return softDeleteEntity(ctx, s, ingestionSpec, actor, id, reason)
}

// IngestionHistory returns the append-only history log.
func (s *Service) IngestionHistory(ctx context.Context, actor Actor, id string) ([]domain.HistoryEntry, error) {
	return entityHistory(ctx, s, ingestionSpec, actor, id)
}
