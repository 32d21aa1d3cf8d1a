package core

import (
	"context"

	"prospecia/pkg/domain"
)

// CreateClient persists a new client in the actor's tenant.
func (s *Service) CreateClient(ctx context.Context, actor Actor, client domain.Client) (domain.Client, error) {
	client.CNPJ = domain.NormalizeCNPJ(client.CNPJ)
	return createEntity(ctx, s, clientSpec, actor, client)
}

// GetClient fetches a client by ID. Soft-deleted clients are hidden unless
// includeExcluded is set.
func (s *Service) GetClient(ctx context.Context, actor Actor, id string, includeExcluded bool) (domain.Client, error) {
	return getEntity(ctx, s, clientSpec, actor, id, includeExcluded)
}

// ListClients returns one page of the tenant's clients.
func (s *Service) ListClients(ctx context.Context, actor Actor, opts ListOptions) (Page[domain.Client], error) {
	return listEntities(ctx, s, clientSpec, actor, opts)
}

// UpdateClient applies a partial field-change map to a client. The caller's
// change map is never mutated.
func (s *Service) UpdateClient(ctx context.Context, actor Actor, id string, changes map[string]any, reason string) (domain.Client, error) {
	if raw, ok := changes["cnpj"].(string); ok {
		normalized := make(map[string]any, len(changes))
		for field, value := range changes {
			normalized[field] = value
		}
		normalized["cnpj"] = domain.NormalizeCNPJ(raw)
		changes = normalized
	}
	return updateEntity(ctx, s, clientSpec, actor, id, changes, reason)
}

// SoftDeleteClient marks a client excluded. Repeat deletions are no-ops.
func (s *Service) SoftDeleteClient(ctx context.Context, actor Actor, id, reason string) (domain.Client, error) {
	return softDeleteEntity(ctx, s, clientSpec, actor, id, reason)
}

// ClientHistory returns the client's append-only history log.
func (s *Service) ClientHistory(ctx context.Context, actor Actor, id string) ([]domain.HistoryEntry, error) {
	return entityHistory(ctx, s, clientSpec, actor, id)
}
