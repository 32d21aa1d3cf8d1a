package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"prospecia/internal/infra/blob"
	"prospecia/pkg/domain"
)

// ArchiveDocument is the JSON payload written per entity by archive exports.
// It captures the full append-only history plus, for opportunities, the stage
// transition log.
type ArchiveDocument struct {
	Entity           domain.EntityType        `json:"entity"`
	EntityID         string                   `json:"entity_id"`
	TenantID         string                   `json:"tenant_id"`
	ExportedAt       time.Time                `json:"exported_at"`
	ExportedBy       string                   `json:"exported_by"`
	History          []domain.HistoryEntry    `json:"history"`
	StageTransitions []domain.StageTransition `json:"stage_transitions,omitempty"`
}

// ArchiveKey returns the blob key an entity archive is stored under.
func ArchiveKey(tenantID string, entity domain.EntityType, id string) string {
	return fmt.Sprintf("archive/%s/%s/%s.json", tenantID, entity, id)
}

// ExportHistoryArchive writes the entity's history as a JSON document to the
// configured blob store and returns the stored blob info. Exports overwrite
// any previous archive for the same entity, so re-running is safe.
func (s *Service) ExportHistoryArchive(ctx context.Context, actor Actor, entity domain.EntityType, id string) (blob.Info, error) {
	start := s.clock.Now()
	info, err := s.exportHistoryArchive(ctx, actor, entity, id)
	s.observe(ctx, "archive.export", start, err)
	return info, err
}

func (s *Service) exportHistoryArchive(ctx context.Context, actor Actor, entity domain.EntityType, id string) (blob.Info, error) {
	if s.blobs == nil {
		return blob.Info{}, fmt.Errorf("no blob store configured")
	}
	doc := ArchiveDocument{
		Entity:     entity,
		EntityID:   id,
		TenantID:   actor.TenantID,
		ExportedAt: s.clock.Now(),
		ExportedBy: actor.ID,
	}
	var err error
	switch entity {
	case domain.EntityClient:
		doc.History, err = s.ClientHistory(ctx, actor, id)
	case domain.EntityFundingSource:
		doc.History, err = s.FundingSourceHistory(ctx, actor, id)
	case domain.EntityOpportunity:
		doc.History, err = s.OpportunityHistory(ctx, actor, id)
		if err == nil {
			doc.StageTransitions, err = s.OpportunityStageTransitions(ctx, actor, id)
		}
	case domain.EntityInstitute:
		doc.History, err = s.InstituteHistory(ctx, actor, id)
	case domain.EntityProject:
		doc.History, err = s.ProjectHistory(ctx, actor, id)
	case domain.EntityInteraction:
		doc.History, err = s.InteractionHistory(ctx, actor, id)
	case domain.EntityIngestion:
		doc.History, err = s.IngestionHistory(ctx, actor, id)
	case domain.EntityConsent:
		doc.History, err = s.ConsentHistory(ctx, actor, id)
	default:
		return blob.Info{}, domain.ValidationError{Entity: entity, Field: "entity", Reason: "kind does not carry history"}
	}
	if err != nil {
		return blob.Info{}, err
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return blob.Info{}, err
	}
	key := ArchiveKey(actor.TenantID, entity, id)
	info, err := s.blobs.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata: map[string]string{
			"tenant_id": actor.TenantID,
			"entity":    string(entity),
		},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("archive %s %s: %w", entity, id, err)
	}
	s.logger.Info("history archive exported",
		"entity", string(entity),
		"entity_id", id,
		"key", info.Key,
		"size_bytes", info.Size)
	return info, nil
}

// ExportTenantArchive exports the history of every lifecycle entity visible
// to the actor's tenant, excluded records included. Returns the stored blobs
// in export order.
func (s *Service) ExportTenantArchive(ctx context.Context, actor Actor) ([]blob.Info, error) {
	start := s.clock.Now()
	infos, err := s.exportTenantArchive(ctx, actor)
	s.observe(ctx, "archive.export_tenant", start, err)
	return infos, err
}

func (s *Service) exportTenantArchive(ctx context.Context, actor Actor) ([]blob.Info, error) {
	if s.blobs == nil {
		return nil, fmt.Errorf("no blob store configured")
	}
	ids := make(map[domain.EntityType][]string)
	clients, err := s.ListClients(ctx, actor, ListOptions{IncludeExcluded: true})
	if err != nil {
		return nil, err
	}
	for _, c := range clients.Items {
		ids[domain.EntityClient] = append(ids[domain.EntityClient], c.ID)
	}
	sources, err := s.ListFundingSources(ctx, actor, ListOptions{IncludeExcluded: true})
	if err != nil {
		return nil, err
	}
	for _, fs := range sources.Items {
		ids[domain.EntityFundingSource] = append(ids[domain.EntityFundingSource], fs.ID)
	}
	opps, err := s.ListOpportunities(ctx, actor, ListOptions{IncludeExcluded: true})
	if err != nil {
		return nil, err
	}
	for _, o := range opps.Items {
		ids[domain.EntityOpportunity] = append(ids[domain.EntityOpportunity], o.ID)
	}
	institutes, err := s.ListInstitutes(ctx, actor, ListOptions{IncludeExcluded: true})
	if err != nil {
		return nil, err
	}
	for _, i := range institutes.Items {
		ids[domain.EntityInstitute] = append(ids[domain.EntityInstitute], i.ID)
	}
	projects, err := s.ListProjects(ctx, actor, ListOptions{IncludeExcluded: true})
	if err != nil {
		return nil, err
	}
	for _, p := range projects.Items {
		ids[domain.EntityProject] = append(ids[domain.EntityProject], p.ID)
	}
	interactions, err := s.ListInteractions(ctx, actor, ListOptions{IncludeExcluded: true})
	if err != nil {
		return nil, err
	}
	for _, i := range interactions.Items {
		ids[domain.EntityInteraction] = append(ids[domain.EntityInteraction], i.ID)
	}
	ingestions, err := s.ListIngestions(ctx, actor, ListOptions{IncludeExcluded: true})
	if err != nil {
		return nil, err
	}
	for _, i := range ingestions.Items {
		ids[domain.EntityIngestion] = append(ids[domain.EntityIngestion], i.ID)
	}
	consents, err := s.ListConsents(ctx, actor, ListOptions{IncludeExcluded: true})
	if err != nil {
		return nil, err
	}
	for _, c := range consents.Items {
		ids[domain.EntityConsent] = append(ids[domain.EntityConsent], c.ID)
	}
	var infos []blob.Info
	for _, kind := range domain.LifecycleKinds() {
		for _, id := range ids[kind] {
			info, err := s.exportHistoryArchive(ctx, actor, kind, id)
			if err != nil {
				return infos, err
			}
			infos = append(infos, info)
		}
	}
	return infos, nil
}
