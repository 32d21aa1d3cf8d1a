package core

import (
	"context"
	"sort"

	"prospecia/pkg/domain"
)

// CreateConsent records a new LGPD consent. The status must be stated
// explicitly: there is no implicit initial consent state.
func (s *Service) CreateConsent(ctx context.Context, actor Actor, consent domain.Consent) (domain.Consent, error) {
	return createEntity(ctx, s, consentSpec, actor, consent)
}

// GetConsent fetches a consent row by ID.
func (s *Service) GetConsent(ctx context.Context, actor Actor, id string, includeExcluded bool) (domain.Consent, error) {
	return getEntity(ctx, s, consentSpec, actor, id, includeExcluded)
}

// ListConsents returns one page of the tenant's consent rows across all versions.
func (s *Service) ListConsents(ctx context.Context, actor Actor, opts ListOptions) (Page[domain.Consent], error) {
	return listEntities(ctx, s, consentSpec, actor, opts)
}

// UpdateConsent applies a partial field-change map. Changing consent terms
// belongs in CreateConsentVersion; this handles status moves such as
// revocation and incidental metadata fixes.
func (s *Service) UpdateConsent(ctx context.Context, actor Actor, id string, changes map[string]any, reason string) (domain.Consent, error) {
	return updateEntity(ctx, s, consentSpec, actor, id, changes, reason)
}

// SoftDeleteConsent marks a consent row excluded.
func (s *Service) SoftDeleteConsent(ctx context.Context, actor Actor, id, reason string) (domain.Consent, error) {
	return softDeleteEntity(ctx, s, consentSpec, actor, id, reason)
}

// ConsentHistory returns the append-only history log of one consent row.
func (s *Service) ConsentHistory(ctx context.Context, actor Actor, id string) ([]domain.HistoryEntry, error) {
	return entityHistory(ctx, s, consentSpec, actor, id)
}

// CreateConsentVersion records updated consent terms as a new row sharing the
// base consent identity with an incremented version. Earlier rows stay
// untouched so the full consent trail is reconstructable.
func (s *Service) CreateConsentVersion(ctx context.Context, actor Actor, baseConsentID string, consent domain.Consent) (domain.Consent, error) {
	op := "consent.create_version"
	start := s.clock.Now()
	var created domain.Consent
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		latest := 0
		found := false
		for _, existing := range tx.Snapshot().ListConsents() {
			if existing.TenantID != actor.TenantID || existing.BaseConsentID != baseConsentID {
				continue
			}
			found = true
			if existing.Version > latest {
				latest = existing.Version
			}
		}
		if !found {
			return domain.NotFoundError{Entity: domain.EntityConsent, ID: baseConsentID}
		}
		consent.ID = ""
		consent.TenantID = actor.TenantID
		consent.CreatedBy = actor.ID
		consent.UpdatedBy = actor.ID
		consent.BaseConsentID = baseConsentID
		consent.Version = latest + 1
		if err := consent.Validate(); err != nil {
			return err
		}
		consent.AppendHistory(actor.ID, domain.HistoryActionCreate, nil, "", s.clock.Now())
		var err error
		created, err = tx.CreateConsent(consent)
		return err
	})
	s.observe(ctx, op, start, err)
	if err != nil {
		return created, err
	}
	s.publishAudit(ctx, domain.EntityConsent, created.ID, actor, "consent.version_created", map[string]any{
		"base_consent_id": baseConsentID,
		"version":         created.Version,
	})
	return created, nil
}

// ConsentVersions returns every version row sharing a base consent identity,
// ordered by version.
func (s *Service) ConsentVersions(ctx context.Context, actor Actor, baseConsentID string) ([]domain.Consent, error) {
	op := "consent.versions"
	start := s.clock.Now()
	var out []domain.Consent
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		for _, c := range view.ListConsents() {
			if c.TenantID == actor.TenantID && c.BaseConsentID == baseConsentID {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			return domain.NotFoundError{Entity: domain.EntityConsent, ID: baseConsentID}
		}
		return nil
	})
	s.observe(ctx, op, start, err)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// LatestConsent returns the highest-version row of a base consent.
func (s *Service) LatestConsent(ctx context.Context, actor Actor, baseConsentID string) (domain.Consent, error) {
	versions, err := s.ConsentVersions(ctx, actor, baseConsentID)
	if err != nil {
		return domain.Consent{}, err
	}
	return versions[len(versions)-1], nil
}
