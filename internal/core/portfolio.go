package core

import (
	"context"
	"sort"

	"prospecia/pkg/domain"
)

// Institute, project, and competence operations form the research portfolio
// side of the domain.

// CreateInstitute persists a new institute in the actor's tenant.
func (s *Service) CreateInstitute(ctx context.Context, actor Actor, institute domain.Institute) (domain.Institute, error) {
	return createEntity(ctx, s, instituteSpec, actor, institute)
}

// GetInstitute fetches an institute by ID.
func (s *Service) GetInstitute(ctx context.Context, actor Actor, id string, includeExcluded bool) (domain.Institute, error) {
	return getEntity(ctx, s, instituteSpec, actor, id, includeExcluded)
}

// ListInstitutes returns one page of the tenant's institutes.
func (s *Service) ListInstitutes(ctx context.Context, actor Actor, opts ListOptions) (Page[domain.Institute], error) {
	return listEntities(ctx, s, instituteSpec, actor, opts)
}

// UpdateInstitute applies a partial field-change map.
func (s *Service) UpdateInstitute(ctx context.Context, actor Actor, id string, changes map[string]any, reason string) (domain.Institute, error) {
	return updateEntity(ctx, s, instituteSpec, actor, id, changes, reason)
}

// SoftDeleteInstitute marks an institute excluded.
func (s *Service) SoftDeleteInstitute(ctx context.Context, actor Actor, id, reason string) (domain.Institute, error) {
	return softDeleteEntity(ctx, s, instituteSpec, actor, id, reason)
}

// InstituteHistory returns the append-only history log.
func (s *Service) InstituteHistory(ctx context.Context, actor Actor, id string) ([]domain.HistoryEntry, error) {
	return entityHistory(ctx, s, instituteSpec, actor, id)
}

// CreateProject persists a new institute project.
func (s *Service) CreateProject(ctx context.Context, actor Actor, project domain.Project) (domain.Project, error) {
	return createEntity(ctx, s, projectSpec, actor, project)
}

// GetProject fetches a project by ID.
func (s *Service) GetProject(ctx context.Context, actor Actor, id string, includeExcluded bool) (domain.Project, error) {
	return getEntity(ctx, s, projectSpec, actor, id, includeExcluded)
}

// ListProjects returns one page of the tenant's projects.
func (s *Service) ListProjects(ctx context.Context, actor Actor, opts ListOptions) (Page[domain.Project], error) {
	return listEntities(ctx, s, projectSpec, actor, opts)
}

// UpdateProject applies a partial field-change map.
func (s *Service) UpdateProject(ctx context.Context, actor Actor, id string, changes map[string]any, reason string) (domain.Project, error) {
	return updateEntity(ctx, s, projectSpec, actor, id, changes, reason)
}

// SoftDeleteProject marks a project excluded.
func (s *Service) SoftDeleteProject(ctx context.Context, actor Actor, id, reason string) (domain.Project, error) {
	return softDeleteEntity(ctx, s, projectSpec, actor, id, reason)
}

// ProjectHistory returns the append-only history log.
func (s *Service) ProjectHistory(ctx context.Context, actor Actor, id string) ([]domain.HistoryEntry, error) {
	return entityHistory(ctx, s, projectSpec, actor, id)
}

// CreateCompetence adds a catalog competence. Competences carry no lifecycle:
// no status, no history.
func (s *Service) CreateCompetence(ctx context.Context, actor Actor, competence domain.Competence) (domain.Competence, error) {
	op := "competence.create"
	start := s.clock.Now()
	var created domain.Competence
	err := func() error {
		if actor.TenantID == "" {
			return domain.ValidationError{Entity: domain.EntityCompetence, Field: "tenant_id", Reason: "actor tenant is required"}
		}
		competence.TenantID = actor.TenantID
		competence.CreatedBy = actor.ID
		if err := competence.Validate(); err != nil {
			return err
		}
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateCompetence(competence)
			return err
		})
		return err
	}()
	s.observe(ctx, op, start, err)
	if err != nil {
		return created, err
	}
	s.publishAudit(ctx, domain.EntityCompetence, created.ID, actor, "competence.created", map[string]any{
		"name": created.Name,
	})
	return created, nil
}

// GetCompetence fetches a catalog competence by ID.
func (s *Service) GetCompetence(ctx context.Context, actor Actor, id string) (domain.Competence, error) {
	op := "competence.get"
	start := s.clock.Now()
	var out domain.Competence
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		found, ok := view.FindCompetence(id)
		if !ok || found.TenantID != actor.TenantID {
			return domain.NotFoundError{Entity: domain.EntityCompetence, ID: id}
		}
		out = found
		return nil
	})
	s.observe(ctx, op, start, err)
	return out, err
}

// ListCompetences returns one page of the tenant's competence catalog.
// Competences carry no excluded status, so IncludeExcluded is ignored.
func (s *Service) ListCompetences(ctx context.Context, actor Actor, opts ListOptions) (Page[domain.Competence], error) {
	op := "competence.list"
	start := s.clock.Now()
	var matched []domain.Competence
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		for _, c := range view.ListCompetences() {
			if c.TenantID == actor.TenantID {
				matched = append(matched, c)
			}
		}
		return nil
	})
	s.observe(ctx, op, start, err)
	if err != nil {
		return Page[domain.Competence]{}, err
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return paginate(matched, opts), nil
}

// HardDeleteCompetence physically removes a catalog competence. This is the
// only hard-delete path in the system.
func (s *Service) HardDeleteCompetence(ctx context.Context, actor Actor, id string) error {
	op := "competence.hard_delete"
	start := s.clock.Now()
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		found, ok := tx.Snapshot().FindCompetence(id)
		if !ok || found.TenantID != actor.TenantID {
			return domain.NotFoundError{Entity: domain.EntityCompetence, ID: id}
		}
		return tx.DeleteCompetence(id)
	})
	s.observe(ctx, op, start, err)
	if err != nil {
		return err
	}
	s.publishAudit(ctx, domain.EntityCompetence, id, actor, "competence.deleted", nil)
	return nil
}
