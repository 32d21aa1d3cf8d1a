package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"prospecia/pkg/domain"
)

func fixedClock(t *testing.T, s *Store) time.Time {
	t.Helper()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.SetNowFunc(func() time.Time { return at })
	return at
}

func TestRunInTransactionCreateAndFind(t *testing.T) {
	store := NewStore(nil)
	at := fixedClock(t, store)
	ctx := context.Background()

	var created domain.Client
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateClient(domain.Client{
			Base:   domain.Base{TenantID: "tenant-a", CreatedBy: "user-1"},
			Name:   "Acme Robotics",
			CNPJ:   "12345678000195",
			Status: domain.ClientStatusActive,
		})
		return err
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if !created.CreatedAt.Equal(at) || !created.UpdatedAt.Equal(at) {
		t.Fatalf("timestamps not stamped: %v / %v", created.CreatedAt, created.UpdatedAt)
	}

	if err := store.View(ctx, func(view domain.TransactionView) error {
		got, ok := view.FindClient(created.ID)
		if !ok {
			t.Fatalf("client %s not visible after commit", created.ID)
		}
		if got.Name != "Acme Robotics" {
			t.Fatalf("unexpected name %q", got.Name)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestRunInTransactionRollbackOnError(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	boom := errors.New("boom")

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateInstitute(domain.Institute{
			Base:   domain.Base{TenantID: "tenant-a"},
			Name:   "Instituto Alfa",
			Status: domain.InstituteStatusActive,
		}); err != nil {
			return err
		}
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if err := store.View(ctx, func(view domain.TransactionView) error {
		if got := view.ListInstitutes(); len(got) != 0 {
			t.Fatalf("rollback leaked %d institutes", len(got))
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

type blockAllRule struct{}

func (blockAllRule) Name() string { return "block-all" }

func (blockAllRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	result := domain.Result{}
	for range changes {
		result.Violations = append(result.Violations, domain.Violation{
			Rule:     "block-all",
			Severity: domain.SeverityBlock,
			Message:  "blocked",
		})
	}
	return result, nil
}

func TestRunInTransactionBlockedByRule(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockAllRule{})
	store := NewStore(engine)
	ctx := context.Background()

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateProject(domain.Project{
			Base:        domain.Base{TenantID: "tenant-a"},
			InstituteID: "inst-1",
			Title:       "TRL uplift",
			TRL:         4,
			Status:      domain.ProjectStatusPlanning,
		})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected rule violation, got %v", err)
	}

	if err := store.View(ctx, func(view domain.TransactionView) error {
		if got := view.ListProjects(); len(got) != 0 {
			t.Fatalf("blocked transaction leaked %d projects", len(got))
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestUpdateMissingEntityReturnsNotFound(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.UpdateFundingSource("missing", func(f *domain.FundingSource) error {
			f.Name = "renamed"
			return nil
		})
		return err
	})
	var notFound domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if notFound.Entity != domain.EntityFundingSource || notFound.ID != "missing" {
		t.Fatalf("unexpected not found payload: %+v", notFound)
	}
}

func TestUpdatePreservesIDAndStampsUpdatedAt(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	var id string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		created, err := tx.CreateInteraction(domain.Interaction{
			Base:     domain.Base{TenantID: "tenant-a"},
			ClientID: "client-1",
			Title:    "Kickoff call",
			Type:     domain.InteractionCall,
			Outcome:  domain.OutcomePending,
			Status:   domain.InteractionStatusActive,
		})
		id = created.ID
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	later := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return later })

	var updated domain.Interaction
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateInteraction(id, func(i *domain.Interaction) error {
			i.ID = "hijacked"
			i.Outcome = domain.OutcomePositive
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != id {
		t.Fatalf("mutator rewrote id: %s", updated.ID)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Fatalf("updated_at not stamped: %v", updated.UpdatedAt)
	}
	if updated.Outcome != domain.OutcomePositive {
		t.Fatalf("mutation lost: %s", updated.Outcome)
	}
}

func TestCreateConsentDefaultsVersionAndBaseID(t *testing.T) {
	store := NewStore(nil)
	var consent domain.Consent
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		consent, err = tx.CreateConsent(domain.Consent{
			Base:             domain.Base{TenantID: "tenant-a"},
			Purpose:          "marketing",
			DataCategories:   []string{"contact"},
			CollectionOrigin: "web_form",
			Status:           domain.ConsentStatusGranted,
		})
		return err
	}); err != nil {
		t.Fatalf("create consent: %v", err)
	}
	if consent.Version != 1 {
		t.Fatalf("expected version 1, got %d", consent.Version)
	}
	if consent.BaseConsentID != consent.ID {
		t.Fatalf("base consent id %q != id %q", consent.BaseConsentID, consent.ID)
	}
}

func TestCompetenceHardDelete(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	var comp domain.Competence
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		comp, err = tx.CreateCompetence(domain.Competence{
			TenantID: "tenant-a",
			Name:     "Bioprocessing",
			Category: "biotech",
		})
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteCompetence(comp.ID)
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := store.View(ctx, func(view domain.TransactionView) error {
		if _, ok := view.FindCompetence(comp.ID); ok {
			t.Fatalf("competence %s survived hard delete", comp.ID)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteCompetence(comp.ID)
	})
	var notFound domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestViewReturnsClones(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	var id string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		created, err := tx.CreateOpportunity(domain.Opportunity{
			Base:            domain.Base{TenantID: "tenant-a"},
			ClientID:        "client-1",
			FundingSourceID: "fund-1",
			Title:           "Edital FINEP 2026",
			Stage:           domain.StageIntelligence,
			Status:          domain.OpportunityStatusActive,
		})
		id = created.ID
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.View(ctx, func(view domain.TransactionView) error {
		got, _ := view.FindOpportunity(id)
		got.Title = "tampered"
		got.StageTransitions = append(got.StageTransitions, domain.StageTransition{ToStage: domain.StageValidation})
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}

	if err := store.View(ctx, func(view domain.TransactionView) error {
		got, _ := view.FindOpportunity(id)
		if got.Title != "Edital FINEP 2026" {
			t.Fatalf("store state mutated through view: %q", got.Title)
		}
		if len(got.StageTransitions) != 0 {
			t.Fatalf("stage transitions mutated through view")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := NewStore(nil)
	ctx := context.Background()

	if _, err := src.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateClient(domain.Client{
			Base:   domain.Base{TenantID: "tenant-a"},
			Name:   "Acme",
			CNPJ:   "12345678000195",
			Status: domain.ClientStatusActive,
		}); err != nil {
			return err
		}
		_, err := tx.CreateIngestion(domain.Ingestion{
			Base:   domain.Base{TenantID: "tenant-a"},
			Source: domain.SourceRAIS,
			Method: domain.MethodBatchUpload,
			Status: domain.IngestionStatusPendente,
		})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	dst := NewStore(nil)
	dst.ImportState(src.ExportState())

	if err := dst.View(ctx, func(view domain.TransactionView) error {
		if got := view.ListClients(); len(got) != 1 {
			t.Fatalf("expected 1 client after import, got %d", len(got))
		}
		if got := view.ListIngestions(); len(got) != 1 {
			t.Fatalf("expected 1 ingestion after import, got %d", len(got))
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestDuplicateIDRejected(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateClient(domain.Client{
			Base:   domain.Base{ID: "client-1", TenantID: "tenant-a"},
			Name:   "Acme",
			Status: domain.ClientStatusActive,
		})
		return err
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateClient(domain.Client{
			Base:   domain.Base{ID: "client-1", TenantID: "tenant-a"},
			Name:   "Duplicate",
			Status: domain.ClientStatusActive,
		})
		return err
	}); err == nil {
		t.Fatal("expected duplicate id error")
	}
}
