package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"prospecia/internal/infra/persistence/memory"
	"prospecia/pkg/domain"
)

type captureSink struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	err    error
}

func (s *captureSink) Publish(_ context.Context, event domain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) byType(eventType string) []domain.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AuditEvent
	for _, e := range s.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}
func (l *recordingLogger) Error(string, ...any) {}
func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

func newTestService(t *testing.T, opts ...Option) (*Service, *captureSink) {
	t.Helper()
	store := memory.NewStore(NewDefaultRulesEngine())
	sink := &captureSink{}
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	opts = append([]Option{
		WithAuditSink(sink),
		WithClock(ClockFunc(func() time.Time { return base })),
	}, opts...)
	return NewService(store, opts...), sink
}

var (
	alice = Actor{ID: "user-alice", TenantID: "tenant-a"}
	bob   = Actor{ID: "user-bob", TenantID: "tenant-b"}
)

func validClient() domain.Client {
	return domain.Client{
		Name:     "Acme Inova Ltda",
		CNPJ:     "12.345.678/0001-90",
		Email:    "contato@acme.example",
		Sector:   "software",
		Size:     "medium",
		Maturity: domain.MaturityProspect,
	}
}

func validFundingSource() domain.FundingSource {
	return domain.FundingSource{
		Name:        "Edital FINEP 2026",
		Description: "Non-refundable innovation grant",
		Type:        domain.FundingTypeGrant,
		Sectors:     []string{"software"},
		Amount:      5_000_000,
		TRLMin:      3,
		TRLMax:      7,
		Deadline:    time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func validConsent() domain.Consent {
	granted := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return domain.Consent{
		Purpose:          "prospecting contact",
		DataCategories:   []string{"contact", "company"},
		CollectionOrigin: "signup_form",
		SubjectEmail:     "titular@example.com",
		GrantedAt:        &granted,
		Status:           domain.ConsentStatusGranted,
	}
}

func mustCreateClient(t *testing.T, svc *Service, actor Actor) domain.Client {
	t.Helper()
	created, err := svc.CreateClient(context.Background(), actor, validClient())
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return created
}

func mustCreateOpportunity(t *testing.T, svc *Service, actor Actor) domain.Opportunity {
	t.Helper()
	ctx := context.Background()
	client := mustCreateClient(t, svc, actor)
	source, err := svc.CreateFundingSource(ctx, actor, validFundingSource())
	if err != nil {
		t.Fatalf("create funding source: %v", err)
	}
	opp, err := svc.CreateOpportunity(ctx, actor, domain.Opportunity{
		ClientID:        client.ID,
		FundingSourceID: source.ID,
		Title:           "Grant application",
		Score:           60,
		Probability:     40,
	})
	if err != nil {
		t.Fatalf("create opportunity: %v", err)
	}
	return opp
}

func TestCreateClientDefaults(t *testing.T) {
	svc, sink := newTestService(t)
	created := mustCreateClient(t, svc, alice)

	if created.ID == "" {
		t.Fatal("expected generated ID")
	}
	if created.TenantID != alice.TenantID {
		t.Fatalf("tenant not stamped: %q", created.TenantID)
	}
	if created.Status != domain.ClientStatusActive {
		t.Fatalf("expected default status active, got %q", created.Status)
	}
	if created.CNPJ != "12345678000190" {
		t.Fatalf("CNPJ not normalized: %q", created.CNPJ)
	}
	if created.CreatedBy != alice.ID || created.UpdatedBy != alice.ID {
		t.Fatalf("provenance not stamped: %q/%q", created.CreatedBy, created.UpdatedBy)
	}
	if len(created.History) != 1 || created.History[0].Action != domain.HistoryActionCreate {
		t.Fatalf("expected single create history entry, got %#v", created.History)
	}
	if events := sink.byType("client.created"); len(events) != 1 {
		t.Fatalf("expected one client.created audit event, got %d", len(events))
	}
}

func TestCreateRequiresTenant(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateClient(context.Background(), Actor{ID: "anon"}, validClient())
	var verr domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "tenant_id" {
		t.Fatalf("expected tenant validation error, got %v", err)
	}
}

func TestCreateConsentRequiresExplicitStatus(t *testing.T) {
	svc, _ := newTestService(t)
	consent := validConsent()
	consent.Status = ""
	_, err := svc.CreateConsent(context.Background(), alice, consent)
	var verr domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "status" {
		t.Fatalf("expected status validation error, got %v", err)
	}
}

func TestTenantIsolation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreateClient(t, svc, alice)

	var nf domain.NotFoundError
	if _, err := svc.GetClient(ctx, bob, created.ID, false); !errors.As(err, &nf) {
		t.Fatalf("cross-tenant get should report not found, got %v", err)
	}
	if _, err := svc.UpdateClient(ctx, bob, created.ID, map[string]any{"name": "x"}, ""); !errors.As(err, &nf) {
		t.Fatalf("cross-tenant update should report not found, got %v", err)
	}
	if _, err := svc.SoftDeleteClient(ctx, bob, created.ID, "cleanup"); !errors.As(err, &nf) {
		t.Fatalf("cross-tenant delete should report not found, got %v", err)
	}
	if _, err := svc.ClientHistory(ctx, bob, created.ID); !errors.As(err, &nf) {
		t.Fatalf("cross-tenant history should report not found, got %v", err)
	}
	list, err := svc.ListClients(ctx, bob, ListOptions{IncludeExcluded: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Items) != 0 || list.Total != 0 {
		t.Fatalf("cross-tenant list leaked %d records (total %d)", len(list.Items), list.Total)
	}
}

func TestSoftDeleteHidesFromReads(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreateClient(t, svc, alice)

	deleted, err := svc.SoftDeleteClient(ctx, alice, created.ID, "duplicate record")
	if err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if deleted.Status != domain.ClientStatusExcluded {
		t.Fatalf("expected excluded status, got %q", deleted.Status)
	}

	var nf domain.NotFoundError
	if _, err := svc.GetClient(ctx, alice, created.ID, false); !errors.As(err, &nf) {
		t.Fatalf("excluded client should be hidden, got %v", err)
	}
	got, err := svc.GetClient(ctx, alice, created.ID, true)
	if err != nil {
		t.Fatalf("get with includeExcluded: %v", err)
	}
	if got.Status != domain.ClientStatusExcluded {
		t.Fatalf("unexpected status %q", got.Status)
	}

	visible, err := svc.ListClients(ctx, alice, ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible.Items) != 0 || visible.Total != 0 {
		t.Fatalf("excluded client leaked into default list")
	}
	all, err := svc.ListClients(ctx, alice, ListOptions{IncludeExcluded: true})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all.Items) != 1 {
		t.Fatalf("expected 1 record with includeExcluded, got %d", len(all.Items))
	}
}

func TestSoftDeleteIdempotent(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()
	created := mustCreateClient(t, svc, alice)

	first, err := svc.SoftDeleteClient(ctx, alice, created.ID, "cleanup")
	if err != nil {
		t.Fatalf("first delete: %v", err)
	}
	second, err := svc.SoftDeleteClient(ctx, alice, created.ID, "cleanup again")
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if len(second.History) != len(first.History) {
		t.Fatalf("repeat delete grew history: %d -> %d", len(first.History), len(second.History))
	}
	if !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Fatal("repeat delete bumped UpdatedAt")
	}
	if events := sink.byType("client.soft_deleted"); len(events) != 1 {
		t.Fatalf("expected exactly one soft_deleted audit event, got %d", len(events))
	}
}

func TestUpdateAppliesDiffAndRecordsHistory(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()
	created := mustCreateClient(t, svc, alice)

	updated, err := svc.UpdateClient(ctx, alice, created.ID, map[string]any{
		"name":     "Acme Deep Tech",
		"maturity": "lead",
	}, "renamed after rebrand")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Acme Deep Tech" || updated.Maturity != domain.MaturityLead {
		t.Fatalf("changes not applied: %+v", updated)
	}
	if updated.UpdatedBy != alice.ID {
		t.Fatalf("UpdatedBy not stamped: %q", updated.UpdatedBy)
	}
	if len(updated.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(updated.History))
	}
	entry := updated.History[1]
	if entry.Action != domain.HistoryActionUpdate || entry.Reason != "renamed after rebrand" {
		t.Fatalf("unexpected history entry %#v", entry)
	}
	if entry.ChangedFields["name"] != "Acme Deep Tech" {
		t.Fatalf("changed fields not recorded: %#v", entry.ChangedFields)
	}
	if _, ok := entry.ChangedFields["maturity"]; !ok {
		t.Fatalf("maturity change missing from %#v", entry.ChangedFields)
	}
	if events := sink.byType("client.updated"); len(events) != 1 {
		t.Fatalf("expected one client.updated audit event, got %d", len(events))
	}
}

func TestUpdateNoOpElision(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()
	created := mustCreateClient(t, svc, alice)

	same, err := svc.UpdateClient(ctx, alice, created.ID, map[string]any{
		"name": created.Name,
	}, "no change intended")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(same.History) != 1 {
		t.Fatalf("no-op update appended history: %d entries", len(same.History))
	}
	if !same.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatal("no-op update bumped UpdatedAt")
	}
	if events := sink.byType("client.updated"); len(events) != 0 {
		t.Fatalf("no-op update published %d audit events", len(events))
	}
}

func TestUpdateRejectsProtectedAndUnknownFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreateClient(t, svc, alice)

	cases := []struct {
		name    string
		changes map[string]any
	}{
		{"protected id", map[string]any{"id": "forged"}},
		{"protected tenant", map[string]any{"tenant_id": "tenant-b"}},
		{"protected history", map[string]any{"history": []any{}}},
		{"unknown field", map[string]any{"nickname": "acme"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpdateClient(ctx, alice, created.ID, tc.changes, "")
			var verr domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestReasonIsMandatoryWhereRequired(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	client := mustCreateClient(t, svc, alice)
	opp := mustCreateOpportunity(t, svc, bob)
	source, err := svc.CreateFundingSource(ctx, alice, validFundingSource())
	if err != nil {
		t.Fatalf("create funding source: %v", err)
	}

	var verr domain.ValidationError
	if _, err := svc.SoftDeleteClient(ctx, alice, client.ID, "  "); !errors.As(err, &verr) || verr.Field != "reason" {
		t.Fatalf("deletion without reason should be rejected, got %v", err)
	}
	if _, err := svc.UpdateFundingSource(ctx, alice, source.ID, map[string]any{"amount": 1}, ""); !errors.As(err, &verr) || verr.Field != "reason" {
		t.Fatalf("funding source update without reason should be rejected, got %v", err)
	}
	if _, err := svc.UpdateOpportunity(ctx, bob, opp.ID, map[string]any{"score": 70}, ""); !errors.As(err, &verr) || verr.Field != "reason" {
		t.Fatalf("opportunity update without reason should be rejected, got %v", err)
	}
	if _, err := svc.TransitionOpportunityStage(ctx, bob, opp.ID, domain.StageValidation, ""); !errors.As(err, &verr) || verr.Field != "reason" {
		t.Fatalf("stage transition without reason should be rejected, got %v", err)
	}

	// Client updates keep the reason optional.
	if _, err := svc.UpdateClient(ctx, alice, client.ID, map[string]any{"notes": "ok"}, ""); err != nil {
		t.Fatalf("client update without reason should pass: %v", err)
	}
}

func TestUpdateStatusFollowsPolicy(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreateClient(t, svc, alice)

	archived, err := svc.UpdateClient(ctx, alice, created.ID, map[string]any{"status": "archived"}, "dormant")
	if err != nil {
		t.Fatalf("active -> archived should be legal: %v", err)
	}
	if archived.Status != domain.ClientStatusArchived {
		t.Fatalf("status not applied: %q", archived.Status)
	}

	_, err = svc.UpdateClient(ctx, alice, created.ID, map[string]any{"status": "inactive"}, "")
	var terr domain.InvalidTransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("archived -> inactive should be rejected, got %v", err)
	}
	if terr.From != "archived" || terr.To != "inactive" {
		t.Fatalf("unexpected transition error %+v", terr)
	}
}

func TestIngestionStatusGraph(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.CreateIngestion(ctx, alice, domain.Ingestion{
		Source:           domain.SourceRAIS,
		Method:           domain.MethodBatchUpload,
		ReliabilityScore: 85,
	})
	if err != nil {
		t.Fatalf("create ingestion: %v", err)
	}
	if created.Status != domain.IngestionStatusPendente {
		t.Fatalf("expected pendente default, got %q", created.Status)
	}

	if _, err := svc.UpdateIngestion(ctx, alice, created.ID, map[string]any{"status": "processando"}, ""); err != nil {
		t.Fatalf("pendente -> processando: %v", err)
	}
	if _, err := svc.UpdateIngestion(ctx, alice, created.ID, map[string]any{"status": "concluida"}, ""); err != nil {
		t.Fatalf("processando -> concluida: %v", err)
	}
	_, err = svc.UpdateIngestion(ctx, alice, created.ID, map[string]any{"status": "pendente"}, "")
	var terr domain.InvalidTransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("concluida -> pendente should be rejected, got %v", err)
	}

	cancelled, err := svc.SoftDeleteIngestion(ctx, alice, created.ID, "source withdrawn")
	if err != nil {
		t.Fatalf("soft delete ingestion: %v", err)
	}
	if cancelled.Status != domain.IngestionStatusCancelada {
		t.Fatalf("expected cancelada, got %q", cancelled.Status)
	}
}

func TestHistoryIsOrderedAndComplete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreateClient(t, svc, alice)

	if _, err := svc.UpdateClient(ctx, alice, created.ID, map[string]any{"notes": "first contact done"}, ""); err != nil {
		t.Fatalf("update 1: %v", err)
	}
	if _, err := svc.UpdateClient(ctx, alice, created.ID, map[string]any{"maturity": "lead"}, "qualified"); err != nil {
		t.Fatalf("update 2: %v", err)
	}
	if _, err := svc.SoftDeleteClient(ctx, alice, created.ID, "merged"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	history, err := svc.ClientHistory(ctx, alice, created.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	wantActions := []string{
		domain.HistoryActionCreate,
		domain.HistoryActionUpdate,
		domain.HistoryActionUpdate,
		domain.HistoryActionSoftDelete,
	}
	if len(history) != len(wantActions) {
		t.Fatalf("expected %d entries, got %d", len(wantActions), len(history))
	}
	for i, want := range wantActions {
		if history[i].Action != want {
			t.Fatalf("entry %d: expected action %q, got %q", i, want, history[i].Action)
		}
	}
}

func TestOpportunityStagePipeline(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()
	opp := mustCreateOpportunity(t, svc, alice)

	if opp.Stage != domain.StageIntelligence {
		t.Fatalf("expected default stage intelligence, got %q", opp.Stage)
	}

	moved, err := svc.TransitionOpportunityStage(ctx, alice, opp.ID, domain.StageValidation, "data confirmed")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if moved.Stage != domain.StageValidation {
		t.Fatalf("stage not applied: %q", moved.Stage)
	}
	if len(moved.StageTransitions) != 1 {
		t.Fatalf("expected 1 stage transition, got %d", len(moved.StageTransitions))
	}
	tr := moved.StageTransitions[0]
	if tr.FromStage != domain.StageIntelligence || tr.ToStage != domain.StageValidation || tr.ActorID != alice.ID {
		t.Fatalf("unexpected transition record %+v", tr)
	}
	last := moved.History[len(moved.History)-1]
	if last.Action != domain.HistoryActionStageTransition {
		t.Fatalf("stage move missing from history: %#v", last)
	}

	var terr domain.InvalidTransitionError
	if _, err := svc.TransitionOpportunityStage(ctx, alice, opp.ID, domain.StageRegistration, "skip"); !errors.As(err, &terr) {
		t.Fatalf("stage skip should be rejected, got %v", err)
	}
	if _, err := svc.TransitionOpportunityStage(ctx, alice, opp.ID, domain.StageIntelligence, "go back"); !errors.As(err, &terr) {
		t.Fatalf("backward move should be rejected, got %v", err)
	}

	log, err := svc.OpportunityStageTransitions(ctx, alice, opp.ID)
	if err != nil {
		t.Fatalf("stage transitions: %v", err)
	}
	if len(log) != 1 {
		t.Fatalf("failed transitions must not land in the log, got %d entries", len(log))
	}
	if events := sink.byType("opportunity.stage_transitioned"); len(events) != 1 {
		t.Fatalf("expected one stage audit event, got %d", len(events))
	}
}

func TestUpdateOpportunityStageIsProtected(t *testing.T) {
	svc, _ := newTestService(t)
	opp := mustCreateOpportunity(t, svc, alice)
	_, err := svc.UpdateOpportunity(context.Background(), alice, opp.ID, map[string]any{"stage": "validation"}, "trying to move")
	var verr domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "stage" {
		t.Fatalf("stage should only move through the transition operation, got %v", err)
	}
}

func TestConsentVersioning(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()

	v1, err := svc.CreateConsent(ctx, alice, validConsent())
	if err != nil {
		t.Fatalf("create consent: %v", err)
	}
	if v1.Version != 1 {
		t.Fatalf("expected version 1, got %d", v1.Version)
	}
	if v1.BaseConsentID != v1.ID {
		t.Fatalf("base consent ID should default to own ID: %q vs %q", v1.BaseConsentID, v1.ID)
	}

	next := validConsent()
	next.Purpose = "prospecting contact and newsletter"
	v2, err := svc.CreateConsentVersion(ctx, alice, v1.BaseConsentID, next)
	if err != nil {
		t.Fatalf("create version: %v", err)
	}
	if v2.Version != 2 {
		t.Fatalf("expected version 2, got %d", v2.Version)
	}
	if v2.ID == v1.ID {
		t.Fatal("new version must be a new row")
	}
	if v2.BaseConsentID != v1.BaseConsentID {
		t.Fatalf("base consent ID mismatch: %q", v2.BaseConsentID)
	}

	// The original row stays untouched.
	got, err := svc.GetConsent(ctx, alice, v1.ID, true)
	if err != nil {
		t.Fatalf("get v1: %v", err)
	}
	if got.Purpose != "prospecting contact" || got.Version != 1 {
		t.Fatalf("earlier version mutated: %+v", got)
	}

	versions, err := svc.ConsentVersions(ctx, alice, v1.BaseConsentID)
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(versions) != 2 || versions[0].Version != 1 || versions[1].Version != 2 {
		t.Fatalf("unexpected version list %+v", versions)
	}

	latest, err := svc.LatestConsent(ctx, alice, v1.BaseConsentID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Version != 2 {
		t.Fatalf("expected latest version 2, got %d", latest.Version)
	}

	var nf domain.NotFoundError
	if _, err := svc.CreateConsentVersion(ctx, alice, "no-such-base", validConsent()); !errors.As(err, &nf) {
		t.Fatalf("unknown base should report not found, got %v", err)
	}
	if events := sink.byType("consent.version_created"); len(events) != 1 {
		t.Fatalf("expected one version_created event, got %d", len(events))
	}
}

func TestConsentVersionFieldsAreProtected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	v1, err := svc.CreateConsent(ctx, alice, validConsent())
	if err != nil {
		t.Fatalf("create consent: %v", err)
	}
	for _, field := range []string{"version", "base_consent_id"} {
		_, err := svc.UpdateConsent(ctx, alice, v1.ID, map[string]any{field: "tampered"}, "")
		var verr domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("field %q should be protected, got %v", field, err)
		}
	}
}

func TestCompetenceHardDelete(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCompetence(ctx, alice, domain.Competence{
		Name:     "Computer Vision",
		Category: "ai",
	})
	if err != nil {
		t.Fatalf("create competence: %v", err)
	}
	if created.ID == "" || created.TenantID != alice.TenantID {
		t.Fatalf("competence not stamped: %+v", created)
	}

	var nf domain.NotFoundError
	if _, err := svc.GetCompetence(ctx, bob, created.ID); !errors.As(err, &nf) {
		t.Fatalf("cross-tenant competence get should report not found, got %v", err)
	}

	if err := svc.HardDeleteCompetence(ctx, alice, created.ID); err != nil {
		t.Fatalf("hard delete: %v", err)
	}
	if _, err := svc.GetCompetence(ctx, alice, created.ID); !errors.As(err, &nf) {
		t.Fatalf("deleted competence should be gone, got %v", err)
	}
	if err := svc.HardDeleteCompetence(ctx, alice, created.ID); !errors.As(err, &nf) {
		t.Fatalf("repeat hard delete should report not found, got %v", err)
	}
	if events := sink.byType("competence.deleted"); len(events) != 1 {
		t.Fatalf("expected one deleted event, got %d", len(events))
	}
}

func TestListIsSortedByCreation(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time {
		now = now.Add(time.Minute)
		return now
	})
	svc := NewService(store)
	ctx := context.Background()

	var want []string
	for i := 0; i < 3; i++ {
		client := validClient()
		client.Name = fmt.Sprintf("Client %d", i)
		client.CNPJ = fmt.Sprintf("1234567800019%d", i)
		created, err := svc.CreateClient(ctx, alice, client)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		want = append(want, created.ID)
	}
	list, err := svc.ListClients(ctx, alice, ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Items) != 3 {
		t.Fatalf("expected 3 clients, got %d", len(list.Items))
	}
	for i, id := range want {
		if list.Items[i].ID != id {
			t.Fatalf("position %d: expected %q, got %q", i, id, list.Items[i].ID)
		}
	}
}

func TestCreateRejectsStatusOutsideEnum(t *testing.T) {
	svc, sink := newTestService(t)
	client := validClient()
	client.Status = domain.ClientStatus("bogus")
	_, err := svc.CreateClient(context.Background(), alice, client)
	var verr domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "status" {
		t.Fatalf("out-of-enum status should be rejected, got %v", err)
	}
	if events := sink.byType("client.created"); len(events) != 0 {
		t.Fatalf("rejected create must not emit audit events, got %d", len(events))
	}
}

func TestCreateCannotStartExcluded(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	client := validClient()
	client.Status = domain.ClientStatusExcluded
	_, err := svc.CreateClient(ctx, alice, client)
	var verr domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "status" {
		t.Fatalf("born-excluded create should be rejected, got %v", err)
	}
	all, err := svc.ListClients(ctx, alice, ListOptions{IncludeExcluded: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if all.Total != 0 {
		t.Fatalf("rejected create left %d records behind", all.Total)
	}
}

func TestCreateOpportunityStartsAtIntelligence(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	client := mustCreateClient(t, svc, alice)
	source, err := svc.CreateFundingSource(ctx, alice, validFundingSource())
	if err != nil {
		t.Fatalf("create funding source: %v", err)
	}
	draft := domain.Opportunity{
		ClientID:        client.ID,
		FundingSourceID: source.ID,
		Title:           "Grant application",
		Score:           60,
		Probability:     40,
	}

	var verr domain.ValidationError
	draft.Stage = domain.StageConversion
	if _, err := svc.CreateOpportunity(ctx, alice, draft); !errors.As(err, &verr) || verr.Field != "stage" {
		t.Fatalf("mid-pipeline create should be rejected, got %v", err)
	}
	draft.Stage = domain.OpportunityStage("warp")
	if _, err := svc.CreateOpportunity(ctx, alice, draft); !errors.As(err, &verr) || verr.Field != "stage" {
		t.Fatalf("unknown stage should be rejected, got %v", err)
	}

	draft.Stage = domain.StageIntelligence
	created, err := svc.CreateOpportunity(ctx, alice, draft)
	if err != nil {
		t.Fatalf("create at pipeline start: %v", err)
	}
	if created.Stage != domain.StageIntelligence || len(created.StageTransitions) != 0 {
		t.Fatalf("unexpected pipeline state: stage=%q transitions=%d", created.Stage, len(created.StageTransitions))
	}
}

func TestListPagination(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time {
		now = now.Add(time.Minute)
		return now
	})
	svc := NewService(store)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		client := validClient()
		client.Name = fmt.Sprintf("Client %d", i)
		client.CNPJ = fmt.Sprintf("1234567800019%d", i)
		created, err := svc.CreateClient(ctx, alice, client)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, created.ID)
	}
	if _, err := svc.SoftDeleteClient(ctx, alice, ids[0], "lost contact"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	page, err := svc.ListClients(ctx, alice, ListOptions{Skip: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 4 {
		t.Fatalf("total must reflect the filtered set, not the page: got %d", page.Total)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page.Items))
	}
	if page.Items[0].ID != ids[2] || page.Items[1].ID != ids[3] {
		t.Fatalf("unexpected page window: %q, %q", page.Items[0].ID, page.Items[1].ID)
	}

	all, err := svc.ListClients(ctx, alice, ListOptions{IncludeExcluded: true, Limit: 3})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if all.Total != 5 || len(all.Items) != 3 {
		t.Fatalf("expected total 5 with page of 3, got total %d page %d", all.Total, len(all.Items))
	}

	past, err := svc.ListClients(ctx, alice, ListOptions{Skip: 10})
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	if past.Total != 4 || len(past.Items) != 0 {
		t.Fatalf("skip past the end should keep the total, got total %d page %d", past.Total, len(past.Items))
	}
}

func TestUpdateClientLeavesChangeMapUntouched(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreateClient(t, svc, alice)

	changes := map[string]any{"cnpj": "98.765.432/0001-10"}
	updated, err := svc.UpdateClient(ctx, alice, created.ID, changes, "cnpj correction")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CNPJ != "98765432000110" {
		t.Fatalf("CNPJ not normalized: %q", updated.CNPJ)
	}
	if changes["cnpj"] != "98.765.432/0001-10" {
		t.Fatalf("caller's change map was mutated: %v", changes["cnpj"])
	}
}

func TestAuditFailureDoesNotFailOperation(t *testing.T) {
	logger := &recordingLogger{}
	store := memory.NewStore(NewDefaultRulesEngine())
	sink := &captureSink{err: errors.New("broker unavailable")}
	svc := NewService(store, WithAuditSink(sink), WithLogger(logger))

	created, err := svc.CreateClient(context.Background(), alice, validClient())
	if err != nil {
		t.Fatalf("create should survive audit failure: %v", err)
	}
	if created.ID == "" {
		t.Fatal("commit did not happen")
	}
	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.warns) == 0 {
		t.Fatal("expected a warning for the failed audit publish")
	}
}

func TestAuditEventCarriesActorAndTenant(t *testing.T) {
	svc, sink := newTestService(t)
	created := mustCreateClient(t, svc, alice)

	events := sink.byType("client.created")
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	e := events[0]
	if e.Entity != domain.EntityClient || e.EntityID != created.ID {
		t.Fatalf("unexpected event target %+v", e)
	}
	if e.TenantID != alice.TenantID || e.ActorID != alice.ID {
		t.Fatalf("event missing actor context %+v", e)
	}
}
