package core

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"prospecia/internal/infra/blob"
	"prospecia/pkg/domain"
)

func TestExportHistoryArchive(t *testing.T) {
	blobs := blob.NewMemory()
	svc, _ := newTestService(t, WithBlobStore(blobs))
	ctx := context.Background()

	created := mustCreateClient(t, svc, alice)
	if _, err := svc.UpdateClient(ctx, alice, created.ID, map[string]any{"notes": "first call"}, ""); err != nil {
		t.Fatalf("update: %v", err)
	}

	info, err := svc.ExportHistoryArchive(ctx, alice, domain.EntityClient, created.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	wantKey := "archive/tenant-a/client/" + created.ID + ".json"
	if info.Key != wantKey {
		t.Fatalf("unexpected key %q", info.Key)
	}
	if info.ContentType != "application/json" {
		t.Fatalf("unexpected content type %q", info.ContentType)
	}

	_, body, err := blobs.Get(ctx, wantKey)
	if err != nil {
		t.Fatalf("get archive: %v", err)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	var doc ArchiveDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode archive: %v", err)
	}
	if doc.Entity != domain.EntityClient || doc.EntityID != created.ID || doc.TenantID != alice.TenantID {
		t.Fatalf("unexpected document header %+v", doc)
	}
	if len(doc.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(doc.History))
	}
}

func TestExportHistoryArchiveOpportunityIncludesStages(t *testing.T) {
	blobs := blob.NewMemory()
	svc, _ := newTestService(t, WithBlobStore(blobs))
	ctx := context.Background()

	opp := mustCreateOpportunity(t, svc, alice)
	if _, err := svc.TransitionOpportunityStage(ctx, alice, opp.ID, domain.StageValidation, "ready"); err != nil {
		t.Fatalf("transition: %v", err)
	}

	info, err := svc.ExportHistoryArchive(ctx, alice, domain.EntityOpportunity, opp.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	_, body, err := blobs.Get(ctx, info.Key)
	if err != nil {
		t.Fatalf("get archive: %v", err)
	}
	defer body.Close()
	var doc ArchiveDocument
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		t.Fatalf("decode archive: %v", err)
	}
	if len(doc.StageTransitions) != 1 {
		t.Fatalf("expected stage transition log in archive, got %d entries", len(doc.StageTransitions))
	}
}

func TestExportHistoryArchiveErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.ExportHistoryArchive(ctx, alice, domain.EntityClient, "whatever"); err == nil {
		t.Fatal("expected error without a blob store")
	}

	blobs := blob.NewMemory()
	svc, _ = newTestService(t, WithBlobStore(blobs))
	if _, err := svc.ExportHistoryArchive(ctx, alice, domain.EntityCompetence, "c1"); err == nil {
		t.Fatal("competences carry no history and must be rejected")
	}
	if _, err := svc.ExportHistoryArchive(ctx, alice, domain.EntityClient, "missing"); err == nil {
		t.Fatal("expected not found for unknown entity")
	}
}

func TestExportTenantArchive(t *testing.T) {
	blobs := blob.NewMemory()
	svc, _ := newTestService(t, WithBlobStore(blobs))
	ctx := context.Background()

	opp := mustCreateOpportunity(t, svc, alice) // creates client + funding source too
	if _, err := svc.SoftDeleteOpportunity(ctx, alice, opp.ID, "lost interest"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	mustCreateClient(t, svc, bob)

	infos, err := svc.ExportTenantArchive(ctx, alice)
	if err != nil {
		t.Fatalf("export tenant: %v", err)
	}
	// Client, funding source, and the excluded opportunity; bob's client
	// stays out of alice's archive.
	if len(infos) != 3 {
		t.Fatalf("expected 3 archives, got %d", len(infos))
	}
	stored, err := blobs.List(ctx, "archive/tenant-a/")
	if err != nil {
		t.Fatalf("list blobs: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 stored blobs, got %d", len(stored))
	}
	if cross, _ := blobs.List(ctx, "archive/tenant-b/"); len(cross) != 0 {
		t.Fatalf("tenant export leaked %d cross-tenant blobs", len(cross))
	}
}
