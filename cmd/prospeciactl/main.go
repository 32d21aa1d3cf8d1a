// Command prospeciactl operates the lifecycle engine from the command line:
// seeding demo data, inspecting tenant records, and exporting history
// archives to the configured blob store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"prospecia/internal/config"
	"prospecia/internal/core"
	"prospecia/internal/infra/audit"
	"prospecia/internal/infra/blob"
	"prospecia/internal/infra/logging"
	"prospecia/pkg/domain"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "prospeciactl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("prospeciactl", flag.ContinueOnError)
	configDir := flags.String("config", ".", "directory containing prospecia.yaml")
	tenant := flags.String("tenant", "", "tenant scope for the operation")
	actorID := flags.String("actor", "prospeciactl", "actor recorded in history and audit entries")
	skip := flags.Int("skip", 0, "records to skip when listing")
	limit := flags.Int("limit", 0, "page size when listing, 0 for all")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() < 1 {
		return fmt.Errorf("usage: prospeciactl [flags] <seed|list|history|export-archive>")
	}
	command := flags.Arg(0)

	// Environment overrides may live in a local .env file.
	_ = godotenv.Load()

	cfg, err := config.Load(*configDir)
	if err != nil {
		return err
	}
	logger := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "prospeciactl",
	})

	store, err := core.OpenPersistentStore(cfg.StorageConfig(), core.NewDefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	ctx := context.Background()
	blobs, err := blob.Open(ctx, cfg.BlobConfig())
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	opts := []core.Option{
		core.WithLogger(logger),
		core.WithBlobStore(blobs),
	}
	if cfg.Audit.Enabled {
		sink, err := audit.NewNATSSink(audit.NATSConfig{
			URL:           cfg.Audit.NATSURL,
			SubjectPrefix: cfg.Audit.SubjectPrefix,
		})
		if err != nil {
			return fmt.Errorf("connect audit sink: %w", err)
		}
		defer sink.Close()
		opts = append(opts, core.WithAuditSink(sink))
	}
	svc := core.NewService(store, opts...)

	if *tenant == "" {
		return fmt.Errorf("command %s requires -tenant", command)
	}
	actor := core.Actor{ID: *actorID, TenantID: *tenant}

	switch command {
	case "seed":
		return seed(ctx, svc, actor)
	case "list":
		if flags.NArg() < 2 {
			return fmt.Errorf("usage: prospeciactl list <entity>")
		}
		return list(ctx, svc, actor, flags.Arg(1), core.ListOptions{Skip: *skip, Limit: *limit})
	case "history":
		if flags.NArg() < 3 {
			return fmt.Errorf("usage: prospeciactl history <entity> <id>")
		}
		return history(ctx, svc, actor, domain.EntityType(flags.Arg(1)), flags.Arg(2))
	case "export-archive":
		infos, err := svc.ExportTenantArchive(ctx, actor)
		if err != nil {
			return err
		}
		for _, info := range infos {
			fmt.Printf("%s\t%d bytes\n", info.Key, info.Size)
		}
		logger.Info("tenant archive exported", "tenant", *tenant, "blobs", len(infos))
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// seed creates a small connected dataset: one client, one funding source, and
// an opportunity moved one stage forward.
func seed(ctx context.Context, svc *core.Service, actor core.Actor) error {
	client, err := svc.CreateClient(ctx, actor, domain.Client{
		Name:     "Acme Inova Ltda",
		CNPJ:     "12.345.678/0001-90",
		Email:    "contato@acme.example",
		Sector:   "software",
		Size:     "medium",
		Maturity: domain.MaturityProspect,
	})
	if err != nil {
		return fmt.Errorf("seed client: %w", err)
	}
	source, err := svc.CreateFundingSource(ctx, actor, domain.FundingSource{
		Name:        "Edital FINEP Inovacao 2026",
		Description: "Non-refundable grant for TRL 3-7 software projects",
		Type:        domain.FundingTypeGrant,
		Sectors:     []string{"software"},
		Amount:      5_000_000,
		TRLMin:      3,
		TRLMax:      7,
		Deadline:    time.Now().AddDate(0, 6, 0),
	})
	if err != nil {
		return fmt.Errorf("seed funding source: %w", err)
	}
	opp, err := svc.CreateOpportunity(ctx, actor, domain.Opportunity{
		ClientID:        client.ID,
		FundingSourceID: source.ID,
		Title:           "FINEP grant application",
		Score:           65,
		Probability:     40,
	})
	if err != nil {
		return fmt.Errorf("seed opportunity: %w", err)
	}
	if _, err := svc.TransitionOpportunityStage(ctx, actor, opp.ID, domain.StageValidation, "seed data"); err != nil {
		return fmt.Errorf("seed stage transition: %w", err)
	}
	fmt.Printf("seeded client=%s funding_source=%s opportunity=%s\n", client.ID, source.ID, opp.ID)
	return nil
}

func list(ctx context.Context, svc *core.Service, actor core.Actor, entity string, opts core.ListOptions) error {
	var records any
	var err error
	switch domain.EntityType(entity) {
	case domain.EntityClient:
		records, err = svc.ListClients(ctx, actor, opts)
	case domain.EntityFundingSource:
		records, err = svc.ListFundingSources(ctx, actor, opts)
	case domain.EntityOpportunity:
		records, err = svc.ListOpportunities(ctx, actor, opts)
	case domain.EntityInstitute:
		records, err = svc.ListInstitutes(ctx, actor, opts)
	case domain.EntityProject:
		records, err = svc.ListProjects(ctx, actor, opts)
	case domain.EntityInteraction:
		records, err = svc.ListInteractions(ctx, actor, opts)
	case domain.EntityIngestion:
		records, err = svc.ListIngestions(ctx, actor, opts)
	case domain.EntityConsent:
		records, err = svc.ListConsents(ctx, actor, opts)
	case domain.EntityCompetence:
		records, err = svc.ListCompetences(ctx, actor, opts)
	default:
		return fmt.Errorf("unknown entity %q", entity)
	}
	if err != nil {
		return err
	}
	return printJSON(records)
}

func history(ctx context.Context, svc *core.Service, actor core.Actor, entity domain.EntityType, id string) error {
	var entries []domain.HistoryEntry
	var err error
	switch entity {
	case domain.EntityClient:
		entries, err = svc.ClientHistory(ctx, actor, id)
	case domain.EntityFundingSource:
		entries, err = svc.FundingSourceHistory(ctx, actor, id)
	case domain.EntityOpportunity:
		entries, err = svc.OpportunityHistory(ctx, actor, id)
	case domain.EntityInstitute:
		entries, err = svc.InstituteHistory(ctx, actor, id)
	case domain.EntityProject:
		entries, err = svc.ProjectHistory(ctx, actor, id)
	case domain.EntityInteraction:
		entries, err = svc.InteractionHistory(ctx, actor, id)
	case domain.EntityIngestion:
		entries, err = svc.IngestionHistory(ctx, actor, id)
	case domain.EntityConsent:
		entries, err = svc.ConsentHistory(ctx, actor, id)
	default:
		return fmt.Errorf("entity %q has no history", entity)
	}
	if err != nil {
		return err
	}
	return printJSON(entries)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
