package domain

import "context"

// Transaction exposes the domain operations a persistence implementation
// must support within one atomic scope. Creates assign identity and set
// provenance timestamps; updates run the supplied mutator against the
// current row and stamp UpdatedAt. Mutation and history travel together:
// the mutator edits the entity's co-located history, so a rolled-back
// transaction retains neither.
type Transaction interface {
	Snapshot() TransactionView

	CreateClient(Client) (Client, error)
	UpdateClient(id string, mutator func(*Client) error) (Client, error)
	CreateFundingSource(FundingSource) (FundingSource, error)
	UpdateFundingSource(id string, mutator func(*FundingSource) error) (FundingSource, error)
	CreateOpportunity(Opportunity) (Opportunity, error)
	UpdateOpportunity(id string, mutator func(*Opportunity) error) (Opportunity, error)
	CreateInstitute(Institute) (Institute, error)
	UpdateInstitute(id string, mutator func(*Institute) error) (Institute, error)
	CreateProject(Project) (Project, error)
	UpdateProject(id string, mutator func(*Project) error) (Project, error)
	CreateInteraction(Interaction) (Interaction, error)
	UpdateInteraction(id string, mutator func(*Interaction) error) (Interaction, error)
	CreateIngestion(Ingestion) (Ingestion, error)
	UpdateIngestion(id string, mutator func(*Ingestion) error) (Ingestion, error)
	CreateConsent(Consent) (Consent, error)
	UpdateConsent(id string, mutator func(*Consent) error) (Consent, error)

	// Competence is the catalog exception: creatable and hard-deletable,
	// never updated through the lifecycle machinery.
	CreateCompetence(Competence) (Competence, error)
	DeleteCompetence(id string) error
}

// TransactionView provides read-only access to snapshot data for rules and
// repository reads.
type TransactionView interface {
	RuleView
	FindOpportunity(id string) (Opportunity, bool)
	FindProject(id string) (Project, bool)
	FindInteraction(id string) (Interaction, bool)
	FindIngestion(id string) (Ingestion, bool)
	FindCompetence(id string) (Competence, bool)
}

// PersistentStore is the minimal abstraction over durable backends used by
// the lifecycle service. Mutations run through RunInTransaction, which
// commits the entity mutation and its history append as one unit and
// evaluates the configured rules before commit.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
}
