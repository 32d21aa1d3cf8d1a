// Package domain defines the persistent entities, status enums, transition
// policies, and audit primitives shared by every ProspecIA repository.
package domain

import "time"

// EntityType identifies the kind of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records, audit events, and
// persistence buckets.
const (
	// EntityClient identifies a CRM client record.
	EntityClient EntityType = "client"
	// EntityFundingSource identifies an innovation-funding source record.
	EntityFundingSource EntityType = "funding_source"
	// EntityOpportunity identifies a pipeline opportunity record.
	EntityOpportunity EntityType = "opportunity"
	// EntityInstitute identifies a research institute record.
	EntityInstitute EntityType = "institute"
	// EntityProject identifies an institutional project record.
	EntityProject EntityType = "project"
	// EntityInteraction identifies a CRM interaction record.
	EntityInteraction EntityType = "interaction"
	// EntityIngestion identifies a data ingestion record.
	EntityIngestion EntityType = "ingestion"
	// EntityConsent identifies an LGPD consent record.
	EntityConsent EntityType = "consent"
	// EntityCompetence identifies a competence catalog record (no lifecycle).
	EntityCompetence EntityType = "competence"
)

// ClientStatus enumerates the client soft-delete lifecycle.
type ClientStatus string

// Canonical client statuses.
const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
	ClientStatusArchived ClientStatus = "archived"
	ClientStatusExcluded ClientStatus = "excluded"
)

// ClientMaturity classifies how far a client has moved through the CRM funnel.
type ClientMaturity string

// Canonical client maturity levels.
const (
	MaturityProspect    ClientMaturity = "prospect"
	MaturityLead        ClientMaturity = "lead"
	MaturityOpportunity ClientMaturity = "opportunity"
	MaturityClient      ClientMaturity = "client"
	MaturityAdvocate    ClientMaturity = "advocate"
)

// FundingSourceStatus enumerates the funding source soft-delete lifecycle.
type FundingSourceStatus string

// Canonical funding source statuses.
const (
	FundingStatusActive   FundingSourceStatus = "active"
	FundingStatusInactive FundingSourceStatus = "inactive"
	FundingStatusArchived FundingSourceStatus = "archived"
	FundingStatusExcluded FundingSourceStatus = "excluded"
)

// FundingSourceType follows the Brazilian innovation-funding taxonomy.
type FundingSourceType string

// Canonical funding source types.
const (
	FundingTypeGrant         FundingSourceType = "grant"
	FundingTypeFinancing     FundingSourceType = "financing"
	FundingTypeEquity        FundingSourceType = "equity"
	FundingTypeNonRefundable FundingSourceType = "non_refundable"
	FundingTypeTaxIncentive  FundingSourceType = "tax_incentive"
	FundingTypeMixed         FundingSourceType = "mixed"
)

// OpportunityStage represents the pipeline position of an opportunity,
// distinct from its coarser status.
type OpportunityStage string

// Pipeline stages in forward order.
const (
	StageIntelligence OpportunityStage = "intelligence"
	StageValidation   OpportunityStage = "validation"
	StageApproach     OpportunityStage = "approach"
	StageRegistration OpportunityStage = "registration"
	StageConversion   OpportunityStage = "conversion"
	StagePostSale     OpportunityStage = "post_sale"
)

// OpportunityStatus enumerates the opportunity soft-delete lifecycle.
type OpportunityStatus string

// Canonical opportunity statuses.
const (
	OpportunityStatusActive   OpportunityStatus = "active"
	OpportunityStatusWon      OpportunityStatus = "won"
	OpportunityStatusLost     OpportunityStatus = "lost"
	OpportunityStatusArchived OpportunityStatus = "archived"
	OpportunityStatusExcluded OpportunityStatus = "excluded"
)

// InstituteStatus enumerates the institute soft-delete lifecycle.
type InstituteStatus string

// Canonical institute statuses.
const (
	InstituteStatusActive   InstituteStatus = "active"
	InstituteStatusInactive InstituteStatus = "inactive"
	InstituteStatusArchived InstituteStatus = "archived"
	InstituteStatusExcluded InstituteStatus = "excluded"
)

// ProjectStatus enumerates project workflow states.
type ProjectStatus string

// Canonical project statuses.
const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
	ProjectStatusArchived  ProjectStatus = "archived"
	ProjectStatusExcluded  ProjectStatus = "excluded"
)

// InteractionType enumerates CRM interaction channels.
type InteractionType string

// Canonical interaction types.
const (
	InteractionMeeting InteractionType = "meeting"
	InteractionEmail   InteractionType = "email"
	InteractionCall    InteractionType = "call"
	InteractionVisit   InteractionType = "visit"
	InteractionEvent   InteractionType = "event"
	InteractionOther   InteractionType = "other"
)

// InteractionOutcome captures the result of an interaction.
type InteractionOutcome string

// Canonical interaction outcomes.
const (
	OutcomePositive InteractionOutcome = "positive"
	OutcomeNeutral  InteractionOutcome = "neutral"
	OutcomeNegative InteractionOutcome = "negative"
	OutcomePending  InteractionOutcome = "pending"
)

// InteractionStatus enumerates the interaction soft-delete lifecycle.
type InteractionStatus string

// Canonical interaction statuses.
const (
	InteractionStatusActive    InteractionStatus = "active"
	InteractionStatusCompleted InteractionStatus = "completed"
	InteractionStatusCancelled InteractionStatus = "cancelled"
	InteractionStatusArchived  InteractionStatus = "archived"
	InteractionStatusExcluded  InteractionStatus = "excluded"
)

// IngestionStatus enumerates ingestion processing states. The terminal
// soft-delete value for ingestions is "cancelada".
type IngestionStatus string

// Canonical ingestion statuses (Portuguese values preserved from the wire
// format of the upstream system).
const (
	IngestionStatusPendente    IngestionStatus = "pendente"
	IngestionStatusProcessando IngestionStatus = "processando"
	IngestionStatusConcluida   IngestionStatus = "concluida"
	IngestionStatusFalha       IngestionStatus = "falha"
	IngestionStatusCancelada   IngestionStatus = "cancelada"
)

// IngestionSource identifies the upstream data provider.
type IngestionSource string

// Canonical ingestion sources.
const (
	SourceRAIS        IngestionSource = "rais"
	SourceIBGE        IngestionSource = "ibge"
	SourceINPI        IngestionSource = "inpi"
	SourceFINEP       IngestionSource = "finep"
	SourceBNDES       IngestionSource = "bndes"
	SourceCustomizada IngestionSource = "customizada"
)

// IngestionMethod identifies how the data entered the system.
type IngestionMethod string

// Canonical ingestion methods.
const (
	MethodBatchUpload IngestionMethod = "batch_upload"
	MethodAPIPull     IngestionMethod = "api_pull"
	MethodManual      IngestionMethod = "manual"
	MethodScheduled   IngestionMethod = "scheduled"
)

// ConsentStatus enumerates LGPD consent states. There is no implicit initial
// status: the caller must state whether consent was granted or denied.
type ConsentStatus string

// Canonical consent statuses.
const (
	ConsentStatusGranted  ConsentStatus = "granted"
	ConsentStatusDenied   ConsentStatus = "denied"
	ConsentStatusRevoked  ConsentStatus = "revoked"
	ConsentStatusExcluded ConsentStatus = "excluded"
)

// Base contains the lifecycle fields shared by every versioned entity:
// identity, tenant scoping, provenance metadata, and the co-located
// append-only history log.
type Base struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenant_id"`
	CreatedBy string         `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedBy string         `json:"updated_by"`
	UpdatedAt time.Time      `json:"updated_at"`
	History   []HistoryEntry `json:"history"`
}

// Meta exposes the shared lifecycle fields; embedding Base satisfies Versioned.
func (b *Base) Meta() *Base { return b }

// Versioned is the contract every lifecycle-managed entity satisfies.
type Versioned interface {
	Meta() *Base
}

// Client represents a CRM client tracked through the prospecting funnel.
type Client struct {
	Base
	Name     string         `json:"name"`
	CNPJ     string         `json:"cnpj"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone,omitempty"`
	Website  string         `json:"website,omitempty"`
	Sector   string         `json:"sector"`
	Size     string         `json:"size"`
	Maturity ClientMaturity `json:"maturity"`
	Address  string         `json:"address,omitempty"`
	Notes    string         `json:"notes,omitempty"`
	Status   ClientStatus   `json:"status"`
}

// FundingSource represents an innovation-funding instrument (edital, grant,
// credit line) available for matching against clients.
type FundingSource struct {
	Base
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Type         FundingSourceType   `json:"type"`
	Sectors      []string            `json:"sectors"`
	Amount       int64               `json:"amount"`
	TRLMin       int                 `json:"trl_min"`
	TRLMax       int                 `json:"trl_max"`
	Deadline     time.Time           `json:"deadline"`
	URL          string              `json:"url,omitempty"`
	Requirements string              `json:"requirements,omitempty"`
	Status       FundingSourceStatus `json:"status"`
}

// Opportunity links a client to a funding source through the pipeline. It
// carries two independent append-only logs: the general history and the
// stage transition log.
type Opportunity struct {
	Base
	ClientID          string            `json:"client_id"`
	FundingSourceID   string            `json:"funding_source_id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Stage             OpportunityStage  `json:"stage"`
	Score             int               `json:"score"`
	EstimatedValue    int64             `json:"estimated_value"`
	Probability       int               `json:"probability"`
	ExpectedCloseDate time.Time         `json:"expected_close_date"`
	ResponsibleUserID string            `json:"responsible_user_id"`
	Status            OpportunityStatus `json:"status"`
	StageTransitions  []StageTransition `json:"stage_transitions"`
}

// Institute represents a research or technology institute in the portfolio.
type Institute struct {
	Base
	Name         string          `json:"name"`
	Acronym      string          `json:"acronym,omitempty"`
	Description  string          `json:"description"`
	Website      string          `json:"website,omitempty"`
	ContactEmail string          `json:"contact_email"`
	ContactPhone string          `json:"contact_phone,omitempty"`
	Status       InstituteStatus `json:"status"`
}

// Project represents an institute project with TRL tracking.
type Project struct {
	Base
	InstituteID string        `json:"institute_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Objectives  string        `json:"objectives"`
	TRL         int           `json:"trl"`
	Budget      int64         `json:"budget,omitempty"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
	TeamSize    int           `json:"team_size"`
	Status      ProjectStatus `json:"status"`
}

// Interaction records a touchpoint with a client.
type Interaction struct {
	Base
	ClientID     string             `json:"client_id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Type         InteractionType    `json:"type"`
	Date         time.Time          `json:"date"`
	Outcome      InteractionOutcome `json:"outcome"`
	NextSteps    string             `json:"next_steps,omitempty"`
	Participants []string           `json:"participants"`
	Status       InteractionStatus  `json:"status"`
}

// Ingestion records one batch of inbound data with its quality metadata.
type Ingestion struct {
	Base
	Source           IngestionSource `json:"source"`
	Method           IngestionMethod `json:"method"`
	OriginalFile     string          `json:"original_file,omitempty"`
	StoragePath      string          `json:"storage_path,omitempty"`
	FileSizeBytes    int64           `json:"file_size_bytes,omitempty"`
	MimeType         string          `json:"mime_type,omitempty"`
	ReliabilityScore int             `json:"reliability_score"`
	TotalRecords     int             `json:"total_records,omitempty"`
	ValidRecords     int             `json:"valid_records,omitempty"`
	InvalidRecords   int             `json:"invalid_records,omitempty"`
	ConsentID        string          `json:"consent_id,omitempty"`
	Status           IngestionStatus `json:"status"`
}

// Consent records one LGPD consent version. Updates to consent terms create
// new rows sharing BaseConsentID with an incremented Version rather than
// mutating in place, so the full consent history is reconstructable.
type Consent struct {
	Base
	Version          int           `json:"version"`
	BaseConsentID    string        `json:"base_consent_id,omitempty"`
	SubjectID        string        `json:"subject_id,omitempty"`
	SubjectEmail     string        `json:"subject_email,omitempty"`
	SubjectDocument  string        `json:"subject_document,omitempty"`
	Purpose          string        `json:"purpose"`
	DataCategories   []string      `json:"data_categories"`
	CollectionOrigin string        `json:"collection_origin"`
	OriginIP         string        `json:"origin_ip,omitempty"`
	UserAgent        string        `json:"user_agent,omitempty"`
	GrantedAt        *time.Time    `json:"granted_at,omitempty"`
	RevokedAt        *time.Time    `json:"revoked_at,omitempty"`
	RevocationReason string        `json:"revocation_reason,omitempty"`
	Status           ConsentStatus `json:"status"`
}

// Competence is a reference catalog item. It deliberately carries no status
// and no history: it is the one entity kind with a hard-delete path.
type Competence struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}
