package core

import "prospecia/pkg/domain"

// Per-kind descriptors wiring the generic lifecycle engine to the domain
// entities and the transaction methods that persist them.

var clientSpec = kindSpec[domain.Client]{
	entity:    domain.EntityClient,
	opPrefix:  "client",
	meta:      func(c *domain.Client) *domain.Base { return &c.Base },
	status:    func(c *domain.Client) string { return string(c.Status) },
	setStatus: func(c *domain.Client, s string) { c.Status = domain.ClientStatus(s) },
	validate:  func(c domain.Client) error { return c.Validate() },
	protected: baseProtectedFields(),
	create: func(tx domain.Transaction, c domain.Client) (domain.Client, error) {
		return tx.CreateClient(c)
	},
	update: func(tx domain.Transaction, id string, fn func(*domain.Client) error) (domain.Client, error) {
		return tx.UpdateClient(id, fn)
	},
	find: func(view domain.TransactionView, id string) (domain.Client, bool) {
		return view.FindClient(id)
	},
	list: func(view domain.TransactionView) []domain.Client {
		return view.ListClients()
	},
}

var fundingSourceSpec = kindSpec[domain.FundingSource]{
	entity:    domain.EntityFundingSource,
	opPrefix:  "funding_source",
	meta:      func(f *domain.FundingSource) *domain.Base { return &f.Base },
	status:    func(f *domain.FundingSource) string { return string(f.Status) },
	setStatus: func(f *domain.FundingSource, s string) { f.Status = domain.FundingSourceStatus(s) },
	validate:  func(f domain.FundingSource) error { return f.Validate() },
	protected: baseProtectedFields(),

	requireReason: true,
	create: func(tx domain.Transaction, f domain.FundingSource) (domain.FundingSource, error) {
		return tx.CreateFundingSource(f)
	},
	update: func(tx domain.Transaction, id string, fn func(*domain.FundingSource) error) (domain.FundingSource, error) {
		return tx.UpdateFundingSource(id, fn)
	},
	find: func(view domain.TransactionView, id string) (domain.FundingSource, bool) {
		return view.FindFundingSource(id)
	},
	list: func(view domain.TransactionView) []domain.FundingSource {
		return view.ListFundingSources()
	},
}

// Opportunity stage and its transition log only move through TransitionStage,
// never through a field patch.
var opportunitySpec = kindSpec[domain.Opportunity]{
	entity:    domain.EntityOpportunity,
	opPrefix:  "opportunity",
	meta:      func(o *domain.Opportunity) *domain.Base { return &o.Base },
	status:    func(o *domain.Opportunity) string { return string(o.Status) },
	setStatus: func(o *domain.Opportunity, s string) { o.Status = domain.OpportunityStatus(s) },
	validate:  func(o domain.Opportunity) error { return o.Validate() },
	protected: baseProtectedFields("stage", "stage_transitions"),

	requireReason: true,
	create: func(tx domain.Transaction, o domain.Opportunity) (domain.Opportunity, error) {
		return tx.CreateOpportunity(o)
	},
	update: func(tx domain.Transaction, id string, fn func(*domain.Opportunity) error) (domain.Opportunity, error) {
		return tx.UpdateOpportunity(id, fn)
	},
	find: func(view domain.TransactionView, id string) (domain.Opportunity, bool) {
		return view.FindOpportunity(id)
	},
	list: func(view domain.TransactionView) []domain.Opportunity {
		return view.ListOpportunities()
	},
}

var instituteSpec = kindSpec[domain.Institute]{
	entity:    domain.EntityInstitute,
	opPrefix:  "institute",
	meta:      func(i *domain.Institute) *domain.Base { return &i.Base },
	status:    func(i *domain.Institute) string { return string(i.Status) },
	setStatus: func(i *domain.Institute, s string) { i.Status = domain.InstituteStatus(s) },
	validate:  func(i domain.Institute) error { return i.Validate() },
	protected: baseProtectedFields(),
	create: func(tx domain.Transaction, i domain.Institute) (domain.Institute, error) {
		return tx.CreateInstitute(i)
	},
	update: func(tx domain.Transaction, id string, fn func(*domain.Institute) error) (domain.Institute, error) {
		return tx.UpdateInstitute(id, fn)
	},
	find: func(view domain.TransactionView, id string) (domain.Institute, bool) {
		return view.FindInstitute(id)
	},
	list: func(view domain.TransactionView) []domain.Institute {
		return view.ListInstitutes()
	},
}

var projectSpec = kindSpec[domain.Project]{
	entity:    domain.EntityProject,
	opPrefix:  "project",
	meta:      func(p *domain.Project) *domain.Base { return &p.Base },
	status:    func(p *domain.Project) string { return string(p.Status) },
	setStatus: func(p *domain.Project, s string) { p.Status = domain.ProjectStatus(s) },
	validate:  func(p domain.Project) error { return p.Validate() },
	protected: baseProtectedFields(),
	create: func(tx domain.Transaction, p domain.Project) (domain.Project, error) {
		return tx.CreateProject(p)
	},
	update: func(tx domain.Transaction, id string, fn func(*domain.Project) error) (domain.Project, error) {
		return tx.UpdateProject(id, fn)
	},
	find: func(view domain.TransactionView, id string) (domain.Project, bool) {
		return view.FindProject(id)
	},
	list: func(view domain.TransactionView) []domain.Project {
		return view.ListProjects()
	},
}

var interactionSpec = kindSpec[domain.Interaction]{
	entity:    domain.EntityInteraction,
	opPrefix:  "interaction",
	meta:      func(i *domain.Interaction) *domain.Base { return &i.Base },
	status:    func(i *domain.Interaction) string { return string(i.Status) },
	setStatus: func(i *domain.Interaction, s string) { i.Status = domain.InteractionStatus(s) },
	validate:  func(i domain.Interaction) error { return i.Validate() },
	protected: baseProtectedFields(),
	create: func(tx domain.Transaction, i domain.Interaction) (domain.Interaction, error) {
		return tx.CreateInteraction(i)
	},
	update: func(tx domain.Transaction, id string, fn func(*domain.Interaction) error) (domain.Interaction, error) {
		return tx.UpdateInteraction(id, fn)
	},
	find: func(view domain.TransactionView, id string) (domain.Interaction, bool) {
		return view.FindInteraction(id)
	},
	list: func(view domain.TransactionView) []domain.Interaction {
		return view.ListInteractions()
	},
}

var ingestionSpec = kindSpec[domain.Ingestion]{
	entity:    domain.EntityIngestion,
	opPrefix:  "ingestion",
	meta:      func(i *domain.Ingestion) *domain.Base { return &i.Base },
	status:    func(i *domain.Ingestion) string { return string(i.Status) },
	setStatus: func(i *domain.Ingestion, s string) { i.Status = domain.IngestionStatus(s) },
	validate:  func(i domain.Ingestion) error { return i.Validate() },
	protected: baseProtectedFields(),
	create: func(tx domain.Transaction, i domain.Ingestion) (domain.Ingestion, error) {
		return tx.CreateIngestion(i)
	},
	update: func(tx domain.Transaction, id string, fn func(*domain.Ingestion) error) (domain.Ingestion, error) {
		return tx.UpdateIngestion(id, fn)
	},
	find: func(view domain.TransactionView, id string) (domain.Ingestion, bool) {
		return view.FindIngestion(id)
	},
	list: func(view domain.TransactionView) []domain.Ingestion {
		return view.ListIngestions()
	},
}

// Consent versioning fields never change in place: new terms mean a new row
// via CreateConsentVersion.
var consentSpec = kindSpec[domain.Consent]{
	entity:    domain.EntityConsent,
	opPrefix:  "consent",
	meta:      func(c *domain.Consent) *domain.Base { return &c.Base },
	status:    func(c *domain.Consent) string { return string(c.Status) },
	setStatus: func(c *domain.Consent, s string) { c.Status = domain.ConsentStatus(s) },
	validate:  func(c domain.Consent) error { return c.Validate() },
	protected: baseProtectedFields("version", "base_consent_id"),
	create: func(tx domain.Transaction, c domain.Consent) (domain.Consent, error) {
		return tx.CreateConsent(c)
	},
	update: func(tx domain.Transaction, id string, fn func(*domain.Consent) error) (domain.Consent, error) {
		return tx.UpdateConsent(id, fn)
	},
	find: func(view domain.TransactionView, id string) (domain.Consent, bool) {
		return view.FindConsent(id)
	},
	list: func(view domain.TransactionView) []domain.Consent {
		return view.ListConsents()
	},
}
