package memory

import (
	"fmt"
	"time"

	"prospecia/pkg/domain"
)

// transaction represents a mutation set applied to the store state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []domain.Change
	now     time.Time
}

func (tx *transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() domain.TransactionView {
	return newTransactionView(&tx.state)
}

// CreateClient stores a new client within the transaction.
func (tx *transaction) CreateClient(c domain.Client) (domain.Client, error) {
	if c.ID == "" {
		c.ID = tx.store.newID()
	}
	if _, exists := tx.state.clients[c.ID]; exists {
		return domain.Client{}, fmt.Errorf("client %q already exists", c.ID)
	}
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.clients[c.ID] = cloneClient(c)
	tx.recordChange(domain.Change{Entity: domain.EntityClient, Action: domain.ActionCreate, After: cloneClient(c)})
	return cloneClient(c), nil
}

// UpdateClient mutates a client using the provided mutator function.
func (tx *transaction) UpdateClient(id string, mutator func(*domain.Client) error) (domain.Client, error) {
	current, ok := tx.state.clients[id]
	if !ok {
		return domain.Client{}, domain.NotFoundError{Entity: domain.EntityClient, ID: id}
	}
	before := cloneClient(current)
	if err := mutator(&current); err != nil {
		return domain.Client{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.clients[id] = cloneClient(current)
	tx.recordChange(domain.Change{Entity: domain.EntityClient, Action: domain.ActionUpdate, Before: before, After: cloneClient(current)})
	return cloneClient(current), nil
}

// CreateFundingSource stores a new funding source.
func (tx *transaction) CreateFundingSource(f domain.FundingSource) (domain.FundingSource, error) {
	if f.ID == "" {
		f.ID = tx.store.newID()
	}
	if _, exists := tx.state.fundingSources[f.ID]; exists {
		return domain.FundingSource{}, fmt.Errorf("funding source %q already exists", f.ID)
	}
	f.CreatedAt = tx.now
	f.UpdatedAt = tx.now
	tx.state.fundingSources[f.ID] = cloneFundingSource(f)
	tx.recordChange(domain.Change{Entity: domain.EntityFundingSource, Action: domain.ActionCreate, After: cloneFundingSource(f)})
	return cloneFundingSource(f), nil
}

// UpdateFundingSource mutates an existing funding source.
func (tx *transaction) UpdateFundingSource(id string, mutator func(*domain.FundingSource) error) (domain.FundingSource, error) {
	current, ok := tx.state.fundingSources[id]
	if !ok {
		return domain.FundingSource{}, domain.NotFoundError{Entity: domain.EntityFundingSource, ID: id}
	}
	before := cloneFundingSource(current)
	if err := mutator(&current); err != nil {
		return domain.FundingSource{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.fundingSources[id] = cloneFundingSource(current)
	tx.recordChange(domain.Change{Entity: domain.EntityFundingSource, Action: domain.ActionUpdate, Before: before, After: cloneFundingSource(current)})
	return cloneFundingSource(current), nil
}

// CreateOpportunity stores a new opportunity.
func (tx *transaction) CreateOpportunity(o domain.Opportunity) (domain.Opportunity, error) {
	if o.ID == "" {
		o.ID = tx.store.newID()
	}
	if _, exists := tx.state.opportunities[o.ID]; exists {
		return domain.Opportunity{}, fmt.Errorf("opportunity %q already exists", o.ID)
	}
	o.CreatedAt = tx.now
	o.UpdatedAt = tx.now
	tx.state.opportunities[o.ID] = cloneOpportunity(o)
	tx.recordChange(domain.Change{Entity: domain.EntityOpportunity, Action: domain.ActionCreate, After: cloneOpportunity(o)})
	return cloneOpportunity(o), nil
}

// UpdateOpportunity mutates an existing opportunity.
func (tx *transaction) UpdateOpportunity(id string, mutator func(*domain.Opportunity) error) (domain.Opportunity, error) {
	current, ok := tx.state.opportunities[id]
	if !ok {
		return domain.Opportunity{}, domain.NotFoundError{Entity: domain.EntityOpportunity, ID: id}
	}
	before := cloneOpportunity(current)
	if err := mutator(&current); err != nil {
		return domain.Opportunity{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.opportunities[id] = cloneOpportunity(current)
	tx.recordChange(domain.Change{Entity: domain.EntityOpportunity, Action: domain.ActionUpdate, Before: before, After: cloneOpportunity(current)})
	return cloneOpportunity(current), nil
}

// CreateInstitute stores a new institute.
func (tx *transaction) CreateInstitute(i domain.Institute) (domain.Institute, error) {
	if i.ID == "" {
		i.ID = tx.store.newID()
	}
	if _, exists := tx.state.institutes[i.ID]; exists {
		return domain.Institute{}, fmt.Errorf("institute %q already exists", i.ID)
	}
	i.CreatedAt = tx.now
	i.UpdatedAt = tx.now
	tx.state.institutes[i.ID] = cloneInstitute(i)
	tx.recordChange(domain.Change{Entity: domain.EntityInstitute, Action: domain.ActionCreate, After: cloneInstitute(i)})
	return cloneInstitute(i), nil
}

// UpdateInstitute mutates an existing institute.
func (tx *transaction) UpdateInstitute(id string, mutator func(*domain.Institute) error) (domain.Institute, error) {
	current, ok := tx.state.institutes[id]
	if !ok {
		return domain.Institute{}, domain.NotFoundError{Entity: domain.EntityInstitute, ID: id}
	}
	before := cloneInstitute(current)
	if err := mutator(&current); err != nil {
		return domain.Institute{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.institutes[id] = cloneInstitute(current)
	tx.recordChange(domain.Change{Entity: domain.EntityInstitute, Action: domain.ActionUpdate, Before: before, After: cloneInstitute(current)})
	return cloneInstitute(current), nil
}

// CreateProject stores a new project.
func (tx *transaction) CreateProject(p domain.Project) (domain.Project, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.projects[p.ID]; exists {
		return domain.Project{}, fmt.Errorf("project %q already exists", p.ID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.projects[p.ID] = cloneProject(p)
	tx.recordChange(domain.Change{Entity: domain.EntityProject, Action: domain.ActionCreate, After: cloneProject(p)})
	return cloneProject(p), nil
}

// UpdateProject mutates an existing project.
func (tx *transaction) UpdateProject(id string, mutator func(*domain.Project) error) (domain.Project, error) {
	current, ok := tx.state.projects[id]
	if !ok {
		return domain.Project{}, domain.NotFoundError{Entity: domain.EntityProject, ID: id}
	}
	before := cloneProject(current)
	if err := mutator(&current); err != nil {
		return domain.Project{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.projects[id] = cloneProject(current)
	tx.recordChange(domain.Change{Entity: domain.EntityProject, Action: domain.ActionUpdate, Before: before, After: cloneProject(current)})
	return cloneProject(current), nil
}

// CreateInteraction stores a new interaction.
func (tx *transaction) CreateInteraction(i domain.Interaction) (domain.Interaction, error) {
	if i.ID == "" {
		i.ID = tx.store.newID()
	}
	if _, exists := tx.state.interactions[i.ID]; exists {
		return domain.Interaction{}, fmt.Errorf("interaction %q already exists", i.ID)
	}
	i.CreatedAt = tx.now
	i.UpdatedAt = tx.now
	tx.state.interactions[i.ID] = cloneInteraction(i)
	tx.recordChange(domain.Change{Entity: domain.EntityInteraction, Action: domain.ActionCreate, After: cloneInteraction(i)})
	return cloneInteraction(i), nil
}

// UpdateInteraction mutates an existing interaction.
func (tx *transaction) UpdateInteraction(id string, mutator func(*domain.Interaction) error) (domain.Interaction, error) {
	current, ok := tx.state.interactions[id]
	if !ok {
		return domain.Interaction{}, domain.NotFoundError{Entity: domain.EntityInteraction, ID: id}
	}
	before := cloneInteraction(current)
	if err := mutator(&current); err != nil {
		return domain.Interaction{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.interactions[id] = cloneInteraction(current)
	tx.recordChange(domain.Change{Entity: domain.EntityInteraction, Action: domain.ActionUpdate, Before: before, After: cloneInteraction(current)})
	return cloneInteraction(current), nil
}

// CreateIngestion stores a new ingestion record.
func (tx *transaction) CreateIngestion(i domain.Ingestion) (domain.Ingestion, error) {
	if i.ID == "" {
		i.ID = tx.store.newID()
	}
	if _, exists := tx.state.ingestions[i.ID]; exists {
		return domain.Ingestion{}, fmt.Errorf("ingestion %q already exists", i.ID)
	}
	i.CreatedAt = tx.now
	i.UpdatedAt = tx.now
	tx.state.ingestions[i.ID] = cloneIngestion(i)
	tx.recordChange(domain.Change{Entity: domain.EntityIngestion, Action: domain.ActionCreate, After: cloneIngestion(i)})
	return cloneIngestion(i), nil
}

// UpdateIngestion mutates an existing ingestion record.
func (tx *transaction) UpdateIngestion(id string, mutator func(*domain.Ingestion) error) (domain.Ingestion, error) {
	current, ok := tx.state.ingestions[id]
	if !ok {
		return domain.Ingestion{}, domain.NotFoundError{Entity: domain.EntityIngestion, ID: id}
	}
	before := cloneIngestion(current)
	if err := mutator(&current); err != nil {
		return domain.Ingestion{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.ingestions[id] = cloneIngestion(current)
	tx.recordChange(domain.Change{Entity: domain.EntityIngestion, Action: domain.ActionUpdate, Before: before, After: cloneIngestion(current)})
	return cloneIngestion(current), nil
}

// CreateConsent stores a new consent version row.
func (tx *transaction) CreateConsent(c domain.Consent) (domain.Consent, error) {
	if c.ID == "" {
		c.ID = tx.store.newID()
	}
	if _, exists := tx.state.consents[c.ID]; exists {
		return domain.Consent{}, fmt.Errorf("consent %q already exists", c.ID)
	}
	if c.Version == 0 {
		c.Version = 1
	}
	if c.BaseConsentID == "" {
		c.BaseConsentID = c.ID
	}
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.consents[c.ID] = cloneConsent(c)
	tx.recordChange(domain.Change{Entity: domain.EntityConsent, Action: domain.ActionCreate, After: cloneConsent(c)})
	return cloneConsent(c), nil
}

// UpdateConsent mutates an existing consent row (revocation, soft delete).
func (tx *transaction) UpdateConsent(id string, mutator func(*domain.Consent) error) (domain.Consent, error) {
	current, ok := tx.state.consents[id]
	if !ok {
		return domain.Consent{}, domain.NotFoundError{Entity: domain.EntityConsent, ID: id}
	}
	before := cloneConsent(current)
	if err := mutator(&current); err != nil {
		return domain.Consent{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.consents[id] = cloneConsent(current)
	tx.recordChange(domain.Change{Entity: domain.EntityConsent, Action: domain.ActionUpdate, Before: before, After: cloneConsent(current)})
	return cloneConsent(current), nil
}

// CreateCompetence stores a catalog competence.
func (tx *transaction) CreateCompetence(c domain.Competence) (domain.Competence, error) {
	if c.ID == "" {
		c.ID = tx.store.newID()
	}
	if _, exists := tx.state.competences[c.ID]; exists {
		return domain.Competence{}, fmt.Errorf("competence %q already exists", c.ID)
	}
	c.CreatedAt = tx.now
	tx.state.competences[c.ID] = cloneCompetence(c)
	tx.recordChange(domain.Change{Entity: domain.EntityCompetence, Action: domain.ActionCreate, After: cloneCompetence(c)})
	return cloneCompetence(c), nil
}

// DeleteCompetence physically removes a catalog competence.
func (tx *transaction) DeleteCompetence(id string) error {
	current, ok := tx.state.competences[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityCompetence, ID: id}
	}
	delete(tx.state.competences, id)
	tx.recordChange(domain.Change{Entity: domain.EntityCompetence, Action: domain.ActionDelete, Before: cloneCompetence(current)})
	return nil
}
