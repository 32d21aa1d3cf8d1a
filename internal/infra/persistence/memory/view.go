package memory

import "prospecia/pkg/domain"

// transactionView exposes a read-only snapshot of the transactional state to
// rules and repository reads.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) domain.TransactionView {
	return transactionView{state: state}
}

// ListClients returns all clients within the snapshot.
func (v transactionView) ListClients() []domain.Client {
	out := make([]domain.Client, 0, len(v.state.clients))
	for _, c := range v.state.clients {
		out = append(out, cloneClient(c))
	}
	return out
}

// ListFundingSources returns all funding sources within the snapshot.
func (v transactionView) ListFundingSources() []domain.FundingSource {
	out := make([]domain.FundingSource, 0, len(v.state.fundingSources))
	for _, f := range v.state.fundingSources {
		out = append(out, cloneFundingSource(f))
	}
	return out
}

// ListOpportunities returns all opportunities within the snapshot.
func (v transactionView) ListOpportunities() []domain.Opportunity {
	out := make([]domain.Opportunity, 0, len(v.state.opportunities))
	for _, o := range v.state.opportunities {
		out = append(out, cloneOpportunity(o))
	}
	return out
}

// ListInstitutes returns all institutes within the snapshot.
func (v transactionView) ListInstitutes() []domain.Institute {
	out := make([]domain.Institute, 0, len(v.state.institutes))
	for _, i := range v.state.institutes {
		out = append(out, cloneInstitute(i))
	}
	return out
}

// ListProjects returns all projects within the snapshot.
func (v transactionView) ListProjects() []domain.Project {
	out := make([]domain.Project, 0, len(v.state.projects))
	for _, p := range v.state.projects {
		out = append(out, cloneProject(p))
	}
	return out
}

// ListInteractions returns all interactions within the snapshot.
func (v transactionView) ListInteractions() []domain.Interaction {
	out := make([]domain.Interaction, 0, len(v.state.interactions))
	for _, i := range v.state.interactions {
		out = append(out, cloneInteraction(i))
	}
	return out
}

// ListIngestions returns all ingestion records within the snapshot.
func (v transactionView) ListIngestions() []domain.Ingestion {
	out := make([]domain.Ingestion, 0, len(v.state.ingestions))
	for _, i := range v.state.ingestions {
		out = append(out, cloneIngestion(i))
	}
	return out
}

// ListConsents returns all consent rows within the snapshot.
func (v transactionView) ListConsents() []domain.Consent {
	out := make([]domain.Consent, 0, len(v.state.consents))
	for _, c := range v.state.consents {
		out = append(out, cloneConsent(c))
	}
	return out
}

// ListCompetences returns all catalog competences within the snapshot.
func (v transactionView) ListCompetences() []domain.Competence {
	out := make([]domain.Competence, 0, len(v.state.competences))
	for _, c := range v.state.competences {
		out = append(out, cloneCompetence(c))
	}
	return out
}

// FindClient retrieves a client by ID from the snapshot.
func (v transactionView) FindClient(id string) (domain.Client, bool) {
	c, ok := v.state.clients[id]
	if !ok {
		return domain.Client{}, false
	}
	return cloneClient(c), true
}

// FindFundingSource retrieves a funding source by ID from the snapshot.
func (v transactionView) FindFundingSource(id string) (domain.FundingSource, bool) {
	f, ok := v.state.fundingSources[id]
	if !ok {
		return domain.FundingSource{}, false
	}
	return cloneFundingSource(f), true
}

// FindOpportunity retrieves an opportunity by ID from the snapshot.
func (v transactionView) FindOpportunity(id string) (domain.Opportunity, bool) {
	o, ok := v.state.opportunities[id]
	if !ok {
		return domain.Opportunity{}, false
	}
	return cloneOpportunity(o), true
}

// FindInstitute retrieves an institute by ID from the snapshot.
func (v transactionView) FindInstitute(id string) (domain.Institute, bool) {
	i, ok := v.state.institutes[id]
	if !ok {
		return domain.Institute{}, false
	}
	return cloneInstitute(i), true
}

// FindProject retrieves a project by ID from the snapshot.
func (v transactionView) FindProject(id string) (domain.Project, bool) {
	p, ok := v.state.projects[id]
	if !ok {
		return domain.Project{}, false
	}
	return cloneProject(p), true
}

// FindInteraction retrieves an interaction by ID from the snapshot.
func (v transactionView) FindInteraction(id string) (domain.Interaction, bool) {
	i, ok := v.state.interactions[id]
	if !ok {
		return domain.Interaction{}, false
	}
	return cloneInteraction(i), true
}

// FindIngestion retrieves an ingestion record by ID from the snapshot.
func (v transactionView) FindIngestion(id string) (domain.Ingestion, bool) {
	i, ok := v.state.ingestions[id]
	if !ok {
		return domain.Ingestion{}, false
	}
	return cloneIngestion(i), true
}

// FindConsent retrieves a consent row by ID from the snapshot.
func (v transactionView) FindConsent(id string) (domain.Consent, bool) {
	c, ok := v.state.consents[id]
	if !ok {
		return domain.Consent{}, false
	}
	return cloneConsent(c), true
}

// FindCompetence retrieves a catalog competence by ID from the snapshot.
func (v transactionView) FindCompetence(id string) (domain.Competence, bool) {
	c, ok := v.state.competences[id]
	if !ok {
		return domain.Competence{}, false
	}
	return cloneCompetence(c), true
}
