// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"sync"
	"time"

	"prospecia/pkg/domain"

	"github.com/google/uuid"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain
// persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type memoryState struct {
	clients        map[string]domain.Client
	fundingSources map[string]domain.FundingSource
	opportunities  map[string]domain.Opportunity
	institutes     map[string]domain.Institute
	projects       map[string]domain.Project
	interactions   map[string]domain.Interaction
	ingestions     map[string]domain.Ingestion
	consents       map[string]domain.Consent
	competences    map[string]domain.Competence
}

// Snapshot captures a point-in-time clone of the store state. History logs
// are persisted inline with each entity, preserving insertion order.
type Snapshot struct {
	Clients        map[string]domain.Client        `json:"clients"`
	FundingSources map[string]domain.FundingSource `json:"funding_sources"`
	Opportunities  map[string]domain.Opportunity   `json:"opportunities"`
	Institutes     map[string]domain.Institute     `json:"institutes"`
	Projects       map[string]domain.Project       `json:"projects"`
	Interactions   map[string]domain.Interaction   `json:"interactions"`
	Ingestions     map[string]domain.Ingestion     `json:"ingestions"`
	Consents       map[string]domain.Consent       `json:"consents"`
	Competences    map[string]domain.Competence    `json:"competences"`
}

func newMemoryState() memoryState {
	return memoryState{
		clients:        map[string]domain.Client{},
		fundingSources: map[string]domain.FundingSource{},
		opportunities:  map[string]domain.Opportunity{},
		institutes:     map[string]domain.Institute{},
		projects:       map[string]domain.Project{},
		interactions:   map[string]domain.Interaction{},
		ingestions:     map[string]domain.Ingestion{},
		consents:       map[string]domain.Consent{},
		competences:    map[string]domain.Competence{},
	}
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}

func cloneBase(b domain.Base) domain.Base {
	b.History = domain.CloneHistory(b.History)
	return b
}

func cloneClient(c domain.Client) domain.Client {
	c.Base = cloneBase(c.Base)
	return c
}

func cloneFundingSource(f domain.FundingSource) domain.FundingSource {
	f.Base = cloneBase(f.Base)
	f.Sectors = cloneStrings(f.Sectors)
	return f
}

func cloneOpportunity(o domain.Opportunity) domain.Opportunity {
	o.Base = cloneBase(o.Base)
	o.StageTransitions = domain.CloneStageTransitions(o.StageTransitions)
	return o
}

func cloneInstitute(i domain.Institute) domain.Institute {
	i.Base = cloneBase(i.Base)
	return i
}

func cloneProject(p domain.Project) domain.Project {
	p.Base = cloneBase(p.Base)
	if p.EndDate != nil {
		end := *p.EndDate
		p.EndDate = &end
	}
	return p
}

func cloneInteraction(i domain.Interaction) domain.Interaction {
	i.Base = cloneBase(i.Base)
	i.Participants = cloneStrings(i.Participants)
	return i
}

func cloneIngestion(i domain.Ingestion) domain.Ingestion {
	i.Base = cloneBase(i.Base)
	return i
}

func cloneConsent(c domain.Consent) domain.Consent {
	c.Base = cloneBase(c.Base)
	c.DataCategories = cloneStrings(c.DataCategories)
	if c.GrantedAt != nil {
		granted := *c.GrantedAt
		c.GrantedAt = &granted
	}
	if c.RevokedAt != nil {
		revoked := *c.RevokedAt
		c.RevokedAt = &revoked
	}
	return c
}

func cloneCompetence(c domain.Competence) domain.Competence { return c }

func (s memoryState) clone() memoryState {
	out := newMemoryState()
	for k, v := range s.clients {
		out.clients[k] = cloneClient(v)
	}
	for k, v := range s.fundingSources {
		out.fundingSources[k] = cloneFundingSource(v)
	}
	for k, v := range s.opportunities {
		out.opportunities[k] = cloneOpportunity(v)
	}
	for k, v := range s.institutes {
		out.institutes[k] = cloneInstitute(v)
	}
	for k, v := range s.projects {
		out.projects[k] = cloneProject(v)
	}
	for k, v := range s.interactions {
		out.interactions[k] = cloneInteraction(v)
	}
	for k, v := range s.ingestions {
		out.ingestions[k] = cloneIngestion(v)
	}
	for k, v := range s.consents {
		out.consents[k] = cloneConsent(v)
	}
	for k, v := range s.competences {
		out.competences[k] = cloneCompetence(v)
	}
	return out
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	cloned := state.clone()
	return Snapshot{
		Clients:        cloned.clients,
		FundingSources: cloned.fundingSources,
		Opportunities:  cloned.opportunities,
		Institutes:     cloned.institutes,
		Projects:       cloned.projects,
		Interactions:   cloned.interactions,
		Ingestions:     cloned.ingestions,
		Consents:       cloned.consents,
		Competences:    cloned.competences,
	}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Clients {
		state.clients[k] = cloneClient(v)
	}
	for k, v := range s.FundingSources {
		state.fundingSources[k] = cloneFundingSource(v)
	}
	for k, v := range s.Opportunities {
		state.opportunities[k] = cloneOpportunity(v)
	}
	for k, v := range s.Institutes {
		state.institutes[k] = cloneInstitute(v)
	}
	for k, v := range s.Projects {
		state.projects[k] = cloneProject(v)
	}
	for k, v := range s.Interactions {
		state.interactions[k] = cloneInteraction(v)
	}
	for k, v := range s.Ingestions {
		state.ingestions[k] = cloneIngestion(v)
	}
	for k, v := range s.Consents {
		state.consents[k] = cloneConsent(v)
	}
	for k, v := range s.Competences {
		state.competences[k] = cloneCompetence(v)
	}
	return state
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *domain.RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	return uuid.NewString()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// RulesEngine exposes the currently configured engine for integration points.
func (s *Store) RulesEngine() *domain.RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// SetNowFunc overrides the time provider; tests use it to pin timestamps.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The copy replaces the live state only after fn succeeds and no
// registered rule reports a blocking violation, so an entity mutation and
// its history append commit or roll back together.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}
