package domain

// statusPolicy is the fixed directed graph of legal status moves for one
// entity kind. A permissive policy allows any move between non-terminal
// statuses while still treating the excluded value as a dead end.
type statusPolicy struct {
	entity     EntityType
	initial    string
	excluded   string
	valid      map[string]struct{}
	edges      map[string][]string
	permissive bool
}

func toSet(values ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

// symmetricEdges is the 4-state active/inactive/archived/excluded pattern
// shared by clients, funding sources, and institutes.
func symmetricEdges() map[string][]string {
	return map[string][]string{
		"active":   {"inactive", "archived", "excluded"},
		"inactive": {"active", "archived", "excluded"},
		"archived": {"active", "excluded"},
		"excluded": {},
	}
}

var statusPolicies = map[EntityType]statusPolicy{
	EntityClient: {
		entity:   EntityClient,
		initial:  string(ClientStatusActive),
		excluded: string(ClientStatusExcluded),
		valid:    toSet("active", "inactive", "archived", "excluded"),
		edges:    symmetricEdges(),
	},
	EntityFundingSource: {
		entity:   EntityFundingSource,
		initial:  string(FundingStatusActive),
		excluded: string(FundingStatusExcluded),
		valid:    toSet("active", "inactive", "archived", "excluded"),
		edges:    symmetricEdges(),
	},
	EntityInstitute: {
		entity:   EntityInstitute,
		initial:  string(InstituteStatusActive),
		excluded: string(InstituteStatusExcluded),
		valid:    toSet("active", "inactive", "archived", "excluded"),
		edges:    symmetricEdges(),
	},
	EntityOpportunity: {
		entity:   EntityOpportunity,
		initial:  string(OpportunityStatusActive),
		excluded: string(OpportunityStatusExcluded),
		valid:    toSet("active", "won", "lost", "archived", "excluded"),
		edges: map[string][]string{
			"active":   {"won", "lost", "archived", "excluded"},
			"won":      {"archived", "excluded"},
			"lost":     {"archived", "excluded"},
			"archived": {"active", "excluded"},
			"excluded": {},
		},
	},
	// Project and Interaction shipped without an explicit edge table upstream.
	// The permissive policy makes that intentional: any move between
	// non-excluded statuses is legal, excluded stays terminal.
	EntityProject: {
		entity:     EntityProject,
		initial:    string(ProjectStatusPlanning),
		excluded:   string(ProjectStatusExcluded),
		valid:      toSet("planning", "active", "on_hold", "completed", "cancelled", "archived", "excluded"),
		permissive: true,
	},
	EntityInteraction: {
		entity:     EntityInteraction,
		initial:    string(InteractionStatusActive),
		excluded:   string(InteractionStatusExcluded),
		valid:      toSet("active", "completed", "cancelled", "archived", "excluded"),
		permissive: true,
	},
	EntityIngestion: {
		entity:   EntityIngestion,
		initial:  string(IngestionStatusPendente),
		excluded: string(IngestionStatusCancelada),
		valid:    toSet("pendente", "processando", "concluida", "falha", "cancelada"),
		edges: map[string][]string{
			"pendente":    {"processando", "cancelada"},
			"processando": {"concluida", "falha", "cancelada"},
			"concluida":   {"cancelada"},
			"falha":       {"pendente", "cancelada"},
			"cancelada":   {},
		},
	},
	EntityConsent: {
		entity:   EntityConsent,
		excluded: string(ConsentStatusExcluded),
		valid:    toSet("granted", "denied", "revoked", "excluded"),
		edges: map[string][]string{
			"granted":  {"revoked", "excluded"},
			"denied":   {"excluded"},
			"revoked":  {"excluded"},
			"excluded": {},
		},
	},
}

// stageEdges is the strict linear forward-only opportunity pipeline graph.
var stageEdges = map[OpportunityStage]OpportunityStage{
	StageIntelligence: StageValidation,
	StageValidation:   StageApproach,
	StageApproach:     StageRegistration,
	StageRegistration: StageConversion,
	StageConversion:   StagePostSale,
}

// CanTransition reports whether the status move current -> target is legal
// for the given entity kind. It is deterministic and total: unknown kinds,
// unknown statuses, and self-transitions all report false. Callers treat
// current == target as a no-op and short-circuit before invoking the policy.
func CanTransition(entity EntityType, current, target string) bool {
	policy, ok := statusPolicies[entity]
	if !ok {
		return false
	}
	if current == target {
		return false
	}
	if _, ok := policy.valid[target]; !ok {
		return false
	}
	if policy.permissive {
		if _, ok := policy.valid[current]; !ok {
			return false
		}
		return current != policy.excluded
	}
	for _, next := range policy.edges[current] {
		if next == target {
			return true
		}
	}
	return false
}

// CanTransitionStage reports whether an opportunity stage move is legal.
// Only the single forward step is permitted; skips, reversals, and
// self-transitions are all illegal.
func CanTransitionStage(current, target OpportunityStage) bool {
	next, ok := stageEdges[current]
	return ok && next == target
}

// ValidStage reports whether value is a member of the opportunity stage enum.
func ValidStage(value OpportunityStage) bool {
	if _, ok := stageEdges[value]; ok {
		return true
	}
	return value == StagePostSale
}

// InitialStatus returns the kind's creation-time status. Consent has no
// implicit initial status and returns ok=false.
func InitialStatus(entity EntityType) (string, bool) {
	policy, ok := statusPolicies[entity]
	if !ok || policy.initial == "" {
		return "", false
	}
	return policy.initial, true
}

// ExcludedStatus returns the kind's terminal soft-delete value.
func ExcludedStatus(entity EntityType) (string, bool) {
	policy, ok := statusPolicies[entity]
	if !ok {
		return "", false
	}
	return policy.excluded, true
}

// ValidStatus reports whether value is a member of the kind's status enum.
func ValidStatus(entity EntityType, value string) bool {
	policy, ok := statusPolicies[entity]
	if !ok {
		return false
	}
	_, ok = policy.valid[value]
	return ok
}

// LifecycleKinds lists the entity kinds governed by the soft-delete
// lifecycle, in stable order. Competence is excluded by design.
func LifecycleKinds() []EntityType {
	return []EntityType{
		EntityClient,
		EntityFundingSource,
		EntityOpportunity,
		EntityInstitute,
		EntityProject,
		EntityInteraction,
		EntityIngestion,
		EntityConsent,
	}
}
