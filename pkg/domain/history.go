package domain

import "time"

// History actions recorded in the audit trail.
const (
	// HistoryActionCreate marks the entry written when an entity is created.
	HistoryActionCreate = "create"
	// HistoryActionUpdate marks a field-level update.
	HistoryActionUpdate = "update"
	// HistoryActionSoftDelete marks the terminal status transition.
	HistoryActionSoftDelete = "soft_delete"
	// HistoryActionStageTransition marks an opportunity stage move.
	HistoryActionStageTransition = "stage_transition"
)

// HistoryEntry is one immutable record of "what changed, who changed it,
// when, and why". Entries are only ever appended, never edited or removed.
type HistoryEntry struct {
	Timestamp     time.Time      `json:"timestamp"`
	ActorID       string         `json:"actor_id"`
	Action        string         `json:"action"`
	ChangedFields map[string]any `json:"changed_fields"`
	Reason        string         `json:"reason,omitempty"`
}

// StageTransition is one entry of the opportunity-specific transition log,
// kept separate from the general history for its own consumers.
type StageTransition struct {
	FromStage OpportunityStage `json:"from_stage"`
	ToStage   OpportunityStage `json:"to_stage"`
	ActorID   string           `json:"actor_id"`
	Reason    string           `json:"reason"`
	Timestamp time.Time        `json:"timestamp"`
}

// AppendHistory adds one entry to the entity's audit trail. ChangedFields is
// cloned so later caller mutations cannot reach the recorded entry.
func (b *Base) AppendHistory(actorID, action string, changedFields map[string]any, reason string, at time.Time) {
	entry := HistoryEntry{
		Timestamp: at,
		ActorID:   actorID,
		Action:    action,
		Reason:    reason,
	}
	if changedFields != nil {
		entry.ChangedFields = make(map[string]any, len(changedFields))
		for k, v := range changedFields {
			entry.ChangedFields[k] = v
		}
	}
	b.History = append(b.History, entry)
}

// CloneHistory returns a defensive copy of the history log in insertion order.
func CloneHistory(entries []HistoryEntry) []HistoryEntry {
	if entries == nil {
		return nil
	}
	out := make([]HistoryEntry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].ChangedFields == nil {
			continue
		}
		fields := make(map[string]any, len(out[i].ChangedFields))
		for k, v := range out[i].ChangedFields {
			fields[k] = v
		}
		out[i].ChangedFields = fields
	}
	return out
}

// CloneStageTransitions returns a defensive copy of a stage transition log.
func CloneStageTransitions(entries []StageTransition) []StageTransition {
	if entries == nil {
		return nil
	}
	out := make([]StageTransition, len(entries))
	copy(out, entries)
	return out
}
