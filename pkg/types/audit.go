package types

import (
	"encoding/json"
	"time"
)

// Audit actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Audit target types.
const (
	TargetEntity     = "entity"
	TargetShareClass = "share_class"
	TargetOwnership  = "ownership"
)

// AuditEntry records one committed mutation. Entries are append-only:
// the ledger never updates or deletes them.
type AuditEntry struct {
	// EntryID is a UUID v7, generated on append. Immutable.
	EntryID string `json:"entry_id"`

	// Timestamp is when the mutation committed, UTC.
	Timestamp time.Time `json:"timestamp"`

	// UserID is the actor supplied by the caller.
	UserID string `json:"user_id"`

	// Action is one of the Action* constants.
	Action string `json:"action"`

	// TargetType is one of the Target* constants.
	TargetType string `json:"target_type"`

	// TargetID is the id of the mutated record.
	TargetID string `json:"target_id"`

	// RelatedEntityIDs lists entity ids touched by the mutation. For
	// ownership mutations this is [owner, owned].
	RelatedEntityIDs []string `json:"related_entity_ids,omitempty"`

	// PreviousState is the record before the mutation (null on create).
	PreviousState json.RawMessage `json:"previous_state,omitempty"`

	// NewState is the record after the mutation (null on delete).
	NewState json.RawMessage `json:"new_state,omitempty"`

	// ChangeReason is the caller-supplied reason, if any.
	ChangeReason string `json:"change_reason,omitempty"`

	// RulesApplied names every validation rule evaluated before commit,
	// including rules that raised warnings.
	RulesApplied []string `json:"rules_applied,omitempty"`
}

// Clone returns a deep copy of the entry.
func (a *AuditEntry) Clone() *AuditEntry {
	if a == nil {
		return nil
	}
	cp := *a
	if a.RelatedEntityIDs != nil {
		cp.RelatedEntityIDs = append([]string(nil), a.RelatedEntityIDs...)
	}
	if a.PreviousState != nil {
		cp.PreviousState = append(json.RawMessage(nil), a.PreviousState...)
	}
	if a.NewState != nil {
		cp.NewState = append(json.RawMessage(nil), a.NewState...)
	}
	if a.RulesApplied != nil {
		cp.RulesApplied = append([]string(nil), a.RulesApplied...)
	}
	return &cp
}

// AuditFilter selects audit entries in GetAuditTrail. Zero values match
// everything.
type AuditFilter struct {
	// EntityID matches entries whose TargetID or RelatedEntityIDs contain
	// the id.
	EntityID string

	// From, when non-zero, requires Timestamp >= From.
	From time.Time

	// To, when non-zero, requires Timestamp <= To.
	To time.Time
}

// Matches reports whether the entry satisfies every set filter field.
func (f AuditFilter) Matches(a *AuditEntry) bool {
	if f.EntityID != "" {
		found := a.TargetID == f.EntityID
		for _, id := range a.RelatedEntityIDs {
			if id == f.EntityID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.From.IsZero() && a.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && a.Timestamp.After(f.To) {
		return false
	}
	return true
}
