package types

import "time"

// Event types emitted after committed mutations.
const (
	EventEntityCreated     = "entity.created"
	EventEntityUpdated     = "entity.updated"
	EventEntityDeleted     = "entity.deleted"
	EventShareClassCreated = "share_class.created"
	EventShareClassUpdated = "share_class.updated"
	EventShareClassDeleted = "share_class.deleted"
	EventOwnershipCreated  = "ownership.created"
	EventOwnershipUpdated  = "ownership.updated"
	EventOwnershipDeleted  = "ownership.deleted"
)

// Event is delivered synchronously, in mutation order, to every
// subscriber after the corresponding AuditEntry has been appended.
type Event struct {
	// Type is one of the Event* constants.
	Type string

	// TargetID is the id of the mutated record.
	TargetID string

	// RelatedEntityIDs mirrors the audit entry's related ids.
	RelatedEntityIDs []string

	// Record is a copy of the record after the mutation; nil for deletes.
	Record any

	// Timestamp is when the mutation committed, UTC.
	Timestamp time.Time
}

// EventCallback receives emitted events. A panicking callback is isolated;
// delivery to other subscribers continues.
type EventCallback func(Event)
