package types

import "time"

// Ownership is the single directed edge type of the ownership graph:
// OwnerEntityID holds Shares of ShareClassID issued by OwnedEntityID.
// The edge set must stay acyclic; the rule engine enforces that at write
// time.
type Ownership struct {
	// OwnershipID is a UUID v7, generated on creation. Immutable.
	OwnershipID string `json:"ownership_id"`

	// OwnerEntityID is the holding entity (edge source).
	OwnerEntityID string `json:"owner_entity_id"`

	// OwnedEntityID is the issuing entity (edge target). Always distinct
	// from OwnerEntityID.
	OwnedEntityID string `json:"owned_entity_id"`

	// Shares is the number of shares held. Must be positive.
	Shares int64 `json:"shares"`

	// ShareClassID must resolve to a class issued by OwnedEntityID.
	ShareClassID string `json:"share_class_id"`

	// EffectiveDate is when the holding takes effect.
	EffectiveDate time.Time `json:"effective_date"`

	// ExpiryDate, when set, marks the holding's end. Expired holdings
	// still aggregate into cap tables; expiry only raises a warning at
	// write time.
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`

	// ChangeReason is the caller-supplied reason for the last mutation.
	ChangeReason string `json:"change_reason,omitempty"`

	// Version starts at 1 and increments on every committed update.
	Version int64 `json:"version"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedBy string    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers never alias ledger-held state.
func (o *Ownership) Clone() *Ownership {
	if o == nil {
		return nil
	}
	cp := *o
	if o.ExpiryDate != nil {
		v := *o.ExpiryDate
		cp.ExpiryDate = &v
	}
	return &cp
}

// References reports whether the ownership touches the given entity id on
// either side of the edge.
func (o *Ownership) References(entityID string) bool {
	return o.OwnerEntityID == entityID || o.OwnedEntityID == entityID
}

// OwnershipPatch carries the mutable fields of an update. Nil fields are
// left unchanged. ClearExpiry removes an existing expiry date.
type OwnershipPatch struct {
	OwnerEntityID *string    `json:"owner_entity_id,omitempty"`
	OwnedEntityID *string    `json:"owned_entity_id,omitempty"`
	Shares        *int64     `json:"shares,omitempty"`
	ShareClassID  *string    `json:"share_class_id,omitempty"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	ClearExpiry   bool       `json:"clear_expiry,omitempty"`
}

// OwnershipFilter selects ownership edges in QueryOwnerships. Zero values
// match everything.
type OwnershipFilter struct {
	// OwnerEntityID, when set, must equal the edge source.
	OwnerEntityID string

	// OwnedEntityID, when set, must equal the edge target.
	OwnedEntityID string

	// ShareClassID, when set, must equal the edge's share class.
	ShareClassID string

	// EntityID, when set, matches edges touching the entity on either side.
	EntityID string

	// MinShares, when positive, requires Shares >= MinShares.
	MinShares int64
}

// Matches reports whether the ownership satisfies every set filter field.
func (f OwnershipFilter) Matches(o *Ownership) bool {
	if f.OwnerEntityID != "" && o.OwnerEntityID != f.OwnerEntityID {
		return false
	}
	if f.OwnedEntityID != "" && o.OwnedEntityID != f.OwnedEntityID {
		return false
	}
	if f.ShareClassID != "" && o.ShareClassID != f.ShareClassID {
		return false
	}
	if f.EntityID != "" && !o.References(f.EntityID) {
		return false
	}
	if f.MinShares > 0 && o.Shares < f.MinShares {
		return false
	}
	return true
}
