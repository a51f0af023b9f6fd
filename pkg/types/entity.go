package types

import (
	"strings"
	"time"
)

// Entity types. Individuals are natural persons; everything else is a
// registered organization.
const (
	EntityCorporation = "corporation"
	EntityLLC         = "llc"
	EntityPartnership = "partnership"
	EntityTrust       = "trust"
	EntityIndividual  = "individual"
)

// validEntityTypes is the set of recognized entity type values.
var validEntityTypes = map[string]bool{
	EntityCorporation: true,
	EntityLLC:         true,
	EntityPartnership: true,
	EntityTrust:       true,
	EntityIndividual:  true,
}

// ValidEntityType reports whether t is a recognized entity type.
func ValidEntityType(t string) bool {
	return validEntityTypes[t]
}

// Registration holds optional formation details for organizational
// entities. Empty for individuals.
type Registration struct {
	Number        string    `json:"number,omitempty"`
	FormationDate time.Time `json:"formation_date,omitempty"`
}

// Entity represents a legal person or organization participating in
// ownership relationships.
type Entity struct {
	// EntityID is a UUID v7, generated on creation. Immutable.
	EntityID string `json:"entity_id"`

	// Name is the display name (required, non-blank).
	Name string `json:"name"`

	// Type is one of the Entity* constants.
	Type string `json:"type"`

	// Jurisdiction is the governing jurisdiction. Optional for individuals.
	Jurisdiction string `json:"jurisdiction,omitempty"`

	// Registration holds optional formation metadata.
	Registration *Registration `json:"registration,omitempty"`

	// Metadata is an opaque tag bag. The ledger stores and returns it
	// verbatim and never interprets the values.
	Metadata map[string]string `json:"metadata,omitempty"`

	// Version starts at 1 and increments on every committed update.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the entity's own fields. Cross-record rules (referential
// integrity, cycles) live in the rule engine, not here.
func (e *Entity) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrBlankName
	}
	if !ValidEntityType(e.Type) {
		return ErrInvalidEntityType
	}
	return nil
}

// Clone returns a deep copy so callers never alias ledger-held state.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	cp := *e
	if e.Registration != nil {
		reg := *e.Registration
		cp.Registration = &reg
	}
	if e.Metadata != nil {
		cp.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

// EntityPatch carries the mutable fields of an update. Nil fields are left
// unchanged; Metadata, when non-nil, is merged key by key.
type EntityPatch struct {
	Name         *string           `json:"name,omitempty"`
	Type         *string           `json:"type,omitempty"`
	Jurisdiction *string           `json:"jurisdiction,omitempty"`
	Registration *Registration     `json:"registration,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// EntityQuery filters SearchEntities. Zero values match everything.
type EntityQuery struct {
	// Name matches as a case-insensitive substring of Entity.Name.
	Name string

	// Type, when set, must equal Entity.Type exactly.
	Type string

	// Jurisdiction, when set, must equal Entity.Jurisdiction exactly.
	Jurisdiction string
}

// Matches reports whether the entity satisfies every set query field.
func (q EntityQuery) Matches(e *Entity) bool {
	if q.Name != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(q.Name)) {
		return false
	}
	if q.Type != "" && e.Type != q.Type {
		return false
	}
	if q.Jurisdiction != "" && e.Jurisdiction != q.Jurisdiction {
		return false
	}
	return true
}
