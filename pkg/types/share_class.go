package types

import (
	"strings"
	"time"
)

// Share class kinds.
const (
	ClassCommon      = "common"
	ClassPreferred   = "preferred"
	ClassOptions     = "options"
	ClassConvertible = "convertible"
)

// validClassKinds is the set of recognized share class kinds.
var validClassKinds = map[string]bool{
	ClassCommon:      true,
	ClassPreferred:   true,
	ClassOptions:     true,
	ClassConvertible: true,
}

// ValidClassKind reports whether k is a recognized share class kind.
func ValidClassKind(k string) bool {
	return validClassKinds[k]
}

// ShareClass is a category of equity issued by exactly one entity (the
// owned side of ownership edges that reference it).
type ShareClass struct {
	// ClassID is a UUID v7, generated on creation. Immutable.
	ClassID string `json:"class_id"`

	// EntityID is the issuing entity. Immutable after creation.
	EntityID string `json:"entity_id"`

	// Name is the display name, e.g. "Series A Preferred".
	Name string `json:"name"`

	// Kind is one of the Class* constants.
	Kind string `json:"kind"`

	// TotalAuthorizedShares is the authorization ceiling for this class.
	// Must be positive.
	TotalAuthorizedShares int64 `json:"total_authorized_shares"`

	// VotingRights reports whether shares of this class vote.
	VotingRights bool `json:"voting_rights"`

	// LiquidationPreference is an optional multiple, e.g. 1.5 for 1.5x.
	LiquidationPreference *float64 `json:"liquidation_preference,omitempty"`

	// DividendRate is an optional annual rate, e.g. 0.08 for 8%.
	DividendRate *float64 `json:"dividend_rate,omitempty"`

	// Version starts at 1 and increments on every committed update.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the share class's own fields.
func (sc *ShareClass) Validate() error {
	if strings.TrimSpace(sc.Name) == "" {
		return ErrBlankName
	}
	if !ValidClassKind(sc.Kind) {
		return ErrInvalidClassKind
	}
	if sc.TotalAuthorizedShares <= 0 {
		return ErrNonPositiveShares
	}
	return nil
}

// Clone returns a deep copy so callers never alias ledger-held state.
func (sc *ShareClass) Clone() *ShareClass {
	if sc == nil {
		return nil
	}
	cp := *sc
	if sc.LiquidationPreference != nil {
		v := *sc.LiquidationPreference
		cp.LiquidationPreference = &v
	}
	if sc.DividendRate != nil {
		v := *sc.DividendRate
		cp.DividendRate = &v
	}
	return &cp
}

// ShareClassPatch carries the mutable fields of an update. Nil fields are
// left unchanged. EntityID is immutable and deliberately absent.
type ShareClassPatch struct {
	Name                  *string  `json:"name,omitempty"`
	Kind                  *string  `json:"kind,omitempty"`
	TotalAuthorizedShares *int64   `json:"total_authorized_shares,omitempty"`
	VotingRights          *bool    `json:"voting_rights,omitempty"`
	LiquidationPreference *float64 `json:"liquidation_preference,omitempty"`
	DividendRate          *float64 `json:"dividend_rate,omitempty"`
}
