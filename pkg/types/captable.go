package types

import "time"

// CapTableView is a computed per-entity snapshot of issued equity. It is
// derived fresh from the record maps on every call and never persisted.
//
// AuthorizedShares is the SUM of TotalAuthorizedShares across the
// entity's share classes. AvailableShares is clamped at zero when a class
// is over-issued.
type CapTableView struct {
	EntityID          string    `json:"entity_id"`
	EntityName        string    `json:"entity_name"`
	TotalIssuedShares int64     `json:"total_issued_shares"`
	AuthorizedShares  int64     `json:"authorized_shares"`
	AvailableShares   int64     `json:"available_shares"`
	ComputedAt        time.Time `json:"computed_at"`

	// ShareClasses summarizes issuance per class, ordered by class id.
	ShareClasses []ShareClassSummary `json:"share_classes"`

	// Ownerships lists holders ordered by descending shares, ties broken
	// by ownership id ascending.
	Ownerships []OwnershipSummary `json:"ownerships"`
}

// ShareClassSummary is the per-class slice of a cap table.
type ShareClassSummary struct {
	ClassID          string  `json:"class_id"`
	ClassName        string  `json:"class_name"`
	Kind             string  `json:"kind"`
	IssuedShares     int64   `json:"issued_shares"`
	AuthorizedShares int64   `json:"authorized_shares"`
	PercentIssued    float64 `json:"percent_issued"`
}

// OwnershipSummary is one holder's row in a cap table.
type OwnershipSummary struct {
	OwnershipID   string `json:"ownership_id"`
	OwnerEntityID string `json:"owner_entity_id"`
	OwnerName     string `json:"owner_name"`
	ShareClassID  string `json:"share_class_id"`
	Shares        int64  `json:"shares"`

	// Percentage is shares over total issued shares, in percent. Zero
	// when nothing is issued.
	Percentage float64 `json:"percentage"`

	// FullyDilutedPercentage is shares over authorized shares, in
	// percent. Zero when nothing is authorized.
	FullyDilutedPercentage float64 `json:"fully_diluted_percentage"`
}
