package types

import "github.com/google/uuid"

// NewID generates a UUID v7 record id. UUID v7 sorts by creation time,
// which keeps snapshot scans and audit queries in natural order. Falls
// back to v4 if v7 generation fails.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
