package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Typed errors below unwrap to one of these so callers
// can branch with errors.Is without holding the concrete type.
var (
	ErrNotFound             = errors.New("record not found")
	ErrValidation           = errors.New("validation failed")
	ErrReferentialIntegrity = errors.New("delete blocked by dependent records")
	ErrConflict             = errors.New("stale version")
	ErrCircularOwnership    = errors.New("circular ownership")
	ErrInvalidID            = errors.New("invalid record ID")
	ErrInvalidData          = errors.New("invalid record data")
	ErrLedgerClosed         = errors.New("ledger is closed")
)

// Field validation errors returned by record Validate methods. Each
// wraps ErrValidation, so errors.Is matches both the specific field
// error and the validation class.
var (
	ErrBlankName         = fmt.Errorf("%w: name must not be blank", ErrValidation)
	ErrInvalidEntityType = fmt.Errorf("%w: invalid entity type", ErrValidation)
	ErrInvalidClassKind  = fmt.Errorf("%w: invalid share class kind", ErrValidation)
	ErrNonPositiveShares = fmt.Errorf("%w: shares must be positive", ErrValidation)
)

// Snapshot lifecycle errors.
var (
	ErrSnapshotDetached = errors.New("snapshot backend is detached")
	ErrAlreadyAttached  = errors.New("snapshot backend is already attached")
	ErrBackendUnknown   = errors.New("unknown backend")
)

// NotFoundError identifies the missing record.
type NotFoundError struct {
	Kind string // entity, share_class, ownership
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError carries the full ValidationResult of a rejected write.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Result.Errors))
	for _, v := range e.Result.Errors {
		names = append(names, v.Rule)
	}
	return fmt.Sprintf("%v: %s", ErrValidation, strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ReferentialIntegrityError names the records blocking a delete.
type ReferentialIntegrityError struct {
	Kind        string // kind of the record being deleted
	ID          string
	BlockingIDs []string // ownership ids that reference it
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s %s referenced by ownerships [%s]: %v",
		e.Kind, e.ID, strings.Join(e.BlockingIDs, ", "), ErrReferentialIntegrity)
}

func (e *ReferentialIntegrityError) Unwrap() error { return ErrReferentialIntegrity }

// ConflictError reports an optimistic-concurrency failure.
type ConflictError struct {
	Kind            string
	ID              string
	ExpectedVersion int64
	ActualVersion   int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s: expected version %d, stored version %d: %v",
		e.Kind, e.ID, e.ExpectedVersion, e.ActualVersion, ErrConflict)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// CircularOwnershipError reports the edge that would close a cycle.
type CircularOwnershipError struct {
	OwnerEntityID string
	OwnedEntityID string
}

func (e *CircularOwnershipError) Error() string {
	return fmt.Sprintf("edge %s -> %s would close a cycle: %v",
		e.OwnerEntityID, e.OwnedEntityID, ErrCircularOwnership)
}

func (e *CircularOwnershipError) Unwrap() error { return ErrCircularOwnership }
