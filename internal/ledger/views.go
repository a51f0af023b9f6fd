package ledger

import (
	"github.com/mesh-intelligence/capledger/internal/views"
	"github.com/mesh-intelligence/capledger/pkg/types"
)

// GetCapTableView computes the cap table for the entity from current
// state. Returns nil, nil when the entity does not exist; derived views
// treat a missing entity as an empty result, not an error.
func (l *Ledger) GetCapTableView(entityID string) (*types.CapTableView, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}
	return views.ComputeCapTable(entityID, l.data), nil
}

// GetOwnershipHierarchy computes the leveled layout of the full
// ownership graph from current state.
func (l *Ledger) GetOwnershipHierarchy() (*types.Hierarchy, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}
	return views.BuildHierarchy(l.data), nil
}

// ValidateOwnershipChange dry-runs the full rule set against a candidate
// edge without committing anything. The candidate keeps its id when it
// names an existing edge (an update probe); otherwise it is treated as a
// new edge.
func (l *Ledger) ValidateOwnershipChange(candidate *types.Ownership) (types.ValidationResult, error) {
	if candidate == nil {
		return types.ValidationResult{}, types.ErrInvalidData
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return types.ValidationResult{}, types.ErrLedgerClosed
	}
	return l.engine.ValidateAll(l.ruleContext(candidate.Clone())), nil
}

// ValidateEntityDeletion reports whether the entity can be deleted,
// without deleting it.
func (l *Ledger) ValidateEntityDeletion(entityID string) (types.ValidationResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return types.ValidationResult{}, types.ErrLedgerClosed
	}
	return l.engine.ValidateEntityDeletion(entityID, l.ruleContext(nil)), nil
}

// ValidateShareClassDeletion reports whether the share class can be
// deleted, without deleting it.
func (l *Ledger) ValidateShareClassDeletion(classID string) (types.ValidationResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return types.ValidationResult{}, types.ErrLedgerClosed
	}
	return l.engine.ValidateShareClassDeletion(classID, l.ruleContext(nil)), nil
}
