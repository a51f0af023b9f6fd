package ledger

import (
	"errors"
	"sort"
	"time"

	"github.com/mesh-intelligence/capledger/internal/rules"
	"github.com/mesh-intelligence/capledger/pkg/types"
)

// CreateOwnership validates the candidate edge through the full rule set
// and stores it. Any failing error-severity rule aborts the write with a
// ValidationError carrying every violation; a rejected cycle is surfaced
// as a CircularOwnershipError. Nothing is persisted on rejection, not
// even an audit entry.
func (l *Ledger) CreateOwnership(o *types.Ownership, actor string) (*types.Ownership, error) {
	if o == nil {
		return nil, types.ErrInvalidData
	}

	l.mu.Lock()
	defer l.bus.Drain()
	defer l.mu.Unlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}

	now := time.Now().UTC()
	record := o.Clone()
	record.OwnershipID = types.NewID()
	record.Version = 1
	record.CreatedBy = actor
	record.CreatedAt = now
	record.UpdatedBy = actor
	record.UpdatedAt = now
	if record.EffectiveDate.IsZero() {
		record.EffectiveDate = now
	}

	result := l.engine.ValidateAll(l.ruleContext(record))
	if !result.IsValid() {
		return nil, writeRejection(record, result)
	}

	l.data.Ownerships[record.OwnershipID] = record
	rollback := func() { delete(l.data.Ownerships, record.OwnershipID) }

	related := []string{record.OwnerEntityID, record.OwnedEntityID}
	entry := newAuditEntry(types.ActionCreate, types.TargetOwnership, record.OwnershipID,
		actor, record.ChangeReason, related, nil, record, result.Applied)
	event := types.Event{
		Type:             types.EventOwnershipCreated,
		TargetID:         record.OwnershipID,
		RelatedEntityIDs: related,
		Record:           record.Clone(),
		Timestamp:        now,
	}
	if err := l.commit(entry, event, rollback); err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// UpdateOwnership merges the patch, revalidates the resulting edge
// through the full rule set, and bumps the version on success.
func (l *Ledger) UpdateOwnership(id string, patch types.OwnershipPatch, expectedVersion int64, actor, reason string) (*types.Ownership, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	l.mu.Lock()
	defer l.bus.Drain()
	defer l.mu.Unlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}

	stored, ok := l.data.Ownerships[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.TargetOwnership, ID: id}
	}
	if expectedVersion != 0 && expectedVersion != stored.Version {
		return nil, &types.ConflictError{
			Kind: types.TargetOwnership, ID: id,
			ExpectedVersion: expectedVersion, ActualVersion: stored.Version,
		}
	}

	record := stored.Clone()
	if patch.OwnerEntityID != nil {
		record.OwnerEntityID = *patch.OwnerEntityID
	}
	if patch.OwnedEntityID != nil {
		record.OwnedEntityID = *patch.OwnedEntityID
	}
	if patch.Shares != nil {
		record.Shares = *patch.Shares
	}
	if patch.ShareClassID != nil {
		record.ShareClassID = *patch.ShareClassID
	}
	if patch.EffectiveDate != nil {
		record.EffectiveDate = *patch.EffectiveDate
	}
	if patch.ClearExpiry {
		record.ExpiryDate = nil
	} else if patch.ExpiryDate != nil {
		v := *patch.ExpiryDate
		record.ExpiryDate = &v
	}
	record.Version = stored.Version + 1
	record.UpdatedBy = actor
	record.UpdatedAt = time.Now().UTC()
	record.ChangeReason = reason

	result := l.engine.ValidateAll(l.ruleContext(record))
	if !result.IsValid() {
		return nil, writeRejection(record, result)
	}

	l.data.Ownerships[id] = record
	rollback := func() { l.data.Ownerships[id] = stored }

	related := []string{record.OwnerEntityID, record.OwnedEntityID}
	entry := newAuditEntry(types.ActionUpdate, types.TargetOwnership, id,
		actor, reason, related, stored, record, result.Applied)
	event := types.Event{
		Type:             types.EventOwnershipUpdated,
		TargetID:         id,
		RelatedEntityIDs: related,
		Record:           record.Clone(),
		Timestamp:        record.UpdatedAt,
	}
	if err := l.commit(entry, event, rollback); err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// DeleteOwnership removes the edge. Deleting an edge can never violate a
// structural invariant, so only the version check guards it.
func (l *Ledger) DeleteOwnership(id string, expectedVersion int64, actor, reason string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	l.mu.Lock()
	defer l.bus.Drain()
	defer l.mu.Unlock()
	if l.closed {
		return types.ErrLedgerClosed
	}

	stored, ok := l.data.Ownerships[id]
	if !ok {
		return &types.NotFoundError{Kind: types.TargetOwnership, ID: id}
	}
	if expectedVersion != 0 && expectedVersion != stored.Version {
		return &types.ConflictError{
			Kind: types.TargetOwnership, ID: id,
			ExpectedVersion: expectedVersion, ActualVersion: stored.Version,
		}
	}

	delete(l.data.Ownerships, id)
	rollback := func() { l.data.Ownerships[id] = stored }

	related := []string{stored.OwnerEntityID, stored.OwnedEntityID}
	entry := newAuditEntry(types.ActionDelete, types.TargetOwnership, id,
		actor, reason, related, stored, nil, nil)
	event := types.Event{
		Type:             types.EventOwnershipDeleted,
		TargetID:         id,
		RelatedEntityIDs: related,
		Timestamp:        entry.Timestamp,
	}
	return l.commit(entry, event, rollback)
}

// GetOwnership returns a copy of the ownership edge.
func (l *Ledger) GetOwnership(id string) (*types.Ownership, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}

	o, ok := l.data.Ownerships[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.TargetOwnership, ID: id}
	}
	return o.Clone(), nil
}

// GetOwnershipsByEntity returns copies of edges where the entity appears
// as owner or owned, ordered by ownership id.
func (l *Ledger) GetOwnershipsByEntity(entityID string) ([]*types.Ownership, error) {
	return l.QueryOwnerships(types.OwnershipFilter{EntityID: entityID})
}

// QueryOwnerships returns copies of edges matching the filter, ordered by
// ownership id.
func (l *Ledger) QueryOwnerships(filter types.OwnershipFilter) ([]*types.Ownership, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}

	results := []*types.Ownership{}
	for _, o := range l.data.Ownerships {
		if filter.Matches(o) {
			results = append(results, o.Clone())
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].OwnershipID < results[j].OwnershipID })
	return results, nil
}

// writeRejection converts a failed validation into the error surfaced to
// the caller: CircularOwnershipError when the cycle rule is the blocking
// failure on its own, ValidationError otherwise.
func writeRejection(candidate *types.Ownership, result types.ValidationResult) error {
	if len(result.Errors) == 1 && result.Errors[0].Rule == rules.RuleNoCircular {
		return &types.CircularOwnershipError{
			OwnerEntityID: candidate.OwnerEntityID,
			OwnedEntityID: candidate.OwnedEntityID,
		}
	}
	return &types.ValidationError{Result: result}
}

// IsRejection reports whether err is a write rejection (validation or
// cycle) as opposed to a not-found, conflict or persistence failure.
func IsRejection(err error) bool {
	return errors.Is(err, types.ErrValidation) || errors.Is(err, types.ErrCircularOwnership)
}
