package ledger

import (
	"sort"
	"time"

	"github.com/mesh-intelligence/capledger/internal/rules"
	"github.com/mesh-intelligence/capledger/pkg/types"
)

// CreateShareClass validates and stores a new share class. The issuing
// entity must already exist.
func (l *Ledger) CreateShareClass(sc *types.ShareClass, actor, reason string) (*types.ShareClass, error) {
	if sc == nil {
		return nil, types.ErrInvalidData
	}

	l.mu.Lock()
	defer l.bus.Drain()
	defer l.mu.Unlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}

	record := sc.Clone()
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if _, ok := l.data.Entities[record.EntityID]; !ok {
		return nil, &types.NotFoundError{Kind: types.TargetEntity, ID: record.EntityID}
	}

	now := time.Now().UTC()
	record.ClassID = types.NewID()
	record.Version = 1
	record.CreatedAt = now
	record.UpdatedAt = now

	l.data.ShareClasses[record.ClassID] = record
	rollback := func() { delete(l.data.ShareClasses, record.ClassID) }

	entry := newAuditEntry(types.ActionCreate, types.TargetShareClass, record.ClassID,
		actor, reason, []string{record.EntityID}, nil, record, nil)
	event := types.Event{
		Type:             types.EventShareClassCreated,
		TargetID:         record.ClassID,
		RelatedEntityIDs: []string{record.EntityID},
		Record:           record.Clone(),
		Timestamp:        now,
	}
	if err := l.commit(entry, event, rollback); err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// UpdateShareClass merges the patch and bumps the version. The issuing
// entity is immutable; the patch cannot move a class between entities.
func (l *Ledger) UpdateShareClass(id string, patch types.ShareClassPatch, expectedVersion int64, actor, reason string) (*types.ShareClass, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	l.mu.Lock()
	defer l.bus.Drain()
	defer l.mu.Unlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}

	stored, ok := l.data.ShareClasses[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.TargetShareClass, ID: id}
	}
	if expectedVersion != 0 && expectedVersion != stored.Version {
		return nil, &types.ConflictError{
			Kind: types.TargetShareClass, ID: id,
			ExpectedVersion: expectedVersion, ActualVersion: stored.Version,
		}
	}

	record := stored.Clone()
	if patch.Name != nil {
		record.Name = *patch.Name
	}
	if patch.Kind != nil {
		record.Kind = *patch.Kind
	}
	if patch.TotalAuthorizedShares != nil {
		record.TotalAuthorizedShares = *patch.TotalAuthorizedShares
	}
	if patch.VotingRights != nil {
		record.VotingRights = *patch.VotingRights
	}
	if patch.LiquidationPreference != nil {
		v := *patch.LiquidationPreference
		record.LiquidationPreference = &v
	}
	if patch.DividendRate != nil {
		v := *patch.DividendRate
		record.DividendRate = &v
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	record.Version = stored.Version + 1
	record.UpdatedAt = time.Now().UTC()

	l.data.ShareClasses[id] = record
	rollback := func() { l.data.ShareClasses[id] = stored }

	entry := newAuditEntry(types.ActionUpdate, types.TargetShareClass, id,
		actor, reason, []string{record.EntityID}, stored, record, nil)
	event := types.Event{
		Type:             types.EventShareClassUpdated,
		TargetID:         id,
		RelatedEntityIDs: []string{record.EntityID},
		Record:           record.Clone(),
		Timestamp:        record.UpdatedAt,
	}
	if err := l.commit(entry, event, rollback); err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// DeleteShareClass removes the share class unless any ownership
// references it. The hard contract: deletion never silently orphans an
// ownership record, so the error names every blocking ownership id.
func (l *Ledger) DeleteShareClass(id string, expectedVersion int64, actor, reason string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	l.mu.Lock()
	defer l.bus.Drain()
	defer l.mu.Unlock()
	if l.closed {
		return types.ErrLedgerClosed
	}

	stored, ok := l.data.ShareClasses[id]
	if !ok {
		return &types.NotFoundError{Kind: types.TargetShareClass, ID: id}
	}
	if expectedVersion != 0 && expectedVersion != stored.Version {
		return &types.ConflictError{
			Kind: types.TargetShareClass, ID: id,
			ExpectedVersion: expectedVersion, ActualVersion: stored.Version,
		}
	}

	result := l.engine.ValidateShareClassDeletion(id, l.ruleContext(nil))
	if !result.IsValid() {
		return &types.ReferentialIntegrityError{
			Kind: types.TargetShareClass, ID: id,
			BlockingIDs: rules.ShareClassBlockers(id, l.data.Ownerships),
		}
	}

	delete(l.data.ShareClasses, id)
	rollback := func() { l.data.ShareClasses[id] = stored }

	entry := newAuditEntry(types.ActionDelete, types.TargetShareClass, id,
		actor, reason, []string{stored.EntityID}, stored, nil, result.Applied)
	event := types.Event{
		Type:             types.EventShareClassDeleted,
		TargetID:         id,
		RelatedEntityIDs: []string{stored.EntityID},
		Timestamp:        entry.Timestamp,
	}
	return l.commit(entry, event, rollback)
}

// GetShareClass returns a copy of the share class.
func (l *Ledger) GetShareClass(id string) (*types.ShareClass, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}

	sc, ok := l.data.ShareClasses[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.TargetShareClass, ID: id}
	}
	return sc.Clone(), nil
}

// GetShareClassesByEntity returns copies of the entity's share classes,
// ordered by class id.
func (l *Ledger) GetShareClassesByEntity(entityID string) ([]*types.ShareClass, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}

	results := []*types.ShareClass{}
	for _, sc := range l.data.ShareClasses {
		if sc.EntityID == entityID {
			results = append(results, sc.Clone())
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ClassID < results[j].ClassID })
	return results, nil
}
