package ledger

import (
	"sort"
	"time"

	"github.com/mesh-intelligence/capledger/internal/rules"
	"github.com/mesh-intelligence/capledger/pkg/types"
)

// CreateEntity validates and stores a new entity. The id, version and
// timestamps are assigned here; values on the input are ignored.
func (l *Ledger) CreateEntity(e *types.Entity, actor, reason string) (*types.Entity, error) {
	if e == nil {
		return nil, types.ErrInvalidData
	}

	l.mu.Lock()
	defer l.bus.Drain() // runs after the unlock, delivering queued events
	defer l.mu.Unlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}

	record := e.Clone()
	if err := record.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record.EntityID = types.NewID()
	record.Version = 1
	record.CreatedAt = now
	record.UpdatedAt = now

	l.data.Entities[record.EntityID] = record
	rollback := func() { delete(l.data.Entities, record.EntityID) }

	entry := newAuditEntry(types.ActionCreate, types.TargetEntity, record.EntityID,
		actor, reason, []string{record.EntityID}, nil, record, nil)
	event := types.Event{
		Type:             types.EventEntityCreated,
		TargetID:         record.EntityID,
		RelatedEntityIDs: []string{record.EntityID},
		Record:           record.Clone(),
		Timestamp:        now,
	}
	if err := l.commit(entry, event, rollback); err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// UpdateEntity merges the patch into the stored entity and bumps its
// version. expectedVersion guards against lost updates: a non-zero value
// that differs from the stored version fails with a ConflictError; zero
// means "re-read", accepting whatever version is stored.
func (l *Ledger) UpdateEntity(id string, patch types.EntityPatch, expectedVersion int64, actor, reason string) (*types.Entity, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	l.mu.Lock()
	defer l.bus.Drain()
	defer l.mu.Unlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}

	stored, ok := l.data.Entities[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.TargetEntity, ID: id}
	}
	if expectedVersion != 0 && expectedVersion != stored.Version {
		return nil, &types.ConflictError{
			Kind: types.TargetEntity, ID: id,
			ExpectedVersion: expectedVersion, ActualVersion: stored.Version,
		}
	}

	record := stored.Clone()
	if patch.Name != nil {
		record.Name = *patch.Name
	}
	if patch.Type != nil {
		record.Type = *patch.Type
	}
	if patch.Jurisdiction != nil {
		record.Jurisdiction = *patch.Jurisdiction
	}
	if patch.Registration != nil {
		reg := *patch.Registration
		record.Registration = &reg
	}
	if patch.Metadata != nil {
		if record.Metadata == nil {
			record.Metadata = make(map[string]string, len(patch.Metadata))
		}
		for k, v := range patch.Metadata {
			record.Metadata[k] = v
		}
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	record.Version = stored.Version + 1
	record.UpdatedAt = time.Now().UTC()

	l.data.Entities[id] = record
	rollback := func() { l.data.Entities[id] = stored }

	entry := newAuditEntry(types.ActionUpdate, types.TargetEntity, id,
		actor, reason, []string{id}, stored, record, nil)
	event := types.Event{
		Type:             types.EventEntityUpdated,
		TargetID:         id,
		RelatedEntityIDs: []string{id},
		Record:           record.Clone(),
		Timestamp:        record.UpdatedAt,
	}
	if err := l.commit(entry, event, rollback); err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// DeleteEntity removes the entity unless any ownership references it as
// owner or owned; in that case it fails with a ReferentialIntegrityError
// naming the blocking ownership ids and deletes nothing.
func (l *Ledger) DeleteEntity(id string, expectedVersion int64, actor, reason string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	l.mu.Lock()
	defer l.bus.Drain()
	defer l.mu.Unlock()
	if l.closed {
		return types.ErrLedgerClosed
	}

	stored, ok := l.data.Entities[id]
	if !ok {
		return &types.NotFoundError{Kind: types.TargetEntity, ID: id}
	}
	if expectedVersion != 0 && expectedVersion != stored.Version {
		return &types.ConflictError{
			Kind: types.TargetEntity, ID: id,
			ExpectedVersion: expectedVersion, ActualVersion: stored.Version,
		}
	}

	result := l.engine.ValidateEntityDeletion(id, l.ruleContext(nil))
	if !result.IsValid() {
		return &types.ReferentialIntegrityError{
			Kind: types.TargetEntity, ID: id,
			BlockingIDs: rules.EntityBlockers(id, l.data.Ownerships),
		}
	}

	delete(l.data.Entities, id)
	rollback := func() { l.data.Entities[id] = stored }

	entry := newAuditEntry(types.ActionDelete, types.TargetEntity, id,
		actor, reason, []string{id}, stored, nil, result.Applied)
	event := types.Event{
		Type:             types.EventEntityDeleted,
		TargetID:         id,
		RelatedEntityIDs: []string{id},
		Timestamp:        entry.Timestamp,
	}
	return l.commit(entry, event, rollback)
}

// GetEntity returns a copy of the entity.
func (l *Ledger) GetEntity(id string) (*types.Entity, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}

	e, ok := l.data.Entities[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.TargetEntity, ID: id}
	}
	return e.Clone(), nil
}

// GetAllEntities returns copies of every entity, ordered by id.
func (l *Ledger) GetAllEntities() ([]*types.Entity, error) {
	return l.SearchEntities(types.EntityQuery{})
}

// SearchEntities returns copies of entities matching the query, ordered
// by id. Ids are UUID v7, so the order tracks creation time.
func (l *Ledger) SearchEntities(query types.EntityQuery) ([]*types.Entity, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}

	results := []*types.Entity{}
	for _, e := range l.data.Entities {
		if query.Matches(e) {
			results = append(results, e.Clone())
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].EntityID < results[j].EntityID })
	return results, nil
}
