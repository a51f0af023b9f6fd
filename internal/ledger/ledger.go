// Package ledger implements the unified ownership ledger: entity, share
// class and ownership stores over a single in-memory record set, with
// rule-engine validation, optimistic concurrency, an append-only audit
// trail, synchronous snapshot persistence and event fan-out.
//
// Write pipeline, in order: validate via the rule engine, mutate the
// in-memory maps, save the record snapshot, durably append the audit
// entry, then emit the event. A failure at any step before emit rolls the
// in-memory mutation back, so callers never observe partial state.
// Events are queued under the write lock and delivered after it is
// released, so a subscriber is free to read the ledger from its
// callback.
package ledger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mesh-intelligence/capledger/internal/audit"
	"github.com/mesh-intelligence/capledger/internal/rules"
	"github.com/mesh-intelligence/capledger/pkg/types"
)

// Ledger is the single source of truth for entities, share classes and
// ownership edges. Construct one per hosting application with New and
// pass it by reference; there is no ambient global instance.
type Ledger struct {
	mu     sync.RWMutex
	closed bool

	data     *types.SnapshotData
	snapshot types.Snapshot // nil means pure in-memory
	engine   *rules.Engine
	log      *audit.Log
	bus      *audit.Bus
	logger   *slog.Logger
}

// New assembles a ledger over the given snapshot backend. A nil snapshot
// yields a pure in-memory ledger. Records and the persisted audit trail
// are loaded synchronously before New returns.
func New(snapshot types.Snapshot, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}

	l := &Ledger{
		data:     types.NewSnapshotData(),
		snapshot: snapshot,
		engine:   rules.NewEngine(),
		log:      audit.NewLog(),
		bus:      audit.NewBus(logger),
		logger:   logger,
	}

	if snapshot != nil {
		data, err := snapshot.Load()
		if err != nil {
			return nil, fmt.Errorf("loading snapshot: %w", err)
		}
		if data != nil {
			if data.Entities != nil {
				l.data.Entities = data.Entities
			}
			if data.ShareClasses != nil {
				l.data.ShareClasses = data.ShareClasses
			}
			if data.Ownerships != nil {
				l.data.Ownerships = data.Ownerships
			}
		}

		entries, err := snapshot.QueryAudit(types.AuditFilter{})
		if err != nil {
			return nil, fmt.Errorf("loading audit trail: %w", err)
		}
		l.log.Restore(entries)
	}

	return l, nil
}

// Close releases the snapshot backend. Further operations return
// ErrLedgerClosed. Idempotent.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	if l.snapshot != nil {
		if err := l.snapshot.Close(); err != nil {
			return fmt.Errorf("closing snapshot: %w", err)
		}
	}
	return nil
}

// Subscribe registers a callback for mutation events and returns its
// unsubscribe function. Delivery is synchronous and in mutation order.
func (l *Ledger) Subscribe(cb types.EventCallback) func() {
	return l.bus.Subscribe(cb)
}

// GetAuditTrail returns audit entries matching the filter, oldest first.
func (l *Ledger) GetAuditTrail(filter types.AuditFilter) ([]*types.AuditEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}
	return l.log.Query(filter), nil
}

// ExportRecords returns a deep copy of the current record maps, for
// JSONL export and other read-only consumers.
func (l *Ledger) ExportRecords() (*types.SnapshotData, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, types.ErrLedgerClosed
	}

	data := types.NewSnapshotData()
	for id, e := range l.data.Entities {
		data.Entities[id] = e.Clone()
	}
	for id, sc := range l.data.ShareClasses {
		data.ShareClasses[id] = sc.Clone()
	}
	for id, o := range l.data.Ownerships {
		data.Ownerships[id] = o.Clone()
	}
	return data, nil
}

// ruleContext assembles the full validation context around a candidate.
// The caller must hold the lock.
func (l *Ledger) ruleContext(candidate *types.Ownership) types.RuleContext {
	return types.RuleContext{
		Candidate:    candidate,
		Entities:     l.data.Entities,
		Ownerships:   l.data.Ownerships,
		ShareClasses: l.data.ShareClasses,
	}
}

// commit runs the post-mutation half of the write pipeline: snapshot
// save, durable audit append, in-memory audit append, event enqueue.
// rollback undoes the in-memory mutation and is invoked if persistence
// fails at any point. The caller must hold the write lock and drain
// the bus once it releases the lock; queue order fixes delivery order,
// so events still fan out in mutation order.
func (l *Ledger) commit(entry *types.AuditEntry, event types.Event, rollback func()) error {
	if l.snapshot != nil {
		if err := l.snapshot.SaveRecords(l.data); err != nil {
			rollback()
			return fmt.Errorf("saving snapshot: %w", err)
		}
		if err := l.snapshot.AppendAudit(entry); err != nil {
			rollback()
			// Re-save so the backend matches the rolled-back state.
			if serr := l.snapshot.SaveRecords(l.data); serr != nil {
				l.logger.Error("rollback save failed; snapshot ahead of ledger",
					"target_id", entry.TargetID, "error", serr)
			}
			return fmt.Errorf("appending audit entry: %w", err)
		}
	}

	l.log.Append(entry)
	l.bus.Enqueue(event)
	return nil
}

// newAuditEntry builds an audit entry for a committed mutation.
func newAuditEntry(action, targetType, targetID, actor, reason string, related []string, previous, next any, applied []string) *types.AuditEntry {
	entry := &types.AuditEntry{
		EntryID:          types.NewID(),
		Timestamp:        time.Now().UTC(),
		UserID:           actor,
		Action:           action,
		TargetType:       targetType,
		TargetID:         targetID,
		RelatedEntityIDs: related,
		ChangeReason:     reason,
		RulesApplied:     applied,
	}
	if previous != nil {
		if raw, err := json.Marshal(previous); err == nil {
			entry.PreviousState = raw
		}
	}
	if next != nil {
		if raw, err := json.Marshal(next); err == nil {
			entry.NewState = raw
		}
	}
	return entry
}
