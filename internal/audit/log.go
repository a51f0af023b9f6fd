// Package audit implements the append-only audit log and the synchronous
// event bus the ledger fans mutations out on.
package audit

import (
	"sync"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

// Log is the in-memory append-only audit trail. When the ledger runs with
// a persistent snapshot backend, entries are additionally appended there
// before the in-memory append; this log serves queries without touching
// the backend.
type Log struct {
	mu      sync.RWMutex
	entries []*types.AuditEntry
}

// NewLog returns an empty audit log.
func NewLog() *Log {
	return &Log{}
}

// Append adds an entry. Entries are never mutated or removed afterwards.
func (l *Log) Append(entry *types.AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry.Clone())
}

// Query returns entries matching the filter, in append order. Returned
// entries are copies.
func (l *Log) Query(filter types.AuditFilter) []*types.AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	results := []*types.AuditEntry{}
	for _, e := range l.entries {
		if filter.Matches(e) {
			results = append(results, e.Clone())
		}
	}
	return results
}

// Len returns the number of appended entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Restore seeds the log from persisted entries, oldest first. Used once
// at startup before any writes.
func (l *Log) Restore(entries []*types.AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
	for _, e := range entries {
		l.entries = append(l.entries, e.Clone())
	}
}
