// Audit table persistence for the SQLite backend. The audit_entries
// table is append-only; rowid preserves append order.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

// AppendAudit durably inserts one audit entry.
func (b *Backend) AppendAudit(entry *types.AuditEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrSnapshotDetached
	}
	if entry == nil {
		return types.ErrInvalidData
	}

	var related, applied any
	if len(entry.RelatedEntityIDs) > 0 {
		raw, err := json.Marshal(entry.RelatedEntityIDs)
		if err != nil {
			return fmt.Errorf("encoding related ids: %w", err)
		}
		related = string(raw)
	}
	if len(entry.RulesApplied) > 0 {
		raw, err := json.Marshal(entry.RulesApplied)
		if err != nil {
			return fmt.Errorf("encoding applied rules: %w", err)
		}
		applied = string(raw)
	}
	var previous, next any
	if len(entry.PreviousState) > 0 {
		previous = string(entry.PreviousState)
	}
	if len(entry.NewState) > 0 {
		next = string(entry.NewState)
	}

	_, err := b.db.Exec(`INSERT INTO audit_entries (entry_id, timestamp, user_id,
		action, target_type, target_id, related_entity_ids, previous_state,
		new_state, change_reason, rules_applied)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.EntryID, entry.Timestamp.Format(timeFormat), nullString(entry.UserID),
		entry.Action, entry.TargetType, entry.TargetID, related, previous, next,
		nullString(entry.ChangeReason), applied)
	if err != nil {
		return fmt.Errorf("inserting audit entry %s: %w", entry.EntryID, err)
	}
	return nil
}

// QueryAudit returns persisted entries matching the filter, in append
// order.
func (b *Backend) QueryAudit(filter types.AuditFilter) ([]*types.AuditEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, types.ErrSnapshotDetached
	}

	rows, err := b.db.Query(`SELECT entry_id, timestamp, user_id, action,
		target_type, target_id, related_entity_ids, previous_state, new_state,
		change_reason, rules_applied FROM audit_entries ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	results := []*types.AuditEntry{}
	for rows.Next() {
		entry, err := hydrateAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating audit entry: %w", err)
		}
		if filter.Matches(entry) {
			results = append(results, entry)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}
	return results, nil
}

// hydrateAuditEntry converts one row into a *types.AuditEntry.
func hydrateAuditEntry(rows *sql.Rows) (*types.AuditEntry, error) {
	var entry types.AuditEntry
	var timestamp string
	var userID, related, previous, next, reason, applied sql.NullString
	if err := rows.Scan(&entry.EntryID, &timestamp, &userID, &entry.Action,
		&entry.TargetType, &entry.TargetID, &related, &previous, &next,
		&reason, &applied); err != nil {
		return nil, err
	}

	var err error
	if entry.Timestamp, err = parseTime(timestamp); err != nil {
		return nil, fmt.Errorf("parsing timestamp: %w", err)
	}
	entry.UserID = scanString(userID)
	entry.ChangeReason = scanString(reason)
	if related.Valid {
		if err := json.Unmarshal([]byte(related.String), &entry.RelatedEntityIDs); err != nil {
			return nil, fmt.Errorf("decoding related ids: %w", err)
		}
	}
	if applied.Valid {
		if err := json.Unmarshal([]byte(applied.String), &entry.RulesApplied); err != nil {
			return nil, fmt.Errorf("decoding applied rules: %w", err)
		}
	}
	if previous.Valid {
		entry.PreviousState = json.RawMessage(previous.String)
	}
	if next.Valid {
		entry.NewState = json.RawMessage(next.String)
	}
	return &entry, nil
}
