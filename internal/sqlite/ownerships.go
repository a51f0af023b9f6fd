// Ownership table hydration and persistence for the SQLite backend.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

// loadOwnerships hydrates every ownership row into the map.
func loadOwnerships(db *sql.DB, out map[string]*types.Ownership) error {
	rows, err := db.Query(`SELECT ownership_id, owner_entity_id, owned_entity_id,
		shares, share_class_id, effective_date, expiry_date, change_reason,
		version, created_by, created_at, updated_by, updated_at FROM ownerships`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var o types.Ownership
		var effective string
		var expiry, reason sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&o.OwnershipID, &o.OwnerEntityID, &o.OwnedEntityID,
			&o.Shares, &o.ShareClassID, &effective, &expiry, &reason,
			&o.Version, &o.CreatedBy, &createdAt, &o.UpdatedBy, &updatedAt); err != nil {
			return err
		}
		if o.EffectiveDate, err = parseTime(effective); err != nil {
			return fmt.Errorf("parsing effective_date for %s: %w", o.OwnershipID, err)
		}
		if expiry.Valid {
			t, err := parseTime(expiry.String)
			if err != nil {
				return fmt.Errorf("parsing expiry_date for %s: %w", o.OwnershipID, err)
			}
			o.ExpiryDate = &t
		}
		o.ChangeReason = scanString(reason)
		if o.CreatedAt, err = parseTime(createdAt); err != nil {
			return fmt.Errorf("parsing created_at for %s: %w", o.OwnershipID, err)
		}
		if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return fmt.Errorf("parsing updated_at for %s: %w", o.OwnershipID, err)
		}
		out[o.OwnershipID] = &o
	}
	return rows.Err()
}

// persistOwnerships rewrites the ownerships table inside the transaction.
func persistOwnerships(tx *sql.Tx, ownerships map[string]*types.Ownership) error {
	if _, err := tx.Exec("DELETE FROM ownerships"); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO ownerships (ownership_id, owner_entity_id,
		owned_entity_id, shares, share_class_id, effective_date, expiry_date,
		change_reason, version, created_by, created_at, updated_by, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range ownerships {
		var expiry any
		if o.ExpiryDate != nil {
			expiry = o.ExpiryDate.Format(timeFormat)
		}
		if _, err := stmt.Exec(o.OwnershipID, o.OwnerEntityID, o.OwnedEntityID,
			o.Shares, o.ShareClassID, o.EffectiveDate.Format(timeFormat), expiry,
			nullString(o.ChangeReason), o.Version, o.CreatedBy,
			o.CreatedAt.Format(timeFormat), o.UpdatedBy,
			o.UpdatedAt.Format(timeFormat)); err != nil {
			return fmt.Errorf("inserting ownership %s: %w", o.OwnershipID, err)
		}
	}
	return nil
}
