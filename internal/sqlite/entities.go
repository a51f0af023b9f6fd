// Entity table hydration and persistence for the SQLite backend.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

// loadEntities hydrates every entity row into the map.
func loadEntities(db *sql.DB, out map[string]*types.Entity) error {
	rows, err := db.Query(`SELECT entity_id, name, type, jurisdiction, registration,
		metadata, version, created_at, updated_at FROM entities`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e types.Entity
		var jurisdiction, registration, metadata sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&e.EntityID, &e.Name, &e.Type, &jurisdiction,
			&registration, &metadata, &e.Version, &createdAt, &updatedAt); err != nil {
			return err
		}
		e.Jurisdiction = scanString(jurisdiction)
		if registration.Valid {
			var reg types.Registration
			if err := json.Unmarshal([]byte(registration.String), &reg); err != nil {
				return fmt.Errorf("decoding registration for %s: %w", e.EntityID, err)
			}
			e.Registration = &reg
		}
		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &e.Metadata); err != nil {
				return fmt.Errorf("decoding metadata for %s: %w", e.EntityID, err)
			}
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return fmt.Errorf("parsing created_at for %s: %w", e.EntityID, err)
		}
		if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return fmt.Errorf("parsing updated_at for %s: %w", e.EntityID, err)
		}
		out[e.EntityID] = &e
	}
	return rows.Err()
}

// persistEntities rewrites the entities table inside the transaction.
func persistEntities(tx *sql.Tx, entities map[string]*types.Entity) error {
	if _, err := tx.Exec("DELETE FROM entities"); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO entities (entity_id, name, type, jurisdiction,
		registration, metadata, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entities {
		var registration, metadata any
		if e.Registration != nil {
			raw, err := json.Marshal(e.Registration)
			if err != nil {
				return fmt.Errorf("encoding registration for %s: %w", e.EntityID, err)
			}
			registration = string(raw)
		}
		if len(e.Metadata) > 0 {
			raw, err := json.Marshal(e.Metadata)
			if err != nil {
				return fmt.Errorf("encoding metadata for %s: %w", e.EntityID, err)
			}
			metadata = string(raw)
		}
		if _, err := stmt.Exec(e.EntityID, e.Name, e.Type, nullString(e.Jurisdiction),
			registration, metadata, e.Version,
			e.CreatedAt.Format(timeFormat), e.UpdatedAt.Format(timeFormat)); err != nil {
			return fmt.Errorf("inserting entity %s: %w", e.EntityID, err)
		}
	}
	return nil
}
