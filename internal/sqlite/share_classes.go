// Share class table hydration and persistence for the SQLite backend.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

// loadShareClasses hydrates every share class row into the map.
func loadShareClasses(db *sql.DB, out map[string]*types.ShareClass) error {
	rows, err := db.Query(`SELECT class_id, entity_id, name, kind,
		total_authorized_shares, voting_rights, liquidation_preference,
		dividend_rate, version, created_at, updated_at FROM share_classes`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sc types.ShareClass
		var voting int
		var liqPref, divRate sql.NullFloat64
		var createdAt, updatedAt string
		if err := rows.Scan(&sc.ClassID, &sc.EntityID, &sc.Name, &sc.Kind,
			&sc.TotalAuthorizedShares, &voting, &liqPref, &divRate,
			&sc.Version, &createdAt, &updatedAt); err != nil {
			return err
		}
		sc.VotingRights = voting != 0
		if liqPref.Valid {
			v := liqPref.Float64
			sc.LiquidationPreference = &v
		}
		if divRate.Valid {
			v := divRate.Float64
			sc.DividendRate = &v
		}
		if sc.CreatedAt, err = parseTime(createdAt); err != nil {
			return fmt.Errorf("parsing created_at for %s: %w", sc.ClassID, err)
		}
		if sc.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return fmt.Errorf("parsing updated_at for %s: %w", sc.ClassID, err)
		}
		out[sc.ClassID] = &sc
	}
	return rows.Err()
}

// persistShareClasses rewrites the share_classes table inside the
// transaction.
func persistShareClasses(tx *sql.Tx, classes map[string]*types.ShareClass) error {
	if _, err := tx.Exec("DELETE FROM share_classes"); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO share_classes (class_id, entity_id, name,
		kind, total_authorized_shares, voting_rights, liquidation_preference,
		dividend_rate, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sc := range classes {
		voting := 0
		if sc.VotingRights {
			voting = 1
		}
		var liqPref, divRate any
		if sc.LiquidationPreference != nil {
			liqPref = *sc.LiquidationPreference
		}
		if sc.DividendRate != nil {
			divRate = *sc.DividendRate
		}
		if _, err := stmt.Exec(sc.ClassID, sc.EntityID, sc.Name, sc.Kind,
			sc.TotalAuthorizedShares, voting, liqPref, divRate, sc.Version,
			sc.CreatedAt.Format(timeFormat), sc.UpdatedAt.Format(timeFormat)); err != nil {
			return fmt.Errorf("inserting share class %s: %w", sc.ClassID, err)
		}
	}
	return nil
}
