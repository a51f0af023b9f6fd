// Package sqlite implements the SQLite snapshot backend for the
// capledger ownership ledger. The database file under DataDir is the
// durable copy of the record maps plus the append-only audit trail; the
// ledger loads it once at startup and rewrites the record tables after
// every committed mutation.
package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// timeFormat is the column encoding for timestamps.
const timeFormat = time.RFC3339Nano

// Backend implements the types.Snapshot interface over a SQLite file.
type Backend struct {
	mu       sync.Mutex
	attached bool
	config   types.Config
	db       *sql.DB
}

var _ types.Snapshot = (*Backend)(nil)

// NewBackend creates an SQLite backend instance. The backend is not
// attached; call Attach with a Config to open the database.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens (or creates) the database under config.DataDir and
// ensures the schema exists. Returns ErrAlreadyAttached if called while
// attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "capledger.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("initializing schema: %w", err)
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Close releases the database handle. Idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
		b.db = nil
	}
	return nil
}

// Load hydrates the three record maps from the database. A fresh
// database yields empty maps.
func (b *Backend) Load() (*types.SnapshotData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, types.ErrSnapshotDetached
	}

	data := types.NewSnapshotData()
	if err := loadEntities(b.db, data.Entities); err != nil {
		return nil, fmt.Errorf("loading entities: %w", err)
	}
	if err := loadShareClasses(b.db, data.ShareClasses); err != nil {
		return nil, fmt.Errorf("loading share classes: %w", err)
	}
	if err := loadOwnerships(b.db, data.Ownerships); err != nil {
		return nil, fmt.Errorf("loading ownerships: %w", err)
	}
	return data, nil
}

// SaveRecords rewrites the three record tables in one transaction, so
// the saved snapshot is all-or-nothing.
func (b *Backend) SaveRecords(data *types.SnapshotData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrSnapshotDetached
	}
	if data == nil {
		return types.ErrInvalidData
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := persistEntities(tx, data.Entities); err != nil {
		return fmt.Errorf("persisting entities: %w", err)
	}
	if err := persistShareClasses(tx, data.ShareClasses); err != nil {
		return fmt.Errorf("persisting share classes: %w", err)
	}
	if err := persistOwnerships(tx, data.Ownerships); err != nil {
		return fmt.Errorf("persisting ownerships: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// nullString maps empty strings to NULL for optional columns.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// scanString maps NULL back to the empty string.
func scanString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// parseTime decodes a timestamp column.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		// Older snapshots may carry second-precision stamps.
		t, err = time.Parse(time.RFC3339, s)
	}
	return t, err
}
