// Package capledger provides the public entry point for embedding the
// ownership ledger: a factory that assembles the ledger over the
// configured snapshot backend, while keeping backend details internal.
//
// Example:
//
//	led, err := capledger.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".capledger-db",
//	}, nil)
//	if err != nil { ... }
//	defer led.Close()
package capledger

import (
	"log/slog"

	"github.com/mesh-intelligence/capledger/internal/ledger"
	"github.com/mesh-intelligence/capledger/internal/sqlite"
	"github.com/mesh-intelligence/capledger/pkg/types"
)

// Version is the capledger release version.
const Version = "0.2.0"

// Ledger is the assembled ownership ledger. See the methods on
// internal/ledger.Ledger for the full operation surface.
type Ledger = ledger.Ledger

// Open assembles a ledger for the given config. An empty or "memory"
// backend yields a pure in-memory ledger; "sqlite" opens or creates a
// database under config.DataDir and loads it synchronously. A nil logger
// falls back to slog.Default.
func Open(config types.Config, logger *slog.Logger) (*Ledger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var snapshot types.Snapshot
	if config.Backend == types.BackendSQLite {
		backend := sqlite.NewBackend()
		if err := backend.Attach(config); err != nil {
			return nil, err
		}
		snapshot = backend
	}

	led, err := ledger.New(snapshot, logger)
	if err != nil {
		if snapshot != nil {
			snapshot.Close()
		}
		return nil, err
	}
	return led, nil
}
