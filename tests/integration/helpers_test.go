// Package integration exercises the assembled ledger through the public
// capledger entry point, against a real SQLite database per test.
package integration

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/capledger/pkg/capledger"
	"github.com/mesh-intelligence/capledger/pkg/types"
)

// openLedger assembles a SQLite-backed ledger in an isolated temp
// directory and returns it with the directory, so tests can reopen the
// same database.
func openLedger(t *testing.T) (*capledger.Ledger, string) {
	t.Helper()
	dir := t.TempDir()
	led := reopenLedger(t, dir)
	return led, dir
}

// reopenLedger opens a ledger over an existing data directory.
func reopenLedger(t *testing.T, dir string) *capledger.Ledger {
	t.Helper()
	led, err := capledger.Open(types.Config{
		Backend: types.BackendSQLite,
		DataDir: dir,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = led.Close() })
	return led
}

// mustEntity creates an entity or fails the test.
func mustEntity(t *testing.T, led *capledger.Ledger, name, entityType string) *types.Entity {
	t.Helper()
	e, err := led.CreateEntity(&types.Entity{Name: name, Type: entityType}, "itest", "setup")
	require.NoError(t, err)
	return e
}

// mustClass creates a common share class or fails the test.
func mustClass(t *testing.T, led *capledger.Ledger, entityID string, authorized int64) *types.ShareClass {
	t.Helper()
	sc, err := led.CreateShareClass(&types.ShareClass{
		EntityID:              entityID,
		Name:                  "Common",
		Kind:                  types.ClassCommon,
		TotalAuthorizedShares: authorized,
		VotingRights:          true,
	}, "itest", "setup")
	require.NoError(t, err)
	return sc
}

// mustOwnership creates an ownership edge or fails the test.
func mustOwnership(t *testing.T, led *capledger.Ledger, ownerID, ownedID, classID string, shares int64) *types.Ownership {
	t.Helper()
	o, err := led.CreateOwnership(&types.Ownership{
		OwnerEntityID: ownerID,
		OwnedEntityID: ownedID,
		ShareClassID:  classID,
		Shares:        shares,
	}, "itest")
	require.NoError(t, err)
	return o
}
