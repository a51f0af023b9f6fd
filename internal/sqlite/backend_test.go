// Integration-style tests for the SQLite snapshot backend, each against
// a fresh database in a temp directory.
package sqlite

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

func attachedBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func sampleData() *types.SnapshotData {
	now := time.Now().UTC().Truncate(time.Microsecond)
	expiry := now.AddDate(2, 0, 0)
	pref := 1.5

	data := types.NewSnapshotData()
	data.Entities["ent-1"] = &types.Entity{
		EntityID:     "ent-1",
		Name:         "HoldCo",
		Type:         types.EntityCorporation,
		Jurisdiction: "DE",
		Registration: &types.Registration{Number: "C-12345", FormationDate: now},
		Metadata:     map[string]string{"sector": "finance"},
		Version:      3,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	data.Entities["ent-2"] = &types.Entity{
		EntityID: "ent-2", Name: "Founder", Type: types.EntityIndividual,
		Version: 1, CreatedAt: now, UpdatedAt: now,
	}
	data.ShareClasses["cls-1"] = &types.ShareClass{
		ClassID: "cls-1", EntityID: "ent-1", Name: "Series A",
		Kind: types.ClassPreferred, TotalAuthorizedShares: 5000,
		VotingRights: true, LiquidationPreference: &pref,
		Version: 2, CreatedAt: now, UpdatedAt: now,
	}
	data.Ownerships["own-1"] = &types.Ownership{
		OwnershipID: "own-1", OwnerEntityID: "ent-2", OwnedEntityID: "ent-1",
		Shares: 1200, ShareClassID: "cls-1",
		EffectiveDate: now, ExpiryDate: &expiry, ChangeReason: "seed round",
		Version: 1, CreatedBy: "alice", CreatedAt: now, UpdatedBy: "alice", UpdatedAt: now,
	}
	return data
}

func TestAttachLifecycle(t *testing.T) {
	b := NewBackend()
	dir := t.TempDir()

	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	assert.ErrorIs(t, b.Attach(types.Config{DataDir: dir}), types.ErrAlreadyAttached)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close(), "close is idempotent")

	// Detached operations fail cleanly.
	_, err := b.Load()
	assert.ErrorIs(t, err, types.ErrSnapshotDetached)
	assert.ErrorIs(t, b.SaveRecords(types.NewSnapshotData()), types.ErrSnapshotDetached)
	assert.ErrorIs(t, b.AppendAudit(&types.AuditEntry{EntryID: "e"}), types.ErrSnapshotDetached)
	_, err = b.QueryAudit(types.AuditFilter{})
	assert.ErrorIs(t, err, types.ErrSnapshotDetached)

	// Reattach works after close.
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	require.NoError(t, b.Close())
}

func TestLoadEmptyDatabase(t *testing.T) {
	b := attachedBackend(t)

	data, err := b.Load()
	require.NoError(t, err)
	assert.Empty(t, data.Entities)
	assert.Empty(t, data.ShareClasses)
	assert.Empty(t, data.Ownerships)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))

	want := sampleData()
	require.NoError(t, b.SaveRecords(want))
	require.NoError(t, b.Close())

	// Reopen to prove the data survived the handle, not just the cache.
	b = NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer b.Close()

	got, err := b.Load()
	require.NoError(t, err)

	require.Contains(t, got.Entities, "ent-1")
	ent := got.Entities["ent-1"]
	assert.Equal(t, "HoldCo", ent.Name)
	assert.Equal(t, "DE", ent.Jurisdiction)
	require.NotNil(t, ent.Registration)
	assert.Equal(t, "C-12345", ent.Registration.Number)
	assert.Equal(t, "finance", ent.Metadata["sector"])
	assert.Equal(t, int64(3), ent.Version)
	assert.True(t, ent.CreatedAt.Equal(want.Entities["ent-1"].CreatedAt))

	require.Contains(t, got.Entities, "ent-2")
	assert.Nil(t, got.Entities["ent-2"].Registration)
	assert.Nil(t, got.Entities["ent-2"].Metadata)

	require.Contains(t, got.ShareClasses, "cls-1")
	cls := got.ShareClasses["cls-1"]
	assert.Equal(t, types.ClassPreferred, cls.Kind)
	assert.True(t, cls.VotingRights)
	require.NotNil(t, cls.LiquidationPreference)
	assert.Equal(t, 1.5, *cls.LiquidationPreference)
	assert.Nil(t, cls.DividendRate)

	require.Contains(t, got.Ownerships, "own-1")
	own := got.Ownerships["own-1"]
	assert.Equal(t, int64(1200), own.Shares)
	assert.Equal(t, "seed round", own.ChangeReason)
	require.NotNil(t, own.ExpiryDate)
	assert.True(t, own.ExpiryDate.Equal(*want.Ownerships["own-1"].ExpiryDate))
}

func TestSaveRecordsRewritesState(t *testing.T) {
	b := attachedBackend(t)

	require.NoError(t, b.SaveRecords(sampleData()))

	// Save a smaller snapshot; deleted records must not resurface.
	smaller := sampleData()
	delete(smaller.Ownerships, "own-1")
	delete(smaller.ShareClasses, "cls-1")
	require.NoError(t, b.SaveRecords(smaller))

	got, err := b.Load()
	require.NoError(t, err)
	assert.Len(t, got.Entities, 2)
	assert.Empty(t, got.ShareClasses)
	assert.Empty(t, got.Ownerships)
}

func TestSaveRecordsNilData(t *testing.T) {
	b := attachedBackend(t)
	assert.ErrorIs(t, b.SaveRecords(nil), types.ErrInvalidData)
}

func TestAppendAndQueryAudit(t *testing.T) {
	b := attachedBackend(t)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	prev, _ := json.Marshal(map[string]string{"name": "Old"})
	next, _ := json.Marshal(map[string]string{"name": "New"})

	entries := []*types.AuditEntry{
		{
			EntryID: "a-1", Timestamp: base, UserID: "alice",
			Action: types.ActionCreate, TargetType: types.TargetEntity,
			TargetID: "ent-1", RelatedEntityIDs: []string{"ent-1"},
			NewState: next,
		},
		{
			EntryID: "a-2", Timestamp: base.Add(time.Hour), UserID: "bob",
			Action: types.ActionUpdate, TargetType: types.TargetOwnership,
			TargetID: "own-1", RelatedEntityIDs: []string{"ent-1", "ent-2"},
			PreviousState: prev, NewState: next,
			ChangeReason: "transfer", RulesApplied: []string{"owner_exists", "positive_shares"},
		},
		{
			EntryID: "a-3", Timestamp: base.Add(2 * time.Hour), UserID: "alice",
			Action: types.ActionDelete, TargetType: types.TargetEntity,
			TargetID: "ent-9", RelatedEntityIDs: []string{"ent-9"},
			PreviousState: prev,
		},
	}
	for _, e := range entries {
		require.NoError(t, b.AppendAudit(e))
	}

	all, err := b.QueryAudit(types.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a-1", all[0].EntryID, "append order preserved")
	assert.Equal(t, "a-3", all[2].EntryID)

	got := all[1]
	assert.Equal(t, "bob", got.UserID)
	assert.Equal(t, []string{"ent-1", "ent-2"}, got.RelatedEntityIDs)
	assert.JSONEq(t, string(prev), string(got.PreviousState))
	assert.JSONEq(t, string(next), string(got.NewState))
	assert.Equal(t, "transfer", got.ChangeReason)
	assert.Equal(t, []string{"owner_exists", "positive_shares"}, got.RulesApplied)
	assert.True(t, got.Timestamp.Equal(base.Add(time.Hour)))

	byEntity, err := b.QueryAudit(types.AuditFilter{EntityID: "ent-2"})
	require.NoError(t, err)
	require.Len(t, byEntity, 1)
	assert.Equal(t, "a-2", byEntity[0].EntryID)

	windowed, err := b.QueryAudit(types.AuditFilter{From: base.Add(30 * time.Minute)})
	require.NoError(t, err)
	assert.Len(t, windowed, 2)
}

func TestAuditSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	require.NoError(t, b.AppendAudit(&types.AuditEntry{
		EntryID: "a-1", Timestamp: time.Now().UTC(), UserID: "alice",
		Action: types.ActionCreate, TargetType: types.TargetEntity, TargetID: "ent-1",
	}))
	require.NoError(t, b.Close())

	b = NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer b.Close()

	all, err := b.QueryAudit(types.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "a-1", all[0].EntryID)
}
