package jsonl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

func exportFixture() *types.SnapshotData {
	now := time.Now().UTC().Truncate(time.Second)
	data := types.NewSnapshotData()
	data.Entities["ent-b"] = &types.Entity{
		EntityID: "ent-b", Name: "OpCo", Type: types.EntityCorporation,
		Version: 1, CreatedAt: now, UpdatedAt: now,
	}
	data.Entities["ent-a"] = &types.Entity{
		EntityID: "ent-a", Name: "Founder", Type: types.EntityIndividual,
		Metadata: map[string]string{"role": "founder"},
		Version:  2, CreatedAt: now, UpdatedAt: now,
	}
	data.ShareClasses["cls-1"] = &types.ShareClass{
		ClassID: "cls-1", EntityID: "ent-b", Name: "Common",
		Kind: types.ClassCommon, TotalAuthorizedShares: 1000,
		Version: 1, CreatedAt: now, UpdatedAt: now,
	}
	data.Ownerships["own-1"] = &types.Ownership{
		OwnershipID: "own-1", OwnerEntityID: "ent-a", OwnedEntityID: "ent-b",
		Shares: 600, ShareClassID: "cls-1", EffectiveDate: now,
		Version: 1, CreatedBy: "alice", CreatedAt: now, UpdatedBy: "alice", UpdatedAt: now,
	}
	return data
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := exportFixture()

	require.NoError(t, Export(dir, want))

	got, err := Import(dir)
	require.NoError(t, err)

	require.Len(t, got.Entities, 2)
	assert.Equal(t, "Founder", got.Entities["ent-a"].Name)
	assert.Equal(t, "founder", got.Entities["ent-a"].Metadata["role"])
	assert.Equal(t, int64(2), got.Entities["ent-a"].Version)

	require.Len(t, got.ShareClasses, 1)
	assert.Equal(t, int64(1000), got.ShareClasses["cls-1"].TotalAuthorizedShares)

	require.Len(t, got.Ownerships, 1)
	own := got.Ownerships["own-1"]
	assert.Equal(t, int64(600), own.Shares)
	assert.True(t, own.EffectiveDate.Equal(want.Ownerships["own-1"].EffectiveDate))
}

func TestExportOrdersRecordsByID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Export(dir, exportFixture()))

	raw, err := os.ReadFile(filepath.Join(dir, EntitiesFile))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"ent-a"`)
	assert.Contains(t, lines[1], `"ent-b"`)
}

func TestExportOverwritesPreviousFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Export(dir, exportFixture()))

	smaller := types.NewSnapshotData()
	smaller.Entities["only"] = &types.Entity{
		EntityID: "only", Name: "Solo", Type: types.EntityTrust, Version: 1,
	}
	require.NoError(t, Export(dir, smaller))

	got, err := Import(dir)
	require.NoError(t, err)
	require.Len(t, got.Entities, 1)
	assert.Contains(t, got.Entities, "only")
	assert.Empty(t, got.Ownerships)
}

func TestImportMissingDirectory(t *testing.T) {
	got, err := Import(filepath.Join(t.TempDir(), "never-exported"))
	require.NoError(t, err)
	assert.Empty(t, got.Entities)
	assert.Empty(t, got.ShareClasses)
	assert.Empty(t, got.Ownerships)
}

func TestImportSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join([]string{
		`{"entity_id":"good-1","name":"Good","type":"corporation","version":1}`,
		`{not json at all`,
		``,
		`{"name":"missing id","type":"llc"}`,
		`{"entity_id":"good-2","name":"Also Good","type":"llc","version":1}`,
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, EntitiesFile), []byte(content), 0o644))

	got, err := Import(dir)
	require.NoError(t, err)
	require.Len(t, got.Entities, 2)
	assert.Contains(t, got.Entities, "good-1")
	assert.Contains(t, got.Entities, "good-2")
}

func TestExportLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Export(dir, exportFixture()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}
