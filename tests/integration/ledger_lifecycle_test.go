package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

// TestCapStructureLifecycle walks a small holding structure end to end:
// create entities, issue shares, derive views, mutate, audit.
func TestCapStructureLifecycle(t *testing.T) {
	led, _ := openLedger(t)

	founder := mustEntity(t, led, "Founder", types.EntityIndividual)
	investor := mustEntity(t, led, "Seed Fund LP", types.EntityPartnership)
	hold := mustEntity(t, led, "HoldCo", types.EntityCorporation)
	op := mustEntity(t, led, "OpCo", types.EntityCorporation)

	classHold := mustClass(t, led, hold.EntityID, 10000)
	classOp := mustClass(t, led, op.EntityID, 1000)

	mustOwnership(t, led, founder.EntityID, hold.EntityID, classHold.ClassID, 7000)
	mustOwnership(t, led, investor.EntityID, hold.EntityID, classHold.ClassID, 3000)
	mustOwnership(t, led, hold.EntityID, op.EntityID, classOp.ClassID, 1000)

	// Cap table of HoldCo: founder 70%, investor 30%.
	view, err := led.GetCapTableView(hold.EntityID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, int64(10000), view.TotalIssuedShares)
	assert.Zero(t, view.AvailableShares)
	require.Len(t, view.Ownerships, 2)
	assert.Equal(t, founder.EntityID, view.Ownerships[0].OwnerEntityID)
	assert.InDelta(t, 70.0, view.Ownerships[0].Percentage, 1e-9)
	assert.InDelta(t, 30.0, view.Ownerships[1].Percentage, 1e-9)

	// Hierarchy: individuals and funds at the root, OpCo at the bottom.
	h, err := led.GetOwnershipHierarchy()
	require.NoError(t, err)
	assert.Equal(t, 0, h.Levels[founder.EntityID])
	assert.Equal(t, 0, h.Levels[investor.EntityID])
	assert.Equal(t, 1, h.Levels[hold.EntityID])
	assert.Equal(t, 2, h.Levels[op.EntityID])

	// OpCo cannot own HoldCo back.
	_, err = led.CreateOwnership(&types.Ownership{
		OwnerEntityID: op.EntityID,
		OwnedEntityID: hold.EntityID,
		ShareClassID:  classHold.ClassID,
		Shares:        1,
	}, "itest")
	assert.ErrorIs(t, err, types.ErrCircularOwnership)

	// HoldCo cannot be deleted while edges reference it.
	err = led.DeleteEntity(hold.EntityID, 0, "itest", "")
	require.ErrorIs(t, err, types.ErrReferentialIntegrity)
	var ri *types.ReferentialIntegrityError
	require.ErrorAs(t, err, &ri)
	assert.Len(t, ri.BlockingIDs, 3)

	// Full trail: 4 entities + 2 classes + 3 edges.
	trail, err := led.GetAuditTrail(types.AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, trail, 9)
}

// TestStateSurvivesReopen proves the SQLite backend is the durable copy:
// records, versions and the audit trail all survive a close and reopen.
func TestStateSurvivesReopen(t *testing.T) {
	led, dir := openLedger(t)

	founder := mustEntity(t, led, "Founder", types.EntityIndividual)
	op := mustEntity(t, led, "OpCo", types.EntityCorporation)
	class := mustClass(t, led, op.EntityID, 1000)
	edge := mustOwnership(t, led, founder.EntityID, op.EntityID, class.ClassID, 400)

	shares := int64(650)
	_, err := led.UpdateOwnership(edge.OwnershipID, types.OwnershipPatch{Shares: &shares},
		edge.Version, "itest", "follow-on")
	require.NoError(t, err)
	require.NoError(t, led.Close())

	led = reopenLedger(t, dir)

	got, err := led.GetOwnership(edge.OwnershipID)
	require.NoError(t, err)
	assert.Equal(t, int64(650), got.Shares)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, "follow-on", got.ChangeReason)

	view, err := led.GetCapTableView(op.EntityID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, int64(650), view.TotalIssuedShares)

	trail, err := led.GetAuditTrail(types.AuditFilter{EntityID: founder.EntityID})
	require.NoError(t, err)
	require.Len(t, trail, 3, "entity create, edge create, edge update")
	assert.Equal(t, types.ActionUpdate, trail[2].Action)

	// Optimistic concurrency still enforced against reloaded versions.
	stale := int64(999)
	_, err = led.UpdateOwnership(edge.OwnershipID, types.OwnershipPatch{Shares: &stale},
		1, "itest", "")
	assert.ErrorIs(t, err, types.ErrConflict)
}

// TestRejectedWritesLeaveNoTrace drives a batch of invalid writes and
// checks nothing reached memory, the audit trail, or the database.
func TestRejectedWritesLeaveNoTrace(t *testing.T) {
	led, dir := openLedger(t)

	founder := mustEntity(t, led, "Founder", types.EntityIndividual)
	op := mustEntity(t, led, "OpCo", types.EntityCorporation)
	class := mustClass(t, led, op.EntityID, 1000)

	invalid := []*types.Ownership{
		{OwnerEntityID: "ghost", OwnedEntityID: op.EntityID, ShareClassID: class.ClassID, Shares: 1},
		{OwnerEntityID: founder.EntityID, OwnedEntityID: op.EntityID, ShareClassID: class.ClassID, Shares: 0},
		{OwnerEntityID: op.EntityID, OwnedEntityID: op.EntityID, ShareClassID: class.ClassID, Shares: 1},
	}
	for _, o := range invalid {
		_, err := led.CreateOwnership(o, "itest")
		require.ErrorIs(t, err, types.ErrValidation)
	}

	edges, err := led.QueryOwnerships(types.OwnershipFilter{})
	require.NoError(t, err)
	assert.Empty(t, edges)

	require.NoError(t, led.Close())
	led = reopenLedger(t, dir)

	trail, err := led.GetAuditTrail(types.AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, trail, 3, "only the three setup mutations persisted")
}

// TestDryRunValidation checks the validation probe surfaces warnings
// without committing.
func TestDryRunValidation(t *testing.T) {
	led, _ := openLedger(t)

	founder := mustEntity(t, led, "Founder", types.EntityIndividual)
	op := mustEntity(t, led, "OpCo", types.EntityCorporation)
	class := mustClass(t, led, op.EntityID, 1000)

	result, err := led.ValidateOwnershipChange(&types.Ownership{
		OwnerEntityID: founder.EntityID,
		OwnedEntityID: op.EntityID,
		ShareClassID:  class.ClassID,
		Shares:        5000,
	})
	require.NoError(t, err)
	assert.True(t, result.IsValid())
	require.NotEmpty(t, result.Warnings)

	edges, err := led.QueryOwnerships(types.OwnershipFilter{})
	require.NoError(t, err)
	assert.Empty(t, edges)
}
