// Package views computes the ledger's derived views: per-entity cap
// tables and the leveled ownership hierarchy. Both are pure functions of
// the record maps, computed fresh on every call and never cached.
package views

import (
	"sort"
	"time"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

// ComputeCapTable derives the cap table for entityID from the record
// maps. Returns nil if the entity does not exist.
//
// Conventions, fixed deliberately: AuthorizedShares is the sum of
// TotalAuthorizedShares across the entity's share classes;
// AvailableShares is clamped at zero; every non-deleted ownership
// aggregates regardless of expiry date. Output ordering is deterministic:
// holders by descending shares with ownership id as tiebreak, classes by
// class id.
func ComputeCapTable(entityID string, data *types.SnapshotData) *types.CapTableView {
	entity, ok := data.Entities[entityID]
	if !ok {
		return nil
	}

	view := &types.CapTableView{
		EntityID:   entityID,
		EntityName: entity.Name,
		ComputedAt: time.Now().UTC(),
	}

	// Issuance per class, and the entity's edges.
	issuedByClass := make(map[string]int64)
	var edges []*types.Ownership
	for _, o := range data.Ownerships {
		if o.OwnedEntityID != entityID {
			continue
		}
		edges = append(edges, o)
		view.TotalIssuedShares += o.Shares
		issuedByClass[o.ShareClassID] += o.Shares
	}

	// Class summaries, ordered by class id.
	var classes []*types.ShareClass
	for _, sc := range data.ShareClasses {
		if sc.EntityID == entityID {
			classes = append(classes, sc)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ClassID < classes[j].ClassID })

	for _, sc := range classes {
		view.AuthorizedShares += sc.TotalAuthorizedShares
		issued := issuedByClass[sc.ClassID]
		summary := types.ShareClassSummary{
			ClassID:          sc.ClassID,
			ClassName:        sc.Name,
			Kind:             sc.Kind,
			IssuedShares:     issued,
			AuthorizedShares: sc.TotalAuthorizedShares,
		}
		if sc.TotalAuthorizedShares > 0 {
			summary.PercentIssued = float64(issued) / float64(sc.TotalAuthorizedShares) * 100
		}
		view.ShareClasses = append(view.ShareClasses, summary)
	}

	view.AvailableShares = view.AuthorizedShares - view.TotalIssuedShares
	if view.AvailableShares < 0 {
		view.AvailableShares = 0
	}

	// Holder rows: descending shares, ownership id tiebreak.
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Shares != edges[j].Shares {
			return edges[i].Shares > edges[j].Shares
		}
		return edges[i].OwnershipID < edges[j].OwnershipID
	})

	for _, o := range edges {
		row := types.OwnershipSummary{
			OwnershipID:   o.OwnershipID,
			OwnerEntityID: o.OwnerEntityID,
			ShareClassID:  o.ShareClassID,
			Shares:        o.Shares,
		}
		if owner, ok := data.Entities[o.OwnerEntityID]; ok {
			row.OwnerName = owner.Name
		}
		if view.TotalIssuedShares > 0 {
			row.Percentage = float64(o.Shares) / float64(view.TotalIssuedShares) * 100
		}
		if view.AuthorizedShares > 0 {
			row.FullyDilutedPercentage = float64(o.Shares) / float64(view.AuthorizedShares) * 100
		}
		view.Ownerships = append(view.Ownerships, row)
	}

	return view
}
