package views

import (
	"sort"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

// BuildHierarchy assigns a level to every entity from the ownership edge
// set. Roots (no incoming edges) sit at level 0; every other entity sits
// at 1 + the maximum level of its direct owners, so a doubly-owned entity
// takes the level implied by its furthest owner path.
//
// The traversal is a Kahn-style relaxation from the roots outward and
// relies on the ledger's acyclicity guarantee rather than re-detecting
// cycles. Partially-invalid snapshots are handled defensively: edges whose
// endpoints are missing from the entity set are skipped, and any entity
// the relaxation never reaches defaults to level 0.
func BuildHierarchy(data *types.SnapshotData) *types.Hierarchy {
	h := &types.Hierarchy{
		Nodes:  make(map[string]*types.EntityNode, len(data.Entities)),
		Levels: make(map[string]int, len(data.Entities)),
		Groups: make(map[int][]string),
	}

	for id := range data.Entities {
		h.Nodes[id] = &types.EntityNode{EntityID: id}
	}

	// Adjacency over valid endpoints only; duplicate edges between the
	// same pair collapse to one relationship.
	owners := make(map[string]map[string]bool)
	children := make(map[string]map[string]bool)
	for _, o := range data.Ownerships {
		if h.Nodes[o.OwnerEntityID] == nil || h.Nodes[o.OwnedEntityID] == nil {
			continue
		}
		if owners[o.OwnedEntityID] == nil {
			owners[o.OwnedEntityID] = make(map[string]bool)
		}
		owners[o.OwnedEntityID][o.OwnerEntityID] = true
		if children[o.OwnerEntityID] == nil {
			children[o.OwnerEntityID] = make(map[string]bool)
		}
		children[o.OwnerEntityID][o.OwnedEntityID] = true
	}

	for id, node := range h.Nodes {
		node.OwnerIDs = sortedKeys(owners[id])
		node.ChildIDs = sortedKeys(children[id])
	}

	// Relax levels from the roots outward. pending counts the owners not
	// yet finalized for each entity; an entity's level is final once all
	// its owners are.
	pending := make(map[string]int, len(h.Nodes))
	var queue []string
	for id := range h.Nodes {
		pending[id] = len(owners[id])
		if pending[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	levels := make(map[string]int, len(h.Nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, child := range h.Nodes[current].ChildIDs {
			if levels[child] < levels[current]+1 {
				levels[child] = levels[current] + 1
			}
			pending[child]--
			if pending[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	// Entities the relaxation never finalized (possible only on invalid
	// snapshots) keep the default level 0.
	for id, node := range h.Nodes {
		if pending[id] > 0 {
			levels[id] = 0
		}
		node.Level = levels[id]
		h.Levels[id] = node.Level
		h.Groups[node.Level] = append(h.Groups[node.Level], id)
	}
	for _, ids := range h.Groups {
		sort.Strings(ids)
	}

	return h
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
