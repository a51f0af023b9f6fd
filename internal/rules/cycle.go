package rules

import "github.com/mesh-intelligence/capledger/pkg/types"

// WouldCreateCycle reports whether committing the candidate edge
// (owner -> owned) would close a directed cycle in the edge set.
//
// It walks forward from the candidate's owned entity along existing edges
// (owned entity -> entities it owns); reaching the candidate's owner means
// the new edge would complete a loop. A visited set bounds the walk at
// O(V+E), and an explicit stack avoids call-stack depth limits on large
// graphs. For updates, the candidate's own stored edge is excluded from
// the walk so moving an edge cannot trip over its old position.
func WouldCreateCycle(candidate *types.Ownership, ownerships map[string]*types.Ownership) bool {
	// Forward adjacency: owner id -> owned ids, candidate's edge excluded.
	adjacency := make(map[string][]string, len(ownerships))
	for id, o := range ownerships {
		if id == candidate.OwnershipID {
			continue
		}
		adjacency[o.OwnerEntityID] = append(adjacency[o.OwnerEntityID], o.OwnedEntityID)
	}

	visited := map[string]bool{candidate.OwnedEntityID: true}
	stack := []string{candidate.OwnedEntityID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == candidate.OwnerEntityID {
			return true
		}
		for _, next := range adjacency[current] {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}
