// Unit tests for cycle detection over the ownership edge set.
package rules

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

// edge builds an ownership edge for graph tests; share data is
// irrelevant to cycle detection.
func edge(id, owner, owned string) *types.Ownership {
	return &types.Ownership{OwnershipID: id, OwnerEntityID: owner, OwnedEntityID: owned}
}

func edgeSet(edges ...*types.Ownership) map[string]*types.Ownership {
	set := make(map[string]*types.Ownership, len(edges))
	for _, e := range edges {
		set[e.OwnershipID] = e
	}
	return set
}

func TestWouldCreateCycle(t *testing.T) {
	tests := []struct {
		name      string
		existing  map[string]*types.Ownership
		candidate *types.Ownership
		want      bool
	}{
		{
			name:      "empty graph",
			existing:  edgeSet(),
			candidate: edge("new", "a", "b"),
			want:      false,
		},
		{
			name:      "direct cycle",
			existing:  edgeSet(edge("e1", "a", "b")),
			candidate: edge("new", "b", "a"),
			want:      true,
		},
		{
			name: "transitive cycle",
			existing: edgeSet(
				edge("e1", "a", "b"),
				edge("e2", "b", "c"),
			),
			candidate: edge("new", "c", "a"),
			want:      true,
		},
		{
			name: "diamond is permitted",
			// R owns A and B; A owns C; adding B -> C closes the
			// diamond but no directed cycle.
			existing: edgeSet(
				edge("e1", "r", "a"),
				edge("e2", "r", "b"),
				edge("e3", "a", "c"),
			),
			candidate: edge("new", "b", "c"),
			want:      false,
		},
		{
			name: "parallel edge between same pair",
			existing: edgeSet(
				edge("e1", "a", "b"),
			),
			candidate: edge("new", "a", "b"),
			want:      false,
		},
		{
			name: "update excludes its own stored edge",
			// Reversing an existing edge in place must not collide with
			// its old direction.
			existing: edgeSet(
				edge("e1", "a", "b"),
			),
			candidate: edge("e1", "b", "a"),
			want:      false,
		},
		{
			name: "deep chain cycle",
			existing: edgeSet(
				edge("e1", "n0", "n1"),
				edge("e2", "n1", "n2"),
				edge("e3", "n2", "n3"),
				edge("e4", "n3", "n4"),
			),
			candidate: edge("new", "n4", "n0"),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WouldCreateCycle(tt.candidate, tt.existing))
		})
	}
}

func TestWouldCreateCycleLargeChain(t *testing.T) {
	// A long chain exercises the explicit stack; recursion would be at
	// risk of stack growth here.
	const n = 50000
	edges := make(map[string]*types.Ownership, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("e%d", i)
		edges[id] = edge(id, fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", i+1))
	}

	assert.True(t, WouldCreateCycle(edge("new", fmt.Sprintf("n%d", n), "n0"), edges))
	assert.False(t, WouldCreateCycle(edge("new", "n0", fmt.Sprintf("n%d", n)), edges))
}
