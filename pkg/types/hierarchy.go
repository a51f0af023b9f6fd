package types

// EntityNode is one entity's computed position in the ownership
// hierarchy.
type EntityNode struct {
	EntityID string `json:"entity_id"`

	// Level is 0 for roots (no owners); otherwise 1 + the maximum level
	// of any direct owner.
	Level int `json:"level"`

	// OwnerIDs lists direct owners, sorted by entity id.
	OwnerIDs []string `json:"owner_ids,omitempty"`

	// ChildIDs lists directly owned entities, sorted by entity id.
	ChildIDs []string `json:"child_ids,omitempty"`
}

// Hierarchy is the leveled layout of the ownership graph.
type Hierarchy struct {
	// Nodes maps entity id to its computed node.
	Nodes map[string]*EntityNode `json:"nodes"`

	// Levels maps entity id to its level; a flattened view of Nodes.
	Levels map[string]int `json:"levels"`

	// Groups maps level to entity ids at that level, sorted by entity id.
	Groups map[int][]string `json:"groups"`
}
