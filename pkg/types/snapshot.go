package types

// SnapshotData is the ledger's persistent state: the three id → record
// maps. Audit entries are persisted separately because they are
// append-only and unbounded.
type SnapshotData struct {
	Entities     map[string]*Entity
	ShareClasses map[string]*ShareClass
	Ownerships   map[string]*Ownership
}

// NewSnapshotData returns empty, non-nil record maps.
func NewSnapshotData() *SnapshotData {
	return &SnapshotData{
		Entities:     make(map[string]*Entity),
		ShareClasses: make(map[string]*ShareClass),
		Ownerships:   make(map[string]*Ownership),
	}
}

// Snapshot is the persistence collaborator. The ledger loads the record
// maps once at startup and saves them synchronously after every committed
// mutation; the medium behind the interface is the backend's concern.
type Snapshot interface {
	// Load reads the persisted record maps. A fresh backend returns
	// empty maps, not an error.
	Load() (*SnapshotData, error)

	// SaveRecords persists the record maps atomically: either every table
	// reflects data, or none does.
	SaveRecords(data *SnapshotData) error

	// AppendAudit durably appends one audit entry.
	AppendAudit(entry *AuditEntry) error

	// QueryAudit returns persisted audit entries matching the filter, in
	// append order.
	QueryAudit(filter AuditFilter) ([]*AuditEntry, error)

	// Close releases backend resources. Idempotent.
	Close() error
}
