// Package types defines the record types, validation primitives, events,
// the Snapshot persistence interface, and standard error types for the
// capledger ownership ledger.
//
// Records (Entity, ShareClass, Ownership) carry a Version integer used for
// optimistic concurrency: every committed update increments it, and writers
// must present the version they last read. AuditEntry is the append-only
// change record the ledger writes alongside every committed mutation.
package types
