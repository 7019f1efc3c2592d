/*
store.go - Document store interface

PURPOSE:
  Defines the persistence boundary. The engine only needs an opaque
  key-value-per-document store with read/write/list/delete; the
  concrete technology (SQLite, Postgres, in-memory) lives behind this
  interface.

COLLECTIONS:
  roster:   one singleton document (the sorted employee list)
  bookings: one document per DateKey (the entry's occupant set)
  audit:    append-only records, keys sort by creation time

CONTRACT:
  - SetEntry has full-replace semantics: the stored document becomes
    exactly the given bytes.
  - GetEntry returns ErrNotFound (via errors.Is) for absent keys.
  - ListEntries returns documents in key order; audit IDs are built
    to make key order equal time order.
  - Implementations wrap infrastructure failures in StorageError so
    callers can match ErrStorageUnavailable.

IMPLEMENTATIONS:
  - booking/store/memory.go: In-memory, for tests and dev
  - store/sqlite/sqlite.go:  Production SQLite
*/
package booking

import "context"

// Collection names used by the engine.
const (
	CollectionRoster   = "roster"
	CollectionBookings = "bookings"
	CollectionAudit    = "audit"
)

// RosterKey is the key of the singleton roster document.
const RosterKey = "roster"

// KeyedDocument pairs a document with its key, for list results.
type KeyedDocument struct {
	Key string
	Doc []byte
}

// ListOptions controls ListEntries ordering and bounds.
type ListOptions struct {
	// Descending lists keys in reverse order (newest-first for audit).
	Descending bool
	// Limit caps the number of returned documents. Zero means no cap.
	Limit int
}

// DocumentStore is the opaque persistence collaborator. All methods
// are safe for concurrent use.
type DocumentStore interface {
	// GetEntry returns the document at collection/key, or ErrNotFound.
	GetEntry(ctx context.Context, collection, key string) ([]byte, error)

	// SetEntry writes the document at collection/key, replacing any
	// previous value wholesale.
	SetEntry(ctx context.Context, collection, key string, doc []byte) error

	// ListEntries returns documents in the collection ordered by key.
	ListEntries(ctx context.Context, collection string, opts ListOptions) ([]KeyedDocument, error)

	// DeleteEntry removes the document at collection/key. Deleting an
	// absent key is not an error.
	DeleteEntry(ctx context.Context, collection, key string) error
}
