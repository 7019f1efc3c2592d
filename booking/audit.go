/*
audit.go - Append-only audit recorder

PURPOSE:
  Records an immutable trace of every mutating action: who booked,
  cancelled, joined, or left, and when. The recorder only ever
  appends; records are never rewritten or deleted by the engine.

ID SCHEME:
  Keys are a zero-padded unix-nano timestamp plus a random UUID
  suffix. Padding makes lexicographic key order equal time order, so
  the store's native key ordering serves newest-first queries; the
  suffix keeps concurrent writers from colliding on the same
  nanosecond.

CONSISTENCY:
  Audit is best-effort observability, not part of the mutation's
  consistency boundary. The ledger appends only after its own write
  is durable, and surfaces append failures on an operator channel
  instead of rolling back the booking.
*/
package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultAuditLimit bounds Query results when the caller passes no
// positive limit.
const DefaultAuditLimit = 50

// Recorder appends and retrieves audit records.
type Recorder struct {
	store DocumentStore
	limit int
	now   func() time.Time

	mu       sync.Mutex
	lastNano int64
}

// NewRecorder builds a recorder over the given store. retrievalLimit
// caps unbounded queries; zero or negative uses DefaultAuditLimit.
func NewRecorder(store DocumentStore, retrievalLimit int) *Recorder {
	if retrievalLimit <= 0 {
		retrievalLimit = DefaultAuditLimit
	}
	return &Recorder{store: store, limit: retrievalLimit, now: time.Now}
}

// Append writes one record. The record's ID and Timestamp are
// assigned here; an ID supplied by the caller is ignored so an
// existing record can never be overwritten.
func (r *Recorder) Append(ctx context.Context, rec AuditRecord) (AuditRecord, error) {
	now := r.now().UTC()
	rec.ID = auditID(r.tick(now))
	rec.Timestamp = now

	doc, err := json.Marshal(rec)
	if err != nil {
		return AuditRecord{}, fmt.Errorf("marshal audit record: %w", err)
	}
	if err := r.store.SetEntry(ctx, CollectionAudit, rec.ID, doc); err != nil {
		return AuditRecord{}, err
	}
	return rec, nil
}

// Query returns records newest first, optionally filtered by action
// kind (empty action matches everything), capped at limit. A zero or
// negative limit falls back to the configured retrieval limit.
func (r *Recorder) Query(ctx context.Context, action Action, limit int) ([]AuditRecord, error) {
	if limit <= 0 {
		limit = r.limit
	}

	// Filtering happens after the list, so only the unfiltered case
	// can push the limit down into the store.
	opts := ListOptions{Descending: true}
	if action == "" {
		opts.Limit = limit
	}

	docs, err := r.store.ListEntries(ctx, CollectionAudit, opts)
	if err != nil {
		return nil, err
	}

	records := make([]AuditRecord, 0, limit)
	for _, kd := range docs {
		var rec AuditRecord
		if err := json.Unmarshal(kd.Doc, &rec); err != nil {
			return nil, fmt.Errorf("corrupt audit record %s: %w", kd.Key, err)
		}
		if action != "" && rec.Action != action {
			continue
		}
		records = append(records, rec)
		if len(records) == limit {
			break
		}
	}
	return records, nil
}

// tick returns the wall-clock nanos, bumped past the previous ID so
// key order stays append order even on coarse clocks.
func (r *Recorder) tick(now time.Time) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	nanos := now.UnixNano()
	if nanos <= r.lastNano {
		nanos = r.lastNano + 1
	}
	r.lastNano = nanos
	return nanos
}

// auditID builds a monotonically-sortable unique key.
func auditID(nanos int64) string {
	return fmt.Sprintf("%020d-%s", nanos, uuid.NewString()[:8])
}
