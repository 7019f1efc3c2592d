// Package store provides DocumentStore implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/deskbook/booking"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory is a mutex-guarded in-memory DocumentStore. Documents are
// copied on the way in and out so callers cannot alias stored bytes.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string][]byte)}
}

func (m *Memory) GetEntry(_ context.Context, collection, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.collections[collection][key]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, booking.ErrNotFound)
	}
	out := make([]byte, len(doc))
	copy(out, doc)
	return out, nil
}

func (m *Memory) SetEntry(_ context.Context, collection, key string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.collections[collection]
	if !ok {
		coll = make(map[string][]byte)
		m.collections[collection] = coll
	}
	stored := make([]byte, len(doc))
	copy(stored, doc)
	coll[key] = stored
	return nil
}

func (m *Memory) ListEntries(_ context.Context, collection string, opts booking.ListOptions) ([]booking.KeyedDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coll := m.collections[collection]
	keys := make([]string, 0, len(coll))
	for k := range coll {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if opts.Descending {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	if opts.Limit > 0 && len(keys) > opts.Limit {
		keys = keys[:opts.Limit]
	}

	result := make([]booking.KeyedDocument, 0, len(keys))
	for _, k := range keys {
		doc := make([]byte, len(coll[k]))
		copy(doc, coll[k])
		result = append(result, booking.KeyedDocument{Key: k, Doc: doc})
	}
	return result, nil
}

func (m *Memory) DeleteEntry(_ context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if coll, ok := m.collections[collection]; ok {
		delete(coll, key)
	}
	return nil
}

// =============================================================================
// FLAKY STORE - Fault injection wrapper (tests only)
// =============================================================================

// Flaky wraps a DocumentStore and fails writes for keys the test
// marks broken. Used to exercise PartialCascadeFailure and the
// best-effort audit path without a real storage outage.
type Flaky struct {
	booking.DocumentStore

	mu     sync.Mutex
	broken map[string]bool // "collection/key"
}

func NewFlaky(inner booking.DocumentStore) *Flaky {
	return &Flaky{DocumentStore: inner, broken: make(map[string]bool)}
}

// Break makes every SetEntry for collection/key fail until Fix.
func (f *Flaky) Break(collection, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broken[collection+"/"+key] = true
}

// Fix restores writes for collection/key.
func (f *Flaky) Fix(collection, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.broken, collection+"/"+key)
}

// BreakCollection makes every write to the collection fail.
func (f *Flaky) BreakCollection(collection string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broken[collection+"/*"] = true
}

func (f *Flaky) SetEntry(ctx context.Context, collection, key string, doc []byte) error {
	f.mu.Lock()
	down := f.broken[collection+"/"+key] || f.broken[collection+"/*"]
	f.mu.Unlock()
	if down {
		return &booking.StorageError{Op: "set", Collection: collection, Key: key,
			Err: context.DeadlineExceeded}
	}
	return f.DocumentStore.SetEntry(ctx, collection, key, doc)
}
