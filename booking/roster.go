/*
roster.go - Roster store adapter

PURPOSE:
  Loads and saves the ordered set of employee names as a singleton
  document, and owns the add/remove lifecycle. Removal delegates to
  the ledger's cascading sweep before the roster itself shrinks.

ORDERING GUARANTEE:
  Remove runs the ledger cascade FIRST and persists the roster only
  after the cascade fully succeeds. If the process dies in between,
  the worst state is an employee with zero bookings still visible on
  the roster, which a retry cleans up. The reverse (a ghost employee
  holding desks no roster-driven view can see) cannot happen.
*/
package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Roster adapts the singleton roster document and coordinates the
// removal cascade with the ledger.
type Roster struct {
	store  DocumentStore
	ledger *Ledger
	audit  *Recorder
	now    func() time.Time

	// Serializes add/remove so two concurrent adds cannot both read
	// the same roster document and drop one another's name on save.
	mu sync.Mutex
}

// NewRoster builds the adapter. ledger may not be nil: removal
// semantics depend on the cascade.
func NewRoster(store DocumentStore, ledger *Ledger, audit *Recorder) *Roster {
	return &Roster{store: store, ledger: ledger, audit: audit, now: time.Now}
}

// Load returns the employee names in stable sorted order. A missing
// roster document is an empty roster, not an error.
func (r *Roster) Load(ctx context.Context) ([]string, error) {
	doc, err := r.store.GetEntry(ctx, CollectionRoster, RosterKey)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var rd RosterDoc
	if err := json.Unmarshal(doc, &rd); err != nil {
		return nil, fmt.Errorf("corrupt roster document: %w", err)
	}
	sort.Strings(rd.Employees)
	return rd.Employees, nil
}

// Save replaces the stored roster wholesale with the given names,
// sorted and de-duplicated.
func (r *Roster) Save(ctx context.Context, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(ctx, names)
}

// Add inserts a new name, re-sorts, persists, and returns the updated
// roster. Fails with ErrDuplicateEmployee on a case-sensitive exact
// match. Emits an ADD_EMPLOYEE audit record.
func (r *Roster) Add(ctx context.Context, name, actor string) ([]string, error) {
	if name == "" {
		return nil, fmt.Errorf("empty employee name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	names, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		if n == name {
			return nil, fmt.Errorf("add %q: %w", name, ErrDuplicateEmployee)
		}
	}

	names = append(names, name)
	if err := r.saveLocked(ctx, names); err != nil {
		return nil, err
	}

	if r.audit != nil {
		// Best-effort, same as the ledger's post-commit records.
		r.audit.Append(ctx, AuditRecord{
			Action: ActionAddEmployee, Employee: name, Actor: actor,
		})
	}

	sort.Strings(names)
	return names, nil
}

// Remove deletes a name from the roster after cascading the removal
// through every ledger entry. The ledger emits the single
// REMOVE_EMPLOYEE audit record for the sweep. A partial cascade
// leaves the roster untouched and returns PartialCascadeError so the
// caller can retry just the failed dates.
func (r *Roster) Remove(ctx context.Context, name, actor string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	names, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, n := range names {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("remove %q: %w", name, ErrUnknownEmployee)
	}

	if err := r.ledger.RemoveEmployeeEverywhere(ctx, name, actor); err != nil {
		return nil, err
	}

	names = append(names[:idx], names[idx+1:]...)
	if err := r.saveLocked(ctx, names); err != nil {
		return nil, err
	}
	return names, nil
}

func (r *Roster) saveLocked(ctx context.Context, names []string) error {
	unique := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		unique = append(unique, n)
	}
	sort.Strings(unique)

	doc, err := json.Marshal(RosterDoc{Employees: unique, UpdatedAt: r.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal roster: %w", err)
	}
	return r.store.SetEntry(ctx, CollectionRoster, RosterKey, doc)
}
