/*
ledger.go - Booking ledger: transitions, capacity, cascade

PURPOSE:
  The Ledger is the single owner of entry mutation. It decides whether
  a booking is admissible, keeps every entry at or below the desk
  count, and emits an audit record after each successful mutation.

CRITICAL INVARIANTS:
  1. |occupants(date)| <= TotalDesks, enforced at the mutation
     boundary under a per-date lock, never by post-hoc correction
  2. An employee appears at most once per entry
  3. A rejected mutation leaves the entry exactly as it was
  4. No booking past the closure cutoff

CONCURRENCY:
  Each DateKey has its own lock, so the capacity check and the write
  it guards are one serialized step per date. Two sessions racing for
  the last desk cannot both observe "1 free"; one wins, the other gets
  ErrCapacityExceeded. Operations on different dates never contend.

POLICY:
  Re-booking an already-booked slot and cancelling a non-booked slot
  both REJECT (ErrAlreadyBooked / ErrNotBooked) instead of silently
  succeeding. Toggle is the UI-facing combinator and never hits either
  rejection because it dispatches on the current state under the lock.

AUDIT:
  Appended post-commit, only after the entry write is durable, so no
  audit record ever describes a phantom booking. Append failures are
  logged to the operator channel and never roll back the mutation.

SEE ALSO:
  - roster.go: Cascading removal entry point
  - audit.go:  Recorder contract
*/
package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// DefaultTotalDesks matches the office's physical desk count.
const DefaultTotalDesks = 18

// LedgerConfig carries the process-wide booking rules.
type LedgerConfig struct {
	// TotalDesks is the per-date capacity. Zero or negative falls back
	// to DefaultTotalDesks.
	TotalDesks int

	// ClosureCutoff is the last bookable DateKey. Dates strictly after
	// it reject with ErrDateClosed. Zero value disables the cutoff.
	ClosureCutoff DateKey
}

// Ledger owns all entry mutation and exposes the read-side queries.
type Ledger struct {
	store  DocumentStore
	audit  *Recorder
	log    hclog.Logger
	desks  int
	cutoff DateKey
	now    func() time.Time

	mu    sync.Mutex
	locks map[DateKey]*sync.Mutex
}

// NewLedger builds a ledger over the given store and recorder.
func NewLedger(store DocumentStore, audit *Recorder, cfg LedgerConfig, log hclog.Logger) *Ledger {
	if cfg.TotalDesks <= 0 {
		cfg.TotalDesks = DefaultTotalDesks
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Ledger{
		store:  store,
		audit:  audit,
		log:    log,
		desks:  cfg.TotalDesks,
		cutoff: cfg.ClosureCutoff,
		now:    time.Now,
		locks:  make(map[DateKey]*sync.Mutex),
	}
}

// TotalDesks returns the configured per-date capacity.
func (l *Ledger) TotalDesks() int { return l.desks }

// Closed reports whether the date is past the closure cutoff.
func (l *Ledger) Closed(date DateKey) bool {
	return !l.cutoff.IsZero() && date.After(l.cutoff)
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Book claims a desk for employee on date, acting as actor. Fails with
// ErrDateClosed, ErrAlreadyBooked, or ErrCapacityExceeded; on success
// the entry is persisted before a BOOK audit record is appended.
func (l *Ledger) Book(ctx context.Context, date DateKey, employee, actor string) error {
	if err := validateMutation(date, employee); err != nil {
		return err
	}
	unlock := l.lockDate(date)
	defer unlock()
	return l.bookLocked(ctx, date, employee, actor)
}

// Cancel releases employee's desk on date. Fails with ErrNotBooked if
// no such booking exists. Cancellation stays allowed past the cutoff.
func (l *Ledger) Cancel(ctx context.Context, date DateKey, employee, actor string) error {
	if err := validateMutation(date, employee); err != nil {
		return err
	}
	unlock := l.lockDate(date)
	defer unlock()
	return l.cancelLocked(ctx, date, employee, actor)
}

// Toggle cancels if booked, otherwise books. The dispatch happens
// under the date lock so the observed state cannot change between the
// check and the transition.
func (l *Ledger) Toggle(ctx context.Context, date DateKey, employee, actor string) (Action, error) {
	if err := validateMutation(date, employee); err != nil {
		return "", err
	}
	unlock := l.lockDate(date)
	defer unlock()

	entry, err := l.loadEntry(ctx, date)
	if err != nil {
		return "", err
	}
	if entry.Has(employee) {
		return ActionCancel, l.cancelLocked(ctx, date, employee, actor)
	}
	return ActionBook, l.bookLocked(ctx, date, employee, actor)
}

func (l *Ledger) bookLocked(ctx context.Context, date DateKey, employee, actor string) error {
	if l.Closed(date) {
		return fmt.Errorf("book %s on %s: %w", employee, date, ErrDateClosed)
	}

	entry, err := l.loadEntry(ctx, date)
	if err != nil {
		return err
	}
	if entry.Has(employee) {
		return fmt.Errorf("book %s on %s: %w", employee, date, ErrAlreadyBooked)
	}
	if entry.Count() >= l.desks {
		return &CapacityError{Date: date, Limit: l.desks}
	}

	entry.Occupants = append(entry.Occupants, employee)
	entry.UpdatedAt = l.now().UTC()
	if err := l.saveEntry(ctx, entry); err != nil {
		return err
	}

	l.recordAudit(ctx, ActionBook, date, employee, actor)
	return nil
}

func (l *Ledger) cancelLocked(ctx context.Context, date DateKey, employee, actor string) error {
	entry, err := l.loadEntry(ctx, date)
	if err != nil {
		return err
	}
	if !entry.Has(employee) {
		return fmt.Errorf("cancel %s on %s: %w", employee, date, ErrNotBooked)
	}

	entry.Occupants = entry.without(employee)
	entry.UpdatedAt = l.now().UTC()
	if err := l.saveEntry(ctx, entry); err != nil {
		return err
	}

	l.recordAudit(ctx, ActionCancel, date, employee, actor)
	return nil
}

// RemoveEmployeeEverywhere rewrites every entry containing the
// employee to exclude them. One REMOVE_EMPLOYEE audit record is
// appended for the whole sweep, not one per date. A partial failure
// returns PartialCascadeError naming exactly the dates that still
// hold a booking for the employee.
func (l *Ledger) RemoveEmployeeEverywhere(ctx context.Context, employee, actor string) error {
	if employee == "" {
		return fmt.Errorf("remove everywhere: empty employee name")
	}

	docs, err := l.store.ListEntries(ctx, CollectionBookings, ListOptions{})
	if err != nil {
		return err
	}

	var failed []DateKey
	var errs []error
	for _, kd := range docs {
		var entry Entry
		if err := json.Unmarshal(kd.Doc, &entry); err != nil {
			l.log.Warn("skipping corrupt ledger entry during cascade",
				"key", kd.Key, "error", err)
			continue
		}
		if !entry.Has(employee) {
			continue
		}
		if err := l.removeFrom(ctx, entry.Date, employee); err != nil {
			failed = append(failed, entry.Date)
			errs = append(errs, err)
		}
	}

	l.recordAudit(ctx, ActionRemoveEmployee, "", employee, actor)

	if len(failed) > 0 {
		cascadeErr := &PartialCascadeError{Employee: employee, FailedDates: failed, Errs: errs}
		l.log.Error("cascade removal incomplete", "employee", employee,
			"failed_dates", len(failed), "error", cascadeErr)
		return cascadeErr
	}
	return nil
}

// removeFrom re-reads the entry under its date lock before rewriting,
// so a cancel racing the cascade cannot resurrect the employee.
func (l *Ledger) removeFrom(ctx context.Context, date DateKey, employee string) error {
	unlock := l.lockDate(date)
	defer unlock()

	entry, err := l.loadEntry(ctx, date)
	if err != nil {
		return err
	}
	if !entry.Has(employee) {
		return nil
	}
	entry.Occupants = entry.without(employee)
	entry.UpdatedAt = l.now().UTC()
	return l.saveEntry(ctx, entry)
}

// =============================================================================
// QUERIES - Read-only, no audit emission
// =============================================================================

// OccupantsOf returns the employees booked on date.
func (l *Ledger) OccupantsOf(ctx context.Context, date DateKey) ([]string, error) {
	entry, err := l.loadEntry(ctx, date)
	if err != nil {
		return nil, err
	}
	return entry.Occupants, nil
}

// AvailableDesks returns TotalDesks minus the occupant count, floored
// at zero for entries written under a larger historical capacity.
func (l *Ledger) AvailableDesks(ctx context.Context, date DateKey) (int, error) {
	entry, err := l.loadEntry(ctx, date)
	if err != nil {
		return 0, err
	}
	free := l.desks - entry.Count()
	if free < 0 {
		free = 0
	}
	return free, nil
}

// IsBooked reports whether employee holds a desk on date.
func (l *Ledger) IsBooked(ctx context.Context, date DateKey, employee string) (bool, error) {
	entry, err := l.loadEntry(ctx, date)
	if err != nil {
		return false, err
	}
	return entry.Has(employee), nil
}

// BookingsOf returns every DateKey where the employee holds a desk,
// ascending by date.
func (l *Ledger) BookingsOf(ctx context.Context, employee string) ([]DateKey, error) {
	docs, err := l.store.ListEntries(ctx, CollectionBookings, ListOptions{})
	if err != nil {
		return nil, err
	}

	var dates []DateKey
	for _, kd := range docs {
		var entry Entry
		if err := json.Unmarshal(kd.Doc, &entry); err != nil {
			continue
		}
		if entry.Has(employee) {
			dates = append(dates, entry.Date)
		}
	}
	// Entry keys are the DateKeys themselves, so store key order is
	// already ascending date order.
	return dates, nil
}

// Snapshot exports the occupant sets for the given dates, for the
// offline stats layer.
func (l *Ledger) Snapshot(ctx context.Context, dates []DateKey) (Snapshot, error) {
	snap := make(Snapshot, len(dates))
	for _, d := range dates {
		entry, err := l.loadEntry(ctx, d)
		if err != nil {
			return nil, err
		}
		snap[d] = entry.Occupants
	}
	return snap, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

func (l *Ledger) loadEntry(ctx context.Context, date DateKey) (Entry, error) {
	doc, err := l.store.GetEntry(ctx, CollectionBookings, string(date))
	if err != nil {
		if IsNotFound(err) {
			return Entry{Date: date}, nil
		}
		return Entry{}, err
	}
	var entry Entry
	if err := json.Unmarshal(doc, &entry); err != nil {
		return Entry{}, fmt.Errorf("corrupt ledger entry %s: %w", date, err)
	}
	entry.Date = date
	return entry, nil
}

func (l *Ledger) saveEntry(ctx context.Context, entry Entry) error {
	doc, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal ledger entry %s: %w", entry.Date, err)
	}
	return l.store.SetEntry(ctx, CollectionBookings, string(entry.Date), doc)
}

// recordAudit appends post-commit. Best-effort: failures go to the
// operator log, never back to the caller.
func (l *Ledger) recordAudit(ctx context.Context, action Action, date DateKey, employee, actor string) {
	if l.audit == nil {
		return
	}
	rec := AuditRecord{Action: action, Date: date, Employee: employee, Actor: actor}
	if _, err := l.audit.Append(ctx, rec); err != nil {
		werr := &AuditWriteError{Record: rec, Err: err}
		l.log.Warn("audit append failed", "action", string(action),
			"employee", employee, "error", werr)
	}
}

// lockDate serializes mutations for one DateKey. Locks are retained
// for the process lifetime; the map grows with the set of dates
// touched, which the weekday horizon keeps small.
func (l *Ledger) lockDate(date DateKey) func() {
	l.mu.Lock()
	lock, ok := l.locks[date]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[date] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func validateMutation(date DateKey, employee string) error {
	if _, err := ParseDateKey(string(date)); err != nil {
		return err
	}
	if employee == "" {
		return fmt.Errorf("empty employee name")
	}
	return nil
}
