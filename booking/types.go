/*
Package booking provides the core desk-reservation engine.

PURPOSE:
  This package contains the types and algorithms for tracking a fixed
  pool of desks shared by a roster of employees, bookable per calendar
  day. It answers, for any weekday, "who has a desk" and "how many
  remain", and lets a caller claim or release a desk on behalf of an
  employee.

KEY CONCEPTS IN THIS FILE (types.go):
  - DateKey: A calendar day (no time component), the ledger key
  - Entry: The set of employees holding a desk on one DateKey
  - Roster: The sorted set of employee names
  - AuditRecord: Immutable trace of every mutating action

DESIGN PRINCIPLES:
  1. Capacity is enforced at the mutation boundary, never corrected
     after the fact
  2. Audit records are append-only and never part of the consistency
     boundary
  3. The document store is an injected collaborator, not ambient state

SEE ALSO:
  - ledger.go: Booking transitions and capacity enforcement
  - calendar.go: Weekday window generation
  - store.go: Document store interface
*/
package booking

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE KEY - Calendar day identifier (year-month-day, no time component)
// =============================================================================

// DateKey identifies one calendar day, formatted YYYY-MM-DD.
// Generated keys are weekday-only, but the ledger accepts any
// well-formed key.
type DateKey string

const dateKeyLayout = "2006-01-02"

// NewDateKey builds a DateKey from calendar components.
func NewDateKey(year int, month time.Month, day int) DateKey {
	return DateKey(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(dateKeyLayout))
}

// DateKeyOf truncates a time to its calendar day.
func DateKeyOf(t time.Time) DateKey {
	return DateKey(t.Format(dateKeyLayout))
}

// ParseDateKey validates and normalizes a YYYY-MM-DD string.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(dateKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date key %q: %w", s, err)
	}
	return DateKeyOf(t), nil
}

// Time returns the day at midnight UTC. Invalid keys return the zero time.
func (d DateKey) Time() time.Time {
	t, err := time.Parse(dateKeyLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d DateKey) IsZero() bool          { return d == "" }
func (d DateKey) Before(o DateKey) bool { return string(d) < string(o) }
func (d DateKey) After(o DateKey) bool  { return string(d) > string(o) }
func (d DateKey) String() string        { return string(d) }

// Weekday returns the day of week for this key.
func (d DateKey) Weekday() time.Weekday { return d.Time().Weekday() }

// IsWeekend reports whether the key falls on Saturday or Sunday.
func (d DateKey) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// =============================================================================
// ENTRY - Occupants of one DateKey
// =============================================================================

// Entry is the persisted ledger document for one DateKey: the set of
// employees holding a desk that day plus the last-modified timestamp.
// Occupant order carries no meaning.
type Entry struct {
	Date      DateKey   `json:"date"`
	Occupants []string  `json:"occupants"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Has reports whether the employee holds a desk in this entry.
func (e Entry) Has(employee string) bool {
	for _, o := range e.Occupants {
		if o == employee {
			return true
		}
	}
	return false
}

// Count returns the number of occupants.
func (e Entry) Count() int { return len(e.Occupants) }

// without returns the occupant set minus the employee.
func (e Entry) without(employee string) []string {
	out := make([]string, 0, len(e.Occupants))
	for _, o := range e.Occupants {
		if o != employee {
			out = append(out, o)
		}
	}
	return out
}

// =============================================================================
// ROSTER - Sorted set of employee names
// =============================================================================

// RosterDoc is the persisted singleton roster document.
type RosterDoc struct {
	Employees []string  `json:"employees"`
	UpdatedAt time.Time `json:"updated_at"`
}

// =============================================================================
// AUDIT RECORD - Immutable trace of a mutating action
// =============================================================================

// Action identifies the kind of mutation an audit record describes.
type Action string

const (
	ActionBook           Action = "BOOK"
	ActionCancel         Action = "CANCEL"
	ActionAddEmployee    Action = "ADD_EMPLOYEE"
	ActionRemoveEmployee Action = "REMOVE_EMPLOYEE"
)

// ParseAction validates an action string.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionBook, ActionCancel, ActionAddEmployee, ActionRemoveEmployee:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown audit action %q", s)
}

// AuditRecord is one append-only audit entry. Records are never
// mutated or deleted. Date is empty for roster-level actions.
type AuditRecord struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	Date      DateKey   `json:"date,omitempty"`
	Employee  string    `json:"employee"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

// =============================================================================
// SNAPSHOT - Read-only ledger export for offline reporting
// =============================================================================

// Snapshot maps DateKeys to their occupant sets. The stats layer
// consumes snapshots so reports are computable without a live store.
type Snapshot map[DateKey][]string
