/*
errors.go - Centralized error types for the booking engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match with errors.Is / errors.As; structured variants carry
  the context an operator needs to reconcile.

ERROR CATEGORIES:
  1. Validation errors - Business rule rejections (capacity, cutoff,
     duplicate/unknown employee). Expected, typed outcomes.
  2. Store errors - Persistence failures. Propagate as failure of the
     whole operation; a booking is never confirmed on a failed write.
  3. Audit errors - Best-effort; never roll back the mutation they
     describe.

SEE ALSO:
  - ledger.go: Produces validation and cascade errors
  - store.go: StorageError wrapping contract
*/
package booking

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCapacityExceeded is returned when a booking would push an
	// entry past the configured desk count. Retrying cannot succeed
	// until capacity frees up.
	ErrCapacityExceeded = errors.New("no desks available")

	// ErrAlreadyBooked is returned when the employee already holds a
	// desk on that date. Re-booking rejects rather than silently
	// succeeding.
	ErrAlreadyBooked = errors.New("employee already booked on this date")

	// ErrNotBooked is returned when cancelling a booking that does not
	// exist. Same reject-over-noop policy as ErrAlreadyBooked.
	ErrNotBooked = errors.New("employee not booked on this date")

	// ErrDateClosed is returned for bookings strictly after the office
	// closure cutoff. Permanent; not retryable.
	ErrDateClosed = errors.New("date is past the office closure cutoff")

	// ErrDuplicateEmployee is returned when adding a name already on
	// the roster (case-sensitive exact match).
	ErrDuplicateEmployee = errors.New("employee already on roster")

	// ErrUnknownEmployee is returned when the named employee is not on
	// the roster.
	ErrUnknownEmployee = errors.New("employee not on roster")

	// ErrStorageUnavailable is returned when the underlying document
	// store call failed. Safe to retry with backoff at the caller's
	// discretion.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound is returned by DocumentStore.GetEntry for absent keys.
	ErrNotFound = errors.New("document not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// CapacityError reports a rejected booking against a full entry.
type CapacityError struct {
	Date  DateKey
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("no desks available on %s (capacity %d)", e.Date, e.Limit)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// StorageError wraps a failed document store call with enough context
// to locate the document involved.
type StorageError struct {
	Op         string // "get", "set", "list", "delete"
	Collection string
	Key        string
	Err        error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s %s: %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("storage %s %s/%s: %v", e.Op, e.Collection, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return ErrStorageUnavailable }

// PartialCascadeError reports a cascading removal that rewrote some
// date entries and failed on others. FailedDates names exactly the
// entries that still reference the employee so an operator can
// reconcile them.
type PartialCascadeError struct {
	Employee    string
	FailedDates []DateKey
	Errs        []error
}

func (e *PartialCascadeError) Error() string {
	dates := make([]string, len(e.FailedDates))
	for i, d := range e.FailedDates {
		dates[i] = string(d)
	}
	return fmt.Sprintf("cascade removal of %q incomplete: %d date(s) still inconsistent: %s",
		e.Employee, len(e.FailedDates), strings.Join(dates, ", "))
}

func (e *PartialCascadeError) Unwrap() error { return ErrStorageUnavailable }

// AuditWriteError marks a failed audit append. Non-fatal: the mutation
// it describes has already committed and stands.
type AuditWriteError struct {
	Record AuditRecord
	Err    error
}

func (e *AuditWriteError) Error() string {
	return fmt.Sprintf("audit append failed for %s %s: %v", e.Record.Action, e.Record.Employee, e.Err)
}

func (e *AuditWriteError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is a business rule rejection
// caused by the caller's request, not a system fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrAlreadyBooked) ||
		errors.Is(err, ErrNotBooked) ||
		errors.Is(err, ErrDateClosed) ||
		errors.Is(err, ErrDuplicateEmployee) ||
		errors.Is(err, ErrUnknownEmployee)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// IsNotFound returns true if the error indicates a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
