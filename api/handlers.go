/*
handlers.go - HTTP API handlers for the desk-booking system

PURPOSE:
  Exposes the booking engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the ledger,
  roster, audit recorder, and stats layer.

ENDPOINTS:
  Calendar:
    GET    /api/calendar?offset=N          Week view (five weekdays)
    GET    /api/days/{date}                Daily view

  Bookings:
    POST   /api/days/{date}/bookings       Book a desk
    DELETE /api/days/{date}/bookings/{name} Cancel a booking
    POST   /api/days/{date}/toggle         Book-or-cancel combinator
    GET    /api/employees/{name}/bookings  My bookings view

  Employees:
    GET    /api/employees                  List roster
    POST   /api/employees                  Add employee
    DELETE /api/employees/{name}           Remove employee (cascades)

  Reporting:
    GET    /api/dashboard?offset=N&weeks=M Occupancy report
    GET    /api/audit?action=K&limit=N     Audit trail, newest first

ACTING USER:
  The X-Acting-User header names who performs an action (the UI's
  current-user selector). It is trusted at face value; there is no
  authentication. Absent a header, the affected employee acts for
  themselves.

ERROR HANDLING:
  - 400: Malformed input (bad date, empty name)
  - 404: Unknown employee
  - 409: Business rejections (capacity, already booked, not booked,
         date closed, duplicate employee)
  - 503: Storage unavailable, partial cascade

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-hclog"

	"github.com/warp/deskbook/booking"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger *booking.Ledger
	Roster *booking.Roster
	Audit  *booking.Recorder
	Window booking.WindowGenerator
	Log    hclog.Logger

	// now is swappable for deterministic calendar tests.
	now func() time.Time
}

// NewHandler creates a handler wired to the engine components.
func NewHandler(ledger *booking.Ledger, roster *booking.Roster, audit *booking.Recorder, window booking.WindowGenerator, log hclog.Logger) *Handler {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Handler{
		Ledger: ledger,
		Roster: roster,
		Audit:  audit,
		Window: window,
		Log:    log,
		now:    time.Now,
	}
}

// actingUser resolves who performs the action: the header if present,
// otherwise the affected employee.
func actingUser(r *http.Request, fallback string) string {
	if actor := r.Header.Get("X-Acting-User"); actor != "" {
		return actor
	}
	return fallback
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// GetCalendar returns the week view for the given offset.
// GET /api/calendar?offset=N
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid offset", err)
			return
		}
		offset = n
	}

	dates := h.Window.Window(h.now(), offset, 5)
	user := r.Header.Get("X-Acting-User")

	days := make([]DayDTO, 0, len(dates))
	for _, d := range dates {
		occupants, err := h.Ledger.OccupantsOf(r.Context(), d)
		if err != nil {
			h.writeLedgerError(w, "Failed to load day", err)
			return
		}
		days = append(days, toDayDTO(d, occupants, h.Ledger.TotalDesks(), h.Ledger.Closed(d), user))
	}

	writeJSON(w, http.StatusOK, WeekDTO{
		Offset:     offset,
		TotalDesks: h.Ledger.TotalDesks(),
		Days:       days,
	})
}

// GetDay returns the daily view for one date.
// GET /api/days/{date}
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, err := booking.ParseDateKey(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	occupants, err := h.Ledger.OccupantsOf(r.Context(), date)
	if err != nil {
		h.writeLedgerError(w, "Failed to load day", err)
		return
	}
	writeJSON(w, http.StatusOK,
		toDayDTO(date, occupants, h.Ledger.TotalDesks(), h.Ledger.Closed(date), r.Header.Get("X-Acting-User")))
}

// =============================================================================
// BOOKING HANDLERS
// =============================================================================

// BookDesk claims a desk for an employee.
// POST /api/days/{date}/bookings
func (h *Handler) BookDesk(w http.ResponseWriter, r *http.Request) {
	date, req, ok := h.parseBooking(w, r)
	if !ok {
		return
	}

	if err := h.requireOnRoster(w, r, req.Employee); err != nil {
		return
	}
	if err := h.Ledger.Book(r.Context(), date, req.Employee, actingUser(r, req.Employee)); err != nil {
		h.writeLedgerError(w, "Booking rejected", err)
		return
	}
	h.writeDay(w, r, date, http.StatusCreated)
}

// CancelBooking releases an employee's desk.
// DELETE /api/days/{date}/bookings/{name}
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	date, err := booking.ParseDateKey(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	name := chi.URLParam(r, "name")

	if err := h.Ledger.Cancel(r.Context(), date, name, actingUser(r, name)); err != nil {
		h.writeLedgerError(w, "Cancellation rejected", err)
		return
	}
	h.writeDay(w, r, date, http.StatusOK)
}

// ToggleBooking books if free, cancels if held.
// POST /api/days/{date}/toggle
func (h *Handler) ToggleBooking(w http.ResponseWriter, r *http.Request) {
	date, req, ok := h.parseBooking(w, r)
	if !ok {
		return
	}

	if err := h.requireOnRoster(w, r, req.Employee); err != nil {
		return
	}
	action, err := h.Ledger.Toggle(r.Context(), date, req.Employee, actingUser(r, req.Employee))
	if err != nil {
		h.writeLedgerError(w, "Toggle rejected", err)
		return
	}

	occupants, err := h.Ledger.OccupantsOf(r.Context(), date)
	if err != nil {
		h.writeLedgerError(w, "Failed to load day", err)
		return
	}
	writeJSON(w, http.StatusOK, ToggleResponse{
		Action: string(action),
		Day:    toDayDTO(date, occupants, h.Ledger.TotalDesks(), h.Ledger.Closed(date), req.Employee),
	})
}

// GetEmployeeBookings returns every date an employee holds a desk.
// GET /api/employees/{name}/bookings
func (h *Handler) GetEmployeeBookings(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	dates, err := h.Ledger.BookingsOf(r.Context(), name)
	if err != nil {
		h.writeLedgerError(w, "Failed to load bookings", err)
		return
	}
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	writeJSON(w, http.StatusOK, EmployeeBookingsDTO{Employee: name, Dates: out})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns the roster in sorted order.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	names, err := h.Roster.Load(r.Context())
	if err != nil {
		h.writeLedgerError(w, "Failed to load roster", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, RosterDTO{Employees: names})
}

// AddEmployee adds a name to the roster.
// POST /api/employees
func (h *Handler) AddEmployee(w http.ResponseWriter, r *http.Request) {
	var req AddEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Employee name is required", nil)
		return
	}

	names, err := h.Roster.Add(r.Context(), req.Name, actingUser(r, req.Name))
	if err != nil {
		h.writeLedgerError(w, "Failed to add employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, RosterDTO{Employees: names})
}

// RemoveEmployee removes a name from the roster, cascading through
// every ledger entry first.
// DELETE /api/employees/{name}
func (h *Handler) RemoveEmployee(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	names, err := h.Roster.Remove(r.Context(), name, actingUser(r, name))
	if err != nil {
		var cascade *booking.PartialCascadeError
		if errors.As(err, &cascade) {
			// Surface the dates that still need reconciling.
			writeError(w, http.StatusServiceUnavailable, "Removal incomplete, retry to finish", cascade)
			return
		}
		h.writeLedgerError(w, "Failed to remove employee", err)
		return
	}
	writeJSON(w, http.StatusOK, RosterDTO{Employees: names})
}

// =============================================================================
// REPORTING HANDLERS
// =============================================================================

// GetDashboard computes the occupancy report over a window of weeks.
// GET /api/dashboard?offset=N&weeks=M
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	offset, weeks := 0, 1
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid offset", err)
			return
		}
		offset = n
	}
	if v := r.URL.Query().Get("weeks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 52 {
			writeError(w, http.StatusBadRequest, "Invalid weeks (1-52)", err)
			return
		}
		weeks = n
	}

	dates := h.Window.Window(h.now(), offset, weeks*5)
	snap, err := h.Ledger.Snapshot(r.Context(), dates)
	if err != nil {
		h.writeLedgerError(w, "Failed to snapshot ledger", err)
		return
	}
	writeJSON(w, http.StatusOK, booking.BuildReport(snap, dates, h.Ledger.TotalDesks()))
}

// GetAudit returns the audit trail, newest first.
// GET /api/audit?action=BOOK&limit=N
func (h *Handler) GetAudit(w http.ResponseWriter, r *http.Request) {
	var action booking.Action
	if v := r.URL.Query().Get("action"); v != "" {
		a, err := booking.ParseAction(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid action filter", err)
			return
		}
		action = a
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	records, err := h.Audit.Query(r.Context(), action, limit)
	if err != nil {
		h.writeLedgerError(w, "Failed to query audit trail", err)
		return
	}

	dtos := make([]AuditRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = AuditRecordDTO{
			ID:        rec.ID,
			Action:    string(rec.Action),
			Date:      rec.Date.String(),
			Employee:  rec.Employee,
			Actor:     rec.Actor,
			Timestamp: rec.Timestamp.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) parseBooking(w http.ResponseWriter, r *http.Request) (booking.DateKey, BookRequest, bool) {
	date, err := booking.ParseDateKey(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return "", BookRequest{}, false
	}
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return "", BookRequest{}, false
	}
	if req.Employee == "" {
		writeError(w, http.StatusBadRequest, "Employee name is required", nil)
		return "", BookRequest{}, false
	}
	return date, req, true
}

// requireOnRoster rejects bookings for names the roster does not know.
func (h *Handler) requireOnRoster(w http.ResponseWriter, r *http.Request, name string) error {
	names, err := h.Roster.Load(r.Context())
	if err != nil {
		h.writeLedgerError(w, "Failed to load roster", err)
		return err
	}
	for _, n := range names {
		if n == name {
			return nil
		}
	}
	writeError(w, http.StatusNotFound, "Employee not on roster", booking.ErrUnknownEmployee)
	return booking.ErrUnknownEmployee
}

func (h *Handler) writeDay(w http.ResponseWriter, r *http.Request, date booking.DateKey, status int) {
	occupants, err := h.Ledger.OccupantsOf(r.Context(), date)
	if err != nil {
		h.writeLedgerError(w, "Failed to load day", err)
		return
	}
	writeJSON(w, status,
		toDayDTO(date, occupants, h.Ledger.TotalDesks(), h.Ledger.Closed(date), r.Header.Get("X-Acting-User")))
}

// writeLedgerError maps engine errors onto HTTP statuses.
func (h *Handler) writeLedgerError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, booking.ErrUnknownEmployee):
		writeError(w, http.StatusNotFound, message, err)
	case booking.IsClientError(err):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, booking.ErrStorageUnavailable):
		h.Log.Error("storage failure", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Storage unavailable, retry later", err)
	default:
		h.Log.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
