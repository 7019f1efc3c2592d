/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupled from the engine
  types so field naming can evolve without touching the core.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/deskbook/booking"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// DayDTO is one bookable day in calendar and daily views.
type DayDTO struct {
	Date      string   `json:"date"`
	Weekday   string   `json:"weekday"`
	Occupants []string `json:"occupants"`
	Available int      `json:"available"`
	Closed    bool     `json:"closed"`
	// Booked reports whether the acting user holds a desk this day.
	// Omitted when no acting user was supplied.
	Booked *bool `json:"booked,omitempty"`
}

// WeekDTO is the calendar view response.
type WeekDTO struct {
	Offset     int      `json:"offset"`
	TotalDesks int      `json:"total_desks"`
	Days       []DayDTO `json:"days"`
}

// BookRequest names the employee a desk is claimed or released for.
type BookRequest struct {
	Employee string `json:"employee"`
}

// ToggleResponse reports which transition a toggle dispatched to.
type ToggleResponse struct {
	Action string `json:"action"`
	Day    DayDTO `json:"day"`
}

// RosterDTO is the employee management view response.
type RosterDTO struct {
	Employees []string `json:"employees"`
}

// AddEmployeeRequest is the request to add a roster entry.
type AddEmployeeRequest struct {
	Name string `json:"name"`
}

// EmployeeBookingsDTO is the "my bookings" view response.
type EmployeeBookingsDTO struct {
	Employee string   `json:"employee"`
	Dates    []string `json:"dates"`
}

// AuditRecordDTO is one audit trail line.
type AuditRecordDTO struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Date      string `json:"date,omitempty"`
	Employee  string `json:"employee"`
	Actor     string `json:"actor"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toDayDTO(date booking.DateKey, occupants []string, totalDesks int, closed bool, actingUser string) DayDTO {
	if occupants == nil {
		occupants = []string{}
	}
	available := totalDesks - len(occupants)
	if available < 0 {
		available = 0
	}
	dto := DayDTO{
		Date:      date.String(),
		Weekday:   date.Weekday().String(),
		Occupants: occupants,
		Available: available,
		Closed:    closed,
	}
	if actingUser != "" {
		booked := false
		for _, o := range occupants {
			if o == actingUser {
				booked = true
				break
			}
		}
		dto.Booked = &booked
	}
	return dto
}
