/*
stats.go - Read-side occupancy reporting

PURPOSE:
  Pure computations over a ledger snapshot and a set of DateKeys:
  average and peak daily occupancy, per-employee booking totals, and
  per-day occupancy percentages. Nothing here touches the store, so a
  report is computable offline from an exported snapshot.

ROUNDING:
  One rule everywhere: percentages round to the nearest integer and
  averages to two decimal places, both via decimal.DivRound. No
  float64 in the arithmetic path.
*/
package booking

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DayOccupancy is one day's line in a report.
type DayOccupancy struct {
	Date      DateKey `json:"date"`
	Occupants int     `json:"occupants"`
	// Percent is occupants/TotalDesks*100 rounded to nearest integer.
	Percent int `json:"percent"`
}

// EmployeeTotal counts one employee's bookings across the report window.
type EmployeeTotal struct {
	Name     string `json:"name"`
	Bookings int    `json:"bookings"`
}

// Report aggregates a snapshot over a date window.
type Report struct {
	TotalDesks int            `json:"total_desks"`
	Days       []DayOccupancy `json:"days"`
	// AverageOccupancy is mean occupants per day, two decimal places.
	AverageOccupancy decimal.Decimal `json:"average_occupancy"`
	PeakOccupancy    int             `json:"peak_occupancy"`
	PeakDate         DateKey         `json:"peak_date,omitempty"`
	// EmployeeTotals sorts by bookings descending, ties by name ascending.
	EmployeeTotals []EmployeeTotal `json:"employee_totals"`
}

// BuildReport computes the full report for the given dates, in order.
// Dates absent from the snapshot count as empty days.
func BuildReport(snap Snapshot, dates []DateKey, totalDesks int) Report {
	if totalDesks <= 0 {
		totalDesks = DefaultTotalDesks
	}

	report := Report{
		TotalDesks:       totalDesks,
		Days:             make([]DayOccupancy, 0, len(dates)),
		AverageOccupancy: decimal.Zero,
	}

	total := 0
	counts := make(map[string]int)
	for _, d := range dates {
		occ := len(snap[d])
		total += occ
		report.Days = append(report.Days, DayOccupancy{
			Date:      d,
			Occupants: occ,
			Percent:   OccupancyPercent(occ, totalDesks),
		})
		if occ > report.PeakOccupancy {
			report.PeakOccupancy = occ
			report.PeakDate = d
		}
		for _, name := range snap[d] {
			counts[name]++
		}
	}

	if len(dates) > 0 {
		report.AverageOccupancy = decimal.NewFromInt(int64(total)).
			DivRound(decimal.NewFromInt(int64(len(dates))), 2)
	}

	report.EmployeeTotals = make([]EmployeeTotal, 0, len(counts))
	for name, n := range counts {
		report.EmployeeTotals = append(report.EmployeeTotals, EmployeeTotal{Name: name, Bookings: n})
	}
	sort.Slice(report.EmployeeTotals, func(i, j int) bool {
		a, b := report.EmployeeTotals[i], report.EmployeeTotals[j]
		if a.Bookings != b.Bookings {
			return a.Bookings > b.Bookings
		}
		return a.Name < b.Name
	})

	return report
}

// OccupancyPercent returns occupants/totalDesks*100 rounded to the
// nearest integer.
func OccupancyPercent(occupants, totalDesks int) int {
	if totalDesks <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(occupants) * 100).
		DivRound(decimal.NewFromInt(int64(totalDesks)), 0)
	return int(pct.IntPart())
}
