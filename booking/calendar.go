/*
calendar.go - Weekday window generation

PURPOSE:
  Produces the ordered sequence of bookable weekday DateKeys for a
  given week offset and count. This is the only place "today" is
  resolved, and it always resolves in a fixed configured timezone so
  behavior is identical across deployment regions.

ANCHORING:
  Offset 0 starts at the Monday of the reference week, found by
  walking back from today. Sunday is the special case: it has no
  preceding Monday inside its own week, so it anchors forward to the
  following Monday (Sunday evening shows next week's grid).

CUTOFF:
  The generator knows nothing about the closure cutoff. Callers apply
  the cutoff as a per-date predicate on top of the window.

WIND-DOWN:
  FixedWindow returns a constant list regardless of inputs. When an
  office is being wound down the generator is swapped for a frozen
  window via configuration, not replaced with a new algorithm.
*/
package booking

import "time"

// DefaultTimezone is the reference zone used to resolve "today" when
// no zone is configured.
const DefaultTimezone = "Europe/London"

// WindowGenerator yields the bookable DateKeys for a week offset and
// count. Implementations are pure: same inputs, same output.
type WindowGenerator interface {
	// Window returns count weekday DateKeys in ascending order.
	// weekOffset 0 is the reference week, 1 the next, -1 the previous.
	Window(today time.Time, weekOffset, count int) []DateKey
}

// =============================================================================
// WEEKDAY WINDOW - Monday-anchored weekday sequence
// =============================================================================

// WeekdayWindow generates Monday-through-Friday DateKeys anchored at
// the Monday of the reference week.
type WeekdayWindow struct {
	loc *time.Location
}

// NewWeekdayWindow builds a generator resolving "today" in the given
// IANA timezone. An empty name falls back to DefaultTimezone; an
// unknown name falls back to UTC rather than failing startup.
func NewWeekdayWindow(timezone string) *WeekdayWindow {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &WeekdayWindow{loc: loc}
}

func (g *WeekdayWindow) Window(today time.Time, weekOffset, count int) []DateKey {
	if count <= 0 {
		return nil
	}

	local := today.In(g.loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

	// Monday of the reference week. time.Weekday numbers Sunday as 0,
	// so the shared arithmetic sends Sunday forward to the next Monday.
	anchor := day.AddDate(0, 0, 1-int(day.Weekday()))
	anchor = anchor.AddDate(0, 0, weekOffset*7)

	keys := make([]DateKey, 0, count)
	for cursor := anchor; len(keys) < count; cursor = cursor.AddDate(0, 0, 1) {
		wd := cursor.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		keys = append(keys, DateKeyOf(cursor))
	}
	return keys
}

// =============================================================================
// FIXED WINDOW - Frozen list for wind-down mode
// =============================================================================

// FixedWindow ignores its inputs and returns a constant sequence.
type FixedWindow struct {
	Dates []DateKey
}

// NewFixedWindow builds a frozen generator over the given keys.
func NewFixedWindow(dates []DateKey) *FixedWindow {
	return &FixedWindow{Dates: dates}
}

func (g *FixedWindow) Window(_ time.Time, _, _ int) []DateKey {
	out := make([]DateKey, len(g.Dates))
	copy(out, g.Dates)
	return out
}
