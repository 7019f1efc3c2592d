package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/deskbook/booking"
)

// =============================================================================
// WEEKDAY WINDOW
// =============================================================================

func TestWeekdayWindow_CurrentWeek_FromWednesday(t *testing.T) {
	// GIVEN: Today is Wednesday 2026-02-04
	// WHEN: Window(offset=0, count=5)
	// THEN: That week's Monday through Friday, ascending

	gen := booking.NewWeekdayWindow("UTC")
	wednesday := time.Date(2026, time.February, 4, 12, 0, 0, 0, time.UTC)

	dates := gen.Window(wednesday, 0, 5)

	assert.Equal(t, []booking.DateKey{
		"2026-02-02", // Monday
		"2026-02-03",
		"2026-02-04",
		"2026-02-05",
		"2026-02-06", // Friday
	}, dates)
}

func TestWeekdayWindow_NextWeek(t *testing.T) {
	gen := booking.NewWeekdayWindow("UTC")
	wednesday := time.Date(2026, time.February, 4, 12, 0, 0, 0, time.UTC)

	dates := gen.Window(wednesday, 1, 5)

	assert.Equal(t, []booking.DateKey{
		"2026-02-09",
		"2026-02-10",
		"2026-02-11",
		"2026-02-12",
		"2026-02-13",
	}, dates)
}

func TestWeekdayWindow_PreviousWeek(t *testing.T) {
	gen := booking.NewWeekdayWindow("UTC")
	wednesday := time.Date(2026, time.February, 4, 12, 0, 0, 0, time.UTC)

	dates := gen.Window(wednesday, -1, 5)

	require.Len(t, dates, 5)
	assert.Equal(t, booking.DateKey("2026-01-26"), dates[0])
	assert.Equal(t, booking.DateKey("2026-01-30"), dates[4])
}

func TestWeekdayWindow_SundayAnchorsToFollowingMonday(t *testing.T) {
	// Sunday has no preceding Monday within its own week, so offset 0
	// starts at the NEXT Monday.

	gen := booking.NewWeekdayWindow("UTC")
	sunday := time.Date(2026, time.February, 8, 12, 0, 0, 0, time.UTC)

	dates := gen.Window(sunday, 0, 5)

	assert.Equal(t, booking.DateKey("2026-02-09"), dates[0])
}

func TestWeekdayWindow_SaturdayAnchorsToOwnMonday(t *testing.T) {
	gen := booking.NewWeekdayWindow("UTC")
	saturday := time.Date(2026, time.February, 7, 12, 0, 0, 0, time.UTC)

	dates := gen.Window(saturday, 0, 5)

	assert.Equal(t, booking.DateKey("2026-02-02"), dates[0])
}

func TestWeekdayWindow_CountSpansWeeks_SkipsWeekends(t *testing.T) {
	// count=10 crosses one weekend and still yields exactly 10
	// weekday keys.

	gen := booking.NewWeekdayWindow("UTC")
	wednesday := time.Date(2026, time.February, 4, 12, 0, 0, 0, time.UTC)

	dates := gen.Window(wednesday, 0, 10)

	require.Len(t, dates, 10)
	for _, d := range dates {
		assert.False(t, d.IsWeekend(), "window must contain weekdays only, got %s", d)
	}
	assert.Equal(t, booking.DateKey("2026-02-06"), dates[4])
	assert.Equal(t, booking.DateKey("2026-02-09"), dates[5], "weekend skipped between Friday and Monday")
}

func TestWeekdayWindow_ResolvesTodayInConfiguredZone(t *testing.T) {
	// GIVEN: Saturday 23:30 UTC in July, which is already Sunday in
	//        London (BST, UTC+1)
	// THEN: The window anchors on the FOLLOWING Monday, where a
	//        host-local UTC resolution would anchor a week earlier

	gen := booking.NewWeekdayWindow("Europe/London")
	lateSaturdayUTC := time.Date(2026, time.July, 18, 23, 30, 0, 0, time.UTC)

	dates := gen.Window(lateSaturdayUTC, 0, 5)

	assert.Equal(t, booking.DateKey("2026-07-20"), dates[0])
}

func TestWeekdayWindow_Deterministic(t *testing.T) {
	gen := booking.NewWeekdayWindow("UTC")
	wednesday := time.Date(2026, time.February, 4, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, gen.Window(wednesday, 0, 5), gen.Window(wednesday, 0, 5))
}

func TestWeekdayWindow_ZeroCount(t *testing.T) {
	gen := booking.NewWeekdayWindow("UTC")
	assert.Empty(t, gen.Window(time.Now(), 0, 0))
}

// =============================================================================
// FIXED WINDOW (wind-down override)
// =============================================================================

func TestFixedWindow_IgnoresInputs(t *testing.T) {
	frozen := []booking.DateKey{"2026-02-02", "2026-02-03"}
	gen := booking.NewFixedWindow(frozen)

	assert.Equal(t, frozen, gen.Window(time.Now(), 0, 5))
	assert.Equal(t, frozen, gen.Window(time.Now(), 7, 99))
}

func TestFixedWindow_ReturnsCopy(t *testing.T) {
	gen := booking.NewFixedWindow([]booking.DateKey{"2026-02-02", "2026-02-03"})

	out := gen.Window(time.Now(), 0, 5)
	out[0] = "1999-01-01"

	assert.Equal(t, booking.DateKey("2026-02-02"), gen.Window(time.Now(), 0, 5)[0])
}

// =============================================================================
// DATE KEY
// =============================================================================

func TestParseDateKey(t *testing.T) {
	d, err := booking.ParseDateKey("2026-02-03")
	require.NoError(t, err)
	assert.Equal(t, booking.DateKey("2026-02-03"), d)
	assert.Equal(t, time.Tuesday, d.Weekday())

	_, err = booking.ParseDateKey("03/02/2026")
	assert.Error(t, err)
	_, err = booking.ParseDateKey("2026-02-30")
	assert.Error(t, err)
}

func TestDateKey_Ordering(t *testing.T) {
	// Lexicographic order on the string form is date order; the store
	// layer depends on this.
	a := booking.NewDateKey(2026, time.February, 3)
	b := booking.NewDateKey(2026, time.February, 10)
	c := booking.NewDateKey(2026, time.December, 1)

	assert.True(t, a.Before(b))
	assert.True(t, b.Before(c))
	assert.True(t, c.After(a))
}
