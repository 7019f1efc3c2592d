package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/deskbook/booking"
	"github.com/warp/deskbook/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_GetSetDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetEntry(ctx, "bookings", "2026-02-03")
	assert.ErrorIs(t, err, booking.ErrNotFound)

	require.NoError(t, s.SetEntry(ctx, "bookings", "2026-02-03", []byte(`{"occupants":["Alice"]}`)))

	doc, err := s.GetEntry(ctx, "bookings", "2026-02-03")
	require.NoError(t, err)
	assert.JSONEq(t, `{"occupants":["Alice"]}`, string(doc))

	// Upsert replaces wholesale.
	require.NoError(t, s.SetEntry(ctx, "bookings", "2026-02-03", []byte(`{"occupants":[]}`)))
	doc, err = s.GetEntry(ctx, "bookings", "2026-02-03")
	require.NoError(t, err)
	assert.JSONEq(t, `{"occupants":[]}`, string(doc))

	require.NoError(t, s.DeleteEntry(ctx, "bookings", "2026-02-03"))
	_, err = s.GetEntry(ctx, "bookings", "2026-02-03")
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestSQLite_ListEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, k := range []string{"2026-02-04", "2026-02-02", "2026-02-03"} {
		require.NoError(t, s.SetEntry(ctx, "bookings", k, []byte(k)))
	}
	require.NoError(t, s.SetEntry(ctx, "roster", "roster", []byte("r")))

	docs, err := s.ListEntries(ctx, "bookings", booking.ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 3, "collections are isolated")
	assert.Equal(t, "2026-02-02", docs[0].Key)
	assert.Equal(t, "2026-02-04", docs[2].Key)

	docs, err = s.ListEntries(ctx, "bookings", booking.ListOptions{Descending: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "2026-02-04", docs[0].Key)
}

func TestSQLite_BacksTheFullEngine(t *testing.T) {
	// The same scenario the memory store runs, against real SQLite.
	s := newTestStore(t)
	ctx := context.Background()

	recorder := booking.NewRecorder(s, 50)
	ledger := booking.NewLedger(s, recorder, booking.LedgerConfig{TotalDesks: 2}, nil)
	roster := booking.NewRoster(s, ledger, recorder)

	for _, n := range []string{"Alice", "Bob"} {
		_, err := roster.Add(ctx, n, n)
		require.NoError(t, err)
	}

	feb3 := booking.NewDateKey(2026, time.February, 3)
	require.NoError(t, ledger.Book(ctx, feb3, "Alice", "Alice"))
	require.NoError(t, ledger.Book(ctx, feb3, "Bob", "Bob"))
	assert.ErrorIs(t, ledger.Book(ctx, feb3, "Carol", "Carol"), booking.ErrCapacityExceeded)

	names, err := roster.Remove(ctx, "Bob", "admin")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, names)

	occupants, err := ledger.OccupantsOf(ctx, feb3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, occupants)

	records, err := recorder.Query(ctx, "", 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, booking.ActionRemoveEmployee, records[0].Action)
}
