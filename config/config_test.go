package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/deskbook/booking"
	"github.com/warp/deskbook/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, booking.DefaultTotalDesks, cfg.Booking.TotalDesks)
	assert.Equal(t, booking.DefaultAuditLimit, cfg.Booking.AuditLimit)
	assert.Equal(t, booking.DefaultTimezone, cfg.Booking.Timezone)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Cutoff().IsZero(), "cutoff disabled by default")
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, booking.DefaultTotalDesks, cfg.Booking.TotalDesks)
}

func TestLoad_TOMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[booking]
total_desks = 12
closure_cutoff = "2026-02-04"
timezone = "America/New_York"

[server]
port = 9090
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Booking.TotalDesks)
	assert.Equal(t, booking.NewDateKey(2026, time.February, 4), cfg.Cutoff())
	assert.Equal(t, "America/New_York", cfg.Booking.Timezone)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Untouched sections keep their defaults.
	assert.Equal(t, booking.DefaultAuditLimit, cfg.Booking.AuditLimit)
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := writeConfig(t, `[booking`)

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := writeConfig(t, `
[booking]
total_desks = 12
`)
	t.Setenv("DESKBOOK_TOTAL_DESKS", "7")
	t.Setenv("DESKBOOK_PORT", "3000")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Booking.TotalDesks)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoad_EnvCanClearCutoff(t *testing.T) {
	path := writeConfig(t, `
[booking]
closure_cutoff = "2026-02-04"
`)
	t.Setenv("DESKBOOK_CLOSURE_CUTOFF", "")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Cutoff().IsZero())
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"zero desks", "[booking]\ntotal_desks = 0\n"},
		{"negative audit limit", "[booking]\naudit_limit = -1\n"},
		{"bad cutoff", "[booking]\nclosure_cutoff = \"February 4th\"\n"},
		{"bad fixed date", "[calendar]\nfixed = [\"2026-2-3\"]\n"},
		{"port out of range", "[server]\nport = 70000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.toml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("DESKBOOK_TOTAL_DESKS", "many")

	_, err := config.Load("")
	assert.Error(t, err)
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

func TestWindow_FixedOverride(t *testing.T) {
	path := writeConfig(t, `
[calendar]
fixed = ["2026-02-02", "2026-02-03"]
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	window := cfg.Window()
	dates := window.Window(time.Now(), 0, 5)
	assert.Equal(t, []booking.DateKey{"2026-02-02", "2026-02-03"}, dates,
		"frozen window ignores the clock and the requested count")
}

func TestWindow_DefaultWeekday(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	// Wednesday 2026-02-04 resolves to its own Monday-Friday week.
	day := time.Date(2026, time.February, 4, 12, 0, 0, 0, time.UTC)
	dates := cfg.Window().Window(day, 0, 5)
	require.Len(t, dates, 5)
	assert.Equal(t, booking.DateKey("2026-02-02"), dates[0])
	assert.Equal(t, booking.DateKey("2026-02-06"), dates[4])
}
