/*
Package config loads process configuration.

PURPOSE:
  One place for everything tunable: desk capacity, closure cutoff,
  audit retrieval limit, reference timezone, HTTP server settings, and
  the optional frozen calendar window for wind-down mode.

SOURCES:
  1. config.toml (path given by flag), parsed with BurntSushi/toml
  2. Environment variables override individual values; a local .env
     file is loaded first via godotenv when present

ENVIRONMENT OVERRIDES:
  DESKBOOK_TOTAL_DESKS      positive integer
  DESKBOOK_CLOSURE_CUTOFF   YYYY-MM-DD
  DESKBOOK_AUDIT_LIMIT      positive integer
  DESKBOOK_TIMEZONE         IANA zone name
  DESKBOOK_PORT             HTTP port
*/
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/warp/deskbook/booking"
)

// Config is the full process configuration.
type Config struct {
	Booking  BookingConfig  `toml:"booking"`
	Server   ServerConfig   `toml:"server"`
	Calendar CalendarConfig `toml:"calendar"`
}

// BookingConfig covers the engine rules.
type BookingConfig struct {
	// TotalDesks is the per-date capacity.
	TotalDesks int `toml:"total_desks"`
	// ClosureCutoff (YYYY-MM-DD) is the last bookable date. Empty
	// disables the cutoff.
	ClosureCutoff string `toml:"closure_cutoff"`
	// AuditLimit caps audit retrievals with no explicit limit.
	AuditLimit int `toml:"audit_limit"`
	// Timezone resolves "today" for the calendar window.
	Timezone string `toml:"timezone"`
}

// ServerConfig covers the HTTP server.
type ServerConfig struct {
	Port            int `toml:"port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// CalendarConfig optionally freezes the bookable window. When Fixed is
// non-empty the weekday generator is replaced by a constant list.
type CalendarConfig struct {
	Fixed []string `toml:"fixed"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Booking: BookingConfig{
			TotalDesks: booking.DefaultTotalDesks,
			AuditLimit: booking.DefaultAuditLimit,
			Timezone:   booking.DefaultTimezone,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
	}
}

// Load reads the TOML file at path over the defaults, then applies
// environment overrides. A missing file is not an error; a malformed
// one is.
func Load(path string) (Config, error) {
	// Side effect only: hydrates os.Environ from a local .env if any.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DESKBOOK_TOTAL_DESKS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DESKBOOK_TOTAL_DESKS: %w", err)
		}
		c.Booking.TotalDesks = n
	}
	if v, ok := os.LookupEnv("DESKBOOK_CLOSURE_CUTOFF"); ok {
		c.Booking.ClosureCutoff = v
	}
	if v := os.Getenv("DESKBOOK_AUDIT_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DESKBOOK_AUDIT_LIMIT: %w", err)
		}
		c.Booking.AuditLimit = n
	}
	if v := os.Getenv("DESKBOOK_TIMEZONE"); v != "" {
		c.Booking.Timezone = v
	}
	if v := os.Getenv("DESKBOOK_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DESKBOOK_PORT: %w", err)
		}
		c.Server.Port = n
	}
	return nil
}

func (c *Config) validate() error {
	if c.Booking.TotalDesks <= 0 {
		return fmt.Errorf("total_desks must be positive, got %d", c.Booking.TotalDesks)
	}
	if c.Booking.AuditLimit <= 0 {
		return fmt.Errorf("audit_limit must be positive, got %d", c.Booking.AuditLimit)
	}
	if c.Booking.ClosureCutoff != "" {
		if _, err := booking.ParseDateKey(c.Booking.ClosureCutoff); err != nil {
			return fmt.Errorf("closure_cutoff: %w", err)
		}
	}
	for _, d := range c.Calendar.Fixed {
		if _, err := booking.ParseDateKey(d); err != nil {
			return fmt.Errorf("calendar.fixed: %w", err)
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	return nil
}

// Cutoff returns the closure cutoff as a DateKey, zero when disabled.
func (c Config) Cutoff() booking.DateKey {
	if c.Booking.ClosureCutoff == "" {
		return ""
	}
	d, _ := booking.ParseDateKey(c.Booking.ClosureCutoff)
	return d
}

// Window builds the configured calendar generator: the frozen list
// when calendar.fixed is set, otherwise the weekday window in the
// configured timezone.
func (c Config) Window() booking.WindowGenerator {
	if len(c.Calendar.Fixed) > 0 {
		dates := make([]booking.DateKey, 0, len(c.Calendar.Fixed))
		for _, s := range c.Calendar.Fixed {
			if d, err := booking.ParseDateKey(s); err == nil {
				dates = append(dates, d)
			}
		}
		return booking.NewFixedWindow(dates)
	}
	return booking.NewWeekdayWindow(c.Booking.Timezone)
}
