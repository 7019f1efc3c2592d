/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the desk-booking server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load config.toml plus environment overrides
  3. Initialize SQLite document store
  4. Wire recorder, ledger, roster, calendar window
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides config)
  -db      SQLite database path (default: deskbook.db)
           Use ":memory:" for an in-memory database
  -config  Config file path (default: config.toml)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration sources
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/warp/deskbook/api"
	"github.com/warp/deskbook/booking"
	"github.com/warp/deskbook/config"
	"github.com/warp/deskbook/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "deskbook.db", "SQLite database path")
	configPath := flag.String("config", "config.toml", "Config file path")
	flag.Parse()

	log := hclog.New(&hclog.LoggerOptions{
		Name:  "deskbook",
		Level: hclog.Info,
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Initialize store
	docs, err := sqlite.New(*dbPath)
	if err != nil {
		log.Error("failed to initialize database", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer docs.Close()

	// Wire the engine
	recorder := booking.NewRecorder(docs, cfg.Booking.AuditLimit)
	ledger := booking.NewLedger(docs, recorder, booking.LedgerConfig{
		TotalDesks:    cfg.Booking.TotalDesks,
		ClosureCutoff: cfg.Cutoff(),
	}, log.Named("ledger"))
	roster := booking.NewRoster(docs, ledger, recorder)
	window := cfg.Window()

	handler := api.NewHandler(ledger, roster, recorder, window, log.Named("api"))
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server starting",
			"addr", server.Addr,
			"desks", cfg.Booking.TotalDesks,
			"cutoff", cfg.Booking.ClosureCutoff,
			"timezone", cfg.Booking.Timezone)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
