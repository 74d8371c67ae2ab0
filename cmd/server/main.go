/*
main.go - CE Tracker server entry point

PURPOSE:
  Boots the CE Tracker API server. Loads configuration, opens the
  SQLite store, builds the requirement registry, wires the HTTP
  handler, and runs until interrupted.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (defaults, YAML file, CETRACK_* env vars)
  3. Open SQLite store and run migrations
  4. Build the designation registry, with the catalog overlay if set
  5. Wire the API handler, router, and snapshot scheduler
  6. Start the HTTP server

COMMAND-LINE FLAGS:
  -config  Path to YAML config file (default: cetrack.yaml)
  -addr    Listen address, overrides config (e.g. ":3000")
  -db      SQLite database path, overrides config
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the snapshot scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close the database
  5. Exit

EXAMPLES:
  # Run with a config file
  ./server -config=/etc/cetrack/cetrack.yaml

  # Run against a scratch database on another port
  ./server -db=":memory:" -addr=":3000"

ENVIRONMENT:
  CETRACK_* variables override the config file; see config/config.go.
  CETRACK_JWT_SECRET is required.

SEE ALSO:
  - config/config.go: configuration layers and validation
  - api/server.go: router and handler wiring
  - store/sqlite/sqlite.go: database implementation
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

	"github.com/fairhaven/cetrack/api"
	"github.com/fairhaven/cetrack/ce"
	"github.com/fairhaven/cetrack/config"
	"github.com/fairhaven/cetrack/designations"
	"github.com/fairhaven/cetrack/factory"
	"github.com/fairhaven/cetrack/logger"
	"github.com/fairhaven/cetrack/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "cetrack.yaml", "path to YAML config file")
	addr := flag.String("addr", "", "listen address, overrides config")
	dbPath := flag.String("db", "", "SQLite database path, overrides config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cetrack: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	log := logger.New(logger.Config{
		Level:  logger.Level(cfg.Logging.Level),
		Pretty: cfg.Logging.Pretty || cfg.Server.Dev,
	})

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to open database")
	}
	defer store.Close()

	registry, err := buildRegistry(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build designation registry")
	}

	tokens := &api.TokenManager{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.TokenDuration(),
	}

	var mail api.Mailer = &api.LogMailer{Log: log}
	if cfg.Email.Enabled {
		mail = api.NewResendMailer(cfg.Email.APIKey, cfg.Email.From, cfg.Email.NoticeTo)
	}

	// Initialize handler
	handler := api.NewHandler(store, registry, tokens, mail, log)
	handler.BaseURL = cfg.Email.BaseURL
	handler.ResetTTL = cfg.ResetTokenDuration()
	handler.Dev = cfg.Server.Dev

	// Create router
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	scheduler := api.NewSnapshotScheduler(handler.Snaps, log)
	scheduler.Interval = cfg.SnapshotInterval()
	scheduler.Enabled = cfg.Scheduler.Enabled
	scheduler.Start()

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Bool("dev", cfg.Server.Dev).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// buildRegistry returns the built-in designation registry, or the
// built-in catalog overlaid with the JSON file named in config.
func buildRegistry(cfg *config.Config) (*ce.Registry, error) {
	if cfg.Designations.CatalogPath == "" {
		return designations.NewRegistry()
	}
	data, err := os.ReadFile(cfg.Designations.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("read designation catalog: %w", err)
	}
	overrides, err := factory.ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("parse designation catalog: %w", err)
	}
	return ce.NewRegistry(factory.Overlay(designations.Specs(), overrides)...)
}
