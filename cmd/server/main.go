/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Digital Vakeel invoice lifecycle server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment)
  2. Configure structured logging
  3. Initialize SQLite store
  4. Wire notification senders (SES email when configured, log sink otherwise)
  5. Create API handler and router
  6. Start the daily trigger scheduler
  7. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the trigger scheduler
  4. Close database connection
  5. Exit

CONFIGURATION:
  All config via VAKEEL_-prefixed environment variables; see
  config/config.go for the full list and defaults.

EXAMPLES:
  # Run with defaults (vakeel.db, :8080, log-sink notifications)
  ./server

  # Run with SES email delivery
  VAKEEL_AWS_REGION=ap-south-1 VAKEEL_EMAIL_FROM=notices@example.in ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Daily trigger sweep
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rohinth-KR/DigitalVakeel/api"
	"github.com/Rohinth-KR/DigitalVakeel/config"
	"github.com/Rohinth-KR/DigitalVakeel/extract"
	"github.com/Rohinth-KR/DigitalVakeel/notify"
	"github.com/Rohinth-KR/DigitalVakeel/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("loading configuration")
	}

	logger := newLogger(cfg)

	// Store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("initializing database")
	}
	defer store.Close()

	// Notification senders. WhatsApp transport is not wired; those
	// messages always go to the log sink.
	logSink := &notify.LogSender{Logger: logger}
	sender := &notify.Router{Email: logSink, WhatsApp: logSink}
	if cfg.EmailConfigured() {
		ses, err := notify.NewSESSender(context.Background(), cfg.AWSRegion, cfg.EmailFrom, cfg.EmailFromName)
		if err != nil {
			logger.Fatal().Err(err).Msg("initializing SES sender")
		}
		sender.Email = ses
		logger.Info().Str("region", cfg.AWSRegion).Str("from", cfg.EmailFrom).Msg("SES email delivery enabled")
	}

	// Handler and router
	handler := api.NewHandler(store, logger)
	handler.Extractor = extract.NewHTTPExtractor(cfg.ExtractorURL)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	// Daily trigger sweep
	scheduler := api.NewTriggerScheduler(store, sender, logger)
	scheduler.CheckInterval = cfg.SweepInterval
	scheduler.Enabled = cfg.SweepEnabled
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shut down")
	}

	logger.Info().Msg("server stopped")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.LogFormat == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
