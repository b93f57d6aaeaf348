package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/infinity-apps/workspace/internal/blob"
	"github.com/infinity-apps/workspace/internal/bus"
	"github.com/infinity-apps/workspace/internal/calendar"
	"github.com/infinity-apps/workspace/internal/config"
	"github.com/infinity-apps/workspace/internal/dashboard"
	"github.com/infinity-apps/workspace/internal/dateutil"
	"github.com/infinity-apps/workspace/internal/health"
	"github.com/infinity-apps/workspace/internal/httpapi"
	"github.com/infinity-apps/workspace/internal/metrics"
	"github.com/infinity-apps/workspace/internal/prefs"
	"github.com/infinity-apps/workspace/internal/project"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Int("http_port", cfg.HTTPPort).
		Str("db_path", cfg.DBPath).
		Msg("starting workspace service")

	m := metrics.New()

	// Durable blob storage; every store persists its whole state here.
	blobs, err := blob.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open blob store")
	}
	defer blobs.Close()

	// Duration label table, optionally overridden from a YAML file.
	durations := dateutil.NewDurationTable()
	if cfg.DurationTablePath != "" {
		durations, err = dateutil.LoadDurationTable(cfg.DurationTablePath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.DurationTablePath).Msg("failed to load duration table")
		}
	}

	stores := httpapi.Stores{
		Calendar:  calendar.NewStore(blobs, durations, m, logger),
		Projects:  project.NewStore(blobs, m, logger),
		Dashboard: dashboard.NewStore(blobs, m, logger),
		Prefs:     prefs.NewStore(blobs, logger),
	}
	stores.Calendar.Load()
	stores.Projects.Load()
	stores.Dashboard.Load()
	stores.Prefs.Load()

	checker := health.NewChecker(logger)
	checker.Register("blobstore", func(ctx context.Context) health.Status {
		if err := blobs.Ping(); err != nil {
			return health.StatusDown
		}
		return health.StatusOK
	})

	signals := bus.New(m, logger)

	server := httpapi.NewServer(httpapi.ServerConfig{
		ListenAddr:     fmt.Sprintf(":%d", cfg.HTTPPort),
		APIKey:         cfg.APIKey,
		CORSOrigins:    cfg.CORSOrigins,
		PinnedLimit:    cfg.PinnedLimit,
		GridVisibleCap: cfg.GridVisibleCap,
		GridCacheSize:  cfg.GridCacheSize,
	}, stores, signals, checker, m, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("workspace service stopped")
}
