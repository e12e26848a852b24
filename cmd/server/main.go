// Package main is the entry point for the SpaceWheat quantum field server.
// It hosts one or more open-quantum-system environments, advances them on a
// shared tick loop, persists per-tick observables, and serves a read-only
// HTTP/WebSocket API over the fleet.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dudecon/SpaceWheat-sub011/internal/config"
	"github.com/dudecon/SpaceWheat-sub011/internal/content"
	"github.com/dudecon/SpaceWheat-sub011/internal/environment"
	"github.com/dudecon/SpaceWheat-sub011/internal/server"
	"github.com/dudecon/SpaceWheat-sub011/internal/telemetry"
	"github.com/dudecon/SpaceWheat-sub011/pkg/logger"
	"github.com/dudecon/SpaceWheat-sub011/pkg/qmath"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)
	qmath.SetLogger(log)

	log.Info().Msg("Starting SpaceWheat field server")
	log.Info().Str("backend", qmath.DefaultBackend().Name()).Msg("Matrix backend selected")

	// Content registry: external JSON directory when configured, the
	// built-in demo table otherwise.
	var registry *content.Registry
	if cfg.ContentDir != "" {
		registry, err = content.Load(cfg.ContentDir, log)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.ContentDir).Msg("Failed to load content registry")
		}
		log.Info().Int("labels", registry.Len()).Str("dir", cfg.ContentDir).Msg("Content registry loaded")
	} else {
		registry = content.Defaults(log)
		log.Info().Int("labels", registry.Len()).Msg("Using built-in content table")
	}

	// Telemetry storage.
	db, err := telemetry.Open(filepath.Join(cfg.DataDir, "telemetry.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open telemetry database")
	}
	defer db.Close()
	repo := telemetry.NewRepository(db)

	// Environment fleet with the default demo environment.
	manager := environment.NewManager(log, cfg.TickRate, cfg.TickDT, repo)
	env, err := manager.Add(environment.Config{
		Name:      "field",
		Labels:    content.DefaultLabels,
		MixedInit: cfg.MixedInit,
		Seed:      cfg.Seed,
		Log:       log,
	}, registry)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create default environment")
	}
	log.Info().Str("id", env.ID()).Int("qubits", env.NumQubits()).Msg("Default environment ready")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Run(ctx)

	// Snapshot retention pruning.
	retentionJob := telemetry.NewRetentionJob(repo, db, cfg.Retention, log)
	scheduler := cron.New()
	if _, err := scheduler.AddJob(cfg.RetentionCron, retentionJob); err != nil {
		log.Error().Err(err).Str("schedule", cfg.RetentionCron).Msg("Failed to schedule retention job")
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(server.Config{
		Log:     log,
		Manager: manager,
		History: repo,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
