package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"spendboard/internal/cli"
	apphttp "spendboard/internal/http"
	applog "spendboard/internal/log"
	"spendboard/internal/observability"
	"spendboard/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	observability.Register()

	st := store.New()
	if _, err := st.LoadFile(cfg.SnapshotPath); err != nil {
		// An unreadable snapshot is not fatal for the server: start with an
		// empty dataset and let a later reload pick it up.
		logger.Warn("Failed to load snapshot, serving empty dataset",
			applog.FieldSnapshot, cfg.SnapshotPath,
			applog.FieldError, err)
	} else {
		snap := st.Snapshot()
		logger.Info("Snapshot loaded",
			applog.FieldSnapshot, cfg.SnapshotPath,
			applog.FieldRecords, len(snap.Records),
			applog.FieldGeneration, snap.Generation)
	}

	srv := apphttp.NewServer(":"+cfg.Port, st, logger, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CacheTTL:           cfg.CacheTTL,
		CacheMaxEntries:    cfg.CacheMaxEntries,
		SnapshotPath:       cfg.SnapshotPath,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// SIGHUP re-reads the snapshot in place, same as POST /api/reload.
	go func() {
		for range cli.NotifyReload() {
			if snap, err := st.LoadFile(cfg.SnapshotPath); err != nil {
				logger.Error("Reload failed, previous dataset still in service",
					applog.FieldSnapshot, cfg.SnapshotPath,
					applog.FieldError, err)
			} else {
				logger.Info("Snapshot reloaded",
					applog.FieldSnapshot, cfg.SnapshotPath,
					applog.FieldRecords, len(snap.Records),
					applog.FieldGeneration, snap.Generation)
			}
		}
	}()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("Starting spendboard server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
