package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/printerm420/SalmonFlow/internal/adapter/http"
	kafkaadapter "github.com/printerm420/SalmonFlow/internal/adapter/kafka"
	"github.com/printerm420/SalmonFlow/internal/adapter/usgs"
	"github.com/printerm420/SalmonFlow/internal/config"
	"github.com/printerm420/SalmonFlow/internal/domain"
	"github.com/printerm420/SalmonFlow/internal/observability"
	"github.com/printerm420/SalmonFlow/internal/pipeline"
	"github.com/printerm420/SalmonFlow/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize the site directory (feature-flagged via USGS_ENABLED).
	var directory domain.SiteDirectory
	if cfg.USGSEnabled {
		client := usgs.NewClient(cfg.USGSTimeout, metrics, logger)
		directory = usgs.NewCachedDirectory(client, cfg.USGSCacheSize, metrics)
		metrics.USGSEnabled.Set(1)
		logger.Info("usgs site directory enabled", "cache_size", cfg.USGSCacheSize, "timeout", cfg.USGSTimeout)
	} else {
		logger.Info("usgs site directory disabled")
	}

	// Open the daily flow archive. Without STORE_PATH the weekly endpoints
	// serve empty stats and conditions fall back to live lookups only.
	var archive store.Store = store.NopStore{}
	if cfg.StorePath != "" {
		sqlStore, err := store.NewSQLiteStore(cfg.StorePath)
		if err != nil {
			logger.Error("failed to open archive store", "path", cfg.StorePath, "error", err)
			os.Exit(1)
		}
		archive = sqlStore
		logger.Info("archive store opened", "path", cfg.StorePath)
	} else {
		logger.Warn("no STORE_PATH configured, weekly stats disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(directory, cfg.SiteCeiling, cfg.GaugeSweep, logger)
	loader := pipeline.NewMultiLoader(writer, pipeline.NewStoreLoader(archive))

	p := pipeline.New(reader, transformer, loader, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg, p, directory, archive, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ingest pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if err := archive.Close(); err != nil {
		logger.Error("archive store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
