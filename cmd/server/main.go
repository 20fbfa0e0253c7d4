package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/music-event-insights/internal/adapter/csvsource"
	"github.com/couchcryptid/music-event-insights/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/music-event-insights/internal/adapter/kafka"
	"github.com/couchcryptid/music-event-insights/internal/config"
	"github.com/couchcryptid/music-event-insights/internal/observability"
	"github.com/couchcryptid/music-event-insights/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source := csvsource.NewSource(cfg.DataPath, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, source, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ds, err := source.Load(ctx)
	if err != nil {
		logger.Error("failed to load dataset", "path", cfg.DataPath, "error", err)
		os.Exit(1)
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Publish summaries once per load (feature-flagged via KAFKA_BROKERS).
	var writer *kafkaadapter.Writer
	if cfg.ExportEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		exporter := pipeline.New(writer, logger, metrics, cfg.BatchSize, cfg.ExportMaxAttempts)
		go func() {
			if _, err := exporter.Export(ctx, ds); err != nil && ctx.Err() == nil {
				logger.Error("summary export error", "error", err)
			}
		}()
	} else {
		logger.Info("summary export disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")
	metrics.DatasetReady.Set(0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
