// Command dashboardd serves the HFMD analytics backend: it periodically runs
// the load-normalize-aggregate-summarize pipeline against the configured
// dataset and exposes the results to the dashboard frontend over HTTP,
// optionally publishing each refreshed snapshot to Kafka.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleyanazifa/hfmd-analytics-service/internal/adapter/csvsource"
	"github.com/aleyanazifa/hfmd-analytics-service/internal/adapter/httpapi"
	kafkaadapter "github.com/aleyanazifa/hfmd-analytics-service/internal/adapter/kafka"
	"github.com/aleyanazifa/hfmd-analytics-service/internal/config"
	"github.com/aleyanazifa/hfmd-analytics-service/internal/observability"
	"github.com/aleyanazifa/hfmd-analytics-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// The cache is owned here, at the composition root: one entry per source
	// URI, no TTL, invalidated only by restart (or Clear on reconfiguration).
	client := csvsource.NewClient(cfg.FetchTimeout, logger)
	fetcher := csvsource.NewCachedFetcher(client, cfg.SourceCacheSize, metrics)

	// Snapshot publication is feature-flagged via KAFKA_ENABLED.
	var publisher pipeline.SnapshotPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("kafka snapshot publishing enabled", "topic", cfg.KafkaSnapshotTopic)
	} else {
		logger.Info("kafka snapshot publishing disabled")
	}

	p := pipeline.New(fetcher, cfg.DataSourceURL, cfg.RefreshInterval, publisher, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh loop.
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
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
