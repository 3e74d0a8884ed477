package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/storm-data-hail/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/storm-data-hail/internal/adapter/kafka"
	"github.com/couchcryptid/storm-data-hail/internal/config"
	"github.com/couchcryptid/storm-data-hail/internal/hail"
	"github.com/couchcryptid/storm-data-hail/internal/observability"
	"github.com/couchcryptid/storm-data-hail/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	defaults := hail.DefaultOptions()
	defaults.MinRangeKm = cfg.MinRangeKm
	defaults.MaxRangeKm = cfg.MaxRangeKm
	defaults.Method = cfg.MeshMethod
	defaults.CorrectCBand = cfg.CorrectCBand
	defaults.Workers = cfg.Workers

	// Product summary publishing is feature-flagged via KAFKA_ENABLED.
	var publisher pipeline.ProductPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	retriever := pipeline.New(defaults, publisher, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, retriever, retriever, cfg.MaxRequestBytes, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := retriever.Warmup(ctx); err != nil {
		logger.Error("warmup failed", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

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
