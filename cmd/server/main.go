package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/suhm-sensorthings-bridge/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/suhm-sensorthings-bridge/internal/adapter/kafka"
	"github.com/couchcryptid/suhm-sensorthings-bridge/internal/adapter/suhm"
	"github.com/couchcryptid/suhm-sensorthings-bridge/internal/config"
	"github.com/couchcryptid/suhm-sensorthings-bridge/internal/observability"
	"github.com/couchcryptid/suhm-sensorthings-bridge/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := suhm.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, metrics, logger)

	// Observation publishing is feature-flagged via KAFKA_ENABLED.
	var publisher service.ObservationPublisher
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		publisher = kafkaWriter
		metrics.PublishEnabled.Set(1)
		logger.Info("kafka observation publishing enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka observation publishing disabled")
	}

	svc := service.New(client, publisher, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
