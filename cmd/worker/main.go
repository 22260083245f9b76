// Package main provides the entrypoint for the CareJournal push worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/carejournal/carejournal/internal/config"
	"github.com/carejournal/carejournal/internal/database"
	"github.com/carejournal/carejournal/internal/device"
	"github.com/carejournal/carejournal/internal/metrics"
	"github.com/carejournal/carejournal/internal/provider/resilience"
	"github.com/carejournal/carejournal/internal/push"
	"github.com/carejournal/carejournal/internal/telemetry"
	"github.com/carejournal/carejournal/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "carejournal-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().Str("build_time", BuildTime).Msg("starting CareJournal worker")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.Push.GCPProjectID == "" || cfg.Push.Subscription == "" {
		log.Fatal().Msg("GCP_PROJECT_ID and PUSH_SUBSCRIPTION are required")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTel.Endpoint,
		Enabled:        cfg.OTel.Enabled,
		SampleRatio:    cfg.OTel.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	domainMetrics := metrics.New(metrics.NewRegistry())
	providers := resilience.NewRegistry()

	client, err := push.NewFCMMessagingClient(ctx, cfg.Push.FirebaseCredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize firebase messaging")
	}
	sender := push.NewFCMSender(push.FCMConfig{
		Client: client,
		Guard:  resilience.GuardConfig{Name: "fcm", Registry: providers},
		Logger: log,
	})

	// Unregistered tokens are pruned when the worker shares the API database.
	var devices worker.TokenPruner
	if cfg.Storage == config.StoragePostgres {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		devices = device.NewService(device.NewPostgresRepository(pool))
	}

	handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        cfg.Push.GCPProjectID,
		SubscriptionName: cfg.Push.Subscription,
		Sender:           sender,
		Devices:          devices,
		Metrics:          domainMetrics,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub handler")
	}
	defer func() {
		if err := handler.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close pubsub handler")
		}
	}()

	// Worker also exposes health and metrics endpoints for Cloud Run
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		status := "healthy"
		for _, p := range providers.GetAllHealth() {
			if p.IsUnhealthy() {
				status = "degraded"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":%q,"version":%q}`, status, Version)
	})
	r.Method(http.MethodGet, "/metrics", domainMetrics.Handler())

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start health check server
	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Start receiving; Receive returns when ctx is cancelled.
	go func() {
		if err := handler.Start(ctx); err != nil {
			log.Error().Err(err).Msg("pubsub receive stopped")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
