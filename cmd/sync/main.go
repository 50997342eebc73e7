package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/auth"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/config"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/events"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/httpx"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/telemetry"
	syncApp "github.com/BaselHussain/q4-hackathon-project-phase5/services/sync/application"
	syncApi "github.com/BaselHussain/q4-hackathon-project-phase5/services/sync/application/api"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/sync/registry"
	taskevents "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx := context.Background()

	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	reg := registry.New(log)
	consumer := syncApp.NewConsumer(reg, log)

	meter := otel.Meter("sync")
	if _, err := meter.Int64ObservableGauge("sync_connections_open",
		metric.WithDescription("Open WebSocket connections on this instance"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(reg.TotalConnectionCount()))
			return nil
		}),
	); err != nil {
		log.Warn("failed to register connection gauge", "error", err)
	}

	// Connections live in this process, so every instance needs the full
	// task-updates stream. A per-instance consumer group turns the
	// load-balanced topic into a broadcast.
	group := "sync-consumer-" + uuid.NewString()[:8]
	errCh, err := eventBus.SubscribeAs(ctx, group, taskevents.TopicTaskUpdates, consumer.Handle)
	if err != nil {
		log.Error("failed to subscribe to task updates", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	go func() {
		for err := range errCh {
			log.ErrorContext(ctx, "subscriber error",
				"group", group, "topic", taskevents.TopicTaskUpdates, "error", err)
		}
	}()
	log.Info("sync subscriber registered", "group", group, "topic", taskevents.TopicTaskUpdates)

	tokens := auth.NewTokenManager(cfg.JWTSecret, 24*time.Hour)

	r := chi.NewRouter()
	r.Use(logger.Recovery(log), logger.Middleware(log))
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		hctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := eventBus.Ping(hctx); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"connections": reg.TotalConnectionCount(),
		})
	})
	r.Get("/metrics", metricsHandler.ServeHTTP)
	syncApi.SyncRoutes(r, syncApi.NewWSHandler(tokens, reg, log))

	srv := httpx.NewServer(cfg.SyncAddr, r)
	// Long-lived WebSocket connections must outlive the default write window.
	srv.WriteTimeout = 0
	srv.ReadTimeout = 0

	go func() {
		log.Info("sync server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down sync service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
	}
	log.Info("sync service stopped")
}
