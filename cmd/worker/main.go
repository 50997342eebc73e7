package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.temporal.io/sdk/worker"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/auth"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/cache"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/config"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/database"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/events"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/httpx"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/idempotency"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/telemetry"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/workflows"
	auditApp "github.com/BaselHussain/q4-hackathon-project-phase5/services/audit/application"
	auditPostgres "github.com/BaselHussain/q4-hackathon-project-phase5/services/audit/infrastructure/persistence/postgres"
	recurringApp "github.com/BaselHussain/q4-hackathon-project-phase5/services/recurring/application"
	recurringClient "github.com/BaselHussain/q4-hackathon-project-phase5/services/recurring/client"
	reminderApp "github.com/BaselHussain/q4-hackathon-project-phase5/services/reminder/application"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/reminder/notify"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/reminder/scheduler"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/reminder/state"
	reminderWorkflows "github.com/BaselHussain/q4-hackathon-project-phase5/services/reminder/workflows"
	taskevents "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/events"
)

// Consumer group per logical consumer: audit and recurring both read the
// task-events stream, so each needs its own cursor to see every message.
const (
	auditGroup     = "audit-consumer"
	reminderGroup  = "reminder-consumer"
	recurringGroup = "recurring-consumer"
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

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	temporalClient, err := workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
	if err != nil {
		log.Error("failed to initialize temporal client", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer temporalClient.Close()

	reminderState := state.NewStore(redisClient)

	// Temporal worker: runs reminder workflows and delivery activities.
	w := worker.New(temporalClient.Client, reminderWorkflows.TaskQueue, worker.Options{})
	w.RegisterWorkflow(reminderWorkflows.ReminderWorkflow)
	w.RegisterActivity((&reminderWorkflows.Activities{
		Email: notify.NewEmailNotifier(cfg.SendGridAPIKey, cfg.SendGridFromEmail, log),
		Push:  notify.NewPushNotifier(cfg.FCMServerKey, log),
		State: reminderState,
		Log:   log,
	}).DeliverReminder)
	if err := w.Start(); err != nil {
		log.Error("failed to start temporal worker", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer w.Stop()
	log.Info("temporal worker started", "task_queue", reminderWorkflows.TaskQueue)

	consumers := buildConsumers(cfg, log, pool, redisClient, temporalClient, reminderState)
	if err := registerSubscribers(ctx, eventBus, log, consumers); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	// Health and metrics endpoints so orchestrators can probe the worker.
	healthSrv := httpx.NewServer(cfg.WorkerAddr, healthMux(pool, redisClient, eventBus, metricsHandler))
	go func() {
		log.Info("worker health endpoint listening", "addr", healthSrv.Addr)
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(shutdownCtx)

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

type subscription struct {
	group   string
	topic   string
	handler func(context.Context, *message.Message) error
}

func buildConsumers(
	cfg *config.Config,
	log logger.Logger,
	pool *database.Database,
	redisClient *cache.RedisClient,
	temporalClient *workflows.TemporalClient,
	reminderState *state.Store,
) []subscription {
	audit := auditApp.NewConsumer(auditPostgres.NewAuditRepository(pool), log)

	reminder := reminderApp.NewConsumer(
		scheduler.New(temporalClient),
		reminderState,
		idempotency.NewRedisLedger(redisClient.Client(), "reminder"),
		log,
	)

	tokens := auth.NewTokenManager(cfg.JWTSecret, 15*time.Minute)
	recurring := recurringApp.NewConsumer(
		recurringClient.New(cfg.APIBaseURL, tokens, log),
		idempotency.NewRedisLedger(redisClient.Client(), "recurring"),
		log,
	)

	return []subscription{
		{auditGroup, taskevents.TopicTaskEvents, audit.Handle},
		{reminderGroup, taskevents.TopicReminders, reminder.Handle},
		{recurringGroup, taskevents.TopicTaskEvents, recurring.Handle},
	}
}

// registerSubscribers wires each consumer to its topic under its own group
// and drains the error channels so they never block.
func registerSubscribers(ctx context.Context, bus *events.EventBus, log logger.Logger, subs []subscription) error {
	for _, sub := range subs {
		errCh, err := bus.SubscribeAs(ctx, sub.group, sub.topic, sub.handler)
		if err != nil {
			return err
		}

		go func(group, topic string, errCh <-chan error) {
			for err := range errCh {
				log.ErrorContext(ctx, "subscriber error",
					"group", group, "topic", topic, "error", err)
			}
		}(sub.group, sub.topic, errCh)

		log.Info("event subscriber registered", "group", sub.group, "topic", sub.topic)
	}
	return nil
}

func healthMux(pool *database.Database, redisClient *cache.RedisClient, bus *events.EventBus, metrics http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/health", httpx.HealthHandler(httpx.HealthChecks{
		Database: pool,
		Redis:    redisClient,
		EventBus: bus,
	}))
	mux.Handle("/metrics", metrics)
	return mux
}
