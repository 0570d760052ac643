package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sprintcoach/config"
	mqcontracts "sprintcoach/contracts/mq"
	"sprintcoach/internal/app"
	"sprintcoach/internal/mqhandler"
	"sprintcoach/pkg/logger"
	"sprintcoach/pkg/mq"
	"sprintcoach/pkg/otel"
	"sprintcoach/pkg/outbox"
	"sprintcoach/pkg/util"
)

const (
	eventLogQueue       = "sprintcoach.event_log.q"
	userRegisteredQueue = "sprintcoach.user_registered.q"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger("sprintcoach-worker", cfg.Log.Level)
	defer log.Sync()

	log.Info("Starting sprintcoach worker...",
		zap.String("env", cfg.Env),
		zap.String("db_host", cfg.DB.Host),
		zap.String("mq_url", cfg.MQ.URL),
	)

	shutdownOtel, err := otel.Init(otel.Config{
		ServiceName: "sprintcoach-worker",
		Environment: cfg.Env,
		Endpoint:    cfg.Otel.Endpoint,
		Enabled:     cfg.Otel.Enabled,
		SampleRatio: cfg.Otel.SampleRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to init OpenTelemetry", zap.Error(err))
	}
	defer shutdownOtel()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := app.Connect(ctx, cfg, true, log)
	if err != nil {
		log.Fatal("Failed to connect dependencies", zap.Error(err))
	}
	defer infra.Close()

	c := app.NewContainer(cfg, infra, log)

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	deduper := util.NewDeduper(infra.Redis, cfg.Worker.DedupTTL, log)
	retries := util.NewRetryCounter(infra.Redis, cfg.Worker.DedupTTL)
	consumerOpts := []mq.ConsumerOption{
		mq.WithRetry(retries, cfg.Worker.ConsumerRetries),
		mq.WithDeadLetter(publisher),
	}

	eventLogHandler := mqhandler.NewEventLogHandler(c.EventLog, deduper, log)
	userRegisteredHandler := mqhandler.NewUserRegisteredHandler(c.Onboarding, log)

	log.Info("Initializing MQ consumer for event log...",
		zap.String("queue", eventLogQueue),
		zap.Strings("routing_keys", mqcontracts.AllRoutingKeys),
	)
	eventLogConsumer, err := mq.NewConsumer(cfg.MQ.URL, eventLogQueue, mqcontracts.AllRoutingKeys, eventLogHandler.Handle, log, consumerOpts...)
	if err != nil {
		log.Fatal("Failed to init event log consumer", zap.Error(err))
	}
	defer eventLogConsumer.Close()

	log.Info("Initializing MQ consumer for user.registered...", zap.String("queue", userRegisteredQueue))
	userConsumer, err := mq.NewConsumer(cfg.MQ.URL, userRegisteredQueue, []string{mqcontracts.RoutingUserRegistered}, userRegisteredHandler.Handle, log, consumerOpts...)
	if err != nil {
		log.Fatal("Failed to init user.registered consumer", zap.Error(err))
	}
	defer userConsumer.Close()

	dispatcher := outbox.NewDispatcher(c.Outbox, publisher, log).
		WithMaxRetries(cfg.Worker.OutboxMaxRetries).
		WithInterval(cfg.Worker.OutboxInterval).
		WithBatchSize(cfg.Worker.OutboxBatchSize)

	followups := c.NewFollowupScheduler(cfg, log)

	gin.SetMode(gin.ReleaseMode)
	ops := &http.Server{
		Addr: cfg.Worker.OpsPort,
		Handler: newOpsRouter(infra.Pool, map[string]connChecker{
			"publisher":          publisher,
			"event_log_consumer": eventLogConsumer,
			"user_consumer":      userConsumer,
		}),
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serveOps(gctx, ops, log) })
	g.Go(func() error { return eventLogConsumer.Run(gctx) })
	g.Go(func() error { return userConsumer.Run(gctx) })
	g.Go(func() error {
		dispatcher.Start(gctx)
		return nil
	})
	g.Go(func() error {
		followups.Start(gctx)
		return nil
	})

	log.Info("sprintcoach worker is fully initialized and running")

	if err := g.Wait(); err != nil {
		log.Error("Worker stopped with error", zap.Error(err))
	}
	log.Info("sprintcoach worker shutdown complete")
}
