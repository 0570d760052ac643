package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sprintcoach/config"
	"sprintcoach/internal/api"
	"sprintcoach/internal/app"
	"sprintcoach/pkg/logger"
	"sprintcoach/pkg/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger("sprintcoach-api", cfg.Log.Level)
	defer log.Sync()

	log.Info("Starting sprintcoach api...",
		zap.String("env", cfg.Env),
		zap.String("db_host", cfg.DB.Host),
		zap.String("port", cfg.Server.Port),
	)

	shutdownOtel, err := otel.Init(otel.Config{
		ServiceName: "sprintcoach-api",
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
	log.Info("Database and Redis connections established")

	if err := api.InitValidators(); err != nil {
		log.Fatal("Failed to init validators", zap.Error(err))
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	c := app.NewContainer(cfg, infra, log)
	h := api.NewHandler(api.Services{
		Auth:      c.Auth,
		Calendar:  c.Calendar,
		Dashboard: c.Dashboard,
		Tracker:   c.Tracker,
		Sales:     c.Sales,
		Stories:   c.Stories,
		Prompts:   c.Prompts,
		Events:    c.Events,
		Reports:   c.Reports,
		Export:    c.Export,
		Outbox:    c.OutboxSvc,
	}, log)

	router := api.NewRouter(h, api.RouterConfig{
		JWTSecret:      cfg.JWT.Secret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Ready: map[string]api.Pinger{
			"db": c.Store,
			"redis": api.PingFunc(func(ctx context.Context) error {
				return infra.Redis.Ping(ctx).Err()
			}),
		},
	}, log)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down sprintcoach api gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("sprintcoach api shutdown complete")
}
