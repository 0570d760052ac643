// Package app wires repositories and services for the sprintcoach binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sprintcoach/config"
	"sprintcoach/internal/repository"
	"sprintcoach/internal/service"
	"sprintcoach/pkg/circuitbreaker"
	"sprintcoach/pkg/db"
	"sprintcoach/pkg/outbox"
	redisclient "sprintcoach/pkg/redis"
	"sprintcoach/pkg/util"
)

// Infra holds the process-wide connections.
type Infra struct {
	Pool  *pgxpool.Pool
	Redis *redis.Client
}

// Connect opens Postgres and, when withRedis is set, Redis.
func Connect(ctx context.Context, cfg *config.Config, withRedis bool, logger *zap.Logger) (*Infra, error) {
	pool, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	infra := &Infra{Pool: pool}
	if !withRedis {
		return infra, nil
	}

	rdb, err := redisclient.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, err
	}
	infra.Redis = rdb
	return infra, nil
}

func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	i.Pool.Close()
}

// Container exposes the repository layer and every application service.
type Container struct {
	Store  *repository.Store
	Outbox *outbox.Repository
	Stores *service.PgStores

	Calendar   *service.Calendar
	Cache      service.DashboardCache
	Auth       *service.AuthService
	Dashboard  *service.DashboardService
	Tracker    *service.TrackerService
	Sales      *service.SalesService
	Stories    *service.StoryService
	Prompts    *service.PromptService
	Events     *service.EventService
	Reports    *service.ReportService
	Export     *service.ExportService
	OutboxSvc  *service.OutboxService
	Onboarding *service.OnboardingService
	EventLog   *service.EventLogService
}

// NewContainer builds services on top of infra. A nil Redis client disables the
// dashboard cache and the login attempt limit.
func NewContainer(cfg *config.Config, infra *Infra, logger *zap.Logger) *Container {
	store := repository.NewStore(infra.Pool)
	obx := outbox.NewRepository(infra.Pool)
	habits := repository.NewHabitRepository(store.DB(), logger)
	leads := repository.NewLeadRepository(store.DB(), logger)
	pg := service.NewPgStores(store, obx, habits, leads)
	stores := pg.Stores()

	var (
		cache    service.DashboardCache
		attempts service.AttemptCounter
	)
	if infra.Redis != nil {
		cache = service.NewRedisDashboardCache(infra.Redis, cfg.Dashboard.CacheTTL, logger)
		attempts = util.NewRetryCounter(infra.Redis, cfg.Auth.LockoutWindow)
	}

	cal := service.NewCalendar(stores.Users, time.Now)

	var agent service.DraftAgent
	if cfg.Draft.AgentURL != "" {
		agent = service.NewHTTPDraftAgent(cfg.Draft.AgentURL, cfg.Draft.Timeout)
	}
	composer := service.NewDraftComposer(agent, circuitbreaker.NewCircuitBreaker(cfg.Draft.CircuitBreaker), logger)

	return &Container{
		Store:  store,
		Outbox: obx,
		Stores: pg,

		Calendar:   cal,
		Cache:      cache,
		Auth:       service.NewAuthService(stores.Users, pg, cache, attempts, cfg.Auth.MaxLoginAttempts, cfg.JWT.Secret, cfg.JWT.TTL, logger),
		Dashboard:  service.NewDashboardService(stores, cal, cache, cfg.Score.StreakThreshold, cfg.Score.LookbackDays, logger),
		Tracker:    service.NewTrackerService(stores, pg, cal, cache, logger),
		Sales:      service.NewSalesService(stores, pg, cal, logger),
		Stories:    service.NewStoryService(stores.Stories, cal, composer),
		Prompts:    service.NewPromptService(stores.Prompts, cache),
		Events:     service.NewEventService(stores.Events, cal),
		Reports:    service.NewReportService(stores, cal),
		Export:     service.NewExportService(stores, cal),
		OutboxSvc:  service.NewOutboxService(obx),
		Onboarding: service.NewOnboardingService(stores.Habits, cache, logger),
		EventLog:   service.NewEventLogService(stores.Events),
	}
}

// NewFollowupScheduler builds the scheduler that announces due lead follow-ups.
func (c *Container) NewFollowupScheduler(cfg *config.Config, logger *zap.Logger) *service.FollowupScheduler {
	return service.NewFollowupScheduler(c.Stores, cfg.Worker.FollowupInterval, cfg.Worker.OutboxBatchSize, logger)
}
