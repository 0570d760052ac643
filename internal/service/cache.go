package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sprintcoach/internal/model"
	"sprintcoach/pkg/metrics"
)

// DashboardCache stores computed dashboards per user and date.
type DashboardCache interface {
	Get(ctx context.Context, userID uuid.UUID, date model.Date) (*Dashboard, bool)
	Set(ctx context.Context, userID uuid.UUID, date model.Date, d *Dashboard)
	// Invalidate drops every cached dashboard of the user.
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// RedisDashboardCache keys entries by a per-user generation so one INCR invalidates all dates.
type RedisDashboardCache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisDashboardCache(rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *RedisDashboardCache {
	return &RedisDashboardCache{rdb: rdb, ttl: ttl, logger: logger}
}

func generationKey(userID uuid.UUID) string {
	return fmt.Sprintf("dashboard:gen:%s", userID)
}

func dashboardKey(userID uuid.UUID, gen int64, date model.Date) string {
	return fmt.Sprintf("dashboard:%s:%d:%s", userID, gen, date)
}

func (c *RedisDashboardCache) generation(ctx context.Context, userID uuid.UUID) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisDashboardCache) Get(ctx context.Context, userID uuid.UUID, date model.Date) (*Dashboard, bool) {
	gen, err := c.generation(ctx, userID)
	if err != nil {
		c.logger.Warn("dashboard cache generation read failed", zap.Error(err))
		metrics.IncrementDashboardCache("error")
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, dashboardKey(userID, gen, date)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
		metrics.IncrementDashboardCache("miss")
		return nil, false
	}
	var d Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		metrics.IncrementDashboardCache("miss")
		return nil, false
	}
	metrics.IncrementDashboardCache("hit")
	return &d, true
}

func (c *RedisDashboardCache) Set(ctx context.Context, userID uuid.UUID, date model.Date, d *Dashboard) {
	gen, err := c.generation(ctx, userID)
	if err != nil {
		return
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, dashboardKey(userID, gen, date), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
}

func (c *RedisDashboardCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	key := generationKey(userID)
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 30*24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("dashboard cache invalidation failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

type noopCache struct{}

func (noopCache) Get(context.Context, uuid.UUID, model.Date) (*Dashboard, bool) { return nil, false }
func (noopCache) Set(context.Context, uuid.UUID, model.Date, *Dashboard)        {}
func (noopCache) Invalidate(context.Context, uuid.UUID)                         {}
