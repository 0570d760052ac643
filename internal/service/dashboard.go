package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sprintcoach/internal/model"
	"sprintcoach/internal/score"
	"sprintcoach/internal/util"
	"sprintcoach/pkg/metrics"
)

type Dashboard struct {
	Date            model.Date       `json:"date"`
	Habits          []model.Habit    `json:"habits"`
	HabitLogs       []model.HabitLog `json:"habit_logs"`
	Stats           model.DayStats   `json:"stats"`
	Score           int              `json:"score"`
	Streak          int              `json:"streak"`
	Prompt          string           `json:"prompt"`
	MinutesLeft     int              `json:"minutes_left"`
	StreakThreshold int              `json:"streak_threshold"`
}

type DashboardService struct {
	stores          Stores
	cal             *Calendar
	cache           DashboardCache
	streakThreshold int
	lookbackDays    int
	logger          *zap.Logger
}

func NewDashboardService(stores Stores, cal *Calendar, cache DashboardCache, streakThreshold, lookbackDays int, logger *zap.Logger) *DashboardService {
	if cache == nil {
		cache = noopCache{}
	}
	if streakThreshold <= 0 {
		streakThreshold = score.DefaultStreakThreshold
	}
	if lookbackDays <= 0 {
		lookbackDays = 366
	}
	return &DashboardService{
		stores:          stores,
		cal:             cal,
		cache:           cache,
		streakThreshold: streakThreshold,
		lookbackDays:    lookbackDays,
		logger:          logger,
	}
}

// Get builds the dashboard for date (zero means today). The streak is counted back from that date.
func (s *DashboardService) Get(ctx context.Context, userID uuid.UUID, date model.Date) (*Dashboard, error) {
	loc, err := s.cal.Location(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.cal.Now()
	today := util.Today(now, loc)
	if date.IsZero() {
		date = today
	}

	if d, ok := s.cache.Get(ctx, userID, date); ok {
		if date.Equal(today) {
			d.MinutesLeft = int(util.TimeLeftInDay(now, loc).Minutes())
		}
		return d, nil
	}

	d := &Dashboard{Date: date, StreakThreshold: s.streakThreshold}
	var stats []model.DayStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hs, err := s.stores.Habits.List(gctx, userID, true)
		d.Habits = hs
		return err
	})
	g.Go(func() error {
		ls, err := s.stores.Habits.ListLogs(gctx, userID, date, date, nil)
		d.HabitLogs = ls
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.stores.Days.Stats(gctx, userID, date.AddDays(-(s.lookbackDays - 1)), date, loc.String())
		return err
	})
	g.Go(func() error {
		d.Prompt = model.DefaultMotivationalPrompt
		p, err := s.stores.Prompts.Top(gctx, userID, model.PromptKindMotivational)
		if errors.Is(translate(err), ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		d.Prompt = p.Text
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, translate(err)
	}

	score.Apply(stats)
	d.Stats = model.DayStats{Date: date}
	if n := len(stats); n > 0 && stats[n-1].Date.Equal(date) {
		d.Stats = stats[n-1]
	}
	d.Score = d.Stats.Score
	d.Streak = score.Streak(score.ScoreMap(stats), date, s.streakThreshold)
	if date.Equal(today) {
		d.MinutesLeft = int(util.TimeLeftInDay(now, loc).Minutes())
		metrics.ObserveDailyScore(d.Score)
	}

	s.cache.Set(ctx, userID, date, d)
	return d, nil
}
