package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sprintcoach/internal/model"
)

// DefaultHabits mirror the five score components so a new user starts with a usable dashboard.
var DefaultHabits = []model.Habit{
	{Name: "Content", Target: 1, Unit: "post", SortOrder: 0},
	{Name: "Deep work", Target: 120, Unit: "minutes", SortOrder: 1},
	{Name: "Social reps", Target: 10, Unit: "reps", SortOrder: 2},
	{Name: "Workout", Target: 1, Unit: "session", SortOrder: 3},
	{Name: "Sleep", Target: 8, Unit: "hours", SortOrder: 4},
}

type OnboardingService struct {
	habits HabitStore
	cache  DashboardCache
	logger *zap.Logger
}

func NewOnboardingService(habits HabitStore, cache DashboardCache, logger *zap.Logger) *OnboardingService {
	if cache == nil {
		cache = noopCache{}
	}
	return &OnboardingService{habits: habits, cache: cache, logger: logger}
}

// SeedDefaultHabits creates any default habit the user does not have yet. Safe to repeat.
func (s *OnboardingService) SeedDefaultHabits(ctx context.Context, userID uuid.UUID) (int, error) {
	habits := make([]model.Habit, len(DefaultHabits))
	for i, h := range DefaultHabits {
		h.UserID = userID
		h.IsActive = true
		habits[i] = h
	}
	n, err := s.habits.CreateDefaults(ctx, userID, habits)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.cache.Invalidate(ctx, userID)
	}
	s.logger.Info("Default habits seeded", zap.String("user_id", userID.String()), zap.Int("created", n))
	return n, nil
}
