package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintcoach/internal/model"
)

func fullDay(d model.Date) model.DayStats {
	return model.DayStats{Date: d, ContentCount: 1, DeepWorkMin: 120, SocialReps: 10, WorkoutCount: 1, SleepLogged: true}
}

func TestDashboardScoresTodayAndCountsStreak(t *testing.T) {
	w := newWorld()
	today := model.NewDate(2024, 6, 6)
	w.days.stats = []model.DayStats{
		fullDay(today.AddDays(-3)),
		fullDay(today.AddDays(-2)),
		fullDay(today.AddDays(-1)),
		{Date: today, ContentCount: 1, DeepWorkMin: 60},
	}
	w.habits.habits = []model.Habit{
		{ID: 1, Name: "Read", IsActive: true},
		{ID: 2, Name: "Old", IsActive: false},
	}
	svc := NewDashboardService(w.stores(), w.cal, w.cache, 70, 30, w.logger)

	d, err := svc.Get(context.Background(), w.userID, model.Date{})
	require.NoError(t, err)

	assert.Equal(t, today, d.Date)
	assert.Equal(t, 45, d.Score)
	assert.Equal(t, 3, d.Streak, "today is below threshold so the run ending yesterday counts")
	assert.Len(t, d.Habits, 1)
	assert.Equal(t, model.DefaultMotivationalPrompt, d.Prompt)
	assert.Equal(t, 14*60+30, d.MinutesLeft)
	assert.Equal(t, "Australia/Brisbane", w.days.lastTZ)
}

func TestDashboardUsesOwnPromptAndCache(t *testing.T) {
	w := newWorld()
	w.prompts.top = &model.Prompt{Kind: model.PromptKindMotivational, Text: "mine", UserID: &w.userID}
	svc := NewDashboardService(w.stores(), w.cal, w.cache, 0, 0, w.logger)
	ctx := context.Background()

	first, err := svc.Get(ctx, w.userID, model.Date{})
	require.NoError(t, err)
	assert.Equal(t, "mine", first.Prompt)
	assert.Equal(t, 70, first.StreakThreshold)

	w.prompts.top = nil
	second, err := svc.Get(ctx, w.userID, model.Date{})
	require.NoError(t, err)
	assert.Equal(t, "mine", second.Prompt, "served from cache")

	w.cache.Invalidate(ctx, w.userID)
	third, err := svc.Get(ctx, w.userID, model.Date{})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultMotivationalPrompt, third.Prompt)
}

func TestDashboardPastDateHasNoTimeLeft(t *testing.T) {
	w := newWorld()
	past := model.NewDate(2024, 5, 1)
	w.days.stats = []model.DayStats{fullDay(past)}
	svc := NewDashboardService(w.stores(), w.cal, nil, 70, 30, w.logger)

	d, err := svc.Get(context.Background(), w.userID, past)
	require.NoError(t, err)
	assert.Equal(t, 100, d.Score)
	assert.Equal(t, 1, d.Streak)
	assert.Zero(t, d.MinutesLeft)
}
