package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mqcontracts "sprintcoach/contracts/mq"
	"sprintcoach/internal/model"
	"sprintcoach/internal/repository"
)

func TestCreateContentDefaultsToTodayInProfileZone(t *testing.T) {
	w := newWorld()
	svc := NewTrackerService(w.stores(), w.tx, w.cal, w.cache, w.logger)

	c, err := svc.CreateContent(context.Background(), w.userID, model.ContentInput{Kind: "reel"})
	require.NoError(t, err)

	assert.Equal(t, model.NewDate(2024, 6, 6), c.Date)
	require.Len(t, w.sink.events, 1)
	ev := w.sink.events[0]
	assert.Equal(t, mqcontracts.RoutingActivityLogged, ev.routingKey)
	assert.Equal(t, mqcontracts.ActivityLoggedPayload{Kind: KindContent, Date: "2024-06-06", ID: c.ID}, ev.payload)
	assert.Equal(t, 1, w.cache.invalidated)
}

func TestCreateContentFallsBackToDefaultZoneWithoutProfile(t *testing.T) {
	w := newWorld()
	delete(w.users.profiles, w.userID)
	svc := NewTrackerService(w.stores(), w.tx, w.cal, w.cache, w.logger)

	c, err := svc.CreateContent(context.Background(), w.userID, model.ContentInput{Kind: "post", Date: model.NewDate(2024, 1, 2)})
	require.NoError(t, err)
	assert.Equal(t, model.NewDate(2024, 1, 2), c.Date)
}

func TestLogHabitForeignHabitIsNotFound(t *testing.T) {
	w := newWorld()
	svc := NewTrackerService(w.stores(), w.tx, w.cal, w.cache, w.logger)

	_, err := svc.LogHabit(context.Background(), w.userID, 42, model.Date{}, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, w.sink.events)
	assert.Zero(t, w.cache.invalidated)
}

func TestLogHabitEmitsAndInvalidates(t *testing.T) {
	w := newWorld()
	w.habits.habits = []model.Habit{{ID: 7, UserID: w.userID, Name: "Read", Target: 10, IsActive: true}}
	svc := NewTrackerService(w.stores(), w.tx, w.cal, w.cache, w.logger)

	l, err := svc.LogHabit(context.Background(), w.userID, 7, model.NewDate(2024, 6, 1), 12)
	require.NoError(t, err)
	assert.Equal(t, 12.0, l.Value)
	assert.Equal(t, []string{mqcontracts.RoutingActivityLogged}, w.sink.keys())
	assert.Equal(t, 1, w.cache.invalidated)
}

func TestEmitFailureSkipsInvalidation(t *testing.T) {
	w := newWorld()
	w.sink.err = assert.AnError
	svc := NewTrackerService(w.stores(), w.tx, w.cal, w.cache, w.logger)

	_, err := svc.CreateContent(context.Background(), w.userID, model.ContentInput{Kind: "reel"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, w.cache.invalidated)
}

func TestAddSocialRepsDefaultsToOne(t *testing.T) {
	w := newWorld()
	svc := NewTrackerService(w.stores(), w.tx, w.cal, w.cache, w.logger)
	day := model.NewDate(2024, 6, 3)

	r, err := svc.AddSocialReps(context.Background(), w.userID, model.SocialRepsAddInput{Date: day})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Count)

	three := 3
	r, err = svc.AddSocialReps(context.Background(), w.userID, model.SocialRepsAddInput{Date: day, Count: &three})
	require.NoError(t, err)
	assert.Equal(t, 4, r.Count)
	assert.Len(t, w.sink.events, 2)
	assert.Equal(t, 2, w.cache.invalidated)
}

func TestAddSocialRepsRejectsNonPositiveCount(t *testing.T) {
	w := newWorld()
	svc := NewTrackerService(w.stores(), w.tx, w.cal, w.cache, w.logger)

	zero := 0
	_, err := svc.AddSocialReps(context.Background(), w.userID, model.SocialRepsAddInput{Count: &zero})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, w.sink.events)
	assert.Zero(t, w.cache.invalidated)
}

func TestDayTranslatesStoreErrors(t *testing.T) {
	w := newWorld()
	svc := NewTrackerService(w.stores(), w.tx, w.cal, w.cache, w.logger)
	day := model.NewDate(2024, 6, 6)

	w.days.getErr = fmt.Errorf("get day: %w", repository.ErrConflict)
	_, err := svc.Day(context.Background(), w.userID, day)
	assert.ErrorIs(t, err, ErrConflict)

	w.days.getErr = nil
	w.days.statsErr = fmt.Errorf("day stats: %w", repository.ErrNotFound)
	_, err = svc.Day(context.Background(), w.userID, day)
	assert.ErrorIs(t, err, ErrNotFound)
}
