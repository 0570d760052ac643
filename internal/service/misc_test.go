package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sprintcoach/internal/model"
	"sprintcoach/pkg/mq"
	"sprintcoach/pkg/outbox"
	"sprintcoach/pkg/rbac"
	pkgutil "sprintcoach/pkg/util"
)

func TestCreateGlobalPromptNeedsAdmin(t *testing.T) {
	prompts := &fakePrompts{}
	cache := newFakeCache()
	svc := NewPromptService(prompts, cache)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Create(ctx, userID, rbac.RoleUser, model.PromptInput{Kind: "motivational", Text: "hi", Global: true})
	assert.ErrorIs(t, err, ErrForbidden)

	p, err := svc.Create(ctx, userID, rbac.RoleAdmin, model.PromptInput{Kind: "motivational", Text: "hi", Global: true})
	require.NoError(t, err)
	assert.True(t, p.IsGlobal())
	assert.Equal(t, 1, p.Weight)

	own, err := svc.Create(ctx, userID, rbac.RoleUser, model.PromptInput{Kind: "motivational", Text: "mine", Weight: 4})
	require.NoError(t, err)
	assert.Equal(t, userID, *own.UserID)
	assert.Equal(t, 2, cache.invalidated, "denied create leaves the cache alone")
}

func TestSeedDefaultPromptsIsIdempotent(t *testing.T) {
	svc := NewPromptService(&fakePrompts{}, nil)
	ctx := context.Background()

	n, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultPrompts), n)

	n, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecordEventRejectsDomainEventNames(t *testing.T) {
	w := newWorld()
	svc := NewEventService(w.events, w.cal)
	ctx := context.Background()

	for _, name := range []string{"lead.status_changed", " Deal.Recorded "} {
		_, err := svc.Record(ctx, w.userID, model.EventInput{Name: name, Payload: map[string]any{"to": "Booked", "lead_id": "x"}})
		assert.ErrorIs(t, err, ErrInvalidInput, name)
	}
	assert.Empty(t, w.events.created)

	e, err := svc.Record(ctx, w.userID, model.EventInput{Name: "mood.check", Payload: map[string]any{"mood": 4}})
	require.NoError(t, err)
	assert.Nil(t, e.EventID)
	assert.Len(t, w.events.created, 1)
}

func TestEventLogRecordsOnce(t *testing.T) {
	events := &fakeEvents{}
	svc := NewEventLogService(events)
	userID := uuid.New()
	env, err := mq.NewEnvelope("lead.status_changed", userID.String(), "trace", map[string]any{"lead_id": 3, "to": "Booked"})
	require.NoError(t, err)

	inserted, err := svc.Record(context.Background(), env)
	require.NoError(t, err)
	assert.True(t, inserted)
	inserted, err = svc.Record(context.Background(), env)
	require.NoError(t, err)
	assert.False(t, inserted)

	got := events.recorded[env.ID]
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "Booked", got.Payload["to"])
}

func TestEventLogRejectsBadEnvelopes(t *testing.T) {
	svc := NewEventLogService(&fakeEvents{})
	ctx := context.Background()

	_, err := svc.Record(ctx, mq.Envelope{ID: uuid.NewString(), UserID: "nope"})
	retryable, kind := pkgutil.IsRetryableError(err)
	assert.False(t, retryable)
	assert.Equal(t, "permanent", kind)

	_, err = svc.Record(ctx, mq.Envelope{ID: uuid.NewString(), UserID: uuid.NewString(), Data: json.RawMessage(`[1]`)})
	retryable, _ = pkgutil.IsRetryableError(err)
	assert.False(t, retryable)
}

func TestSeedDefaultHabits(t *testing.T) {
	habits := &fakeHabits{habits: []model.Habit{{ID: 1, Name: "Workout"}}}
	cache := newFakeCache()
	svc := NewOnboardingService(habits, cache, zap.NewNop())

	n, err := svc.SeedDefaultHabits(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, len(DefaultHabits)-1, n)
	assert.Equal(t, 1, cache.invalidated)

	n, err = svc.SeedDefaultHabits(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, cache.invalidated)
}

type fakeOutbox struct {
	requeued []int64
}

func (f *fakeOutbox) Requeue(_ context.Context, id int64) error {
	if id == 404 {
		return outbox.ErrEventNotFound
	}
	f.requeued = append(f.requeued, id)
	return nil
}

func (f *fakeOutbox) RequeueFailed(context.Context) (int64, error) { return 3, nil }

func (f *fakeOutbox) GetFailedEvents(_ context.Context, limit int) ([]*outbox.Event, error) {
	return []*outbox.Event{{ID: int64(limit), CreatedAt: time.Now()}}, nil
}

func TestOutboxServiceMapsNotFound(t *testing.T) {
	store := &fakeOutbox{}
	svc := NewOutboxService(store)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Requeue(ctx, 404), ErrNotFound)
	require.NoError(t, svc.Requeue(ctx, 7))
	assert.Equal(t, []int64{7}, store.requeued)

	failed, err := svc.Failed(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(100), failed[0].ID)
}
