package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "sprintcoach/contracts/mq"
	"sprintcoach/pkg/mq"
	"sprintcoach/pkg/util"
)

type memDeduper struct {
	seen     map[string]bool
	released []string
}

func (d *memDeduper) AcquireOnce(_ context.Context, handler, eventID string) bool {
	key := handler + ":" + eventID
	if d.seen[key] {
		return false
	}
	d.seen[key] = true
	return true
}

func (d *memDeduper) Release(_ context.Context, handler, eventID string) {
	key := handler + ":" + eventID
	delete(d.seen, key)
	d.released = append(d.released, key)
}

type stubRecorder struct {
	calls int
	err   error
}

func (r *stubRecorder) Record(context.Context, mq.Envelope) (bool, error) {
	r.calls++
	return r.err == nil, r.err
}

func message(t *testing.T, routingKey string, payload any) mq.Message {
	t.Helper()
	env, err := mq.NewEnvelope(routingKey, uuid.NewString(), "", payload)
	require.NoError(t, err)
	return mq.Message{Envelope: env, RoutingKey: routingKey}
}

func TestEventLogHandlerSkipsDuplicates(t *testing.T) {
	dedup := &memDeduper{seen: map[string]bool{}}
	rec := &stubRecorder{}
	h := NewEventLogHandler(rec, dedup, zap.NewNop())
	msg := message(t, mqcontracts.RoutingActivityLogged, mqcontracts.ActivityLoggedPayload{Kind: "content", Date: "2024-06-06"})

	require.NoError(t, h.Handle(context.Background(), msg))
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Equal(t, 1, rec.calls)
}

func TestEventLogHandlerReleasesOnFailure(t *testing.T) {
	dedup := &memDeduper{seen: map[string]bool{}}
	rec := &stubRecorder{err: errors.New("connection refused")}
	h := NewEventLogHandler(rec, dedup, zap.NewNop())
	msg := message(t, mqcontracts.RoutingDealRecorded, mqcontracts.DealRecordedPayload{DealID: 1})

	err := h.Handle(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, []string{"event_log:" + msg.ID}, dedup.released)

	rec.err = nil
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Equal(t, 2, rec.calls)
}

type stubSeeder struct {
	users []uuid.UUID
	err   error
}

func (s *stubSeeder) SeedDefaultHabits(_ context.Context, userID uuid.UUID) (int, error) {
	s.users = append(s.users, userID)
	return 5, s.err
}

func TestUserRegisteredHandlerSeedsHabits(t *testing.T) {
	seeder := &stubSeeder{}
	h := NewUserRegisteredHandler(seeder, zap.NewNop())
	userID := uuid.New()

	msg := message(t, mqcontracts.RoutingUserRegistered, mqcontracts.UserRegisteredPayload{UserID: userID, Email: "a@b.c"})
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Equal(t, []uuid.UUID{userID}, seeder.users)
}

func TestUserRegisteredHandlerRejectsBadPayload(t *testing.T) {
	h := NewUserRegisteredHandler(&stubSeeder{}, zap.NewNop())

	msg := message(t, mqcontracts.RoutingUserRegistered, map[string]any{})
	retryable, kind := util.IsRetryableError(h.Handle(context.Background(), msg))
	assert.False(t, retryable)
	assert.Equal(t, "permanent", kind)

	msg.Data = json.RawMessage(`"oops"`)
	retryable, _ = util.IsRetryableError(h.Handle(context.Background(), msg))
	assert.False(t, retryable)
}
