package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"sprintcoach/internal/model"
	"sprintcoach/pkg/mq"
	pkgutil "sprintcoach/pkg/util"
)

// EventLogService copies published domain events into the user's event log.
type EventLogService struct {
	events EventStore
}

func NewEventLogService(events EventStore) *EventLogService {
	return &EventLogService{events: events}
}

// Record stores env once per event id and reports whether a row was inserted.
func (s *EventLogService) Record(ctx context.Context, env mq.Envelope) (bool, error) {
	if _, err := uuid.Parse(env.ID); err != nil {
		return false, pkgutil.Permanent(fmt.Errorf("invalid event id %q", env.ID))
	}
	userID, err := uuid.Parse(env.UserID)
	if err != nil {
		return false, pkgutil.Permanent(fmt.Errorf("event %s: invalid user id %q", env.ID, env.UserID))
	}
	var payload map[string]any
	if len(env.Data) > 0 {
		if err := env.Decode(&payload); err != nil {
			return false, pkgutil.Permanent(fmt.Errorf("event %s: decode payload: %w", env.ID, err))
		}
	}
	eventID := env.ID
	return s.events.RecordDomainEvent(ctx, &model.Event{
		UserID:  userID,
		Time:    env.OccurredAt,
		Name:    env.Type,
		Payload: payload,
		EventID: &eventID,
	})
}
