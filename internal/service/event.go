package service

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	mqcontracts "sprintcoach/contracts/mq"
	"sprintcoach/internal/model"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

type EventService struct {
	events EventStore
	cal    *Calendar
}

func NewEventService(events EventStore, cal *Calendar) *EventService {
	return &EventService{events: events, cal: cal}
}

// Recent lists the newest events, optionally only those named name.
func (s *EventService) Recent(ctx context.Context, userID uuid.UUID, name string, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	limit = min(limit, maxEventLimit)
	es, err := s.events.List(ctx, userID, name, limit)
	return es, translate(err)
}

// Record stores a client event. Domain event names are reserved for the worker.
func (s *EventService) Record(ctx context.Context, userID uuid.UUID, in model.EventInput) (*model.Event, error) {
	if slices.Contains(mqcontracts.AllRoutingKeys, strings.ToLower(strings.TrimSpace(in.Name))) {
		return nil, invalid("event name " + in.Name + " is reserved")
	}
	e := &model.Event{UserID: userID, Time: s.cal.Now().UTC(), Name: in.Name, Payload: in.Payload}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, translate(err)
	}
	return e, nil
}
