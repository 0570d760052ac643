package service

import (
	"context"
	"errors"

	"sprintcoach/pkg/outbox"
)

// OutboxStore is the subset of the outbox repository the admin endpoints use.
type OutboxStore interface {
	Requeue(ctx context.Context, id int64) error
	RequeueFailed(ctx context.Context) (int64, error)
	GetFailedEvents(ctx context.Context, limit int) ([]*outbox.Event, error)
}

// OutboxService resets failed events to pending so the worker's dispatcher publishes them again.
type OutboxService struct {
	store OutboxStore
}

func NewOutboxService(store OutboxStore) *OutboxService {
	return &OutboxService{store: store}
}

func (s *OutboxService) Failed(ctx context.Context, limit int) ([]*outbox.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.store.GetFailedEvents(ctx, limit)
}

func (s *OutboxService) Requeue(ctx context.Context, id int64) error {
	err := s.store.Requeue(ctx, id)
	if errors.Is(err, outbox.ErrEventNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *OutboxService) RequeueFailed(ctx context.Context) (int64, error) {
	return s.store.RequeueFailed(ctx)
}
