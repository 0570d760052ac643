package outbox

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ReplayStore 是 ReplayService 依赖的 outbox 存储
type ReplayStore interface {
	GetEventByID(ctx context.Context, id int64) (*Event, error)
	GetFailedEvents(ctx context.Context, limit int) ([]*Event, error)
	MarkAsSent(ctx context.Context, id int64) error
	MarkAsFailed(ctx context.Context, id int64, maxRetries int, cause error) error
}

// ReplayService 直接重新发布 outbox 事件
type ReplayService struct {
	store     ReplayStore
	publisher EnvelopePublisher
	logger    *zap.Logger
}

// NewReplayService 创建新的 ReplayService
func NewReplayService(store ReplayStore, publisher EnvelopePublisher, logger *zap.Logger) *ReplayService {
	return &ReplayService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// ReplayEvent 重放指定的事件
func (s *ReplayService) ReplayEvent(ctx context.Context, id int64) error {
	event, err := s.store.GetEventByID(ctx, id)
	if err != nil {
		return err
	}

	env, err := DecodeEnvelope(event)
	if err != nil {
		return err
	}

	if err := s.publisher.PublishEnvelope(ctx, env); err != nil {
		if markErr := s.store.MarkAsFailed(ctx, id, event.RetryCount+1, err); markErr != nil {
			return fmt.Errorf("failed to publish and mark as failed: %w (mark error: %v)", err, markErr)
		}
		return fmt.Errorf("failed to publish: %w", err)
	}

	if err := s.store.MarkAsSent(ctx, id); err != nil {
		return fmt.Errorf("failed to mark as sent: %w", err)
	}
	return nil
}

// ReplayFailedEvents 重放所有失败的事件，返回成功数量
func (s *ReplayService) ReplayFailedEvents(ctx context.Context, limit int) (int, error) {
	events, err := s.store.GetFailedEvents(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to get failed events: %w", err)
	}

	successCount := 0
	for _, event := range events {
		if err := s.ReplayEvent(ctx, event.ID); err != nil {
			s.logger.Warn("Replay failed", zap.Int64("outbox_id", event.ID), zap.Error(err))
			continue
		}
		successCount++
	}
	return successCount, nil
}
