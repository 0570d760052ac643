package mqhandler

import (
	"context"

	"go.uber.org/zap"

	"sprintcoach/pkg/logger"
	"sprintcoach/pkg/mq"
)

const eventLogHandlerName = "event_log"

// Deduper guards a handler against processing the same event twice.
type Deduper interface {
	AcquireOnce(ctx context.Context, handler, eventID string) bool
	Release(ctx context.Context, handler, eventID string)
}

type EventRecorder interface {
	Record(ctx context.Context, env mq.Envelope) (bool, error)
}

// EventLogHandler copies every domain event into the events table.
type EventLogHandler struct {
	recorder EventRecorder
	deduper  Deduper
	logger   *zap.Logger
}

func NewEventLogHandler(recorder EventRecorder, deduper Deduper, logger *zap.Logger) *EventLogHandler {
	return &EventLogHandler{recorder: recorder, deduper: deduper, logger: logger}
}

// Handle is idempotent: the Redis dedup key short-circuits repeats and the unique event_id
// column covers the window where Redis is unavailable.
func (h *EventLogHandler) Handle(ctx context.Context, msg mq.Message) error {
	log := logger.WithTrace(ctx, h.logger)

	if h.deduper != nil && !h.deduper.AcquireOnce(ctx, eventLogHandlerName, msg.ID) {
		return nil
	}

	inserted, err := h.recorder.Record(ctx, msg.Envelope)
	if err != nil {
		if h.deduper != nil {
			h.deduper.Release(ctx, eventLogHandlerName, msg.ID)
		}
		log.Error("Failed to record event",
			zap.String("event_id", msg.ID),
			zap.String("routing_key", msg.RoutingKey),
			zap.Error(err),
		)
		return err
	}

	if !inserted {
		log.Debug("Event already recorded", zap.String("event_id", msg.ID))
		return nil
	}
	log.Info("Event recorded",
		zap.String("event_id", msg.ID),
		zap.String("type", msg.Type),
		zap.String("user_id", msg.UserID),
	)
	return nil
}
