package outbox

import (
	"context"
	"encoding/json"

	"sprintcoach/pkg/mq"
	"sprintcoach/pkg/trace"
)

// InsertEventInTx 把 payload 包装成 envelope 并在事务中写入 outbox
func InsertEventInTx(
	ctx context.Context,
	tx Querier,
	repo *Repository,
	aggregateType string,
	aggregateID string,
	routingKey string,
	userID string,
	payload any,
) (*Event, error) {
	env, err := mq.NewEnvelope(routingKey, userID, trace.FromContext(ctx), payload)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}

	event := &Event{
		EventID:       env.ID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		RoutingKey:    routingKey,
		Payload:       body,
		Status:        StatusPending,
	}
	if err := repo.InsertEvent(ctx, tx, event); err != nil {
		return nil, err
	}
	return event, nil
}
