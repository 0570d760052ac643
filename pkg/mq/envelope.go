package mq

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope 所有领域事件的统一外层结构
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	UserID     string          `json:"user_id,omitempty"`
	TraceID    string          `json:"trace_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// NewEnvelope 把 payload 序列化并生成事件 ID
func NewEnvelope(eventType, userID, traceID string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		TraceID:    traceID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}, nil
}

// Decode 解析事件的 data 部分
func (e Envelope) Decode(out any) error {
	return json.Unmarshal(e.Data, out)
}
