package model

import (
	"time"

	"github.com/google/uuid"
)

const PromptKindMotivational = "motivational"

const DefaultMotivationalPrompt = "Every small step forward is progress. Keep building."

type Event struct {
	ID      int64          `json:"id"`
	UserID  uuid.UUID      `json:"user_id"`
	Time    time.Time      `json:"time"`
	Name    string         `json:"name"`
	Payload map[string]any `json:"payload,omitempty"`
	// EventID is the domain event id for rows written by the worker.
	EventID   *string   `json:"event_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Prompt struct {
	ID        int64      `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Kind      string     `json:"kind"`
	Text      string     `json:"text"`
	Weight    int        `json:"weight"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsGlobal reports whether the prompt is visible to every user.
func (p Prompt) IsGlobal() bool { return p.UserID == nil }

type EventInput struct {
	Name    string         `json:"name" binding:"required,max=100"`
	Payload map[string]any `json:"payload"`
}

type PromptInput struct {
	Kind   string `json:"kind" binding:"required,max=50"`
	Text   string `json:"text" binding:"required,max=1000"`
	Weight int    `json:"weight" binding:"omitempty,gt=0"`
	Global bool   `json:"global"`
}
