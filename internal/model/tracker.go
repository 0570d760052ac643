package model

import (
	"time"

	"github.com/google/uuid"
)

type Day struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Date      Date      `json:"date"`
	Mood      *int      `json:"mood,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Habit struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Target    float64   `json:"target"`
	Unit      string    `json:"unit"`
	IsActive  bool      `json:"is_active"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

type HabitLog struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	HabitID   int64     `json:"habit_id"`
	Date      Date      `json:"date"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

type ContentLog struct {
	ID           int64     `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Date         Date      `json:"date"`
	Kind         string    `json:"kind"`
	URL          *string   `json:"url,omitempty"`
	Caption      *string   `json:"caption,omitempty"`
	MinutesSpent int       `json:"minutes_spent"`
	CreatedAt    time.Time `json:"created_at"`
}

type DeepworkLog struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	StartTime time.Time `json:"start_time"`
	Minutes   int       `json:"minutes"`
	Tag       *string   `json:"tag,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SocialReps struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Date      Date      `json:"date"`
	Count     int       `json:"count"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Workout struct {
	ID          int64     `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Date        Date      `json:"date"`
	Type        string    `json:"type"`
	DurationMin *int      `json:"duration_min,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type SleepLog struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Date      Date      `json:"date"`
	Hours     float64   `json:"hours"`
	Quality   *int      `json:"quality,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DayStats are the same-day counts the daily score is computed from.
type DayStats struct {
	Date         Date `json:"date"`
	ContentCount int  `json:"content_count"`
	DeepWorkMin  int  `json:"deep_work_minutes"`
	SocialReps   int  `json:"social_reps"`
	WorkoutCount int  `json:"workout_count"`
	SleepLogged  bool `json:"sleep_logged"`
	Score        int  `json:"score"`
	Mood         *int `json:"mood,omitempty"`
}

type HabitInput struct {
	Name      string  `json:"name" binding:"required,max=100"`
	Target    float64 `json:"target" binding:"required,gt=0"`
	Unit      string  `json:"unit" binding:"required,max=30"`
	IsActive  *bool   `json:"is_active"`
	SortOrder int     `json:"sort_order" binding:"gte=0"`
}

type HabitPatch struct {
	Name      *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Target    *float64 `json:"target" binding:"omitempty,gt=0"`
	Unit      *string  `json:"unit" binding:"omitempty,min=1,max=30"`
	IsActive  *bool    `json:"is_active"`
	SortOrder *int     `json:"sort_order" binding:"omitempty,gte=0"`
}

type HabitLogInput struct {
	Value float64 `json:"value" binding:"gte=0"`
}

type DayInput struct {
	Mood  *int    `json:"mood" binding:"omitempty,min=1,max=5"`
	Notes *string `json:"notes" binding:"omitempty,max=2000"`
}

type ContentInput struct {
	Date         Date    `json:"date"`
	Kind         string  `json:"kind" binding:"required,max=50"`
	URL          *string `json:"url" binding:"omitempty,url"`
	Caption      *string `json:"caption" binding:"omitempty,max=500"`
	MinutesSpent int     `json:"minutes_spent" binding:"gte=0"`
}

type DeepworkInput struct {
	StartTime *time.Time `json:"start_time"`
	Minutes   int        `json:"minutes" binding:"required,gt=0,max=1440"`
	Tag       *string    `json:"tag" binding:"omitempty,max=50"`
}

type SocialRepsInput struct {
	Date  Date    `json:"date"`
	Count int     `json:"count" binding:"gte=0"`
	Notes *string `json:"notes" binding:"omitempty,max=500"`
}

// SocialRepsAddInput is a quick-add; an omitted count adds one rep.
type SocialRepsAddInput struct {
	Date  Date    `json:"date"`
	Count *int    `json:"count" binding:"omitempty,gt=0,max=1000"`
	Notes *string `json:"notes" binding:"omitempty,max=500"`
}

func (in SocialRepsAddInput) Delta() int {
	if in.Count == nil {
		return 1
	}
	return *in.Count
}

type WorkoutInput struct {
	Date        Date    `json:"date"`
	Type        string  `json:"type" binding:"required,max=50"`
	DurationMin *int    `json:"duration_min" binding:"omitempty,gt=0"`
	Notes       *string `json:"notes" binding:"omitempty,max=500"`
}

type SleepInput struct {
	Hours   float64 `json:"hours" binding:"required,gt=0,lte=24"`
	Quality *int    `json:"quality" binding:"omitempty,min=1,max=5"`
}
