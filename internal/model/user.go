package model

import (
	"time"

	"github.com/google/uuid"
)

const DefaultTimezone = "Australia/Brisbane"

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Profile struct {
	ID          uuid.UUID `json:"id"`
	TZ          string    `json:"tz"`
	DisplayName *string   `json:"display_name,omitempty"`
	GoalDesc    *string   `json:"goal_desc,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Location resolves the profile time zone, falling back to the default zone.
func (p *Profile) Location() *time.Location {
	if p != nil && p.TZ != "" {
		if loc, err := time.LoadLocation(p.TZ); err == nil {
			return loc
		}
	}
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type RegisterInput struct {
	Email       string  `json:"email" binding:"required,email,max=254"`
	Password    string  `json:"password" binding:"required,min=8,max=72"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	TZ          string  `json:"tz" binding:"omitempty,timezone"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ProfileInput struct {
	TZ          string  `json:"tz" binding:"omitempty,timezone"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	GoalDesc    *string `json:"goal_desc" binding:"omitempty,max=500"`
}
