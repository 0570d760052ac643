package model

import (
	"time"

	"github.com/google/uuid"
)

var Archetypes = []string{"contrast", "tiny_win", "failure", "vow"}

const (
	StoryStatusDraft     = "draft"
	StoryStatusPublished = "published"
	StoryStatusArchived  = "archived"
)

var StoryStatuses = []string{StoryStatusDraft, StoryStatusPublished, StoryStatusArchived}

type Story struct {
	ID            int64     `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Date          Date      `json:"date"`
	Title         *string   `json:"title,omitempty"`
	Archetype     string    `json:"archetype"`
	SensoryDetail *string   `json:"sensory_detail,omitempty"`
	Conflict      *string   `json:"conflict,omitempty"`
	TurningPoint  *string   `json:"turning_point,omitempty"`
	Lesson        *string   `json:"lesson,omitempty"`
	Draft         *string   `json:"draft,omitempty"`
	Tags          []string  `json:"tags"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type StoryStats struct {
	Total     int `json:"total"`
	Drafts    int `json:"drafts"`
	Published int `json:"published"`
	Archived  int `json:"archived"`
}

type StoryInput struct {
	Date          Date     `json:"date"`
	Title         *string  `json:"title" binding:"omitempty,max=200"`
	Archetype     string   `json:"archetype" binding:"required,archetype"`
	SensoryDetail *string  `json:"sensory_detail" binding:"omitempty,max=1000"`
	Conflict      *string  `json:"conflict" binding:"omitempty,max=1000"`
	TurningPoint  *string  `json:"turning_point" binding:"omitempty,max=1000"`
	Lesson        *string  `json:"lesson" binding:"omitempty,max=1000"`
	Draft         *string  `json:"draft" binding:"omitempty,max=5000"`
	Tags          []string `json:"tags" binding:"omitempty,max=20,dive,min=1,max=40"`
}

type StoryPatch struct {
	Date          *Date     `json:"date"`
	Title         *string   `json:"title" binding:"omitempty,max=200"`
	Archetype     *string   `json:"archetype" binding:"omitempty,archetype"`
	SensoryDetail *string   `json:"sensory_detail" binding:"omitempty,max=1000"`
	Conflict      *string   `json:"conflict" binding:"omitempty,max=1000"`
	TurningPoint  *string   `json:"turning_point" binding:"omitempty,max=1000"`
	Lesson        *string   `json:"lesson" binding:"omitempty,max=1000"`
	Draft         *string   `json:"draft" binding:"omitempty,max=5000"`
	Tags          *[]string `json:"tags" binding:"omitempty,max=20,dive,min=1,max=40"`
	Status        *string   `json:"status" binding:"omitempty,story_status"`
}

type StoryFilter struct {
	Search    string
	Archetype string
	Status    string
}

type DraftRequest struct {
	Archetype     string `json:"archetype" binding:"required,archetype"`
	SensoryDetail string `json:"sensory_detail" binding:"required,max=500"`
	Conflict      string `json:"conflict" binding:"required,max=500"`
	TurningPoint  string `json:"turning_point" binding:"required,max=500"`
	Lesson        string `json:"lesson" binding:"required,max=500"`
	CallToAction  string `json:"call_to_action" binding:"omitempty,max=200"`
}

type DraftResponse struct {
	Post     string   `json:"post"`
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
	Source   string   `json:"source"`
}
