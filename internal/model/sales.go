package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	LeadStatusNew       = "New"
	LeadStatusContacted = "Contacted"
	LeadStatusBooked    = "Booked"
	LeadStatusWon       = "Won"
	LeadStatusLost      = "Lost"
)

var LeadStatuses = []string{LeadStatusNew, LeadStatusContacted, LeadStatusBooked, LeadStatusWon, LeadStatusLost}

const (
	DealStatusPending = "pending"
	DealStatusWon     = "won"
	DealStatusLost    = "lost"
)

var DealStatuses = []string{DealStatusPending, DealStatusWon, DealStatusLost}

type Lead struct {
	ID             int64      `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	Name           string     `json:"name"`
	Email          *string    `json:"email,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	Business       *string    `json:"business,omitempty"`
	Niche          *string    `json:"niche,omitempty"`
	Source         *string    `json:"source,omitempty"`
	Status         string     `json:"status"`
	Priority       int        `json:"priority"`
	NextActionDate *Date      `json:"next_action_date,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	LastContactAt  *time.Time `json:"last_contact_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type OutreachLog struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	LeadID    *int64    `json:"lead_id,omitempty"`
	Date      Date      `json:"date"`
	Channel   string    `json:"channel"`
	Notes     *string   `json:"notes,omitempty"`
	Outcome   *string   `json:"outcome,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Deal struct {
	ID          int64     `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	LeadID      *int64    `json:"lead_id,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Amount      float64   `json:"amount"`
	COGS        *float64  `json:"cogs,omitempty"`
	Date        Date      `json:"date"`
	Source      *string   `json:"source,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	Status      string    `json:"status"`
	Probability int       `json:"probability"`
	CreatedAt   time.Time `json:"created_at"`
}

type LeadInput struct {
	Name           string  `json:"name" binding:"required,max=200"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone" binding:"omitempty,max=50"`
	Business       *string `json:"business" binding:"omitempty,max=200"`
	Niche          *string `json:"niche" binding:"omitempty,max=100"`
	Source         *string `json:"source" binding:"omitempty,max=100"`
	Priority       *int    `json:"priority" binding:"omitempty,min=1,max=5"`
	NextActionDate *Date   `json:"next_action_date"`
	Notes          *string `json:"notes" binding:"omitempty,max=2000"`
}

type LeadPatch struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone" binding:"omitempty,max=50"`
	Business       *string `json:"business" binding:"omitempty,max=200"`
	Niche          *string `json:"niche" binding:"omitempty,max=100"`
	Source         *string `json:"source" binding:"omitempty,max=100"`
	Priority       *int    `json:"priority" binding:"omitempty,min=1,max=5"`
	NextActionDate *Date   `json:"next_action_date"`
	Notes          *string `json:"notes" binding:"omitempty,max=2000"`
}

type LeadStatusInput struct {
	Status string `json:"status" binding:"required,lead_status"`
}

type OutreachInput struct {
	LeadID  *int64  `json:"lead_id" binding:"omitempty,gt=0"`
	Date    Date    `json:"date"`
	Channel string  `json:"channel" binding:"required,max=50"`
	Notes   *string `json:"notes" binding:"omitempty,max=2000"`
	Outcome *string `json:"outcome" binding:"omitempty,max=50"`
}

type DealInput struct {
	LeadID      *int64   `json:"lead_id" binding:"omitempty,gt=0"`
	Title       *string  `json:"title" binding:"omitempty,max=200"`
	Amount      float64  `json:"amount" binding:"required,gt=0"`
	COGS        *float64 `json:"cogs" binding:"omitempty,gte=0"`
	Date        Date     `json:"date"`
	Source      *string  `json:"source" binding:"omitempty,max=100"`
	Notes       *string  `json:"notes" binding:"omitempty,max=2000"`
	Status      string   `json:"status" binding:"omitempty,deal_status"`
	Probability *int     `json:"probability" binding:"omitempty,min=0,max=100"`
}

type DealPatch struct {
	Title       *string  `json:"title" binding:"omitempty,max=200"`
	Amount      *float64 `json:"amount" binding:"omitempty,gt=0"`
	COGS        *float64 `json:"cogs" binding:"omitempty,gte=0"`
	Date        *Date    `json:"date"`
	Source      *string  `json:"source" binding:"omitempty,max=100"`
	Notes       *string  `json:"notes" binding:"omitempty,max=2000"`
	Status      *string  `json:"status" binding:"omitempty,deal_status"`
	Probability *int     `json:"probability" binding:"omitempty,min=0,max=100"`
}
