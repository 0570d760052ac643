package mq

import "github.com/google/uuid"

// Routing keys published to the events exchange.
const (
	RoutingUserRegistered    = "user.registered"
	RoutingActivityLogged    = "activity.logged"
	RoutingLeadStatusChanged = "lead.status_changed"
	RoutingDealRecorded      = "deal.recorded"
	RoutingLeadFollowupDue   = "lead.followup_due"
)

// AllRoutingKeys lists every domain event the event-log consumer records.
var AllRoutingKeys = []string{
	RoutingUserRegistered,
	RoutingActivityLogged,
	RoutingLeadStatusChanged,
	RoutingDealRecorded,
	RoutingLeadFollowupDue,
}

type UserRegisteredPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	TZ     string    `json:"tz"`
}

// ActivityLoggedPayload Kind: habit / content / deepwork / social_reps / workout / sleep / day
type ActivityLoggedPayload struct {
	Kind string `json:"kind"`
	Date string `json:"date"`
	ID   int64  `json:"id,omitempty"`
}

type LeadStatusChangedPayload struct {
	LeadID int64  `json:"lead_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type DealRecordedPayload struct {
	DealID int64   `json:"deal_id"`
	LeadID *int64  `json:"lead_id,omitempty"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
	Date   string  `json:"date"`
}

type LeadFollowupDuePayload struct {
	LeadID         int64  `json:"lead_id"`
	Name           string `json:"name"`
	NextActionDate string `json:"next_action_date"`
}
