package report

import (
	"strings"

	"sprintcoach/internal/model"
	"sprintcoach/internal/util"
)

// OutcomeBooked marks an outreach that led to a booked call.
const OutcomeBooked = "booked"

type FunnelWeek struct {
	Week          model.Date `json:"week"`
	OutreachCount int        `json:"outreach_count"`
	Responses     int        `json:"responses"`
	Bookings      int        `json:"bookings"`
	Deals         int        `json:"deals"`
}

// LeadBooking is a lead moving to the Booked status on a given day.
type LeadBooking struct {
	LeadID int64
	Date   model.Date
}

// Funnel buckets outreach, bookings and deals into the last n weeks (Sunday start) ending with today's week.
func Funnel(today model.Date, weeks int, outreach []model.OutreachLog, bookings []LeadBooking, deals []model.Deal) []FunnelWeek {
	if weeks <= 0 {
		weeks = 8
	}
	current := util.WeekStart(today)
	first := current.AddDays(-7 * (weeks - 1))

	out := make([]FunnelWeek, weeks)
	index := make(map[model.Date]int, weeks)
	for i := range out {
		w := first.AddDays(7 * i)
		out[i].Week = w
		index[w] = i
	}
	bucket := func(d model.Date) (*FunnelWeek, bool) {
		i, ok := index[util.WeekStart(d)]
		if !ok {
			return nil, false
		}
		return &out[i], true
	}

	// A lead counts as booked at most once per week, whether the booking
	// came from an outreach outcome, a status change, or both.
	type weekLead struct {
		week model.Date
		lead int64
	}
	booked := make(map[weekLead]struct{})

	for _, o := range outreach {
		w, ok := bucket(o.Date)
		if !ok {
			continue
		}
		w.OutreachCount++
		if o.Outcome == nil || strings.TrimSpace(*o.Outcome) == "" {
			continue
		}
		w.Responses++
		if !strings.EqualFold(strings.TrimSpace(*o.Outcome), OutcomeBooked) {
			continue
		}
		if o.LeadID == nil {
			w.Bookings++
			continue
		}
		key := weekLead{week: w.Week, lead: *o.LeadID}
		if _, seen := booked[key]; !seen {
			booked[key] = struct{}{}
			w.Bookings++
		}
	}
	for _, b := range bookings {
		w, ok := bucket(b.Date)
		if !ok {
			continue
		}
		key := weekLead{week: w.Week, lead: b.LeadID}
		if _, seen := booked[key]; !seen {
			booked[key] = struct{}{}
			w.Bookings++
		}
	}
	for _, d := range deals {
		if w, ok := bucket(d.Date); ok {
			w.Deals++
		}
	}
	return out
}
