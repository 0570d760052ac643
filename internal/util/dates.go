package util

import (
	"fmt"
	"time"

	"sprintcoach/internal/model"
)

const (
	Range7Days     = "7days"
	Range30Days    = "30days"
	RangeThisWeek  = "thisweek"
	RangeThisMonth = "thismonth"
)

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	From model.Date `json:"from"`
	To   model.Date `json:"to"`
}

// Days lists every date in the range in order.
func (r DateRange) Days() []model.Date {
	if r.To.Before(r.From) {
		return nil
	}
	days := make([]model.Date, 0, r.To.DaysSince(r.From)+1)
	for d := r.From; !d.After(r.To); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (r DateRange) Contains(d model.Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// Today returns the current calendar day in loc.
func Today(now time.Time, loc *time.Location) model.Date {
	return model.DateOf(now.In(loc))
}

// TimeLeftInDay returns the duration until the next midnight in loc.
func TimeLeftInDay(now time.Time, loc *time.Location) time.Duration {
	local := now.In(loc)
	next := model.DateOf(local).AddDays(1).StartIn(loc)
	return next.Sub(local)
}

// WeekStart returns the Sunday on or before d.
func WeekStart(d model.Date) model.Date {
	return d.AddDays(-int(d.Weekday()))
}

func MonthStart(d model.Date) model.Date {
	return model.NewDate(d.Year(), d.Month(), 1)
}

// RangeFor resolves a named report range ending today.
func RangeFor(name string, today model.Date) (DateRange, error) {
	switch name {
	case "", Range7Days:
		return DateRange{From: today.AddDays(-6), To: today}, nil
	case Range30Days:
		return DateRange{From: today.AddDays(-29), To: today}, nil
	case RangeThisWeek:
		return DateRange{From: WeekStart(today), To: today}, nil
	case RangeThisMonth:
		return DateRange{From: MonthStart(today), To: today}, nil
	default:
		return DateRange{}, fmt.Errorf("unknown range %q", name)
	}
}

// ParseRange parses from/to query values, defaulting to the 30 days ending today.
func ParseRange(from, to string, today model.Date) (DateRange, error) {
	r := DateRange{From: today.AddDays(-29), To: today}
	if from != "" {
		d, err := model.ParseDate(from)
		if err != nil {
			return DateRange{}, err
		}
		r.From = d
	}
	if to != "" {
		d, err := model.ParseDate(to)
		if err != nil {
			return DateRange{}, err
		}
		r.To = d
	}
	if r.To.Before(r.From) {
		return DateRange{}, fmt.Errorf("range end %s is before start %s", r.To, r.From)
	}
	if r.To.DaysSince(r.From) > 366 {
		return DateRange{}, fmt.Errorf("range exceeds 366 days")
	}
	return r, nil
}
