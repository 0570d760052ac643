package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"sprintcoach/internal/model"
	"sprintcoach/internal/util"
)

// Calendar resolves "today" and date ranges in a user's profile time zone.
type Calendar struct {
	users UserStore
	now   func() time.Time
}

func NewCalendar(users UserStore, now func() time.Time) *Calendar {
	if now == nil {
		now = time.Now
	}
	return &Calendar{users: users, now: now}
}

func (c *Calendar) Now() time.Time { return c.now() }

// Location returns the user's zone; a missing profile falls back to the default zone.
func (c *Calendar) Location(ctx context.Context, userID uuid.UUID) (*time.Location, error) {
	p, err := c.users.GetProfile(ctx, userID)
	if err != nil && !errors.Is(translate(err), ErrNotFound) {
		return nil, err
	}
	return p.Location(), nil
}

func (c *Calendar) Today(ctx context.Context, userID uuid.UUID) (model.Date, *time.Location, error) {
	loc, err := c.Location(ctx, userID)
	if err != nil {
		return model.Date{}, nil, err
	}
	return util.Today(c.now(), loc), loc, nil
}

// OrToday returns d, or today when d is zero.
func (c *Calendar) OrToday(ctx context.Context, userID uuid.UUID, d model.Date) (model.Date, error) {
	if !d.IsZero() {
		return d, nil
	}
	today, _, err := c.Today(ctx, userID)
	return today, err
}

// ParseRange resolves from/to query values against the user's today.
func (c *Calendar) ParseRange(ctx context.Context, userID uuid.UUID, from, to string) (util.DateRange, error) {
	today, _, err := c.Today(ctx, userID)
	if err != nil {
		return util.DateRange{}, err
	}
	r, err := util.ParseRange(from, to, today)
	if err != nil {
		return util.DateRange{}, invalid(err.Error())
	}
	return r, nil
}
