package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sprintcoach/internal/model"
	"sprintcoach/internal/report"
	"sprintcoach/internal/util"
)

type ReportService struct {
	stores Stores
	cal    *Calendar
}

func NewReportService(stores Stores, cal *Calendar) *ReportService {
	return &ReportService{stores: stores, cal: cal}
}

// Report aggregates scores, habits, content, revenue and leads over a named range.
func (s *ReportService) Report(ctx context.Context, userID uuid.UUID, rangeName string) (*report.Report, error) {
	today, loc, err := s.cal.Today(ctx, userID)
	if err != nil {
		return nil, err
	}
	r, err := util.RangeFor(rangeName, today)
	if err != nil {
		return nil, invalid(err.Error())
	}
	tz := loc.String()

	var in report.Inputs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.Stats, err = s.stores.Days.Stats(gctx, userID, r.From, r.To, tz)
		return err
	})
	g.Go(func() (err error) {
		in.Habits, err = s.stores.Habits.List(gctx, userID, false)
		return err
	})
	g.Go(func() (err error) {
		in.HabitLogs, err = s.stores.Habits.ListLogs(gctx, userID, r.From, r.To, nil)
		return err
	})
	g.Go(func() (err error) {
		in.Content, err = s.stores.Activity.ListContent(gctx, userID, r.From, r.To)
		return err
	})
	g.Go(func() (err error) {
		in.Deals, err = s.stores.Deals.List(gctx, userID, model.DealStatusWon, r.From, r.To)
		return err
	})
	g.Go(func() (err error) {
		in.Leads, err = s.stores.Leads.ListCreated(gctx, userID, r.From, r.To, tz)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, translate(err)
	}

	rep := report.Build(r, in)
	return &rep, nil
}
