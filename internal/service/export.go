package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sprintcoach/internal/model"
)

// Export is every row a user owns.
type Export struct {
	ExportedAt time.Time           `json:"exported_at"`
	User       *model.User         `json:"user"`
	Profile    *model.Profile      `json:"profile,omitempty"`
	Days       []model.Day         `json:"days"`
	Habits     []model.Habit       `json:"habits"`
	HabitLogs  []model.HabitLog    `json:"habit_logs"`
	Content    []model.ContentLog  `json:"content_logs"`
	Deepwork   []model.DeepworkLog `json:"deepwork_logs"`
	SocialReps []model.SocialReps  `json:"social_reps"`
	Workouts   []model.Workout     `json:"workouts"`
	Sleep      []model.SleepLog    `json:"sleep_logs"`
	Leads      []model.Lead        `json:"leads"`
	Outreach   []model.OutreachLog `json:"outreach_logs"`
	Deals      []model.Deal        `json:"deals"`
	Stories    []model.Story       `json:"stories"`
	Events     []model.Event       `json:"events"`
	Prompts    []model.Prompt      `json:"prompts"`
}

const exportEventLimit = 100000

type ExportService struct {
	stores Stores
	cal    *Calendar
}

func NewExportService(stores Stores, cal *Calendar) *ExportService {
	return &ExportService{stores: stores, cal: cal}
}

func (s *ExportService) ExportByEmail(ctx context.Context, email string) (*Export, error) {
	u, err := s.stores.Users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, translate(err)
	}
	return s.Export(ctx, u.ID)
}

// Export collects the user's data; zero dates leave list ranges open.
func (s *ExportService) Export(ctx context.Context, userID uuid.UUID) (*Export, error) {
	var (
		all = model.Date{}
		out = &Export{ExportedAt: s.cal.Now().UTC()}
		err error
	)
	if out.User, err = s.stores.Users.FindByID(ctx, userID); err != nil {
		return nil, translate(err)
	}
	if out.Profile, err = s.stores.Users.GetProfile(ctx, userID); err != nil && translate(err) != ErrNotFound {
		return nil, err
	}
	tz := out.Profile.Location().String()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Days, err = s.stores.Days.List(gctx, userID, all, all)
		return err
	})
	g.Go(func() (err error) {
		if out.Habits, err = s.stores.Habits.List(gctx, userID, false); err != nil {
			return err
		}
		out.HabitLogs, err = s.stores.Habits.ListLogs(gctx, userID, all, all, nil)
		return err
	})
	g.Go(func() (err error) {
		a := s.stores.Activity
		if out.Content, err = a.ListContent(gctx, userID, all, all); err != nil {
			return err
		}
		if out.Deepwork, err = a.ListDeepwork(gctx, userID, all, all, tz); err != nil {
			return err
		}
		if out.SocialReps, err = a.ListSocialReps(gctx, userID, all, all); err != nil {
			return err
		}
		if out.Workouts, err = a.ListWorkouts(gctx, userID, all, all); err != nil {
			return err
		}
		out.Sleep, err = a.ListSleep(gctx, userID, all, all)
		return err
	})
	g.Go(func() (err error) {
		if out.Leads, err = s.stores.Leads.List(gctx, userID, ""); err != nil {
			return err
		}
		if out.Outreach, err = s.stores.Leads.ListOutreach(gctx, userID, nil, all, all); err != nil {
			return err
		}
		out.Deals, err = s.stores.Deals.List(gctx, userID, "", all, all)
		return err
	})
	g.Go(func() (err error) {
		if out.Stories, err = s.stores.Stories.List(gctx, userID, model.StoryFilter{}); err != nil {
			return err
		}
		if out.Events, err = s.stores.Events.List(gctx, userID, "", exportEventLimit); err != nil {
			return err
		}
		out.Prompts, err = s.ownPrompts(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *ExportService) ownPrompts(ctx context.Context, userID uuid.UUID) ([]model.Prompt, error) {
	visible, err := s.stores.Prompts.ListVisible(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	own := visible[:0]
	for _, p := range visible {
		if !p.IsGlobal() {
			own = append(own, p)
		}
	}
	return own, nil
}
