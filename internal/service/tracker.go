package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "sprintcoach/contracts/mq"
	"sprintcoach/internal/model"
	"sprintcoach/internal/score"
	"sprintcoach/internal/util"
	"sprintcoach/pkg/metrics"
)

// Activity kinds carried in activity.logged events.
const (
	KindHabit      = "habit"
	KindContent    = "content"
	KindDeepwork   = "deepwork"
	KindSocialReps = "social_reps"
	KindWorkout    = "workout"
	KindSleep      = "sleep"
	KindDay        = "day"
)

// TrackerService owns habits, days and the per-day activity logs.
type TrackerService struct {
	stores Stores
	tx     Transactor
	cal    *Calendar
	cache  DashboardCache
	logger *zap.Logger
}

func NewTrackerService(stores Stores, tx Transactor, cal *Calendar, cache DashboardCache, logger *zap.Logger) *TrackerService {
	if cache == nil {
		cache = noopCache{}
	}
	return &TrackerService{stores: stores, tx: tx, cal: cal, cache: cache, logger: logger}
}

// logged writes the row through fn and emits activity.logged in the same transaction.
func (s *TrackerService) logged(ctx context.Context, userID uuid.UUID, kind string, fn func(st Stores) (model.Date, int64, error)) error {
	err := s.tx.InTx(ctx, func(st Stores) error {
		date, id, err := fn(st)
		if err != nil {
			return err
		}
		return st.Outbox.Emit(ctx, kind, strconv.FormatInt(id, 10), mqcontracts.RoutingActivityLogged, userID,
			mqcontracts.ActivityLoggedPayload{Kind: kind, Date: date.String(), ID: id})
	})
	if err != nil {
		return translate(err)
	}
	metrics.IncrementActivityLogged(kind)
	s.cache.Invalidate(ctx, userID)
	return nil
}

func (s *TrackerService) changed(ctx context.Context, userID uuid.UUID, err error) error {
	if err != nil {
		return translate(err)
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

// Habits

func (s *TrackerService) ListHabits(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]model.Habit, error) {
	hs, err := s.stores.Habits.List(ctx, userID, activeOnly)
	return hs, translate(err)
}

func (s *TrackerService) CreateHabit(ctx context.Context, userID uuid.UUID, in model.HabitInput) (*model.Habit, error) {
	h := &model.Habit{
		UserID:    userID,
		Name:      in.Name,
		Target:    in.Target,
		Unit:      in.Unit,
		IsActive:  in.IsActive == nil || *in.IsActive,
		SortOrder: in.SortOrder,
	}
	if err := s.stores.Habits.Create(ctx, h); err != nil {
		return nil, translate(err)
	}
	s.cache.Invalidate(ctx, userID)
	return h, nil
}

func (s *TrackerService) UpdateHabit(ctx context.Context, userID uuid.UUID, id int64, p model.HabitPatch) (*model.Habit, error) {
	h, err := s.stores.Habits.Update(ctx, userID, id, p)
	return h, s.changed(ctx, userID, err)
}

func (s *TrackerService) ToggleHabit(ctx context.Context, userID uuid.UUID, id int64) (*model.Habit, error) {
	h, err := s.stores.Habits.ToggleActive(ctx, userID, id)
	return h, s.changed(ctx, userID, err)
}

func (s *TrackerService) DeleteHabit(ctx context.Context, userID uuid.UUID, id int64) error {
	return s.changed(ctx, userID, s.stores.Habits.Delete(ctx, userID, id))
}

func (s *TrackerService) LogHabit(ctx context.Context, userID uuid.UUID, habitID int64, date model.Date, value float64) (*model.HabitLog, error) {
	date, err := s.cal.OrToday(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	var l *model.HabitLog
	err = s.logged(ctx, userID, KindHabit, func(st Stores) (model.Date, int64, error) {
		var err error
		l, err = st.Habits.UpsertLog(ctx, userID, habitID, date, value)
		if err != nil {
			return model.Date{}, 0, err
		}
		return l.Date, l.ID, nil
	})
	return l, err
}

func (s *TrackerService) ListHabitLogs(ctx context.Context, userID uuid.UUID, r util.DateRange, habitID *int64) ([]model.HabitLog, error) {
	ls, err := s.stores.Habits.ListLogs(ctx, userID, r.From, r.To, habitID)
	return ls, translate(err)
}

// Days

// DayView is everything logged on one date plus its score.
type DayView struct {
	Date       model.Date          `json:"date"`
	Day        *model.Day          `json:"day,omitempty"`
	Stats      model.DayStats      `json:"stats"`
	HabitLogs  []model.HabitLog    `json:"habit_logs"`
	Content    []model.ContentLog  `json:"content"`
	Deepwork   []model.DeepworkLog `json:"deepwork"`
	SocialReps *model.SocialReps   `json:"social_reps,omitempty"`
	Workouts   []model.Workout     `json:"workouts"`
	Sleep      *model.SleepLog     `json:"sleep,omitempty"`
}

func (s *TrackerService) Day(ctx context.Context, userID uuid.UUID, date model.Date) (*DayView, error) {
	loc, err := s.cal.Location(ctx, userID)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = util.Today(s.cal.Now(), loc)
	}
	tz := loc.String()
	v := &DayView{Date: date, Stats: model.DayStats{Date: date}}

	day, err := s.stores.Days.Get(ctx, userID, date)
	if err = translate(err); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	v.Day = day

	stats, err := s.stores.Days.Stats(ctx, userID, date, date, tz)
	if err != nil {
		return nil, translate(err)
	}
	if len(stats) > 0 {
		v.Stats = stats[0]
	}
	v.Stats.Score = score.Compute(v.Stats)

	if v.HabitLogs, err = s.stores.Habits.ListLogs(ctx, userID, date, date, nil); err != nil {
		return nil, translate(err)
	}
	if v.Content, err = s.stores.Activity.ListContent(ctx, userID, date, date); err != nil {
		return nil, translate(err)
	}
	if v.Deepwork, err = s.stores.Activity.ListDeepwork(ctx, userID, date, date, tz); err != nil {
		return nil, translate(err)
	}
	if v.Workouts, err = s.stores.Activity.ListWorkouts(ctx, userID, date, date); err != nil {
		return nil, translate(err)
	}
	reps, err := s.stores.Activity.ListSocialReps(ctx, userID, date, date)
	if err != nil {
		return nil, translate(err)
	}
	if len(reps) > 0 {
		v.SocialReps = &reps[0]
	}
	sleep, err := s.stores.Activity.ListSleep(ctx, userID, date, date)
	if err != nil {
		return nil, translate(err)
	}
	if len(sleep) > 0 {
		v.Sleep = &sleep[0]
	}
	return v, nil
}

func (s *TrackerService) UpsertDay(ctx context.Context, userID uuid.UUID, date model.Date, in model.DayInput) (*model.Day, error) {
	var d *model.Day
	err := s.logged(ctx, userID, KindDay, func(st Stores) (model.Date, int64, error) {
		var err error
		d, err = st.Days.Upsert(ctx, userID, date, in)
		if err != nil {
			return model.Date{}, 0, err
		}
		return d.Date, d.ID, nil
	})
	return d, err
}

// Content

func (s *TrackerService) ListContent(ctx context.Context, userID uuid.UUID, r util.DateRange) ([]model.ContentLog, error) {
	cs, err := s.stores.Activity.ListContent(ctx, userID, r.From, r.To)
	return cs, translate(err)
}

func (s *TrackerService) CreateContent(ctx context.Context, userID uuid.UUID, in model.ContentInput) (*model.ContentLog, error) {
	date, err := s.cal.OrToday(ctx, userID, in.Date)
	if err != nil {
		return nil, err
	}
	c := &model.ContentLog{UserID: userID, Date: date, Kind: in.Kind, URL: in.URL, Caption: in.Caption, MinutesSpent: in.MinutesSpent}
	err = s.logged(ctx, userID, KindContent, func(st Stores) (model.Date, int64, error) {
		err := st.Activity.CreateContent(ctx, c)
		return c.Date, c.ID, err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *TrackerService) DeleteContent(ctx context.Context, userID uuid.UUID, id int64) error {
	_, err := s.stores.Activity.DeleteContent(ctx, userID, id)
	return s.changed(ctx, userID, err)
}

// Deep work

func (s *TrackerService) ListDeepwork(ctx context.Context, userID uuid.UUID, r util.DateRange) ([]model.DeepworkLog, error) {
	loc, err := s.cal.Location(ctx, userID)
	if err != nil {
		return nil, err
	}
	ds, err := s.stores.Activity.ListDeepwork(ctx, userID, r.From, r.To, loc.String())
	return ds, translate(err)
}

func (s *TrackerService) CreateDeepwork(ctx context.Context, userID uuid.UUID, in model.DeepworkInput) (*model.DeepworkLog, error) {
	loc, err := s.cal.Location(ctx, userID)
	if err != nil {
		return nil, err
	}
	start := s.cal.Now()
	if in.StartTime != nil {
		start = *in.StartTime
	}
	d := &model.DeepworkLog{UserID: userID, StartTime: start, Minutes: in.Minutes, Tag: in.Tag}
	err = s.logged(ctx, userID, KindDeepwork, func(st Stores) (model.Date, int64, error) {
		if err := st.Activity.CreateDeepwork(ctx, d); err != nil {
			return model.Date{}, 0, err
		}
		return util.Today(d.StartTime, loc), d.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *TrackerService) DeleteDeepwork(ctx context.Context, userID uuid.UUID, id int64) error {
	_, err := s.stores.Activity.DeleteDeepwork(ctx, userID, id)
	return s.changed(ctx, userID, err)
}

// Social reps

func (s *TrackerService) ListSocialReps(ctx context.Context, userID uuid.UUID, r util.DateRange) ([]model.SocialReps, error) {
	rs, err := s.stores.Activity.ListSocialReps(ctx, userID, r.From, r.To)
	return rs, translate(err)
}

// AddSocialReps increments the date's count by in.Delta(), which must be positive.
func (s *TrackerService) AddSocialReps(ctx context.Context, userID uuid.UUID, in model.SocialRepsAddInput) (*model.SocialReps, error) {
	n := in.Delta()
	if n <= 0 {
		return nil, invalid("count must be positive")
	}
	return s.writeReps(ctx, userID, in.Date, n, in.Notes, ActivityStore.AddSocialReps)
}

// SetSocialReps replaces the date's count with in.Count.
func (s *TrackerService) SetSocialReps(ctx context.Context, userID uuid.UUID, in model.SocialRepsInput) (*model.SocialReps, error) {
	if in.Count < 0 {
		return nil, invalid("count must not be negative")
	}
	return s.writeReps(ctx, userID, in.Date, in.Count, in.Notes, ActivityStore.SetSocialReps)
}

type repsWriter func(a ActivityStore, ctx context.Context, userID uuid.UUID, date model.Date, n int, notes *string) (*model.SocialReps, error)

func (s *TrackerService) writeReps(ctx context.Context, userID uuid.UUID, day model.Date, n int, notes *string, write repsWriter) (*model.SocialReps, error) {
	date, err := s.cal.OrToday(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	var r *model.SocialReps
	err = s.logged(ctx, userID, KindSocialReps, func(st Stores) (model.Date, int64, error) {
		var err error
		r, err = write(st.Activity, ctx, userID, date, n, notes)
		if err != nil {
			return model.Date{}, 0, err
		}
		return r.Date, r.ID, nil
	})
	return r, err
}

// Workouts

func (s *TrackerService) ListWorkouts(ctx context.Context, userID uuid.UUID, r util.DateRange) ([]model.Workout, error) {
	ws, err := s.stores.Activity.ListWorkouts(ctx, userID, r.From, r.To)
	return ws, translate(err)
}

func (s *TrackerService) CreateWorkout(ctx context.Context, userID uuid.UUID, in model.WorkoutInput) (*model.Workout, error) {
	date, err := s.cal.OrToday(ctx, userID, in.Date)
	if err != nil {
		return nil, err
	}
	w := &model.Workout{UserID: userID, Date: date, Type: in.Type, DurationMin: in.DurationMin, Notes: in.Notes}
	err = s.logged(ctx, userID, KindWorkout, func(st Stores) (model.Date, int64, error) {
		err := st.Activity.CreateWorkout(ctx, w)
		return w.Date, w.ID, err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *TrackerService) DeleteWorkout(ctx context.Context, userID uuid.UUID, id int64) error {
	_, err := s.stores.Activity.DeleteWorkout(ctx, userID, id)
	return s.changed(ctx, userID, err)
}

// Sleep

func (s *TrackerService) ListSleep(ctx context.Context, userID uuid.UUID, r util.DateRange) ([]model.SleepLog, error) {
	ls, err := s.stores.Activity.ListSleep(ctx, userID, r.From, r.To)
	return ls, translate(err)
}

func (s *TrackerService) UpsertSleep(ctx context.Context, userID uuid.UUID, date model.Date, in model.SleepInput) (*model.SleepLog, error) {
	date, err := s.cal.OrToday(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	var l *model.SleepLog
	err = s.logged(ctx, userID, KindSleep, func(st Stores) (model.Date, int64, error) {
		var err error
		l, err = st.Activity.UpsertSleep(ctx, userID, date, in)
		if err != nil {
			return model.Date{}, 0, err
		}
		return l.Date, l.ID, nil
	})
	return l, err
}
