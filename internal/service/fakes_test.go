package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sprintcoach/internal/model"
	"sprintcoach/internal/repository"
)

// 2024-06-05 23:30 UTC is 2024-06-06 09:30 in Brisbane.
var fixedNow = time.Date(2024, 6, 5, 23, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type emitted struct {
	aggregateType string
	aggregateID   string
	routingKey    string
	userID        uuid.UUID
	payload       any
}

type recordingSink struct {
	mu     sync.Mutex
	events []emitted
	err    error
}

func (s *recordingSink) Emit(_ context.Context, aggregateType, aggregateID, routingKey string, userID uuid.UUID, payload any) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, emitted{aggregateType, aggregateID, routingKey, userID, payload})
	return nil
}

func (s *recordingSink) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.routingKey)
	}
	return out
}

// passTx runs fn against the same in-memory stores.
type passTx struct {
	stores Stores
	calls  atomic.Int32
}

func (t *passTx) InTx(_ context.Context, fn func(s Stores) error) error {
	t.calls.Add(1)
	return fn(t.stores)
}

type fakeUsers struct {
	UserStore
	byEmail  map[string]*model.User
	profiles map[uuid.UUID]*model.Profile
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*model.User{}, profiles: map[uuid.UUID]*model.Profile{}}
}

func (f *fakeUsers) CreateUser(_ context.Context, u *model.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return repository.ErrConflict
	}
	u.ID = uuid.New()
	u.CreatedAt = fixedNow
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) SetRole(_ context.Context, email, role string) error {
	u, ok := f.byEmail[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUsers) CreateProfile(_ context.Context, p *model.Profile) error {
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeUsers) GetProfile(_ context.Context, userID uuid.UUID) (*model.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeUsers) UpsertProfile(_ context.Context, userID uuid.UUID, in model.ProfileInput) (*model.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		p = &model.Profile{ID: userID, TZ: model.DefaultTimezone}
		f.profiles[userID] = p
	}
	if in.TZ != "" {
		p.TZ = in.TZ
	}
	if in.DisplayName != nil {
		p.DisplayName = in.DisplayName
	}
	if in.GoalDesc != nil {
		p.GoalDesc = in.GoalDesc
	}
	return p, nil
}

type fakeAttempts struct {
	counts map[string]int64
	resets int
}

func (f *fakeAttempts) IncrementAndGet(_ context.Context, key string) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeAttempts) Get(_ context.Context, key string) (int64, error) { return f.counts[key], nil }

func (f *fakeAttempts) Reset(_ context.Context, key string) error {
	delete(f.counts, key)
	f.resets++
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]*Dashboard
	invalidated int
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string]*Dashboard{}} }

func (c *fakeCache) Get(_ context.Context, userID uuid.UUID, date model.Date) (*Dashboard, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.entries[userID.String()+date.String()]
	return d, ok
}

func (c *fakeCache) Set(_ context.Context, userID uuid.UUID, date model.Date, d *Dashboard) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID.String()+date.String()] = d
}

func (c *fakeCache) Invalidate(context.Context, uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.entries = map[string]*Dashboard{}
}

type fakeHabits struct {
	HabitStore
	habits   []model.Habit
	logs     []model.HabitLog
	defaults int
}

func (f *fakeHabits) List(_ context.Context, _ uuid.UUID, activeOnly bool) ([]model.Habit, error) {
	var out []model.Habit
	for _, h := range f.habits {
		if !activeOnly || h.IsActive {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHabits) ListLogs(_ context.Context, _ uuid.UUID, from, to model.Date, _ *int64) ([]model.HabitLog, error) {
	var out []model.HabitLog
	for _, l := range f.logs {
		if (from.IsZero() || !l.Date.Before(from)) && (to.IsZero() || !l.Date.After(to)) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeHabits) UpsertLog(_ context.Context, userID uuid.UUID, habitID int64, date model.Date, value float64) (*model.HabitLog, error) {
	for _, h := range f.habits {
		if h.ID == habitID && h.UserID == userID {
			l := model.HabitLog{ID: int64(len(f.logs) + 1), UserID: userID, HabitID: habitID, Date: date, Value: value}
			f.logs = append(f.logs, l)
			return &l, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeHabits) CreateDefaults(_ context.Context, _ uuid.UUID, habits []model.Habit) (int, error) {
	created := 0
	for _, h := range habits {
		exists := false
		for _, e := range f.habits {
			if e.Name == h.Name {
				exists = true
			}
		}
		if !exists {
			h.ID = int64(len(f.habits) + 1)
			f.habits = append(f.habits, h)
			created++
		}
	}
	f.defaults++
	return created, nil
}

type fakeDays struct {
	DayStore
	stats    []model.DayStats
	lastTZ   string
	getErr   error
	statsErr error
}

func (f *fakeDays) Get(context.Context, uuid.UUID, model.Date) (*model.Day, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDays) Stats(_ context.Context, _ uuid.UUID, from, to model.Date, tz string) ([]model.DayStats, error) {
	f.lastTZ = tz
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	var out []model.DayStats
	for d := from; !d.After(to); d = d.AddDays(1) {
		row := model.DayStats{Date: d}
		for _, s := range f.stats {
			if s.Date.Equal(d) {
				row = s
			}
		}
		out = append(out, row)
	}
	return out, nil
}

type fakeActivity struct {
	ActivityStore
	content []model.ContentLog
	reps    map[model.Date]*model.SocialReps
}

func (f *fakeActivity) AddSocialReps(_ context.Context, userID uuid.UUID, date model.Date, delta int, notes *string) (*model.SocialReps, error) {
	if f.reps == nil {
		f.reps = map[model.Date]*model.SocialReps{}
	}
	r, ok := f.reps[date]
	if !ok {
		r = &model.SocialReps{ID: int64(len(f.reps) + 1), UserID: userID, Date: date}
		f.reps[date] = r
	}
	r.Count += delta
	if notes != nil {
		r.Notes = notes
	}
	out := *r
	return &out, nil
}

func (f *fakeActivity) CreateContent(_ context.Context, c *model.ContentLog) error {
	c.ID = int64(len(f.content) + 1)
	f.content = append(f.content, *c)
	return nil
}

type fakePrompts struct {
	PromptStore
	top     *model.Prompt
	created []model.Prompt
	seeded  map[string]bool
}

func (f *fakePrompts) Top(context.Context, uuid.UUID, string) (*model.Prompt, error) {
	if f.top == nil {
		return nil, repository.ErrNotFound
	}
	return f.top, nil
}

func (f *fakePrompts) Create(_ context.Context, p *model.Prompt) error {
	p.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *p)
	return nil
}

func (f *fakePrompts) CreateGlobalIfMissing(_ context.Context, kind, text string, _ int) (bool, error) {
	if f.seeded == nil {
		f.seeded = map[string]bool{}
	}
	key := kind + "|" + text
	if f.seeded[key] {
		return false, nil
	}
	f.seeded[key] = true
	return true, nil
}

type fakeLeads struct {
	LeadStore
	leads    map[int64]*model.Lead
	outreach []model.OutreachLog
	touched  []int64
	due      []repository.DueFollowup
	marked   map[int64]model.Date
}

func newFakeLeads(leads ...model.Lead) *fakeLeads {
	f := &fakeLeads{leads: map[int64]*model.Lead{}, marked: map[int64]model.Date{}}
	for i := range leads {
		f.leads[leads[i].ID] = &leads[i]
	}
	return f
}

func (f *fakeLeads) SetStatus(_ context.Context, userID uuid.UUID, id int64, status string) (*model.Lead, string, error) {
	l, ok := f.leads[id]
	if !ok || l.UserID != userID {
		return nil, "", repository.ErrNotFound
	}
	prev := l.Status
	l.Status = status
	return l, prev, nil
}

func (f *fakeLeads) TouchLastContact(_ context.Context, userID uuid.UUID, id int64, at time.Time) error {
	l, ok := f.leads[id]
	if !ok || l.UserID != userID {
		return repository.ErrNotFound
	}
	l.LastContactAt = &at
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeLeads) CreateOutreach(_ context.Context, o *model.OutreachLog) error {
	o.ID = int64(len(f.outreach) + 1)
	f.outreach = append(f.outreach, *o)
	return nil
}

func (f *fakeLeads) ListOutreach(context.Context, uuid.UUID, *int64, model.Date, model.Date) ([]model.OutreachLog, error) {
	return f.outreach, nil
}

func (f *fakeLeads) ListDueFollowups(context.Context, int) ([]repository.DueFollowup, error) {
	return f.due, nil
}

func (f *fakeLeads) MarkFollowupSent(_ context.Context, id int64, date model.Date) error {
	f.marked[id] = date
	return nil
}

type fakeDeals struct {
	DealStore
	deals    []model.Deal
	lastFrom model.Date
	lastTo   model.Date
}

func (f *fakeDeals) List(_ context.Context, _ uuid.UUID, status string, from, to model.Date) ([]model.Deal, error) {
	f.lastFrom, f.lastTo = from, to
	var out []model.Deal
	for _, d := range f.deals {
		if status == "" || d.Status == status {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDeals) Create(_ context.Context, d *model.Deal) error {
	d.ID = int64(len(f.deals) + 1)
	f.deals = append(f.deals, *d)
	return nil
}

type fakeEvents struct {
	EventStore
	recorded map[string]model.Event
	created  []model.Event
	bookings []repository.LeadBookingRow
}

func (f *fakeEvents) Create(_ context.Context, e *model.Event) error {
	e.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *e)
	return nil
}

func (f *fakeEvents) RecordDomainEvent(_ context.Context, e *model.Event) (bool, error) {
	if f.recorded == nil {
		f.recorded = map[string]model.Event{}
	}
	if _, ok := f.recorded[*e.EventID]; ok {
		return false, nil
	}
	f.recorded[*e.EventID] = *e
	return true, nil
}

func (f *fakeEvents) ListLeadBookings(context.Context, uuid.UUID, model.Date, string) ([]repository.LeadBookingRow, error) {
	return f.bookings, nil
}

// world bundles one user's fakes.
type world struct {
	userID   uuid.UUID
	users    *fakeUsers
	habits   *fakeHabits
	days     *fakeDays
	activity *fakeActivity
	leads    *fakeLeads
	deals    *fakeDeals
	events   *fakeEvents
	prompts  *fakePrompts
	sink     *recordingSink
	tx       *passTx
	cache    *fakeCache
	cal      *Calendar
	logger   *zap.Logger
}

func newWorld() *world {
	w := &world{
		userID:   uuid.New(),
		users:    newFakeUsers(),
		habits:   &fakeHabits{},
		days:     &fakeDays{},
		activity: &fakeActivity{},
		leads:    newFakeLeads(),
		deals:    &fakeDeals{},
		events:   &fakeEvents{},
		prompts:  &fakePrompts{},
		sink:     &recordingSink{},
		cache:    newFakeCache(),
		logger:   zap.NewNop(),
	}
	w.users.profiles[w.userID] = &model.Profile{ID: w.userID, TZ: "Australia/Brisbane"}
	w.tx = &passTx{stores: w.stores()}
	w.cal = NewCalendar(w.users, clock)
	return w
}

func (w *world) stores() Stores {
	return Stores{
		Users:    w.users,
		Habits:   w.habits,
		Days:     w.days,
		Activity: w.activity,
		Leads:    w.leads,
		Deals:    w.deals,
		Events:   w.events,
		Prompts:  w.prompts,
		Outbox:   w.sink,
	}
}
