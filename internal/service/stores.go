package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sprintcoach/internal/model"
	"sprintcoach/internal/repository"
	"sprintcoach/pkg/outbox"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	SetRole(ctx context.Context, email, role string) error
	CreateProfile(ctx context.Context, p *model.Profile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	UpsertProfile(ctx context.Context, userID uuid.UUID, in model.ProfileInput) (*model.Profile, error)
}

type HabitStore interface {
	List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]model.Habit, error)
	Get(ctx context.Context, userID uuid.UUID, id int64) (*model.Habit, error)
	Create(ctx context.Context, h *model.Habit) error
	CreateDefaults(ctx context.Context, userID uuid.UUID, habits []model.Habit) (int, error)
	Update(ctx context.Context, userID uuid.UUID, id int64, p model.HabitPatch) (*model.Habit, error)
	ToggleActive(ctx context.Context, userID uuid.UUID, id int64) (*model.Habit, error)
	Delete(ctx context.Context, userID uuid.UUID, id int64) error
	UpsertLog(ctx context.Context, userID uuid.UUID, habitID int64, date model.Date, value float64) (*model.HabitLog, error)
	ListLogs(ctx context.Context, userID uuid.UUID, from, to model.Date, habitID *int64) ([]model.HabitLog, error)
}

type DayStore interface {
	Get(ctx context.Context, userID uuid.UUID, date model.Date) (*model.Day, error)
	Upsert(ctx context.Context, userID uuid.UUID, date model.Date, in model.DayInput) (*model.Day, error)
	List(ctx context.Context, userID uuid.UUID, from, to model.Date) ([]model.Day, error)
	Stats(ctx context.Context, userID uuid.UUID, from, to model.Date, tz string) ([]model.DayStats, error)
}

type ActivityStore interface {
	CreateContent(ctx context.Context, c *model.ContentLog) error
	ListContent(ctx context.Context, userID uuid.UUID, from, to model.Date) ([]model.ContentLog, error)
	DeleteContent(ctx context.Context, userID uuid.UUID, id int64) (model.Date, error)
	CreateDeepwork(ctx context.Context, d *model.DeepworkLog) error
	ListDeepwork(ctx context.Context, userID uuid.UUID, from, to model.Date, tz string) ([]model.DeepworkLog, error)
	DeleteDeepwork(ctx context.Context, userID uuid.UUID, id int64) (time.Time, error)
	AddSocialReps(ctx context.Context, userID uuid.UUID, date model.Date, delta int, notes *string) (*model.SocialReps, error)
	SetSocialReps(ctx context.Context, userID uuid.UUID, date model.Date, count int, notes *string) (*model.SocialReps, error)
	ListSocialReps(ctx context.Context, userID uuid.UUID, from, to model.Date) ([]model.SocialReps, error)
	CreateWorkout(ctx context.Context, w *model.Workout) error
	ListWorkouts(ctx context.Context, userID uuid.UUID, from, to model.Date) ([]model.Workout, error)
	DeleteWorkout(ctx context.Context, userID uuid.UUID, id int64) (model.Date, error)
	UpsertSleep(ctx context.Context, userID uuid.UUID, date model.Date, in model.SleepInput) (*model.SleepLog, error)
	ListSleep(ctx context.Context, userID uuid.UUID, from, to model.Date) ([]model.SleepLog, error)
}

type LeadStore interface {
	List(ctx context.Context, userID uuid.UUID, status string) ([]model.Lead, error)
	ListCreated(ctx context.Context, userID uuid.UUID, from, to model.Date, tz string) ([]model.Lead, error)
	Get(ctx context.Context, userID uuid.UUID, id int64) (*model.Lead, error)
	Create(ctx context.Context, l *model.Lead) error
	Update(ctx context.Context, userID uuid.UUID, id int64, p model.LeadPatch) (*model.Lead, error)
	SetStatus(ctx context.Context, userID uuid.UUID, id int64, status string) (*model.Lead, string, error)
	Delete(ctx context.Context, userID uuid.UUID, id int64) error
	TouchLastContact(ctx context.Context, userID uuid.UUID, id int64, at time.Time) error
	ListDueFollowups(ctx context.Context, limit int) ([]repository.DueFollowup, error)
	MarkFollowupSent(ctx context.Context, id int64, date model.Date) error
	CreateOutreach(ctx context.Context, o *model.OutreachLog) error
	ListOutreach(ctx context.Context, userID uuid.UUID, leadID *int64, from, to model.Date) ([]model.OutreachLog, error)
	DeleteOutreach(ctx context.Context, userID uuid.UUID, id int64) error
}

type DealStore interface {
	List(ctx context.Context, userID uuid.UUID, status string, from, to model.Date) ([]model.Deal, error)
	Get(ctx context.Context, userID uuid.UUID, id int64) (*model.Deal, error)
	Create(ctx context.Context, d *model.Deal) error
	Update(ctx context.Context, userID uuid.UUID, id int64, p model.DealPatch) (*model.Deal, error)
	Delete(ctx context.Context, userID uuid.UUID, id int64) error
}

type StoryStore interface {
	List(ctx context.Context, userID uuid.UUID, f model.StoryFilter) ([]model.Story, error)
	Get(ctx context.Context, userID uuid.UUID, id int64) (*model.Story, error)
	Create(ctx context.Context, s *model.Story) error
	Update(ctx context.Context, userID uuid.UUID, id int64, p model.StoryPatch) (*model.Story, error)
	Delete(ctx context.Context, userID uuid.UUID, id int64) error
	Stats(ctx context.Context, userID uuid.UUID) (model.StoryStats, error)
}

type EventStore interface {
	List(ctx context.Context, userID uuid.UUID, name string, limit int) ([]model.Event, error)
	Create(ctx context.Context, e *model.Event) error
	RecordDomainEvent(ctx context.Context, e *model.Event) (bool, error)
	ListLeadBookings(ctx context.Context, userID uuid.UUID, from model.Date, tz string) ([]repository.LeadBookingRow, error)
}

type PromptStore interface {
	ListVisible(ctx context.Context, userID uuid.UUID, kind string) ([]model.Prompt, error)
	Top(ctx context.Context, userID uuid.UUID, kind string) (*model.Prompt, error)
	Create(ctx context.Context, p *model.Prompt) error
	CreateGlobalIfMissing(ctx context.Context, kind, text string, weight int) (bool, error)
	DeleteOwn(ctx context.Context, userID uuid.UUID, id int64) error
}

// EventSink records a domain event for later publication.
type EventSink interface {
	Emit(ctx context.Context, aggregateType, aggregateID, routingKey string, userID uuid.UUID, payload any) error
}

// Stores groups the repositories one unit of work needs.
type Stores struct {
	Users    UserStore
	Habits   HabitStore
	Days     DayStore
	Activity ActivityStore
	Leads    LeadStore
	Deals    DealStore
	Stories  StoryStore
	Events   EventStore
	Prompts  PromptStore
	Outbox   EventSink
}

// Transactor runs fn with stores bound to a single transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(s Stores) error) error
}

// PgStores wires the postgres repositories for both pool-level reads and transactional writes.
type PgStores struct {
	store   *repository.Store
	outbox  *outbox.Repository
	users   *repository.UserRepository
	habits  *repository.HabitRepository
	days    *repository.DayRepository
	act     *repository.ActivityRepository
	leads   *repository.LeadRepository
	deals   *repository.DealRepository
	stories *repository.StoryRepository
	events  *repository.EventRepository
	prompts *repository.PromptRepository
}

func NewPgStores(store *repository.Store, obx *outbox.Repository, habits *repository.HabitRepository, leads *repository.LeadRepository) *PgStores {
	db := store.DB()
	return &PgStores{
		store:   store,
		outbox:  obx,
		users:   repository.NewUserRepository(db),
		habits:  habits,
		days:    repository.NewDayRepository(db),
		act:     repository.NewActivityRepository(db),
		leads:   leads,
		deals:   repository.NewDealRepository(db),
		stories: repository.NewStoryRepository(db),
		events:  repository.NewEventRepository(db),
		prompts: repository.NewPromptRepository(db),
	}
}

// Stores returns pool-bound stores. Events emitted through them are written outside any transaction.
func (p *PgStores) Stores() Stores {
	return Stores{
		Users: p.users, Habits: p.habits, Days: p.days, Activity: p.act,
		Leads: p.leads, Deals: p.deals, Stories: p.stories, Events: p.events, Prompts: p.prompts,
		Outbox: outboxSink{q: p.store.DB(), repo: p.outbox},
	}
}

func (p *PgStores) InTx(ctx context.Context, fn func(s Stores) error) error {
	return p.store.InTx(ctx, func(tx pgx.Tx) error {
		return fn(Stores{
			Users:    p.users.WithTx(tx),
			Habits:   p.habits.WithTx(tx),
			Days:     p.days.WithTx(tx),
			Activity: p.act.WithTx(tx),
			Leads:    p.leads.WithTx(tx),
			Deals:    p.deals.WithTx(tx),
			Stories:  p.stories.WithTx(tx),
			Events:   p.events.WithTx(tx),
			Prompts:  p.prompts.WithTx(tx),
			Outbox:   outboxSink{q: tx, repo: p.outbox},
		})
	})
}

type outboxSink struct {
	q    outbox.Querier
	repo *outbox.Repository
}

func (s outboxSink) Emit(ctx context.Context, aggregateType, aggregateID, routingKey string, userID uuid.UUID, payload any) error {
	_, err := outbox.InsertEventInTx(ctx, s.q, s.repo, aggregateType, aggregateID, routingKey, userID.String(), payload)
	return err
}
