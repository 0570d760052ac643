package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sprintcoach/internal/model"
)

// ActivityRepository stores the quick-add logs: content, deep work, social reps, workouts and sleep.
type ActivityRepository struct {
	db DBTX
}

func NewActivityRepository(db DBTX) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) WithTx(tx pgx.Tx) *ActivityRepository {
	return &ActivityRepository{db: tx}
}

// Content

func (r *ActivityRepository) CreateContent(ctx context.Context, c *model.ContentLog) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO content_logs (user_id, date, kind, url, caption, minutes_spent)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `, c.UserID, c.Date, c.Kind, c.URL, c.Caption, c.MinutesSpent).Scan(&c.ID, &c.CreatedAt)
	return mapErr(err, "create content log")
}

func (r *ActivityRepository) ListContent(ctx context.Context, userID uuid.UUID, from, to model.Date) ([]model.ContentLog, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, user_id, date, kind, url, caption, minutes_spent, created_at
        FROM content_logs
        WHERE user_id = $1
          AND ($2::date IS NULL OR date >= $2)
          AND ($3::date IS NULL OR date <= $3)
        ORDER BY date DESC, id DESC
    `, userID, from, to)
	return collect(rows, err, "list content logs", func(rows pgx.Rows, c *model.ContentLog) error {
		return rows.Scan(&c.ID, &c.UserID, &c.Date, &c.Kind, &c.URL, &c.Caption, &c.MinutesSpent, &c.CreatedAt)
	})
}

// DeleteContent removes a content log and returns its date.
func (r *ActivityRepository) DeleteContent(ctx context.Context, userID uuid.UUID, id int64) (model.Date, error) {
	return r.deleteDated(ctx, `DELETE FROM content_logs WHERE user_id = $1 AND id = $2 RETURNING date`, userID, id)
}

// Deep work

func (r *ActivityRepository) CreateDeepwork(ctx context.Context, d *model.DeepworkLog) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO deepwork_logs (user_id, start_time, minutes, tag)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `, d.UserID, d.StartTime, d.Minutes, d.Tag).Scan(&d.ID, &d.CreatedAt)
	return mapErr(err, "create deepwork log")
}

// ListDeepwork returns sessions whose start falls in [from, to] in tz.
func (r *ActivityRepository) ListDeepwork(ctx context.Context, userID uuid.UUID, from, to model.Date, tz string) ([]model.DeepworkLog, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, user_id, start_time, minutes, tag, created_at
        FROM deepwork_logs
        WHERE user_id = $1
          AND ($2::date IS NULL OR (start_time AT TIME ZONE $4)::date >= $2)
          AND ($3::date IS NULL OR (start_time AT TIME ZONE $4)::date <= $3)
        ORDER BY start_time DESC
    `, userID, from, to, tz)
	return collect(rows, err, "list deepwork logs", func(rows pgx.Rows, d *model.DeepworkLog) error {
		return rows.Scan(&d.ID, &d.UserID, &d.StartTime, &d.Minutes, &d.Tag, &d.CreatedAt)
	})
}

// DeleteDeepwork removes a session and returns its start time.
func (r *ActivityRepository) DeleteDeepwork(ctx context.Context, userID uuid.UUID, id int64) (time.Time, error) {
	var start time.Time
	err := r.db.QueryRow(ctx, `DELETE FROM deepwork_logs WHERE user_id = $1 AND id = $2 RETURNING start_time`, userID, id).Scan(&start)
	if err != nil {
		return time.Time{}, mapErr(err, "delete deepwork log")
	}
	return start, nil
}

// Social reps

// AddSocialReps increments the date's count atomically, creating the row when needed.
func (r *ActivityRepository) AddSocialReps(ctx context.Context, userID uuid.UUID, date model.Date, delta int, notes *string) (*model.SocialReps, error) {
	return r.upsertReps(ctx, `count = social_reps.count + EXCLUDED.count`, userID, date, delta, notes)
}

// SetSocialReps replaces the date's count.
func (r *ActivityRepository) SetSocialReps(ctx context.Context, userID uuid.UUID, date model.Date, count int, notes *string) (*model.SocialReps, error) {
	return r.upsertReps(ctx, `count = EXCLUDED.count`, userID, date, count, notes)
}

func (r *ActivityRepository) upsertReps(ctx context.Context, set string, userID uuid.UUID, date model.Date, count int, notes *string) (*model.SocialReps, error) {
	var s model.SocialReps
	err := r.db.QueryRow(ctx, `
        INSERT INTO social_reps (user_id, date, count, notes)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, date) DO UPDATE SET
            `+set+`,
            notes = COALESCE(EXCLUDED.notes, social_reps.notes)
        RETURNING id, user_id, date, count, notes, created_at
    `, userID, date, count, notes).Scan(&s.ID, &s.UserID, &s.Date, &s.Count, &s.Notes, &s.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "upsert social reps")
	}
	return &s, nil
}

func (r *ActivityRepository) ListSocialReps(ctx context.Context, userID uuid.UUID, from, to model.Date) ([]model.SocialReps, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, user_id, date, count, notes, created_at
        FROM social_reps
        WHERE user_id = $1
          AND ($2::date IS NULL OR date >= $2)
          AND ($3::date IS NULL OR date <= $3)
        ORDER BY date DESC
    `, userID, from, to)
	return collect(rows, err, "list social reps", func(rows pgx.Rows, s *model.SocialReps) error {
		return rows.Scan(&s.ID, &s.UserID, &s.Date, &s.Count, &s.Notes, &s.CreatedAt)
	})
}

// Workouts

func (r *ActivityRepository) CreateWorkout(ctx context.Context, w *model.Workout) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO workouts (user_id, date, type, duration_min, notes)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `, w.UserID, w.Date, w.Type, w.DurationMin, w.Notes).Scan(&w.ID, &w.CreatedAt)
	return mapErr(err, "create workout")
}

func (r *ActivityRepository) ListWorkouts(ctx context.Context, userID uuid.UUID, from, to model.Date) ([]model.Workout, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, user_id, date, type, duration_min, notes, created_at
        FROM workouts
        WHERE user_id = $1
          AND ($2::date IS NULL OR date >= $2)
          AND ($3::date IS NULL OR date <= $3)
        ORDER BY date DESC, id DESC
    `, userID, from, to)
	return collect(rows, err, "list workouts", func(rows pgx.Rows, w *model.Workout) error {
		return rows.Scan(&w.ID, &w.UserID, &w.Date, &w.Type, &w.DurationMin, &w.Notes, &w.CreatedAt)
	})
}

func (r *ActivityRepository) DeleteWorkout(ctx context.Context, userID uuid.UUID, id int64) (model.Date, error) {
	return r.deleteDated(ctx, `DELETE FROM workouts WHERE user_id = $1 AND id = $2 RETURNING date`, userID, id)
}

// Sleep

func (r *ActivityRepository) UpsertSleep(ctx context.Context, userID uuid.UUID, date model.Date, in model.SleepInput) (*model.SleepLog, error) {
	var s model.SleepLog
	err := r.db.QueryRow(ctx, `
        INSERT INTO sleep_logs (user_id, date, hours, quality)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, date) DO UPDATE SET
            hours = EXCLUDED.hours,
            quality = COALESCE(EXCLUDED.quality, sleep_logs.quality)
        RETURNING id, user_id, date, hours, quality, created_at
    `, userID, date, in.Hours, in.Quality).Scan(&s.ID, &s.UserID, &s.Date, &s.Hours, &s.Quality, &s.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "upsert sleep log")
	}
	return &s, nil
}

func (r *ActivityRepository) ListSleep(ctx context.Context, userID uuid.UUID, from, to model.Date) ([]model.SleepLog, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, user_id, date, hours, quality, created_at
        FROM sleep_logs
        WHERE user_id = $1
          AND ($2::date IS NULL OR date >= $2)
          AND ($3::date IS NULL OR date <= $3)
        ORDER BY date DESC
    `, userID, from, to)
	return collect(rows, err, "list sleep logs", func(rows pgx.Rows, s *model.SleepLog) error {
		return rows.Scan(&s.ID, &s.UserID, &s.Date, &s.Hours, &s.Quality, &s.CreatedAt)
	})
}

func (r *ActivityRepository) deleteDated(ctx context.Context, query string, userID uuid.UUID, id int64) (model.Date, error) {
	var d model.Date
	if err := r.db.QueryRow(ctx, query, userID, id).Scan(&d); err != nil {
		return model.Date{}, mapErr(err, "delete")
	}
	return d, nil
}
