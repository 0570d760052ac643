package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sprintcoach/internal/model"
)

type DayRepository struct {
	db DBTX
}

func NewDayRepository(db DBTX) *DayRepository {
	return &DayRepository{db: db}
}

func (r *DayRepository) WithTx(tx pgx.Tx) *DayRepository {
	return &DayRepository{db: tx}
}

func (r *DayRepository) Get(ctx context.Context, userID uuid.UUID, date model.Date) (*model.Day, error) {
	var d model.Day
	err := r.db.QueryRow(ctx, `
        SELECT id, user_id, date, mood, notes, created_at
        FROM days WHERE user_id = $1 AND date = $2
    `, userID, date).Scan(&d.ID, &d.UserID, &d.Date, &d.Mood, &d.Notes, &d.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "get day")
	}
	return &d, nil
}

func (r *DayRepository) Upsert(ctx context.Context, userID uuid.UUID, date model.Date, in model.DayInput) (*model.Day, error) {
	var d model.Day
	err := r.db.QueryRow(ctx, `
        INSERT INTO days (user_id, date, mood, notes)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, date) DO UPDATE SET
            mood = COALESCE(EXCLUDED.mood, days.mood),
            notes = COALESCE(EXCLUDED.notes, days.notes)
        RETURNING id, user_id, date, mood, notes, created_at
    `, userID, date, in.Mood, in.Notes).Scan(&d.ID, &d.UserID, &d.Date, &d.Mood, &d.Notes, &d.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "upsert day")
	}
	return &d, nil
}

func (r *DayRepository) List(ctx context.Context, userID uuid.UUID, from, to model.Date) ([]model.Day, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, user_id, date, mood, notes, created_at
        FROM days
        WHERE user_id = $1
          AND ($2::date IS NULL OR date >= $2)
          AND ($3::date IS NULL OR date <= $3)
        ORDER BY date
    `, userID, from, to)
	return collect(rows, err, "list days", func(rows pgx.Rows, d *model.Day) error {
		return rows.Scan(&d.ID, &d.UserID, &d.Date, &d.Mood, &d.Notes, &d.CreatedAt)
	})
}

// Stats returns one row per day in [from, to] with the counts the daily score needs.
// Deep work sessions are bucketed by their start time in tz.
func (r *DayRepository) Stats(ctx context.Context, userID uuid.UUID, from, to model.Date, tz string) ([]model.DayStats, error) {
	rows, err := r.db.Query(ctx, `
        SELECT d::date,
            (SELECT count(*) FROM content_logs c WHERE c.user_id = $1 AND c.date = d::date),
            (SELECT COALESCE(sum(w.minutes), 0) FROM deepwork_logs w
                WHERE w.user_id = $1 AND (w.start_time AT TIME ZONE $4)::date = d::date),
            (SELECT COALESCE(sum(s.count), 0) FROM social_reps s WHERE s.user_id = $1 AND s.date = d::date),
            (SELECT count(*) FROM workouts o WHERE o.user_id = $1 AND o.date = d::date),
            EXISTS (SELECT 1 FROM sleep_logs l WHERE l.user_id = $1 AND l.date = d::date),
            (SELECT y.mood FROM days y WHERE y.user_id = $1 AND y.date = d::date)
        FROM generate_series($2::date, $3::date, interval '1 day') AS d
        ORDER BY d
    `, userID, from, to, tz)
	return collect(rows, err, "day stats", func(rows pgx.Rows, s *model.DayStats) error {
		return rows.Scan(&s.Date, &s.ContentCount, &s.DeepWorkMin, &s.SocialReps, &s.WorkoutCount, &s.SleepLogged, &s.Mood)
	})
}
