package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"sprintcoach/internal/model"
)

type HabitRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewHabitRepository(db DBTX, logger *zap.Logger) *HabitRepository {
	return &HabitRepository{
		db:     db,
		logger: logger,
	}
}

func (r *HabitRepository) WithTx(tx pgx.Tx) *HabitRepository {
	return &HabitRepository{db: tx, logger: r.logger}
}

const habitColumns = `id, user_id, name, target, unit, is_active, sort_order, created_at`

func scanHabit(row pgx.Row, h *model.Habit) error {
	return row.Scan(&h.ID, &h.UserID, &h.Name, &h.Target, &h.Unit, &h.IsActive, &h.SortOrder, &h.CreatedAt)
}

func (r *HabitRepository) List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]model.Habit, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+habitColumns+`
        FROM habits
        WHERE user_id = $1 AND ($2 = FALSE OR is_active)
        ORDER BY sort_order, id
    `, userID, activeOnly)
	return collect(rows, err, "list habits", func(rows pgx.Rows, h *model.Habit) error { return scanHabit(rows, h) })
}

func (r *HabitRepository) Get(ctx context.Context, userID uuid.UUID, id int64) (*model.Habit, error) {
	var h model.Habit
	err := scanHabit(r.db.QueryRow(ctx, `SELECT `+habitColumns+` FROM habits WHERE user_id = $1 AND id = $2`, userID, id), &h)
	if err != nil {
		return nil, mapErr(err, "get habit")
	}
	return &h, nil
}

func (r *HabitRepository) Create(ctx context.Context, h *model.Habit) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO habits (user_id, name, target, unit, is_active, sort_order)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `, h.UserID, h.Name, h.Target, h.Unit, h.IsActive, h.SortOrder).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return mapErr(err, "create habit")
	}

	r.logger.Debug("Habit created", zap.Int64("habit_id", h.ID), zap.String("user_id", h.UserID.String()))
	return nil
}

// CreateDefaults inserts the given habits, skipping names the user already has.
func (r *HabitRepository) CreateDefaults(ctx context.Context, userID uuid.UUID, habits []model.Habit) (int, error) {
	created := 0
	for _, h := range habits {
		tag, err := r.db.Exec(ctx, `
            INSERT INTO habits (user_id, name, target, unit, is_active, sort_order)
            VALUES ($1, $2, $3, $4, TRUE, $5)
            ON CONFLICT (user_id, name) DO NOTHING
        `, userID, h.Name, h.Target, h.Unit, h.SortOrder)
		if err != nil {
			return created, mapErr(err, "create default habit")
		}
		created += int(tag.RowsAffected())
	}
	return created, nil
}

func (r *HabitRepository) Update(ctx context.Context, userID uuid.UUID, id int64, p model.HabitPatch) (*model.Habit, error) {
	var h model.Habit
	err := scanHabit(r.db.QueryRow(ctx, `
        UPDATE habits SET
            name = COALESCE($3, name),
            target = COALESCE($4, target),
            unit = COALESCE($5, unit),
            is_active = COALESCE($6, is_active),
            sort_order = COALESCE($7, sort_order)
        WHERE user_id = $1 AND id = $2
        RETURNING `+habitColumns,
		userID, id, p.Name, p.Target, p.Unit, p.IsActive, p.SortOrder), &h)
	if err != nil {
		return nil, mapErr(err, "update habit")
	}
	return &h, nil
}

// ToggleActive flips is_active and returns the updated habit.
func (r *HabitRepository) ToggleActive(ctx context.Context, userID uuid.UUID, id int64) (*model.Habit, error) {
	var h model.Habit
	err := scanHabit(r.db.QueryRow(ctx, `
        UPDATE habits SET is_active = NOT is_active
        WHERE user_id = $1 AND id = $2
        RETURNING `+habitColumns, userID, id), &h)
	if err != nil {
		return nil, mapErr(err, "toggle habit")
	}
	return &h, nil
}

func (r *HabitRepository) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM habits WHERE user_id = $1 AND id = $2`, userID, id)
	return expectRows(tag, err, "delete habit")
}

// UpsertLog sets the value of a habit on a date. Returns ErrNotFound when the habit is not the user's.
func (r *HabitRepository) UpsertLog(ctx context.Context, userID uuid.UUID, habitID int64, date model.Date, value float64) (*model.HabitLog, error) {
	var l model.HabitLog
	err := r.db.QueryRow(ctx, `
        INSERT INTO habit_logs (user_id, habit_id, date, value)
        SELECT $1, h.id, $3, $4 FROM habits h WHERE h.user_id = $1 AND h.id = $2
        ON CONFLICT (user_id, habit_id, date) DO UPDATE SET value = EXCLUDED.value
        RETURNING id, user_id, habit_id, date, value, created_at
    `, userID, habitID, date, value).Scan(&l.ID, &l.UserID, &l.HabitID, &l.Date, &l.Value, &l.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "upsert habit log")
	}
	return &l, nil
}

// ListLogs returns habit logs in [from, to]; zero dates leave that side open.
func (r *HabitRepository) ListLogs(ctx context.Context, userID uuid.UUID, from, to model.Date, habitID *int64) ([]model.HabitLog, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, user_id, habit_id, date, value, created_at
        FROM habit_logs
        WHERE user_id = $1
          AND ($2::date IS NULL OR date >= $2)
          AND ($3::date IS NULL OR date <= $3)
          AND ($4::bigint IS NULL OR habit_id = $4)
        ORDER BY date, habit_id
    `, userID, from, to, habitID)
	return collect(rows, err, "list habit logs", func(rows pgx.Rows, l *model.HabitLog) error {
		return rows.Scan(&l.ID, &l.UserID, &l.HabitID, &l.Date, &l.Value, &l.CreatedAt)
	})
}
