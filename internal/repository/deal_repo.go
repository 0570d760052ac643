package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sprintcoach/internal/model"
)

type DealRepository struct {
	db DBTX
}

func NewDealRepository(db DBTX) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) WithTx(tx pgx.Tx) *DealRepository {
	return &DealRepository{db: tx}
}

const dealColumns = `id, user_id, lead_id, title, amount, cogs, date, source, notes, status, probability, created_at`

func scanDeal(row pgx.Row, d *model.Deal) error {
	return row.Scan(&d.ID, &d.UserID, &d.LeadID, &d.Title, &d.Amount, &d.COGS, &d.Date, &d.Source, &d.Notes,
		&d.Status, &d.Probability, &d.CreatedAt)
}

// List returns deals newest first; empty status and zero dates disable those filters.
func (r *DealRepository) List(ctx context.Context, userID uuid.UUID, status string, from, to model.Date) ([]model.Deal, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+dealColumns+`
        FROM deals
        WHERE user_id = $1
          AND ($2 = '' OR status = $2)
          AND ($3::date IS NULL OR date >= $3)
          AND ($4::date IS NULL OR date <= $4)
        ORDER BY date DESC, id DESC
    `, userID, status, from, to)
	return collect(rows, err, "list deals", func(rows pgx.Rows, d *model.Deal) error { return scanDeal(rows, d) })
}

func (r *DealRepository) Get(ctx context.Context, userID uuid.UUID, id int64) (*model.Deal, error) {
	var d model.Deal
	if err := scanDeal(r.db.QueryRow(ctx, `SELECT `+dealColumns+` FROM deals WHERE user_id = $1 AND id = $2`, userID, id), &d); err != nil {
		return nil, mapErr(err, "get deal")
	}
	return &d, nil
}

func (r *DealRepository) Create(ctx context.Context, d *model.Deal) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO deals (user_id, lead_id, title, amount, cogs, date, source, notes, status, probability)
        VALUES ($1, (SELECT id FROM leads WHERE id = $2 AND user_id = $1), $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, lead_id, created_at
    `, d.UserID, d.LeadID, d.Title, d.Amount, d.COGS, d.Date, d.Source, d.Notes, d.Status, d.Probability).
		Scan(&d.ID, &d.LeadID, &d.CreatedAt)
	return mapErr(err, "create deal")
}

func (r *DealRepository) Update(ctx context.Context, userID uuid.UUID, id int64, p model.DealPatch) (*model.Deal, error) {
	var d model.Deal
	err := scanDeal(r.db.QueryRow(ctx, `
        UPDATE deals SET
            title = COALESCE($3, title),
            amount = COALESCE($4, amount),
            cogs = COALESCE($5, cogs),
            date = COALESCE($6, date),
            source = COALESCE($7, source),
            notes = COALESCE($8, notes),
            status = COALESCE($9, status),
            probability = COALESCE($10, probability)
        WHERE user_id = $1 AND id = $2
        RETURNING `+dealColumns,
		userID, id, p.Title, p.Amount, p.COGS, p.Date, p.Source, p.Notes, p.Status, p.Probability), &d)
	if err != nil {
		return nil, mapErr(err, "update deal")
	}
	return &d, nil
}

func (r *DealRepository) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM deals WHERE user_id = $1 AND id = $2`, userID, id)
	return expectRows(tag, err, "delete deal")
}
