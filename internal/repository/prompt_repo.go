package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sprintcoach/internal/model"
)

type PromptRepository struct {
	db DBTX
}

func NewPromptRepository(db DBTX) *PromptRepository {
	return &PromptRepository{db: db}
}

func (r *PromptRepository) WithTx(tx pgx.Tx) *PromptRepository {
	return &PromptRepository{db: tx}
}

const promptColumns = `id, user_id, kind, text, weight, created_at`

func scanPrompt(row pgx.Row, p *model.Prompt) error {
	return row.Scan(&p.ID, &p.UserID, &p.Kind, &p.Text, &p.Weight, &p.CreatedAt)
}

// ListVisible returns global prompts and the user's own, own first then by weight.
func (r *PromptRepository) ListVisible(ctx context.Context, userID uuid.UUID, kind string) ([]model.Prompt, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+promptColumns+`
        FROM prompts
        WHERE (user_id IS NULL OR user_id = $1) AND ($2 = '' OR kind = $2)
        ORDER BY (user_id IS NULL), weight DESC, id
    `, userID, kind)
	return collect(rows, err, "list prompts", func(rows pgx.Rows, p *model.Prompt) error { return scanPrompt(rows, p) })
}

// Top returns the highest-weight prompt of kind, preferring the user's own over global ones.
func (r *PromptRepository) Top(ctx context.Context, userID uuid.UUID, kind string) (*model.Prompt, error) {
	var p model.Prompt
	err := scanPrompt(r.db.QueryRow(ctx, `
        SELECT `+promptColumns+`
        FROM prompts
        WHERE (user_id IS NULL OR user_id = $1) AND kind = $2
        ORDER BY (user_id IS NULL), weight DESC, id
        LIMIT 1
    `, userID, kind), &p)
	if err != nil {
		return nil, mapErr(err, "top prompt")
	}
	return &p, nil
}

func (r *PromptRepository) Create(ctx context.Context, p *model.Prompt) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO prompts (user_id, kind, text, weight)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `, p.UserID, p.Kind, p.Text, p.Weight).Scan(&p.ID, &p.CreatedAt)
	return mapErr(err, "create prompt")
}

// CreateGlobalIfMissing inserts a global prompt unless one with the same kind and text exists.
func (r *PromptRepository) CreateGlobalIfMissing(ctx context.Context, kind, text string, weight int) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        INSERT INTO prompts (user_id, kind, text, weight)
        SELECT NULL, $1, $2, $3
        WHERE NOT EXISTS (SELECT 1 FROM prompts WHERE user_id IS NULL AND kind = $1 AND text = $2)
    `, kind, text, weight)
	if err != nil {
		return false, mapErr(err, "seed prompt")
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteOwn removes one of the user's own prompts; global prompts are never matched.
func (r *PromptRepository) DeleteOwn(ctx context.Context, userID uuid.UUID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM prompts WHERE user_id = $1 AND id = $2`, userID, id)
	return expectRows(tag, err, "delete prompt")
}
