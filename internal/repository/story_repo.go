package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sprintcoach/internal/model"
)

type StoryRepository struct {
	db DBTX
}

func NewStoryRepository(db DBTX) *StoryRepository {
	return &StoryRepository{db: db}
}

func (r *StoryRepository) WithTx(tx pgx.Tx) *StoryRepository {
	return &StoryRepository{db: tx}
}

const storyColumns = `id, user_id, date, title, archetype, sensory_detail, conflict, turning_point, lesson,
    draft, tags, status, created_at, updated_at`

func scanStory(row pgx.Row, s *model.Story) error {
	return row.Scan(&s.ID, &s.UserID, &s.Date, &s.Title, &s.Archetype, &s.SensoryDetail, &s.Conflict,
		&s.TurningPoint, &s.Lesson, &s.Draft, &s.Tags, &s.Status, &s.CreatedAt, &s.UpdatedAt)
}

// List returns stories newest-updated first. Search matches title, draft and tags case-insensitively.
func (r *StoryRepository) List(ctx context.Context, userID uuid.UUID, f model.StoryFilter) ([]model.Story, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+storyColumns+`
        FROM stories
        WHERE user_id = $1
          AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR draft ILIKE '%' || $2 || '%'
               OR EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE t ILIKE '%' || $2 || '%'))
          AND ($3 = '' OR archetype = $3)
          AND ($4 = '' OR status = $4)
        ORDER BY updated_at DESC, id DESC
    `, userID, f.Search, f.Archetype, f.Status)
	return collect(rows, err, "list stories", func(rows pgx.Rows, s *model.Story) error { return scanStory(rows, s) })
}

func (r *StoryRepository) Get(ctx context.Context, userID uuid.UUID, id int64) (*model.Story, error) {
	var s model.Story
	if err := scanStory(r.db.QueryRow(ctx, `SELECT `+storyColumns+` FROM stories WHERE user_id = $1 AND id = $2`, userID, id), &s); err != nil {
		return nil, mapErr(err, "get story")
	}
	return &s, nil
}

func (r *StoryRepository) Create(ctx context.Context, s *model.Story) error {
	if s.Tags == nil {
		s.Tags = []string{}
	}
	err := r.db.QueryRow(ctx, `
        INSERT INTO stories (user_id, date, title, archetype, sensory_detail, conflict, turning_point, lesson, draft, tags, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, created_at, updated_at
    `, s.UserID, s.Date, s.Title, s.Archetype, s.SensoryDetail, s.Conflict, s.TurningPoint, s.Lesson, s.Draft, s.Tags, s.Status).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapErr(err, "create story")
}

func (r *StoryRepository) Update(ctx context.Context, userID uuid.UUID, id int64, p model.StoryPatch) (*model.Story, error) {
	var tags []string
	if p.Tags != nil {
		tags = *p.Tags
		if tags == nil {
			tags = []string{}
		}
	}

	var s model.Story
	err := scanStory(r.db.QueryRow(ctx, `
        UPDATE stories SET
            date = COALESCE($3, date),
            title = COALESCE($4, title),
            archetype = COALESCE($5, archetype),
            sensory_detail = COALESCE($6, sensory_detail),
            conflict = COALESCE($7, conflict),
            turning_point = COALESCE($8, turning_point),
            lesson = COALESCE($9, lesson),
            draft = COALESCE($10, draft),
            tags = COALESCE($11, tags),
            status = COALESCE($12, status),
            updated_at = NOW()
        WHERE user_id = $1 AND id = $2
        RETURNING `+storyColumns,
		userID, id, p.Date, p.Title, p.Archetype, p.SensoryDetail, p.Conflict, p.TurningPoint, p.Lesson, p.Draft, tags, p.Status), &s)
	if err != nil {
		return nil, mapErr(err, "update story")
	}
	return &s, nil
}

func (r *StoryRepository) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM stories WHERE user_id = $1 AND id = $2`, userID, id)
	return expectRows(tag, err, "delete story")
}

func (r *StoryRepository) Stats(ctx context.Context, userID uuid.UUID) (model.StoryStats, error) {
	var s model.StoryStats
	err := r.db.QueryRow(ctx, `
        SELECT count(*),
               count(*) FILTER (WHERE status = 'draft'),
               count(*) FILTER (WHERE status = 'published'),
               count(*) FILTER (WHERE status = 'archived')
        FROM stories WHERE user_id = $1
    `, userID).Scan(&s.Total, &s.Drafts, &s.Published, &s.Archived)
	return s, mapErr(err, "story stats")
}
