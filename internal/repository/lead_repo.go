package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"sprintcoach/internal/model"
)

type LeadRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewLeadRepository(db DBTX, logger *zap.Logger) *LeadRepository {
	return &LeadRepository{db: db, logger: logger}
}

func (r *LeadRepository) WithTx(tx pgx.Tx) *LeadRepository {
	return &LeadRepository{db: tx, logger: r.logger}
}

const leadColumns = `id, user_id, name, email, phone, business, niche, source, status, priority,
    next_action_date, notes, last_contact_at, created_at`

func scanLead(row pgx.Row, l *model.Lead) error {
	return row.Scan(&l.ID, &l.UserID, &l.Name, &l.Email, &l.Phone, &l.Business, &l.Niche, &l.Source,
		&l.Status, &l.Priority, &l.NextActionDate, &l.Notes, &l.LastContactAt, &l.CreatedAt)
}

// List returns leads ordered by priority then creation time; status filters when non-empty.
func (r *LeadRepository) List(ctx context.Context, userID uuid.UUID, status string) ([]model.Lead, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+leadColumns+`
        FROM leads
        WHERE user_id = $1 AND ($2 = '' OR status = $2)
        ORDER BY priority, created_at
    `, userID, status)
	return collect(rows, err, "list leads", func(rows pgx.Rows, l *model.Lead) error { return scanLead(rows, l) })
}

// ListCreated returns leads created on days in [from, to] in tz.
func (r *LeadRepository) ListCreated(ctx context.Context, userID uuid.UUID, from, to model.Date, tz string) ([]model.Lead, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+leadColumns+`
        FROM leads
        WHERE user_id = $1
          AND (created_at AT TIME ZONE $4)::date BETWEEN $2 AND $3
        ORDER BY created_at
    `, userID, from, to, tz)
	return collect(rows, err, "list created leads", func(rows pgx.Rows, l *model.Lead) error { return scanLead(rows, l) })
}

func (r *LeadRepository) Get(ctx context.Context, userID uuid.UUID, id int64) (*model.Lead, error) {
	var l model.Lead
	if err := scanLead(r.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE user_id = $1 AND id = $2`, userID, id), &l); err != nil {
		return nil, mapErr(err, "get lead")
	}
	return &l, nil
}

func (r *LeadRepository) Create(ctx context.Context, l *model.Lead) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO leads (user_id, name, email, phone, business, niche, source, status, priority, next_action_date, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, created_at
    `, l.UserID, l.Name, l.Email, l.Phone, l.Business, l.Niche, l.Source, l.Status, l.Priority, l.NextActionDate, l.Notes).
		Scan(&l.ID, &l.CreatedAt)
	return mapErr(err, "create lead")
}

func (r *LeadRepository) Update(ctx context.Context, userID uuid.UUID, id int64, p model.LeadPatch) (*model.Lead, error) {
	var l model.Lead
	err := scanLead(r.db.QueryRow(ctx, `
        UPDATE leads SET
            name = COALESCE($3, name),
            email = COALESCE($4, email),
            phone = COALESCE($5, phone),
            business = COALESCE($6, business),
            niche = COALESCE($7, niche),
            source = COALESCE($8, source),
            priority = COALESCE($9, priority),
            next_action_date = COALESCE($10, next_action_date),
            notes = COALESCE($11, notes)
        WHERE user_id = $1 AND id = $2
        RETURNING `+leadColumns,
		userID, id, p.Name, p.Email, p.Phone, p.Business, p.Niche, p.Source, p.Priority, p.NextActionDate, p.Notes), &l)
	if err != nil {
		return nil, mapErr(err, "update lead")
	}
	return &l, nil
}

// SetStatus changes the lead status and returns the lead with its previous status.
func (r *LeadRepository) SetStatus(ctx context.Context, userID uuid.UUID, id int64, status string) (*model.Lead, string, error) {
	var (
		l    model.Lead
		prev string
	)
	err := r.db.QueryRow(ctx, `SELECT status FROM leads WHERE user_id = $1 AND id = $2 FOR UPDATE`, userID, id).Scan(&prev)
	if err != nil {
		return nil, "", mapErr(err, "lock lead")
	}

	err = scanLead(r.db.QueryRow(ctx, `
        UPDATE leads SET status = $3
        WHERE user_id = $1 AND id = $2
        RETURNING `+leadColumns, userID, id, status), &l)
	if err != nil {
		return nil, "", mapErr(err, "set lead status")
	}

	r.logger.Debug("Lead status changed",
		zap.Int64("lead_id", id),
		zap.String("from", prev),
		zap.String("to", status),
	)
	return &l, prev, nil
}

func (r *LeadRepository) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM leads WHERE user_id = $1 AND id = $2`, userID, id)
	return expectRows(tag, err, "delete lead")
}

func (r *LeadRepository) TouchLastContact(ctx context.Context, userID uuid.UUID, id int64, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE leads SET last_contact_at = $3 WHERE user_id = $1 AND id = $2`, userID, id, at)
	return expectRows(tag, err, "touch lead")
}

// DueFollowup is an open lead whose next action date has arrived in its owner's time zone.
type DueFollowup struct {
	Lead model.Lead
	TZ   string
}

// ListDueFollowups returns open leads whose next action date is today or earlier in the owner's
// time zone and that have not been announced for that date yet. Rows are locked until the
// surrounding transaction ends.
func (r *LeadRepository) ListDueFollowups(ctx context.Context, limit int) ([]DueFollowup, error) {
	rows, err := r.db.Query(ctx, `
        SELECT l.id, l.user_id, l.name, l.email, l.phone, l.business, l.niche, l.source, l.status, l.priority,
               l.next_action_date, l.notes, l.last_contact_at, l.created_at, p.tz
        FROM leads l
        JOIN profiles p ON p.id = l.user_id
        WHERE l.status NOT IN ('Won', 'Lost')
          AND l.next_action_date IS NOT NULL
          AND l.next_action_date <= (NOW() AT TIME ZONE p.tz)::date
          AND l.followup_sent_for IS DISTINCT FROM l.next_action_date
        ORDER BY l.next_action_date, l.id
        LIMIT $1
        FOR UPDATE OF l SKIP LOCKED
    `, limit)
	return collect(rows, err, "list due followups", func(rows pgx.Rows, d *DueFollowup) error {
		l := &d.Lead
		return rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Email, &l.Phone, &l.Business, &l.Niche, &l.Source,
			&l.Status, &l.Priority, &l.NextActionDate, &l.Notes, &l.LastContactAt, &l.CreatedAt, &d.TZ)
	})
}

func (r *LeadRepository) MarkFollowupSent(ctx context.Context, id int64, date model.Date) error {
	tag, err := r.db.Exec(ctx, `UPDATE leads SET followup_sent_for = $2 WHERE id = $1`, id, date)
	return expectRows(tag, err, "mark followup sent")
}

// Outreach

func (r *LeadRepository) CreateOutreach(ctx context.Context, o *model.OutreachLog) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO outreach_logs (user_id, lead_id, date, channel, notes, outcome)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `, o.UserID, o.LeadID, o.Date, o.Channel, o.Notes, o.Outcome).Scan(&o.ID, &o.CreatedAt)
	return mapErr(err, "create outreach")
}

func (r *LeadRepository) ListOutreach(ctx context.Context, userID uuid.UUID, leadID *int64, from, to model.Date) ([]model.OutreachLog, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, user_id, lead_id, date, channel, notes, outcome, created_at
        FROM outreach_logs
        WHERE user_id = $1
          AND ($2::bigint IS NULL OR lead_id = $2)
          AND ($3::date IS NULL OR date >= $3)
          AND ($4::date IS NULL OR date <= $4)
        ORDER BY date DESC, id DESC
    `, userID, leadID, from, to)
	return collect(rows, err, "list outreach", func(rows pgx.Rows, o *model.OutreachLog) error {
		return rows.Scan(&o.ID, &o.UserID, &o.LeadID, &o.Date, &o.Channel, &o.Notes, &o.Outcome, &o.CreatedAt)
	})
}

func (r *LeadRepository) DeleteOutreach(ctx context.Context, userID uuid.UUID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM outreach_logs WHERE user_id = $1 AND id = $2`, userID, id)
	return expectRows(tag, err, "delete outreach")
}
