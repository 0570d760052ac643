package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sprintcoach/internal/model"
)

type EventRepository struct {
	db DBTX
}

func NewEventRepository(db DBTX) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) WithTx(tx pgx.Tx) *EventRepository {
	return &EventRepository{db: tx}
}

const eventColumns = `id, user_id, time, name, payload, event_id::text, created_at`

func scanEvent(row pgx.Row, e *model.Event) error {
	return row.Scan(&e.ID, &e.UserID, &e.Time, &e.Name, &e.Payload, &e.EventID, &e.CreatedAt)
}

// List returns the most recent events; name filters when non-empty.
func (r *EventRepository) List(ctx context.Context, userID uuid.UUID, name string, limit int) ([]model.Event, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+eventColumns+`
        FROM events
        WHERE user_id = $1 AND ($2 = '' OR name = $2)
        ORDER BY time DESC, id DESC
        LIMIT $3
    `, userID, name, limit)
	return collect(rows, err, "list events", func(rows pgx.Rows, e *model.Event) error { return scanEvent(rows, e) })
}

func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	err := r.db.QueryRow(ctx, `
        INSERT INTO events (user_id, time, name, payload, event_id)
        VALUES ($1, $2, $3, $4, $5::uuid)
        RETURNING id, created_at
    `, e.UserID, e.Time, e.Name, e.Payload, e.EventID).Scan(&e.ID, &e.CreatedAt)
	return mapErr(err, "create event")
}

// RecordDomainEvent stores a domain event once; inserted is false when its event id was already recorded.
func (r *EventRepository) RecordDomainEvent(ctx context.Context, e *model.Event) (inserted bool, err error) {
	tag, err := r.db.Exec(ctx, `
        INSERT INTO events (user_id, time, name, payload, event_id)
        VALUES ($1, $2, $3, $4, $5::uuid)
        ON CONFLICT (event_id) DO NOTHING
    `, e.UserID, e.Time, e.Name, e.Payload, e.EventID)
	if err != nil {
		return false, mapErr(err, "record domain event")
	}
	return tag.RowsAffected() == 1, nil
}

// ListLeadBookings returns the days (in tz) on which leads moved to Booked since from.
// Only worker-recorded domain events count; client events carry no event id.
func (r *EventRepository) ListLeadBookings(ctx context.Context, userID uuid.UUID, from model.Date, tz string) ([]LeadBookingRow, error) {
	rows, err := r.db.Query(ctx, `
        SELECT (payload->>'lead_id')::bigint, (time AT TIME ZONE $3)::date
        FROM events
        WHERE user_id = $1
          AND event_id IS NOT NULL
          AND name = 'lead.status_changed'
          AND payload->>'to' = 'Booked'
          AND payload->>'lead_id' ~ '^[0-9]+$'
          AND (time AT TIME ZONE $3)::date >= $2
    `, userID, from, tz)
	return collect(rows, err, "list lead bookings", func(rows pgx.Rows, b *LeadBookingRow) error {
		return rows.Scan(&b.LeadID, &b.Date)
	})
}

type LeadBookingRow struct {
	LeadID int64
	Date   model.Date
}
