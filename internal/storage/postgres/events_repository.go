package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventra/server/internal/domain/events"
	"github.com/eventra/server/internal/metrics"
)

// EventRepository persists events and attendee registrations.
type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ events.Repository = (*EventRepository)(nil)

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

// eventColumns always joins users so every row carries the organizer's
// username. Times and prices come back in their canonical text forms.
const eventColumns = `e.id, e.name, e.description, e.location, e.date,
	to_char(e.start_time, 'HH24:MI:SS'), e.ticket_price::text,
	e.organizer_id, u.username, e.created_at`

const eventFrom = ` FROM events e JOIN users u ON u.id = e.organizer_id`

func scanEvent(row pgx.Row) (*events.Event, error) {
	var e events.Event
	err := row.Scan(
		&e.ID, &e.Name, &e.Description, &e.Location, &e.Date,
		&e.StartTime, &e.TicketPrice, &e.OrganizerID, &e.OrganizerUsername,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	out := []events.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return out, nil
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (e *events.Event, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("events.create", start, err) }()

	query := `
		WITH inserted AS (
			INSERT INTO events (
				id, name, description, location, date, start_time,
				ticket_price, organizer_id
			)
			VALUES ($1, $2, $3, $4, $5, $6::time, $7::numeric, $8)
			RETURNING *
		)
		SELECT ` + eventColumns + `
		FROM inserted e
		JOIN users u ON u.id = e.organizer_id`

	e, err = scanEvent(r.queryer().QueryRow(ctx, query,
		params.ID, params.Name, params.Description, params.Location,
		params.Date, params.StartTime, params.TicketPrice, params.OrganizerID,
	))
	if err != nil {
		return nil, fmt.Errorf("inserting event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (e *events.Event, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("events.get_by_id", start, err) }()

	query := `SELECT ` + eventColumns + eventFrom + ` WHERE e.id = $1`
	e, err = scanEvent(r.queryer().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("querying event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) List(ctx context.Context) (out []events.Event, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("events.list", start, err) }()

	query := `SELECT ` + eventColumns + eventFrom + ` ORDER BY e.created_at DESC`
	return r.list(ctx, query)
}

func (r *EventRepository) Search(ctx context.Context, term string) (out []events.Event, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("events.search", start, err) }()

	query := `
		SELECT ` + eventColumns + eventFrom + `
		WHERE e.name ILIKE '%' || $1 || '%'
			OR e.location ILIKE '%' || $1 || '%'
			OR u.username ILIKE '%' || $1 || '%'
		ORDER BY e.created_at DESC`
	return r.list(ctx, query, term)
}

func (r *EventRepository) Filter(ctx context.Context, filters events.Filters) (out []events.Event, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("events.filter", start, err) }()

	query := `
		SELECT ` + eventColumns + eventFrom + `
		WHERE ($1 = '' OR lower(e.name) = lower($1))
			AND ($2 = '' OR lower(e.location) = lower($2))
			AND ($3 = '' OR lower(u.username) = lower($3))
		ORDER BY e.created_at DESC`
	return r.list(ctx, query, filters.Name, filters.Location, filters.Organizer)
}

func (r *EventRepository) ListBetween(ctx context.Context, from, to time.Time) (out []events.Event, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("events.list_between", start, err) }()

	query := `
		SELECT ` + eventColumns + eventFrom + `
		WHERE e.date >= $1 AND e.date <= $2
		ORDER BY e.date ASC, e.start_time ASC`
	return r.list(ctx, query, from, to)
}

func (r *EventRepository) Update(ctx context.Context, id string, params events.UpdateParams) (e *events.Event, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("events.update", start, err) }()

	query := `
		UPDATE events SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			location = COALESCE($4, location),
			date = COALESCE($5, date),
			start_time = COALESCE($6::time, start_time),
			ticket_price = COALESCE($7::numeric, ticket_price)
		WHERE id = $1`

	tag, err := r.queryer().Exec(ctx, query, id,
		params.Name, params.Description, params.Location,
		params.Date, params.StartTime, params.TicketPrice,
	)
	if err != nil {
		return nil, fmt.Errorf("updating event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, events.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *EventRepository) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("events.delete", start, err) }()

	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

// RegisterAttendee resolves the event and inserts the registration inside a
// single transaction so a concurrent delete cannot leave an orphan row.
func (r *EventRepository) RegisterAttendee(ctx context.Context, eventID string, reg events.Registration) (ev *events.Event, out *events.Registration, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("events.register_attendee", start, err) }()

	agg := &Repository{pool: r.pool, tx: r.tx}
	err = agg.WithTx(ctx, func(ctx context.Context, txRepo *Repository) error {
		txEvents := &EventRepository{pool: txRepo.pool, tx: txRepo.tx}

		ev, err = txEvents.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		out, err = txEvents.insertRegistration(ctx, reg)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return ev, out, nil
}

func (r *EventRepository) insertRegistration(ctx context.Context, reg events.Registration) (*events.Registration, error) {
	query := `
		INSERT INTO event_registrations (id, user_id, event_id)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, event_id, registered_at`

	var out events.Registration
	err := r.queryer().QueryRow(ctx, query, reg.ID, reg.UserID, reg.EventID).
		Scan(&out.ID, &out.UserID, &out.EventID, &out.RegisteredAt)
	if err != nil {
		if constraintViolated(err, "event_registrations_user_id_event_id_key") {
			return nil, events.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("inserting registration: %w", err)
	}
	return &out, nil
}
