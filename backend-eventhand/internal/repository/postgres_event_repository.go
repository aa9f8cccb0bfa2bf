package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const eventColumns = `
	id, client_id, name, attendees, date, address, budget,
	booking_ids::text[], created_at, updated_at`

// PostgresEventRepository implements EventRepository using PostgreSQL with pgxpool
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// Create creates a new event record
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.String("client_id", event.ClientID),
	)

	budget, err := json.Marshal(event.Budget)
	if err != nil {
		return fmt.Errorf("failed to encode budget: %w", err)
	}

	query := `
		INSERT INTO events (
			id, client_id, name, attendees, date, address, budget,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err = r.pool.Exec(ctx, query,
		event.ID,
		event.ClientID,
		event.Name,
		event.Attendees,
		event.Date,
		event.Address,
		budget,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an event by its ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	event, err := scanEvent(r.pool.QueryRow(ctx, `SELECT`+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// ListByClient returns a client's events ordered by date
func (r *PostgresEventRepository) ListByClient(ctx context.Context, clientID string) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list_by_client")
	defer span.End()

	span.SetAttributes(attribute.String("client_id", clientID))

	rows, err := r.pool.Query(ctx, `SELECT`+eventColumns+` FROM events WHERE client_id = $1 ORDER BY date ASC, id ASC`, clientID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return events, nil
}

// UpdateName sets the event name
func (r *PostgresEventRepository) UpdateName(ctx context.Context, id, name string) (*domain.Event, error) {
	return r.updateField(ctx, "name", id, name)
}

// UpdateDate sets the event date
func (r *PostgresEventRepository) UpdateDate(ctx context.Context, id string, date time.Time) (*domain.Event, error) {
	return r.updateField(ctx, "date", id, date)
}

// UpdateAddress sets or clears the event address
func (r *PostgresEventRepository) UpdateAddress(ctx context.Context, id string, address *string) (*domain.Event, error) {
	return r.updateField(ctx, "address", id, address)
}

// UpdateAttendees sets the attendee count
func (r *PostgresEventRepository) UpdateAttendees(ctx context.Context, id string, attendees int) (*domain.Event, error) {
	return r.updateField(ctx, "attendees", id, attendees)
}

// UpdateBudget replaces the budget envelope
func (r *PostgresEventRepository) UpdateBudget(ctx context.Context, id string, budget domain.Budget) (*domain.Event, error) {
	raw, err := json.Marshal(budget)
	if err != nil {
		return nil, fmt.Errorf("failed to encode budget: %w", err)
	}
	return r.updateField(ctx, "budget", id, raw)
}

// updatableEventColumns guards the column name interpolated into updateField
var updatableEventColumns = map[string]bool{
	"name":      true,
	"date":      true,
	"address":   true,
	"attendees": true,
	"budget":    true,
}

func (r *PostgresEventRepository) updateField(ctx context.Context, column, id string, value any) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update_"+column)
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	if !updatableEventColumns[column] {
		return nil, fmt.Errorf("column %q is not updatable", column)
	}

	query := `UPDATE events SET ` + column + ` = $2, updated_at = NOW() WHERE id = $1 RETURNING` + eventColumns

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to update event %s: %w", column, err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// Delete removes the event. Its bookings and their reviews go with it through foreign key cascades.
func (r *PostgresEventRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.delete")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	result, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// AttachBooking adds bookingID to the event's booking list
func (r *PostgresEventRepository) AttachBooking(ctx context.Context, eventID, bookingID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.attach_booking")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("booking_id", bookingID),
	)

	if err := attachBooking(ctx, r.pool, eventID, bookingID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// DetachBooking removes bookingID from the event's booking list. A missing event
// is not an error since deleting the event already dropped the reference.
func (r *PostgresEventRepository) DetachBooking(ctx context.Context, eventID, bookingID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.detach_booking")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("booking_id", bookingID),
	)

	query := `
		UPDATE events SET
			booking_ids = array_remove(booking_ids, $2::uuid),
			updated_at = NOW()
		WHERE id = $1 AND $2::uuid = ANY(booking_ids)
	`

	if _, err := r.pool.Exec(ctx, query, eventID, bookingID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to detach booking from event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	e := &domain.Event{}
	var budget []byte

	if err := row.Scan(
		&e.ID,
		&e.ClientID,
		&e.Name,
		&e.Attendees,
		&e.Date,
		&e.Address,
		&budget,
		&e.BookingIDs,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var raw domain.Budget
	if err := json.Unmarshal(budget, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode budget: %w", err)
	}
	e.Budget = raw.Normalized()
	if e.BookingIDs == nil {
		e.BookingIDs = []string{}
	}
	return e, nil
}

var _ EventRepository = (*PostgresEventRepository)(nil)
