package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/database"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const bookingColumns = `
	id, vendor_id, event_id, client_id, date, status, package,
	confirmed_at, cancelled_at, completed_at, created_at, updated_at`

// PostgresBookingRepository implements BookingRepository using PostgreSQL with pgxpool
type PostgresBookingRepository struct {
	pool       *pgxpool.Pool
	outboxRepo *PostgresOutboxRepository
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		pool:       pool,
		outboxRepo: NewPostgresOutboxRepository(pool),
	}
}

// GetByID retrieves a booking by its ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// ListByEvent returns every booking of an event ordered by date
func (r *PostgresBookingRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `SELECT` + bookingColumns + ` FROM bookings WHERE event_id = $1 ORDER BY date ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list event bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return bookings, nil
}

// ListByVendor returns one page of a vendor's bookings joined with their event
func (r *PostgresBookingRepository) ListByVendor(ctx context.Context, vendorID string, statuses []domain.BookingStatus, limit, offset int) ([]*domain.BookingListItem, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_by_vendor")
	defer span.End()

	span.SetAttributes(
		attribute.String("vendor_id", vendorID),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	filter := statusStrings(statuses)

	var total int64
	countQuery := `
		SELECT COUNT(*) FROM bookings
		WHERE vendor_id = $1
		  AND (cardinality($2::text[]) = 0 OR status = ANY($2::text[]))
	`
	if err := r.pool.QueryRow(ctx, countQuery, vendorID, filter).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count vendor bookings: %w", err)
	}

	query := `
		SELECT b.id, b.client_id, b.event_id, e.name, e.date,
		       b.date, b.status, b.package->>'name'
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		WHERE b.vendor_id = $1
		  AND (cardinality($2::text[]) = 0 OR b.status = ANY($2::text[]))
		ORDER BY b.date ASC, b.id ASC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, vendorID, filter, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list vendor bookings: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.BookingListItem, 0, limit)
	for rows.Next() {
		item := &domain.BookingListItem{}
		var (
			status      string
			packageName *string
		)
		if err := rows.Scan(
			&item.ID,
			&item.ClientID,
			&item.EventID,
			&item.EventName,
			&item.EventDate,
			&item.Date,
			&status,
			&packageName,
		); err != nil {
			span.RecordError(err)
			return nil, 0, fmt.Errorf("failed to scan vendor booking: %w", err)
		}
		item.Status = domain.BookingStatus(status)
		if packageName != nil {
			item.PackageName = *packageName
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("error iterating vendor bookings: %w", err)
	}

	span.SetAttributes(attribute.Int64("total", total))
	span.SetStatus(codes.Ok, "")
	return items, total, nil
}

// CreateWithOutbox inserts a booking, appends it to its event and stores msg in one transaction
func (r *PostgresBookingRepository) CreateWithOutbox(ctx context.Context, booking *domain.Booking, msg *domain.OutboxMessage) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.create_with_outbox")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("event_id", booking.EventID),
		attribute.String("vendor_id", booking.VendorID),
	)

	snapshot, err := json.Marshal(booking.Package)
	if err != nil {
		return fmt.Errorf("failed to encode package snapshot: %w", err)
	}

	err = database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO bookings (
				id, vendor_id, event_id, client_id, date, status, package,
				created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9
			)
		`
		if _, err := tx.Exec(ctx, query,
			booking.ID,
			booking.VendorID,
			booking.EventID,
			booking.ClientID,
			booking.Date,
			booking.Status.String(),
			snapshot,
			booking.CreatedAt,
			booking.UpdatedAt,
		); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrEventNotFound
			}
			return fmt.Errorf("failed to create booking: %w", err)
		}

		if err := attachBooking(ctx, tx, booking.EventID, booking.ID); err != nil {
			return err
		}

		return r.outboxRepo.CreateTx(ctx, tx, msg)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// TransitionWithOutbox moves a booking to next when its status is one of from and stores msg
// in the same transaction. Zero affected rows means the booking is gone or already moved.
func (r *PostgresBookingRepository) TransitionWithOutbox(ctx context.Context, id string, from []domain.BookingStatus, next domain.BookingStatus, at time.Time, msg *domain.OutboxMessage) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.transition_with_outbox")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", id),
		attribute.String("status", next.String()),
	)

	query, err := transitionQuery(next)
	if err != nil {
		return err
	}

	err = database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query, id, next.String(), at, statusStrings(from))
		if err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}

		if result.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)", id).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check booking existence: %w", err)
			}
			if !exists {
				return domain.ErrBookingNotFound
			}
			return domain.ErrInvalidTransition
		}

		if msg == nil {
			return nil
		}
		return r.outboxRepo.CreateTx(ctx, tx, msg)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func transitionQuery(next domain.BookingStatus) (string, error) {
	var stamp string
	switch next {
	case domain.BookingStatusConfirmed:
		stamp = "confirmed_at = $3,"
	case domain.BookingStatusCancelled:
		stamp = "cancelled_at = $3,"
	case domain.BookingStatusCompleted:
		stamp = "completed_at = $3,"
	case domain.BookingStatusDeclined:
	default:
		return "", domain.ErrInvalidBookingStatus
	}
	return `
		UPDATE bookings SET
			status = $2,
			` + stamp + `
			updated_at = $3
		WHERE id = $1 AND status = ANY($4::text[])
	`, nil
}

// RemoveWithOutbox deletes a booking and stores msg in one transaction
func (r *PostgresBookingRepository) RemoveWithOutbox(ctx context.Context, id string, msg *domain.OutboxMessage) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.remove_with_outbox")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete booking: %w", err)
		}
		if result.RowsAffected() == 0 {
			return domain.ErrBookingNotFound
		}
		return r.outboxRepo.CreateTx(ctx, tx, msg)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// DeclineOthers declines the vendor's other live bookings on date. Nothing changes
// unless keepID is still confirmed, so a replay after a later cancel is harmless.
func (r *PostgresBookingRepository) DeclineOthers(ctx context.Context, vendorID string, date time.Time, keepID string, at time.Time) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.decline_others")
	defer span.End()

	span.SetAttributes(
		attribute.String("vendor_id", vendorID),
		attribute.String("date", date.Format(domain.DateLayout)),
		attribute.String("keep_id", keepID),
	)

	query := `
		UPDATE bookings SET
			status = 'DECLINED',
			updated_at = $4
		WHERE vendor_id = $1
		  AND date = $2
		  AND id <> $3
		  AND status IN ('PENDING', 'CONFIRMED')
		  AND EXISTS (SELECT 1 FROM bookings WHERE id = $3 AND status = 'CONFIRMED')
	`

	result, err := r.pool.Exec(ctx, query, vendorID, date, keepID, at)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to decline competing bookings: %w", err)
	}

	span.SetAttributes(attribute.Int64("declined", result.RowsAffected()))
	span.SetStatus(codes.Ok, "")
	return result.RowsAffected(), nil
}

// CancelStalePending cancels pending bookings whose event is dated before cutoff.
// The booking's own date is ignored; it can drift from a rescheduled event.
func (r *PostgresBookingRepository) CancelStalePending(ctx context.Context, vendorID string, cutoff, at time.Time) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.cancel_stale_pending")
	defer span.End()

	span.SetAttributes(
		attribute.String("vendor_id", vendorID),
		attribute.String("cutoff", cutoff.Format(domain.DateLayout)),
	)

	var (
		result pgconn.CommandTag
		err    error
	)
	if vendorID == "" {
		result, err = r.pool.Exec(ctx, `
			UPDATE bookings b SET status = 'CANCELLED', cancelled_at = $2, updated_at = $2
			FROM events e
			WHERE e.id = b.event_id AND b.status = 'PENDING' AND e.date < $1
		`, cutoff, at)
	} else {
		result, err = r.pool.Exec(ctx, `
			UPDATE bookings b SET status = 'CANCELLED', cancelled_at = $3, updated_at = $3
			FROM events e
			WHERE e.id = b.event_id AND b.vendor_id = $1 AND b.status = 'PENDING' AND e.date < $2
		`, vendorID, cutoff, at)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to cancel stale bookings: %w", err)
	}

	span.SetAttributes(attribute.Int64("cancelled", result.RowsAffected()))
	span.SetStatus(codes.Ok, "")
	return result.RowsAffected(), nil
}

// VendorIDsBookedOn lists vendors holding a booking on date in one of statuses
func (r *PostgresBookingRepository) VendorIDsBookedOn(ctx context.Context, date time.Time, statuses []domain.BookingStatus) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.vendors_booked_on")
	defer span.End()

	span.SetAttributes(attribute.String("date", date.Format(domain.DateLayout)))

	query := `
		SELECT DISTINCT vendor_id::text FROM bookings
		WHERE date = $1 AND status = ANY($2::text[])
	`

	rows, err := r.pool.Query(ctx, query, date, statusStrings(statuses))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list booked vendors: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to scan booked vendors: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return ids, nil
}

// FindDuplicateConfirmations lists vendor dates with more than one confirmed booking.
// KeepID is the most recently confirmed booking.
func (r *PostgresBookingRepository) FindDuplicateConfirmations(ctx context.Context, limit int) ([]domain.DuplicateConfirmation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.find_duplicate_confirmations")
	defer span.End()

	query := `
		SELECT vendor_id::text, date,
		       ((array_agg(id ORDER BY confirmed_at DESC NULLS LAST, id DESC))[1])::text
		FROM bookings
		WHERE status = 'CONFIRMED'
		GROUP BY vendor_id, date
		HAVING COUNT(*) > 1
		ORDER BY date ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to find duplicate confirmations: %w", err)
	}
	defer rows.Close()

	var dups []domain.DuplicateConfirmation
	for rows.Next() {
		var d domain.DuplicateConfirmation
		if err := rows.Scan(&d.VendorID, &d.Date, &d.KeepID); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan duplicate confirmation: %w", err)
		}
		dups = append(dups, d)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating duplicate confirmations: %w", err)
	}

	span.SetAttributes(attribute.Int("duplicates", len(dups)))
	span.SetStatus(codes.Ok, "")
	return dups, nil
}

// attachBooking appends bookingID to the event unless it is already there
func attachBooking(ctx context.Context, db DBTX, eventID, bookingID string) error {
	query := `
		UPDATE events SET
			booking_ids = array_append(booking_ids, $2::uuid),
			updated_at = NOW()
		WHERE id = $1 AND NOT ($2::uuid = ANY(booking_ids))
	`
	if _, err := db.Exec(ctx, query, eventID, bookingID); err != nil {
		return fmt.Errorf("failed to attach booking to event: %w", err)
	}
	return nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	b := &domain.Booking{}
	var (
		status   string
		snapshot []byte
	)

	if err := row.Scan(
		&b.ID,
		&b.VendorID,
		&b.EventID,
		&b.ClientID,
		&b.Date,
		&status,
		&snapshot,
		&b.ConfirmedAt,
		&b.CancelledAt,
		&b.CompletedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	b.Status = domain.BookingStatus(status)
	if err := json.Unmarshal(snapshot, &b.Package); err != nil {
		return nil, fmt.Errorf("failed to decode package snapshot: %w", err)
	}
	return b, nil
}

var _ BookingRepository = (*PostgresBookingRepository)(nil)
