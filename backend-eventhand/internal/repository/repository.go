package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/shopspring/decimal"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EventRepository defines data access for events
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	ListByClient(ctx context.Context, clientID string) ([]*domain.Event, error)
	UpdateName(ctx context.Context, id, name string) (*domain.Event, error)
	UpdateDate(ctx context.Context, id string, date time.Time) (*domain.Event, error)
	UpdateAddress(ctx context.Context, id string, address *string) (*domain.Event, error)
	UpdateAttendees(ctx context.Context, id string, attendees int) (*domain.Event, error)
	UpdateBudget(ctx context.Context, id string, budget domain.Budget) (*domain.Event, error)
	// Delete removes the event together with its bookings
	Delete(ctx context.Context, id string) error
	// AttachBooking adds bookingID to the event's booking list; repeating it is a no-op
	AttachBooking(ctx context.Context, eventID, bookingID string) error
	// DetachBooking removes bookingID from the event's booking list; repeating it is a no-op
	DetachBooking(ctx context.Context, eventID, bookingID string) error
}

// VendorRepository defines data access for vendors
type VendorRepository interface {
	Create(ctx context.Context, vendor *domain.Vendor) error
	GetByID(ctx context.Context, id string) (*domain.Vendor, error)
	ListVisible(ctx context.Context) ([]*domain.Vendor, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Vendor, error)
	UpdateCredibilityFactors(ctx context.Context, id string, factors domain.CredibilityFactors) error
	ListIDs(ctx context.Context) ([]string, error)
}

// PackageRepository defines data access for packages
type PackageRepository interface {
	Create(ctx context.Context, pkg *domain.Package) error
	GetByID(ctx context.Context, id string) (*domain.Package, error)
	ListByVendor(ctx context.Context, vendorID string) ([]*domain.Package, error)
	UpdatePrice(ctx context.Context, id string, price decimal.Decimal) (*domain.Package, error)
	// FindCandidates returns packages owned by one of vendorIDs carrying at least one of tagIDs
	FindCandidates(ctx context.Context, vendorIDs, tagIDs []string) ([]*domain.Package, error)
}

// BookingRepository defines data access for bookings. Every write that has
// follow-up work stores its outbox message in the same transaction.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Booking, error)
	// ListByVendor returns one page of a vendor's bookings and the total count
	ListByVendor(ctx context.Context, vendorID string, statuses []domain.BookingStatus, limit, offset int) ([]*domain.BookingListItem, int64, error)

	// CreateWithOutbox inserts the booking, attaches it to its event and stores msg atomically
	CreateWithOutbox(ctx context.Context, booking *domain.Booking, msg *domain.OutboxMessage) error
	// TransitionWithOutbox moves the booking to next only if its current status is one of from
	TransitionWithOutbox(ctx context.Context, id string, from []domain.BookingStatus, next domain.BookingStatus, at time.Time, msg *domain.OutboxMessage) error
	// RemoveWithOutbox deletes the booking and stores msg atomically
	RemoveWithOutbox(ctx context.Context, id string, msg *domain.OutboxMessage) error

	// DeclineOthers declines every other pending or confirmed booking of the vendor on date,
	// provided keepID is still confirmed
	DeclineOthers(ctx context.Context, vendorID string, date time.Time, keepID string, at time.Time) (int64, error)
	// CancelStalePending cancels pending bookings dated before cutoff; an empty vendorID means all vendors
	CancelStalePending(ctx context.Context, vendorID string, cutoff, at time.Time) (int64, error)
	// VendorIDsBookedOn lists vendors holding a booking on date in one of statuses
	VendorIDsBookedOn(ctx context.Context, date time.Time, statuses []domain.BookingStatus) ([]string, error)
	// FindDuplicateConfirmations lists vendor dates holding more than one confirmed booking
	FindDuplicateConfirmations(ctx context.Context, limit int) ([]domain.DuplicateConfirmation, error)
}

// ReviewRepository defines data access for reviews
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	Delete(ctx context.Context, id string) error
	// Aggregate computes the average and count of valid ratings for one vendor
	Aggregate(ctx context.Context, vendorID string) (*domain.VendorRating, error)
	// AggregateMany computes ratings for several vendors; vendors without reviews are omitted
	AggregateMany(ctx context.Context, vendorIDs []string) (map[string]*domain.VendorRating, error)
}

// TagRepository defines data access for tags
type TagRepository interface {
	FindOrCreate(ctx context.Context, name string, description *string) (*domain.Tag, error)
	List(ctx context.Context) ([]*domain.Tag, error)
}

// OutboxRepository defines data access for outbox messages
type OutboxRepository interface {
	Create(ctx context.Context, msg *domain.OutboxMessage) error
	CreateTx(ctx context.Context, tx DBTX, msg *domain.OutboxMessage) error
	// ClaimPending leases up to limit pending messages so no other worker picks them up
	ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*domain.OutboxMessage, error)
	// ClaimRetryable leases failed messages whose last attempt is older than retryAfter
	ClaimRetryable(ctx context.Context, limit int, lease, retryAfter time.Duration) ([]*domain.OutboxMessage, error)
	MarkAsProcessed(ctx context.Context, id string) error
	MarkAsFailed(ctx context.Context, id string, errMsg string) error
	DeleteProcessed(ctx context.Context, olderThanDays int) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.OutboxStatus]int64, error)
}

// RatingCache caches vendor rating aggregates
type RatingCache interface {
	GetMany(ctx context.Context, vendorIDs []string) (map[string]*domain.VendorRating, error)
	SetMany(ctx context.Context, ratings []*domain.VendorRating) error
	Invalidate(ctx context.Context, vendorID string) error
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
