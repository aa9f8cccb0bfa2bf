package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/dto"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/metrics"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/repository"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/logger"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/retry"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// BookingService defines the interface for booking lifecycle logic
type BookingService interface {
	BookingCompleter

	// CreateBooking books a vendor package for one of the client's events
	CreateBooking(ctx context.Context, clientID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)

	// GetBooking retrieves a booking by ID
	GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error)

	// ConfirmBooking confirms a booking and declines the vendor's competing bookings on the same date
	ConfirmBooking(ctx context.Context, bookingID string) (*dto.TransitionResponse, error)

	// CancelBooking cancels a pending or confirmed booking
	CancelBooking(ctx context.Context, bookingID string) (*dto.TransitionResponse, error)

	// CompleteBooking completes a confirmed booking
	CompleteBooking(ctx context.Context, bookingID string) (*dto.TransitionResponse, error)

	// RemoveBooking deletes a booking and detaches it from its event
	RemoveBooking(ctx context.Context, bookingID string) error

	// ListVendorBookings returns one page of a vendor's bookings
	ListVendorBookings(ctx context.Context, vendorID string, query *dto.ListVendorBookingsQuery) (*dto.VendorBookingPage, error)

	// ListEventBookings returns every booking of an event
	ListEventBookings(ctx context.Context, eventID string) ([]*dto.BookingResponse, error)

	// SweepStalePending cancels pending bookings whose event date is before today; an empty vendorID sweeps every vendor
	SweepStalePending(ctx context.Context, vendorID string) (int64, error)

	// ReconcileDuplicates declines all but the latest confirmation where a vendor
	// ended up with more than one confirmed booking on a date
	ReconcileDuplicates(ctx context.Context, limit int) (int64, error)
}

// bookingService implements BookingService
type bookingService struct {
	bookingRepo repository.BookingRepository
	eventRepo   repository.EventRepository
	vendorRepo  repository.VendorRepository
	packageRepo repository.PackageRepository
	linker      EventBookingLinker
	topic       string
	stepRetry   *retry.Config
	pageSize    int
	maxPageSize int
	now         func() time.Time
}

// BookingServiceConfig contains configuration for booking service
type BookingServiceConfig struct {
	Topic              string
	StepMaxRetries     int
	StepInitialBackoff time.Duration
	DefaultPageSize    int
	MaxPageSize        int
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo repository.BookingRepository,
	eventRepo repository.EventRepository,
	vendorRepo repository.VendorRepository,
	packageRepo repository.PackageRepository,
	linker EventBookingLinker,
	cfg *BookingServiceConfig,
) BookingService {
	topic := domain.DefaultOutboxTopic
	maxRetries := 3
	backoff := 50 * time.Millisecond
	pageSize := 10
	maxPageSize := 100
	if cfg != nil {
		if cfg.Topic != "" {
			topic = cfg.Topic
		}
		if cfg.StepMaxRetries >= 0 {
			maxRetries = cfg.StepMaxRetries
		}
		if cfg.StepInitialBackoff > 0 {
			backoff = cfg.StepInitialBackoff
		}
		if cfg.DefaultPageSize > 0 {
			pageSize = cfg.DefaultPageSize
		}
		if cfg.MaxPageSize > 0 {
			maxPageSize = cfg.MaxPageSize
		}
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return &bookingService{
		bookingRepo: bookingRepo,
		eventRepo:   eventRepo,
		vendorRepo:  vendorRepo,
		packageRepo: packageRepo,
		linker:      linker,
		topic:       topic,
		stepRetry: &retry.Config{
			MaxRetries:      maxRetries,
			InitialInterval: backoff,
			MaxInterval:     2 * time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.1,
			RetryIf:         isRetryable,
		},
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
		now:         time.Now,
	}
}

// isRetryable reports whether a secondary step error may succeed on a later attempt
// maxTransitionAttempts bounds the guarded write when the status keeps moving underneath it
const maxTransitionAttempts = 2

func isRetryable(err error) bool {
	return !domain.IsNotFoundError(err) &&
		!domain.IsValidationError(err) &&
		!errors.Is(err, context.Canceled)
}

// CreateBooking builds the package snapshot server-side and stores a pending booking
func (s *bookingService) CreateBooking(ctx context.Context, clientID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()

	if req == nil {
		span.SetStatus(codes.Error, "empty request")
		return nil, domain.ErrInvalidID
	}
	if strings.TrimSpace(clientID) == "" {
		span.SetStatus(codes.Error, "invalid client_id")
		return nil, domain.ErrInvalidClientID
	}
	if err := domain.ValidateIDs(req.EventID, req.VendorID, req.PackageID); err != nil {
		span.SetStatus(codes.Error, "invalid id")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("client_id", clientID),
		attribute.String("event_id", req.EventID),
		attribute.String("vendor_id", req.VendorID),
		attribute.String("package_id", req.PackageID),
	)

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !event.BelongsToClient(clientID) {
		span.SetStatus(codes.Error, "event belongs to another client")
		return nil, domain.ErrForbidden
	}

	vendor, err := s.vendorRepo.GetByID(ctx, req.VendorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	pkg, err := s.packageRepo.GetByID(ctx, req.PackageID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !pkg.BelongsToVendor(vendor.ID) {
		span.SetStatus(codes.Error, "package belongs to another vendor")
		return nil, domain.ErrPackageVendorMismatch
	}

	date := event.Date
	if req.Date != "" {
		date, err = domain.ParseDate(req.Date)
		if err != nil {
			span.SetStatus(codes.Error, "invalid date")
			return nil, err
		}
	}

	booking, err := domain.NewBooking(event.ID, vendor.ID, clientID, pkg.Snapshot(), date)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	msg, err := domain.BookingOutboxMessage(domain.BookingEventCreated, booking, s.topic)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.bookingRepo.CreateWithOutbox(ctx, booking, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordTransition(domain.BookingStatusPending.String())

	span.AddEvent("booking_created", trace.WithAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("date", booking.Date.Format(domain.DateLayout)),
		attribute.String("package_price", booking.Package.Price.String()),
	))
	span.SetAttributes(attribute.String("booking_id", booking.ID))
	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// GetBooking retrieves a booking by ID
func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.load(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// ConfirmBooking confirms a booking, then declines the vendor's other live bookings on the date.
// The decline step is retried in-line; when it still fails the outbox worker replays it,
// and the confirmation stands either way.
func (s *bookingService) ConfirmBooking(ctx context.Context, bookingID string) (*dto.TransitionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.confirm")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, changed, err := s.advance(ctx, bookingID, domain.BookingStatusConfirmed, domain.BookingEventConfirmed, (*domain.Booking).Confirm)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if booking.Status != domain.BookingStatusConfirmed {
		span.SetStatus(codes.Ok, "terminal")
		return &dto.TransitionResponse{Booking: dto.BookingFromDomain(booking)}, nil
	}

	// Also reached when already confirmed: the decline step is idempotent
	declined := s.declineCompeting(ctx, booking)

	span.SetAttributes(attribute.Int64("declined", declined), attribute.Bool("changed", changed))
	span.SetStatus(codes.Ok, "")
	return &dto.TransitionResponse{
		Booking:  dto.BookingFromDomain(booking),
		Changed:  changed,
		Declined: declined,
	}, nil
}

// CancelBooking cancels a booking. A terminal booking is left untouched.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) (*dto.TransitionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	resp, err := s.simpleTransition(ctx, bookingID, domain.BookingStatusCancelled, domain.BookingEventCancelled, (*domain.Booking).Cancel)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// CompleteBooking completes a confirmed booking. Completing a pending booking is rejected.
func (s *bookingService) CompleteBooking(ctx context.Context, bookingID string) (*dto.TransitionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.complete")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	resp, err := s.simpleTransition(ctx, bookingID, domain.BookingStatusCompleted, domain.BookingEventCompleted, (*domain.Booking).Complete)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// Complete satisfies BookingCompleter
func (s *bookingService) Complete(ctx context.Context, bookingID string) error {
	_, err := s.CompleteBooking(ctx, bookingID)
	return err
}

func (s *bookingService) simpleTransition(
	ctx context.Context,
	bookingID string,
	next domain.BookingStatus,
	eventType domain.BookingEventType,
	apply func(*domain.Booking, time.Time) error,
) (*dto.TransitionResponse, error) {
	booking, changed, err := s.advance(ctx, bookingID, next, eventType, apply)
	if err != nil {
		return nil, err
	}
	return &dto.TransitionResponse{Booking: dto.BookingFromDomain(booking), Changed: changed}, nil
}

// advance moves the booking to next. A terminal booking, or one already in next,
// is returned unchanged. When a concurrent actor moves the booking between the read
// and the guarded write, the booking is reloaded and the transition is tried once more
// against its new status.
func (s *bookingService) advance(
	ctx context.Context,
	bookingID string,
	next domain.BookingStatus,
	eventType domain.BookingEventType,
	apply func(*domain.Booking, time.Time) error,
) (*domain.Booking, bool, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, false, err
	}

	for attempt := 1; ; attempt++ {
		if booking.Status.IsTerminal() {
			s.warnTerminal(ctx, booking, next)
			return booking, false, nil
		}
		if booking.Status == next {
			return booking, false, nil
		}

		from := booking.Status
		if err := apply(booking, s.now()); err != nil {
			return nil, false, err
		}

		err := s.transition(ctx, booking, from, eventType)
		if err == nil {
			return booking, true, nil
		}
		if !errors.Is(err, domain.ErrInvalidTransition) || attempt >= maxTransitionAttempts {
			return nil, false, err
		}

		logger.FromContext(ctx).Warn("booking changed concurrently, reloading",
			zap.String("booking_id", bookingID),
			zap.String("expected", from.String()),
			zap.String("requested", next.String()),
		)
		if booking, err = s.load(ctx, bookingID); err != nil {
			return nil, false, err
		}
	}
}

// transition persists booking's new status guarded by its previous status
func (s *bookingService) transition(ctx context.Context, booking *domain.Booking, from domain.BookingStatus, eventType domain.BookingEventType) error {
	msg, err := domain.BookingOutboxMessage(eventType, booking, s.topic)
	if err != nil {
		return err
	}

	at := booking.UpdatedAt
	if err := s.bookingRepo.TransitionWithOutbox(ctx, booking.ID, []domain.BookingStatus{from}, booking.Status, at, msg); err != nil {
		return err
	}

	metrics.RecordTransition(booking.Status.String())
	logger.FromContext(ctx).Info("booking status changed",
		zap.String("booking_id", booking.ID),
		zap.String("from", from.String()),
		zap.String("to", booking.Status.String()),
	)
	return nil
}

// declineCompeting declines the vendor's other bookings on the confirmed booking's date.
// Failures are logged and left to the outbox worker.
func (s *bookingService) declineCompeting(ctx context.Context, booking *domain.Booking) int64 {
	var declined int64
	result := retry.Do(ctx, s.stepRetry, func(ctx context.Context) error {
		n, err := s.bookingRepo.DeclineOthers(ctx, booking.VendorID, booking.Date, booking.ID, s.now())
		if err != nil {
			return err
		}
		declined = n
		return nil
	})
	if result.Err != nil {
		metrics.RecordFollowUpFailure("decline_others")
		logger.FromContext(ctx).Warn("declining competing bookings deferred to outbox",
			zap.String("booking_id", booking.ID),
			zap.String("vendor_id", booking.VendorID),
			zap.Int("attempts", result.Attempts),
			zap.Error(result.Err),
		)
		return 0
	}

	metrics.RecordDeclinedByConfirm(declined)
	if declined > 0 {
		logger.FromContext(ctx).Info("declined competing bookings",
			zap.String("booking_id", booking.ID),
			zap.String("vendor_id", booking.VendorID),
			zap.String("date", booking.Date.Format(domain.DateLayout)),
			zap.Int64("declined", declined),
		)
	}
	return declined
}

// RemoveBooking deletes a booking, then pulls it from its event's booking list.
// A failed detach never undoes the delete; the outbox worker replays it.
func (s *bookingService) RemoveBooking(ctx context.Context, bookingID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.remove")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.load(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	msg, err := domain.BookingOutboxMessage(domain.BookingEventRemoved, booking, s.topic)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.bookingRepo.RemoveWithOutbox(ctx, booking.ID, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	result := retry.Do(ctx, s.stepRetry, func(ctx context.Context) error {
		return s.linker.DetachBooking(ctx, booking.EventID, booking.ID)
	})
	if result.Err != nil {
		metrics.RecordFollowUpFailure("detach_booking")
		logger.FromContext(ctx).Warn("detaching booking from event deferred to outbox",
			zap.String("booking_id", booking.ID),
			zap.String("event_id", booking.EventID),
			zap.Error(result.Err),
		)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListVendorBookings sweeps the vendor's stale pending bookings, then returns one page
func (s *bookingService) ListVendorBookings(ctx context.Context, vendorID string, query *dto.ListVendorBookingsQuery) (*dto.VendorBookingPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_vendor_bookings")
	defer span.End()

	span.SetAttributes(attribute.String("vendor_id", vendorID))

	if err := domain.ValidateID(vendorID); err != nil {
		span.SetStatus(codes.Error, "invalid vendor_id")
		return nil, err
	}
	if query == nil {
		query = &dto.ListVendorBookingsQuery{}
	}

	page, pageSize, err := s.pagination(query.Page, query.PageSize)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var statuses []domain.BookingStatus
	if query.Status != "" {
		status, err := domain.ParseBookingStatus(query.Status)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		statuses = status.ListFilter()
	}

	if _, err := s.SweepStalePending(ctx, vendorID); err != nil {
		logger.FromContext(ctx).Warn("sweep before listing failed",
			zap.String("vendor_id", vendorID),
			zap.Error(err),
		)
	}

	items, total, err := s.bookingRepo.ListByVendor(ctx, vendorID, statuses, pageSize, (page-1)*pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := make([]*dto.VendorBookingItem, 0, len(items))
	for _, item := range items {
		out = append(out, dto.VendorBookingItemFromDomain(item))
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	span.SetAttributes(
		attribute.Int("page", page),
		attribute.Int64("total", total),
	)
	span.SetStatus(codes.Ok, "")
	return &dto.VendorBookingPage{
		Items:       out,
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
		PageSize:    pageSize,
		HasMore:     page < totalPages,
	}, nil
}

// pagination applies defaults: a zero page is the first page, a zero size the default size.
// Sizes above the maximum are capped.
func (s *bookingService) pagination(page, pageSize int) (int, int, error) {
	if page < 0 || pageSize < 0 {
		return 0, 0, domain.ErrInvalidPagination
	}
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = s.pageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	return page, pageSize, nil
}

// ListEventBookings returns every booking of an event
func (s *bookingService) ListEventBookings(ctx context.Context, eventID string) ([]*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_event_bookings")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	if err := domain.ValidateID(eventID); err != nil {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, err
	}

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	bookings, err := s.bookingRepo.ListByEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.BookingsFromDomain(bookings), nil
}

// SweepStalePending cancels pending bookings whose event date is strictly before today (UTC)
func (s *bookingService) SweepStalePending(ctx context.Context, vendorID string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.sweep_stale_pending")
	defer span.End()

	span.SetAttributes(attribute.String("vendor_id", vendorID))

	now := s.now()
	n, err := s.bookingRepo.CancelStalePending(ctx, vendorID, domain.StartOfToday(now), now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	metrics.RecordSweep("cancel_stale", n)
	if n > 0 {
		logger.FromContext(ctx).Info("cancelled stale pending bookings",
			zap.String("vendor_id", vendorID),
			zap.Int64("cancelled", n),
		)
	}

	span.SetAttributes(attribute.Int64("cancelled", n))
	span.SetStatus(codes.Ok, "")
	return n, nil
}

// ReconcileDuplicates keeps the latest confirmation per vendor and date
func (s *bookingService) ReconcileDuplicates(ctx context.Context, limit int) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.reconcile_duplicates")
	defer span.End()

	dups, err := s.bookingRepo.FindDuplicateConfirmations(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	var total int64
	for _, d := range dups {
		n, err := s.bookingRepo.DeclineOthers(ctx, d.VendorID, d.Date, d.KeepID, s.now())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return total, err
		}
		logger.FromContext(ctx).Warn("reconciled duplicate confirmations",
			zap.String("vendor_id", d.VendorID),
			zap.String("date", d.Date.Format(domain.DateLayout)),
			zap.String("kept_booking_id", d.KeepID),
			zap.Int64("declined", n),
		)
		total += n
	}

	metrics.RecordSweep("reconcile_duplicates", total)
	span.SetAttributes(attribute.Int64("declined", total))
	span.SetStatus(codes.Ok, "")
	return total, nil
}

func (s *bookingService) load(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if err := domain.ValidateID(bookingID); err != nil {
		return nil, err
	}
	return s.bookingRepo.GetByID(ctx, bookingID)
}

func (s *bookingService) warnTerminal(ctx context.Context, booking *domain.Booking, requested domain.BookingStatus) {
	logger.FromContext(ctx).Warn("ignoring transition of terminal booking",
		zap.String("booking_id", booking.ID),
		zap.String("status", booking.Status.String()),
		zap.String("requested", requested.String()),
	)
}

var _ BookingCompleter = (*bookingService)(nil)
