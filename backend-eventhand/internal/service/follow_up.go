package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/repository"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/logger"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// FollowUpHandler replays the second step of a two-step booking operation.
// Handle is idempotent; the outbox worker calls it until it succeeds.
type FollowUpHandler interface {
	Handle(ctx context.Context, msg *domain.OutboxMessage) error
}

type bookingFollowUp struct {
	bookingRepo repository.BookingRepository
	linker      EventBookingLinker
	now         func() time.Time
}

// NewBookingFollowUpHandler creates the follow-up handler for booking events
func NewBookingFollowUpHandler(bookingRepo repository.BookingRepository, linker EventBookingLinker) FollowUpHandler {
	return &bookingFollowUp{
		bookingRepo: bookingRepo,
		linker:      linker,
		now:         time.Now,
	}
}

// Handle dispatches on the event type. Events without a follow-up succeed immediately.
func (h *bookingFollowUp) Handle(ctx context.Context, msg *domain.OutboxMessage) error {
	ctx, span := telemetry.StartSpan(ctx, "service.follow_up.handle")
	defer span.End()

	span.SetAttributes(
		attribute.String("message_id", msg.ID),
		attribute.String("event_type", msg.EventType),
	)

	if msg.AggregateType != domain.AggregateBooking {
		span.SetStatus(codes.Ok, "ignored")
		return nil
	}

	var event domain.BookingEvent
	if err := msg.DecodePayload(&event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to decode booking event: %w", err)
	}

	var err error
	switch domain.BookingEventType(msg.EventType) {
	case domain.BookingEventCreated:
		err = h.attach(ctx, &event)
	case domain.BookingEventConfirmed:
		err = h.declineOthers(ctx, &event)
	case domain.BookingEventRemoved:
		err = h.linker.DetachBooking(ctx, event.EventID, event.BookingID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// attach re-adds a created booking to its event unless it has been removed since
func (h *bookingFollowUp) attach(ctx context.Context, event *domain.BookingEvent) error {
	if _, err := h.bookingRepo.GetByID(ctx, event.BookingID); err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return nil
		}
		return err
	}
	return h.linker.AttachBooking(ctx, event.EventID, event.BookingID)
}

func (h *bookingFollowUp) declineOthers(ctx context.Context, event *domain.BookingEvent) error {
	date, err := domain.ParseDate(event.Date)
	if err != nil {
		return err
	}

	n, err := h.bookingRepo.DeclineOthers(ctx, event.VendorID, date, event.BookingID, h.now())
	if err != nil {
		return err
	}
	if n > 0 {
		logger.FromContext(ctx).Info("outbox replay declined competing bookings",
			zap.String("booking_id", event.BookingID),
			zap.String("vendor_id", event.VendorID),
			zap.Int64("declined", n),
		)
	}
	return nil
}
