package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/repository"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultBlockingStatuses are the booking statuses that make a vendor unavailable
var DefaultBlockingStatuses = []domain.BookingStatus{domain.BookingStatusConfirmed}

// AvailabilityResolver finds the vendors that can take a booking on a date
type AvailabilityResolver interface {
	// AvailableVendors returns visible vendors that do not block the date's weekday
	// and hold no blocking booking on the date
	AvailableVendors(ctx context.Context, date time.Time) ([]*domain.Vendor, error)
}

type availabilityResolver struct {
	vendorRepo       repository.VendorRepository
	bookingRepo      repository.BookingRepository
	blockingStatuses []domain.BookingStatus
}

// NewAvailabilityResolver creates a new availability resolver. An empty
// blockingStatuses falls back to DefaultBlockingStatuses.
func NewAvailabilityResolver(
	vendorRepo repository.VendorRepository,
	bookingRepo repository.BookingRepository,
	blockingStatuses []domain.BookingStatus,
) AvailabilityResolver {
	if len(blockingStatuses) == 0 {
		blockingStatuses = DefaultBlockingStatuses
	}
	return &availabilityResolver{
		vendorRepo:       vendorRepo,
		bookingRepo:      bookingRepo,
		blockingStatuses: blockingStatuses,
	}
}

// ParseBlockingStatuses converts configured status names
func ParseBlockingStatuses(names []string) ([]domain.BookingStatus, error) {
	out := make([]domain.BookingStatus, 0, len(names))
	for _, name := range names {
		s, err := domain.ParseBookingStatus(name)
		if err != nil {
			return nil, fmt.Errorf("blocking status %q: %w", name, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// AvailableVendors resolves the vendors free on date
func (r *availabilityResolver) AvailableVendors(ctx context.Context, date time.Time) ([]*domain.Vendor, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.availability.resolve")
	defer span.End()

	date = domain.CalendarDate(date)
	span.SetAttributes(attribute.String("date", date.Format(domain.DateLayout)))

	vendors, err := r.vendorRepo.ListVisible(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	booked, err := r.bookingRepo.VendorIDsBookedOn(ctx, date, r.blockingStatuses)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	available := filterAvailable(vendors, booked, date)

	span.SetAttributes(
		attribute.Int("visible", len(vendors)),
		attribute.Int("available", len(available)),
	)
	span.SetStatus(codes.Ok, "")
	return available, nil
}

// filterAvailable keeps vendors that are visible, open on date's weekday and not in booked
func filterAvailable(vendors []*domain.Vendor, booked []string, date time.Time) []*domain.Vendor {
	taken := make(map[string]struct{}, len(booked))
	for _, id := range booked {
		taken[id] = struct{}{}
	}

	out := make([]*domain.Vendor, 0, len(vendors))
	for _, v := range vendors {
		if !v.IsAvailableOn(date) {
			continue
		}
		if _, ok := taken[v.ID]; ok {
			continue
		}
		out = append(out, v)
	}
	return out
}
