package service

import "context"

// EventBookingLinker keeps an event's booking list in step with its bookings.
// Both calls are idempotent.
type EventBookingLinker interface {
	AttachBooking(ctx context.Context, eventID, bookingID string) error
	DetachBooking(ctx context.Context, eventID, bookingID string) error
}

// RatingRecalculator refreshes a vendor's rating aggregate after reviews change
type RatingRecalculator interface {
	Recalculate(ctx context.Context, vendorID string) error
}

// BookingCompleter completes a booking once it has been reviewed
type BookingCompleter interface {
	Complete(ctx context.Context, bookingID string) error
}
