package domain

import "time"

// BookingEventType names a booking lifecycle event
type BookingEventType string

const (
	BookingEventCreated   BookingEventType = "booking.created"
	BookingEventConfirmed BookingEventType = "booking.confirmed"
	BookingEventDeclined  BookingEventType = "booking.declined"
	BookingEventCancelled BookingEventType = "booking.cancelled"
	BookingEventCompleted BookingEventType = "booking.completed"
	BookingEventRemoved   BookingEventType = "booking.removed"
)

// BookingEvent is the payload stored in the outbox and fanned out to subscribers
type BookingEvent struct {
	EventType   BookingEventType `json:"event_type"`
	BookingID   string           `json:"booking_id"`
	EventID     string           `json:"event_id"`
	VendorID    string           `json:"vendor_id"`
	ClientID    string           `json:"client_id"`
	Date        string           `json:"date"`
	Status      BookingStatus    `json:"status"`
	PackageName string           `json:"package_name,omitempty"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

// NewBookingEvent builds the event payload for a booking
func NewBookingEvent(eventType BookingEventType, b *Booking) *BookingEvent {
	return &BookingEvent{
		EventType:   eventType,
		BookingID:   b.ID,
		EventID:     b.EventID,
		VendorID:    b.VendorID,
		ClientID:    b.ClientID,
		Date:        b.Date.Format(DateLayout),
		Status:      b.Status,
		PackageName: b.Package.Name,
		OccurredAt:  time.Now(),
	}
}

// BookingOutboxMessage wraps a booking event in an outbox message keyed by vendor
// so every event for one vendor lands on the same partition
func BookingOutboxMessage(eventType BookingEventType, b *Booking, topic string) (*OutboxMessage, error) {
	return NewOutboxMessage(AggregateBooking, b.ID, string(eventType), topic, b.VendorID, NewBookingEvent(eventType, b))
}
