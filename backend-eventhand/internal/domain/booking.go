package domain

import (
	"strings"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusDeclined  BookingStatus = "DECLINED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

var transitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusDeclined, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

// ParseBookingStatus accepts a status name in any case
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", ErrInvalidBookingStatus
	}
	return status, nil
}

// IsValid checks if the status is a valid BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusDeclined, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusDeclined || s == BookingStatusCancelled || s == BookingStatusCompleted
}

// CanTransitionTo reports whether next is reachable from s in one step
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ListFilter expands a status filter for listing; CANCELLED also matches DECLINED
func (s BookingStatus) ListFilter() []BookingStatus {
	if s == BookingStatusCancelled {
		return []BookingStatus{BookingStatusCancelled, BookingStatusDeclined}
	}
	return []BookingStatus{s}
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// Booking is a client's reservation of one vendor package for one event date
type Booking struct {
	ID          string          `json:"id"`
	VendorID    string          `json:"vendor_id"`
	EventID     string          `json:"event_id"`
	ClientID    string          `json:"client_id"`
	Date        time.Time       `json:"date"`
	Status      BookingStatus   `json:"status"`
	Package     PackageSnapshot `json:"package"`
	ConfirmedAt *time.Time      `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewBooking builds a pending booking after validating ids, date and snapshot
func NewBooking(eventID, vendorID, clientID string, snapshot PackageSnapshot, date time.Time) (*Booking, error) {
	if err := ValidateIDs(eventID, vendorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(clientID) == "" {
		return nil, ErrInvalidClientID
	}
	if date.IsZero() {
		return nil, ErrInvalidDate
	}
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Booking{
		ID:        NewID(),
		VendorID:  vendorID,
		EventID:   eventID,
		ClientID:  clientID,
		Date:      CalendarDate(date),
		Status:    BookingStatusPending,
		Package:   snapshot,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// apply moves the booking to next, stamping the matching timestamp
func (b *Booking) apply(next BookingStatus, at time.Time) error {
	if !b.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	b.Status = next
	b.UpdatedAt = at
	switch next {
	case BookingStatusConfirmed:
		b.ConfirmedAt = &at
	case BookingStatusCancelled:
		b.CancelledAt = &at
	case BookingStatusCompleted:
		b.CompletedAt = &at
	}
	return nil
}

// Confirm marks a pending booking as confirmed
func (b *Booking) Confirm(at time.Time) error {
	return b.apply(BookingStatusConfirmed, at)
}

// Decline marks a pending booking as declined
func (b *Booking) Decline(at time.Time) error {
	return b.apply(BookingStatusDeclined, at)
}

// Cancel marks a pending or confirmed booking as cancelled
func (b *Booking) Cancel(at time.Time) error {
	return b.apply(BookingStatusCancelled, at)
}

// Complete marks a confirmed booking as completed
func (b *Booking) Complete(at time.Time) error {
	return b.apply(BookingStatusCompleted, at)
}

// IsReviewable reports whether a review may be filed against the booking
func (b *Booking) IsReviewable() bool {
	return b.Status == BookingStatusConfirmed || b.Status == BookingStatusCompleted
}

// BelongsToClient checks if the booking belongs to the specified client
func (b *Booking) BelongsToClient(clientID string) bool {
	return b.ClientID == clientID
}

// BookingListItem is a booking row joined with its event for vendor listings
type BookingListItem struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"client_id"`
	EventID     string        `json:"event_id"`
	EventName   string        `json:"event_name"`
	EventDate   time.Time     `json:"event_date"`
	Date        time.Time     `json:"date"`
	Status      BookingStatus `json:"status"`
	PackageName string        `json:"package_name"`
}

// DuplicateConfirmation is a vendor date left with more than one confirmed booking
type DuplicateConfirmation struct {
	VendorID string
	Date     time.Time
	// KeepID is the most recently confirmed booking
	KeepID string
}
