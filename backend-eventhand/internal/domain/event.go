package domain

import (
	"slices"
	"strings"
	"time"
)

const MinAttendees = 2

// Event is a client's planned occasion with a per-category budget
type Event struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	Name       string    `json:"name"`
	Attendees  int       `json:"attendees"`
	Date       time.Time `json:"date"`
	Address    *string   `json:"address,omitempty"`
	Budget     Budget    `json:"budget"`
	BookingIDs []string  `json:"booking_ids"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewEvent builds a validated event with a normalized budget
func NewEvent(clientID, name string, attendees int, date time.Time, address *string, budget Budget) (*Event, error) {
	now := time.Now()
	e := &Event{
		ID:         NewID(),
		ClientID:   clientID,
		Name:       strings.TrimSpace(name),
		Attendees:  attendees,
		Date:       CalendarDate(date),
		Address:    address,
		Budget:     budget.Normalized(),
		BookingIDs: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate validates all event fields
func (e *Event) Validate() error {
	if strings.TrimSpace(e.ClientID) == "" {
		return ErrInvalidClientID
	}
	if e.Name == "" {
		return ErrInvalidName
	}
	if err := ValidateAttendees(e.Attendees); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	return e.Budget.Validate()
}

// ValidateAttendees enforces the minimum head count
func ValidateAttendees(n int) error {
	if n < MinAttendees {
		return ErrInvalidAttendees
	}
	return nil
}

// HasBooking reports whether the event references bookingID
func (e *Event) HasBooking(bookingID string) bool {
	return slices.Contains(e.BookingIDs, bookingID)
}

// BelongsToClient checks if the event belongs to the specified client
func (e *Event) BelongsToClient(clientID string) bool {
	return e.ClientID == clientID
}
