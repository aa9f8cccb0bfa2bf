package dto

import (
	"time"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateEventRequest represents a request to create an event
type CreateEventRequest struct {
	Name      string        `json:"name" binding:"required"`
	Attendees int           `json:"attendees" binding:"required"`
	Date      string        `json:"date" binding:"required"`
	Address   *string       `json:"address,omitempty"`
	Budget    domain.Budget `json:"budget"`
}

// UpdateEventNameRequest updates the event name
type UpdateEventNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateEventDateRequest updates the event date
type UpdateEventDateRequest struct {
	Date string `json:"date" binding:"required"`
}

// UpdateEventAddressRequest updates or clears the event address
type UpdateEventAddressRequest struct {
	Address *string `json:"address"`
}

// UpdateEventAttendeesRequest updates the head count
type UpdateEventAttendeesRequest struct {
	Attendees int `json:"attendees" binding:"required"`
}

// UpdateEventBudgetRequest replaces the budget envelope
type UpdateEventBudgetRequest struct {
	Budget domain.Budget `json:"budget" binding:"required"`
}

// EventResponse represents an event in API response
type EventResponse struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	Name        string          `json:"name"`
	Attendees   int             `json:"attendees"`
	Date        string          `json:"date"`
	Address     *string         `json:"address,omitempty"`
	Budget      domain.Budget   `json:"budget"`
	TotalBudget decimal.Decimal `json:"total_budget"`
	BookingIDs  []string        `json:"booking_ids"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// EventFromDomain converts domain Event to EventResponse
func EventFromDomain(e *domain.Event) *EventResponse {
	bookingIDs := e.BookingIDs
	if bookingIDs == nil {
		bookingIDs = []string{}
	}
	return &EventResponse{
		ID:          e.ID,
		ClientID:    e.ClientID,
		Name:        e.Name,
		Attendees:   e.Attendees,
		Date:        e.Date.Format(domain.DateLayout),
		Address:     e.Address,
		Budget:      e.Budget.Normalized(),
		TotalBudget: e.Budget.Total(),
		BookingIDs:  bookingIDs,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// EventsFromDomain converts a slice of events
func EventsFromDomain(events []*domain.Event) []*EventResponse {
	out := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventFromDomain(e))
	}
	return out
}
