package dto

import (
	"time"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
)

// CreateBookingRequest represents a request to book a vendor package for an event
type CreateBookingRequest struct {
	EventID   string `json:"event_id" binding:"required"`
	VendorID  string `json:"vendor_id" binding:"required"`
	PackageID string `json:"package_id" binding:"required"`
	// Date defaults to the event date when empty
	Date string `json:"date,omitempty"`
}

// ListVendorBookingsQuery are the query parameters of the vendor booking list
type ListVendorBookingsQuery struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// BookingResponse represents a booking in API response
type BookingResponse struct {
	ID          string                 `json:"id"`
	VendorID    string                 `json:"vendor_id"`
	EventID     string                 `json:"event_id"`
	ClientID    string                 `json:"client_id"`
	Date        string                 `json:"date"`
	Status      string                 `json:"status"`
	Package     domain.PackageSnapshot `json:"package"`
	ConfirmedAt *time.Time             `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time             `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// BookingFromDomain converts domain Booking to BookingResponse
func BookingFromDomain(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:          b.ID,
		VendorID:    b.VendorID,
		EventID:     b.EventID,
		ClientID:    b.ClientID,
		Date:        b.Date.Format(domain.DateLayout),
		Status:      string(b.Status),
		Package:     b.Package,
		ConfirmedAt: b.ConfirmedAt,
		CancelledAt: b.CancelledAt,
		CompletedAt: b.CompletedAt,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// BookingsFromDomain converts a slice of bookings
func BookingsFromDomain(bookings []*domain.Booking) []*BookingResponse {
	out := make([]*BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingFromDomain(b))
	}
	return out
}

// VendorBookingItem is one row of a vendor's booking list
type VendorBookingItem struct {
	ID          string `json:"id"`
	ClientID    string `json:"client_id"`
	EventID     string `json:"event_id"`
	EventName   string `json:"event_name"`
	EventDate   string `json:"event_date"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	PackageName string `json:"package_name"`
}

// VendorBookingPage is a page of a vendor's bookings
type VendorBookingPage struct {
	Items       []*VendorBookingItem `json:"items"`
	TotalItems  int64                `json:"total_items"`
	TotalPages  int                  `json:"total_pages"`
	CurrentPage int                  `json:"current_page"`
	PageSize    int                  `json:"page_size"`
	HasMore     bool                 `json:"has_more"`
}

// VendorBookingItemFromDomain converts a joined list row
func VendorBookingItemFromDomain(item *domain.BookingListItem) *VendorBookingItem {
	return &VendorBookingItem{
		ID:          item.ID,
		ClientID:    item.ClientID,
		EventID:     item.EventID,
		EventName:   item.EventName,
		EventDate:   item.EventDate.Format(domain.DateLayout),
		Date:        item.Date.Format(domain.DateLayout),
		Status:      string(item.Status),
		PackageName: item.PackageName,
	}
}

// TransitionResponse reports the outcome of a status change
type TransitionResponse struct {
	Booking *BookingResponse `json:"booking"`
	// Changed is false when the booking was already terminal and nothing happened
	Changed bool `json:"changed"`
	// Declined is the number of competing bookings declined by a confirmation
	Declined int64 `json:"declined,omitempty"`
}
