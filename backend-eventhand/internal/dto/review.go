package dto

import (
	"time"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
)

// CreateReviewRequest files a review against a booking
type CreateReviewRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
}

// ReviewResponse represents a review in API response
type ReviewResponse struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	VendorID  string    `json:"vendor_id"`
	BookingID string    `json:"booking_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewFromDomain converts domain Review to ReviewResponse
func ReviewFromDomain(r *domain.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:        r.ID,
		ClientID:  r.ClientID,
		VendorID:  r.VendorID,
		BookingID: r.BookingID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
