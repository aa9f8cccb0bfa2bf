package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a client's rating of a vendor for one booking
type Review struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	VendorID  string    `json:"vendor_id"`
	BookingID string    `json:"booking_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateRating enforces the 1..5 scale
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// VendorRating is the aggregate of a vendor's reviews
type VendorRating struct {
	VendorID string  `json:"vendor_id"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
}
