package dto

import (
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/shopspring/decimal"
)

// MatchedPackage is a package that fits a budget category, enriched with vendor reputation
type MatchedPackage struct {
	ID          string             `json:"id"`
	VendorID    string             `json:"vendor_id"`
	VendorName  string             `json:"vendor_name"`
	Name        string             `json:"name"`
	Price       decimal.Decimal    `json:"price"`
	Capacity    int                `json:"capacity"`
	Description string             `json:"description"`
	ImageURL    string             `json:"image_url"`
	Tags        []string           `json:"tags"`
	OrderTypes  []string           `json:"order_types"`
	Inclusions  []domain.Inclusion `json:"inclusions"`
	// AverageRating is 0 when the vendor has no reviews
	AverageRating    float64 `json:"average_rating"`
	CredibilityScore float64 `json:"credibility_score"`
}

// MatchResponse maps every budget category to its matches.
// A nil slice means the category was not requested; an empty slice means nothing fit.
type MatchResponse map[domain.BudgetCategory][]*MatchedPackage
