package dto

import (
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateTagRequest finds or creates a tag by name
type CreateTagRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
}

// CreatePackageRequest represents a request to add a package to a vendor's catalog
type CreatePackageRequest struct {
	Name        string             `json:"name" binding:"required"`
	Price       decimal.Decimal    `json:"price"`
	Capacity    int                `json:"capacity"`
	Description string             `json:"description"`
	ImageURL    string             `json:"image_url"`
	Tags        []string           `json:"tags"`
	OrderTypes  []string           `json:"order_types"`
	Inclusions  []domain.Inclusion `json:"inclusions"`
}

// UpdatePackagePriceRequest changes the live price of a package
type UpdatePackagePriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

// VendorRatingResponse is the aggregate rating of a vendor
type VendorRatingResponse struct {
	VendorID         string  `json:"vendor_id"`
	Average          float64 `json:"average"`
	Count            int     `json:"count"`
	CredibilityScore float64 `json:"credibility_score"`
}

// TagResponse represents a tag in API response
type TagResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// TagFromDomain converts domain Tag to TagResponse
func TagFromDomain(t *domain.Tag) *TagResponse {
	return &TagResponse{ID: t.ID, Name: t.Name, Description: t.Description}
}

// PackageResponse represents a vendor package in API response
type PackageResponse struct {
	ID          string             `json:"id"`
	VendorID    string             `json:"vendor_id"`
	Name        string             `json:"name"`
	Price       decimal.Decimal    `json:"price"`
	Capacity    int                `json:"capacity"`
	Description string             `json:"description"`
	ImageURL    string             `json:"image_url"`
	Tags        []string           `json:"tags"`
	OrderTypes  []string           `json:"order_types"`
	Inclusions  []domain.Inclusion `json:"inclusions"`
}

// PackageFromDomain converts domain Package to PackageResponse
func PackageFromDomain(p *domain.Package) *PackageResponse {
	return &PackageResponse{
		ID:          p.ID,
		VendorID:    p.VendorID,
		Name:        p.Name,
		Price:       p.Price,
		Capacity:    p.Capacity,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Tags:        p.Tags,
		OrderTypes:  p.OrderTypes,
		Inclusions:  p.Inclusions,
	}
}
