package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Inclusion is one item delivered as part of a package
type Inclusion struct {
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Package is a priced service offering owned by one vendor
type Package struct {
	ID          string          `json:"id"`
	VendorID    string          `json:"vendor_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Capacity    int             `json:"capacity"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Tags        []string        `json:"tags"`
	OrderTypes  []string        `json:"order_types"`
	Inclusions  []Inclusion     `json:"inclusions"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Validate validates all package fields
func (p *Package) Validate() error {
	if err := ValidateID(p.VendorID); err != nil {
		return err
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if p.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if p.Capacity < 0 {
		return ErrInvalidCapacity
	}
	return nil
}

// HasTag reports whether the package carries tagID
func (p *Package) HasTag(tagID string) bool {
	return slices.Contains(p.Tags, tagID)
}

// BelongsToVendor checks if the package is owned by vendorID
func (p *Package) BelongsToVendor(vendorID string) bool {
	return p.VendorID == vendorID
}

// Snapshot copies the package into a booking-owned value. Later edits to p never reach it.
func (p *Package) Snapshot() PackageSnapshot {
	return PackageSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Capacity:    p.Capacity,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Tags:        slices.Clone(p.Tags),
		OrderTypes:  slices.Clone(p.OrderTypes),
		Inclusions:  slices.Clone(p.Inclusions),
	}
}

// PackageSnapshot is the package as it was when a booking was made
type PackageSnapshot struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Capacity    int             `json:"capacity"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Tags        []string        `json:"tags"`
	OrderTypes  []string        `json:"order_types,omitempty"`
	Inclusions  []Inclusion     `json:"inclusions"`
}

// Validate rejects empty snapshots
func (s PackageSnapshot) Validate() error {
	if strings.TrimSpace(s.Name) == "" || s.Price.IsNegative() {
		return ErrInvalidPackageSnapshot
	}
	return nil
}
