package service

import (
	"slices"
	"strings"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/dto"
)

// matchPackages builds the per-category result of a matchEvent call.
//
// Every category is present in the result. Categories without an allocation map
// to nil, requested categories to a possibly empty slice. A package qualifies for
// a category when its vendor is in vendors, it carries the category tag and its
// price does not exceed the allocation. Results are ordered by price desc, then
// vendor rating desc, then package id.
func matchPackages(
	allocations []domain.Allocation,
	candidates []*domain.Package,
	vendors map[string]*domain.Vendor,
	ratings map[string]*domain.VendorRating,
) dto.MatchResponse {
	out := make(dto.MatchResponse, len(domain.Categories))
	for _, c := range domain.Categories {
		out[c] = nil
	}

	for _, alloc := range allocations {
		matches := make([]*dto.MatchedPackage, 0)
		for _, p := range candidates {
			vendor, ok := vendors[p.VendorID]
			if !ok {
				continue
			}
			if !p.HasTag(alloc.TagID) {
				continue
			}
			if p.Price.GreaterThan(alloc.Amount) {
				continue
			}
			matches = append(matches, toMatchedPackage(p, vendor, ratings[p.VendorID]))
		}

		slices.SortFunc(matches, compareMatches)
		out[alloc.Category] = matches
	}
	return out
}

func compareMatches(a, b *dto.MatchedPackage) int {
	if c := b.Price.Cmp(a.Price); c != 0 {
		return c
	}
	if a.AverageRating != b.AverageRating {
		if a.AverageRating > b.AverageRating {
			return -1
		}
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}

func toMatchedPackage(p *domain.Package, v *domain.Vendor, rating *domain.VendorRating) *dto.MatchedPackage {
	var (
		average float64
		count   int
	)
	if rating != nil {
		average = rating.Average
		count = rating.Count
	}

	return &dto.MatchedPackage{
		ID:               p.ID,
		VendorID:         p.VendorID,
		VendorName:       v.Name,
		Name:             p.Name,
		Price:            p.Price,
		Capacity:         p.Capacity,
		Description:      p.Description,
		ImageURL:         p.ImageURL,
		Tags:             slices.Clone(p.Tags),
		OrderTypes:       slices.Clone(p.OrderTypes),
		Inclusions:       slices.Clone(p.Inclusions),
		AverageRating:    average,
		CredibilityScore: v.CredibilityFactors.WithRating(average, count).Score(),
	}
}
