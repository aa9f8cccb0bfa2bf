package domain

import (
	"github.com/shopspring/decimal"
)

// BudgetCategory is one of the fixed spending categories of an event
type BudgetCategory string

const (
	CategoryEventPlanning     BudgetCategory = "eventPlanning"
	CategoryEventCoordination BudgetCategory = "eventCoordination"
	CategoryVenue             BudgetCategory = "venue"
	CategoryCatering          BudgetCategory = "catering"
	CategoryDecorations       BudgetCategory = "decorations"
	CategoryPhotography       BudgetCategory = "photography"
	CategoryVideography       BudgetCategory = "videography"
)

// Categories lists every budget category in canonical order
var Categories = []BudgetCategory{
	CategoryEventPlanning,
	CategoryEventCoordination,
	CategoryVenue,
	CategoryCatering,
	CategoryDecorations,
	CategoryPhotography,
	CategoryVideography,
}

// Seeded tag ids for each category, kept in sync with the init migration
var categoryTagIDs = map[BudgetCategory]string{
	CategoryEventPlanning:     "9f3c1a2e-0001-4c6b-8a10-000000000001",
	CategoryEventCoordination: "9f3c1a2e-0002-4c6b-8a10-000000000002",
	CategoryVenue:             "9f3c1a2e-0003-4c6b-8a10-000000000003",
	CategoryCatering:          "9f3c1a2e-0004-4c6b-8a10-000000000004",
	CategoryDecorations:       "9f3c1a2e-0005-4c6b-8a10-000000000005",
	CategoryPhotography:       "9f3c1a2e-0006-4c6b-8a10-000000000006",
	CategoryVideography:       "9f3c1a2e-0007-4c6b-8a10-000000000007",
}

// IsValid checks if the category is one of the fixed set
func (c BudgetCategory) IsValid() bool {
	_, ok := categoryTagIDs[c]
	return ok
}

// TagID returns the canonical tag id of the category
func (c BudgetCategory) TagID() (string, bool) {
	id, ok := categoryTagIDs[c]
	return id, ok
}

// String returns the string representation of BudgetCategory
func (c BudgetCategory) String() string {
	return string(c)
}

// Budget maps categories to allocations. A nil allocation means the category was not requested.
type Budget map[BudgetCategory]*decimal.Decimal

// Total sums every non-null allocation
func (b Budget) Total() decimal.Decimal {
	total := decimal.Zero
	for _, c := range Categories {
		if v := b[c]; v != nil {
			total = total.Add(*v)
		}
	}
	return total
}

// Validate rejects negative allocations
func (b Budget) Validate() error {
	for _, v := range b {
		if v != nil && v.IsNegative() {
			return ErrInvalidBudget
		}
	}
	return nil
}

// Normalized returns a copy holding all seven categories and nothing else
func (b Budget) Normalized() Budget {
	out := make(Budget, len(Categories))
	for _, c := range Categories {
		if v := b[c]; v != nil {
			d := *v
			out[c] = &d
		} else {
			out[c] = nil
		}
	}
	return out
}

// Allocation is a requested category with its spending cap and canonical tag
type Allocation struct {
	Category BudgetCategory
	Amount   decimal.Decimal
	TagID    string
}

// Allocations maps every non-null budget entry to its tag, in canonical category order.
// Keys outside the fixed set are ignored.
func (b Budget) Allocations() []Allocation {
	out := make([]Allocation, 0, len(Categories))
	for _, c := range Categories {
		v := b[c]
		if v == nil {
			continue
		}
		tagID, _ := c.TagID()
		out = append(out, Allocation{Category: c, Amount: *v, TagID: tagID})
	}
	return out
}
