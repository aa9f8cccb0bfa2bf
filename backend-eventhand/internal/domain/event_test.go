package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestBudget_Allocations(t *testing.T) {
	budget := Budget{
		CategoryCatering:    dec(2000),
		CategoryVenue:       dec(5000),
		CategoryDecorations: nil,
		"fireworks":         dec(999),
	}

	got := budget.Allocations()
	if len(got) != 2 {
		t.Fatalf("Allocations() len = %d, want 2", len(got))
	}
	// canonical order puts venue before catering
	if got[0].Category != CategoryVenue || got[1].Category != CategoryCatering {
		t.Errorf("unexpected order: %v, %v", got[0].Category, got[1].Category)
	}
	if got[0].TagID != categoryTagIDs[CategoryVenue] {
		t.Errorf("venue tag = %s", got[0].TagID)
	}
}

func TestBudget_Allocations_Deterministic(t *testing.T) {
	budget := Budget{}
	for _, c := range Categories {
		budget[c] = dec(100)
	}
	first := budget.Allocations()
	for i := 0; i < 20; i++ {
		again := budget.Allocations()
		for j := range first {
			if first[j].Category != again[j].Category {
				t.Fatal("allocation order changed between calls")
			}
		}
	}
}

func TestBudget_Total(t *testing.T) {
	budget := Budget{CategoryVenue: dec(5000), CategoryCatering: nil, CategoryPhotography: dec(1500)}
	if got := budget.Total(); !got.Equal(decimal.NewFromInt(6500)) {
		t.Errorf("Total() = %s, want 6500", got)
	}
	if got := (Budget{}).Total(); !got.IsZero() {
		t.Errorf("empty Total() = %s", got)
	}
}

func TestBudget_Validate(t *testing.T) {
	if err := (Budget{CategoryVenue: dec(-1)}).Validate(); !errors.Is(err, ErrInvalidBudget) {
		t.Errorf("negative allocation: got %v", err)
	}
}

func TestBudget_NormalizedJSON(t *testing.T) {
	raw := []byte(`{"venue": 5000, "catering": null, "unknown": 1}`)
	var budget Budget
	if err := json.Unmarshal(raw, &budget); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	n := budget.Normalized()
	if len(n) != len(Categories) {
		t.Fatalf("normalized len = %d", len(n))
	}
	if _, ok := n["unknown"]; ok {
		t.Error("unknown key survived normalization")
	}
	if n[CategoryCatering] != nil {
		t.Error("catering should be null")
	}
	if !n[CategoryVenue].Equal(decimal.NewFromInt(5000)) {
		t.Errorf("venue = %v", n[CategoryVenue])
	}
}

func TestNewEvent(t *testing.T) {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, err := NewEvent("c1", "Wedding", 1, date, nil, Budget{}); !errors.Is(err, ErrInvalidAttendees) {
		t.Errorf("attendees 1: got %v", err)
	}
	if _, err := NewEvent("c1", " ", 10, date, nil, Budget{}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("blank name: got %v", err)
	}
	if _, err := NewEvent("", "Wedding", 10, date, nil, Budget{}); !errors.Is(err, ErrInvalidClientID) {
		t.Errorf("blank client: got %v", err)
	}

	e, err := NewEvent("c1", "Wedding", 2, date, nil, Budget{CategoryVenue: dec(5000)})
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	if len(e.BookingIDs) != 0 || e.HasBooking("x") {
		t.Error("new event should have no bookings")
	}
}

func TestWeekdayOf(t *testing.T) {
	// 2025-06-01 is a Sunday
	if got := WeekdayOf(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)); got != Sunday {
		t.Errorf("WeekdayOf() = %s, want SUNDAY", got)
	}
}

func TestParseWeekday(t *testing.T) {
	if got, err := ParseWeekday("monday"); err != nil || got != Monday {
		t.Errorf("ParseWeekday() = %v, %v", got, err)
	}
	if _, err := ParseWeekday("funday"); !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("expected ErrInvalidWeekday, got %v", err)
	}
}

func TestVendor_IsAvailableOn(t *testing.T) {
	sunday := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	monday := sunday.AddDate(0, 0, 1)

	v := &Vendor{Visibility: true, BlockedDays: []Weekday{Sunday}}
	if v.IsAvailableOn(sunday) {
		t.Error("vendor blocks sundays")
	}
	if !v.IsAvailableOn(monday) {
		t.Error("vendor works mondays")
	}

	v.Visibility = false
	if v.IsAvailableOn(monday) {
		t.Error("hidden vendor should never be available")
	}
}

func TestCredibilityFactors_Score(t *testing.T) {
	tests := []struct {
		name    string
		factors CredibilityFactors
		want    float64
	}{
		{"empty", CredibilityFactors{}, 0},
		{"rating and count", CredibilityFactors{FactorRatingsScore: 4, FactorReviewCount: 10}, 0.5*4 + 0.3*10},
		{"verified id", CredibilityFactors{FactorVerifiedID: 1}, 2},
		{"documents", CredibilityFactors{FactorVerifiedDocuments: 3}, 1.5},
		{"everything", CredibilityFactors{
			FactorRatingsScore: 5, FactorReviewCount: 2, FactorRecency: 1, FactorVerifiedID: 1, FactorVerifiedDocuments: 2,
		}, 2.5 + 0.6 + 0.2 + 2 + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.factors.Score(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCredibilityFactors_WithRating(t *testing.T) {
	orig := CredibilityFactors{FactorVerifiedID: 1}
	updated := orig.WithRating(4.5, 3)

	if _, ok := orig[FactorRatingsScore]; ok {
		t.Error("WithRating mutated the receiver")
	}
	if updated[FactorRatingsScore] != 4.5 || updated[FactorReviewCount] != 3 || updated[FactorVerifiedID] != 1 {
		t.Errorf("unexpected factors: %v", updated)
	}
}

func TestValidateRating(t *testing.T) {
	for _, r := range []int{0, 6, -1} {
		if err := ValidateRating(r); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating %d: got %v", r, err)
		}
	}
	for r := MinRating; r <= MaxRating; r++ {
		if err := ValidateRating(r); err != nil {
			t.Errorf("rating %d: got %v", r, err)
		}
	}
}

func TestErrorClassification(t *testing.T) {
	if !IsNotFoundError(ErrBookingNotFound) || IsNotFoundError(ErrInvalidID) {
		t.Error("not found classification")
	}
	if !IsValidationError(ErrInvalidAttendees) || IsValidationError(ErrInvalidTransition) {
		t.Error("validation classification")
	}
	if !IsConflictError(ErrInvalidTransition) || IsConflictError(ErrEventNotFound) {
		t.Error("conflict classification")
	}
}

func TestValidateID(t *testing.T) {
	if err := ValidateID(NewID()); err != nil {
		t.Errorf("valid id rejected: %v", err)
	}
	if err := ValidateID("abc"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("malformed id: got %v", err)
	}
}
