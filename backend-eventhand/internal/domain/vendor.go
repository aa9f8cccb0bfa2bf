package domain

import (
	"slices"
	"strings"
	"time"
)

// Weekday is a recurring day a vendor does not work
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

var weekdays = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// WeekdayOf returns the weekday of a calendar date
func WeekdayOf(date time.Time) Weekday {
	return weekdays[date.UTC().Weekday()]
}

// ParseWeekday accepts a weekday name in any case
func ParseWeekday(s string) (Weekday, error) {
	w := Weekday(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range weekdays {
		if w == known {
			return w, nil
		}
	}
	return "", ErrInvalidWeekday
}

// Vendor offers bookable packages
type Vendor struct {
	ID                 string             `json:"id"`
	Identity           string             `json:"identity"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	ContactNumber      string             `json:"contact_number"`
	Bio                string             `json:"bio"`
	LogoURL            string             `json:"logo_url"`
	BannerURL          string             `json:"banner_url"`
	Tags               []string           `json:"tags"`
	BlockedDays        []Weekday          `json:"blocked_days"`
	Visibility         bool               `json:"visibility"`
	CredibilityFactors CredibilityFactors `json:"credibility_factors"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// IsBlockedOn reports whether the vendor does not work on the weekday of date
func (v *Vendor) IsBlockedOn(date time.Time) bool {
	return slices.Contains(v.BlockedDays, WeekdayOf(date))
}

// IsAvailableOn reports whether the vendor is visible and works on the weekday of date.
// Booking conflicts are checked separately.
func (v *Vendor) IsAvailableOn(date time.Time) bool {
	return v.Visibility && !v.IsBlockedOn(date)
}
