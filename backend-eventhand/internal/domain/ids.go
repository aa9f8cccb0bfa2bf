package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// ValidateID checks that id is a well-formed UUID
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// ValidateIDs checks every id
func ValidateIDs(ids ...string) error {
	for _, id := range ids {
		if err := ValidateID(id); err != nil {
			return err
		}
	}
	return nil
}

// NewID returns a fresh random id
func NewID() string {
	return uuid.NewString()
}

// ParseDate parses a YYYY-MM-DD calendar date at UTC midnight
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// CalendarDate truncates t to UTC midnight of its UTC calendar day
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfToday returns UTC midnight of the current day
func StartOfToday(now time.Time) time.Time {
	return CalendarDate(now)
}
