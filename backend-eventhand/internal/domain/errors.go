package domain

import "errors"

// Domain errors
var (
	// Not found errors
	ErrEventNotFound   = errors.New("event not found")
	ErrVendorNotFound  = errors.New("vendor not found")
	ErrPackageNotFound = errors.New("package not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrTagNotFound     = errors.New("tag not found")

	// Validation errors
	ErrInvalidID              = errors.New("invalid id")
	ErrInvalidClientID        = errors.New("invalid client id")
	ErrInvalidName            = errors.New("name is required")
	ErrInvalidAttendees       = errors.New("attendees must be at least 2")
	ErrInvalidDate            = errors.New("invalid date")
	ErrInvalidBudget          = errors.New("budget allocations cannot be negative")
	ErrInvalidPackageSnapshot = errors.New("package snapshot is empty")
	ErrInvalidPrice           = errors.New("price cannot be negative")
	ErrInvalidCapacity        = errors.New("capacity cannot be negative")
	ErrInvalidRating          = errors.New("rating must be between 1 and 5")
	ErrInvalidBookingStatus   = errors.New("invalid booking status")
	ErrInvalidWeekday         = errors.New("invalid weekday")
	ErrInvalidPagination      = errors.New("page and page size must be positive")

	// Conflict errors
	ErrInvalidTransition     = errors.New("booking status transition not allowed")
	ErrPackageVendorMismatch = errors.New("package does not belong to vendor")
	ErrBookingNotReviewable  = errors.New("booking cannot be reviewed in its current status")
	ErrAlreadyReviewed       = errors.New("booking has already been reviewed")
	ErrBookingEventMismatch  = errors.New("event does not belong to client")

	// Permission errors
	ErrForbidden = errors.New("not allowed to act on this resource")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrVendorNotFound) ||
		errors.Is(err, ErrPackageNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrReviewNotFound) ||
		errors.Is(err, ErrTagNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidClientID) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidAttendees) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidBudget) ||
		errors.Is(err, ErrInvalidPackageSnapshot) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrInvalidBookingStatus) ||
		errors.Is(err, ErrInvalidWeekday) ||
		errors.Is(err, ErrInvalidPagination)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrPackageVendorMismatch) ||
		errors.Is(err, ErrBookingNotReviewable) ||
		errors.Is(err, ErrAlreadyReviewed) ||
		errors.Is(err, ErrBookingEventMismatch)
}

// IsForbiddenError checks if the error is a permission error
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrForbidden)
}
