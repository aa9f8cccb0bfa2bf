package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/logger"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/response"
	"go.uber.org/zap"
)

// errorCodes maps domain errors to stable API codes
var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrEventNotFound, "EVENT_NOT_FOUND"},
	{domain.ErrVendorNotFound, "VENDOR_NOT_FOUND"},
	{domain.ErrPackageNotFound, "PACKAGE_NOT_FOUND"},
	{domain.ErrBookingNotFound, "BOOKING_NOT_FOUND"},
	{domain.ErrReviewNotFound, "REVIEW_NOT_FOUND"},
	{domain.ErrTagNotFound, "TAG_NOT_FOUND"},
	{domain.ErrInvalidTransition, "INVALID_TRANSITION"},
	{domain.ErrPackageVendorMismatch, "PACKAGE_VENDOR_MISMATCH"},
	{domain.ErrBookingNotReviewable, "BOOKING_NOT_REVIEWABLE"},
	{domain.ErrAlreadyReviewed, "ALREADY_REVIEWED"},
	{domain.ErrBookingEventMismatch, "EVENT_NOT_OWNED"},
	{domain.ErrInvalidRating, "INVALID_RATING"},
	{domain.ErrInvalidPagination, "INVALID_PAGINATION"},
	{domain.ErrInvalidBookingStatus, "INVALID_STATUS"},
}

func errorCode(err error, fallback string) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return fallback
}

// handleError writes the envelope matching a service error
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.Error(c, http.StatusNotFound, errorCode(err, "NOT_FOUND"), err.Error())
	case domain.IsValidationError(err):
		response.Error(c, http.StatusBadRequest, errorCode(err, "VALIDATION_ERROR"), err.Error())
	case domain.IsConflictError(err):
		response.Error(c, http.StatusConflict, errorCode(err, "CONFLICT"), err.Error())
	case domain.IsForbiddenError(err):
		response.Forbidden(c, err.Error())
	default:
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.InternalError(c)
	}
}

// invalidRequest answers a body or query that failed to bind
func invalidRequest(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
}
