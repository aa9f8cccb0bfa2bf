package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/dto"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/service"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/middleware"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/response"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBooking handles POST /bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	clientID := middleware.GetUserID(c)
	if clientID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		invalidRequest(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("client_id", clientID),
		attribute.String("event_id", req.EventID),
		attribute.String("vendor_id", req.VendorID),
		attribute.String("package_id", req.PackageID),
	)

	result, err := h.bookingService.CreateBooking(ctx, clientID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("booking_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// GetBooking handles GET /bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.bookingService.GetBooking(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, result)
}

// ConfirmBooking handles POST /bookings/:id/confirm. Only the booked vendor may confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	vendorID := middleware.GetUserID(c)
	h.transition(c, "handler.booking.confirm", func(ctx context.Context, bookingID string) (*dto.TransitionResponse, error) {
		booking, err := h.bookingService.GetBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if vendorID == "" || booking.VendorID != vendorID {
			return nil, domain.ErrForbidden
		}
		return h.bookingService.ConfirmBooking(ctx, bookingID)
	})
}

// CancelBooking handles POST /bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	h.transition(c, "handler.booking.cancel", h.bookingService.CancelBooking)
}

// CompleteBooking handles POST /bookings/:id/complete
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	h.transition(c, "handler.booking.complete", h.bookingService.CompleteBooking)
}

type transitionFunc func(ctx context.Context, bookingID string) (*dto.TransitionResponse, error)

func (h *BookingHandler) transition(c *gin.Context, spanName string, apply transitionFunc) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), spanName)
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("user_id", middleware.GetUserID(c)),
	)

	result, err := apply(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(
		attribute.Bool("changed", result.Changed),
		attribute.Int64("declined", result.Declined),
	)
	span.SetStatus(codes.Ok, "")
	response.OK(c, result)
}

// RemoveBooking handles DELETE /bookings/:id
func (h *BookingHandler) RemoveBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.remove")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking_id", bookingID))

	if err := h.bookingService.RemoveBooking(ctx, bookingID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.NoContent(c)
}

// ListVendorBookings handles GET /vendors/:id/bookings
func (h *BookingHandler) ListVendorBookings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.list_vendor_bookings")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	vendorID := c.Param("id")
	if callerID := middleware.GetUserID(c); callerID == "" || callerID != vendorID {
		span.SetStatus(codes.Error, "forbidden")
		response.Forbidden(c, domain.ErrForbidden.Error())
		return
	}

	var query dto.ListVendorBookingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid query")
		invalidRequest(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("vendor_id", vendorID),
		attribute.String("status", query.Status),
		attribute.Int("page", query.Page),
	)

	page, err := h.bookingService.ListVendorBookings(ctx, vendorID, &query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Paginated(c, page.Items, response.Meta{
		Page:       page.CurrentPage,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		HasMore:    page.HasMore,
	})
}

// ListEventBookings handles GET /events/:id/bookings
func (h *BookingHandler) ListEventBookings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.list_event_bookings")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	bookings, err := h.bookingService.ListEventBookings(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	response.OK(c, bookings)
}
