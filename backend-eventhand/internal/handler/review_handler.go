package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/dto"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/service"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/middleware"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/response"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ReviewHandler handles review HTTP requests
type ReviewHandler struct {
	reviewService service.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// CreateReview handles POST /reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.review.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	clientID := middleware.GetUserID(c)
	if clientID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		invalidRequest(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("client_id", clientID),
		attribute.String("booking_id", req.BookingID),
		attribute.Int("rating", req.Rating),
	)

	result, err := h.reviewService.CreateReview(ctx, clientID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("review_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// RemoveReview handles DELETE /reviews/:id
func (h *ReviewHandler) RemoveReview(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.review.remove")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	clientID := middleware.GetUserID(c)
	if clientID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "unauthorized")
		return
	}

	reviewID := c.Param("id")
	span.SetAttributes(attribute.String("review_id", reviewID))

	if err := h.reviewService.RemoveReview(ctx, clientID, reviewID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.NoContent(c)
}
