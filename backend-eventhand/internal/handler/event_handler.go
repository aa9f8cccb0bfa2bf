package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/dto"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/service"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/middleware"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/response"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventHandler handles client event HTTP requests, including vendor matching
type EventHandler struct {
	eventService service.EventService
	matchService service.MatchService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService service.EventService, matchService service.MatchService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		matchService: matchService,
	}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	clientID := middleware.GetUserID(c)
	if clientID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		invalidRequest(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("client_id", clientID),
		attribute.String("date", req.Date),
	)

	result, err := h.eventService.CreateEvent(ctx, clientID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("event_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// GetEvent handles GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := h.eventService.GetEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, result)
}

// ListEvents handles GET /events for the calling client
func (h *EventHandler) ListEvents(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	clientID := middleware.GetUserID(c)
	if clientID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "unauthorized")
		return
	}

	events, err := h.eventService.ListClientEvents(ctx, clientID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	response.OK(c, events)
}

// MatchEvent handles GET /events/:id/matches
func (h *EventHandler) MatchEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.match")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	matches, err := h.matchService.MatchEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, matches)
}

// UpdateName handles PATCH /events/:id/name
func (h *EventHandler) UpdateName(c *gin.Context) {
	var req dto.UpdateEventNameRequest
	h.update(c, "handler.event.update_name", &req, func(ctx context.Context, clientID, eventID string) (*dto.EventResponse, error) {
		return h.eventService.UpdateName(ctx, clientID, eventID, &req)
	})
}

// UpdateDate handles PATCH /events/:id/date
func (h *EventHandler) UpdateDate(c *gin.Context) {
	var req dto.UpdateEventDateRequest
	h.update(c, "handler.event.update_date", &req, func(ctx context.Context, clientID, eventID string) (*dto.EventResponse, error) {
		return h.eventService.UpdateDate(ctx, clientID, eventID, &req)
	})
}

// UpdateAddress handles PATCH /events/:id/address
func (h *EventHandler) UpdateAddress(c *gin.Context) {
	var req dto.UpdateEventAddressRequest
	h.update(c, "handler.event.update_address", &req, func(ctx context.Context, clientID, eventID string) (*dto.EventResponse, error) {
		return h.eventService.UpdateAddress(ctx, clientID, eventID, &req)
	})
}

// UpdateAttendees handles PATCH /events/:id/attendees
func (h *EventHandler) UpdateAttendees(c *gin.Context) {
	var req dto.UpdateEventAttendeesRequest
	h.update(c, "handler.event.update_attendees", &req, func(ctx context.Context, clientID, eventID string) (*dto.EventResponse, error) {
		return h.eventService.UpdateAttendees(ctx, clientID, eventID, &req)
	})
}

// UpdateBudget handles PATCH /events/:id/budget
func (h *EventHandler) UpdateBudget(c *gin.Context) {
	var req dto.UpdateEventBudgetRequest
	h.update(c, "handler.event.update_budget", &req, func(ctx context.Context, clientID, eventID string) (*dto.EventResponse, error) {
		return h.eventService.UpdateBudget(ctx, clientID, eventID, &req)
	})
}

type eventUpdateFunc func(ctx context.Context, clientID, eventID string) (*dto.EventResponse, error)

// update binds req, then runs apply on behalf of the calling client
func (h *EventHandler) update(c *gin.Context, spanName string, req any, apply eventUpdateFunc) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), spanName)
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	clientID := middleware.GetUserID(c)
	if clientID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := c.ShouldBindJSON(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		invalidRequest(c, err)
		return
	}

	eventID := c.Param("id")
	span.SetAttributes(
		attribute.String("client_id", clientID),
		attribute.String("event_id", eventID),
	)

	result, err := apply(ctx, clientID, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, result)
}

// DeleteEvent handles DELETE /events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	clientID := middleware.GetUserID(c)
	if clientID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "unauthorized")
		return
	}

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	if err := h.eventService.DeleteEvent(ctx, clientID, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.NoContent(c)
}
