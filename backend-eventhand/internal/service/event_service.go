package service

import (
	"context"
	"strings"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/dto"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/repository"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventService defines the interface for event business logic.
// Every mutation checks that the event belongs to clientID.
type EventService interface {
	CreateEvent(ctx context.Context, clientID string, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error)
	ListClientEvents(ctx context.Context, clientID string) ([]*dto.EventResponse, error)
	UpdateName(ctx context.Context, clientID, eventID string, req *dto.UpdateEventNameRequest) (*dto.EventResponse, error)
	UpdateDate(ctx context.Context, clientID, eventID string, req *dto.UpdateEventDateRequest) (*dto.EventResponse, error)
	UpdateAddress(ctx context.Context, clientID, eventID string, req *dto.UpdateEventAddressRequest) (*dto.EventResponse, error)
	UpdateAttendees(ctx context.Context, clientID, eventID string, req *dto.UpdateEventAttendeesRequest) (*dto.EventResponse, error)
	UpdateBudget(ctx context.Context, clientID, eventID string, req *dto.UpdateEventBudgetRequest) (*dto.EventResponse, error)
	// DeleteEvent removes the event and its bookings
	DeleteEvent(ctx context.Context, clientID, eventID string) error
}

type eventService struct {
	eventRepo repository.EventRepository
}

// NewEventService creates a new event service
func NewEventService(eventRepo repository.EventRepository) EventService {
	return &eventService{eventRepo: eventRepo}
}

// CreateEvent validates and stores a new event
func (s *eventService) CreateEvent(ctx context.Context, clientID string, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	span.SetAttributes(attribute.String("client_id", clientID))

	if req == nil {
		span.SetStatus(codes.Error, "empty request")
		return nil, domain.ErrInvalidName
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	event, err := domain.NewEvent(clientID, req.Name, req.Attendees, date, trimAddress(req.Address), req.Budget)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// GetEvent retrieves an event by ID
func (s *eventService) GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	if err := domain.ValidateID(eventID); err != nil {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// ListClientEvents lists the events of a client
func (s *eventService) ListClientEvents(ctx context.Context, clientID string) ([]*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list_client_events")
	defer span.End()

	if strings.TrimSpace(clientID) == "" {
		span.SetStatus(codes.Error, "invalid client_id")
		return nil, domain.ErrInvalidClientID
	}
	span.SetAttributes(attribute.String("client_id", clientID))

	events, err := s.eventRepo.ListByClient(ctx, clientID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return dto.EventsFromDomain(events), nil
}

// UpdateName renames an event
func (s *eventService) UpdateName(ctx context.Context, clientID, eventID string, req *dto.UpdateEventNameRequest) (*dto.EventResponse, error) {
	name := ""
	if req != nil {
		name = strings.TrimSpace(req.Name)
	}
	return s.update(ctx, "service.event.update_name", clientID, eventID, func(ctx context.Context) (*domain.Event, error) {
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		return s.eventRepo.UpdateName(ctx, eventID, name)
	})
}

// UpdateDate moves an event to another date
func (s *eventService) UpdateDate(ctx context.Context, clientID, eventID string, req *dto.UpdateEventDateRequest) (*dto.EventResponse, error) {
	raw := ""
	if req != nil {
		raw = req.Date
	}
	return s.update(ctx, "service.event.update_date", clientID, eventID, func(ctx context.Context) (*domain.Event, error) {
		date, err := domain.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		return s.eventRepo.UpdateDate(ctx, eventID, date)
	})
}

// UpdateAddress sets or clears an event's address
func (s *eventService) UpdateAddress(ctx context.Context, clientID, eventID string, req *dto.UpdateEventAddressRequest) (*dto.EventResponse, error) {
	var address *string
	if req != nil {
		address = trimAddress(req.Address)
	}
	return s.update(ctx, "service.event.update_address", clientID, eventID, func(ctx context.Context) (*domain.Event, error) {
		return s.eventRepo.UpdateAddress(ctx, eventID, address)
	})
}

// UpdateAttendees changes the head count
func (s *eventService) UpdateAttendees(ctx context.Context, clientID, eventID string, req *dto.UpdateEventAttendeesRequest) (*dto.EventResponse, error) {
	attendees := 0
	if req != nil {
		attendees = req.Attendees
	}
	return s.update(ctx, "service.event.update_attendees", clientID, eventID, func(ctx context.Context) (*domain.Event, error) {
		if err := domain.ValidateAttendees(attendees); err != nil {
			return nil, err
		}
		return s.eventRepo.UpdateAttendees(ctx, eventID, attendees)
	})
}

// UpdateBudget replaces the budget envelope
func (s *eventService) UpdateBudget(ctx context.Context, clientID, eventID string, req *dto.UpdateEventBudgetRequest) (*dto.EventResponse, error) {
	var budget domain.Budget
	if req != nil {
		budget = req.Budget.Normalized()
	}
	return s.update(ctx, "service.event.update_budget", clientID, eventID, func(ctx context.Context) (*domain.Event, error) {
		if err := budget.Validate(); err != nil {
			return nil, err
		}
		return s.eventRepo.UpdateBudget(ctx, eventID, budget)
	})
}

// DeleteEvent removes an event owned by clientID
func (s *eventService) DeleteEvent(ctx context.Context, clientID, eventID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.delete")
	defer span.End()

	span.SetAttributes(
		attribute.String("client_id", clientID),
		attribute.String("event_id", eventID),
	)

	if _, err := s.owned(ctx, clientID, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// update runs one per-field update after the ownership check
func (s *eventService) update(
	ctx context.Context,
	spanName, clientID, eventID string,
	apply func(ctx context.Context) (*domain.Event, error),
) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()

	span.SetAttributes(
		attribute.String("client_id", clientID),
		attribute.String("event_id", eventID),
	)

	if _, err := s.owned(ctx, clientID, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	event, err := apply(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// owned loads an event and checks that clientID owns it
func (s *eventService) owned(ctx context.Context, clientID, eventID string) (*domain.Event, error) {
	if err := domain.ValidateID(eventID); err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.BelongsToClient(clientID) {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func trimAddress(address *string) *string {
	if address == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*address)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
