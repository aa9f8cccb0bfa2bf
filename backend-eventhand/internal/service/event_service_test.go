package service

import (
	"context"
	"testing"
	"time"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_CreateEvent(t *testing.T) {
	tests := []struct {
		name    string
		req     *dto.CreateEventRequest
		wantErr error
	}{
		{
			name: "valid event",
			req: &dto.CreateEventRequest{
				Name:      " Wedding ",
				Attendees: 120,
				Date:      "2025-06-01",
				Budget:    domain.Budget{domain.CategoryVenue: amount(5000), domain.CategoryCatering: nil},
			},
		},
		{
			name:    "single attendee",
			req:     &dto.CreateEventRequest{Name: "Dinner", Attendees: 1, Date: "2025-06-01"},
			wantErr: domain.ErrInvalidAttendees,
		},
		{
			name:    "bad date",
			req:     &dto.CreateEventRequest{Name: "Dinner", Attendees: 4, Date: "tomorrow"},
			wantErr: domain.ErrInvalidDate,
		},
		{
			name: "negative allocation",
			req: &dto.CreateEventRequest{
				Name:      "Dinner",
				Attendees: 4,
				Date:      "2025-06-01",
				Budget:    domain.Budget{domain.CategoryVenue: amount(-1)},
			},
			wantErr: domain.ErrInvalidBudget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stored *domain.Event
			repo := &MockEventRepository{
				CreateFunc: func(ctx context.Context, event *domain.Event) error {
					stored = event
					return nil
				},
			}
			svc := NewEventService(repo)

			resp, err := svc.CreateEvent(context.Background(), testClientID, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, stored)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, "Wedding", resp.Name)
			assert.Equal(t, "2025-06-01", resp.Date)
			assert.True(t, resp.TotalBudget.Equal(decimal.NewFromInt(5000)))
			assert.Len(t, resp.Budget, len(domain.Categories))
			assert.Nil(t, resp.Budget[domain.CategoryCatering])
			assert.Empty(t, resp.BookingIDs)
		})
	}
}

func TestEventService_Updates(t *testing.T) {
	eventID := domain.NewID()
	event := &domain.Event{ID: eventID, ClientID: testClientID, Name: "Wedding", Attendees: 50, Date: testDate}

	newRepo := func() *MockEventRepository {
		return &MockEventRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Event, error) {
				if id != eventID {
					return nil, domain.ErrEventNotFound
				}
				cp := *event
				return &cp, nil
			},
			UpdateNameFunc: func(ctx context.Context, id, name string) (*domain.Event, error) {
				cp := *event
				cp.Name = name
				return &cp, nil
			},
			UpdateDateFunc: func(ctx context.Context, id string, date time.Time) (*domain.Event, error) {
				cp := *event
				cp.Date = date
				return &cp, nil
			},
			UpdateAddressFunc: func(ctx context.Context, id string, address *string) (*domain.Event, error) {
				cp := *event
				cp.Address = address
				return &cp, nil
			},
			UpdateAttendeesFunc: func(ctx context.Context, id string, attendees int) (*domain.Event, error) {
				cp := *event
				cp.Attendees = attendees
				return &cp, nil
			},
			UpdateBudgetFunc: func(ctx context.Context, id string, budget domain.Budget) (*domain.Event, error) {
				cp := *event
				cp.Budget = budget
				return &cp, nil
			},
		}
	}
	ctx := context.Background()

	t.Run("name", func(t *testing.T) {
		svc := NewEventService(newRepo())
		resp, err := svc.UpdateName(ctx, testClientID, eventID, &dto.UpdateEventNameRequest{Name: " Reception "})
		require.NoError(t, err)
		assert.Equal(t, "Reception", resp.Name)

		_, err = svc.UpdateName(ctx, testClientID, eventID, &dto.UpdateEventNameRequest{Name: "  "})
		assert.ErrorIs(t, err, domain.ErrInvalidName)
	})

	t.Run("date", func(t *testing.T) {
		svc := NewEventService(newRepo())
		resp, err := svc.UpdateDate(ctx, testClientID, eventID, &dto.UpdateEventDateRequest{Date: "2025-07-04"})
		require.NoError(t, err)
		assert.Equal(t, "2025-07-04", resp.Date)

		_, err = svc.UpdateDate(ctx, testClientID, eventID, &dto.UpdateEventDateRequest{Date: "July"})
		assert.ErrorIs(t, err, domain.ErrInvalidDate)
	})

	t.Run("address is cleared when blank", func(t *testing.T) {
		svc := NewEventService(newRepo())
		blank := "   "
		resp, err := svc.UpdateAddress(ctx, testClientID, eventID, &dto.UpdateEventAddressRequest{Address: &blank})
		require.NoError(t, err)
		assert.Nil(t, resp.Address)
	})

	t.Run("attendees", func(t *testing.T) {
		svc := NewEventService(newRepo())
		resp, err := svc.UpdateAttendees(ctx, testClientID, eventID, &dto.UpdateEventAttendeesRequest{Attendees: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Attendees)

		_, err = svc.UpdateAttendees(ctx, testClientID, eventID, &dto.UpdateEventAttendeesRequest{Attendees: 1})
		assert.ErrorIs(t, err, domain.ErrInvalidAttendees)
	})

	t.Run("budget totals ignore null categories", func(t *testing.T) {
		svc := NewEventService(newRepo())
		resp, err := svc.UpdateBudget(ctx, testClientID, eventID, &dto.UpdateEventBudgetRequest{
			Budget: domain.Budget{
				domain.CategoryVenue:       amount(3000),
				domain.CategoryPhotography: amount(800),
				domain.CategoryCatering:    nil,
			},
		})
		require.NoError(t, err)
		assert.True(t, resp.TotalBudget.Equal(decimal.NewFromInt(3800)))
	})

	t.Run("another client cannot update", func(t *testing.T) {
		svc := NewEventService(newRepo())
		_, err := svc.UpdateName(ctx, "client-002", eventID, &dto.UpdateEventNameRequest{Name: "Mine"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown event", func(t *testing.T) {
		svc := NewEventService(newRepo())
		_, err := svc.UpdateName(ctx, testClientID, domain.NewID(), &dto.UpdateEventNameRequest{Name: "X"})
		assert.ErrorIs(t, err, domain.ErrEventNotFound)
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	eventID := domain.NewID()
	var deleted []string
	repo := &MockEventRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Event, error) {
			return &domain.Event{ID: id, ClientID: testClientID}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = append(deleted, id)
			return nil
		},
	}
	svc := NewEventService(repo)

	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), "client-002", eventID), domain.ErrForbidden)
	assert.Empty(t, deleted)

	require.NoError(t, svc.DeleteEvent(context.Background(), testClientID, eventID))
	assert.Equal(t, []string{eventID}, deleted)
}

func TestEventService_ListClientEvents(t *testing.T) {
	repo := &MockEventRepository{
		ListByClientFunc: func(ctx context.Context, clientID string) ([]*domain.Event, error) {
			return []*domain.Event{{ID: domain.NewID(), ClientID: clientID, Date: testDate}}, nil
		},
	}
	svc := NewEventService(repo)

	got, err := svc.ListClientEvents(context.Background(), testClientID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, testClientID, got[0].ClientID)

	_, err = svc.ListClientEvents(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidClientID)
}
