package handler

import (
	"context"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/dto"
	"github.com/shopspring/decimal"
)

// MockBookingService is a mock implementation of BookingService for testing
type MockBookingService struct {
	CreateBookingFunc       func(ctx context.Context, clientID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	GetBookingFunc          func(ctx context.Context, bookingID string) (*dto.BookingResponse, error)
	ConfirmBookingFunc      func(ctx context.Context, bookingID string) (*dto.TransitionResponse, error)
	CancelBookingFunc       func(ctx context.Context, bookingID string) (*dto.TransitionResponse, error)
	CompleteBookingFunc     func(ctx context.Context, bookingID string) (*dto.TransitionResponse, error)
	RemoveBookingFunc       func(ctx context.Context, bookingID string) error
	ListVendorBookingsFunc  func(ctx context.Context, vendorID string, query *dto.ListVendorBookingsQuery) (*dto.VendorBookingPage, error)
	ListEventBookingsFunc   func(ctx context.Context, eventID string) ([]*dto.BookingResponse, error)
	SweepStalePendingFunc   func(ctx context.Context, vendorID string) (int64, error)
	ReconcileDuplicatesFunc func(ctx context.Context, limit int) (int64, error)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, clientID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	if m.CreateBookingFunc != nil {
		return m.CreateBookingFunc(ctx, clientID, req)
	}
	return &dto.BookingResponse{}, nil
}

func (m *MockBookingService) GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	if m.GetBookingFunc != nil {
		return m.GetBookingFunc(ctx, bookingID)
	}
	return &dto.BookingResponse{ID: bookingID}, nil
}

func (m *MockBookingService) ConfirmBooking(ctx context.Context, bookingID string) (*dto.TransitionResponse, error) {
	if m.ConfirmBookingFunc != nil {
		return m.ConfirmBookingFunc(ctx, bookingID)
	}
	return &dto.TransitionResponse{Changed: true}, nil
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string) (*dto.TransitionResponse, error) {
	if m.CancelBookingFunc != nil {
		return m.CancelBookingFunc(ctx, bookingID)
	}
	return &dto.TransitionResponse{Changed: true}, nil
}

func (m *MockBookingService) CompleteBooking(ctx context.Context, bookingID string) (*dto.TransitionResponse, error) {
	if m.CompleteBookingFunc != nil {
		return m.CompleteBookingFunc(ctx, bookingID)
	}
	return &dto.TransitionResponse{Changed: true}, nil
}

func (m *MockBookingService) Complete(ctx context.Context, bookingID string) error {
	_, err := m.CompleteBooking(ctx, bookingID)
	return err
}

func (m *MockBookingService) RemoveBooking(ctx context.Context, bookingID string) error {
	if m.RemoveBookingFunc != nil {
		return m.RemoveBookingFunc(ctx, bookingID)
	}
	return nil
}

func (m *MockBookingService) ListVendorBookings(ctx context.Context, vendorID string, query *dto.ListVendorBookingsQuery) (*dto.VendorBookingPage, error) {
	if m.ListVendorBookingsFunc != nil {
		return m.ListVendorBookingsFunc(ctx, vendorID, query)
	}
	return &dto.VendorBookingPage{}, nil
}

func (m *MockBookingService) ListEventBookings(ctx context.Context, eventID string) ([]*dto.BookingResponse, error) {
	if m.ListEventBookingsFunc != nil {
		return m.ListEventBookingsFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *MockBookingService) SweepStalePending(ctx context.Context, vendorID string) (int64, error) {
	if m.SweepStalePendingFunc != nil {
		return m.SweepStalePendingFunc(ctx, vendorID)
	}
	return 0, nil
}

func (m *MockBookingService) ReconcileDuplicates(ctx context.Context, limit int) (int64, error) {
	if m.ReconcileDuplicatesFunc != nil {
		return m.ReconcileDuplicatesFunc(ctx, limit)
	}
	return 0, nil
}

// MockEventService is a mock implementation of EventService for testing
type MockEventService struct {
	CreateEventFunc      func(ctx context.Context, clientID string, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	GetEventFunc         func(ctx context.Context, eventID string) (*dto.EventResponse, error)
	ListClientEventsFunc func(ctx context.Context, clientID string) ([]*dto.EventResponse, error)
	UpdateNameFunc       func(ctx context.Context, clientID, eventID string, req *dto.UpdateEventNameRequest) (*dto.EventResponse, error)
	UpdateDateFunc       func(ctx context.Context, clientID, eventID string, req *dto.UpdateEventDateRequest) (*dto.EventResponse, error)
	UpdateAddressFunc    func(ctx context.Context, clientID, eventID string, req *dto.UpdateEventAddressRequest) (*dto.EventResponse, error)
	UpdateAttendeesFunc  func(ctx context.Context, clientID, eventID string, req *dto.UpdateEventAttendeesRequest) (*dto.EventResponse, error)
	UpdateBudgetFunc     func(ctx context.Context, clientID, eventID string, req *dto.UpdateEventBudgetRequest) (*dto.EventResponse, error)
	DeleteEventFunc      func(ctx context.Context, clientID, eventID string) error
}

func (m *MockEventService) CreateEvent(ctx context.Context, clientID string, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	if m.CreateEventFunc != nil {
		return m.CreateEventFunc(ctx, clientID, req)
	}
	return &dto.EventResponse{ClientID: clientID}, nil
}

func (m *MockEventService) GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	if m.GetEventFunc != nil {
		return m.GetEventFunc(ctx, eventID)
	}
	return &dto.EventResponse{ID: eventID}, nil
}

func (m *MockEventService) ListClientEvents(ctx context.Context, clientID string) ([]*dto.EventResponse, error) {
	if m.ListClientEventsFunc != nil {
		return m.ListClientEventsFunc(ctx, clientID)
	}
	return nil, nil
}

func (m *MockEventService) UpdateName(ctx context.Context, clientID, eventID string, req *dto.UpdateEventNameRequest) (*dto.EventResponse, error) {
	if m.UpdateNameFunc != nil {
		return m.UpdateNameFunc(ctx, clientID, eventID, req)
	}
	return &dto.EventResponse{ID: eventID, Name: req.Name}, nil
}

func (m *MockEventService) UpdateDate(ctx context.Context, clientID, eventID string, req *dto.UpdateEventDateRequest) (*dto.EventResponse, error) {
	if m.UpdateDateFunc != nil {
		return m.UpdateDateFunc(ctx, clientID, eventID, req)
	}
	return &dto.EventResponse{ID: eventID, Date: req.Date}, nil
}

func (m *MockEventService) UpdateAddress(ctx context.Context, clientID, eventID string, req *dto.UpdateEventAddressRequest) (*dto.EventResponse, error) {
	if m.UpdateAddressFunc != nil {
		return m.UpdateAddressFunc(ctx, clientID, eventID, req)
	}
	return &dto.EventResponse{ID: eventID, Address: req.Address}, nil
}

func (m *MockEventService) UpdateAttendees(ctx context.Context, clientID, eventID string, req *dto.UpdateEventAttendeesRequest) (*dto.EventResponse, error) {
	if m.UpdateAttendeesFunc != nil {
		return m.UpdateAttendeesFunc(ctx, clientID, eventID, req)
	}
	return &dto.EventResponse{ID: eventID, Attendees: req.Attendees}, nil
}

func (m *MockEventService) UpdateBudget(ctx context.Context, clientID, eventID string, req *dto.UpdateEventBudgetRequest) (*dto.EventResponse, error) {
	if m.UpdateBudgetFunc != nil {
		return m.UpdateBudgetFunc(ctx, clientID, eventID, req)
	}
	return &dto.EventResponse{ID: eventID, Budget: req.Budget}, nil
}

func (m *MockEventService) DeleteEvent(ctx context.Context, clientID, eventID string) error {
	if m.DeleteEventFunc != nil {
		return m.DeleteEventFunc(ctx, clientID, eventID)
	}
	return nil
}

// MockMatchService is a mock implementation of MatchService for testing
type MockMatchService struct {
	MatchEventFunc func(ctx context.Context, eventID string) (dto.MatchResponse, error)
}

func (m *MockMatchService) MatchEvent(ctx context.Context, eventID string) (dto.MatchResponse, error) {
	if m.MatchEventFunc != nil {
		return m.MatchEventFunc(ctx, eventID)
	}
	return dto.MatchResponse{}, nil
}

// MockReviewService is a mock implementation of ReviewService for testing
type MockReviewService struct {
	CreateReviewFunc func(ctx context.Context, clientID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	RemoveReviewFunc func(ctx context.Context, clientID, reviewID string) error
}

func (m *MockReviewService) CreateReview(ctx context.Context, clientID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if m.CreateReviewFunc != nil {
		return m.CreateReviewFunc(ctx, clientID, req)
	}
	return &dto.ReviewResponse{ClientID: clientID, BookingID: req.BookingID, Rating: req.Rating}, nil
}

func (m *MockReviewService) RemoveReview(ctx context.Context, clientID, reviewID string) error {
	if m.RemoveReviewFunc != nil {
		return m.RemoveReviewFunc(ctx, clientID, reviewID)
	}
	return nil
}

// MockCatalogService is a mock implementation of CatalogService for testing
type MockCatalogService struct {
	FindOrCreateTagFunc    func(ctx context.Context, req *dto.CreateTagRequest) (*dto.TagResponse, error)
	ListTagsFunc           func(ctx context.Context) ([]*dto.TagResponse, error)
	CreatePackageFunc      func(ctx context.Context, vendorID string, req *dto.CreatePackageRequest) (*dto.PackageResponse, error)
	UpdatePackagePriceFunc func(ctx context.Context, vendorID, packageID string, price decimal.Decimal) (*dto.PackageResponse, error)
	ListVendorPackagesFunc func(ctx context.Context, vendorID string) ([]*dto.PackageResponse, error)
}

func (m *MockCatalogService) FindOrCreateTag(ctx context.Context, req *dto.CreateTagRequest) (*dto.TagResponse, error) {
	if m.FindOrCreateTagFunc != nil {
		return m.FindOrCreateTagFunc(ctx, req)
	}
	return &dto.TagResponse{Name: req.Name}, nil
}

func (m *MockCatalogService) ListTags(ctx context.Context) ([]*dto.TagResponse, error) {
	if m.ListTagsFunc != nil {
		return m.ListTagsFunc(ctx)
	}
	return nil, nil
}

func (m *MockCatalogService) CreatePackage(ctx context.Context, vendorID string, req *dto.CreatePackageRequest) (*dto.PackageResponse, error) {
	if m.CreatePackageFunc != nil {
		return m.CreatePackageFunc(ctx, vendorID, req)
	}
	return &dto.PackageResponse{VendorID: vendorID, Name: req.Name, Price: req.Price}, nil
}

func (m *MockCatalogService) UpdatePackagePrice(ctx context.Context, vendorID, packageID string, price decimal.Decimal) (*dto.PackageResponse, error) {
	if m.UpdatePackagePriceFunc != nil {
		return m.UpdatePackagePriceFunc(ctx, vendorID, packageID, price)
	}
	return &dto.PackageResponse{ID: packageID, VendorID: vendorID, Price: price}, nil
}

func (m *MockCatalogService) ListVendorPackages(ctx context.Context, vendorID string) ([]*dto.PackageResponse, error) {
	if m.ListVendorPackagesFunc != nil {
		return m.ListVendorPackagesFunc(ctx, vendorID)
	}
	return nil, nil
}

// MockRatingService is a mock implementation of RatingService for testing
type MockRatingService struct {
	GetVendorRatingFunc func(ctx context.Context, vendorID string) (*dto.VendorRatingResponse, error)
}

func (m *MockRatingService) AverageRatings(ctx context.Context, vendorIDs []string) (map[string]*domain.VendorRating, error) {
	return map[string]*domain.VendorRating{}, nil
}

func (m *MockRatingService) Recalculate(ctx context.Context, vendorID string) error {
	return nil
}

func (m *MockRatingService) GetVendorRating(ctx context.Context, vendorID string) (*dto.VendorRatingResponse, error) {
	if m.GetVendorRatingFunc != nil {
		return m.GetVendorRatingFunc(ctx, vendorID)
	}
	return &dto.VendorRatingResponse{VendorID: vendorID}, nil
}
