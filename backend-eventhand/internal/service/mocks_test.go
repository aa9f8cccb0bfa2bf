package service

import (
	"context"
	"time"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/repository"
	"github.com/shopspring/decimal"
)

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	CreateFunc          func(ctx context.Context, event *domain.Event) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.Event, error)
	ListByClientFunc    func(ctx context.Context, clientID string) ([]*domain.Event, error)
	UpdateNameFunc      func(ctx context.Context, id, name string) (*domain.Event, error)
	UpdateDateFunc      func(ctx context.Context, id string, date time.Time) (*domain.Event, error)
	UpdateAddressFunc   func(ctx context.Context, id string, address *string) (*domain.Event, error)
	UpdateAttendeesFunc func(ctx context.Context, id string, attendees int) (*domain.Event, error)
	UpdateBudgetFunc    func(ctx context.Context, id string, budget domain.Budget) (*domain.Event, error)
	DeleteFunc          func(ctx context.Context, id string) error
	AttachBookingFunc   func(ctx context.Context, eventID, bookingID string) error
	DetachBookingFunc   func(ctx context.Context, eventID, bookingID string) error
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) ListByClient(ctx context.Context, clientID string) ([]*domain.Event, error) {
	if m.ListByClientFunc != nil {
		return m.ListByClientFunc(ctx, clientID)
	}
	return []*domain.Event{}, nil
}

func (m *MockEventRepository) UpdateName(ctx context.Context, id, name string) (*domain.Event, error) {
	if m.UpdateNameFunc != nil {
		return m.UpdateNameFunc(ctx, id, name)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) UpdateDate(ctx context.Context, id string, date time.Time) (*domain.Event, error) {
	if m.UpdateDateFunc != nil {
		return m.UpdateDateFunc(ctx, id, date)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) UpdateAddress(ctx context.Context, id string, address *string) (*domain.Event, error) {
	if m.UpdateAddressFunc != nil {
		return m.UpdateAddressFunc(ctx, id, address)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) UpdateAttendees(ctx context.Context, id string, attendees int) (*domain.Event, error) {
	if m.UpdateAttendeesFunc != nil {
		return m.UpdateAttendeesFunc(ctx, id, attendees)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) UpdateBudget(ctx context.Context, id string, budget domain.Budget) (*domain.Event, error) {
	if m.UpdateBudgetFunc != nil {
		return m.UpdateBudgetFunc(ctx, id, budget)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockEventRepository) AttachBooking(ctx context.Context, eventID, bookingID string) error {
	if m.AttachBookingFunc != nil {
		return m.AttachBookingFunc(ctx, eventID, bookingID)
	}
	return nil
}

func (m *MockEventRepository) DetachBooking(ctx context.Context, eventID, bookingID string) error {
	if m.DetachBookingFunc != nil {
		return m.DetachBookingFunc(ctx, eventID, bookingID)
	}
	return nil
}

// MockVendorRepository is a mock implementation of VendorRepository
type MockVendorRepository struct {
	CreateFunc                   func(ctx context.Context, vendor *domain.Vendor) error
	GetByIDFunc                  func(ctx context.Context, id string) (*domain.Vendor, error)
	ListVisibleFunc              func(ctx context.Context) ([]*domain.Vendor, error)
	GetByIDsFunc                 func(ctx context.Context, ids []string) (map[string]*domain.Vendor, error)
	UpdateCredibilityFactorsFunc func(ctx context.Context, id string, factors domain.CredibilityFactors) error
	ListIDsFunc                  func(ctx context.Context) ([]string, error)
}

func (m *MockVendorRepository) Create(ctx context.Context, vendor *domain.Vendor) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, vendor)
	}
	return nil
}

func (m *MockVendorRepository) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrVendorNotFound
}

func (m *MockVendorRepository) ListVisible(ctx context.Context) ([]*domain.Vendor, error) {
	if m.ListVisibleFunc != nil {
		return m.ListVisibleFunc(ctx)
	}
	return []*domain.Vendor{}, nil
}

func (m *MockVendorRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Vendor, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	return map[string]*domain.Vendor{}, nil
}

func (m *MockVendorRepository) UpdateCredibilityFactors(ctx context.Context, id string, factors domain.CredibilityFactors) error {
	if m.UpdateCredibilityFactorsFunc != nil {
		return m.UpdateCredibilityFactorsFunc(ctx, id, factors)
	}
	return nil
}

func (m *MockVendorRepository) ListIDs(ctx context.Context) ([]string, error) {
	if m.ListIDsFunc != nil {
		return m.ListIDsFunc(ctx)
	}
	return []string{}, nil
}

// MockPackageRepository is a mock implementation of PackageRepository
type MockPackageRepository struct {
	CreateFunc         func(ctx context.Context, pkg *domain.Package) error
	GetByIDFunc        func(ctx context.Context, id string) (*domain.Package, error)
	ListByVendorFunc   func(ctx context.Context, vendorID string) ([]*domain.Package, error)
	UpdatePriceFunc    func(ctx context.Context, id string, price decimal.Decimal) (*domain.Package, error)
	FindCandidatesFunc func(ctx context.Context, vendorIDs, tagIDs []string) ([]*domain.Package, error)
}

func (m *MockPackageRepository) Create(ctx context.Context, pkg *domain.Package) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, pkg)
	}
	return nil
}

func (m *MockPackageRepository) GetByID(ctx context.Context, id string) (*domain.Package, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrPackageNotFound
}

func (m *MockPackageRepository) ListByVendor(ctx context.Context, vendorID string) ([]*domain.Package, error) {
	if m.ListByVendorFunc != nil {
		return m.ListByVendorFunc(ctx, vendorID)
	}
	return []*domain.Package{}, nil
}

func (m *MockPackageRepository) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) (*domain.Package, error) {
	if m.UpdatePriceFunc != nil {
		return m.UpdatePriceFunc(ctx, id, price)
	}
	return nil, domain.ErrPackageNotFound
}

func (m *MockPackageRepository) FindCandidates(ctx context.Context, vendorIDs, tagIDs []string) ([]*domain.Package, error) {
	if m.FindCandidatesFunc != nil {
		return m.FindCandidatesFunc(ctx, vendorIDs, tagIDs)
	}
	return []*domain.Package{}, nil
}

// MockBookingRepository is a mock implementation of BookingRepository
type MockBookingRepository struct {
	GetByIDFunc                    func(ctx context.Context, id string) (*domain.Booking, error)
	ListByEventFunc                func(ctx context.Context, eventID string) ([]*domain.Booking, error)
	ListByVendorFunc               func(ctx context.Context, vendorID string, statuses []domain.BookingStatus, limit, offset int) ([]*domain.BookingListItem, int64, error)
	CreateWithOutboxFunc           func(ctx context.Context, booking *domain.Booking, msg *domain.OutboxMessage) error
	TransitionWithOutboxFunc       func(ctx context.Context, id string, from []domain.BookingStatus, next domain.BookingStatus, at time.Time, msg *domain.OutboxMessage) error
	RemoveWithOutboxFunc           func(ctx context.Context, id string, msg *domain.OutboxMessage) error
	DeclineOthersFunc              func(ctx context.Context, vendorID string, date time.Time, keepID string, at time.Time) (int64, error)
	CancelStalePendingFunc         func(ctx context.Context, vendorID string, cutoff, at time.Time) (int64, error)
	VendorIDsBookedOnFunc          func(ctx context.Context, date time.Time, statuses []domain.BookingStatus) ([]string, error)
	FindDuplicateConfirmationsFunc func(ctx context.Context, limit int) ([]domain.DuplicateConfirmation, error)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Booking, error) {
	if m.ListByEventFunc != nil {
		return m.ListByEventFunc(ctx, eventID)
	}
	return []*domain.Booking{}, nil
}

func (m *MockBookingRepository) ListByVendor(ctx context.Context, vendorID string, statuses []domain.BookingStatus, limit, offset int) ([]*domain.BookingListItem, int64, error) {
	if m.ListByVendorFunc != nil {
		return m.ListByVendorFunc(ctx, vendorID, statuses, limit, offset)
	}
	return []*domain.BookingListItem{}, 0, nil
}

func (m *MockBookingRepository) CreateWithOutbox(ctx context.Context, booking *domain.Booking, msg *domain.OutboxMessage) error {
	if m.CreateWithOutboxFunc != nil {
		return m.CreateWithOutboxFunc(ctx, booking, msg)
	}
	return nil
}

func (m *MockBookingRepository) TransitionWithOutbox(ctx context.Context, id string, from []domain.BookingStatus, next domain.BookingStatus, at time.Time, msg *domain.OutboxMessage) error {
	if m.TransitionWithOutboxFunc != nil {
		return m.TransitionWithOutboxFunc(ctx, id, from, next, at, msg)
	}
	return nil
}

func (m *MockBookingRepository) RemoveWithOutbox(ctx context.Context, id string, msg *domain.OutboxMessage) error {
	if m.RemoveWithOutboxFunc != nil {
		return m.RemoveWithOutboxFunc(ctx, id, msg)
	}
	return nil
}

func (m *MockBookingRepository) DeclineOthers(ctx context.Context, vendorID string, date time.Time, keepID string, at time.Time) (int64, error) {
	if m.DeclineOthersFunc != nil {
		return m.DeclineOthersFunc(ctx, vendorID, date, keepID, at)
	}
	return 0, nil
}

func (m *MockBookingRepository) CancelStalePending(ctx context.Context, vendorID string, cutoff, at time.Time) (int64, error) {
	if m.CancelStalePendingFunc != nil {
		return m.CancelStalePendingFunc(ctx, vendorID, cutoff, at)
	}
	return 0, nil
}

func (m *MockBookingRepository) VendorIDsBookedOn(ctx context.Context, date time.Time, statuses []domain.BookingStatus) ([]string, error) {
	if m.VendorIDsBookedOnFunc != nil {
		return m.VendorIDsBookedOnFunc(ctx, date, statuses)
	}
	return []string{}, nil
}

func (m *MockBookingRepository) FindDuplicateConfirmations(ctx context.Context, limit int) ([]domain.DuplicateConfirmation, error) {
	if m.FindDuplicateConfirmationsFunc != nil {
		return m.FindDuplicateConfirmationsFunc(ctx, limit)
	}
	return nil, nil
}

// MockReviewRepository is a mock implementation of ReviewRepository
type MockReviewRepository struct {
	CreateFunc        func(ctx context.Context, review *domain.Review) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Review, error)
	DeleteFunc        func(ctx context.Context, id string) error
	AggregateFunc     func(ctx context.Context, vendorID string) (*domain.VendorRating, error)
	AggregateManyFunc func(ctx context.Context, vendorIDs []string) (map[string]*domain.VendorRating, error)
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, review)
	}
	return nil
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrReviewNotFound
}

func (m *MockReviewRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockReviewRepository) Aggregate(ctx context.Context, vendorID string) (*domain.VendorRating, error) {
	if m.AggregateFunc != nil {
		return m.AggregateFunc(ctx, vendorID)
	}
	return &domain.VendorRating{VendorID: vendorID}, nil
}

func (m *MockReviewRepository) AggregateMany(ctx context.Context, vendorIDs []string) (map[string]*domain.VendorRating, error) {
	if m.AggregateManyFunc != nil {
		return m.AggregateManyFunc(ctx, vendorIDs)
	}
	return map[string]*domain.VendorRating{}, nil
}

// MockTagRepository is a mock implementation of TagRepository
type MockTagRepository struct {
	FindOrCreateFunc func(ctx context.Context, name string, description *string) (*domain.Tag, error)
	ListFunc         func(ctx context.Context) ([]*domain.Tag, error)
}

func (m *MockTagRepository) FindOrCreate(ctx context.Context, name string, description *string) (*domain.Tag, error) {
	if m.FindOrCreateFunc != nil {
		return m.FindOrCreateFunc(ctx, name, description)
	}
	return &domain.Tag{ID: domain.NewID(), Name: name, Description: description}, nil
}

func (m *MockTagRepository) List(ctx context.Context) ([]*domain.Tag, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*domain.Tag{}, nil
}

// MockRatingCache is an in-memory RatingCache
type MockRatingCache struct {
	Entries         map[string]*domain.VendorRating
	GetErr          error
	InvalidateCalls []string
}

func (m *MockRatingCache) GetMany(ctx context.Context, vendorIDs []string) (map[string]*domain.VendorRating, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	out := make(map[string]*domain.VendorRating)
	for _, id := range vendorIDs {
		if r, ok := m.Entries[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func (m *MockRatingCache) SetMany(ctx context.Context, ratings []*domain.VendorRating) error {
	if m.Entries == nil {
		m.Entries = make(map[string]*domain.VendorRating)
	}
	for _, r := range ratings {
		m.Entries[r.VendorID] = r
	}
	return nil
}

func (m *MockRatingCache) Invalidate(ctx context.Context, vendorID string) error {
	m.InvalidateCalls = append(m.InvalidateCalls, vendorID)
	delete(m.Entries, vendorID)
	return nil
}

// MockCompleter records completed bookings
type MockCompleter struct {
	Err       error
	Completed []string
}

func (m *MockCompleter) Complete(ctx context.Context, bookingID string) error {
	m.Completed = append(m.Completed, bookingID)
	return m.Err
}

// MockRecalculator records rating recalculations
type MockRecalculator struct {
	Err     error
	Vendors []string
}

func (m *MockRecalculator) Recalculate(ctx context.Context, vendorID string) error {
	m.Vendors = append(m.Vendors, vendorID)
	return m.Err
}

var (
	_ repository.EventRepository   = (*MockEventRepository)(nil)
	_ repository.VendorRepository  = (*MockVendorRepository)(nil)
	_ repository.PackageRepository = (*MockPackageRepository)(nil)
	_ repository.BookingRepository = (*MockBookingRepository)(nil)
	_ repository.ReviewRepository  = (*MockReviewRepository)(nil)
	_ repository.TagRepository     = (*MockTagRepository)(nil)
	_ repository.RatingCache       = (*MockRatingCache)(nil)
	_ EventBookingLinker           = (*MockEventRepository)(nil)
)
