package service

import (
	"context"
	"strings"
	"time"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/dto"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/metrics"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/repository"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/logger"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ReviewService defines the interface for review business logic
type ReviewService interface {
	// CreateReview files a review for a confirmed or completed booking of the client,
	// completes the booking and refreshes the vendor's rating
	CreateReview(ctx context.Context, clientID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)

	// RemoveReview deletes one of the client's reviews and refreshes the vendor's rating
	RemoveReview(ctx context.Context, clientID, reviewID string) error
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	bookingRepo repository.BookingRepository
	completer   BookingCompleter
	ratings     RatingRecalculator
}

// NewReviewService creates a new review service
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	bookingRepo repository.BookingRepository,
	completer BookingCompleter,
	ratings RatingRecalculator,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		bookingRepo: bookingRepo,
		completer:   completer,
		ratings:     ratings,
	}
}

// CreateReview stores the review, then completes the booking and recalculates the rating.
// The review stands when either follow-up fails.
func (s *reviewService) CreateReview(ctx context.Context, clientID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.review.create")
	defer span.End()

	if req == nil {
		span.SetStatus(codes.Error, "empty request")
		return nil, domain.ErrInvalidID
	}
	span.SetAttributes(
		attribute.String("client_id", clientID),
		attribute.String("booking_id", req.BookingID),
		attribute.Int("rating", req.Rating),
	)

	if strings.TrimSpace(clientID) == "" {
		span.SetStatus(codes.Error, "invalid client_id")
		return nil, domain.ErrInvalidClientID
	}
	if err := domain.ValidateRating(req.Rating); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := domain.ValidateID(req.BookingID); err != nil {
		span.SetStatus(codes.Error, "invalid booking_id")
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !booking.BelongsToClient(clientID) {
		span.SetStatus(codes.Error, "booking belongs to another client")
		return nil, domain.ErrForbidden
	}
	if !booking.IsReviewable() {
		span.SetStatus(codes.Error, "booking not reviewable")
		return nil, domain.ErrBookingNotReviewable
	}

	review := &domain.Review{
		ID:        domain.NewID(),
		ClientID:  clientID,
		VendorID:  booking.VendorID,
		BookingID: booking.ID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: time.Now(),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if booking.Status == domain.BookingStatusConfirmed {
		if err := s.completer.Complete(ctx, booking.ID); err != nil {
			metrics.RecordFollowUpFailure("complete_booking")
			logger.FromContext(ctx).Warn("failed to complete reviewed booking",
				zap.String("booking_id", booking.ID),
				zap.Error(err),
			)
		}
	}

	s.recalculate(ctx, booking.VendorID)

	span.SetAttributes(attribute.String("review_id", review.ID))
	span.SetStatus(codes.Ok, "")
	return dto.ReviewFromDomain(review), nil
}

// RemoveReview deletes a review owned by clientID
func (s *reviewService) RemoveReview(ctx context.Context, clientID, reviewID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.review.remove")
	defer span.End()

	span.SetAttributes(
		attribute.String("client_id", clientID),
		attribute.String("review_id", reviewID),
	)

	if err := domain.ValidateID(reviewID); err != nil {
		span.SetStatus(codes.Error, "invalid review_id")
		return err
	}

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if review.ClientID != clientID {
		span.SetStatus(codes.Error, "review belongs to another client")
		return domain.ErrForbidden
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	s.recalculate(ctx, review.VendorID)

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *reviewService) recalculate(ctx context.Context, vendorID string) {
	if err := s.ratings.Recalculate(ctx, vendorID); err != nil {
		metrics.RecordFollowUpFailure("recalculate_rating")
		logger.FromContext(ctx).Warn("failed to recalculate vendor rating",
			zap.String("vendor_id", vendorID),
			zap.Error(err),
		)
	}
}
