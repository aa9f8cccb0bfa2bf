package service

import (
	"context"

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

// RatingService aggregates review ratings per vendor
type RatingService interface {
	// AverageRatings returns a rating for every requested vendor; vendors without reviews average 0
	AverageRatings(ctx context.Context, vendorIDs []string) (map[string]*domain.VendorRating, error)

	// Recalculate recomputes a vendor's rating, stores it in the vendor's
	// credibility factors and drops the cached value
	Recalculate(ctx context.Context, vendorID string) error

	// GetVendorRating returns a vendor's rating and credibility score
	GetVendorRating(ctx context.Context, vendorID string) (*dto.VendorRatingResponse, error)
}

type ratingService struct {
	reviewRepo repository.ReviewRepository
	vendorRepo repository.VendorRepository
	cache      repository.RatingCache
}

// NewRatingService creates a new rating service. cache may be nil.
func NewRatingService(
	reviewRepo repository.ReviewRepository,
	vendorRepo repository.VendorRepository,
	cache repository.RatingCache,
) RatingService {
	return &ratingService{
		reviewRepo: reviewRepo,
		vendorRepo: vendorRepo,
		cache:      cache,
	}
}

// AverageRatings serves ratings from the cache and fills misses from PostgreSQL
func (s *ratingService) AverageRatings(ctx context.Context, vendorIDs []string) (map[string]*domain.VendorRating, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.rating.average_ratings")
	defer span.End()

	ids := uniqueStrings(vendorIDs)
	span.SetAttributes(attribute.Int("vendors", len(ids)))

	out := make(map[string]*domain.VendorRating, len(ids))
	if len(ids) == 0 {
		span.SetStatus(codes.Ok, "")
		return out, nil
	}

	if s.cache != nil {
		cached, err := s.cache.GetMany(ctx, ids)
		if err != nil {
			logger.FromContext(ctx).Warn("rating cache unavailable", zap.Error(err))
		}
		for id, r := range cached {
			out[id] = r
		}
	}

	misses := make([]string, 0, len(ids)-len(out))
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			misses = append(misses, id)
		}
	}
	metrics.RecordRatingCache(len(out), len(misses))

	if len(misses) == 0 {
		span.SetStatus(codes.Ok, "")
		return out, nil
	}

	fresh, err := s.reviewRepo.AggregateMany(ctx, misses)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	filled := make([]*domain.VendorRating, 0, len(misses))
	for _, id := range misses {
		r, ok := fresh[id]
		if !ok {
			r = &domain.VendorRating{VendorID: id}
		}
		out[id] = r
		filled = append(filled, r)
	}

	if s.cache != nil {
		if err := s.cache.SetMany(ctx, filled); err != nil {
			logger.FromContext(ctx).Warn("failed to cache ratings", zap.Error(err))
		}
	}

	span.SetStatus(codes.Ok, "")
	return out, nil
}

// Recalculate refreshes the rating factors of a vendor
func (s *ratingService) Recalculate(ctx context.Context, vendorID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.rating.recalculate")
	defer span.End()

	span.SetAttributes(attribute.String("vendor_id", vendorID))

	agg, err := s.reviewRepo.Aggregate(ctx, vendorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	factors := domain.CredibilityFactors{}.WithRating(agg.Average, agg.Count)
	if err := s.vendorRepo.UpdateCredibilityFactors(ctx, vendorID, factors); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, vendorID); err != nil {
			logger.FromContext(ctx).Warn("failed to invalidate cached rating",
				zap.String("vendor_id", vendorID),
				zap.Error(err),
			)
		}
	}

	span.SetAttributes(
		attribute.Float64("average", agg.Average),
		attribute.Int("count", agg.Count),
	)
	span.SetStatus(codes.Ok, "")
	return nil
}

// GetVendorRating returns the rating and credibility score of one vendor
func (s *ratingService) GetVendorRating(ctx context.Context, vendorID string) (*dto.VendorRatingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.rating.get_vendor_rating")
	defer span.End()

	if err := domain.ValidateID(vendorID); err != nil {
		span.SetStatus(codes.Error, "invalid vendor_id")
		return nil, err
	}

	vendor, err := s.vendorRepo.GetByID(ctx, vendorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ratings, err := s.AverageRatings(ctx, []string{vendorID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	r := ratings[vendorID]

	span.SetStatus(codes.Ok, "")
	return &dto.VendorRatingResponse{
		VendorID:         vendorID,
		Average:          r.Average,
		Count:            r.Count,
		CredibilityScore: vendor.CredibilityFactors.WithRating(r.Average, r.Count).Score(),
	}, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

var _ RatingRecalculator = (RatingService)(nil)
