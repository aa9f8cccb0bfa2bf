package service

import (
	"context"
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

// MatchService surfaces vendor packages that fit an event's budget and date
type MatchService interface {
	// MatchEvent returns, for every budget category, the packages of available
	// vendors that fit the category allocation
	MatchEvent(ctx context.Context, eventID string) (dto.MatchResponse, error)
}

type matchService struct {
	eventRepo    repository.EventRepository
	packageRepo  repository.PackageRepository
	availability AvailabilityResolver
	ratings      RatingService
}

// NewMatchService creates a new match service
func NewMatchService(
	eventRepo repository.EventRepository,
	packageRepo repository.PackageRepository,
	availability AvailabilityResolver,
	ratings RatingService,
) MatchService {
	return &matchService{
		eventRepo:    eventRepo,
		packageRepo:  packageRepo,
		availability: availability,
		ratings:      ratings,
	}
}

// MatchEvent resolves availability, maps the budget to tags and matches packages
func (s *matchService) MatchEvent(ctx context.Context, eventID string) (dto.MatchResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.match.match_event")
	defer span.End()

	start := time.Now()
	span.SetAttributes(attribute.String("event_id", eventID))

	if err := domain.ValidateID(eventID); err != nil {
		span.SetStatus(codes.Error, "invalid event_id")
		metrics.RecordMatch("invalid", time.Since(start))
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordMatch("error", time.Since(start))
		return nil, err
	}

	allocations := event.Budget.Allocations()
	if len(allocations) == 0 {
		span.SetStatus(codes.Ok, "")
		metrics.RecordMatch("empty_budget", time.Since(start))
		return matchPackages(nil, nil, nil, nil), nil
	}

	vendors, err := s.availability.AvailableVendors(ctx, event.Date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordMatch("error", time.Since(start))
		return nil, err
	}

	vendorByID := make(map[string]*domain.Vendor, len(vendors))
	vendorIDs := make([]string, 0, len(vendors))
	for _, v := range vendors {
		vendorByID[v.ID] = v
		vendorIDs = append(vendorIDs, v.ID)
	}

	tagIDs := make([]string, 0, len(allocations))
	for _, a := range allocations {
		tagIDs = append(tagIDs, a.TagID)
	}

	candidates, err := s.packageRepo.FindCandidates(ctx, vendorIDs, tagIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordMatch("error", time.Since(start))
		return nil, err
	}

	ratings := s.candidateRatings(ctx, candidates)
	result := matchPackages(allocations, candidates, vendorByID, ratings)

	for _, a := range allocations {
		metrics.RecordMatchedPackages(a.Category.String(), len(result[a.Category]))
	}
	metrics.RecordMatch("ok", time.Since(start))

	span.SetAttributes(
		attribute.Int("available_vendors", len(vendors)),
		attribute.Int("candidates", len(candidates)),
	)
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// candidateRatings loads ratings of the candidate vendors. Ratings only order
// and enrich results, so a failure degrades to zero ratings.
func (s *matchService) candidateRatings(ctx context.Context, candidates []*domain.Package) map[string]*domain.VendorRating {
	if s.ratings == nil || len(candidates) == 0 {
		return nil
	}

	ids := make([]string, 0, len(candidates))
	for _, p := range candidates {
		ids = append(ids, p.VendorID)
	}

	ratings, err := s.ratings.AverageRatings(ctx, ids)
	if err != nil {
		logger.FromContext(ctx).Warn("matching without vendor ratings", zap.Error(err))
		return nil
	}
	return ratings
}
