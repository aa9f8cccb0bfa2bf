package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingService_AverageRatings(t *testing.T) {
	t.Run("vendors without reviews average zero", func(t *testing.T) {
		svc := NewRatingService(&MockReviewRepository{}, &MockVendorRepository{}, nil)

		got, err := svc.AverageRatings(context.Background(), []string{"a", "b", "a"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Zero(t, got["a"].Average)
		assert.Zero(t, got["b"].Count)
	})

	t.Run("cache hits skip the database and misses are filled", func(t *testing.T) {
		cache := &MockRatingCache{Entries: map[string]*domain.VendorRating{
			"a": {VendorID: "a", Average: 4.5, Count: 2},
		}}
		var queried []string
		reviews := &MockReviewRepository{
			AggregateManyFunc: func(ctx context.Context, vendorIDs []string) (map[string]*domain.VendorRating, error) {
				queried = vendorIDs
				return map[string]*domain.VendorRating{
					"b": {VendorID: "b", Average: 3, Count: 1},
				}, nil
			},
		}
		svc := NewRatingService(reviews, &MockVendorRepository{}, cache)

		got, err := svc.AverageRatings(context.Background(), []string{"a", "b", "c"})
		require.NoError(t, err)

		assert.Equal(t, []string{"b", "c"}, queried)
		assert.InDelta(t, 4.5, got["a"].Average, 1e-9)
		assert.InDelta(t, 3.0, got["b"].Average, 1e-9)
		assert.Zero(t, got["c"].Average)
		assert.Contains(t, cache.Entries, "b")
		assert.Contains(t, cache.Entries, "c")
	})

	t.Run("cache outage falls back to the database", func(t *testing.T) {
		cache := &MockRatingCache{GetErr: errors.New("connection refused")}
		reviews := &MockReviewRepository{
			AggregateManyFunc: func(ctx context.Context, vendorIDs []string) (map[string]*domain.VendorRating, error) {
				return map[string]*domain.VendorRating{"a": {VendorID: "a", Average: 2, Count: 1}}, nil
			},
		}
		svc := NewRatingService(reviews, &MockVendorRepository{}, cache)

		got, err := svc.AverageRatings(context.Background(), []string{"a"})
		require.NoError(t, err)
		assert.InDelta(t, 2.0, got["a"].Average, 1e-9)
	})

	t.Run("database failure is returned", func(t *testing.T) {
		reviews := &MockReviewRepository{
			AggregateManyFunc: func(ctx context.Context, vendorIDs []string) (map[string]*domain.VendorRating, error) {
				return nil, errors.New("boom")
			},
		}
		svc := NewRatingService(reviews, &MockVendorRepository{}, nil)

		_, err := svc.AverageRatings(context.Background(), []string{"a"})
		assert.Error(t, err)
	})
}

func TestRatingService_Recalculate(t *testing.T) {
	cache := &MockRatingCache{Entries: map[string]*domain.VendorRating{"v": {VendorID: "v", Average: 1}}}
	reviews := &MockReviewRepository{
		AggregateFunc: func(ctx context.Context, vendorID string) (*domain.VendorRating, error) {
			return &domain.VendorRating{VendorID: vendorID, Average: 4.25, Count: 4}, nil
		},
	}
	var stored domain.CredibilityFactors
	vendors := &MockVendorRepository{
		UpdateCredibilityFactorsFunc: func(ctx context.Context, id string, factors domain.CredibilityFactors) error {
			stored = factors
			return nil
		},
	}
	svc := NewRatingService(reviews, vendors, cache)

	require.NoError(t, svc.Recalculate(context.Background(), "v"))
	assert.InDelta(t, 4.25, stored[domain.FactorRatingsScore], 1e-9)
	assert.InDelta(t, 4.0, stored[domain.FactorReviewCount], 1e-9)
	assert.Equal(t, []string{"v"}, cache.InvalidateCalls)
	assert.NotContains(t, cache.Entries, "v")
}

func TestRatingService_GetVendorRating(t *testing.T) {
	vendorID := domain.NewID()
	vendors := &MockVendorRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Vendor, error) {
			return &domain.Vendor{
				ID:                 id,
				CredibilityFactors: domain.CredibilityFactors{domain.FactorVerifiedID: 1},
			}, nil
		},
	}
	reviews := &MockReviewRepository{
		AggregateManyFunc: func(ctx context.Context, vendorIDs []string) (map[string]*domain.VendorRating, error) {
			return map[string]*domain.VendorRating{vendorID: {VendorID: vendorID, Average: 4, Count: 2}}, nil
		},
	}
	svc := NewRatingService(reviews, vendors, nil)

	got, err := svc.GetVendorRating(context.Background(), vendorID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, got.Average, 1e-9)
	assert.Equal(t, 2, got.Count)
	assert.InDelta(t, 0.5*4+0.3*2+2.0, got.CredibilityScore, 1e-9)

	_, err = svc.GetVendorRating(context.Background(), "vendor-1")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
