package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	pkgredis "github.com/rad-team-cpu/eventhand-v2-backend/pkg/redis"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const ratingKeyPrefix = "rating:vendor:"

// RatingKey returns the cache key of a vendor's rating aggregate
func RatingKey(vendorID string) string {
	return ratingKeyPrefix + vendorID
}

// RedisRatingCache implements RatingCache using Redis
type RedisRatingCache struct {
	client *pkgredis.Client
	ttl    time.Duration
}

// NewRedisRatingCache creates a new RedisRatingCache
func NewRedisRatingCache(client *pkgredis.Client, ttl time.Duration) *RedisRatingCache {
	return &RedisRatingCache{client: client, ttl: ttl}
}

// GetMany returns the cached ratings found for vendorIDs; misses are left out
func (c *RedisRatingCache) GetMany(ctx context.Context, vendorIDs []string) (map[string]*domain.VendorRating, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.rating.get_many")
	defer span.End()

	keys := make([]string, len(vendorIDs))
	for i, id := range vendorIDs {
		keys[i] = RatingKey(id)
	}

	cached, err := pkgredis.MGetJSON[domain.VendorRating](ctx, c.client, keys)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := make(map[string]*domain.VendorRating, len(cached))
	for i, id := range vendorIDs {
		if r, ok := cached[keys[i]]; ok {
			r.VendorID = id
			out[id] = &r
		}
	}

	span.SetAttributes(
		attribute.Int("requested", len(vendorIDs)),
		attribute.Int("hits", len(out)),
	)
	span.SetStatus(codes.Ok, "")
	return out, nil
}

// SetMany stores ratings in a single pipeline
func (c *RedisRatingCache) SetMany(ctx context.Context, ratings []*domain.VendorRating) error {
	if len(ratings) == 0 {
		return nil
	}

	ctx, span := telemetry.StartSpan(ctx, "repo.redis.rating.set_many")
	defer span.End()

	_, err := c.client.Client().Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, r := range ratings {
			raw, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("failed to encode rating: %w", err)
			}
			pipe.Set(ctx, RatingKey(r.VendorID), raw, c.ttl)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to cache ratings: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Invalidate drops the cached rating of a vendor
func (c *RedisRatingCache) Invalidate(ctx context.Context, vendorID string) error {
	return c.client.Del(ctx, RatingKey(vendorID))
}

var _ RatingCache = (*RedisRatingCache)(nil)
