package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresReviewRepository implements ReviewRepository using PostgreSQL with pgxpool
type PostgresReviewRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReviewRepository creates a new PostgresReviewRepository
func NewPostgresReviewRepository(pool *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{pool: pool}
}

// Create stores a review. A second review for the same booking returns ErrAlreadyReviewed.
func (r *PostgresReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("review_id", review.ID),
		attribute.String("booking_id", review.BookingID),
		attribute.String("vendor_id", review.VendorID),
	)

	query := `
		INSERT INTO reviews (id, client_id, vendor_id, booking_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.ClientID,
		review.VendorID,
		review.BookingID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if isUniqueViolation(err) {
			return domain.ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a review by its ID
func (r *PostgresReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("review_id", id))

	query := `
		SELECT id, client_id, vendor_id, booking_id, rating, comment, created_at
		FROM reviews WHERE id = $1
	`

	review := &domain.Review{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&review.ID,
		&review.ClientID,
		&review.VendorID,
		&review.BookingID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrReviewNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return review, nil
}

// Delete removes a review
func (r *PostgresReviewRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.delete")
	defer span.End()

	span.SetAttributes(attribute.String("review_id", id))

	result, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrReviewNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Aggregate computes a vendor's average rating. No reviews yields a zero average.
func (r *PostgresReviewRepository) Aggregate(ctx context.Context, vendorID string) (*domain.VendorRating, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.aggregate")
	defer span.End()

	span.SetAttributes(attribute.String("vendor_id", vendorID))

	query := `
		SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*)
		FROM reviews
		WHERE vendor_id = $1 AND rating BETWEEN 1 AND 5
	`

	rating := &domain.VendorRating{VendorID: vendorID}
	if err := r.pool.QueryRow(ctx, query, vendorID).Scan(&rating.Average, &rating.Count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return rating, nil
}

// AggregateMany computes ratings for several vendors in one round trip
func (r *PostgresReviewRepository) AggregateMany(ctx context.Context, vendorIDs []string) (map[string]*domain.VendorRating, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.aggregate_many")
	defer span.End()

	span.SetAttributes(attribute.Int("vendors", len(vendorIDs)))

	out := make(map[string]*domain.VendorRating, len(vendorIDs))
	if len(vendorIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT vendor_id::text, AVG(rating)::float8, COUNT(*)
		FROM reviews
		WHERE vendor_id = ANY($1::text[]::uuid[]) AND rating BETWEEN 1 AND 5
		GROUP BY vendor_id
	`

	rows, err := r.pool.Query(ctx, query, vendorIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rating := &domain.VendorRating{}
		if err := rows.Scan(&rating.VendorID, &rating.Average, &rating.Count); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		out[rating.VendorID] = rating
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating ratings: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return out, nil
}

var _ ReviewRepository = (*PostgresReviewRepository)(nil)
