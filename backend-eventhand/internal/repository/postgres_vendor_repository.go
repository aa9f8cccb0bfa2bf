package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const vendorColumns = `
	id, identity, name, email, contact_number, bio, logo_url, banner_url,
	tags::text[], blocked_days, visibility, credibility_factors,
	created_at, updated_at`

// PostgresVendorRepository implements VendorRepository using PostgreSQL with pgxpool
type PostgresVendorRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresVendorRepository creates a new PostgresVendorRepository
func NewPostgresVendorRepository(pool *pgxpool.Pool) *PostgresVendorRepository {
	return &PostgresVendorRepository{pool: pool}
}

// Create creates a new vendor record
func (r *PostgresVendorRepository) Create(ctx context.Context, vendor *domain.Vendor) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vendor.create")
	defer span.End()

	span.SetAttributes(attribute.String("vendor_id", vendor.ID))

	factors, err := json.Marshal(vendor.CredibilityFactors)
	if err != nil {
		return fmt.Errorf("failed to encode credibility factors: %w", err)
	}

	query := `
		INSERT INTO vendors (
			id, identity, name, email, contact_number, bio, logo_url, banner_url,
			tags, blocked_days, visibility, credibility_factors, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9::text[]::uuid[], $10, $11, $12, $13, $14
		)
	`

	_, err = r.pool.Exec(ctx, query,
		vendor.ID,
		vendor.Identity,
		vendor.Name,
		vendor.Email,
		vendor.ContactNumber,
		vendor.Bio,
		vendor.LogoURL,
		vendor.BannerURL,
		nonNil(vendor.Tags),
		weekdayStrings(vendor.BlockedDays),
		vendor.Visibility,
		factors,
		vendor.CreatedAt,
		vendor.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create vendor: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a vendor by its ID
func (r *PostgresVendorRepository) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vendor.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("vendor_id", id))

	vendor, err := scanVendor(r.pool.QueryRow(ctx, `SELECT`+vendorColumns+` FROM vendors WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrVendorNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return vendor, nil
}

// ListVisible returns every vendor with visibility enabled
func (r *PostgresVendorRepository) ListVisible(ctx context.Context) ([]*domain.Vendor, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vendor.list_visible")
	defer span.End()

	vendors, err := r.list(ctx, `SELECT`+vendorColumns+` FROM vendors WHERE visibility ORDER BY id`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list visible vendors: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(vendors)))
	span.SetStatus(codes.Ok, "")
	return vendors, nil
}

// GetByIDs returns the vendors found among ids keyed by id
func (r *PostgresVendorRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Vendor, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vendor.get_by_ids")
	defer span.End()

	span.SetAttributes(attribute.Int("requested", len(ids)))

	out := make(map[string]*domain.Vendor, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	vendors, err := r.list(ctx, `SELECT`+vendorColumns+` FROM vendors WHERE id = ANY($1::text[]::uuid[])`, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get vendors: %w", err)
	}
	for _, v := range vendors {
		out[v.ID] = v
	}

	span.SetStatus(codes.Ok, "")
	return out, nil
}

// UpdateCredibilityFactors merges factors into the vendor's stored factors
func (r *PostgresVendorRepository) UpdateCredibilityFactors(ctx context.Context, id string, factors domain.CredibilityFactors) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vendor.update_credibility")
	defer span.End()

	span.SetAttributes(attribute.String("vendor_id", id))

	raw, err := json.Marshal(factors)
	if err != nil {
		return fmt.Errorf("failed to encode credibility factors: %w", err)
	}

	query := `
		UPDATE vendors SET
			credibility_factors = credibility_factors || $2::jsonb,
			updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update credibility factors: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrVendorNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListIDs returns the id of every vendor
func (r *PostgresVendorRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text FROM vendors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan vendor ids: %w", err)
	}
	return ids, nil
}

func (r *PostgresVendorRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Vendor, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vendors := make([]*domain.Vendor, 0)
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

func scanVendor(row pgx.Row) (*domain.Vendor, error) {
	v := &domain.Vendor{}
	var (
		blockedDays []string
		factors     []byte
	)

	if err := row.Scan(
		&v.ID,
		&v.Identity,
		&v.Name,
		&v.Email,
		&v.ContactNumber,
		&v.Bio,
		&v.LogoURL,
		&v.BannerURL,
		&v.Tags,
		&blockedDays,
		&v.Visibility,
		&factors,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return nil, err
	}

	v.BlockedDays = make([]domain.Weekday, 0, len(blockedDays))
	for _, d := range blockedDays {
		w, err := domain.ParseWeekday(d)
		if err != nil {
			continue
		}
		v.BlockedDays = append(v.BlockedDays, w)
	}

	if len(factors) > 0 {
		if err := json.Unmarshal(factors, &v.CredibilityFactors); err != nil {
			return nil, fmt.Errorf("failed to decode credibility factors: %w", err)
		}
	}
	if v.CredibilityFactors == nil {
		v.CredibilityFactors = domain.CredibilityFactors{}
	}
	return v, nil
}

func weekdayStrings(days []domain.Weekday) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = string(d)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ VendorRepository = (*PostgresVendorRepository)(nil)
