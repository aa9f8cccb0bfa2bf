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
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const packageColumns = `
	id, vendor_id, name, price, capacity, description, image_url,
	tags::text[], order_types, inclusions, created_at, updated_at`

// PostgresPackageRepository implements PackageRepository using PostgreSQL with pgxpool
type PostgresPackageRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPackageRepository creates a new PostgresPackageRepository
func NewPostgresPackageRepository(pool *pgxpool.Pool) *PostgresPackageRepository {
	return &PostgresPackageRepository{pool: pool}
}

// Create creates a new package record
func (r *PostgresPackageRepository) Create(ctx context.Context, pkg *domain.Package) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.package.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("package_id", pkg.ID),
		attribute.String("vendor_id", pkg.VendorID),
	)

	inclusions, err := json.Marshal(nonNilInclusions(pkg.Inclusions))
	if err != nil {
		return fmt.Errorf("failed to encode inclusions: %w", err)
	}

	query := `
		INSERT INTO packages (
			id, vendor_id, name, price, capacity, description, image_url,
			tags, order_types, inclusions, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8::text[]::uuid[], $9, $10, $11, $12
		)
	`

	_, err = r.pool.Exec(ctx, query,
		pkg.ID,
		pkg.VendorID,
		pkg.Name,
		pkg.Price,
		pkg.Capacity,
		pkg.Description,
		pkg.ImageURL,
		nonNil(pkg.Tags),
		nonNil(pkg.OrderTypes),
		inclusions,
		pkg.CreatedAt,
		pkg.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if isForeignKeyViolation(err) {
			return domain.ErrVendorNotFound
		}
		return fmt.Errorf("failed to create package: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a package by its ID
func (r *PostgresPackageRepository) GetByID(ctx context.Context, id string) (*domain.Package, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.package.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("package_id", id))

	pkg, err := scanPackage(r.pool.QueryRow(ctx, `SELECT`+packageColumns+` FROM packages WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrPackageNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get package: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return pkg, nil
}

// ListByVendor returns a vendor's packages ordered by price
func (r *PostgresPackageRepository) ListByVendor(ctx context.Context, vendorID string) ([]*domain.Package, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.package.list_by_vendor")
	defer span.End()

	span.SetAttributes(attribute.String("vendor_id", vendorID))

	pkgs, err := r.list(ctx, `SELECT`+packageColumns+` FROM packages WHERE vendor_id = $1 ORDER BY price DESC, id ASC`, vendorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list vendor packages: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return pkgs, nil
}

// UpdatePrice changes the live price of a package. Booking snapshots are not touched.
func (r *PostgresPackageRepository) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) (*domain.Package, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.package.update_price")
	defer span.End()

	span.SetAttributes(
		attribute.String("package_id", id),
		attribute.String("price", price.String()),
	)

	query := `UPDATE packages SET price = $2, updated_at = NOW() WHERE id = $1 RETURNING` + packageColumns

	pkg, err := scanPackage(r.pool.QueryRow(ctx, query, id, price))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrPackageNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to update package price: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return pkg, nil
}

// FindCandidates returns packages owned by one of vendorIDs and tagged with any of tagIDs.
// Price thresholds are applied per category by the matcher.
func (r *PostgresPackageRepository) FindCandidates(ctx context.Context, vendorIDs, tagIDs []string) ([]*domain.Package, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.package.find_candidates")
	defer span.End()

	span.SetAttributes(
		attribute.Int("vendors", len(vendorIDs)),
		attribute.Int("tags", len(tagIDs)),
	)

	if len(vendorIDs) == 0 || len(tagIDs) == 0 {
		span.SetStatus(codes.Ok, "")
		return []*domain.Package{}, nil
	}

	query := `SELECT` + packageColumns + `
		FROM packages
		WHERE vendor_id = ANY($1::text[]::uuid[])
		  AND tags && $2::text[]::uuid[]
	`

	pkgs, err := r.list(ctx, query, vendorIDs, tagIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to find candidate packages: %w", err)
	}

	span.SetAttributes(attribute.Int("candidates", len(pkgs)))
	span.SetStatus(codes.Ok, "")
	return pkgs, nil
}

func (r *PostgresPackageRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Package, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pkgs := make([]*domain.Package, 0)
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, rows.Err()
}

func scanPackage(row pgx.Row) (*domain.Package, error) {
	p := &domain.Package{}
	var inclusions []byte

	if err := row.Scan(
		&p.ID,
		&p.VendorID,
		&p.Name,
		&p.Price,
		&p.Capacity,
		&p.Description,
		&p.ImageURL,
		&p.Tags,
		&p.OrderTypes,
		&inclusions,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(inclusions, &p.Inclusions); err != nil {
		return nil, fmt.Errorf("failed to decode inclusions: %w", err)
	}
	return p, nil
}

func nonNilInclusions(in []domain.Inclusion) []domain.Inclusion {
	if in == nil {
		return []domain.Inclusion{}
	}
	return in
}

var _ PackageRepository = (*PostgresPackageRepository)(nil)
