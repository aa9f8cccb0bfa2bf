package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresTagRepository implements TagRepository using PostgreSQL with pgxpool
type PostgresTagRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTagRepository creates a new PostgresTagRepository
func NewPostgresTagRepository(pool *pgxpool.Pool) *PostgresTagRepository {
	return &PostgresTagRepository{pool: pool}
}

// FindOrCreate returns the tag with name, creating it when missing.
// The description of an existing tag is left as is.
func (r *PostgresTagRepository) FindOrCreate(ctx context.Context, name string, description *string) (*domain.Tag, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.tag.find_or_create")
	defer span.End()

	span.SetAttributes(attribute.String("name", name))

	// The no-op update makes RETURNING yield the existing row on conflict
	query := `
		INSERT INTO tags (id, name, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, description, created_at
	`

	tag := &domain.Tag{}
	err := r.pool.QueryRow(ctx, query, domain.NewID(), name, description).Scan(
		&tag.ID,
		&tag.Name,
		&tag.Description,
		&tag.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to find or create tag: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return tag, nil
}

// List returns every tag ordered by name
func (r *PostgresTagRepository) List(ctx context.Context) ([]*domain.Tag, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.tag.list")
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT id, name, description, created_at FROM tags ORDER BY name`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := make([]*domain.Tag, 0)
	for rows.Next() {
		tag := &domain.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Description, &tag.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return tags, nil
}

var _ TagRepository = (*PostgresTagRepository)(nil)
