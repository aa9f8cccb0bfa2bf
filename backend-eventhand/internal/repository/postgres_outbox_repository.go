package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrOutboxMessageNotFound is returned when an outbox row does not exist
var ErrOutboxMessageNotFound = errors.New("outbox message not found")

const outboxColumns = `
	id, aggregate_type, aggregate_id, event_type,
	payload, topic, partition_key, status,
	retry_count, max_retries, last_error,
	created_at, processed_at`

// PostgresOutboxRepository implements OutboxRepository using PostgreSQL
type PostgresOutboxRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOutboxRepository creates a new PostgresOutboxRepository
func NewPostgresOutboxRepository(pool *pgxpool.Pool) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{pool: pool}
}

// Create stores an outbox message outside of any transaction
func (r *PostgresOutboxRepository) Create(ctx context.Context, msg *domain.OutboxMessage) error {
	return r.CreateTx(ctx, r.pool, msg)
}

// CreateTx stores an outbox message using tx, which is usually an open transaction
func (r *PostgresOutboxRepository) CreateTx(ctx context.Context, tx DBTX, msg *domain.OutboxMessage) error {
	if msg.ID == "" {
		msg.ID = domain.NewID()
	}
	if msg.Status == "" {
		msg.Status = domain.OutboxStatusPending
	}

	query := `
		INSERT INTO outbox (
			id, aggregate_type, aggregate_id, event_type,
			payload, topic, partition_key, status,
			retry_count, max_retries, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := tx.Exec(ctx, query,
		msg.ID,
		msg.AggregateType,
		msg.AggregateID,
		msg.EventType,
		msg.Payload,
		msg.Topic,
		msg.PartitionKey,
		string(msg.Status),
		msg.RetryCount,
		msg.MaxRetries,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox message: %w", err)
	}
	return nil
}

// ClaimPending leases the oldest pending messages. Rows leased by another worker are skipped.
func (r *PostgresOutboxRepository) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*domain.OutboxMessage, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.outbox.claim_pending")
	defer span.End()

	query := `
		UPDATE outbox SET locked_until = NOW() + make_interval(secs => $2)
		WHERE id IN (
			SELECT id FROM outbox
			WHERE status = 'pending'
			  AND (locked_until IS NULL OR locked_until < NOW())
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING` + outboxColumns

	msgs, err := r.claim(ctx, query, limit, lease.Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to claim pending messages: %w", err)
	}

	span.SetAttributes(attribute.Int("claimed", len(msgs)))
	span.SetStatus(codes.Ok, "")
	return msgs, nil
}

// ClaimRetryable leases failed messages that still have retries left and whose
// last attempt is older than retryAfter
func (r *PostgresOutboxRepository) ClaimRetryable(ctx context.Context, limit int, lease, retryAfter time.Duration) ([]*domain.OutboxMessage, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.outbox.claim_retryable")
	defer span.End()

	query := `
		UPDATE outbox SET locked_until = NOW() + make_interval(secs => $2)
		WHERE id IN (
			SELECT id FROM outbox
			WHERE status = 'failed'
			  AND retry_count < max_retries
			  AND (processed_at IS NULL OR processed_at < NOW() - make_interval(secs => $3))
			  AND (locked_until IS NULL OR locked_until < NOW())
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING` + outboxColumns

	msgs, err := r.claim(ctx, query, limit, lease.Seconds(), retryAfter.Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to claim retryable messages: %w", err)
	}

	span.SetAttributes(attribute.Int("claimed", len(msgs)))
	span.SetStatus(codes.Ok, "")
	return msgs, nil
}

func (r *PostgresOutboxRepository) claim(ctx context.Context, query string, args ...any) ([]*domain.OutboxMessage, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs, err := scanOutboxMessages(rows)
	if err != nil {
		return nil, err
	}
	// RETURNING does not keep the subquery order
	slices.SortFunc(msgs, func(a, b *domain.OutboxMessage) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return msgs, nil
}

// MarkAsProcessed acks a message and releases its lease
func (r *PostgresOutboxRepository) MarkAsProcessed(ctx context.Context, id string) error {
	query := `
		UPDATE outbox SET
			status = 'processed',
			processed_at = $2,
			locked_until = NULL
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark message as processed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrOutboxMessageNotFound
	}
	return nil
}

// MarkAsFailed records a failed attempt and releases the lease
func (r *PostgresOutboxRepository) MarkAsFailed(ctx context.Context, id string, errMsg string) error {
	query := `
		UPDATE outbox SET
			status = 'failed',
			last_error = $2,
			retry_count = retry_count + 1,
			processed_at = $3,
			locked_until = NULL
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, errMsg, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark message as failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrOutboxMessageNotFound
	}
	return nil
}

// DeleteProcessed removes processed messages older than the given number of days
func (r *PostgresOutboxRepository) DeleteProcessed(ctx context.Context, olderThanDays int) (int64, error) {
	query := `
		DELETE FROM outbox
		WHERE status = 'processed' AND processed_at < $1
	`

	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed messages: %w", err)
	}
	return result.RowsAffected(), nil
}

// CountByStatus returns the number of outbox rows per status
func (r *PostgresOutboxRepository) CountByStatus(ctx context.Context) (map[domain.OutboxStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM outbox GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count outbox messages: %w", err)
	}
	defer rows.Close()

	counts := map[domain.OutboxStatus]int64{
		domain.OutboxStatusPending:   0,
		domain.OutboxStatusProcessed: 0,
		domain.OutboxStatusFailed:    0,
	}
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan outbox count: %w", err)
		}
		counts[domain.OutboxStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox counts: %w", err)
	}
	return counts, nil
}

func scanOutboxMessages(rows pgx.Rows) ([]*domain.OutboxMessage, error) {
	var messages []*domain.OutboxMessage

	for rows.Next() {
		msg := &domain.OutboxMessage{}
		var (
			status    string
			lastError *string
		)

		err := rows.Scan(
			&msg.ID,
			&msg.AggregateType,
			&msg.AggregateID,
			&msg.EventType,
			&msg.Payload,
			&msg.Topic,
			&msg.PartitionKey,
			&status,
			&msg.RetryCount,
			&msg.MaxRetries,
			&lastError,
			&msg.CreatedAt,
			&msg.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}

		msg.Status = domain.OutboxStatus(status)
		if lastError != nil {
			msg.LastError = *lastError
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox messages: %w", err)
	}
	return messages, nil
}

var _ OutboxRepository = (*PostgresOutboxRepository)(nil)
