package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/metrics"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/repository"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/service"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/logger"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/retry"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// OutboxWorkerConfig contains configuration for the outbox worker
type OutboxWorkerConfig struct {
	// PollInterval is the interval between polling for pending messages
	PollInterval time.Duration
	// RetryInterval is the interval between retrying failed messages
	RetryInterval time.Duration
	// BatchSize is the number of messages claimed in each poll
	BatchSize int
	// LeaseDuration is how long a claimed message stays invisible to other workers
	LeaseDuration time.Duration
	// CleanupInterval is the interval between cleanup of old processed messages
	CleanupInterval time.Duration
	// CleanupRetentionDays is the number of days to retain processed messages
	CleanupRetentionDays int
}

// DefaultOutboxWorkerConfig returns default configuration
func DefaultOutboxWorkerConfig() *OutboxWorkerConfig {
	return &OutboxWorkerConfig{
		PollInterval:         500 * time.Millisecond,
		RetryInterval:        10 * time.Second,
		BatchSize:            50,
		LeaseDuration:        30 * time.Second,
		CleanupInterval:      time.Hour,
		CleanupRetentionDays: 7,
	}
}

// OutboxWorker drains the outbox: it runs each message's follow-up step,
// publishes the event and acks the row
type OutboxWorker struct {
	outboxRepo repository.OutboxRepository
	followUp   service.FollowUpHandler
	publisher  service.EventPublisher
	config     *OutboxWorkerConfig
	log        *logger.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewOutboxWorker creates a new outbox worker
func NewOutboxWorker(
	outboxRepo repository.OutboxRepository,
	followUp service.FollowUpHandler,
	publisher service.EventPublisher,
	config *OutboxWorkerConfig,
) *OutboxWorker {
	defaults := DefaultOutboxWorkerConfig()
	if config == nil {
		config = defaults
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = defaults.RetryInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.LeaseDuration <= 0 {
		config.LeaseDuration = defaults.LeaseDuration
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}
	if config.CleanupRetentionDays <= 0 {
		config.CleanupRetentionDays = defaults.CleanupRetentionDays
	}

	return &OutboxWorker{
		outboxRepo: outboxRepo,
		followUp:   followUp,
		publisher:  publisher,
		config:     config,
		log:        logger.Get(),
		stopCh:     make(chan struct{}),
	}
}

// Start starts the outbox worker
func (w *OutboxWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("starting outbox worker",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize),
	)

	w.wg.Add(3)
	go w.loop(ctx, w.config.PollInterval, w.ProcessPending)
	go w.loop(ctx, w.config.RetryInterval, w.ProcessRetryable)
	go w.loop(ctx, w.config.CleanupInterval, w.cleanup)

	return nil
}

// Stop stops the outbox worker
func (w *OutboxWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("stopping outbox worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("outbox worker stopped")
}

func (w *OutboxWorker) loop(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) {
	defer w.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// ProcessPending claims and dispatches one batch of pending messages
func (w *OutboxWorker) ProcessPending(ctx context.Context) {
	messages, err := w.outboxRepo.ClaimPending(ctx, w.config.BatchSize, w.config.LeaseDuration)
	if err != nil {
		w.log.Error("failed to claim pending outbox messages", zap.Error(err))
		return
	}
	w.dispatchAll(ctx, messages)
}

// ProcessRetryable claims and dispatches one batch of previously failed messages
func (w *OutboxWorker) ProcessRetryable(ctx context.Context) {
	messages, err := w.outboxRepo.ClaimRetryable(ctx, w.config.BatchSize, w.config.LeaseDuration, w.config.RetryInterval)
	if err != nil {
		w.log.Error("failed to claim retryable outbox messages", zap.Error(err))
		return
	}
	w.dispatchAll(ctx, messages)
	w.refreshBacklog(ctx)
}

func (w *OutboxWorker) dispatchAll(ctx context.Context, messages []*domain.OutboxMessage) {
	for _, msg := range messages {
		if err := w.dispatch(ctx, msg); err != nil {
			metrics.RecordOutboxDispatch(msg.EventType, "failed")
			w.log.Warn("outbox message failed",
				zap.String("message_id", msg.ID),
				zap.String("event_type", msg.EventType),
				zap.Int("attempt", msg.RetryCount+1),
				zap.Int("max_retries", msg.MaxRetries),
				zap.Error(err),
			)
			if markErr := w.outboxRepo.MarkAsFailed(ctx, msg.ID, err.Error()); markErr != nil {
				w.log.Error("failed to mark outbox message as failed",
					zap.String("message_id", msg.ID),
					zap.Error(markErr),
				)
			}
			if retry.Exhausted(msg.RetryCount+1, msg.MaxRetries) {
				w.deadLetter(ctx, msg, err)
			}
			continue
		}

		metrics.RecordOutboxDispatch(msg.EventType, "processed")
		if markErr := w.outboxRepo.MarkAsProcessed(ctx, msg.ID); markErr != nil {
			w.log.Error("failed to mark outbox message as processed",
				zap.String("message_id", msg.ID),
				zap.Error(markErr),
			)
		}
	}
}

// dispatch runs the follow-up step before publishing; both are idempotent
func (w *OutboxWorker) dispatch(ctx context.Context, msg *domain.OutboxMessage) error {
	ctx, span := telemetry.StartSpan(ctx, "worker.outbox.dispatch")
	defer span.End()

	span.SetAttributes(
		attribute.String("message_id", msg.ID),
		attribute.String("event_type", msg.EventType),
		attribute.Int("retry_count", msg.RetryCount),
	)

	if err := w.followUp.Handle(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("follow-up: %w", err)
	}
	if err := w.publisher.Publish(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("publish: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// deadLetter parks a message that will not be claimed again
func (w *OutboxWorker) deadLetter(ctx context.Context, msg *domain.OutboxMessage, cause error) {
	dl := &retry.DeadLetter{
		ID:            msg.ID,
		OriginalTopic: msg.Topic,
		Key:           msg.PartitionKey,
		EventType:     msg.EventType,
		Payload:       msg.Payload,
		Headers: map[string]string{
			"aggregate_type": msg.AggregateType,
			"aggregate_id":   msg.AggregateID,
		},
		Error:       cause.Error(),
		Attempts:    msg.RetryCount + 1,
		FirstSeenAt: msg.CreatedAt,
		FailedAt:    time.Now(),
	}
	if err := w.publisher.PublishDeadLetter(ctx, dl); err != nil {
		w.log.Error("failed to dead-letter outbox message",
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
		return
	}
	metrics.RecordOutboxDispatch(msg.EventType, "dead_lettered")
	w.log.Warn("outbox message dead-lettered",
		zap.String("message_id", msg.ID),
		zap.String("topic", retry.DeadLetterTopic(msg.Topic)),
	)
}

func (w *OutboxWorker) cleanup(ctx context.Context) {
	deleted, err := w.outboxRepo.DeleteProcessed(ctx, w.config.CleanupRetentionDays)
	if err != nil {
		w.log.Error("failed to clean up processed outbox messages", zap.Error(err))
		return
	}
	if deleted > 0 {
		w.log.Info("cleaned up processed outbox messages", zap.Int64("deleted", deleted))
	}
}

func (w *OutboxWorker) refreshBacklog(ctx context.Context) {
	counts, err := w.outboxRepo.CountByStatus(ctx)
	if err != nil {
		w.log.Warn("failed to count outbox backlog", zap.Error(err))
		return
	}
	for _, status := range []domain.OutboxStatus{domain.OutboxStatusPending, domain.OutboxStatusFailed} {
		metrics.SetOutboxBacklog(string(status), counts[status])
	}
}

// IsRunning reports whether the worker loops are active
func (w *OutboxWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
