package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/metrics"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/service"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/logger"
	pkgredis "github.com/rad-team-cpu/eventhand-v2-backend/pkg/redis"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const sweepLockKey = "eventhand:lock:booking-sweep"

// Locker runs fn under a distributed lock, returning pkgredis.ErrLockHeld when it is taken
type Locker interface {
	TryWithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}

// SweepWorkerConfig contains configuration for the sweep worker
type SweepWorkerConfig struct {
	// Interval is the time between sweeps
	Interval time.Duration
	// LockTTL bounds how long one replica may hold the sweep lock
	LockTTL time.Duration
	// ReconcileLimit caps the vendor-date groups reconciled per sweep
	ReconcileLimit int
}

// DefaultSweepWorkerConfig returns default configuration
func DefaultSweepWorkerConfig() *SweepWorkerConfig {
	return &SweepWorkerConfig{
		Interval:       15 * time.Minute,
		LockTTL:        time.Minute,
		ReconcileLimit: 100,
	}
}

// SweepStats summarizes one sweep
type SweepStats struct {
	Cancelled  int64
	Reconciled int64
	Skipped    bool
}

// SweepWorker cancels stale pending bookings across all vendors and reconciles
// vendor dates that ended up with more than one confirmation.
// Only one replica sweeps at a time.
type SweepWorker struct {
	bookingService service.BookingService
	locker         Locker
	config         *SweepWorkerConfig
	log            *logger.Logger
	stopCh         chan struct{}
	wg             sync.WaitGroup
	mu             sync.Mutex
	running        bool
}

// NewSweepWorker creates a new sweep worker
func NewSweepWorker(bookingService service.BookingService, locker Locker, config *SweepWorkerConfig) *SweepWorker {
	defaults := DefaultSweepWorkerConfig()
	if config == nil {
		config = defaults
	}
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.LockTTL <= 0 {
		config.LockTTL = defaults.LockTTL
	}
	if config.ReconcileLimit <= 0 {
		config.ReconcileLimit = defaults.ReconcileLimit
	}

	return &SweepWorker{
		bookingService: bookingService,
		locker:         locker,
		config:         config,
		log:            logger.Get(),
		stopCh:         make(chan struct{}),
	}
}

// Start starts the sweep worker; the first sweep runs immediately
func (w *SweepWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("sweep worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("starting sweep worker", zap.Duration("interval", w.config.Interval))

	w.wg.Add(1)
	go w.run(ctx)

	return nil
}

// Stop stops the sweep worker
func (w *SweepWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("stopping sweep worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("sweep worker stopped")
}

func (w *SweepWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	_, _ = w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			_, _ = w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep. A sweep held by another replica is skipped, not failed.
func (w *SweepWorker) RunOnce(ctx context.Context) (*SweepStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "worker.sweep.run")
	defer span.End()

	stats := &SweepStats{}
	err := w.locker.TryWithLock(ctx, sweepLockKey, w.config.LockTTL, func(ctx context.Context) error {
		cancelled, err := w.bookingService.SweepStalePending(ctx, "")
		if err != nil {
			return fmt.Errorf("sweep stale pending: %w", err)
		}
		stats.Cancelled = cancelled

		reconciled, err := w.bookingService.ReconcileDuplicates(ctx, w.config.ReconcileLimit)
		if err != nil {
			return fmt.Errorf("reconcile duplicates: %w", err)
		}
		stats.Reconciled = reconciled
		return nil
	})

	switch {
	case errors.Is(err, pkgredis.ErrLockHeld):
		stats.Skipped = true
		metrics.RecordSweepRun("skipped")
		span.SetAttributes(attribute.Bool("skipped", true))
		span.SetStatus(codes.Ok, "")
		w.log.Debug("sweep skipped, lock held elsewhere")
		return stats, nil
	case err != nil:
		metrics.RecordSweepRun("failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		w.log.Error("booking sweep failed", zap.Error(err))
		return stats, err
	}

	metrics.RecordSweepRun("ok")
	span.SetAttributes(
		attribute.Int64("cancelled", stats.Cancelled),
		attribute.Int64("reconciled", stats.Reconciled),
	)
	span.SetStatus(codes.Ok, "")
	if stats.Cancelled > 0 || stats.Reconciled > 0 {
		w.log.Info("booking sweep finished",
			zap.Int64("cancelled", stats.Cancelled),
			zap.Int64("reconciled", stats.Reconciled),
		)
	}
	return stats, nil
}
