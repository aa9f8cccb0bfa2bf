package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
)

// ErrLockHeld is returned when another process currently holds the lock
var ErrLockHeld = errors.New("lock is held by another process")

// Locker hands out distributed mutexes backed by Redis
type Locker struct {
	rs *redsync.Redsync
}

// NewLocker creates a Locker on top of the client
func NewLocker(c *Client) *Locker {
	return &Locker{rs: redsync.New(goredis.NewPool(c.client))}
}

// TryWithLock runs fn while holding key, without waiting if the lock is taken.
// ErrLockHeld is returned only when another holder owns the lock; Redis failures
// are returned as they are.
func (l *Locker) TryWithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
	)

	if err := mutex.TryLockContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("failed to acquire lock %s: %w", key, ctxErr)
		}
		if isContention(err) {
			return fmt.Errorf("%w: %s: %v", ErrLockHeld, key, err)
		}
		return fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	defer func() {
		// Expiry releases the lock if unlock fails
		_, _ = mutex.UnlockContext(context.WithoutCancel(ctx))
	}()

	return fn(ctx)
}

func isContention(err error) bool {
	var taken *redsync.ErrTaken
	var nodeTaken *redsync.ErrNodeTaken
	return errors.As(err, &taken) || errors.As(err, &nodeTaken) || errors.Is(err, redsync.ErrFailed)
}
