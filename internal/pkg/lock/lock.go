// Package lock provides a Redis-backed distributed mutex.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/metrics"
)

const keyPrefix = "magicwrap:lock:"

// ErrNotAcquired is returned when the lock could not be taken before ctx or the retry budget ran out.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker acquires named mutexes. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, name string) (func(), error)
}

// RedisLocker implements Locker with redsync.
type RedisLocker struct {
	rs     *redsync.Redsync
	expiry time.Duration
	tries  int
}

// NewRedisLocker creates a locker. Returns nil when client is nil.
func NewRedisLocker(client *redis.Client, expiry time.Duration) *RedisLocker {
	if client == nil {
		return nil
	}
	if expiry <= 0 {
		expiry = 5 * time.Second
	}
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		expiry: expiry,
		tries:  16,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, name string) (func(), error) {
	start := time.Now()
	mutex := l.rs.NewMutex(keyPrefix+name,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(l.tries),
		redsync.WithRetryDelay(25*time.Millisecond),
	)

	if err := mutex.LockContext(ctx); err != nil {
		metrics.LockAcquireTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, name, err)
	}
	metrics.LockAcquireTotal.WithLabelValues("acquired").Inc()
	log.Debug().Str("lock", name).Dur("wait", time.Since(start)).Msg("Lock acquired")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if ok, err := mutex.UnlockContext(ctx); !ok || err != nil {
			log.Warn().Err(err).Str("lock", name).Msg("Failed to release lock")
		}
	}, nil
}
