package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/tileshop/backend/internal/domain/invoicing"
)

const sequenceLockPrefix = "lock:invoice-seq:"

// InMemorySequenceLocker is a process-local SequenceLocker. It is enough
// for a single API instance; several instances need the redis locker.
type InMemorySequenceLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewInMemorySequenceLocker creates a new in-memory locker
func NewInMemorySequenceLocker() *InMemorySequenceLocker {
	return &InMemorySequenceLocker{slots: make(map[string]chan struct{})}
}

// Lock blocks until the financial year is free or ctx is done
func (l *InMemorySequenceLocker) Lock(ctx context.Context, fy string) (func(context.Context) error, error) {
	slot := l.slot(fy)
	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", invoicing.ErrSequenceBusy, ctx.Err())
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() { <-slot })
		return nil
	}, nil
}

func (l *InMemorySequenceLocker) slot(fy string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[fy]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[fy] = s
	}
	return s
}

// RedisSequenceLocker implements SequenceLocker with a redislock lease so
// several API instances share one numbering sequence
type RedisSequenceLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
}

// NewRedisSequenceLocker creates a locker on an existing redis client.
// Obtaining is retried retryCount times, retryDelay apart.
func NewRedisSequenceLocker(client redis.UniversalClient, ttl time.Duration, retryCount int, retryDelay time.Duration) *RedisSequenceLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisSequenceLocker{
		locker: redislock.New(client),
		ttl:    ttl,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(retryDelay), retryCount),
	}
}

// Lock obtains the lease for the financial year
func (l *RedisSequenceLocker) Lock(ctx context.Context, fy string) (func(context.Context) error, error) {
	lock, err := l.locker.Obtain(ctx, sequenceLockPrefix+fy, l.ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, invoicing.ErrSequenceBusy
	}
	if err != nil {
		return nil, fmt.Errorf("obtain sequence lock: %w", err)
	}

	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("release sequence lock: %w", err)
		}
		return nil
	}, nil
}

var (
	_ invoicing.SequenceLocker = (*InMemorySequenceLocker)(nil)
	_ invoicing.SequenceLocker = (*RedisSequenceLocker)(nil)
)
