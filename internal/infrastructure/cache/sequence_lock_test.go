package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tileshop/backend/internal/domain/invoicing"
	"github.com/tileshop/backend/internal/infrastructure/config"
)

func TestInMemorySequenceLocker(t *testing.T) {
	t.Run("serializes holders of the same year", func(t *testing.T) {
		locker := NewInMemorySequenceLocker()
		ctx := context.Background()

		var (
			mu      sync.Mutex
			inside  int
			maxSeen int
			wg      sync.WaitGroup
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := locker.Lock(ctx, "2025-26")
				if !assert.NoError(t, err) {
					return
				}

				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				assert.NoError(t, release(ctx))
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxSeen)
	})

	t.Run("different years do not block each other", func(t *testing.T) {
		locker := NewInMemorySequenceLocker()
		ctx := context.Background()

		release, err := locker.Lock(ctx, "2024-25")
		require.NoError(t, err)
		defer release(ctx)

		ctx2, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		release2, err := locker.Lock(ctx2, "2025-26")
		require.NoError(t, err)
		require.NoError(t, release2(ctx))
	})

	t.Run("gives up when the context ends", func(t *testing.T) {
		locker := NewInMemorySequenceLocker()
		ctx := context.Background()

		release, err := locker.Lock(ctx, "2025-26")
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, "2025-26")
		assert.ErrorIs(t, err, invoicing.ErrSequenceBusy)

		require.NoError(t, release(ctx))
		// releasing twice is harmless
		require.NoError(t, release(ctx))

		release, err = locker.Lock(ctx, "2025-26")
		require.NoError(t, err)
		require.NoError(t, release(ctx))
	})
}

func TestSequenceLockerFactory(t *testing.T) {
	unreachable := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("memory backend", func(t *testing.T) {
		f := NewSequenceLockerFactory(unreachable, config.LockConfig{Backend: "memory"})
		locker, client, err := f.Create(context.Background())
		require.NoError(t, err)
		assert.Nil(t, client)
		assert.IsType(t, &InMemorySequenceLocker{}, locker)
	})

	t.Run("redis unavailable falls back to memory", func(t *testing.T) {
		f := NewSequenceLockerFactory(unreachable, config.LockConfig{Backend: "redis"})
		locker, client, err := f.Create(context.Background())
		require.NoError(t, err)
		assert.Nil(t, client)
		assert.IsType(t, &InMemorySequenceLocker{}, locker)
	})

	t.Run("redis unavailable without fallback fails", func(t *testing.T) {
		f := NewSequenceLockerFactory(unreachable, config.LockConfig{Backend: "redis"}, WithInMemoryFallback(false))
		_, _, err := f.Create(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis required")
	})
}
