package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tileshop/backend/internal/domain/invoicing"
	"github.com/tileshop/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SequenceLockerFactory creates the invoice number lock from configuration
type SequenceLockerFactory struct {
	redisConfig           config.RedisConfig
	lockConfig            config.LockConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SequenceLockerFactoryOption is a functional option for configuring the factory
type SequenceLockerFactoryOption func(*SequenceLockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SequenceLockerFactoryOption {
	return func(f *SequenceLockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable redis falls back to
// the process-local lock. Default is true.
func WithInMemoryFallback(allow bool) SequenceLockerFactoryOption {
	return func(f *SequenceLockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSequenceLockerFactory creates a new factory
func NewSequenceLockerFactory(redisCfg config.RedisConfig, lockCfg config.LockConfig, opts ...SequenceLockerFactoryOption) *SequenceLockerFactory {
	f := &SequenceLockerFactory{
		redisConfig:           redisCfg,
		lockConfig:            lockCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewRedisClient connects to redis and pings it
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Create returns the configured locker and, for the redis backend, the
// client the caller must close on shutdown
func (f *SequenceLockerFactory) Create(ctx context.Context) (invoicing.SequenceLocker, *redis.Client, error) {
	if f.lockConfig.Backend != "redis" {
		f.logger.Info("using in-memory invoice sequence lock")
		return NewInMemorySequenceLocker(), nil, nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("using redis invoice sequence lock", zap.String("addr", f.redisConfig.Addr()))
		return NewRedisSequenceLocker(client, f.lockConfig.TTL, f.lockConfig.RetryCount, f.lockConfig.RetryDelay), client, nil
	}

	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("redis required for the sequence lock but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory sequence lock. "+
		"Concurrent instances may race for invoice numbers; the unique index still rejects duplicates.",
		zap.Error(err),
	)
	return NewInMemorySequenceLocker(), nil, nil
}
