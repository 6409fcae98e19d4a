package redisinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-api-authsession/internal/config"
	"github.com/go-api-authsession/internal/domain"
	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client whose socket timeouts follow cfg.StoreTimeout
// so a stalled store surfaces as an error instead of a hang.
func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(newOptions(cfg))
}

// newOptions enables context deadlines on socket I/O so the per-call bound
// from withTimeout applies, not only the connection-wide read/write timeouts.
func newOptions(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:                  cfg.RedisAddr,
		Password:              cfg.RedisPassword,
		DB:                    cfg.RedisDB,
		DialTimeout:           cfg.StoreTimeout,
		ReadTimeout:           cfg.StoreTimeout,
		WriteTimeout:          cfg.StoreTimeout,
		ContextTimeoutEnabled: true,
	}
}

// Ping checks connectivity once at startup.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// unavailable wraps any non-nil Redis error as domain.ErrStoreUnavailable.
func unavailable(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}

func isNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// withTimeout bounds a single store call.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
