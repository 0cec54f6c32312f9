package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited is an exported constant or variable used by the recovery-key service.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable is an exported constant or variable used by the recovery-key service.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Config holds abuse-guard tuning parameters.
type Config struct {
	// MaxChecks within one Window per (keyspace, tag) tuple; the
	// MaxChecks+1-th check inside the window is denied.
	MaxChecks int
	Window    time.Duration
}

// Guard enforces fixed-window rate limits on abuse-prone recovery-key
// operations using Redis counters.
type Guard struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Guard] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Guard {
	return &Guard{
		redis:  redisClient,
		config: cfg,
	}
}

// Check counts one attempt against the (keySpace, tag) tuple and reports
// whether it is within budget. Returns [ErrRateLimited] once the window
// budget is exhausted.
func (g *Guard) Check(ctx context.Context, keySpace, tag string) error {
	key := checkKey(keySpace, tag)

	count, err := g.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count == 1 {
		if err := g.redis.Expire(ctx, key, g.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	if count > int64(g.config.MaxChecks) {
		return ErrRateLimited
	}

	return nil
}

// Reset clears the counter for the (keySpace, tag) tuple. Best-effort;
// used after operations that prove the caller legitimate.
func (g *Guard) Reset(ctx context.Context, keySpace, tag string) error {
	if err := g.redis.Del(ctx, checkKey(keySpace, tag)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func checkKey(keySpace, tag string) string {
	return "arg:" + tag + ":" + keySpace
}
