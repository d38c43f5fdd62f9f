package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "govguide:ratelimit"

// Redis is a fixed-window limiter whose counters live in Redis, so every
// instance behind a load balancer shares one budget per client.
//
// Each window is a counter key with a PEXPIRE equal to the window length.
// Unlike Memory, denied requests still increment the counter; the decision is
// the same because the counter only matters while it is at or above the limit.
type Redis struct {
	rdb    redis.Cmdable
	prefix string
	clock  func() time.Time
}

// RedisOption configures a Redis limiter.
type RedisOption func(*Redis)

// WithRedisPrefix sets the key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if p := strings.Trim(prefix, ":"); p != "" {
			r.prefix = p
		}
	}
}

// WithRedisClock overrides the clock used to compute ResetAt.
func WithRedisClock(clock func() time.Time) RedisOption {
	return func(r *Redis) { r.clock = clock }
}

// NewRedis wraps a go-redis client.
func NewRedis(rdb redis.Cmdable, opts ...RedisOption) *Redis {
	r := &Redis{rdb: rdb, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Allow implements Checker.
func (r *Redis) Allow(ctx context.Context, clientID, endpoint string, cfg Config) (Result, error) {
	cfg = cfg.Sanitize()
	if r == nil || r.rdb == nil {
		return Result{}, fmt.Errorf("redis limiter not configured")
	}

	key := fmt.Sprintf("%s:%s:%s", r.prefix, endpoint, clientID)

	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("redis rate limit %s: %w", endpoint, err)
	}

	count := incr.Val()
	remainingTTL := ttl.Val()
	if remainingTTL <= 0 {
		// First hit in this window (or a key that lost its expiry).
		if err := r.rdb.PExpire(ctx, key, cfg.Window).Err(); err != nil {
			return Result{}, fmt.Errorf("redis rate limit expire %s: %w", endpoint, err)
		}
		remainingTTL = cfg.Window
	}

	resetAt := r.now().Add(remainingTTL)
	limit := int64(cfg.MaxRequests)
	if count > limit {
		return Result{Allowed: false, Limit: cfg.MaxRequests, Remaining: 0, ResetAt: resetAt}, nil
	}
	return Result{Allowed: true, Limit: cfg.MaxRequests, Remaining: int(limit - count), ResetAt: resetAt}, nil
}

func (r *Redis) now() time.Time {
	if r.clock != nil {
		return r.clock()
	}
	return time.Now()
}
