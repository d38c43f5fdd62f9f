package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/govguide/govguide/internal/observability"
)

const defaultRedisPrefix = "govguide:cache"

// Redis is a Store backed by Redis so cached guides survive restarts and are
// shared between instances. Values are JSON-encoded and expire via PX.
type Redis[T any] struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedis returns a Redis-backed store. A non-positive ttl uses DefaultTTL.
func NewRedis[T any](rdb redis.Cmdable, prefix string, ttl time.Duration) *Redis[T] {
	if p := strings.Trim(prefix, ":"); p != "" {
		prefix = p
	} else {
		prefix = defaultRedisPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis[T]{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *Redis[T]) key(k string) string {
	return r.prefix + ":" + k
}

// Get implements Store.
func (r *Redis[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	raw, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logRedisError("get", err)
		}
		return zero, false
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		logRedisError("decode", err)
		return zero, false
	}
	return value, true
}

// Set implements Store.
func (r *Redis[T]) Set(ctx context.Context, key string, value T) {
	raw, err := json.Marshal(value)
	if err != nil {
		logRedisError("encode", err)
		return
	}
	if err := r.rdb.Set(ctx, r.key(key), raw, r.ttl).Err(); err != nil {
		logRedisError("set", err)
	}
}

// Len counts keys under the store prefix.
func (r *Redis[T]) Len(ctx context.Context) int {
	n := 0
	iter := r.rdb.Scan(ctx, 0, r.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		logRedisError("scan", err)
	}
	return n
}

func logRedisError(op string, err error) {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Warn("Cache backend error", zap.String("op", op), zap.Error(err))
	}
}
