package ratelimit

import (
	"context"
	"time"
)

const (
	// DefaultWindow is used when a configured window is unset or invalid.
	DefaultWindow = time.Minute
	// DefaultMaxRequests is used when a configured budget is unset or invalid.
	DefaultMaxRequests = 10
)

// Config is a window length and a request budget for one endpoint.
type Config struct {
	Window      time.Duration `mapstructure:"window"`
	MaxRequests int           `mapstructure:"max_requests"`
}

// DefaultConfig returns the fallback window and budget.
func DefaultConfig() Config {
	return Config{Window: DefaultWindow, MaxRequests: DefaultMaxRequests}
}

// Sanitize replaces non-positive values with the defaults.
func (c Config) Sanitize() Config {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.MaxRequests <= 0 {
		c.MaxRequests = DefaultMaxRequests
	}
	return c
}

// Result reports the outcome of a single check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long a denied caller should wait, rounded up to whole seconds.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed || !r.ResetAt.After(now) {
		return 0
	}
	wait := r.ResetAt.Sub(now)
	if rem := wait % time.Second; rem != 0 {
		wait += time.Second - rem
	}
	return wait
}

// Checker decides whether a client may call an endpoint now.
//
// Implementations never treat a denial as an error; errors are reserved for
// backend failures (e.g. Redis unreachable).
type Checker interface {
	Allow(ctx context.Context, clientID, endpoint string, cfg Config) (Result, error)
}

// Algorithm and backend identifiers accepted by configuration.
const (
	AlgorithmFixedWindow = "fixed_window"
	AlgorithmTokenBucket = "token_bucket"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)
