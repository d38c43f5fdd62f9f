package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucket is a drop-in alternative to Memory without the fixed-window
// boundary burst. Each client refills at MaxRequests per Window and may hold
// at most MaxRequests tokens.
type TokenBucket struct {
	Clock   func() time.Time
	IdleTTL time.Duration

	mu      sync.Mutex
	entries map[string]*bucketEntry
}

type bucketEntry struct {
	lim      *rate.Limiter
	cfg      Config
	lastSeen time.Time
}

// NewTokenBucket returns an empty token-bucket limiter.
func NewTokenBucket() *TokenBucket {
	return &TokenBucket{entries: make(map[string]*bucketEntry), IdleTTL: 15 * time.Minute}
}

// Allow implements Checker. It never returns an error.
func (t *TokenBucket) Allow(_ context.Context, clientID, endpoint string, cfg Config) (Result, error) {
	cfg = cfg.Sanitize()
	now := t.now()
	every := rate.Every(cfg.Window / time.Duration(cfg.MaxRequests))

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.entries == nil {
		t.entries = make(map[string]*bucketEntry)
	}
	key := endpoint + "\x00" + clientID
	ent, ok := t.entries[key]
	if !ok {
		ent = &bucketEntry{lim: rate.NewLimiter(every, cfg.MaxRequests), cfg: cfg}
		t.entries[key] = ent
	} else if ent.cfg != cfg {
		ent.lim.SetLimitAt(now, every)
		ent.lim.SetBurstAt(now, cfg.MaxRequests)
		ent.cfg = cfg
	}
	ent.lastSeen = now

	allowed := ent.lim.AllowN(now, 1)
	tokens := ent.lim.TokensAt(now)
	remaining := int(math.Floor(tokens))
	if remaining < 0 {
		remaining = 0
	}

	perToken := cfg.Window / time.Duration(cfg.MaxRequests)
	var resetAt time.Time
	if allowed {
		missing := float64(cfg.MaxRequests) - tokens
		resetAt = now.Add(time.Duration(missing * float64(perToken)))
	} else {
		resetAt = now.Add(time.Duration((1 - tokens) * float64(perToken)))
	}

	return Result{Allowed: allowed, Limit: cfg.MaxRequests, Remaining: remaining, ResetAt: resetAt}, nil
}

// Sweep drops buckets idle for longer than IdleTTL.
func (t *TokenBucket) Sweep() int {
	idle := t.IdleTTL
	if idle <= 0 {
		idle = 15 * time.Minute
	}
	cutoff := t.now().Add(-idle)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, ent := range t.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(t.entries, key)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps idle buckets every interval until ctx is cancelled.
func (t *TokenBucket) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}

	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.Sweep()
			}
		}
	}()
}

func (t *TokenBucket) now() time.Time {
	if t != nil && t.Clock != nil {
		return t.Clock()
	}
	return time.Now()
}
