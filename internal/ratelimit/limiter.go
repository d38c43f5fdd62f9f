// Package ratelimit implements per-endpoint, per-client request limiting.
//
// The default Memory limiter is a fixed-window counter: each (endpoint, client)
// pair gets a budget of MaxRequests per Window, and the counter resets fully
// once the window has elapsed. Fixed windows admit short bursts of up to twice
// the nominal rate across a window boundary (a full budget at the end of one
// window followed by a full budget at the start of the next). Use TokenBucket
// when that matters.
package ratelimit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DefaultMaxClients caps tracked clients per endpoint.
const DefaultMaxClients = 10000

type record struct {
	count       int
	windowStart time.Time
	window      time.Duration
}

func (r *record) expired(now time.Time) bool {
	return now.Sub(r.windowStart) > r.window
}

// Memory is an in-process fixed-window limiter.
//
// State is local to the process; separate instances keep independent counters.
type Memory struct {
	// Clock overrides time.Now for tests.
	Clock func() time.Time
	// MaxClients bounds the records kept per endpoint. Zero means DefaultMaxClients.
	MaxClients int

	mu       sync.Mutex
	trackers map[string]map[string]*record
}

// NewMemory returns an empty fixed-window limiter.
func NewMemory() *Memory {
	return &Memory{trackers: make(map[string]map[string]*record)}
}

// Check applies the fixed-window algorithm for clientID on endpoint.
func (m *Memory) Check(clientID, endpoint string, cfg Config) Result {
	cfg = cfg.Sanitize()
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.trackers == nil {
		m.trackers = make(map[string]map[string]*record)
	}
	tracker, ok := m.trackers[endpoint]
	if !ok {
		tracker = make(map[string]*record)
		m.trackers[endpoint] = tracker
	}

	rec, ok := tracker[clientID]
	if !ok {
		m.makeRoom(tracker, now)
		tracker[clientID] = &record{count: 1, windowStart: now, window: cfg.Window}
		return Result{Allowed: true, Limit: cfg.MaxRequests, Remaining: cfg.MaxRequests - 1, ResetAt: now.Add(cfg.Window)}
	}

	rec.window = cfg.Window
	if now.Sub(rec.windowStart) > cfg.Window {
		rec.count = 1
		rec.windowStart = now
		return Result{Allowed: true, Limit: cfg.MaxRequests, Remaining: cfg.MaxRequests - 1, ResetAt: now.Add(cfg.Window)}
	}

	resetAt := rec.windowStart.Add(cfg.Window)
	if rec.count >= cfg.MaxRequests {
		return Result{Allowed: false, Limit: cfg.MaxRequests, Remaining: 0, ResetAt: resetAt}
	}

	rec.count++
	return Result{Allowed: true, Limit: cfg.MaxRequests, Remaining: cfg.MaxRequests - rec.count, ResetAt: resetAt}
}

// Allow implements Checker. It never returns an error.
func (m *Memory) Allow(_ context.Context, clientID, endpoint string, cfg Config) (Result, error) {
	return m.Check(clientID, endpoint, cfg), nil
}

// Sweep drops records whose window has expired and returns how many were removed.
func (m *Memory) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for endpoint, tracker := range m.trackers {
		removed += sweepTracker(tracker, now)
		if len(tracker) == 0 {
			delete(m.trackers, endpoint)
		}
	}
	return removed
}

// Len returns the number of tracked clients for endpoint.
func (m *Memory) Len(endpoint string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trackers[endpoint])
}

// StartJanitor sweeps expired records every interval until ctx is cancelled.
func (m *Memory) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.Sweep()
			}
		}
	}()
}

// makeRoom keeps the tracker under MaxClients before a new record is added.
// Expired records go first; if that is not enough, the oldest windows are
// dropped until the tracker is at 80% of the cap.
func (m *Memory) makeRoom(tracker map[string]*record, now time.Time) {
	limit := m.MaxClients
	if limit <= 0 {
		limit = DefaultMaxClients
	}
	if len(tracker) < limit {
		return
	}

	sweepTracker(tracker, now)
	if len(tracker) < limit {
		return
	}

	type aged struct {
		client string
		start  time.Time
	}
	entries := make([]aged, 0, len(tracker))
	for client, rec := range tracker {
		entries = append(entries, aged{client: client, start: rec.windowStart})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].start.Before(entries[j].start) })

	target := limit * 4 / 5
	for _, e := range entries {
		if len(tracker) <= target {
			break
		}
		delete(tracker, e.client)
	}
}

func sweepTracker(tracker map[string]*record, now time.Time) int {
	removed := 0
	for client, rec := range tracker {
		if rec.expired(now) {
			delete(tracker, client)
			removed++
		}
	}
	return removed
}

func (m *Memory) now() time.Time {
	if m != nil && m.Clock != nil {
		return m.Clock()
	}
	return time.Now().UTC()
}
