package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/govguide/govguide/internal/ratelimit"
)

type failingChecker struct{}

func (failingChecker) Allow(context.Context, string, string, ratelimit.Config) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("redis: connection refused")
}

func limited(checker ratelimit.Checker, max int, policy string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	mw := RateLimit(checker, "generate-api", StaticLimit(ratelimit.Config{Window: time.Minute, MaxRequests: max}), policy, nil)
	return mw(ok)
}

func hit(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitSharedUnknownBucket(t *testing.T) {
	h := limited(ratelimit.NewMemory(), 2, ratelimit.PolicyShared)

	require.Equal(t, http.StatusNoContent, hit(h, "").Code)
	require.Equal(t, http.StatusNoContent, hit(h, "").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(h, "").Code)
}

func TestRateLimitBypassUnknownClients(t *testing.T) {
	h := limited(ratelimit.NewMemory(), 1, ratelimit.PolicyBypass)

	for i := 0; i < 5; i++ {
		rec := hit(h, "")
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Empty(t, rec.Header().Get(HeaderRateLimitLimit))
	}

	require.Equal(t, http.StatusNoContent, hit(h, "203.0.113.5").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(h, "203.0.113.5").Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
	h := limited(failingChecker{}, 1, ratelimit.PolicyShared)

	for i := 0; i < 3; i++ {
		rec := hit(h, "203.0.113.5")
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Empty(t, rec.Header().Get(HeaderRateLimitLimit))
	}
}

func TestRateLimitRetryAfterAndReset(t *testing.T) {
	h := limited(ratelimit.NewMemory(), 1, ratelimit.PolicyShared)
	before := time.Now()

	first := hit(h, "203.0.113.5")
	require.Equal(t, http.StatusNoContent, first.Code)

	reset, err := strconv.ParseInt(first.Header().Get(HeaderRateLimitReset), 10, 64)
	require.NoError(t, err)
	require.InDelta(t, before.Add(time.Minute).Unix(), reset, 1)

	denied := hit(h, "203.0.113.5")
	require.Equal(t, http.StatusTooManyRequests, denied.Code)
	retry, err := strconv.Atoi(denied.Header().Get(HeaderRetryAfter))
	require.NoError(t, err)
	require.Greater(t, retry, 0)
	require.LessOrEqual(t, retry, 60)
}
