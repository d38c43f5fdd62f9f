package server

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/govguide/govguide/internal/errors"
	"github.com/govguide/govguide/internal/metrics"
	"github.com/govguide/govguide/internal/observability"
	"github.com/govguide/govguide/internal/ratelimit"
)

// Rate limit response headers.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

// Decision labels recorded per request.
const (
	decisionAllowed  = "allowed"
	decisionDenied   = "denied"
	decisionBypassed = "bypassed"
	decisionError    = "error"
)

// LimitSource returns the current budget for an endpoint. It is consulted on
// every request so a config reload takes effect without rebuilding routes.
type LimitSource func() ratelimit.Config

// StaticLimit wraps a fixed budget.
func StaticLimit(cfg ratelimit.Config) LimitSource {
	return func() ratelimit.Config { return cfg }
}

// RateLimit limits requests to endpoint per client address.
//
// Callers without an identifiable address share the UnknownClient bucket
// unless policy is bypass. A checker error lets the request through.
func RateLimit(checker ratelimit.Checker, endpoint string, limits LimitSource, policy string, identify ratelimit.ClientIdentifier) func(http.Handler) http.Handler {
	if identify == nil {
		identify = ratelimit.NewClientIdentifier(nil, false)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := identify(r)
			if clientID == ratelimit.UnknownClient && policy == ratelimit.PolicyBypass {
				metrics.RecordRateLimitDecision(endpoint, decisionBypassed)
				next.ServeHTTP(w, r)
				return
			}

			res, err := checker.Allow(r.Context(), clientID, endpoint, limits())
			if err != nil {
				metrics.RecordRateLimitDecision(endpoint, decisionError)
				if logger := observability.ServerLogger; logger != nil {
					logger.Warn("Rate limiter unavailable, allowing request",
						zap.String("endpoint", endpoint),
						zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, res)
			if !res.Allowed {
				metrics.RecordRateLimitDecision(endpoint, decisionDenied)
				retryAfter := res.RetryAfter(time.Now())
				w.Header().Set(HeaderRetryAfter, strconv.Itoa(int(retryAfter/time.Second)))
				apperrors.RespondWithError(w, r, apperrors.NewRateLimitedError(
					"Too many requests. Please try again later.",
					map[string]interface{}{
						"limit":     res.Limit,
						"remaining": res.Remaining,
						"reset_at":  res.ResetAt.UTC().Format(time.RFC3339),
					}))
				return
			}

			metrics.RecordRateLimitDecision(endpoint, decisionAllowed)
			next.ServeHTTP(w, r)
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, res ratelimit.Result) {
	h := w.Header()
	h.Set(HeaderRateLimitLimit, strconv.Itoa(res.Limit))
	h.Set(HeaderRateLimitRemaining, strconv.Itoa(res.Remaining))
	h.Set(HeaderRateLimitReset, strconv.FormatInt(res.ResetAt.Unix(), 10))
}
