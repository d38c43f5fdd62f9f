package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/govguide/govguide/internal/observability"
)

// Request metric names.
const (
	MetricRequestsTotal   = "http_requests_total"
	MetricRequestDuration = "http_request_duration_ms"
	MetricErrorsTotal     = "http_errors_total"
	MetricRateLimited     = "http_rate_limited_total"
)

// routeLabel maps a request to a bounded label. The matched chi pattern is
// used when routing succeeded; otherwise the known API surface is matched by
// prefix and everything else collapses to "/unknown".
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	switch path := r.URL.Path; {
	case path == "/health" || strings.HasPrefix(path, "/health/"):
		return "/health/*"
	case strings.HasPrefix(path, "/api/agencies/"):
		return "/api/agencies/{agency}"
	case path == "/", path == "/version", path == "/metrics",
		path == "/api/generate", path == "/api/feedback", path == "/api/agencies":
		return path
	default:
		return "/unknown"
	}
}

// probeRoute reports routes polled by orchestrators and scrapers. Their access
// lines are logged at debug.
func probeRoute(route string) bool {
	return strings.HasPrefix(route, "/health") || route == "/metrics"
}

// RequestMetrics counts requests per route and status, records latency, and
// writes one access line per request. Rejections by the rate limiter are
// also counted on their own.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if observability.TelemetrySystem == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routeLabel(r)
		labels := map[string]string{
			"method":   r.Method,
			"endpoint": route,
			"status":   strconv.Itoa(status),
		}

		tel := observability.TelemetrySystem
		_ = tel.Counter(MetricRequestsTotal, 1, labels)
		_ = tel.Histogram(MetricRequestDuration, elapsed, labels)
		if status >= http.StatusBadRequest {
			errLabels := map[string]string{"error_type": "client_error"}
			if status >= http.StatusInternalServerError {
				errLabels["error_type"] = "server_error"
			}
			for k, v := range labels {
				errLabels[k] = v
			}
			_ = tel.Counter(MetricErrorsTotal, 1, errLabels)
		}
		if status == http.StatusTooManyRequests {
			_ = tel.Counter(MetricRateLimited, 1, map[string]string{"endpoint": route})
		}

		logger := observability.ServerLogger
		if logger == nil {
			return
		}
		fields := []zap.Field{
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int64("duration_ms", elapsed.Milliseconds()),
			zap.Int64("bytes_in", r.ContentLength),
			zap.Int("bytes_out", ww.BytesWritten()),
		}
		if remaining := ww.Header().Get("X-RateLimit-Remaining"); remaining != "" {
			fields = append(fields, zap.String("rate_limit_remaining", remaining))
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Warn("request", fields...)
		case probeRoute(route):
			logger.Debug("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	})
}
