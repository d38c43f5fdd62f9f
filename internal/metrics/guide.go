package metrics

import (
	"time"

	"github.com/govguide/govguide/internal/observability"
)

// Guide service metrics
const (
	RateLimitDecisionsTotal  = "ratelimit_decisions_total"
	CacheLookupsTotal        = "cache_lookups_total"
	ProviderRequestsTotal    = "ailink_provider_requests_total"
	ProviderDuration         = "ailink_provider_duration_ms"
	GuideGenerationsTotal    = "guide_generations_total"
	FeedbackSubmissionsTotal = "feedback_submissions_total"
	FeedbackSinkErrorsTotal  = "feedback_sink_errors_total"
)

// RecordRateLimitDecision counts an allow/deny/bypass decision for an endpoint.
func RecordRateLimitDecision(endpoint, decision string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			RateLimitDecisionsTotal,
			1,
			map[string]string{
				"endpoint": endpoint,
				"decision": decision,
			},
		)
	}
}

// RecordCacheLookup counts a cache hit, miss, or bypass.
func RecordCacheLookup(result string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			CacheLookupsTotal,
			1,
			map[string]string{"result": result},
		)
	}
}

// RecordProviderRequest records one provider attempt.
func RecordProviderRequest(provider string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ProviderRequestsTotal,
			1,
			map[string]string{
				"provider": provider,
				"status":   status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			ProviderDuration,
			duration,
			map[string]string{"provider": provider},
		)
	}
}

// RecordGuideGeneration counts a served guide by source (cache, provider name, mock).
func RecordGuideGeneration(source string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			GuideGenerationsTotal,
			1,
			map[string]string{"source": source},
		)
	}
}

// RecordFeedbackSubmission counts accepted feedback.
func RecordFeedbackSubmission() {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(FeedbackSubmissionsTotal, 1, nil)
	}
}

// RecordFeedbackSinkError counts a failed feedback delivery.
func RecordFeedbackSinkError(sink string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			FeedbackSinkErrorsTotal,
			1,
			map[string]string{"sink": sink},
		)
	}
}
