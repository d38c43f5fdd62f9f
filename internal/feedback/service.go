package feedback

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/govguide/govguide/internal/metrics"
	"github.com/govguide/govguide/internal/observability"
)

// DefaultSinkTimeout bounds a single sink delivery.
const DefaultSinkTimeout = 10 * time.Second

// Sink delivers a submission somewhere.
type Sink interface {
	Name() string
	Send(ctx context.Context, sub Submission) error
}

// Receipt summarizes a Submit call.
type Receipt struct {
	Delivered []string
	Failed    []string
}

// Service fans submissions out to its sinks.
type Service struct {
	sinks   []Sink
	timeout time.Duration
	clock   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSinkTimeout bounds each sink delivery.
func WithSinkTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// NewService returns a service delivering to sinks. Nil sinks are skipped.
func NewService(sinks []Sink, opts ...Option) *Service {
	s := &Service{timeout: DefaultSinkTimeout, clock: time.Now}
	for _, sink := range sinks {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sinks returns the names of the configured sinks.
func (s *Service) Sinks() []string {
	names := make([]string, 0, len(s.sinks))
	for _, sink := range s.sinks {
		names = append(names, sink.Name())
	}
	return names
}

// Submit stamps the submission and delivers it to every sink concurrently.
// Only an invalid submission returns an error; sink failures are logged,
// counted, and listed in the receipt.
func (s *Service) Submit(ctx context.Context, sub Submission) (Receipt, error) {
	if err := sub.Validate(); err != nil {
		return Receipt{}, err
	}
	if sub.Type == "" {
		sub.Type = "feedback"
	}
	if strings.TrimSpace(sub.Name) == "" {
		sub.Name = AnonymousName
	}
	if sub.Timestamp.IsZero() {
		sub.Timestamp = s.clock().UTC()
	}
	metrics.RecordFeedbackSubmission()

	errs := make([]error, len(s.sinks))
	var wg sync.WaitGroup
	for i, sink := range s.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
			defer cancel()
			errs[i] = sink.Send(sinkCtx, sub)
		}()
	}
	wg.Wait()

	var receipt Receipt
	for i, sink := range s.sinks {
		if errs[i] == nil {
			receipt.Delivered = append(receipt.Delivered, sink.Name())
			continue
		}
		receipt.Failed = append(receipt.Failed, sink.Name())
		metrics.RecordFeedbackSinkError(sink.Name())
		if observability.ServerLogger != nil {
			observability.ServerLogger.Error("Feedback sink failed",
				zap.String("sink", sink.Name()),
				zap.Error(errs[i]))
		}
	}
	return receipt, nil
}

// LogSink writes submissions to the server log. It is used when no webhook
// is configured.
type LogSink struct{}

// Name implements Sink.
func (LogSink) Name() string { return "log" }

// Send implements Sink.
func (LogSink) Send(_ context.Context, sub Submission) error {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Feedback received",
			zap.String("name", sub.Name),
			zap.String("page", sub.Page),
			zap.Float64("rating", sub.Rating),
			zap.Int("message_chars", len([]rune(sub.Message))))
	}
	return nil
}
