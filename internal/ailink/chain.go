package ailink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/govguide/govguide/internal/ailink/driver"
	"github.com/govguide/govguide/internal/metrics"
	"github.com/govguide/govguide/internal/observability"
)

// ErrNoProviders is returned when no provider is enabled with a key.
var ErrNoProviders = errors.New("no ai providers configured")

// Entry is one link of a Chain.
type Entry struct {
	Name   string
	Model  string
	Driver driver.Driver
}

// Result is a successful completion and the provider that produced it.
type Result struct {
	Provider string
	Response *driver.Response
}

// Text returns the completion text.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	return r.Response.Text()
}

// ChainError reports every failed attempt when the whole chain fails.
type ChainError struct {
	Failures []AttemptError
}

// AttemptError is a single provider failure.
type AttemptError struct {
	Provider string
	Err      error
}

func (e *ChainError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Provider, f.Err))
	}
	return "all ai providers failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *ChainError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Last returns the classification of the final failure.
func (e *ChainError) Last() *ProviderFailure {
	if e == nil || len(e.Failures) == 0 {
		return nil
	}
	return MapProviderError(e.Failures[len(e.Failures)-1].Err)
}

// Chain tries providers in order and returns the first success.
type Chain struct {
	entries     []Entry
	temperature *float64
	maxTokens   *int
}

// NewChain builds a chain of the usable providers in cfg.Order.
// An empty chain is valid; Complete then returns ErrNoProviders.
func NewChain(cfg Config) (*Chain, error) {
	c := &Chain{}
	if cfg.Temperature > 0 {
		temp := cfg.Temperature
		c.temperature = &temp
	}
	if cfg.MaxTokens > 0 {
		max := cfg.MaxTokens
		c.maxTokens = &max
	}

	for _, id := range cfg.ConfiguredProviders() {
		pc := cfg.Providers[id]
		drv, err := NewDriver(id, pc, cfg.DefaultTimeout)
		if err != nil {
			return nil, err
		}
		c.entries = append(c.entries, Entry{Name: id, Model: strings.TrimSpace(pc.Model), Driver: drv})
	}
	return c, nil
}

// NewChainFromEntries builds a chain from prepared drivers.
func NewChainFromEntries(entries ...Entry) *Chain {
	return &Chain{entries: entries}
}

// Providers returns provider names in the order they are tried.
func (c *Chain) Providers() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.Name)
	}
	return names
}

// Complete tries each provider in turn.
//
// Each failure is logged and counted before moving on. Cancellation of ctx
// stops the chain immediately.
func (c *Chain) Complete(ctx context.Context, req *driver.Request) (*Result, error) {
	if c == nil || len(c.entries) == 0 {
		return nil, ErrNoProviders
	}
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	chainErr := &ChainError{}
	for _, entry := range c.entries {
		if err := ctx.Err(); err != nil {
			chainErr.Failures = append(chainErr.Failures, AttemptError{Provider: entry.Name, Err: err})
			return nil, chainErr
		}

		if req.HasImage() && !entry.Driver.Capabilities().SupportsImages {
			chainErr.Failures = append(chainErr.Failures, AttemptError{Provider: entry.Name, Err: errors.New("image input not supported")})
			continue
		}

		attempt := c.requestFor(entry, req)
		start := time.Now()
		resp, err := entry.Driver.Complete(ctx, attempt)
		elapsed := time.Since(start)

		if err == nil && resp.Text() == "" {
			err = &driver.ProviderError{Provider: entry.Name, Message: "empty completion"}
		}
		traceAttempt(entry, attempt, resp, err, elapsed)
		metrics.RecordProviderRequest(entry.Name, err == nil, elapsed)

		if err == nil {
			if observability.ServerLogger != nil {
				observability.ServerLogger.Debug("AI provider succeeded",
					zap.String("provider", entry.Name),
					zap.Duration("duration", elapsed))
			}
			return &Result{Provider: entry.Name, Response: resp}, nil
		}

		if observability.ServerLogger != nil {
			failure := MapProviderError(err)
			observability.ServerLogger.Warn("AI provider failed, trying next",
				zap.String("provider", entry.Name),
				zap.String("code", failure.Code),
				zap.String("details", failure.Details),
				zap.Duration("duration", elapsed))
		}
		chainErr.Failures = append(chainErr.Failures, AttemptError{Provider: entry.Name, Err: err})
	}

	return nil, chainErr
}

// requestFor copies req with the entry's model and the chain's sampling
// defaults filled in where the caller left them empty.
func (c *Chain) requestFor(entry Entry, req *driver.Request) *driver.Request {
	out := *req
	if strings.TrimSpace(out.Model) == "" {
		out.Model = entry.Model
	}
	if out.Temperature == nil {
		out.Temperature = c.temperature
	}
	if out.MaxTokens == nil {
		out.MaxTokens = c.maxTokens
	}
	return &out
}

func traceAttempt(entry Entry, req *driver.Request, resp *driver.Response, err error, elapsed time.Duration) {
	if !driver.IsTracingEnabled() {
		return
	}
	te := driver.TraceEntry{
		Provider:    entry.Name,
		Model:       req.Model,
		PromptChars: driver.PromptChars(req),
		HasImage:    req.HasImage(),
		DurationMs:  elapsed.Milliseconds(),
	}
	if resp != nil {
		if resp.Model != "" {
			te.Model = resp.Model
		}
		te.OutputChars = len(resp.Text())
	}
	if err != nil {
		te.Error = err.Error()
		var perr *driver.ProviderError
		if errors.As(err, &perr) {
			te.StatusCode = perr.StatusCode
		}
	}
	driver.Trace(te)
}
