package ailink

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/govguide/govguide/internal/ailink/content"
	"github.com/govguide/govguide/internal/ailink/driver"
)

type stubDriver struct {
	name   string
	text   string
	err    error
	images bool
	calls  int
	last   *driver.Request
}

func (s *stubDriver) Complete(_ context.Context, req *driver.Request) (*driver.Response, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &driver.Response{Content: []content.ContentBlock{content.Text(s.text)}}, nil
}

func (s *stubDriver) Name() string { return s.name }

func (s *stubDriver) Capabilities() driver.Capabilities {
	return driver.Capabilities{SupportsImages: s.images}
}

func guideRequest() *driver.Request {
	return &driver.Request{
		System:   "You are a friendly expert on Philippine Government Services.",
		Messages: []content.Message{content.UserMessage(content.Text("Agency: DFA\nAction: renew passport"))},
	}
}

func TestChainReturnsFirstSuccess(t *testing.T) {
	first := &stubDriver{name: "gemini", text: "from gemini"}
	second := &stubDriver{name: "openai", text: "from openai"}
	chain := NewChainFromEntries(Entry{Name: "gemini", Driver: first}, Entry{Name: "openai", Driver: second})

	res, err := chain.Complete(context.Background(), guideRequest())
	require.NoError(t, err)
	require.Equal(t, "gemini", res.Provider)
	require.Equal(t, "from gemini", res.Text())
	require.Equal(t, 0, second.calls)
}

func TestChainFallsBackInOrder(t *testing.T) {
	first := &stubDriver{name: "gemini", err: &driver.ProviderError{Provider: "gemini", StatusCode: 503, Message: "overloaded"}}
	second := &stubDriver{name: "openai", text: "   "}
	third := &stubDriver{name: "anthropic", text: "from anthropic"}
	chain := NewChainFromEntries(
		Entry{Name: "gemini", Driver: first},
		Entry{Name: "openai", Driver: second},
		Entry{Name: "anthropic", Model: "claude-test", Driver: third},
	)

	res, err := chain.Complete(context.Background(), guideRequest())
	require.NoError(t, err)
	require.Equal(t, "anthropic", res.Provider)
	require.Equal(t, 1, first.calls)
	require.Equal(t, 1, second.calls)
	require.Equal(t, "claude-test", third.last.Model)
}

func TestChainAllFail(t *testing.T) {
	authErr := &driver.ProviderError{Provider: "gemini", StatusCode: 401, Message: "bad key"}
	chain := NewChainFromEntries(
		Entry{Name: "gemini", Driver: &stubDriver{name: "gemini", err: authErr}},
		Entry{Name: "openai", Driver: &stubDriver{name: "openai", err: errors.New("connection refused")}},
	)

	_, err := chain.Complete(context.Background(), guideRequest())
	require.Error(t, err)

	var chainErr *ChainError
	require.ErrorAs(t, err, &chainErr)
	require.Len(t, chainErr.Failures, 2)
	require.Contains(t, err.Error(), "gemini")
	require.Contains(t, err.Error(), "connection refused")
	require.Equal(t, CodeProviderError, chainErr.Last().Code)

	var perr *driver.ProviderError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, 401, perr.StatusCode)
}

func TestChainEmpty(t *testing.T) {
	chain, err := NewChain(DefaultConfig())
	require.NoError(t, err)
	require.Empty(t, chain.Providers())

	_, err = chain.Complete(context.Background(), guideRequest())
	require.ErrorIs(t, err, ErrNoProviders)

	var nilChain *Chain
	_, err = nilChain.Complete(context.Background(), guideRequest())
	require.ErrorIs(t, err, ErrNoProviders)
}

func TestChainSkipsDriversWithoutImageSupport(t *testing.T) {
	textOnly := &stubDriver{name: "gemini", text: "nope"}
	vision := &stubDriver{name: "openai", text: "saw the form", images: true}
	chain := NewChainFromEntries(Entry{Name: "gemini", Driver: textOnly}, Entry{Name: "openai", Driver: vision})

	req := guideRequest()
	req.Messages[0].Content = append(req.Messages[0].Content, content.Image(content.ContentTypeJPEG, []byte{0xff}))

	res, err := chain.Complete(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "openai", res.Provider)
	require.Equal(t, 0, textOnly.calls)
}

func TestChainStopsOnCancelledContext(t *testing.T) {
	first := &stubDriver{name: "gemini", text: "x"}
	chain := NewChainFromEntries(Entry{Name: "gemini", Driver: first})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := chain.Complete(ctx, guideRequest())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, first.calls)
}

func TestNewChainHonorsOrderAndKeys(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Order = []string{"openai", "gemini", "openai", "anthropic"}
	cfg.Providers[ProviderOpenAI] = ProviderConfig{Enabled: true, APIKey: "sk-test"}
	cfg.Providers[ProviderGemini] = ProviderConfig{Enabled: true, APIKey: "g-test"}
	cfg.Providers[ProviderAnthropic] = ProviderConfig{Enabled: false, APIKey: "a-test"}

	chain, err := NewChain(cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"openai", "gemini"}, chain.Providers())
}

func TestNewChainRejectsUnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Order = []string{"mystery"}
	cfg.Providers["mystery"] = ProviderConfig{Enabled: true, APIKey: "k"}

	_, err := NewChain(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported")
}

func TestChainOverHTTPFallsBackFromGeminiToOpenAI(t *testing.T) {
	geminiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"backend error","status":"INTERNAL"}}`))
	}))
	defer geminiSrv.Close()

	openaiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"**👋 Hello!** from openai"},"finish_reason":"stop"}]}`))
	}))
	defer openaiSrv.Close()

	cfg := DefaultConfig()
	cfg.Providers[ProviderGemini] = ProviderConfig{Enabled: true, APIKey: "g", BaseURL: geminiSrv.URL}
	cfg.Providers[ProviderOpenAI] = ProviderConfig{Enabled: true, APIKey: "o", BaseURL: openaiSrv.URL}

	chain, err := NewChain(cfg)
	require.NoError(t, err)

	res, err := chain.Complete(context.Background(), guideRequest())
	require.NoError(t, err)
	require.Equal(t, ProviderOpenAI, res.Provider)
	require.Contains(t, res.Text(), "from openai")
}

func TestChainWritesTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.ndjson")
	stop, err := driver.EnableTracing(path)
	require.NoError(t, err)

	chain := NewChainFromEntries(
		Entry{Name: "gemini", Model: "gemini-test", Driver: &stubDriver{name: "gemini", err: &driver.ProviderError{Provider: "gemini", StatusCode: 429, Message: "slow down"}}},
		Entry{Name: "openai", Driver: &stubDriver{name: "openai", text: "ok"}},
	)
	_, err = chain.Complete(context.Background(), guideRequest())
	require.NoError(t, err)
	stop()
	require.False(t, driver.IsTracingEnabled())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() // nolint:errcheck

	var entries []driver.TraceEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e driver.TraceEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 2)
	require.Equal(t, "gemini", entries[0].Provider)
	require.Equal(t, "gemini-test", entries[0].Model)
	require.Equal(t, 429, entries[0].StatusCode)
	require.NotZero(t, entries[0].PromptChars)
	require.Equal(t, "openai", entries[1].Provider)
	require.Empty(t, entries[1].Error)
	require.Equal(t, 2, entries[1].OutputChars)
}
