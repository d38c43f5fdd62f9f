package guide

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/govguide/govguide/internal/ailink"
	"github.com/govguide/govguide/internal/ailink/content"
	"github.com/govguide/govguide/internal/ailink/driver"
	"github.com/govguide/govguide/internal/ailink/prompt"
	"github.com/govguide/govguide/internal/cache"
)

type fakeChain struct {
	provider string
	text     string
	err      error
	calls    int
	last     *driver.Request
}

func (f *fakeChain) Complete(_ context.Context, req *driver.Request) (*ailink.Result, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &ailink.Result{
		Provider: f.provider,
		Response: &driver.Response{Content: []content.ContentBlock{content.Text(f.text)}},
	}, nil
}

func newTestService(t *testing.T, cfg Config, chain Completer) (*Service, *cache.Memory[CachedGuide]) {
	t.Helper()
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	prompts, err := prompt.DefaultRegistry("")
	require.NoError(t, err)

	mem := cache.NewMemory[CachedGuide](time.Hour)
	svc, err := NewService(cfg, cache.AsStore(mem), chain, catalog, prompts)
	require.NoError(t, err)
	return svc, mem
}

func TestGenerateMissThenHit(t *testing.T) {
	chain := &fakeChain{provider: "gemini", text: "**👋 Hello!** Renew your passport like this."}
	svc, mem := newTestService(t, DefaultConfig(), chain)
	ctx := context.Background()

	first, err := svc.Generate(ctx, Request{Agency: "DFA (Passport)", Action: "Renew Passport", Location: "Quezon City"})
	require.NoError(t, err)
	require.False(t, first.Cached)
	require.Equal(t, "gemini", first.Provider)
	require.Contains(t, first.Text, "Renew your passport")
	require.Contains(t, first.Text, MapsSearchURL("DFA (Passport)", "Quezon City"))
	require.Equal(t, 1, chain.calls)

	cached, ok := mem.Get(CacheKey(Request{Agency: "DFA (Passport)", Action: "Renew Passport", Language: LanguageTaglish}))
	require.True(t, ok)
	require.NotContains(t, cached.Text, "Quezon City", "location is not cached")

	second, err := svc.Generate(ctx, Request{Agency: "dfa (passport)", Action: "RENEW PASSPORT", Location: "Davao"})
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, "gemini", second.Provider)
	require.Contains(t, second.Text, MapsSearchURL("DFA (Passport)", "Davao"))
	require.NotContains(t, second.Text, "Quezon")
	require.Equal(t, 1, chain.calls, "cache hit skips providers")
}

func TestGenerateLanguageIsPartOfKey(t *testing.T) {
	chain := &fakeChain{provider: "openai", text: "guide"}
	svc, _ := newTestService(t, DefaultConfig(), chain)
	ctx := context.Background()

	_, err := svc.Generate(ctx, Request{Agency: "SSS", Action: "Salary Loan", Language: "english"})
	require.NoError(t, err)
	_, err = svc.Generate(ctx, Request{Agency: "SSS", Action: "Salary Loan", Language: "filipino"})
	require.NoError(t, err)
	require.Equal(t, 2, chain.calls)
	require.Contains(t, chain.last.System, "Filipino")
}

func TestGeneratePromptExcludesLocation(t *testing.T) {
	chain := &fakeChain{provider: "gemini", text: "guide"}
	svc, _ := newTestService(t, DefaultConfig(), chain)

	_, err := svc.Generate(context.Background(), Request{Agency: "NBI (Clearance)", Action: "New NBI Clearance", Location: "Baguio City"})
	require.NoError(t, err)
	require.NotContains(t, chain.last.System, "Baguio")
	require.NotContains(t, chain.last.Messages[0].Content[0].Text, "Baguio")
	require.Contains(t, chain.last.Messages[0].Content[0].Text, "https://clearance.nbi.gov.ph/")
}

func TestGenerateMockFallbackNotCached(t *testing.T) {
	chain := &fakeChain{err: ailink.ErrNoProviders}
	svc, mem := newTestService(t, DefaultConfig(), chain)

	res, err := svc.Generate(context.Background(), Request{Agency: "PhilHealth", Action: "MDR Request", Location: "Iloilo"})
	require.NoError(t, err)
	require.True(t, res.Mock)
	require.True(t, strings.HasPrefix(res.Text, MockPrefix))
	require.Contains(t, res.Text, "PhilHealth website")
	require.Contains(t, res.Text, WhereToGoHeader)
	require.Equal(t, 0, mem.Len())
}

func TestGenerateWithoutMockFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MockFallback = false
	chain := &fakeChain{err: &ailink.ChainError{Failures: []ailink.AttemptError{{Provider: "gemini", Err: errors.New("boom")}}}}
	svc, _ := newTestService(t, cfg, chain)

	_, err := svc.Generate(context.Background(), Request{Agency: "SSS", Action: "Salary Loan"})
	require.ErrorIs(t, err, ErrProvidersUnavailable)

	var chainErr *ailink.ChainError
	require.ErrorAs(t, err, &chainErr)
}

func TestGenerateCancelledContextIsNotMocked(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	chain := &fakeChain{err: context.Canceled}
	svc, _ := newTestService(t, DefaultConfig(), chain)

	_, err := svc.Generate(ctx, Request{Agency: "SSS", Action: "Salary Loan"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerateImageBypassesCache(t *testing.T) {
	chain := &fakeChain{provider: "gemini", text: "This is a DS-11 form."}
	svc, mem := newTestService(t, DefaultConfig(), chain)
	ctx := context.Background()

	req := Request{Agency: "DFA", Action: "What form is this?", Image: pngDataURL(t, 10, 10)}
	_, err := svc.Generate(ctx, req)
	require.NoError(t, err)
	_, err = svc.Generate(ctx, req)
	require.NoError(t, err)

	require.Equal(t, 2, chain.calls)
	require.Equal(t, 0, mem.Len())
	require.True(t, chain.last.HasImage())
	require.Contains(t, chain.last.Messages[0].Content[0].Text, "photo")
}

func TestGenerateValidation(t *testing.T) {
	svc, _ := newTestService(t, DefaultConfig(), &fakeChain{})

	_, err := svc.Generate(context.Background(), Request{Action: "x"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.Generate(context.Background(), Request{Agency: "DFA", Action: "x", Image: "not-a-data-url"})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "image", verr.Field)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	prompts, err := prompt.DefaultRegistry("")
	require.NoError(t, err)
	store := cache.AsStore(cache.NewMemory[CachedGuide](time.Hour))

	_, err = NewService(DefaultConfig(), nil, &fakeChain{}, nil, prompts)
	require.Error(t, err)
	_, err = NewService(DefaultConfig(), store, nil, nil, prompts)
	require.Error(t, err)

	cfg := DefaultConfig()
	cfg.PromptSlug = "missing"
	_, err = NewService(cfg, store, &fakeChain{}, nil, prompts)
	require.ErrorContains(t, err, "not found")
}
