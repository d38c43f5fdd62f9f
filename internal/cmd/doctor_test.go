package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/govguide/govguide/internal/ailink"
)

func TestProbeProvidersSkipsUnconfigured(t *testing.T) {
	cfg := ailink.Config{
		Order: []string{"gemini", "openai", "anthropic"},
		Providers: map[string]ailink.ProviderConfig{
			"gemini": {Enabled: false, APIKey: "g"},
			"openai": {Enabled: true},
		},
	}

	checks := probeProviders(context.Background(), cfg, time.Second)
	require.Len(t, checks, 3)
	require.Equal(t, doctorCheck{Provider: "gemini", Status: "skipped", Detail: "disabled"}, checks[0])
	require.Equal(t, doctorCheck{Provider: "openai", Status: "skipped", Detail: "no api key"}, checks[1])
	require.Equal(t, doctorCheck{Provider: "anthropic", Status: "skipped", Detail: "disabled"}, checks[2])
}

func TestProbeProvidersUnsupportedProvider(t *testing.T) {
	cfg := ailink.Config{
		Order:     []string{"mystery"},
		Providers: map[string]ailink.ProviderConfig{"mystery": {Enabled: true, APIKey: "k"}},
	}

	checks := probeProviders(context.Background(), cfg, time.Second)
	require.Len(t, checks, 1)
	require.Equal(t, "error", checks[0].Status)
	require.Contains(t, checks[0].Detail, "unsupported")
}

func TestProbeProvidersReportsSuccessAndFailure(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-4o-mini","choices":[{"message":{"content":"OK"},"finish_reason":"stop"}]}`))
	}))
	defer ok.Close()

	denied := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid","status":"UNAUTHENTICATED"}}`))
	}))
	defer denied.Close()

	cfg := ailink.Config{
		Order: []string{"gemini", "openai"},
		Providers: map[string]ailink.ProviderConfig{
			"gemini": {Enabled: true, APIKey: "bad", BaseURL: denied.URL},
			"openai": {Enabled: true, APIKey: "good", BaseURL: ok.URL},
		},
	}

	checks := probeProviders(context.Background(), cfg, 5*time.Second)
	require.Len(t, checks, 2)

	require.Equal(t, "failed", checks[0].Status)
	require.Contains(t, checks[0].Detail, ailink.CodeProviderAuth)

	require.Equal(t, "ok", checks[1].Status)
	require.Equal(t, "gpt-4o-mini: OK", checks[1].Detail)
	require.Greater(t, int64(checks[1].Latency), int64(0))
}
