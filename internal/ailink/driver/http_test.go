package driver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPostJSONDecodesSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "ping", in["q"])
		_, _ = w.Write([]byte(`{"answer":"pong"}`))
	}))
	defer server.Close()

	var out struct {
		Answer string `json:"answer"`
	}
	err := PostJSON(context.Background(), JSONCall{
		Provider: "test",
		URL:      server.URL,
		Headers:  map[string]string{"X-Api-Key": "secret"},
		Body:     map[string]string{"q": "ping"},
	}, &out)
	require.NoError(t, err)
	require.Equal(t, "pong", out.Answer)
}

func TestPostJSONReturnsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("  slow down  "))
	}))
	defer server.Close()

	var out map[string]any
	err := PostJSON(context.Background(), JSONCall{Provider: "test", URL: server.URL, Body: struct{}{}}, &out)

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "test", perr.Provider)
	require.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
	require.Equal(t, "slow down", perr.Message)
	require.True(t, perr.Retryable())
}

func TestPostJSONUsesErrorMessageExtractor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad model"}`))
	}))
	defer server.Close()

	err := PostJSON(context.Background(), JSONCall{
		Provider:     "test",
		URL:          server.URL,
		Body:         struct{}{},
		ErrorMessage: func(body []byte) string { return strings.ToUpper(string(body)) },
	}, &struct{}{})

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, `{"ERROR":"BAD MODEL"}`, perr.Message)
	require.False(t, perr.Retryable())
}

func TestPostJSONTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	err := PostJSON(context.Background(), JSONCall{
		Provider: "test",
		URL:      server.URL,
		Body:     struct{}{},
		Timeout:  20 * time.Millisecond,
	}, &struct{}{})
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPostJSONRejectsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	err := PostJSON(context.Background(), JSONCall{Provider: "test", URL: server.URL, Body: struct{}{}}, &struct{}{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}
