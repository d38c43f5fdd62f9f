package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxResponseBytes caps how much of a provider response body is read.
const MaxResponseBytes = 4 << 20

// JSONCall describes one JSON POST to a provider API.
type JSONCall struct {
	Provider string
	URL      string
	Headers  map[string]string
	Body     any
	Client   *http.Client
	Timeout  time.Duration
	// ErrorMessage extracts a readable message from a non-2xx body.
	// The trimmed body is used when nil.
	ErrorMessage func(body []byte) string
}

// PostJSON sends call.Body and decodes a 2xx response into out.
// Non-2xx responses return a *ProviderError.
func PostJSON(ctx context.Context, call JSONCall, out any) error {
	if call.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, call.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(call.Body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, call.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range call.Headers {
		req.Header.Set(k, v)
	}

	client := call.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := string(bytes.TrimSpace(respBody))
		if call.ErrorMessage != nil {
			msg = call.ErrorMessage(respBody)
		}
		return &ProviderError{Provider: call.Provider, StatusCode: resp.StatusCode, Message: msg, RawResponse: respBody}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
