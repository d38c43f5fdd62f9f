// Package gemini implements the Google Gemini driver over the
// generativelanguage REST API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/govguide/govguide/internal/ailink/driver"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is used when the request does not name one.
	DefaultModel = "gemini-2.5-flash"
)

// Client implements the Gemini driver via direct HTTP.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL, apiKey string) *Client {
	u := strings.TrimSpace(baseURL)
	if u == "" {
		u = defaultBaseURL
	}
	return &Client{BaseURL: u, APIKey: strings.TrimSpace(apiKey)}
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	return "gemini"
}

// Capabilities describes supported features.
func (c *Client) Capabilities() driver.Capabilities {
	return driver.Capabilities{SupportsImages: true}
}

// Complete calls models/{model}:generateContent.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("gemini client not configured")
	}
	if c.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	model, payload, err := buildGenerateRequest(req)
	if err != nil {
		return nil, err
	}

	var parsed generateContentResponse
	err = driver.PostJSON(ctx, driver.JSONCall{
		Provider:     "gemini",
		URL:          strings.TrimRight(c.BaseURL, "/") + "/models/" + url.PathEscape(model) + ":generateContent",
		Headers:      map[string]string{"x-goog-api-key": c.APIKey},
		Body:         payload,
		Client:       c.HTTPClient,
		Timeout:      c.Timeout,
		ErrorMessage: errorMessage,
	}, &parsed)
	if err != nil {
		return nil, err
	}
	if parsed.ModelVersion == "" {
		parsed.ModelVersion = model
	}
	return toDriverResponse(&parsed)
}

// errorMessage extracts error.message from a Google API error body.
func errorMessage(body []byte) string {
	var env struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		if env.Error.Status != "" {
			return env.Error.Status + ": " + env.Error.Message
		}
		return env.Error.Message
	}
	return strings.TrimSpace(string(body))
}
