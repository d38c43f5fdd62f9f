package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/govguide/govguide/internal/ailink/driver"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is used when the request does not name one.
	DefaultModel = "gpt-4o-mini"
)

// Client implements the OpenAI driver via direct HTTP.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL, apiKey string) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}

	return &Client{BaseURL: url, APIKey: strings.TrimSpace(apiKey)}
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	return "openai"
}

// Capabilities describes supported features.
func (c *Client) Capabilities() driver.Capabilities {
	return driver.Capabilities{SupportsImages: true}
}

// Complete sends a chat completion request.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("openai client not configured")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}

	payload, err := buildChatRequest(req)
	if err != nil {
		return nil, err
	}

	var parsed chatCompletionResponse
	err = driver.PostJSON(ctx, driver.JSONCall{
		Provider: "openai",
		URL:      strings.TrimRight(c.BaseURL, "/") + "/chat/completions",
		Headers:  map[string]string{"Authorization": "Bearer " + c.APIKey},
		Body:     payload,
		Client:   c.HTTPClient,
		Timeout:  c.Timeout,
	}, &parsed)
	if err != nil {
		return nil, err
	}
	return toDriverResponse(&parsed)
}
