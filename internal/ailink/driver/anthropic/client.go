// Package anthropic implements the Anthropic driver on top of the official
// Messages SDK.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/govguide/govguide/internal/ailink/content"
	"github.com/govguide/govguide/internal/ailink/driver"
	"github.com/govguide/govguide/internal/ailink/encode"
)

const (
	// DefaultModel is used when the request does not name one.
	DefaultModel = "claude-haiku-4-5"
	// DefaultMaxTokens is required by the Messages API.
	DefaultMaxTokens = 2048
)

// Client implements the Anthropic driver.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{BaseURL: strings.TrimSpace(baseURL), APIKey: strings.TrimSpace(apiKey)}
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	return "anthropic"
}

// Capabilities describes supported features.
func (c *Client) Capabilities() driver.Capabilities {
	return driver.Capabilities{SupportsImages: true}
}

func (c *Client) sdkClient() sdk.Client {
	// The chain owns fallback; the SDK must not retry on its own.
	opts := []option.RequestOption{
		option.WithAPIKey(c.APIKey),
		option.WithMaxRetries(0),
	}
	if c.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.BaseURL))
	}
	if c.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(c.HTTPClient))
	}
	if c.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(c.Timeout))
	}
	return sdk.NewClient(opts...)
}

// Complete sends a Messages API request.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("anthropic client not configured")
	}
	if c.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	params, err := buildParams(req)
	if err != nil {
		return nil, err
	}

	client := c.sdkClient()
	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			raw := apiErr.RawJSON()
			return nil, &driver.ProviderError{
				Provider:    "anthropic",
				StatusCode:  apiErr.StatusCode,
				Message:     strings.TrimSpace(raw),
				RawResponse: []byte(raw),
			}
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return toDriverResponse(msg)
}

func buildParams(req *driver.Request) (sdk.MessageNewParams, error) {
	if req == nil {
		return sdk.MessageNewParams{}, fmt.Errorf("request is required")
	}
	if len(req.Messages) == 0 {
		return sdk.MessageNewParams{}, fmt.Errorf("messages are required")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = DefaultModel
	}
	maxTokens := int64(DefaultMaxTokens)
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		maxTokens = int64(*req.MaxTokens)
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: maxTokens,
	}
	if s := strings.TrimSpace(req.System); s != "" {
		params.System = []sdk.TextBlockParam{{Text: s}}
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	for _, msg := range req.Messages {
		blocks, err := convertBlocks(msg.Content)
		if err != nil {
			return sdk.MessageNewParams{}, err
		}
		if msg.Role == "assistant" {
			params.Messages = append(params.Messages, sdk.NewAssistantMessage(blocks...))
		} else {
			params.Messages = append(params.Messages, sdk.NewUserMessage(blocks...))
		}
	}
	return params, nil
}

func convertBlocks(blocks []content.ContentBlock) ([]sdk.ContentBlockParamUnion, error) {
	out := make([]sdk.ContentBlockParamUnion, 0, len(blocks))
	for _, block := range blocks {
		switch {
		case block.Type == content.ContentTypeText:
			out = append(out, sdk.NewTextBlock(block.Text))
		case block.Type.IsImage():
			if len(block.Data) == 0 {
				return nil, fmt.Errorf("image block has no data")
			}
			out = append(out, sdk.NewImageBlockBase64(string(block.Type), encode.EncodeBase64String(block.Data)))
		default:
			return nil, fmt.Errorf("unsupported content type: %s", block.Type)
		}
	}
	return out, nil
}

func toDriverResponse(msg *sdk.Message) (*driver.Response, error) {
	if msg == nil {
		return nil, &driver.ProviderError{Provider: "anthropic", Message: "empty response"}
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return nil, &driver.ProviderError{Provider: "anthropic", Message: "empty completion"}
	}

	in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	return &driver.Response{
		Content:      []content.ContentBlock{content.Text(text)},
		FinishReason: string(msg.StopReason),
		Model:        string(msg.Model),
		Usage:        &driver.Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out},
	}, nil
}
