package ailink

import (
	"strings"
	"time"
)

// Provider identifiers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// DefaultOrder is the fallback order used when none is configured.
var DefaultOrder = []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic}

// Config defines provider configuration for AILink.
//
// It is self-contained so it can be decoded from its own config subtree.
type Config struct {
	// Order lists provider ids in the order they are tried.
	Order          []string      `mapstructure:"order"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
	Temperature    float64       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens"`

	// Providers is keyed by provider id.
	Providers map[string]ProviderConfig `mapstructure:"providers"`
}

// ProviderConfig configures a single provider.
type ProviderConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// Usable reports whether the provider should join the chain.
func (p ProviderConfig) Usable() bool {
	return p.Enabled && strings.TrimSpace(p.APIKey) != ""
}

// DefaultConfig returns all three providers enabled without keys.
func DefaultConfig() Config {
	return Config{
		Order:          append([]string(nil), DefaultOrder...),
		DefaultTimeout: 60 * time.Second,
		Temperature:    0.6,
		Providers: map[string]ProviderConfig{
			ProviderGemini:    {Enabled: true},
			ProviderOpenAI:    {Enabled: true},
			ProviderAnthropic: {Enabled: true},
		},
	}
}

// ConfiguredProviders returns the usable provider ids in chain order.
// Duplicate and blank ids in Order are ignored.
func (c Config) ConfiguredProviders() []string {
	order := c.Order
	if len(order) == 0 {
		order = DefaultOrder
	}

	seen := make(map[string]bool, len(order))
	out := make([]string, 0, len(order))
	for _, id := range order {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := c.Providers[id]; ok && p.Usable() {
			out = append(out, id)
		}
	}
	return out
}
