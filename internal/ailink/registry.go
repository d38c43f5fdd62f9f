package ailink

import (
	"fmt"
	"strings"
	"time"

	"github.com/govguide/govguide/internal/ailink/driver"
	"github.com/govguide/govguide/internal/ailink/driver/anthropic"
	"github.com/govguide/govguide/internal/ailink/driver/gemini"
	"github.com/govguide/govguide/internal/ailink/driver/openai"
)

// NewDriver constructs the driver for a provider id.
func NewDriver(id string, cfg ProviderConfig, timeout time.Duration) (driver.Driver, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, fmt.Errorf("provider %q has no api key", id)
	}

	switch strings.ToLower(strings.TrimSpace(id)) {
	case ProviderGemini:
		c := gemini.NewClient(cfg.BaseURL, key)
		c.Timeout = timeout
		return c, nil
	case ProviderOpenAI:
		c := openai.NewClient(cfg.BaseURL, key)
		c.Timeout = timeout
		return c, nil
	case ProviderAnthropic:
		c := anthropic.NewClient(cfg.BaseURL, key)
		c.Timeout = timeout
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", id)
	}
}
