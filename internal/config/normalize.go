package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/govguide/govguide/internal/ailink"
	"github.com/govguide/govguide/internal/cache"
	"github.com/govguide/govguide/internal/guide"
	"github.com/govguide/govguide/internal/ratelimit"
)

// Normalize replaces unset or invalid numeric values with their defaults and
// rejects unknown backend names.
func (c *Config) Normalize() error {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if err := c.RateLimit.normalize(); err != nil {
		return err
	}

	c.Cache.Backend = lowerOr(c.Cache.Backend, BackendMemory)
	switch c.Cache.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unsupported cache backend: %s", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = cache.DefaultTTL
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = cache.DefaultMaxEntries
	}
	if c.Cache.EvictBatch <= 0 {
		c.Cache.EvictBatch = cache.DefaultEvictBatch
	}

	if (c.RateLimit.Backend == BackendRedis || c.Cache.Backend == BackendRedis) && strings.TrimSpace(c.Redis.URL) == "" {
		return fmt.Errorf("redis backend selected but redis.url is empty")
	}
	if strings.TrimSpace(c.Redis.Prefix) == "" {
		c.Redis.Prefix = AppName
	}

	c.normalizeAILink()

	defaults := guide.DefaultConfig()
	if strings.TrimSpace(c.Guide.PromptSlug) == "" {
		c.Guide.PromptSlug = defaults.PromptSlug
	}
	if c.Guide.MaxImageBytes <= 0 {
		c.Guide.MaxImageBytes = defaults.MaxImageBytes
	}
	if c.Guide.MaxImageDimension <= 0 {
		c.Guide.MaxImageDimension = defaults.MaxImageDimension
	}
	if c.Guide.MaxImagePixels <= 0 {
		c.Guide.MaxImagePixels = defaults.MaxImagePixels
	}

	c.Feedback.WebhookURL = strings.TrimSpace(c.Feedback.WebhookURL)
	if c.Feedback.SinkTimeout <= 0 {
		c.Feedback.SinkTimeout = 10 * time.Second
	}
	c.Feedback.Sheets.SpreadsheetID = strings.TrimSpace(c.Feedback.Sheets.SpreadsheetID)
	c.Feedback.Sheets.ServiceAccountEmail = strings.TrimSpace(c.Feedback.Sheets.ServiceAccountEmail)
	c.Feedback.Sheets.PrivateKey = strings.ReplaceAll(c.Feedback.Sheets.PrivateKey, `\n`, "\n")

	if strings.TrimSpace(c.Store.URL) == "" && strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = DefaultStorePath()
	}
	return nil
}

func (c *RateLimitConfig) normalize() error {
	c.Backend = lowerOr(c.Backend, BackendMemory)
	switch c.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unsupported rate limit backend: %s", c.Backend)
	}

	c.Algorithm = lowerOr(c.Algorithm, ratelimit.AlgorithmFixedWindow)
	switch c.Algorithm {
	case ratelimit.AlgorithmFixedWindow, ratelimit.AlgorithmTokenBucket:
	default:
		return fmt.Errorf("unsupported rate limit algorithm: %s", c.Algorithm)
	}

	c.UnknownClientPolicy = lowerOr(c.UnknownClientPolicy, ratelimit.PolicyShared)
	switch c.UnknownClientPolicy {
	case ratelimit.PolicyShared, ratelimit.PolicyBypass:
	default:
		return fmt.Errorf("unsupported unknown client policy: %s", c.UnknownClientPolicy)
	}

	if len(c.ClientIPHeaders) == 0 {
		c.ClientIPHeaders = append([]string(nil), ratelimit.DefaultClientIPHeaders...)
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.MaxClients <= 0 {
		c.MaxClients = ratelimit.DefaultMaxClients
	}

	if c.Endpoints == nil {
		c.Endpoints = make(map[string]EndpointLimit)
	}
	defaults := map[string]EndpointLimit{
		EndpointGenerate: {Window: time.Minute, MaxRequests: 10},
		EndpointFeedback: {Window: time.Minute, MaxRequests: 5},
	}
	for name, def := range defaults {
		limit := c.Endpoints[name]
		if limit.Window <= 0 {
			limit.Window = def.Window
		}
		if limit.MaxRequests <= 0 {
			limit.MaxRequests = def.MaxRequests
		}
		c.Endpoints[name] = limit
	}
	for name, limit := range c.Endpoints {
		c.Endpoints[name] = EndpointLimit(ratelimit.Config(limit).Sanitize())
	}
	return nil
}

func (c *Config) normalizeAILink() {
	def := ailink.DefaultConfig()
	if c.AILink.DefaultTimeout <= 0 {
		c.AILink.DefaultTimeout = def.DefaultTimeout
	}
	if c.AILink.Temperature < 0 {
		c.AILink.Temperature = def.Temperature
	}
	if len(c.AILink.Order) == 0 {
		c.AILink.Order = def.Order
	}

	providers := make(map[string]ailink.ProviderConfig, len(c.AILink.Providers))
	for id, p := range c.AILink.Providers {
		p.APIKey = strings.TrimSpace(p.APIKey)
		p.BaseURL = strings.TrimSpace(p.BaseURL)
		p.Model = strings.TrimSpace(p.Model)
		providers[strings.ToLower(strings.TrimSpace(id))] = p
	}
	c.AILink.Providers = providers
}

func lowerOr(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}
