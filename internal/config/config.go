package config

import (
	"time"

	"github.com/govguide/govguide/internal/ailink"
	"github.com/govguide/govguide/internal/guide"
	"github.com/govguide/govguide/internal/ratelimit"
)

// Endpoint names used for rate limiting.
const (
	EndpointGenerate = "generate-api"
	EndpointFeedback = "feedback-api"
)

// Backend names shared by the rate limiter and the cache.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config represents the complete application configuration.
//
// Values are layered: built-in defaults, an optional YAML file, a .env file,
// GOVGUIDE_* environment variables (plus the legacy unprefixed names), then
// runtime overrides from CLI flags.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Store     StoreConfig     `mapstructure:"store"`
	AILink    ailink.Config   `mapstructure:"ailink"`
	Guide     guide.Config    `mapstructure:"guide"`
	Feedback  FeedbackConfig  `mapstructure:"feedback"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Health    HealthConfig    `mapstructure:"health"`
	Debug     DebugConfig     `mapstructure:"debug"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxBodyBytes caps request bodies. Image uploads arrive inline as base64.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// RateLimitConfig selects the limiter backend and per-endpoint budgets.
type RateLimitConfig struct {
	// Backend is memory or redis.
	Backend string `mapstructure:"backend"`
	// Algorithm is fixed_window or token_bucket. The redis backend is always
	// a fixed window.
	Algorithm string `mapstructure:"algorithm"`
	// UnknownClientPolicy is shared or bypass.
	UnknownClientPolicy string   `mapstructure:"unknown_client_policy"`
	ClientIPHeaders     []string `mapstructure:"client_ip_headers"`
	// TrustRemoteAddr identifies header-less callers by connection address.
	// Enable only when the service is reachable without a proxy.
	TrustRemoteAddr bool          `mapstructure:"trust_remote_addr"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	MaxClients      int           `mapstructure:"max_clients"`

	Endpoints map[string]EndpointLimit `mapstructure:"endpoints"`
}

// EndpointLimit is the budget for one endpoint.
type EndpointLimit struct {
	Window      time.Duration `mapstructure:"window"`
	MaxRequests int           `mapstructure:"max_requests"`
}

// For returns the limiter config for endpoint. Unknown endpoints get the
// limiter defaults.
func (c RateLimitConfig) For(endpoint string) ratelimit.Config {
	limit := c.Endpoints[endpoint]
	return ratelimit.Config{Window: limit.Window, MaxRequests: limit.MaxRequests}.Sanitize()
}

// CacheConfig contains guide cache configuration.
type CacheConfig struct {
	// Backend is memory or redis.
	Backend    string        `mapstructure:"backend"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
	EvictBatch int           `mapstructure:"evict_batch"`
}

// RedisConfig is shared by the redis limiter and cache backends.
type RedisConfig struct {
	URL    string `mapstructure:"url"`
	Prefix string `mapstructure:"prefix"`
}

// StoreConfig contains database configuration for libsql/Turso
type StoreConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// FeedbackConfig configures feedback delivery.
type FeedbackConfig struct {
	WebhookURL  string        `mapstructure:"webhook_url"`
	SinkTimeout time.Duration `mapstructure:"sink_timeout"`
	Sheets      SheetsConfig  `mapstructure:"sheets"`
}

// SheetsConfig configures the Google Sheets feedback sink.
type SheetsConfig struct {
	SpreadsheetID       string `mapstructure:"spreadsheet_id"`
	ServiceAccountEmail string `mapstructure:"service_account_email"`
	PrivateKey          string `mapstructure:"private_key"`
	Range               string `mapstructure:"range"`
}

// LoggingConfig contains logging configuration
// Supports progressive logging profiles per Fulmen Forge Workhorse Standard:
// - SIMPLE: Console output only, minimal configuration (CLI tools)
// - STRUCTURED: Structured sinks, correlation IDs (API services)
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	// Enabled controls whether metrics are exposed
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	Port int `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	// Enabled controls whether health endpoints are exposed
	Enabled bool `mapstructure:"enabled"`
}

// DebugConfig contains debug and profiling configuration
type DebugConfig struct {
	// Enabled controls whether debug mode is active
	Enabled bool `mapstructure:"enabled"`

	// PprofEnabled controls whether pprof endpoints are exposed
	// WARNING: Only enable in development/staging environments
	PprofEnabled bool `mapstructure:"pprof_enabled"`
}
