// Package config provides centralized configuration management for GovGuide.
//
// Layers, lowest to highest precedence:
//  1. Built-in defaults (setDefaults)
//  2. An optional YAML file (--config, the XDG config dir, or ./config)
//  3. A .env file, which never overrides variables already in the environment
//  4. GOVGUIDE_* environment variables, plus the legacy unprefixed names
//  5. Runtime overrides (CLI flags)
package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/govguide/govguide/internal/ailink"
	"github.com/govguide/govguide/internal/guide"
	"github.com/govguide/govguide/internal/ratelimit"
)

const (
	// AppName names the config and data directories.
	AppName = "govguide"
	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "GOVGUIDE"

	defaultMaxBodyBytes = 8 << 20
)

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigFile is an explicit YAML file. It must exist when set.
	ConfigFile string
	// EnvFiles are loaded with godotenv. Missing files are skipped.
	// Nil means ".env".
	EnvFiles []string
	// Overrides are applied last, keyed by dotted config path.
	Overrides map[string]any
}

// Legacy environment variables from the original deployment. Each maps to the
// config key it feeds.
var legacyEnv = map[string]string{
	"GOOGLE_API_KEY":                     "ailink.providers.gemini.api_key",
	"OPENAI_API_KEY":                     "ailink.providers.openai.api_key",
	"ANTHROPIC_API_KEY":                  "ailink.providers.anthropic.api_key",
	"FEEDBACK_WEBHOOK_URL":               "feedback.webhook_url",
	"GOOGLE_SHEETS_ID":                   "feedback.sheets.spreadsheet_id",
	"GOOGLE_SERVICE_ACCOUNT_EMAIL":       "feedback.sheets.service_account_email",
	"GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY": "feedback.sheets.private_key",
	"REDIS_URL":                          "redis.url",
}

// Legacy numeric variables are parsed leniently: anything that is not a
// finite positive number is ignored and the default stands.
var (
	legacyMillisEnv = map[string]string{
		"RATE_LIMIT_WINDOW_MS": "rate_limit.endpoints." + EndpointGenerate + ".window",
		"CACHE_TTL_MS":         "cache.ttl",
	}
	legacyCountEnv = map[string]string{
		"RATE_LIMIT_MAX_REQUESTS": "rate_limit.endpoints." + EndpointGenerate + ".max_requests",
	}
)

// Load reads configuration using the layered pattern above.
//
// This function is safe to call multiple times (e.g., for config reload)
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := readConfigFile(v, opts.ConfigFile); err != nil {
		return nil, err
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", defaultMaxBodyBytes)

	v.SetDefault("rate_limit.backend", BackendMemory)
	v.SetDefault("rate_limit.algorithm", ratelimit.AlgorithmFixedWindow)
	v.SetDefault("rate_limit.unknown_client_policy", ratelimit.PolicyShared)
	v.SetDefault("rate_limit.client_ip_headers", ratelimit.DefaultClientIPHeaders)
	v.SetDefault("rate_limit.trust_remote_addr", false)
	v.SetDefault("rate_limit.sweep_interval", "1m")
	v.SetDefault("rate_limit.max_clients", ratelimit.DefaultMaxClients)
	v.SetDefault("rate_limit.endpoints."+EndpointGenerate+".window", "60s")
	v.SetDefault("rate_limit.endpoints."+EndpointGenerate+".max_requests", 10)
	v.SetDefault("rate_limit.endpoints."+EndpointFeedback+".window", "60s")
	v.SetDefault("rate_limit.endpoints."+EndpointFeedback+".max_requests", 5)

	v.SetDefault("cache.backend", BackendMemory)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.max_entries", 1000)
	v.SetDefault("cache.evict_batch", 200)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.prefix", AppName)

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	ai := ailink.DefaultConfig()
	v.SetDefault("ailink.order", ai.Order)
	v.SetDefault("ailink.default_timeout", ai.DefaultTimeout.String())
	v.SetDefault("ailink.temperature", ai.Temperature)
	v.SetDefault("ailink.max_tokens", ai.MaxTokens)
	for _, id := range ailink.DefaultOrder {
		v.SetDefault("ailink.providers."+id+".enabled", true)
		v.SetDefault("ailink.providers."+id+".api_key", "")
		v.SetDefault("ailink.providers."+id+".base_url", "")
		v.SetDefault("ailink.providers."+id+".model", "")
	}

	g := guide.DefaultConfig()
	v.SetDefault("guide.mock_fallback", g.MockFallback)
	v.SetDefault("guide.prompt_slug", g.PromptSlug)
	v.SetDefault("guide.prompts_dir", "")
	v.SetDefault("guide.max_image_bytes", g.MaxImageBytes)
	v.SetDefault("guide.max_image_dimension", g.MaxImageDimension)
	v.SetDefault("guide.max_image_pixels", g.MaxImagePixels)

	v.SetDefault("feedback.webhook_url", "")
	v.SetDefault("feedback.sink_timeout", "10s")
	v.SetDefault("feedback.sheets.spreadsheet_id", "")
	v.SetDefault("feedback.sheets.service_account_email", "")
	v.SetDefault("feedback.sheets.private_key", "")
	v.SetDefault("feedback.sheets.range", "A1")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("health.enabled", true)
	v.SetDefault("debug.enabled", false)
	v.SetDefault("debug.pprof_enabled", false)
}

// envName returns the prefixed variable AutomaticEnv would consult for key.
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

func bindLegacyEnv(v *viper.Viper) error {
	for legacy, key := range legacyEnv {
		if err := v.BindEnv(key, envName(key), legacy); err != nil {
			return fmt.Errorf("bind %s: %w", legacy, err)
		}
	}

	for legacy, key := range legacyMillisEnv {
		if _, ok := os.LookupEnv(envName(key)); ok {
			continue
		}
		if ms, ok := positiveNumber(os.Getenv(legacy)); ok {
			v.Set(key, time.Duration(ms*float64(time.Millisecond)))
		}
	}
	for legacy, key := range legacyCountEnv {
		if _, ok := os.LookupEnv(envName(key)); ok {
			continue
		}
		if n, ok := positiveNumber(os.Getenv(legacy)); ok {
			v.Set(key, int(math.Ceil(n)))
		}
	}
	return nil
}

func positiveNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0, false
	}
	return n, true
}

func loadEnvFiles(files []string) error {
	if files == nil {
		files = []string{".env"}
	}
	for _, file := range files {
		if strings.TrimSpace(file) == "" {
			continue
		}
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load env file %s: %w", file, err)
		}
	}
	return nil
}

func readConfigFile(v *viper.Viper, explicit string) error {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", explicit, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir := gfconfig.GetAppConfigDir(AppName); strings.TrimSpace(dir) != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := gfconfig.GetAppConfigDir(AppName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultDataDir returns the XDG-compliant data directory for the app.
func DefaultDataDir() string {
	return gfconfig.GetAppDataDir(AppName)
}

// DefaultStorePath returns the XDG-compliant path to the database file.
func DefaultStorePath() string {
	dataDir := DefaultDataDir()
	if strings.TrimSpace(dataDir) == "" {
		return "./" + AppName + ".db"
	}
	return filepath.Join(dataDir, AppName+".db")
}
