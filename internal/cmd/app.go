package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/govguide/govguide/internal/ailink"
	"github.com/govguide/govguide/internal/ailink/prompt"
	"github.com/govguide/govguide/internal/cache"
	"github.com/govguide/govguide/internal/config"
	"github.com/govguide/govguide/internal/feedback"
	"github.com/govguide/govguide/internal/guide"
	"github.com/govguide/govguide/internal/observability"
	"github.com/govguide/govguide/internal/ratelimit"
	"github.com/govguide/govguide/internal/server/handlers"
	"github.com/govguide/govguide/internal/store"
)

// app holds the services built from one configuration.
type app struct {
	cfg *config.Config

	catalog  *guide.Catalog
	chain    *ailink.Chain
	guide    *guide.Service
	feedback *feedback.Service
	limiter  ratelimit.Checker

	guideCache *cache.Memory[guide.CachedGuide]
	redis      *redis.Client
	store      *store.Store
}

// appOptions selects the optional parts of the app.
type appOptions struct {
	// withFeedback builds the feedback sinks and opens the store when enabled.
	withFeedback bool
}

func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	a := &app{cfg: cfg}

	if cfg.RateLimit.Backend == config.BackendRedis || cfg.Cache.Backend == config.BackendRedis {
		rdb, err := openRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.redis = rdb
	}

	var err error
	if a.catalog, err = guide.DefaultCatalog(); err != nil {
		a.Close()
		return nil, fmt.Errorf("load agency catalog: %w", err)
	}
	if a.chain, err = ailink.NewChain(cfg.AILink); err != nil {
		a.Close()
		return nil, fmt.Errorf("build provider chain: %w", err)
	}
	prompts, err := prompt.DefaultRegistry(cfg.Guide.PromptsDir)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	if a.guide, err = guide.NewService(cfg.Guide, a.guideStore(), a.chain, a.catalog, prompts); err != nil {
		a.Close()
		return nil, err
	}
	a.limiter = a.buildLimiter()

	if opts.withFeedback {
		if err := a.buildFeedback(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	if logger := observability.CLILogger; logger != nil {
		logger.Debug("Services initialized",
			zap.Strings("providers", a.chain.Providers()),
			zap.String("rate_limit_backend", cfg.RateLimit.Backend),
			zap.String("cache_backend", cfg.Cache.Backend))
	}
	return a, nil
}

func openRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return rdb, nil
}

func (a *app) guideStore() cache.Store[guide.CachedGuide] {
	if a.cfg.Cache.Backend == config.BackendRedis {
		return cache.NewRedis[guide.CachedGuide](a.redis, a.cfg.Redis.Prefix+":guide", a.cfg.Cache.TTL)
	}
	a.guideCache = cache.NewMemory[guide.CachedGuide](a.cfg.Cache.TTL,
		cache.WithMaxEntries(a.cfg.Cache.MaxEntries),
		cache.WithEvictBatch(a.cfg.Cache.EvictBatch))
	return cache.AsStore(a.guideCache)
}

func (a *app) buildLimiter() ratelimit.Checker {
	rl := a.cfg.RateLimit
	switch {
	case rl.Backend == config.BackendRedis:
		return ratelimit.NewRedis(a.redis, ratelimit.WithRedisPrefix(a.cfg.Redis.Prefix+":ratelimit"))
	case rl.Algorithm == ratelimit.AlgorithmTokenBucket:
		return ratelimit.NewTokenBucket()
	default:
		m := ratelimit.NewMemory()
		m.MaxClients = rl.MaxClients
		return m
	}
}

func (a *app) buildFeedback(ctx context.Context) error {
	fc := a.cfg.Feedback
	var sinks []feedback.Sink

	if webhook := feedback.NewWebhookSink(fc.WebhookURL, &http.Client{Timeout: fc.SinkTimeout}); webhook != nil {
		sinks = append(sinks, webhook)
	}

	sheetsCfg := feedback.SheetsConfig{
		SpreadsheetID:       fc.Sheets.SpreadsheetID,
		ServiceAccountEmail: fc.Sheets.ServiceAccountEmail,
		PrivateKey:          fc.Sheets.PrivateKey,
		Range:               fc.Sheets.Range,
	}
	if sheetsCfg.Enabled() {
		sheets, err := feedback.NewSheetsSink(ctx, sheetsCfg)
		if err != nil {
			return fmt.Errorf("configure sheets feedback sink: %w", err)
		}
		sinks = append(sinks, sheets)
	}

	if a.cfg.Store.Enabled {
		db, err := store.OpenMigrated(ctx, a.cfg.Store)
		if err != nil {
			return err
		}
		a.store = db
		sinks = append(sinks, feedback.NewStoreSink(db))
	}

	if len(sinks) == 0 {
		sinks = append(sinks, feedback.LogSink{})
	}
	a.feedback = feedback.NewService(sinks, feedback.WithSinkTimeout(fc.SinkTimeout))
	return nil
}

// startJanitors sweeps expired limiter records and cache entries until ctx
// is cancelled. Redis expires its own keys.
func (a *app) startJanitors(ctx context.Context) {
	every := a.cfg.RateLimit.SweepInterval
	switch l := a.limiter.(type) {
	case *ratelimit.Memory:
		l.StartJanitor(ctx, every)
	case *ratelimit.TokenBucket:
		l.StartJanitor(ctx, every)
	}

	if a.guideCache == nil || every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := a.guideCache.Purge(); n > 0 && observability.ServerLogger != nil {
					observability.ServerLogger.Debug("Purged expired guides", zap.Int("removed", n))
				}
			}
		}
	}()
}

// registerHealthCheckers adds a check per external dependency.
func (a *app) registerHealthCheckers(hm *handlers.HealthManager) {
	hm.RegisterChecker("telemetry", handlers.CheckerFunc(func(context.Context) error {
		if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
			return errors.New("telemetry system not initialized")
		}
		return nil
	}))
	if a.redis != nil {
		rdb := a.redis
		hm.RegisterChecker("redis", handlers.CheckerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
	}
	if a.store != nil {
		db := a.store.DB
		hm.RegisterChecker("store", handlers.CheckerFunc(func(ctx context.Context) error {
			return db.PingContext(ctx)
		}))
	}
}

// Close releases Redis and the store.
func (a *app) Close() {
	if a == nil {
		return
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logCloseError("store", err)
		}
		a.store = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logCloseError("redis", err)
		}
		a.redis = nil
	}
}

func logCloseError(component string, err error) {
	logger := observability.ServerLogger
	if logger == nil {
		logger = observability.CLILogger
	}
	if logger != nil {
		logger.Warn("Failed to close "+component, zap.Error(err))
	}
}
