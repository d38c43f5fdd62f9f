package cmd

import (
	"context"
	"os"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/govguide/govguide/internal/config"
	errwrap "github.com/govguide/govguide/internal/errors"
	"github.com/govguide/govguide/internal/metrics"
	"github.com/govguide/govguide/internal/observability"
	"github.com/govguide/govguide/internal/server"
	"github.com/govguide/govguide/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API with graceful shutdown support.

Routes:
  POST /api/generate   generate a guide (rate limited)
  POST /api/feedback   submit feedback (rate limited)
  GET  /api/agencies   list known agencies

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Reload configuration (rate limit budgets)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		overrideIfChanged(cmd, "host", "server.host", serverHost)
		overrideIfChanged(cmd, "port", "server.port", serverPort)
		cfg := loadConfig(cmd)

		level := cfg.Logging.Level
		if cfg.Debug.Enabled {
			level = "debug"
		}
		observability.InitServerLogger(config.AppName, level, cfg.Logging.Profile, config.AppName)
		logger := observability.ServerLogger

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(config.AppName, cfg.Metrics.Port, config.AppName); err != nil {
				logger.Error("Failed to initialize metrics", zap.Error(err))
				return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
			}
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		a, err := newApp(ctx, cfg, appOptions{withFeedback: true})
		if err != nil {
			return errwrap.WrapInternal(ctx, err, "service initialization failed")
		}
		defer a.Close()
		a.startJanitors(ctx)

		providers := a.chain.Providers()
		logger.Info("Initializing server",
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Int("metrics_port", cfg.Metrics.Port),
			zap.Strings("providers", providers),
			zap.Strings("feedback_sinks", a.feedback.Sinks()),
			zap.String("rate_limit_backend", cfg.RateLimit.Backend),
			zap.String("cache_backend", cfg.Cache.Backend))
		if len(providers) == 0 {
			logger.Warn("No AI provider keys configured; guides will be served in mock mode")
		}

		hm := handlers.NewHealthManager(versionInfo.Version)
		a.registerHealthCheckers(hm)

		srv, err := server.New(cfg.Server, server.Deps{
			Guide:       a.guide,
			Feedback:    a.feedback,
			Catalog:     a.catalog,
			Limiter:     a.limiter,
			Health:      hm,
			RateLimit:   cfg.RateLimit,
			MetricsPort: cfg.Metrics.Port,
			AdminToken:  os.Getenv(config.EnvPrefix + "_ADMIN_TOKEN"),

			DisableHealth: !cfg.Health.Enabled,
			Pprof:         cfg.Debug.Enabled && cfg.Debug.PprofEnabled,
		})
		if err != nil {
			return errwrap.WrapInternal(ctx, err, "server initialization failed")
		}

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = 10 * time.Second
		}

		// Shutdown handlers run LIFO: the server stops first, the logger flushes last.
		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Flushing logger...")
			if err := logger.Sync(); err != nil {
				logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
			}
			return nil
		})
		signals.OnShutdown(func(ctx context.Context) error {
			if err := observability.StopMetrics(); err != nil {
				logger.Warn("Metrics exporter stop failed", zap.Error(err))
			}
			return nil
		})
		signals.OnShutdown(func(ctx context.Context) error {
			shutdownCtx, cancelShutdown := context.WithTimeout(ctx, shutdownTimeout)
			defer cancelShutdown()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}
			cancel()
			logger.Info("HTTP server stopped gracefully")
			return nil
		})

		signals.OnReload(func(ctx context.Context) error {
			logger.Info("Received SIGHUP: reloading configuration")

			next, err := config.Load(ctx, config.LoadOptions{
				ConfigFile: cfgFile,
				EnvFiles:   envFiles,
				Overrides:  configOverrides,
			})
			if err != nil {
				logger.Error("Config reload failed; keeping current configuration", zap.Error(err))
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}

			srv.UpdateRateLimits(next.RateLimit)
			logger.Info("Rate limits reloaded",
				zap.Any("endpoints", next.RateLimit.Endpoints))
			if next.RateLimit.Backend != cfg.RateLimit.Backend || next.Cache.Backend != cfg.Cache.Backend {
				logger.Warn("Backend changes require a restart")
			}
			return nil
		})

		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
		}

		errChan := make(chan error, 2)
		metrics.SetServerStartTime(time.Now())
		go func() {
			errChan <- srv.Start()
		}()
		go func() {
			if err := signals.Listen(ctx); err != nil {
				logger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")
}
