package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/govguide/govguide/internal/ailink"
	"github.com/govguide/govguide/internal/config"
	"github.com/govguide/govguide/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display environment, configuration, and version information. Secrets are reported as set or not set.",
	Run: func(cmd *cobra.Command, args []string) {
		log := observability.CLILogger
		version := crucible.GetVersion()

		log.Info("=== GovGuide Environment Information ===")
		log.Info("")

		log.Info("Application:")
		log.Info("  Name:       " + config.AppName)
		log.Info("  Version:    " + versionInfo.Version)
		log.Info("  Commit:     " + versionInfo.Commit)
		log.Info("  Built:      " + versionInfo.BuildDate)
		log.Info("")

		log.Info("SSOT:")
		log.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		log.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		log.Info("")

		log.Info("Runtime:")
		log.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		log.Info("  GOOS/ARCH:  "+runtime.GOOS+"/"+runtime.GOARCH, zap.String("goos", runtime.GOOS), zap.String("goarch", runtime.GOARCH))
		log.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()), zap.Int("num_cpu", runtime.NumCPU()))
		log.Info("")

		cfg, err := config.Load(cmd.Context(), config.LoadOptions{ConfigFile: cfgFile, EnvFiles: envFiles})
		if err != nil {
			log.Warn("Config load failed", zap.Error(err))
			return
		}

		log.Info("Configuration:")
		log.Info(fmt.Sprintf("  Server:         %s:%d", cfg.Server.Host, cfg.Server.Port))
		log.Info(fmt.Sprintf("  Max Body:       %d bytes", cfg.Server.MaxBodyBytes))
		log.Info("  Log Level:      "+cfg.Logging.Level, zap.String("log_level", cfg.Logging.Level))
		log.Info(fmt.Sprintf("  Metrics Port:   %d", cfg.Metrics.Port), zap.Int("metrics_port", cfg.Metrics.Port))
		log.Info("  Config File:    " + config.DefaultConfigPath())
		log.Info("")

		log.Info("Rate Limiting:")
		log.Info("  Backend:        " + cfg.RateLimit.Backend)
		log.Info("  Algorithm:      " + cfg.RateLimit.Algorithm)
		log.Info("  Unknown Client: " + cfg.RateLimit.UnknownClientPolicy)
		log.Info("  IP Headers:     " + strings.Join(cfg.RateLimit.ClientIPHeaders, ", "))
		for _, endpoint := range []string{config.EndpointGenerate, config.EndpointFeedback} {
			limit := cfg.RateLimit.For(endpoint)
			log.Info(fmt.Sprintf("  %-15s %d per %s", endpoint+":", limit.MaxRequests, limit.Window))
		}
		log.Info("")

		log.Info("Cache:")
		log.Info("  Backend:        " + cfg.Cache.Backend)
		log.Info("  TTL:            " + cfg.Cache.TTL.String())
		log.Info(fmt.Sprintf("  Max Entries:    %d", cfg.Cache.MaxEntries))
		log.Info("  Redis URL:      " + setOrNot(cfg.Redis.URL))
		log.Info("")

		log.Info("Providers:")
		log.Info("  Order:          " + strings.Join(cfg.AILink.Order, " → "))
		log.Info("  Timeout:        " + cfg.AILink.DefaultTimeout.String())
		for _, id := range ailink.DefaultOrder {
			p := cfg.AILink.Providers[id]
			log.Info(fmt.Sprintf("  %-15s enabled=%t api_key=%s model=%s", id+":", p.Enabled, setOrNot(p.APIKey), orDefault(p.Model)))
		}
		log.Info(fmt.Sprintf("  Mock Fallback:  %t", cfg.Guide.MockFallback))
		log.Info("")

		log.Info("Feedback:")
		log.Info("  Webhook:        " + setOrNot(cfg.Feedback.WebhookURL))
		log.Info("  Sheets ID:      " + setOrNot(cfg.Feedback.Sheets.SpreadsheetID))
		log.Info(fmt.Sprintf("  Store:          %t (%s)", cfg.Store.Enabled, cfg.Store.Driver))
		log.Info("")

		log.Info("=== End Environment Information ===")
	},
}

func setOrNot(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(not set)"
	}
	return "(set)"
}

func orDefault(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(default)"
	}
	return value
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
