package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/govguide/govguide/internal/ailink/prompt"
	"github.com/govguide/govguide/internal/config"
	"github.com/govguide/govguide/internal/guide"
	"github.com/govguide/govguide/internal/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long:  "Verify that configuration, the agency catalog, and the guide prompt load without starting the server.",
	Run: func(cmd *cobra.Command, args []string) {
		log := observability.CLILogger
		log.Info("Running health check...")

		cfg, err := config.Load(cmd.Context(), config.LoadOptions{ConfigFile: cfgFile, EnvFiles: envFiles})
		if err != nil {
			ExitWithCode(log, foundry.ExitConfigInvalid, "Configuration invalid", err)
			return
		}
		log.Info("✅ Configuration loaded")

		catalog, err := guide.DefaultCatalog()
		if err != nil {
			ExitWithCode(log, foundry.ExitConfigInvalid, "Agency catalog invalid", err)
			return
		}
		log.Info("✅ Agency catalog loaded", zap.Int("agencies", catalog.Len()))

		prompts, err := prompt.DefaultRegistry(cfg.Guide.PromptsDir)
		if err == nil {
			_, err = prompts.Get(cfg.Guide.PromptSlug)
		}
		if err != nil {
			ExitWithCode(log, foundry.ExitConfigInvalid, "Guide prompt unavailable", err)
			return
		}
		log.Info("✅ Guide prompt available",
			zap.String("slug", cfg.Guide.PromptSlug),
			zap.Bool("overridden", prompts.Overridden(cfg.Guide.PromptSlug)))

		if providers := cfg.AILink.ConfiguredProviders(); len(providers) == 0 {
			log.Warn("⚠️  No provider API keys configured; guides will use mock mode")
		} else {
			log.Info("✅ Providers configured", zap.Strings("providers", providers))
		}

		log.Info("")
		log.Info("✅ All health checks passed")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
