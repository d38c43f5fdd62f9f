package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/govguide/govguide/internal/ailink/driver"
	"github.com/govguide/govguide/internal/config"
	"github.com/govguide/govguide/internal/observability"
)

var (
	cfgFile   string
	envFiles  []string
	verbose   bool
	traceFile string

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}

	// configOverrides collects flag values that beat every other source.
	configOverrides = map[string]any{}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Step-by-step guides for Philippine government transactions",
	Long: `govguide generates plain-language guides for Philippine government
transactions (IDs, permits, clearances) using AI providers with fallback.

Run "govguide serve" for the HTTP API or "govguide guide" for a one-off guide.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Disable global telemetry early to prevent config loading from emitting
	// metrics to stdout. Server mode will initialize proper telemetry later.
	if sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: false}); err == nil {
		telemetry.SetGlobalSystem(sys)
	}

	cobra.OnInitialize(initCLI)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/govguide/config.yaml)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	rootCmd.PersistentFlags().StringVar(&traceFile, "trace", "", "trace provider requests/responses to NDJSON file")
}

// initCLI sets up the CLI logger and provider tracing.
func initCLI() {
	observability.InitCLILogger(config.AppName, verbose)

	if traceFile != "" {
		// The trace file stays open until the process exits.
		if _, err := driver.EnableTracing(traceFile); err != nil {
			observability.CLILogger.Warn("Failed to enable tracing", zap.Error(err))
		} else {
			observability.CLILogger.Debug("Provider tracing enabled", zap.String("file", traceFile))
		}
	}
}

// loadConfig layers defaults, the config file, dotenv files, the environment
// and flag overrides. Failures exit with CONFIG_INVALID.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg, err := config.Load(cmd.Context(), config.LoadOptions{
		ConfigFile: cfgFile,
		EnvFiles:   envFiles,
		Overrides:  configOverrides,
	})
	if err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to load configuration", err)
	}
	return cfg
}

// overrideIfChanged records a flag value as a config override when the user
// set it explicitly.
func overrideIfChanged(cmd *cobra.Command, flag, key string, value any) {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		configOverrides[key] = value
	}
}
