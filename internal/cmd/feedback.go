package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	errwrap "github.com/govguide/govguide/internal/errors"
	"github.com/govguide/govguide/internal/output"
	"github.com/govguide/govguide/internal/store"
)

var (
	feedbackListLimit  int
	feedbackListFormat string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Inspect stored feedback",
}

var feedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent feedback from the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(feedbackListFormat)
		if err != nil {
			return err
		}

		cfg := loadConfig(cmd)
		if !cfg.Store.Enabled {
			return fmt.Errorf("feedback store is disabled (set store.enabled=true)")
		}

		db, err := store.OpenMigrated(cmd.Context(), cfg.Store)
		if err != nil {
			return errwrap.WrapDatabaseError(cmd.Context(), err, "open feedback store")
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		entries, err := db.ListFeedback(cmd.Context(), feedbackListLimit)
		if err != nil {
			return errwrap.WrapDatabaseError(cmd.Context(), err, "list feedback")
		}

		rendered, err := output.NewFormatter(format).FormatFeedback(entries)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return err
	},
}

func init() {
	feedbackListCmd.Flags().IntVar(&feedbackListLimit, "limit", 50, "maximum entries to show")
	feedbackListCmd.Flags().StringVar(&feedbackListFormat, "output-format", string(output.FormatTable), "Output format: table|json|markdown")

	feedbackCmd.AddCommand(feedbackListCmd)
	rootCmd.AddCommand(feedbackCmd)
}
