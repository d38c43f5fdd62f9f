package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/govguide/govguide/internal/guide"
	"github.com/govguide/govguide/internal/output"
)

var (
	agenciesFormat string
	agenciesJSON   bool
)

var agenciesCmd = &cobra.Command{
	Use:   "agencies",
	Short: "List the agencies in the built-in catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(agenciesFormat)
		if err != nil {
			return err
		}
		if agenciesJSON {
			format = output.FormatJSON
		}

		catalog, err := guide.DefaultCatalog()
		if err != nil {
			return err
		}

		rendered, err := output.NewFormatter(format).FormatAgencies(catalog.List())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return err
	},
}

func init() {
	rootCmd.AddCommand(agenciesCmd)

	agenciesCmd.Flags().StringVar(&agenciesFormat, "output-format", string(output.FormatTable), "Output format: table|json|markdown")
	agenciesCmd.Flags().BoolVar(&agenciesJSON, "json", false, "shorthand for --output-format json")
}
