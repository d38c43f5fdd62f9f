package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/govguide/govguide/internal/ailink"
	"github.com/govguide/govguide/internal/ailink/content"
	"github.com/govguide/govguide/internal/ailink/driver"
)

var doctorTimeout time.Duration

// doctorCheck is the result of probing one provider.
type doctorCheck struct {
	Provider string
	Status   string
	Latency  time.Duration
	Detail   string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Probe each configured AI provider",
	Long: `Send a one-line prompt to every provider in the fallback order and report
which ones answer. Providers without an API key are listed as skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		checks := probeProviders(cmd.Context(), cfg.AILink, doctorTimeout)

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.Style().Format.Footer = text.FormatDefault
		t.AppendHeader(table.Row{"Provider", "Status", "Latency", "Detail"})
		healthy := 0
		for _, c := range checks {
			latency := "-"
			if c.Latency > 0 {
				latency = c.Latency.Round(time.Millisecond).String()
			}
			if c.Status == "ok" {
				healthy++
			}
			t.AppendRow(table.Row{c.Provider, c.Status, latency, c.Detail})
		}
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d/%d ok", healthy, len(checks)), "", ""})
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())

		if healthy == 0 && cfg.Guide.MockFallback {
			fmt.Fprintln(cmd.OutOrStdout(), "No provider answered; the API will serve mock guides.")
		}
		return nil
	},
}

// probeProviders checks every known provider in chain order.
func probeProviders(ctx context.Context, cfg ailink.Config, timeout time.Duration) []doctorCheck {
	order := cfg.Order
	if len(order) == 0 {
		order = ailink.DefaultOrder
	}

	checks := make([]doctorCheck, 0, len(order))
	for _, id := range order {
		id = strings.ToLower(strings.TrimSpace(id))
		pc, ok := cfg.Providers[id]
		switch {
		case !ok || !pc.Enabled:
			checks = append(checks, doctorCheck{Provider: id, Status: "skipped", Detail: "disabled"})
			continue
		case strings.TrimSpace(pc.APIKey) == "":
			checks = append(checks, doctorCheck{Provider: id, Status: "skipped", Detail: "no api key"})
			continue
		}

		drv, err := ailink.NewDriver(id, pc, timeout)
		if err != nil {
			checks = append(checks, doctorCheck{Provider: id, Status: "error", Detail: err.Error()})
			continue
		}
		checks = append(checks, probeDriver(ctx, id, pc.Model, drv, timeout))
	}
	return checks
}

func probeDriver(ctx context.Context, id, model string, drv driver.Driver, timeout time.Duration) doctorCheck {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	maxTokens := 16
	start := time.Now()
	resp, err := drv.Complete(probeCtx, &driver.Request{
		Model:     strings.TrimSpace(model),
		Messages:  []content.Message{content.UserMessage(content.Text("Reply with the single word OK."))},
		MaxTokens: &maxTokens,
	})
	latency := time.Since(start)
	if err != nil {
		failure := ailink.MapProviderError(err)
		return doctorCheck{Provider: id, Status: "failed", Latency: latency, Detail: failure.Error()}
	}

	detail := driver.Truncate(strings.TrimSpace(resp.Text()), 40)
	if resp.Model != "" {
		detail = resp.Model + ": " + detail
	}
	return doctorCheck{Provider: id, Status: "ok", Latency: latency, Detail: detail}
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().DurationVar(&doctorTimeout, "timeout", 20*time.Second, "per-provider timeout")
}
