package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/govguide/govguide/internal/guide"
	"github.com/govguide/govguide/internal/store"
)

// feedbackMessageWidth wraps long messages in the feedback table.
const feedbackMessageWidth = 60

// TableFormatter renders results as ASCII tables.
type TableFormatter struct{}

// FormatGuide prints a header box followed by the guide text.
func (f *TableFormatter) FormatGuide(req guide.Request, result *guide.Result) (string, error) {
	if result == nil {
		return "", nil
	}

	header := []string{
		fmt.Sprintf("Agency:   %s", req.Agency),
		fmt.Sprintf("Action:   %s", req.Action),
	}
	if req.Location != "" {
		header = append(header, fmt.Sprintf("Location: %s", req.Location))
	}
	header = append(header,
		fmt.Sprintf("Language: %s", req.Language),
		fmt.Sprintf("Source:   %s", guideSource(result)),
	)

	return ascii.DrawBox(strings.Join(header, "\n"), 0) + "\n" + strings.TrimSpace(result.Text) + "\n", nil
}

// FormatAgencies renders the catalog.
func (f *TableFormatter) FormatAgencies(agencies []guide.Agency) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"ID", "Name", "Homepage", "Appointments"})

	for _, a := range agencies {
		t.AppendRow(table.Row{a.ID, a.Name, dash(a.Homepage), dash(a.Appointment)})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d agencies", len(agencies)), "", ""})

	return t.Render(), nil
}

// FormatFeedback renders stored feedback, newest first.
func (f *TableFormatter) FormatFeedback(entries []store.Feedback) (string, error) {
	if len(entries) == 0 {
		return ascii.DrawBox("Feedback\n\n(no stored feedback)", 0), nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "When", "Name", "Rating", "Page", "Message"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, WidthMax: feedbackMessageWidth, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, e := range entries {
		t.AppendRow(table.Row{
			e.ID,
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.Name,
			feedbackRating(e.Rating),
			dash(e.Page),
			e.Message,
		})
	}

	return t.Render(), nil
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
