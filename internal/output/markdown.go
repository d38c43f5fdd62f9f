package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/govguide/govguide/internal/guide"
	"github.com/govguide/govguide/internal/store"
)

// MarkdownFormatter renders results as Markdown.
type MarkdownFormatter struct{}

// FormatGuide returns the guide text under a heading. Guides are already
// Markdown.
func (f *MarkdownFormatter) FormatGuide(req guide.Request, result *guide.Result) (string, error) {
	if result == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s: %s\n\n", req.Agency, req.Action))
	sb.WriteString(strings.TrimSpace(result.Text))
	sb.WriteString(fmt.Sprintf("\n\n_Source: %s_\n", guideSource(result)))
	return sb.String(), nil
}

// FormatAgencies renders the catalog as a Markdown table.
func (f *MarkdownFormatter) FormatAgencies(agencies []guide.Agency) (string, error) {
	var sb strings.Builder
	sb.WriteString("| ID | Name | Homepage |\n")
	sb.WriteString("|----|------|----------|\n")
	for _, a := range agencies {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			escapeMarkdownCell(a.ID),
			escapeMarkdownCell(a.Name),
			escapeMarkdownCell(dash(a.Homepage)),
		))
	}
	return sb.String(), nil
}

// FormatFeedback renders stored feedback as a Markdown table.
func (f *MarkdownFormatter) FormatFeedback(entries []store.Feedback) (string, error) {
	var sb strings.Builder
	sb.WriteString("| When | Name | Rating | Message |\n")
	sb.WriteString("|------|------|--------|---------|\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			e.CreatedAt.UTC().Format(time.RFC3339),
			escapeMarkdownCell(e.Name),
			feedbackRating(e.Rating),
			escapeMarkdownCell(strings.ReplaceAll(e.Message, "\n", " ")),
		))
	}
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
