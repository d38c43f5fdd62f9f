// Package output renders CLI results as tables, JSON, or Markdown.
package output

import (
	"fmt"
	"strings"

	"github.com/govguide/govguide/internal/guide"
	"github.com/govguide/govguide/internal/store"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter renders CLI results.
type Formatter interface {
	FormatGuide(req guide.Request, result *guide.Result) (string, error)
	FormatAgencies(agencies []guide.Agency) (string, error)
	FormatFeedback(entries []store.Feedback) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

func guideSource(result *guide.Result) string {
	switch {
	case result.Mock:
		return "mock"
	case result.Cached:
		return "cache (" + result.Provider + ")"
	case result.Provider != "":
		return result.Provider
	default:
		return "unknown"
	}
}

func feedbackRating(rating float64) string {
	if rating <= 0 {
		return "-"
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", rating), "0"), ".")
}
