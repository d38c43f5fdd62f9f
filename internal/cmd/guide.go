package cmd

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/govguide/govguide/internal/guide"
	"github.com/govguide/govguide/internal/output"
)

var (
	guideAgency   string
	guideAction   string
	guideLocation string
	guideLanguage string
	guideImage    string
	guideFormat   string
	guideOut      string
)

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Generate a guide in the terminal",
	Long: `Generate a single guide through the same provider chain and cache the API uses.

Examples:
  govguide guide --agency LTO --action "Renew driver's license"
  govguide guide --agency PSA --action "Birth certificate" --location "Cebu City" --language filipino
  govguide guide --agency DFA --action "Passport renewal" --image ./old-passport.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(guideFormat)
		if err != nil {
			return err
		}

		raw := map[string]any{
			"agency":   guideAgency,
			"action":   guideAction,
			"location": guideLocation,
			"language": guideLanguage,
		}
		if strings.TrimSpace(guideImage) != "" {
			dataURL, err := imageDataURL(guideImage)
			if err != nil {
				return err
			}
			raw["image"] = dataURL
		}

		req, err := guide.Normalize(raw)
		if err != nil {
			return err
		}

		cfg := loadConfig(cmd)
		a, err := newApp(cmd.Context(), cfg, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.guide.Generate(cmd.Context(), req)
		if err != nil {
			return err
		}

		rendered, err := output.NewFormatter(format).FormatGuide(req, result)
		if err != nil {
			return err
		}

		return writeOutput(cmd.OutOrStdout(), guideOut, rendered)
	},
}

// imageDataURL reads a local photo and encodes it the way the web client does.
func imageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func init() {
	rootCmd.AddCommand(guideCmd)

	guideCmd.Flags().StringVar(&guideAgency, "agency", "", "government agency (e.g. LTO, PSA, DFA)")
	guideCmd.Flags().StringVar(&guideAction, "action", "", "transaction or question")
	guideCmd.Flags().StringVar(&guideLocation, "location", "", "city or area for the nearest-office link")
	guideCmd.Flags().StringVar(&guideLanguage, "language", guide.LanguageTaglish, "taglish, english, or filipino")
	guideCmd.Flags().StringVar(&guideImage, "image", "", "photo of a document to include (jpeg, png, webp)")
	guideCmd.Flags().StringVar(&guideFormat, "output-format", string(output.FormatTable), "Output format: table|json|markdown")
	guideCmd.Flags().StringVar(&guideOut, "out", "", "Write output to a file (default stdout)")

	_ = guideCmd.MarkFlagRequired("agency")
	_ = guideCmd.MarkFlagRequired("action")
}

// writeOutput prints rendered to stdout, or writes it to path through a
// temporary file so a failed run never leaves a half-written guide behind.
func writeOutput(stdout io.Writer, path, rendered string) error {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(stdout, rendered)
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".govguide-*")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := fmt.Fprintln(tmp, rendered); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
