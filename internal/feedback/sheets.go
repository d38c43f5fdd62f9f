package feedback

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	defaultSheetRange = "A1"
)

// SheetsConfig locates the spreadsheet and the service account that writes
// to it.
type SheetsConfig struct {
	SpreadsheetID       string
	ServiceAccountEmail string
	PrivateKey          string
	Range               string
}

// Enabled reports whether every required field is set.
func (c SheetsConfig) Enabled() bool {
	return strings.TrimSpace(c.SpreadsheetID) != "" &&
		strings.TrimSpace(c.ServiceAccountEmail) != "" &&
		strings.TrimSpace(c.PrivateKey) != ""
}

// SheetsSink appends one row per submission to a Google Sheet.
type SheetsSink struct {
	svc           *sheets.Service
	spreadsheetID string
	rng           string
}

// NewSheetsSink authenticates with a service-account JWT. Extra client
// options are appended after the authenticated HTTP client.
func NewSheetsSink(ctx context.Context, cfg SheetsConfig, opts ...option.ClientOption) (*SheetsSink, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("sheets sink requires spreadsheet id, service account email and private key")
	}

	jwtCfg := &jwt.Config{
		Email:      strings.TrimSpace(cfg.ServiceAccountEmail),
		PrivateKey: []byte(UnescapePrivateKey(cfg.PrivateKey)),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   googleTokenURL,
	}

	clientOpts := append([]option.ClientOption{option.WithHTTPClient(jwtCfg.Client(ctx))}, opts...)
	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewSheetsSinkWithService(svc, cfg.SpreadsheetID, cfg.Range), nil
}

// NewSheetsSinkWithService wraps an existing Sheets client.
func NewSheetsSinkWithService(svc *sheets.Service, spreadsheetID, rng string) *SheetsSink {
	if strings.TrimSpace(rng) == "" {
		rng = defaultSheetRange
	}
	return &SheetsSink{svc: svc, spreadsheetID: strings.TrimSpace(spreadsheetID), rng: rng}
}

// Name implements Sink.
func (s *SheetsSink) Name() string { return "sheets" }

// Send implements Sink.
func (s *SheetsSink) Send(ctx context.Context, sub Submission) error {
	values := &sheets.ValueRange{Values: [][]any{SheetRow(sub)}}

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.rng, values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append feedback row: %w", err)
	}
	return nil
}

// SheetRow is the column layout written to the sheet.
func SheetRow(sub Submission) []any {
	return []any{
		sub.Timestamp.UTC().Format(time.RFC3339),
		sub.Name,
		sub.Email,
		sub.Message,
		strconv.FormatFloat(sub.Rating, 'f', -1, 64),
		sub.Page,
		sub.IP,
		sub.UserAgent,
	}
}

// UnescapePrivateKey turns literal "\n" sequences into newlines, the form
// PEM keys take when stored in a single-line environment variable.
func UnescapePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}
