package guide

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Input limits.
const (
	MaxAgencyLen   = 100
	MaxActionLen   = 500
	MaxLocationLen = 100
)

// Supported answer languages.
const (
	LanguageTaglish  = "taglish"
	LanguageEnglish  = "english"
	LanguageFilipino = "filipino"
)

// Request is a normalized guide request.
type Request struct {
	Agency   string
	Action   string
	Location string
	Language string
	// Image is an optional base64 data URL.
	Image string
}

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Normalize builds a Request from a decoded JSON body.
//
// Non-string values are treated as empty. Text fields are trimmed and
// truncated to their limits. Agency and action are required.
func Normalize(raw map[string]any) (Request, error) {
	req := Request{
		Agency:   truncate(stringField(raw, "agency"), MaxAgencyLen),
		Action:   truncate(stringField(raw, "action"), MaxActionLen),
		Location: truncate(stringField(raw, "location"), MaxLocationLen),
		Language: NormalizeLanguage(stringField(raw, "language")),
		Image:    stringField(raw, "image"),
	}
	return req, req.Validate()
}

// Validate checks required fields.
func (r Request) Validate() error {
	if r.Agency == "" {
		return &ValidationError{Field: "agency", Message: "Agency is required"}
	}
	if r.Action == "" {
		return &ValidationError{Field: "action", Message: "Action/Question is required"}
	}
	return nil
}

// NormalizeLanguage maps free-form input to a supported language, defaulting
// to taglish.
func NormalizeLanguage(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case LanguageEnglish, "en":
		return LanguageEnglish
	case LanguageFilipino, "tagalog", "fil", "tl":
		return LanguageFilipino
	default:
		return LanguageTaglish
	}
}

func stringField(raw map[string]any, key string) string {
	if raw == nil {
		return ""
	}
	s, ok := raw[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// truncate cuts s to at most n runes and trims any trailing space the cut exposes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}
