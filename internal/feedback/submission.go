// Package feedback accepts user feedback and delivers it to the configured
// sinks (webhook, Google Sheets, libsql). Delivery failures never reach the
// caller.
package feedback

import (
	"math"
	"strings"
	"time"
)

// Field limits, in runes.
const (
	MaxNameLength    = 100
	MaxEmailLength   = 200
	MaxMessageLength = 1000
	MinMessageLength = 5
	MaxPageLength    = 200
	MaxRating        = 5

	// AnonymousName replaces an empty name.
	AnonymousName = "Anonymous"
)

// ValidationError reports an unacceptable submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Submission is a normalized feedback entry. The JSON shape is what the
// webhook sink posts.
type Submission struct {
	Type      string    `json:"type"`
	IP        string    `json:"ip"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Rating    float64   `json:"rating"`
	Page      string    `json:"page"`
	UserAgent string    `json:"userAgent"`
	Timestamp time.Time `json:"timestamp"`
}

// Normalize builds a Submission from a decoded JSON body. Non-string fields
// become empty strings and a non-numeric rating becomes 0.
func Normalize(raw map[string]any) (Submission, error) {
	sub := Submission{
		Type:    "feedback",
		Name:    truncate(stringField(raw, "name"), MaxNameLength),
		Email:   truncate(stringField(raw, "email"), MaxEmailLength),
		Message: truncate(stringField(raw, "message"), MaxMessageLength),
		Page:    truncate(stringField(raw, "page"), MaxPageLength),
		Rating:  clampRating(raw["rating"]),
	}
	if sub.Name == "" {
		sub.Name = AnonymousName
	}
	if err := sub.Validate(); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// Validate checks the message length.
func (s Submission) Validate() error {
	if len([]rune(strings.TrimSpace(s.Message))) < MinMessageLength {
		return &ValidationError{Field: "message", Message: "Message is too short"}
	}
	return nil
}

func stringField(raw map[string]any, key string) string {
	v, _ := raw[key].(string)
	return strings.TrimSpace(v)
}

func clampRating(v any) float64 {
	r, ok := v.(float64)
	if !ok || math.IsNaN(r) {
		return 0
	}
	return min(max(r, 0), MaxRating)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
