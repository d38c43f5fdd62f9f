package ailink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/govguide/govguide/internal/ailink/driver"
)

// Failure codes reported by MapProviderError.
const (
	CodeProviderTimeout     = "AILINK_PROVIDER_TIMEOUT"
	CodeProviderAuth        = "AILINK_PROVIDER_AUTH"
	CodeProviderRateLimit   = "AILINK_PROVIDER_RATE_LIMIT"
	CodeProviderUnavailable = "AILINK_PROVIDER_UNAVAILABLE"
	CodeProviderBadRequest  = "AILINK_PROVIDER_BAD_REQUEST"
	CodeProviderError       = "AILINK_PROVIDER_ERROR"
)

// ProviderFailure is a classified provider error safe to log or return.
type ProviderFailure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (f *ProviderFailure) Error() string {
	if f.Details == "" {
		return fmt.Sprintf("%s: %s", f.Code, f.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", f.Code, f.Message, f.Details)
}

// MapProviderError classifies err by transport failure or HTTP status.
func MapProviderError(err error) *ProviderFailure {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderFailure{Code: CodeProviderTimeout, Message: "provider request timed out"}
	}

	var perr *driver.ProviderError
	if errors.As(err, &perr) && perr != nil {
		status := perr.StatusCode
		details := driver.Truncate(strings.TrimSpace(perr.Message), 300)
		switch {
		case status == 401 || status == 403:
			return &ProviderFailure{Code: CodeProviderAuth, Message: "provider authentication failed", Details: details}
		case status == 429:
			return &ProviderFailure{Code: CodeProviderRateLimit, Message: "provider rate limited", Details: details}
		case status >= 500 && status <= 599:
			return &ProviderFailure{Code: CodeProviderUnavailable, Message: "provider unavailable", Details: details}
		case status >= 400 && status <= 499:
			return &ProviderFailure{Code: CodeProviderBadRequest, Message: "provider rejected request", Details: details}
		default:
			return &ProviderFailure{Code: CodeProviderError, Message: "provider request failed", Details: details}
		}
	}

	return &ProviderFailure{Code: CodeProviderError, Message: "provider request failed", Details: err.Error()}
}
