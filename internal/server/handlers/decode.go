package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/govguide/govguide/internal/errors"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes = 8 << 20

// decodeObject reads a JSON object body. Oversized bodies map to
// PAYLOAD_TOO_LARGE and anything that is not a JSON object to
// VALIDATION_FAILED.
func decodeObject(w http.ResponseWriter, r *http.Request, maxBytes int64) (map[string]any, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, maxBytes)

	var raw map[string]any
	err := json.NewDecoder(body).Decode(&raw)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return nil, apperrors.WrapPayloadTooLarge(r.Context(), err,
			fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
	case errors.Is(err, io.EOF):
		return nil, apperrors.WrapValidationError(r.Context(), err, "Request body is required")
	case err != nil:
		return nil, apperrors.WrapValidationError(r.Context(), err, "Request body must be a JSON object")
	case raw == nil:
		return nil, apperrors.NewValidationError("Request body must be a JSON object")
	}
	return raw, nil
}
