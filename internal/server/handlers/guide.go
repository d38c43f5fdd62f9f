package handlers

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/govguide/govguide/internal/errors"
	"github.com/govguide/govguide/internal/guide"
)

// GuideGenerator is the part of guide.Service the handler needs.
type GuideGenerator interface {
	Generate(ctx context.Context, req guide.Request) (*guide.Result, error)
}

// GuideHandler serves POST /api/generate.
type GuideHandler struct {
	svc          GuideGenerator
	maxBodyBytes int64
}

// NewGuideHandler wires the handler to a generator.
func NewGuideHandler(svc GuideGenerator, maxBodyBytes int64) *GuideHandler {
	return &GuideHandler{svc: svc, maxBodyBytes: maxBodyBytes}
}

// ServeHTTP implements http.Handler.
func (h *GuideHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeObject(w, r, h.maxBodyBytes)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	req, err := guide.Normalize(raw)
	if err != nil {
		respondWithError(w, r, guideError(r.Context(), err))
		return
	}

	result, err := h.svc.Generate(r.Context(), req)
	if err != nil {
		respondWithError(w, r, guideError(r.Context(), err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func guideError(ctx context.Context, err error) error {
	var verr *guide.ValidationError
	switch {
	case errors.As(err, &verr):
		return apperrors.WrapValidationError(ctx, err, verr.Message)
	case errors.Is(err, guide.ErrImageTooLarge):
		return apperrors.WrapPayloadTooLarge(ctx, err, "Image exceeds the upload limit")
	case errors.Is(err, guide.ErrProvidersUnavailable):
		return apperrors.WrapExternalService(ctx, err, "Guide providers are unavailable. Please try again later.")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.WrapTimeout(ctx, err, "Guide generation timed out")
	case errors.Is(err, context.Canceled):
		return apperrors.WrapClientClosed(ctx, err, "Client closed the request")
	default:
		return apperrors.WrapInternal(ctx, err, "Failed to generate guide")
	}
}
