package handlers

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/govguide/govguide/internal/errors"
	"github.com/govguide/govguide/internal/feedback"
)

// FeedbackSubmitter is the part of feedback.Service the handler needs.
type FeedbackSubmitter interface {
	Submit(ctx context.Context, sub feedback.Submission) (feedback.Receipt, error)
}

// ClientIdentifier resolves the caller address recorded with feedback.
type ClientIdentifier func(r *http.Request) string

// FeedbackHandler serves POST /api/feedback.
type FeedbackHandler struct {
	svc          FeedbackSubmitter
	clientID     ClientIdentifier
	maxBodyBytes int64
}

// NewFeedbackHandler wires the handler. clientID may be nil.
func NewFeedbackHandler(svc FeedbackSubmitter, clientID ClientIdentifier, maxBodyBytes int64) *FeedbackHandler {
	return &FeedbackHandler{svc: svc, clientID: clientID, maxBodyBytes: maxBodyBytes}
}

type feedbackResponse struct {
	OK bool `json:"ok"`
}

// ServeHTTP implements http.Handler.
func (h *FeedbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeObject(w, r, h.maxBodyBytes)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	sub, err := feedback.Normalize(raw)
	if err != nil {
		respondWithError(w, r, feedbackError(r.Context(), err))
		return
	}
	if h.clientID != nil {
		sub.IP = h.clientID(r)
	}
	sub.UserAgent = r.UserAgent()

	if _, err := h.svc.Submit(r.Context(), sub); err != nil {
		respondWithError(w, r, feedbackError(r.Context(), err))
		return
	}
	writeJSON(w, http.StatusOK, feedbackResponse{OK: true})
}

func feedbackError(ctx context.Context, err error) error {
	var verr *feedback.ValidationError
	if errors.As(err, &verr) {
		return apperrors.WrapValidationError(ctx, err, verr.Message)
	}
	return apperrors.WrapInternal(ctx, err, "Unexpected error")
}
