package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/govguide/govguide/internal/errors"
	"github.com/govguide/govguide/internal/feedback"
)

type fakeSubmitter struct {
	last  feedback.Submission
	calls int
}

func (f *fakeSubmitter) Submit(_ context.Context, sub feedback.Submission) (feedback.Receipt, error) {
	f.calls++
	if err := sub.Validate(); err != nil {
		return feedback.Receipt{}, err
	}
	f.last = sub
	return feedback.Receipt{Failed: []string{"webhook"}}, nil
}

func TestFeedbackHandlerAcceptsSubmission(t *testing.T) {
	svc := &fakeSubmitter{}
	h := NewFeedbackHandler(svc, func(*http.Request) string { return "203.0.113.5" }, 0)

	rec := postJSON(t, h, "/api/feedback", `{"message":"Very helpful guide","rating":4,"page":"/lto"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, true, body["ok"])

	require.Equal(t, "203.0.113.5", svc.last.IP)
	require.Equal(t, "Very helpful guide", svc.last.Message)
	require.Equal(t, float64(4), svc.last.Rating)
	require.Equal(t, "govguide-test/1.0", svc.last.UserAgent)
}

func TestFeedbackHandlerRejectsShortMessage(t *testing.T) {
	svc := &fakeSubmitter{}
	rec := postJSON(t, NewFeedbackHandler(svc, nil, 0), "/api/feedback", `{"message":"hi"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeError(t, rec)
	require.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	require.Equal(t, "Message is too short", body.Error.Message)
	require.Zero(t, svc.calls)
}

func TestFeedbackErrorMapping(t *testing.T) {
	err := feedbackError(context.Background(), &feedback.ValidationError{Field: "message", Message: "Message is required"})
	require.Equal(t, apperrors.CodeValidationFailed, apperrors.EnsureEnvelope(err).Code)

	err = feedbackError(context.Background(), errors.New("disk full"))
	require.Equal(t, apperrors.CodeInternal, apperrors.EnsureEnvelope(err).Code)
}
