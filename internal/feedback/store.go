package feedback

import (
	"context"

	"github.com/govguide/govguide/internal/store"
)

// FeedbackWriter persists feedback rows.
type FeedbackWriter interface {
	InsertFeedback(ctx context.Context, fb store.Feedback) (int64, error)
}

// StoreSink writes submissions to the libsql store.
type StoreSink struct {
	w FeedbackWriter
}

// NewStoreSink wraps w.
func NewStoreSink(w FeedbackWriter) *StoreSink {
	return &StoreSink{w: w}
}

// Name implements Sink.
func (s *StoreSink) Name() string { return "store" }

// Send implements Sink.
func (s *StoreSink) Send(ctx context.Context, sub Submission) error {
	_, err := s.w.InsertFeedback(ctx, store.Feedback{
		Name:      sub.Name,
		Email:     sub.Email,
		Message:   sub.Message,
		Rating:    sub.Rating,
		Page:      sub.Page,
		IP:        sub.IP,
		UserAgent: sub.UserAgent,
		CreatedAt: sub.Timestamp,
	})
	return err
}
