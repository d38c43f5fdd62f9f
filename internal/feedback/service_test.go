package feedback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	name string
	err  error

	mu   sync.Mutex
	subs []Submission
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Send(_ context.Context, sub Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, sub)
	return r.err
}

func TestSubmitFansOut(t *testing.T) {
	now := time.Date(2025, 6, 12, 9, 30, 0, 0, time.FixedZone("PHT", 8*3600))
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b"}
	svc := NewService([]Sink{a, nil, b}, WithClock(func() time.Time { return now }))
	require.Equal(t, []string{"a", "b"}, svc.Sinks())

	receipt, err := svc.Submit(context.Background(), Submission{Message: "Salamat po!", IP: "203.0.113.5"})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, receipt.Delivered)
	require.Empty(t, receipt.Failed)

	require.Len(t, a.subs, 1)
	got := a.subs[0]
	require.Equal(t, AnonymousName, got.Name)
	require.Equal(t, "feedback", got.Type)
	require.True(t, now.Equal(got.Timestamp))
	require.Equal(t, time.UTC, got.Timestamp.Location())
	require.Len(t, b.subs, 1)
}

func TestSubmitSinkFailureDoesNotFail(t *testing.T) {
	ok := &recordingSink{name: "ok"}
	broken := &recordingSink{name: "broken", err: errors.New("webhook down")}
	svc := NewService([]Sink{broken, ok})

	receipt, err := svc.Submit(context.Background(), Submission{Message: "Great service"})
	require.NoError(t, err)
	require.Equal(t, []string{"ok"}, receipt.Delivered)
	require.Equal(t, []string{"broken"}, receipt.Failed)
}

func TestSubmitSurvivesCancelledRequest(t *testing.T) {
	sink := &recordingSink{name: "ok"}
	svc := NewService([]Sink{sink})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	receipt, err := svc.Submit(ctx, Submission{Message: "Great service"})
	require.NoError(t, err)
	require.Equal(t, []string{"ok"}, receipt.Delivered)
}

func TestSubmitValidates(t *testing.T) {
	sink := &recordingSink{name: "a"}
	svc := NewService([]Sink{sink})

	_, err := svc.Submit(context.Background(), Submission{Message: "hi"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Empty(t, sink.subs)
}

func TestLogSink(t *testing.T) {
	require.Equal(t, "log", LogSink{}.Name())
	require.NoError(t, LogSink{}.Send(context.Background(), Submission{Message: "hello"}))
}
