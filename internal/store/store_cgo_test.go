//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/govguide/govguide/internal/config"
)

func openMemoryStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	s, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenMemoryStore(t *testing.T) {
	s := openMemoryStore(t)
	require.Equal(t, "libsql", s.Driver())
	require.NoError(t, s.Migrate(context.Background()), "migration is idempotent")
}

func TestFeedbackRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t)
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	_, err := s.InsertFeedback(ctx, Feedback{Name: "Juan", Message: "Very helpful guide", Rating: 5, CreatedAt: base})
	require.NoError(t, err)
	id, err := s.InsertFeedback(ctx, Feedback{Name: "Anonymous", Message: "Add more agencies", Rating: 3.5, Page: "/", CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	require.Positive(t, id)

	_, err = s.InsertFeedback(ctx, Feedback{Message: "  "})
	require.Error(t, err)

	rows, err := s.ListFeedback(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Add more agencies", rows[0].Message)
	require.Equal(t, 3.5, rows[0].Rating)
	require.True(t, base.Add(time.Minute).Equal(rows[0].CreatedAt))
	require.Equal(t, "Juan", rows[1].Name)

	rows, err = s.ListFeedback(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
