package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Feedback is a stored feedback row.
type Feedback struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Message   string    `json:"message"`
	Rating    float64   `json:"rating"`
	Page      string    `json:"page,omitempty"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// InsertFeedback stores a submission and returns its row id.
func (s *Store) InsertFeedback(ctx context.Context, fb Feedback) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, ErrNotInitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(fb.Message) == "" {
		return 0, errors.New("feedback message is required")
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now()
	}

	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO feedback (name, email, message, rating, page, ip, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, fb.Name, fb.Email, fb.Message, fb.Rating, fb.Page, fb.IP, fb.UserAgent, fb.CreatedAt.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("insert feedback: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert feedback id: %w", err)
	}
	return id, nil
}

// ListFeedback returns the most recent submissions, newest first.
// A non-positive limit defaults to 50.
func (s *Store) ListFeedback(ctx context.Context, limit int) ([]Feedback, error) {
	if s == nil || s.DB == nil {
		return nil, ErrNotInitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, email, message, rating, page, ip, user_agent, created_at
		FROM feedback
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var out []Feedback
	for rows.Next() {
		var (
			fb        Feedback
			createdAt int64
		)
		if err := rows.Scan(&fb.ID, &fb.Name, &fb.Email, &fb.Message, &fb.Rating, &fb.Page, &fb.IP, &fb.UserAgent, &createdAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		fb.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return out, nil
}
