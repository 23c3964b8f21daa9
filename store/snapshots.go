package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vizdrift/vizdrift/vistree"
)

// InsertSnapshot persists one captured snapshot.
func (s *Store) InsertSnapshot(ctx context.Context, a *vistree.VisualTreeAnalysis) error {
	payload, err := vistree.MarshalAnalysis(a)
	if err != nil {
		return fmt.Errorf("store: marshal snapshot: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO snapshots
			(id, page_id, url, captured_at, viewport_w, viewport_h, element_count, payload)
		VALUES (?,?,?,?,?,?,?,?)`,
		a.ID, a.PageID, a.URL, a.Timestamp,
		a.Viewport.Width, a.Viewport.Height, len(a.Elements), string(payload),
	)
	if err != nil {
		return fmt.Errorf("store: insert snapshot %s: %w", a.ID, err)
	}
	return nil
}

// GetSnapshot retrieves a snapshot by ID, or nil when absent.
func (s *Store) GetSnapshot(ctx context.Context, id string) (*vistree.VisualTreeAnalysis, error) {
	var payload string
	err := s.DB.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get snapshot %s: %w", id, err)
	}
	return vistree.UnmarshalAnalysis([]byte(payload))
}

// LatestSnapshot returns the most recent snapshot for a page, or nil.
func (s *Store) LatestSnapshot(ctx context.Context, pageID string) (*vistree.VisualTreeAnalysis, error) {
	var payload string
	err := s.DB.QueryRowContext(ctx, `
		SELECT payload FROM snapshots
		WHERE page_id = ?
		ORDER BY captured_at DESC LIMIT 1`, pageID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: latest snapshot %s: %w", pageID, err)
	}
	return vistree.UnmarshalAnalysis([]byte(payload))
}

// SnapshotMeta is the listing row for a stored snapshot.
type SnapshotMeta struct {
	ID           string  `json:"id"`
	PageID       string  `json:"pageId"`
	URL          string  `json:"url"`
	CapturedAt   int64   `json:"capturedAt"`
	ViewportW    float64 `json:"viewportW"`
	ViewportH    float64 `json:"viewportH"`
	ElementCount int     `json:"elementCount"`
}

// ListSnapshots returns snapshot metadata for a page, newest first.
func (s *Store) ListSnapshots(ctx context.Context, pageID string, limit int) ([]SnapshotMeta, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, page_id, url, captured_at, viewport_w, viewport_h, element_count
		FROM snapshots WHERE page_id = ?
		ORDER BY captured_at DESC LIMIT ?`, pageID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list snapshots %s: %w", pageID, err)
	}
	defer rows.Close()

	var out []SnapshotMeta
	for rows.Next() {
		var m SnapshotMeta
		if err := rows.Scan(&m.ID, &m.PageID, &m.URL, &m.CapturedAt,
			&m.ViewportW, &m.ViewportH, &m.ElementCount); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
