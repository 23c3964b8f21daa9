package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vizdrift/vizdrift/vistree"
)

// InsertComparison persists one comparison run and returns its ID.
func (s *Store) InsertComparison(ctx context.Context, pageID, baselineID, currentID string, res *vistree.ComparisonResult) (string, error) {
	payload, err := vistree.MarshalResult(res)
	if err != nil {
		return "", fmt.Errorf("store: marshal result: %w", err)
	}

	id := uuid.Must(uuid.NewV7()).String()
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO comparisons
			(id, page_id, baseline_id, current_id, similarity, diff_count, result, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		id, pageID, baselineID, currentID,
		res.Similarity, len(res.Differences), string(payload), time.Now().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("store: insert comparison: %w", err)
	}
	return id, nil
}

// ComparisonMeta is the listing row for a stored comparison.
type ComparisonMeta struct {
	ID         string  `json:"id"`
	PageID     string  `json:"pageId"`
	BaselineID string  `json:"baselineId"`
	CurrentID  string  `json:"currentId"`
	Similarity float64 `json:"similarity"`
	DiffCount  int     `json:"diffCount"`
	CreatedAt  int64   `json:"createdAt"`
}

// ListComparisons returns comparison metadata for a page, newest first.
func (s *Store) ListComparisons(ctx context.Context, pageID string, limit int) ([]ComparisonMeta, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, page_id, baseline_id, current_id, similarity, diff_count, created_at
		FROM comparisons WHERE page_id = ?
		ORDER BY created_at DESC LIMIT ?`, pageID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list comparisons %s: %w", pageID, err)
	}
	defer rows.Close()

	var out []ComparisonMeta
	for rows.Next() {
		var m ComparisonMeta
		if err := rows.Scan(&m.ID, &m.PageID, &m.BaselineID, &m.CurrentID,
			&m.Similarity, &m.DiffCount, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// InsertCalibration persists a calibration profile for a page.
func (s *Store) InsertCalibration(ctx context.Context, pageID, strictness string, sampleCount int, confidence float64, settings *vistree.ComparisonSettings) (string, error) {
	payload, err := vistree.MarshalSettings(settings)
	if err != nil {
		return "", fmt.Errorf("store: marshal settings: %w", err)
	}

	id := uuid.Must(uuid.NewV7()).String()
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO calibrations
			(id, page_id, strictness, sample_count, confidence, settings, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		id, pageID, strictness, sampleCount, confidence, string(payload), time.Now().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("store: insert calibration: %w", err)
	}
	return id, nil
}

// LatestSettings returns the most recent calibrated settings for a page, or
// nil when the page has never been calibrated.
func (s *Store) LatestSettings(ctx context.Context, pageID string) (*vistree.ComparisonSettings, error) {
	var payload string
	err := s.DB.QueryRowContext(ctx, `
		SELECT settings FROM calibrations
		WHERE page_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`, pageID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: latest settings %s: %w", pageID, err)
	}
	return vistree.UnmarshalSettings([]byte(payload))
}
