package store

// Schema contains the complete DDL for the vizdrift tables.
const Schema = `
-- Captured snapshots: one row per VisualTreeAnalysis, payload is JSON
CREATE TABLE IF NOT EXISTS snapshots (
    id              TEXT PRIMARY KEY,
    page_id         TEXT NOT NULL,
    url             TEXT NOT NULL,
    captured_at     INTEGER NOT NULL,
    viewport_w      REAL NOT NULL DEFAULT 0,
    viewport_h      REAL NOT NULL DEFAULT 0,
    element_count   INTEGER NOT NULL DEFAULT 0,
    payload         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_page ON snapshots(page_id, captured_at DESC);

-- Comparison runs: result JSON plus the headline similarity for querying
CREATE TABLE IF NOT EXISTS comparisons (
    id              TEXT PRIMARY KEY,
    page_id         TEXT NOT NULL,
    baseline_id     TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
    current_id      TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
    similarity      REAL NOT NULL,
    diff_count      INTEGER NOT NULL DEFAULT 0,
    result          TEXT NOT NULL,
    created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comparisons_page ON comparisons(page_id, created_at DESC);

-- Calibration profiles: the ComparisonSettings JSON applied to later runs
CREATE TABLE IF NOT EXISTS calibrations (
    id              TEXT PRIMARY KEY,
    page_id         TEXT NOT NULL,
    strictness      TEXT NOT NULL DEFAULT 'medium',
    sample_count    INTEGER NOT NULL,
    confidence      REAL NOT NULL,
    settings        TEXT NOT NULL,
    created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_calibrations_page ON calibrations(page_id, created_at DESC);
`
