package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vizdrift/vizdrift/vistree"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "vizdrift.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSnapshot(id, pageID string, ts int64) *vistree.VisualTreeAnalysis {
	return &vistree.VisualTreeAnalysis{
		ID:        id,
		URL:       "https://example.com",
		PageID:    pageID,
		Timestamp: ts,
		Viewport:  vistree.Viewport{Width: 1280, Height: 800},
		Elements: []vistree.VisualNode{
			{TagName: "div", ID: "hero", Rect: vistree.Rect(0, 0, 800, 400)},
		},
		VisualNodeGroups: []*vistree.VisualNodeGroup{{
			Type:   vistree.GroupSection,
			Label:  "hero",
			Bounds: vistree.Rect(0, 0, 800, 400),
		}},
	}
}

func TestSnapshotRoundtrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a := testSnapshot("snap-1", "home", 1000)
	if err := s.InsertSnapshot(ctx, a); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetSnapshot(ctx, "snap-1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("snapshot not found")
	}
	if got.PageID != "home" || len(got.Elements) != 1 {
		t.Errorf("roundtrip: got %+v", got)
	}
	if !got.HasGroups() {
		t.Errorf("group forest lost in roundtrip")
	}

	missing, err := s.GetSnapshot(ctx, "nope")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("missing snapshot should be nil, got %+v", missing)
	}
}

func TestLatestSnapshot(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.InsertSnapshot(ctx, testSnapshot("old", "home", 1000)); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertSnapshot(ctx, testSnapshot("new", "home", 2000)); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertSnapshot(ctx, testSnapshot("other", "about", 3000)); err != nil {
		t.Fatal(err)
	}

	got, err := s.LatestSnapshot(ctx, "home")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != "new" {
		t.Errorf("latest: got %+v, want id new", got)
	}

	none, err := s.LatestSnapshot(ctx, "unknown")
	if err != nil {
		t.Fatal(err)
	}
	if none != nil {
		t.Errorf("unknown page should have no baseline")
	}
}

func TestListSnapshots(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		if err := s.InsertSnapshot(ctx, testSnapshot(id, "home", int64(1000+i))); err != nil {
			t.Fatal(err)
		}
	}

	metas, err := s.ListSnapshots(ctx, "home", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 3 {
		t.Fatalf("got %d rows, want 3", len(metas))
	}
	// Newest first.
	if metas[0].ID != "c" || metas[2].ID != "a" {
		t.Errorf("order: %v, %v, %v", metas[0].ID, metas[1].ID, metas[2].ID)
	}
	if metas[0].ElementCount != 1 {
		t.Errorf("element count: got %d, want 1", metas[0].ElementCount)
	}

	limited, err := s.ListSnapshots(ctx, "home", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("limit: got %d rows, want 2", len(limited))
	}
}

func TestComparisonRoundtrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.InsertSnapshot(ctx, testSnapshot("base", "home", 1000)); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertSnapshot(ctx, testSnapshot("cur", "home", 2000)); err != nil {
		t.Fatal(err)
	}

	res := &vistree.ComparisonResult{
		Similarity: 87.5,
		Differences: []vistree.Difference{
			{Type: vistree.DiffMoved, Path: "section:hero"},
		},
		Summary: vistree.Summary{TotalElements: 8, TotalChanged: 1},
	}
	id, err := s.InsertComparison(ctx, "home", "base", "cur", res)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("empty comparison id")
	}

	metas, err := s.ListComparisons(ctx, "home", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 1 {
		t.Fatalf("got %d rows, want 1", len(metas))
	}
	m := metas[0]
	if m.Similarity != 87.5 || m.DiffCount != 1 || m.BaselineID != "base" || m.CurrentID != "cur" {
		t.Errorf("meta: %+v", m)
	}
}

func TestCalibrationSettingsRoundtrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	none, err := s.LatestSettings(ctx, "home")
	if err != nil {
		t.Fatal(err)
	}
	if none != nil {
		t.Errorf("uncalibrated page should have nil settings")
	}

	set := &vistree.ComparisonSettings{
		PositionTolerance:       4,
		SizeTolerance:           7,
		TextSimilarityThreshold: 0.85,
		ImportanceThreshold:     15,
		IgnoreElements:          []string{"#clock"},
	}
	if _, err := s.InsertCalibration(ctx, "home", "medium", 3, 92.5, set); err != nil {
		t.Fatal(err)
	}

	got, err := s.LatestSettings(ctx, "home")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("settings not found")
	}
	if got.PositionTolerance != 4 || got.SizeTolerance != 7 {
		t.Errorf("settings: %+v", got)
	}
	if len(got.IgnoreElements) != 1 || got.IgnoreElements[0] != "#clock" {
		t.Errorf("ignore selectors: %v", got.IgnoreElements)
	}

	// A later calibration supersedes the first.
	later := &vistree.ComparisonSettings{PositionTolerance: 9, SizeTolerance: 12, TextSimilarityThreshold: 0.9, ImportanceThreshold: 15}
	if _, err := s.InsertCalibration(ctx, "home", "low", 5, 97, later); err != nil {
		t.Fatal(err)
	}
	got, err = s.LatestSettings(ctx, "home")
	if err != nil {
		t.Fatal(err)
	}
	if got.PositionTolerance != 9 {
		t.Errorf("latest settings: %+v", got)
	}
}
