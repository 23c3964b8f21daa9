package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/vizdrift/vizdrift/checker"
	"github.com/vizdrift/vizdrift/vistree"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	ck, err := checker.New(&checker.Config{
		StorePath: filepath.Join(t.TempDir(), "vizdrift.db"),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(ck.Close)
	return NewServer(ck, nil)
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func snapshotWith(text string) *vistree.VisualTreeAnalysis {
	return &vistree.VisualTreeAnalysis{
		ID:     "snap",
		PageID: "home",
		Elements: []vistree.VisualNode{
			{TagName: "div", ID: "hero", Rect: vistree.Rect(0, 0, 800, 400), Text: text},
		},
	}
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestCompareEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := postJSON(t, srv, "/api/compare", map[string]any{
		"baseline": snapshotWith("Welcome"),
		"current":  snapshotWith("Welcome"),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}

	var res vistree.ComparisonResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Similarity != 100 {
		t.Errorf("identical snapshots: similarity %v", res.Similarity)
	}

	// Missing sides are rejected.
	rec = postJSON(t, srv, "/api/compare", map[string]any{"baseline": snapshotWith("x")})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing current: got %d", rec.Code)
	}
}

func TestCalibrateEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := postJSON(t, srv, "/api/calibrate", map[string]any{
		"samples": []any{snapshotWith("a"), snapshotWith("a"), snapshotWith("a")},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}

	var res struct {
		Settings   vistree.ComparisonSettings `json:"settings"`
		Confidence float64                    `json:"confidence"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Settings.PositionTolerance < 2 {
		t.Errorf("tolerance below floor: %v", res.Settings.PositionTolerance)
	}

	// Too few samples is a client error.
	rec = postJSON(t, srv, "/api/calibrate", map[string]any{
		"samples": []any{snapshotWith("a")},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("one sample: got %d", rec.Code)
	}
}

func TestFlakinessEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := postJSON(t, srv, "/api/flakiness", map[string]any{
		"samples": []any{snapshotWith("12:01"), snapshotWith("12:02")},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}

	var res vistree.FlakinessAnalysis
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.FlakyElements) != 1 || res.FlakyElements[0].FlakinessType != vistree.FlakyText {
		t.Errorf("flaky elements: got %+v", res.FlakyElements)
	}
}

func TestHistoryEndpointsEmpty(t *testing.T) {
	srv := testServer(t)

	for _, path := range []string{
		"/api/pages/home/snapshots",
		"/api/pages/home/comparisons",
	} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
		var rows []json.RawMessage
		if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
			t.Errorf("%s: not a JSON array: %s", path, rec.Body)
		}
		if len(rows) != 0 {
			t.Errorf("%s: expected empty history, got %d rows", path, len(rows))
		}
	}
}

func TestGetSettingsDefaults(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pages/home/settings", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var res struct {
		PageID     string                      `json:"pageId"`
		Calibrated bool                        `json:"calibrated"`
		Settings   *vistree.ComparisonSettings `json:"settings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Calibrated {
		t.Errorf("uncalibrated page reported as calibrated")
	}
	def := vistree.DefaultSettings()
	if res.Settings == nil || res.Settings.PositionTolerance != def.PositionTolerance {
		t.Errorf("settings should fall back to defaults: %+v", res.Settings)
	}
}

func TestInvalidJSONRejected(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/compare", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("truncated body: got %d", rec.Code)
	}
}
