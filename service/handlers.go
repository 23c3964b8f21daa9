package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vizdrift/vizdrift/calibrate"
	"github.com/vizdrift/vizdrift/flakiness"
	"github.com/vizdrift/vizdrift/store"
	"github.com/vizdrift/vizdrift/vistree"
)

type captureRequest struct {
	URL    string `json:"url"`
	PageID string `json:"pageId"`
}

func decodeCaptureRequest(r *http.Request) (*captureRequest, error) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	if req.URL == "" {
		return nil, errors.New("url is required")
	}
	if req.PageID == "" {
		req.PageID = req.URL
	}
	return &req, nil
}

func (s *Server) handleCaptureSnapshot(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCaptureRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a, err := s.checker.Snapshot(r.Context(), req.PageID, req.URL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCaptureRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	report, err := s.checker.Check(r.Context(), req.PageID, req.URL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type compareRequest struct {
	Baseline *vistree.VisualTreeAnalysis `json:"baseline"`
	Current  *vistree.VisualTreeAnalysis `json:"current"`
	Settings *vistree.ComparisonSettings `json:"settings,omitempty"`
}

// handleCompare compares two caller-supplied snapshots without touching the
// browser or the store.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if req.Baseline == nil || req.Current == nil {
		writeError(w, http.StatusBadRequest, errors.New("baseline and current are required"))
		return
	}
	settings := vistree.DefaultSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}
	result := s.checker.CompareSnapshots(req.Baseline, req.Current, settings)
	writeJSON(w, http.StatusOK, result)
}

type calibrateRequest struct {
	Samples    []*vistree.VisualTreeAnalysis `json:"samples"`
	Strictness string                        `json:"strictness,omitempty"`
}

func (s *Server) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	var req calibrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	res, err := calibrate.Calibrate(req.Samples, calibrate.Options{
		Strictness:            calibrate.Strictness(req.Strictness),
		DetectDynamicElements: true,
	})
	if err != nil {
		if errors.Is(err, flakiness.ErrInsufficientSamples) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type flakinessRequest struct {
	Samples []*vistree.VisualTreeAnalysis `json:"samples"`
}

func (s *Server) handleFlakiness(w http.ResponseWriter, r *http.Request) {
	var req flakinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	res, err := flakiness.Detect(req.Samples, flakiness.Options{})
	if err != nil {
		if errors.Is(err, flakiness.ErrInsufficientSamples) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func limitParam(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return n
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	metas, err := s.checker.Store().ListSnapshots(r.Context(), pageID, limitParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if metas == nil {
		metas = []store.SnapshotMeta{}
	}
	writeJSON(w, http.StatusOK, metas)
}

func (s *Server) handleListComparisons(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	metas, err := s.checker.Store().ListComparisons(r.Context(), pageID, limitParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if metas == nil {
		metas = []store.ComparisonMeta{}
	}
	writeJSON(w, http.StatusOK, metas)
}

// handleGetSettings reports the effective comparison settings for a page:
// its latest calibration, or the defaults when it was never calibrated.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	settings, err := s.checker.Store().LatestSettings(r.Context(), pageID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	calibrated := settings != nil
	if settings == nil {
		def := vistree.DefaultSettings()
		settings = &def
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pageId":     pageID,
		"calibrated": calibrated,
		"settings":   settings,
	})
}
