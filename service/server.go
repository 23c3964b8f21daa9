// Package service exposes the checker over HTTP. Comparison and calibration
// of caller-supplied snapshots are pure endpoints; capture-backed endpoints
// drive the browser through the checker.
package service

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vizdrift/vizdrift/checker"
)

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	checker *checker.Checker
	log     *slog.Logger
}

// NewServer creates and configures the HTTP server.
func NewServer(ck *checker.Checker, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{checker: ck, log: log}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		// Pure endpoints over caller-supplied snapshots.
		r.Post("/compare", s.handleCompare)
		r.Post("/calibrate", s.handleCalibrate)
		r.Post("/flakiness", s.handleFlakiness)

		// Capture-backed endpoints.
		r.Post("/snapshots", s.handleCaptureSnapshot)
		r.Post("/check", s.handleCheck)

		// History.
		r.Get("/pages/{pageID}/snapshots", s.handleListSnapshots)
		r.Get("/pages/{pageID}/comparisons", s.handleListComparisons)
		r.Get("/pages/{pageID}/settings", s.handleGetSettings)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// requestLogger logs one line per request with status and duration.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
