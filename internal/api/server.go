package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/distill/internal/pipeline"
	"github.com/MikeSquared-Agency/distill/internal/store"
)

// RunReader reads the run catalog; satisfied by *store.Store. A nil reader
// means the server runs without a database.
type RunReader interface {
	LatestRun(ctx context.Context) (*store.RunRecord, error)
}

type Server struct {
	router    *chi.Mux
	port      int
	statePath string
	runs      RunReader
}

func NewServer(port int, statePath string, runs RunReader) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      port,
		statePath: statePath,
		runs:      runs,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/distill/status", s.status)
	router.Get("/api/v1/distill/stats", s.stats)
	router.Get("/api/v1/distill/runs/latest", s.latestRun)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := map[string]any{
		"service":  "distill",
		"has_runs": false,
	}
	if _, err := os.Stat(pipeline.ExpandHome(s.statePath)); err == nil {
		resp["has_runs"] = true
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// stats returns the counters from the most recent pipeline run's state file.
func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	state, err := pipeline.LoadState(s.statePath)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to load run state"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(state)
}

func (s *Server) latestRun(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.runs == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "run catalog not configured"})
		return
	}

	run, err := s.runs.LatestRun(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to query run catalog"})
		return
	}
	if run == nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no runs recorded"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(run)
}
