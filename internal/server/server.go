// Package server exposes the comparison engine over HTTP and keeps a record
// of every comparison it runs.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/geomichelon/vtsdk/internal/engine"
	"github.com/geomichelon/vtsdk/internal/store"
	"github.com/geomichelon/vtsdk/internal/vision"
)

// Server represents the HTTP server
type Server struct {
	engine       engine.Engine
	runs         *RunManager
	addr         string
	server       *http.Server
	pingInterval time.Duration
}

// NewServer creates a new HTTP server. runStore may be nil, in which case
// runs live only as long as the process.
func NewServer(addr string, e engine.Engine, runStore *store.FSStore) *Server {
	return &Server{
		engine:       e,
		runs:         NewRunManager(runStore),
		addr:         addr,
		pingInterval: 30 * time.Second,
	}
}

// Router builds the HTTP handler with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.loggingMiddleware, s.corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/compare", s.handleCompare)
		r.Post("/search", s.handleSearch)
		r.Post("/locate", s.handleLocate)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/diff.png", s.handleGetDiffImage)
		r.Get("/events", s.handleEvents)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting HTTP server", "addr", s.addr, "backend", s.engine.Backend())
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	return errors.Join(err, s.runs.Close())
}

// handleCompare handles POST /api/v1/compare
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req vision.CompareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BaselineImage == "" || req.InputImage == "" {
		http.Error(w, "baselineImage and inputImage are required", http.StatusBadRequest)
		return
	}

	res := s.engine.Compare(req)
	run := s.runs.Record(string(s.engine.Backend()), req, res)

	slog.Info("Comparison finished",
		"run_id", run.ID,
		"similarity", res.ObtainedSimilarity,
		"status", res.Status)

	writeJSON(w, http.StatusCreated, run)
}

// handleSearch handles POST /api/v1/search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req vision.SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ParentImage == "" || req.ChildImage == "" {
		http.Error(w, "parentImage and childImage are required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Search(req))
}

// handleLocate handles POST /api/v1/locate
func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	var req vision.LocateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ContainerImage == "" || req.MainImage == "" || req.RelativeImage == "" {
		http.Error(w, "containerImage, mainImage and relativeImage are required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Locate(req))
}

// handleListRuns handles GET /api/v1/runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	infos, err := s.runs.ListRuns()
	if err != nil {
		slog.Error("Failed to list runs", "error", err)
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleGetRun handles GET /api/v1/runs/{id}
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.runs.GetRun(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleGetDiffImage handles GET /api/v1/runs/{id}/diff.png
func (s *Server) handleGetDiffImage(w http.ResponseWriter, r *http.Request) {
	run, ok := s.runs.GetRun(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	path := run.ArtifactPath
	if path == "" {
		path = run.Result.ResultImageRef
	}
	if path == "" {
		http.Error(w, "Run has no diff artifact", http.StatusNotFound)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		// The artifact write is best effort and temp storage may be cleaned.
		slog.Debug("Diff artifact unavailable", "run_id", run.ID, "path", path, "error", err)
		http.Error(w, "Diff artifact not available", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "Diff artifact not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, "diff.png", info.ModTime(), f)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
