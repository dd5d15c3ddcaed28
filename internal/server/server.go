// Package server exposes the graph pipeline as a JSON HTTP API.
//
// The server is bound to a single repository, the one the process was
// started in. Endpoints mirror the pipeline stages:
//
//	GET /api/graph?skip=0&limit=200   laid-out commit window
//	GET /api/commits/{hash}           commit details with file changes
//	GET /api/refs                     ref decorations by commit
//	GET /healthz                      liveness probe
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/revlane/revlane/pkg/errors"
	"github.com/revlane/revlane/pkg/gitrepo"
	"github.com/revlane/revlane/pkg/pipeline"
	"github.com/revlane/revlane/pkg/render"
)

// Server serves the graph API for one repository.
type Server struct {
	runner   *pipeline.Runner
	repoPath string
	limit    int
	logger   *log.Logger
}

// New creates a server. The limit caps the per-request window size; zero
// uses pipeline.DefaultLimit.
func New(runner *pipeline.Runner, repoPath string, limit int, logger *log.Logger) *Server {
	if limit <= 0 {
		limit = pipeline.DefaultLimit
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:   runner,
		repoPath: repoPath,
		limit:    limit,
		logger:   logger,
	}
}

// Handler builds the chi router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/commits/{hash}", s.handleCommit)
		r.Get("/refs", s.handleRefs)
	})
	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving graph API", "addr", addr, "repo", s.repoPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// graphResponse is the /api/graph payload.
type graphResponse struct {
	Head    string          `json:"head"`
	Skip    int             `json:"skip"`
	Limit   int             `json:"limit"`
	Commits []render.Commit `json:"commits"`
	Cached  bool            `json:"cached"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", s.limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit > s.limit {
		limit = s.limit
	}

	repo, err := gitrepo.Open(s.repoPath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Build(r.Context(), repo, pipeline.Options{
		RepoPath: s.repoPath,
		Skip:     skip,
		Limit:    limit,
		Refresh:  r.URL.Query().Get("refresh") == "true",
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, graphResponse{
		Head:    result.Head,
		Skip:    skip,
		Limit:   limit,
		Commits: result.Commits,
		Cached:  result.CacheInfo.GraphHit,
	})
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	repo, err := gitrepo.Open(s.repoPath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	details, err := repo.CommitDetails(r.Context(), hash)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleRefs(w http.ResponseWriter, r *http.Request) {
	repo, err := gitrepo.Open(s.repoPath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	refs, err := repo.CollectRefs()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, refs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(code),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidHash, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeCommitNotFound, errors.ErrCodeNoRepository:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a non-negative integer, got %q", name, raw)
	}
	return n, nil
}
