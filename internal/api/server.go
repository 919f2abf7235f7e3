// Package api exposes the sequencing pipeline over HTTP for lab
// machines that submit layouts remotely.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/memslab/lasermill/pkg/buildinfo"
	"github.com/memslab/lasermill/pkg/errors"
	"github.com/memslab/lasermill/pkg/layout"
	"github.com/memslab/lasermill/pkg/pipeline"
)

// Server handles sequencing requests.
type Server struct {
	runner *pipeline.Runner
}

// NewServer creates a server around a pipeline runner.
func NewServer(runner *pipeline.Runner) *Server {
	return &Server{runner: runner}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/sequence", s.handleSequence)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{runID}", s.handleRun)
	})
	return r
}

// SequenceRequest is the POST /v1/sequence body.
type SequenceRequest struct {
	Layout  layout.File      `json:"layout"`
	Options pipeline.Options `json:"options"`
}

// SequenceResponse is the sequencing result. The program is returned
// inline; clients write it to the stage controller's watch folder.
type SequenceResponse struct {
	RunID    string             `json:"run_id"`
	Policy   string             `json:"policy"`
	NumHoles int                `json:"num_holes"`
	Program  string             `json:"program"`
	LogLines []string           `json:"log_lines"`
	Cache    pipeline.CacheInfo `json:"cache"`
}

func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	l, err := layout.FromFile(req.Layout)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), l, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SequenceResponse{
		RunID:    result.RunID,
		Policy:   string(result.Assembled.Policy),
		NumHoles: result.Assembled.Len(),
		Program:  string(result.Program),
		LogLines: result.LogLines,
		Cache:    result.CacheInfo,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runner.Archive == nil {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "no archive configured"))
		return
	}
	reports, err := s.runner.Archive.Recent(r.Context(), 20)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.runner.Archive == nil {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "no archive configured"))
		return
	}
	report, err := s.runner.Archive.Get(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// errorResponse is the error body for every failed request.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{
		Code:    string(code),
		Message: errors.UserMessage(err),
	})
}

// statusFor maps domain error codes onto HTTP statuses.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeMalformedPolygon, errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidLayout, errors.ErrCodeUnitMismatch,
		errors.ErrCodeInfeasibleSpacing, errors.ErrCodeCornerSelection,
		errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
