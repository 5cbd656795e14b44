package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/joescharf/prscore/internal/jobs"
	"github.com/joescharf/prscore/internal/models"
	"github.com/joescharf/prscore/internal/pipeline"
	"github.com/joescharf/prscore/internal/store"
)

const defaultListLimit = 50

// Validator rejects requests that cannot identify an analysis target.
type Validator interface {
	Validate(req models.AnalyzeRequest) (pipeline.Target, error)
}

// Server provides the REST API handlers.
type Server struct {
	store     store.Store
	runner    *jobs.Runner
	validator Validator
	ui        http.Handler
}

// NewServer creates a new API server.
func NewServer(s store.Store, runner *jobs.Runner, v Validator) *Server {
	return &Server{store: s, runner: runner, validator: v}
}

// WithUI mounts h at "/" for every path the API does not claim.
func (s *Server) WithUI(h http.Handler) *Server {
	s.ui = h
	return s
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /analyze", s.submitAnalysis)
	mux.HandleFunc("GET /analyze", s.listJobs)
	mux.HandleFunc("GET /analyze/{job_id}", s.getJob)
	mux.HandleFunc("GET /health", s.health)

	if s.ui != nil {
		mux.Handle("/", s.ui)
	}

	return logMiddleware(corsMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- Analysis ---

type submitResponse struct {
	JobID  string           `json:"job_id"`
	Status models.JobStatus `json:"status"`
}

// jobStatusResponse carries the result only once completed and the error
// only once failed.
type jobStatusResponse struct {
	Status models.JobStatus `json:"status"`
	Result *models.Report   `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

type jobSummary struct {
	ID        string           `json:"id"`
	Status    models.JobStatus `json:"status"`
	Target    string           `json:"target"`
	Score     *int             `json:"score,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func (s *Server) submitAnalysis(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if _, err := s.validator.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.runner.Submit(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{JobID: job.ID, Status: job.Status})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.GetJob(r.Context(), r.PathValue("job_id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := jobStatusResponse{Status: job.Status}
	switch job.Status {
	case models.JobStatusCompleted:
		resp.Result = job.Result
	case models.JobStatusFailed:
		resp.Error = job.Error
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	all, err := s.store.ListJobs(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]jobSummary, 0, len(all))
	for _, j := range all {
		sum := jobSummary{ID: j.ID, Status: j.Status, Target: describeTarget(j.Request), CreatedAt: j.CreatedAt}
		if j.Result != nil {
			overall := j.Result.Score.Overall
			sum.Score = &overall
		}
		out = append(out, sum)
	}
	writeJSON(w, http.StatusOK, out)
}

// describeTarget renders the request target for listings.
func describeTarget(req models.AnalyzeRequest) string {
	if req.PRURL != "" {
		return req.PRURL
	}
	t, err := pipeline.ResolveTarget(req)
	if err != nil {
		return req.Repo
	}
	return t.Server + ":" + t.Repo + "#" + strconv.Itoa(t.PRNumber)
}

// --- Health ---

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
