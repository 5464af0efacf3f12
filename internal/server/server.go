// Package server exposes the normalizer over HTTP and a websocket stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/p-n-ai/pai-qbank/internal/ingest"
	"github.com/p-n-ai/pai-qbank/internal/review"
)

const (
	defaultMaxBodyBytes = 10 << 20
	healthTimeout       = 2 * time.Second
)

// HealthCheck probes one dependency for readiness.
type HealthCheck func(ctx context.Context) error

// Options configures a Server.
type Options struct {
	// Reviews receives every normalized batch. Nil disables the review
	// endpoints.
	Reviews      review.Store
	HealthChecks map[string]HealthCheck
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// Server serves the question normalization API.
type Server struct {
	normalizer *ingest.Normalizer
	opts       Options
	log        *slog.Logger
}

// New creates a Server around n.
func New(n *ingest.Normalizer, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{normalizer: n, opts: opts, log: opts.Logger}
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("POST /v1/questions/normalize", s.handleNormalize)
	mux.HandleFunc("GET /v1/questions/stream", s.handleStream)
	if s.opts.Reviews != nil {
		mux.HandleFunc("GET /v1/review/pending", s.handlePending)
		mux.HandleFunc("GET /v1/review/{id}", s.handleReview)
	}
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.opts.HealthChecks {
		if err := check(ctx); err != nil {
			s.log.Warn("readiness check failed", "check", name, "error", err)
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "checks": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "reading request body: "+err.Error())
		return
	}

	batch, err := s.normalizer.Normalize(r.Context(), body)
	if err != nil {
		var be *ingest.BatchError
		if errors.As(err, &be) {
			writeError(w, http.StatusBadRequest, be.Error())
			return
		}
		s.log.Error("normalize failed", "error", err)
		writeError(w, http.StatusInternalServerError, "normalization failed")
		return
	}

	if err := s.saveForReview(r.Context(), batch); err != nil {
		writeError(w, http.StatusInternalServerError, "saving batch for review failed")
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) saveForReview(ctx context.Context, batch *ingest.Batch) error {
	if s.opts.Reviews == nil {
		return nil
	}
	n, err := s.opts.Reviews.SaveBatch(ctx, batch)
	if err != nil {
		s.log.Error("failed to save batch for review", "run_id", batch.RunID, "error", err)
		return err
	}
	s.log.Info("batch saved for review", "run_id", batch.RunID, "questions", n)
	return nil
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	rec, err := s.opts.Reviews.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, review.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.Error("failed to load review record", "question_id", r.PathValue("id"), "error", err)
		writeError(w, http.StatusInternalServerError, "loading review record failed")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.opts.Reviews.ListPending(r.Context(), limit)
	if err != nil {
		s.log.Error("failed to list pending reviews", "error", err)
		writeError(w, http.StatusInternalServerError, "listing pending reviews failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
