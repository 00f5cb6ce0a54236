// Package chi is the HTTP surface over the scan service.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/creatorshield/simengine/internal/domain"
	"github.com/creatorshield/simengine/internal/usecase/fusion"
	"github.com/creatorshield/simengine/internal/usecase/scan"
)

// Scanner is the consumer contract for the scan service.
type Scanner interface {
	Compare(ctx context.Context, original, candidate domain.ContentDescriptor, opts scan.Options) (domain.AdvancedSimilarityScore, error)
	Scan(ctx context.Context, original domain.ContentDescriptor, candidates []domain.ContentDescriptor, opts scan.Options) ([]domain.Alert, error)
}

// Server holds the HTTP handlers.
type Server struct {
	scanner     Scanner
	health      domain.HealthChecker
	defaultOpts scan.Options
	logger      *zap.Logger
}

// NewServer creates the HTTP server. defaultOpts seeds per-request options;
// health may be nil when the backend exposes no health check.
func NewServer(scanner Scanner, health domain.HealthChecker, defaultOpts scan.Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{scanner: scanner, health: health, defaultOpts: defaultOpts, logger: logger}
}

// Routes registers the API routes on a fresh router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/v1/compare", s.handleCompare)
	r.Post("/v1/scan", s.handleScan)
	r.Get("/health", s.handleHealth)
	return r
}

// optionsPayload is the request-level toggle set. Signal toggles are
// pointers: absent means "enabled", matching the service defaults.
type optionsPayload struct {
	PerceptualHash   *bool                `json:"perceptual_hash,omitempty"`
	AudioFingerprint *bool                `json:"audio_fingerprint,omitempty"`
	FrameSampling    *bool                `json:"frame_sampling,omitempty"`
	AIEmbedding      *bool                `json:"ai_embedding,omitempty"`
	Threshold        float64              `json:"threshold,omitempty"`
	Workers          int                  `json:"workers,omitempty"`
	Weights          *fusion.WeightConfig `json:"weights,omitempty"`
}

func (s *Server) options(p *optionsPayload) (scan.Options, error) {
	opts := s.defaultOpts
	if p == nil {
		return opts, nil
	}
	// Config-level validation rejects thresholds above 1; request-level
	// overrides get the same treatment.
	if p.Threshold > 1 {
		return scan.Options{}, fmt.Errorf("threshold must be in (0, 1], got %g", p.Threshold)
	}
	if p.PerceptualHash != nil {
		opts.EnablePerceptualHash = *p.PerceptualHash
	}
	if p.AudioFingerprint != nil {
		opts.EnableAudio = *p.AudioFingerprint
	}
	if p.FrameSampling != nil {
		opts.EnableFrameSampling = *p.FrameSampling
	}
	if p.AIEmbedding != nil {
		opts.EnableAIEmbedding = *p.AIEmbedding
	}
	if p.Threshold > 0 {
		opts.Threshold = p.Threshold
	}
	if p.Workers > 0 {
		opts.Workers = p.Workers
	}
	if p.Weights != nil {
		opts.Weights = p.Weights
	}
	return opts, nil
}

type compareRequest struct {
	Original  domain.ContentDescriptor `json:"original"`
	Candidate domain.ContentDescriptor `json:"candidate"`
	Options   *optionsPayload          `json:"options,omitempty"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts, err := s.options(req.Options)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	score, err := s.scanner.Compare(r.Context(), req.Original, req.Candidate, opts)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

type scanRequest struct {
	Original   domain.ContentDescriptor   `json:"original"`
	Candidates []domain.ContentDescriptor `json:"candidates"`
	Options    *optionsPayload            `json:"options,omitempty"`
}

type scanResponse struct {
	Alerts []domain.Alert `json:"alerts"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Candidates) == 0 {
		writeError(w, http.StatusBadRequest, "candidates is required")
		return
	}

	opts, err := s.options(req.Options)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	alerts, err := s.scanner.Scan(r.Context(), req.Original, req.Candidates, opts)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	writeJSON(w, http.StatusOK, scanResponse{Alerts: alerts})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.HealthCheck(r.Context()); err != nil {
			// Backend outage degrades scoring but does not fail scans,
			// so report degraded rather than down.
			writeJSON(w, http.StatusOK, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeDomainError maps domain errors to HTTP statuses. Only pipeline bugs
// (format mismatch, bad weights, unscorable input) are client errors.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrFormatMismatch),
		errors.Is(err, domain.ErrInvalidWeights),
		errors.Is(err, domain.ErrNotScorable):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
