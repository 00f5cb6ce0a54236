// Package semantic estimates semantic similarity and transformative-use
// likelihood for a text pair via an interchangeable embedding backend.
//
// The provider never hard-fails: backend outages degrade to a neutral,
// explicitly flagged fallback result so a scan can complete with the
// embedding signal down-weighted instead of aborting.
package semantic

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/creatorshield/simengine/internal/domain"
	"github.com/creatorshield/simengine/internal/metrics"
)

const (
	defaultTimeout = 10 * time.Second

	// neutralScore is the weak-prior classifier value used when the backend
	// is unreachable. Deliberately not 0 or 1: it is a non-judgment.
	neutralScore = 0.5
)

// Service is the semantic embedding provider.
type Service struct {
	backend  Backend
	provider string
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates a semantic provider over the given backend. provider tags
// results for the breakdown and metrics. A non-positive timeout falls back
// to the default per-call timeout.
func New(backend Backend, provider string, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: backend, provider: provider, timeout: timeout, logger: logger}
}

// Compare embeds both texts and runs the commentary and remix classifiers.
// The three backend interactions run concurrently, each under its own
// timeout, and each degrades independently: any failure yields neutral
// values for that signal and marks the whole result as a fallback.
func (s *Service) Compare(ctx context.Context, originalText, candidateText string) domain.SemanticResult {
	res := domain.SemanticResult{
		Provider:   s.provider,
		Semantic:   neutralScore,
		Commentary: neutralScore,
		Remix:      neutralScore,
	}

	var (
		wg               sync.WaitGroup
		origVec, candVec []float32
		commentary       float64
		remix            float64
		embErr           error
		comErr           error
		remErr           error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		origVec, candVec, embErr = s.embedPair(ctx, originalText, candidateText)
	}()
	go func() {
		defer wg.Done()
		commentary, comErr = s.classify(ctx, originalText, candidateText, domain.ClassifyCommentary)
	}()
	go func() {
		defer wg.Done()
		remix, remErr = s.classify(ctx, originalText, candidateText, domain.ClassifyRemix)
	}()
	wg.Wait()

	if embErr != nil {
		s.fallback("embed", embErr)
		res.Fallback = true
	} else {
		res.OriginalVector = origVec
		res.CandidateVector = candVec
		res.Semantic = domain.Clamp01(domain.Cosine(origVec, candVec))
	}

	if comErr != nil {
		s.fallback("classify_commentary", comErr)
		res.Fallback = true
	} else {
		res.Commentary = domain.Clamp01(commentary)
	}

	if remErr != nil {
		s.fallback("classify_remix", remErr)
		res.Fallback = true
	} else {
		res.Remix = domain.Clamp01(remix)
	}

	return res
}

func (s *Service) embedPair(ctx context.Context, original, candidate string) ([]float32, []float32, error) {
	origVec, err := s.embed(ctx, original)
	if err != nil {
		return nil, nil, err
	}
	candVec, err := s.embed(ctx, candidate)
	if err != nil {
		return nil, nil, err
	}
	return origVec, candVec, nil
}

func (s *Service) embed(ctx context.Context, text string) ([]float32, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.backend.Embed(cctx, text)
}

func (s *Service) classify(
	ctx context.Context, original, candidate string, kind domain.ClassifyKind,
) (float64, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.backend.Classify(cctx, original, candidate, kind)
}

func (s *Service) fallback(op string, err error) {
	metrics.BackendFallbacksTotal.WithLabelValues(s.provider, op).Inc()
	s.logger.Warn("Semantic backend degraded to fallback",
		zap.String("provider", s.provider),
		zap.String("op", op),
		zap.Error(err),
	)
}
