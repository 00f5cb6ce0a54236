// Package scan orchestrates similarity comparisons: it fans the four
// comparators out concurrently per content pair, joins their signals at the
// fusion engine, and collects alerts for candidates above the threshold.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/creatorshield/simengine/internal/domain"
	"github.com/creatorshield/simengine/internal/metrics"
	"github.com/creatorshield/simengine/internal/usecase/fusion"
)

const (
	defaultThreshold = 0.8
	defaultWorkers   = 4
)

// Options are the per-request toggles: which signals to compute, the alert
// threshold, the candidate fan-out width, and an optional weight override.
type Options struct {
	EnablePerceptualHash bool
	EnableAudio          bool
	EnableFrameSampling  bool
	EnableAIEmbedding    bool

	Threshold float64
	Workers   int
	Weights   *fusion.WeightConfig
}

// DefaultOptions enables every signal with the default threshold and
// worker count.
func DefaultOptions() Options {
	return Options{
		EnablePerceptualHash: true,
		EnableAudio:          true,
		EnableFrameSampling:  true,
		EnableAIEmbedding:    true,
		Threshold:            defaultThreshold,
		Workers:              defaultWorkers,
	}
}

// Service runs comparisons and scans.
type Service struct {
	perceptual PerceptualComparator
	audio      AudioComparator
	frames     FrameComparator
	semantic   SemanticProvider
	fuser      Fuser
	logger     *zap.Logger
}

// New creates a scan service over the four comparators and the fusion
// engine.
func New(
	perceptual PerceptualComparator,
	audio AudioComparator,
	frames FrameComparator,
	semantic SemanticProvider,
	fuser Fuser,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		perceptual: perceptual,
		audio:      audio,
		frames:     frames,
		semantic:   semantic,
		fuser:      fuser,
		logger:     logger,
	}
}

// Compare scores one original/candidate pair. The four comparators run
// concurrently; only the audio and semantic paths may touch the network.
// Weight overrides are validated before any comparison work begins.
func (s *Service) Compare(
	ctx context.Context, original, candidate domain.ContentDescriptor, opts Options,
) (domain.AdvancedSimilarityScore, error) {
	if opts.Weights != nil {
		if err := opts.Weights.Validate(); err != nil {
			return domain.AdvancedSimilarityScore{}, err
		}
	}
	if !original.Scorable() {
		return domain.AdvancedSimilarityScore{}, fmt.Errorf("original %q: %w", original.ID, domain.ErrNotScorable)
	}
	if !candidate.Scorable() {
		return domain.AdvancedSimilarityScore{}, fmt.Errorf("candidate %q: %w", candidate.ID, domain.ErrNotScorable)
	}

	start := time.Now()

	var (
		wg      sync.WaitGroup
		signals domain.SignalSet
		pErr    error
		fErr    error
	)

	if opts.EnablePerceptualHash && original.Perceptual != nil && candidate.Perceptual != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.perceptual.Compare(original.Perceptual, candidate.Perceptual)
			if err != nil {
				pErr = err
				return
			}
			signals.Perceptual = &res
		}()
	}
	if opts.EnableAudio {
		wg.Add(1)
		go func() {
			defer wg.Done()
			signals.Audio = s.audio.Compare(original.Audio, candidate.Audio)
		}()
	}
	if opts.EnableFrameSampling {
		wg.Add(1)
		go func() {
			defer wg.Done()
			signals.Frames, fErr = s.frames.Compare(original.Frames, candidate.Frames)
		}()
	}
	if opts.EnableAIEmbedding && original.Text() != "" && candidate.Text() != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := s.semantic.Compare(ctx, original.Text(), candidate.Text())
			signals.Semantic = &res
		}()
	}
	wg.Wait()

	if pErr != nil {
		return domain.AdvancedSimilarityScore{}, fmt.Errorf("perceptual compare: %w", pErr)
	}
	if fErr != nil {
		return domain.AdvancedSimilarityScore{}, fmt.Errorf("frame sampling compare: %w", fErr)
	}

	var (
		score domain.AdvancedSimilarityScore
		err   error
	)
	if opts.Weights != nil {
		score, err = s.fuser.FuseWeighted(signals, *opts.Weights)
	} else {
		score, err = s.fuser.Fuse(signals)
	}
	if err != nil {
		return domain.AdvancedSimilarityScore{}, err
	}

	metrics.ComparisonDuration.Observe(time.Since(start).Seconds())
	metrics.ComparisonsTotal.Inc()
	return score, nil
}

// Scan compares the original against every candidate with a bounded worker
// pool and returns alerts for candidates whose overall score crossed the
// threshold, in candidate order. Unscorable candidates are skipped with a
// warning; they indicate an upstream extraction gap, not a scan failure.
func (s *Service) Scan(
	ctx context.Context, original domain.ContentDescriptor,
	candidates []domain.ContentDescriptor, opts Options,
) ([]domain.Alert, error) {
	if opts.Weights != nil {
		if err := opts.Weights.Validate(); err != nil {
			return nil, err
		}
	}
	if !original.Scorable() {
		return nil, fmt.Errorf("original %q: %w", original.ID, domain.ErrNotScorable)
	}

	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	hits := make([]*domain.Alert, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, candidate := range candidates {
		g.Go(func() error {
			score, err := s.Compare(gctx, original, candidate, opts)
			if err != nil {
				if errors.Is(err, domain.ErrNotScorable) {
					s.logger.Warn("Skipping unscorable candidate",
						zap.String("candidate_id", candidate.ID))
					return nil
				}
				return fmt.Errorf("compare candidate %q: %w", candidate.ID, err)
			}
			if score.Overall >= threshold {
				hits[i] = &domain.Alert{
					CandidateID:  candidate.ID,
					CandidateURL: candidate.SourceURL,
					Platform:     candidate.Platform,
					Score:        score,
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	alerts := make([]domain.Alert, 0, len(candidates))
	for _, h := range hits {
		if h != nil {
			metrics.AlertsTotal.Inc()
			alerts = append(alerts, *h)
		}
	}

	s.logger.Info("Scan complete",
		zap.String("original_id", original.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("alerts", len(alerts)),
	)
	return alerts, nil
}
