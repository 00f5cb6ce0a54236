// Package fusion merges the comparator signals for one content pair into a
// single AdvancedSimilarityScore.
//
// The critical invariant is renormalization: an absent signal's weight is
// redistributed proportionally across the present signals, never treated as
// a zero score. Content lacking audio must not score low purely for lacking
// audio.
package fusion

import (
	"fmt"

	"github.com/creatorshield/simengine/internal/domain"
)

// Engine is the similarity fusion engine. Pure computation, safe for
// concurrent use.
type Engine struct {
	weights WeightConfig
}

// New creates a fusion engine with the given default weights.
func New(weights WeightConfig) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Engine{weights: weights}, nil
}

// Weights returns the engine's default weight config.
func (e *Engine) Weights() WeightConfig { return e.weights }

// Fuse aggregates the signal set under the engine's default weights.
func (e *Engine) Fuse(signals domain.SignalSet) (domain.AdvancedSimilarityScore, error) {
	return fuse(signals, e.weights)
}

// FuseWeighted aggregates under caller-supplied weights (per-request
// override). Validation happens before any scoring math.
func (e *Engine) FuseWeighted(
	signals domain.SignalSet, weights WeightConfig,
) (domain.AdvancedSimilarityScore, error) {
	if err := weights.Validate(); err != nil {
		return domain.AdvancedSimilarityScore{}, err
	}
	return fuse(signals, weights)
}

func fuse(signals domain.SignalSet, w WeightConfig) (domain.AdvancedSimilarityScore, error) {
	score := domain.AdvancedSimilarityScore{
		PerceptualHash:   perceptualAggregate(signals.Perceptual, w),
		AudioFingerprint: signals.Audio,
		FrameSampling:    signals.Frames,
		AIEmbedding:      embeddingAggregate(signals.Semantic, w),
		Breakdown:        breakdown(signals),
	}

	type weighted struct {
		sub    domain.Subscore
		weight float64
	}
	aiWeight := w.AIEmbedding
	if signals.Semantic != nil && signals.Semantic.Fallback {
		// Degraded-confidence discount, applied before renormalization.
		aiWeight *= w.FallbackPenalty
	}
	parts := []weighted{
		{score.PerceptualHash, w.PerceptualHash},
		{score.AudioFingerprint, w.AudioFingerprint},
		{score.FrameSampling, w.FrameSampling},
		{score.AIEmbedding, aiWeight},
	}

	var sum, totalWeight float64
	present := 0
	for _, p := range parts {
		if !p.sub.Computed() {
			continue
		}
		present++
		sum += p.sub.Value() * p.weight
		totalWeight += p.weight
	}

	if present == 0 {
		// Both sides are individually scorable but share no signal kind.
		// Data-availability gaps are absorbed into the score, never raised:
		// an all-null breakdown with a zero overall says "no evidence of
		// similarity", which is distinct from a low score over real signals.
		return score, nil
	}
	if totalWeight == 0 {
		return domain.AdvancedSimilarityScore{}, fmt.Errorf(
			"weights sum to zero across present signals: %w", domain.ErrInvalidWeights)
	}

	score.Overall = domain.Clamp01(sum / totalWeight)
	return score, nil
}

// perceptualAggregate folds the four perceptual sub-scores into one
// top-level score, renormalizing over whichever sub-scores were computed.
func perceptualAggregate(r *domain.PerceptualResult, w WeightConfig) domain.Subscore {
	if r == nil {
		return domain.SubscoreNone()
	}

	type weighted struct {
		sub    domain.Subscore
		weight float64
	}
	parts := []weighted{
		{r.Keyframes, w.Keyframes},
		{r.OCR, w.OCR},
		{r.Faces, w.Faces},
		{r.Motion, w.Motion},
	}

	var sum, totalWeight float64
	for _, p := range parts {
		if !p.sub.Computed() {
			continue
		}
		sum += p.sub.Value() * p.weight
		totalWeight += p.weight
	}
	if totalWeight == 0 {
		return domain.SubscoreNone()
	}
	return domain.NewSubscore(sum / totalWeight)
}

// embeddingAggregate folds semantic similarity and the two inverted
// classifier scores into the top-level AI embedding score.
func embeddingAggregate(r *domain.SemanticResult, w WeightConfig) domain.Subscore {
	if r == nil {
		return domain.SubscoreNone()
	}
	totalWeight := w.Semantic + w.CommentaryInverse + w.RemixInverse
	if totalWeight == 0 {
		return domain.SubscoreNone()
	}
	sum := r.Semantic*w.Semantic +
		(1-r.Commentary)*w.CommentaryInverse +
		(1-r.Remix)*w.RemixInverse
	return domain.NewSubscore(sum / totalWeight)
}

// breakdown reports all nine raw sub-signals; classifier scores are the raw
// model outputs, not the inverted values used in aggregation.
func breakdown(signals domain.SignalSet) domain.Breakdown {
	var b domain.Breakdown
	if signals.Perceptual != nil {
		b.Keyframes = signals.Perceptual.Keyframes
		b.OCR = signals.Perceptual.OCR
		b.Faces = signals.Perceptual.Faces
		b.Motion = signals.Perceptual.Motion
	}
	b.Audio = signals.Audio
	b.Frames = signals.Frames
	if signals.Semantic != nil {
		b.Semantic = domain.NewSubscore(signals.Semantic.Semantic)
		b.Commentary = domain.NewSubscore(signals.Semantic.Commentary)
		b.Remix = domain.NewSubscore(signals.Semantic.Remix)
	}
	return b
}
