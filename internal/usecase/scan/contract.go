package scan

import (
	"context"

	"github.com/creatorshield/simengine/internal/domain"
	"github.com/creatorshield/simengine/internal/usecase/fusion"
)

// PerceptualComparator scores two visual signal bundles.
type PerceptualComparator interface {
	Compare(a, b *domain.PerceptualHash) (domain.PerceptualResult, error)
}

// AudioComparator scores two audio fingerprints.
type AudioComparator interface {
	Compare(a, b *domain.AudioFingerprint) domain.Subscore
}

// FrameComparator scores two frame sample sequences.
type FrameComparator interface {
	Compare(a, b []domain.FrameSample) (domain.Subscore, error)
}

// SemanticProvider scores a text pair via an embedding backend.
type SemanticProvider interface {
	Compare(ctx context.Context, originalText, candidateText string) domain.SemanticResult
}

// Fuser merges a signal set into one score.
type Fuser interface {
	Fuse(signals domain.SignalSet) (domain.AdvancedSimilarityScore, error)
	FuseWeighted(signals domain.SignalSet, weights fusion.WeightConfig) (domain.AdvancedSimilarityScore, error)
}
