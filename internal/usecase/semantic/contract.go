package semantic

import (
	"context"

	"github.com/creatorshield/simengine/internal/domain"
)

// Backend is the consumer-side contract for embedding/classification
// providers. Any backend implementing it is pluggable; the provider and the
// fusion engine never depend on a concrete implementation.
type Backend interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Classify(ctx context.Context, original, candidate string, kind domain.ClassifyKind) (float64, error)
}
