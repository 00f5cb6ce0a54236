// Package framesample compares sparse time-indexed frame hashes between two
// videos. It is deliberately independent from keyframe comparison: frame
// sampling may use a denser strategy and catches short-clip reposting that
// keyframe-only comparison would miss.
package framesample

import (
	"math"

	"github.com/creatorshield/simengine/internal/domain"
)

const defaultToleranceSec = 1.0

// Comparator aligns frame samples by nearest timestamp within a tolerance
// window and averages their hash similarity.
type Comparator struct {
	toleranceSec float64
}

// New creates a frame sampling comparator. A non-positive tolerance falls
// back to the default +-1s window.
func New(toleranceSec float64) *Comparator {
	if toleranceSec <= 0 {
		toleranceSec = defaultToleranceSec
	}
	return &Comparator{toleranceSec: toleranceSec}
}

// Compare returns a single 0..1 score, or absent when either sequence is
// empty or no samples align within the tolerance window.
func (c *Comparator) Compare(a, b []domain.FrameSample) (domain.Subscore, error) {
	if len(a) == 0 || len(b) == 0 {
		return domain.SubscoreNone(), nil
	}

	switch {
	case len(a) < len(b):
		return c.aligned(a, b)
	case len(b) < len(a):
		return c.aligned(b, a)
	default:
		ab, err := c.aligned(a, b)
		if err != nil {
			return domain.SubscoreNone(), err
		}
		ba, err := c.aligned(b, a)
		if err != nil {
			return domain.SubscoreNone(), err
		}
		if !ab.Computed() || !ba.Computed() {
			return domain.SubscoreNone(), nil
		}
		return domain.NewSubscore((ab.Value() + ba.Value()) / 2), nil
	}
}

// aligned pairs each sample in from with its nearest-timestamp sample in to,
// keeps pairs within tolerance, and averages their hash similarity.
func (c *Comparator) aligned(from, to []domain.FrameSample) (domain.Subscore, error) {
	var sum float64
	pairs := 0

	for _, s := range from {
		nearest := to[0]
		for _, t := range to[1:] {
			if math.Abs(t.TimestampSec-s.TimestampSec) < math.Abs(nearest.TimestampSec-s.TimestampSec) {
				nearest = t
			}
		}
		if math.Abs(nearest.TimestampSec-s.TimestampSec) > c.toleranceSec {
			continue
		}
		sim, err := domain.HashSimilarity(s.Hash, nearest.Hash)
		if err != nil {
			return domain.SubscoreNone(), err
		}
		sum += sim
		pairs++
	}

	if pairs == 0 {
		return domain.SubscoreNone(), nil
	}
	return domain.NewSubscore(sum / float64(pairs)), nil
}
