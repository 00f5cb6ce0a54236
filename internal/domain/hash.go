package domain

import (
	"encoding/hex"
	"fmt"
	"math"
	"math/bits"
)

// HashSimilarity computes normalized Hamming similarity (1 - distance/bits)
// between two hex-encoded perceptual hashes. Hashes of differing bit length
// are a format mismatch: hash providers must agree on layout, and silent
// truncation would corrupt scores.
func HashSimilarity(a, b string) (float64, error) {
	ab, err := hex.DecodeString(a)
	if err != nil {
		return 0, fmt.Errorf("decode hash %q: %w", a, ErrFormatMismatch)
	}
	bb, err := hex.DecodeString(b)
	if err != nil {
		return 0, fmt.Errorf("decode hash %q: %w", b, ErrFormatMismatch)
	}
	if len(ab) == 0 || len(bb) == 0 {
		return 0, fmt.Errorf("empty hash: %w", ErrFormatMismatch)
	}
	if len(ab) != len(bb) {
		return 0, fmt.Errorf("hash bit length %d vs %d: %w", len(ab)*8, len(bb)*8, ErrFormatMismatch)
	}

	dist := 0
	for i := range ab {
		dist += bits.OnesCount8(ab[i] ^ bb[i])
	}
	return 1 - float64(dist)/float64(len(ab)*8), nil
}

// Cosine computes the cosine similarity between two embedding vectors.
// Returns 0 for mismatched lengths or zero-norm inputs.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
