package fusion

import (
	"fmt"
	"math"

	"github.com/creatorshield/simengine/internal/domain"
)

// WeightConfig holds the aggregation policy for the fusion engine. The
// default splits are a tunable starting policy, not a statistical
// requirement; every weight can be overridden via config or per request.
type WeightConfig struct {
	// Top-level signal weights.
	PerceptualHash   float64 `yaml:"perceptual_hash" json:"perceptual_hash"`
	AudioFingerprint float64 `yaml:"audio_fingerprint" json:"audio_fingerprint"`
	FrameSampling    float64 `yaml:"frame_sampling" json:"frame_sampling"`
	AIEmbedding      float64 `yaml:"ai_embedding" json:"ai_embedding"`

	// Perceptual sub-signal weights.
	Keyframes float64 `yaml:"keyframes" json:"keyframes"`
	OCR       float64 `yaml:"ocr" json:"ocr"`
	Faces     float64 `yaml:"faces" json:"faces"`
	Motion    float64 `yaml:"motion" json:"motion"`

	// Embedding sub-signal weights. Commentary and remix enter inverted:
	// high transformative likelihood reduces the infringement signal.
	Semantic          float64 `yaml:"semantic" json:"semantic"`
	CommentaryInverse float64 `yaml:"commentary_inverse" json:"commentary_inverse"`
	RemixInverse      float64 `yaml:"remix_inverse" json:"remix_inverse"`

	// FallbackPenalty multiplies the AI embedding weight when the semantic
	// provider degraded to a fallback result. Must be in (0, 1].
	FallbackPenalty float64 `yaml:"fallback_penalty" json:"fallback_penalty"`
}

// DefaultWeights returns the default aggregation policy.
func DefaultWeights() WeightConfig {
	return WeightConfig{
		PerceptualHash:   0.30,
		AudioFingerprint: 0.20,
		FrameSampling:    0.20,
		AIEmbedding:      0.30,

		Keyframes: 0.4,
		OCR:       0.2,
		Faces:     0.2,
		Motion:    0.2,

		Semantic:          0.5,
		CommentaryInverse: 0.25,
		RemixInverse:      0.25,

		FallbackPenalty: 0.5,
	}
}

// Validate rejects negative or non-numeric weights and an out-of-range
// fallback penalty. Zero-sum checks over present signals happen at fuse
// time, since they depend on which signals were computed.
func (w WeightConfig) Validate() error {
	named := []struct {
		name string
		v    float64
	}{
		{"perceptual_hash", w.PerceptualHash},
		{"audio_fingerprint", w.AudioFingerprint},
		{"frame_sampling", w.FrameSampling},
		{"ai_embedding", w.AIEmbedding},
		{"keyframes", w.Keyframes},
		{"ocr", w.OCR},
		{"faces", w.Faces},
		{"motion", w.Motion},
		{"semantic", w.Semantic},
		{"commentary_inverse", w.CommentaryInverse},
		{"remix_inverse", w.RemixInverse},
	}
	for _, f := range named {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("weight %s is not a number: %w", f.name, domain.ErrInvalidWeights)
		}
		if f.v < 0 {
			return fmt.Errorf("weight %s is negative: %w", f.name, domain.ErrInvalidWeights)
		}
	}
	if math.IsNaN(w.FallbackPenalty) || w.FallbackPenalty <= 0 || w.FallbackPenalty > 1 {
		return fmt.Errorf("fallback_penalty must be in (0, 1]: %w", domain.ErrInvalidWeights)
	}
	return nil
}
