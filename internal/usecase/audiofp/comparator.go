// Package audiofp compares chromaprint-style audio fingerprints. The hash
// alignment and vector paths are imperfect proxies for the same underlying
// similarity, so the final score is their maximum, not a sum.
package audiofp

import (
	"github.com/creatorshield/simengine/internal/domain"
)

const (
	defaultDurationRatioLimit = 3.0
	defaultMismatchCap        = 0.6
)

// Config tunes the duration plausibility policy.
type Config struct {
	// DurationRatioLimit is the longest/shortest duration ratio above which
	// the score is capped. Short clips excerpted from long originals are a
	// legitimate infringement pattern, so implausible ratios cap rather
	// than reject.
	DurationRatioLimit float64
	// MismatchCap is the score ceiling applied past the ratio limit.
	MismatchCap float64
}

// Comparator scores two audio fingerprints.
type Comparator struct {
	ratioLimit float64
	cap        float64
}

// New creates an audio fingerprint comparator. Zero config fields fall back
// to defaults.
func New(cfg Config) *Comparator {
	if cfg.DurationRatioLimit <= 0 {
		cfg.DurationRatioLimit = defaultDurationRatioLimit
	}
	if cfg.MismatchCap <= 0 {
		cfg.MismatchCap = defaultMismatchCap
	}
	return &Comparator{ratioLimit: cfg.DurationRatioLimit, cap: cfg.MismatchCap}
}

// Compare returns a single 0..1 score, or absent when either side has no
// audio. The primary signal is best sliding-window hash alignment; the
// secondary is embedding cosine similarity; the result is their maximum,
// capped when the durations are implausibly far apart.
func (c *Comparator) Compare(a, b *domain.AudioFingerprint) domain.Subscore {
	if a == nil || b == nil {
		return domain.SubscoreNone()
	}

	score := -1.0

	if a.Hash != "" && b.Hash != "" {
		score = slidingAlignment([]byte(a.Hash), []byte(b.Hash))
	}
	if len(a.Embedding) > 0 && len(a.Embedding) == len(b.Embedding) {
		if emb := domain.Clamp01(domain.Cosine(a.Embedding, b.Embedding)); emb > score {
			score = emb
		}
	}
	if score < 0 {
		// Both fingerprints present but neither carries a comparable signal.
		return domain.SubscoreNone()
	}

	if capped, ok := c.durationCap(a.DurationSec, b.DurationSec); ok && score > capped {
		score = capped
	}
	return domain.NewSubscore(score)
}

// durationCap reports the score ceiling for the given durations, if any.
func (c *Comparator) durationCap(da, db float64) (float64, bool) {
	if da <= 0 || db <= 0 {
		return 0, false
	}
	shorter, longer := da, db
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if longer/shorter > c.ratioLimit {
		return c.cap, true
	}
	return 0, false
}

// slidingAlignment slides the shorter hash across the longer and returns
// the best fraction of matching bytes over the overlap. Offsets are bounded
// by the length difference, i.e. by the shorter track's span.
func slidingAlignment(a, b []byte) float64 {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	best := 0.0
	for offset := 0; offset <= len(longer)-len(shorter); offset++ {
		matched := 0
		for i := range shorter {
			if shorter[i] == longer[offset+i] {
				matched++
			}
		}
		if frac := float64(matched) / float64(len(shorter)); frac > best {
			best = frac
		}
	}
	return best
}
