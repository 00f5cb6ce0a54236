package domain

import "encoding/json"

// Subscore is a 0..1 similarity value that may be absent ("not computed").
// Absence is a first-class state, distinct from zero: a missing signal is
// excluded from the weighted aggregate, a zero is a confident "no match".
// Marshals to JSON null when not computed.
type Subscore struct {
	value    float64
	computed bool
}

// NewSubscore creates a computed subscore.
func NewSubscore(v float64) Subscore {
	return Subscore{value: v, computed: true}
}

// SubscoreNone is the "not computed" sentinel.
func SubscoreNone() Subscore {
	return Subscore{}
}

// Computed reports whether the signal was actually computed.
func (s Subscore) Computed() bool { return s.computed }

// Value returns the score, valid only when Computed. Zero otherwise.
func (s Subscore) Value() float64 { return s.value }

// MarshalJSON emits the value, or null when not computed.
func (s Subscore) MarshalJSON() ([]byte, error) {
	if !s.computed {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

// UnmarshalJSON reads a number or null.
func (s *Subscore) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Subscore{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Subscore{value: v, computed: true}
	return nil
}

// PerceptualResult holds the four independent sub-scores produced by the
// perceptual hash comparator.
type PerceptualResult struct {
	Keyframes Subscore `json:"keyframes"`
	OCR       Subscore `json:"ocr"`
	Faces     Subscore `json:"faces"`
	Motion    Subscore `json:"motion"`
}

// SemanticResult is the semantic embedding provider's output for one text
// pair. Fallback marks a degraded result (backend unreachable or malformed
// response): vectors are zero-information, classifier scores a neutral 0.5.
// The fusion engine down-weights fallback results.
type SemanticResult struct {
	OriginalVector  []float32
	CandidateVector []float32
	Semantic        float64
	Commentary      float64
	Remix           float64
	Provider        string
	Fallback        bool
}

// SignalSet is the complete set of comparator outputs for one content pair,
// joined before fusion. Nil pointers and non-computed subscores mean the
// signal was unavailable.
type SignalSet struct {
	Perceptual *PerceptualResult
	Audio      Subscore
	Frames     Subscore
	Semantic   *SemanticResult
}

// Breakdown exposes the nine raw sub-signals behind a fused score. Each
// field is null in JSON when not computed; consumers must never infer
// absence from a zero.
type Breakdown struct {
	Keyframes  Subscore `json:"keyframes"`
	OCR        Subscore `json:"ocr"`
	Faces      Subscore `json:"faces"`
	Motion     Subscore `json:"motion"`
	Audio      Subscore `json:"audio"`
	Frames     Subscore `json:"frames"`
	Semantic   Subscore `json:"semantic"`
	Commentary Subscore `json:"commentary"`
	Remix      Subscore `json:"remix"`
}

// AdvancedSimilarityScore is the fusion engine's sole output: four top-level
// sub-scores, the overall weighted score, and the full raw-signal breakdown.
type AdvancedSimilarityScore struct {
	PerceptualHash   Subscore  `json:"perceptual_hash"`
	AudioFingerprint Subscore  `json:"audio_fingerprint"`
	FrameSampling    Subscore  `json:"frame_sampling"`
	AIEmbedding      Subscore  `json:"ai_embedding"`
	Overall          float64   `json:"overall"`
	Breakdown        Breakdown `json:"breakdown"`
}

// Alert is a scan hit: a candidate whose overall similarity crossed the
// configured threshold.
type Alert struct {
	CandidateID  string                  `json:"candidate_id"`
	CandidateURL string                  `json:"candidate_url,omitempty"`
	Platform     string                  `json:"platform,omitempty"`
	Score        AdvancedSimilarityScore `json:"score"`
}
