package fusion

import (
	"errors"
	"math"
	"testing"

	"github.com/creatorshield/simengine/internal/domain"
)

func mustEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

func allSignals(v float64) domain.SignalSet {
	return domain.SignalSet{
		Perceptual: &domain.PerceptualResult{
			Keyframes: domain.NewSubscore(v),
			OCR:       domain.NewSubscore(v),
			Faces:     domain.NewSubscore(v),
			Motion:    domain.NewSubscore(v),
		},
		Audio:  domain.NewSubscore(v),
		Frames: domain.NewSubscore(v),
		Semantic: &domain.SemanticResult{
			Semantic:   v,
			Commentary: 1 - v,
			Remix:      1 - v,
		},
	}
}

func TestFuse_EqualSignalsPreserveValue(t *testing.T) {
	// A weighted average of equal inputs equals the input regardless of the
	// weight split, which is exactly the renormalization invariant.
	e := mustEngine(t)

	for _, v := range []float64{0.0, 0.25, 0.8, 1.0} {
		score, err := e.Fuse(allSignals(v))
		if err != nil {
			t.Fatalf("v=%v: unexpected error: %v", v, err)
		}
		if math.Abs(score.Overall-v) > 1e-9 {
			t.Errorf("v=%v: overall = %v", v, score.Overall)
		}
	}
}

func TestFuse_MissingSignalNotPenalized(t *testing.T) {
	// A perfect match with no audio at all must still score 1.0: the audio
	// weight is redistributed, not counted as zero.
	e := mustEngine(t)

	signals := allSignals(1.0)
	signals.Audio = domain.SubscoreNone()

	score, err := e.Fuse(signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(score.Overall-1.0) > 1e-9 {
		t.Errorf("overall = %v, want 1.0", score.Overall)
	}
	if score.AudioFingerprint.Computed() {
		t.Error("audio subscore must stay absent")
	}
}

func TestFuse_SingleSignal(t *testing.T) {
	e := mustEngine(t)

	signals := domain.SignalSet{Audio: domain.NewSubscore(0.7)}
	score, err := e.Fuse(signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(score.Overall-0.7) > 1e-9 {
		t.Errorf("overall = %v, want 0.7 (all weight on the one signal)", score.Overall)
	}
}

func TestFuse_NoSignals(t *testing.T) {
	// Descriptors can be individually scorable yet share no signal kind.
	// That is a data gap, not a caller error: the result is an all-null
	// breakdown with a zero overall.
	e := mustEngine(t)

	score, err := e.Fuse(domain.SignalSet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.Overall != 0 {
		t.Errorf("overall = %v, want 0", score.Overall)
	}
	for name, sub := range map[string]domain.Subscore{
		"perceptual": score.PerceptualHash,
		"audio":      score.AudioFingerprint,
		"frames":     score.FrameSampling,
		"ai":         score.AIEmbedding,
	} {
		if sub.Computed() {
			t.Errorf("%s: expected absent", name)
		}
	}
}

func TestFuse_PerceptualRenormalization(t *testing.T) {
	e := mustEngine(t)

	// Only keyframes and OCR computed: 0.4 and 0.2 renormalize to 2/3, 1/3.
	signals := domain.SignalSet{
		Perceptual: &domain.PerceptualResult{
			Keyframes: domain.NewSubscore(0.9),
			OCR:       domain.NewSubscore(0.3),
		},
	}
	score, err := e.Fuse(signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (0.9*0.4 + 0.3*0.2) / 0.6
	if math.Abs(score.PerceptualHash.Value()-want) > 1e-9 {
		t.Errorf("perceptual = %v, want %v", score.PerceptualHash.Value(), want)
	}
	if math.Abs(score.Overall-want) > 1e-9 {
		t.Errorf("overall = %v, want %v", score.Overall, want)
	}
}

func TestFuse_EmbeddingAggregateInversion(t *testing.T) {
	e := mustEngine(t)

	// High commentary/remix likelihood pulls the embedding score down.
	signals := domain.SignalSet{
		Audio: domain.NewSubscore(1.0),
		Semantic: &domain.SemanticResult{
			Semantic:   0.9,
			Commentary: 0.8,
			Remix:      0.6,
		},
	}
	score, err := e.Fuse(signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantAI := 0.9*0.5 + (1-0.8)*0.25 + (1-0.6)*0.25
	if math.Abs(score.AIEmbedding.Value()-wantAI) > 1e-9 {
		t.Errorf("ai embedding = %v, want %v", score.AIEmbedding.Value(), wantAI)
	}

	// Breakdown reports the raw classifier outputs, not the inversions.
	if score.Breakdown.Commentary.Value() != 0.8 {
		t.Errorf("breakdown commentary = %v, want raw 0.8", score.Breakdown.Commentary.Value())
	}
	if score.Breakdown.Remix.Value() != 0.6 {
		t.Errorf("breakdown remix = %v, want raw 0.6", score.Breakdown.Remix.Value())
	}
}

func TestFuse_FallbackDiscountsEmbeddingWeight(t *testing.T) {
	e := mustEngine(t)

	base := domain.SignalSet{
		Audio: domain.NewSubscore(0.4),
		Semantic: &domain.SemanticResult{
			Semantic:   1.0,
			Commentary: 0.0,
			Remix:      0.0,
		},
	}
	trusted, err := e.Fuse(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	degraded := base
	degraded.Semantic = &domain.SemanticResult{
		Semantic:   1.0,
		Commentary: 0.0,
		Remix:      0.0,
		Fallback:   true,
	}
	fallback, err := e.Fuse(degraded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The embedding signal reads higher than audio here, so trusting it
	// less must pull the overall score toward the audio signal.
	if fallback.Overall >= trusted.Overall {
		t.Errorf("fallback overall %v not below trusted overall %v",
			fallback.Overall, trusted.Overall)
	}

	// ai=1.0 at weight 0.3*0.5=0.15 against audio 0.4 at weight 0.2.
	want := (0.4*0.2 + 1.0*0.15) / 0.35
	if math.Abs(fallback.Overall-want) > 1e-9 {
		t.Errorf("fallback overall = %v, want %v", fallback.Overall, want)
	}
}

func TestFuse_Deterministic(t *testing.T) {
	e := mustEngine(t)

	signals := domain.SignalSet{
		Perceptual: &domain.PerceptualResult{
			Keyframes: domain.NewSubscore(0.81),
			Motion:    domain.NewSubscore(0.33),
		},
		Frames: domain.NewSubscore(0.5),
		Semantic: &domain.SemanticResult{
			Semantic: 0.62, Commentary: 0.4, Remix: 0.1, Fallback: true,
		},
	}

	first, err := e.Fuse(signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := e.Fuse(signals)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("run %d differs:\nfirst: %+v\nagain: %+v", i, first, again)
		}
	}
}

func TestFuseWeighted_Override(t *testing.T) {
	e := mustEngine(t)

	signals := domain.SignalSet{
		Audio:  domain.NewSubscore(1.0),
		Frames: domain.NewSubscore(0.0),
	}

	w := DefaultWeights()
	w.AudioFingerprint = 1.0
	w.FrameSampling = 0.0

	score, err := e.FuseWeighted(signals, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.Overall != 1.0 {
		t.Errorf("overall = %v, want 1.0 with all weight on audio", score.Overall)
	}
}

func TestFuseWeighted_InvalidWeights(t *testing.T) {
	e := mustEngine(t)

	w := DefaultWeights()
	w.Keyframes = -0.1

	_, err := e.FuseWeighted(domain.SignalSet{Audio: domain.NewSubscore(1)}, w)
	if !errors.Is(err, domain.ErrInvalidWeights) {
		t.Fatalf("expected ErrInvalidWeights, got %v", err)
	}
}

func TestFuseWeighted_ZeroWeightAcrossPresentSignals(t *testing.T) {
	e := mustEngine(t)

	w := DefaultWeights()
	w.AudioFingerprint = 0

	_, err := e.FuseWeighted(domain.SignalSet{Audio: domain.NewSubscore(0.9)}, w)
	if !errors.Is(err, domain.ErrInvalidWeights) {
		t.Fatalf("expected ErrInvalidWeights, got %v", err)
	}
}

func TestNew_RejectsInvalidWeights(t *testing.T) {
	w := DefaultWeights()
	w.FallbackPenalty = 0

	if _, err := New(w); !errors.Is(err, domain.ErrInvalidWeights) {
		t.Fatalf("expected ErrInvalidWeights, got %v", err)
	}
}

func TestFuse_BreakdownNullability(t *testing.T) {
	e := mustEngine(t)

	signals := domain.SignalSet{Frames: domain.NewSubscore(0.9)}
	score, err := e.Fuse(signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if score.Breakdown.Frames.Value() != 0.9 {
		t.Errorf("frames = %v, want 0.9", score.Breakdown.Frames.Value())
	}
	for name, sub := range map[string]domain.Subscore{
		"keyframes":  score.Breakdown.Keyframes,
		"ocr":        score.Breakdown.OCR,
		"faces":      score.Breakdown.Faces,
		"motion":     score.Breakdown.Motion,
		"audio":      score.Breakdown.Audio,
		"semantic":   score.Breakdown.Semantic,
		"commentary": score.Breakdown.Commentary,
		"remix":      score.Breakdown.Remix,
	} {
		if sub.Computed() {
			t.Errorf("breakdown %s: expected absent", name)
		}
	}
}
