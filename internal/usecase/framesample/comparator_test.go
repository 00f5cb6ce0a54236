package framesample

import (
	"errors"
	"math"
	"testing"

	"github.com/creatorshield/simengine/internal/domain"
)

func sample(ts float64, hash string) domain.FrameSample {
	return domain.FrameSample{TimestampSec: ts, Hash: hash}
}

func samples(ss ...domain.FrameSample) []domain.FrameSample { return ss }

func TestCompare_EmptySequences(t *testing.T) {
	c := New(0)

	got, err := c.Compare(nil, samples(sample(1.0, "ff")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Computed() {
		t.Error("empty sequence must be absent, not zero")
	}
}

func TestCompare_SelfSimilarity(t *testing.T) {
	c := New(0)
	s := samples(sample(1.0, "ffd8"), sample(2.0, "00e1"), sample(5.0, "a04b"))

	got, err := c.Compare(s, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Computed() || got.Value() != 1.0 {
		t.Errorf("got %v (computed=%v), want 1.0", got.Value(), got.Computed())
	}
}

func TestCompare_WithinTolerance(t *testing.T) {
	c := New(1.0)
	// Candidate frames are shifted by 0.5s, inside the window.
	a := samples(sample(1.0, "ff"), sample(2.0, "00"))
	b := samples(sample(1.5, "ff"), sample(2.5, "00"))

	got, err := c.Compare(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Computed() || got.Value() != 1.0 {
		t.Errorf("got %v, want 1.0", got.Value())
	}
}

func TestCompare_NoAlignment(t *testing.T) {
	c := New(1.0)
	a := samples(sample(0.0, "ff"), sample(2.0, "00"))
	b := samples(sample(10.0, "ff"), sample(20.0, "00"))

	got, err := c.Compare(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Computed() {
		t.Error("no aligned pairs must be absent, not zero")
	}
}

func TestCompare_PartialAlignment(t *testing.T) {
	c := New(1.0)
	// Only the 1.0s sample aligns; the 30.0s sample has no partner.
	a := samples(sample(1.0, "ff"), sample(30.0, "00"))
	b := samples(sample(1.2, "ff"))

	got, err := c.Compare(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Computed() || got.Value() != 1.0 {
		t.Errorf("got %v, want 1.0 from the single aligned pair", got.Value())
	}
}

func TestCompare_Symmetric(t *testing.T) {
	c := New(1.0)
	a := samples(sample(1.0, "f0"), sample(2.0, "0f"), sample(3.0, "ff"))
	b := samples(sample(1.4, "f0"), sample(2.6, "00"))

	ab, err := c.Compare(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := c.Compare(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ab != ba {
		t.Errorf("compare is not symmetric: a,b=%v b,a=%v", ab.Value(), ba.Value())
	}
}

func TestCompare_FormatMismatch(t *testing.T) {
	c := New(1.0)
	a := samples(sample(1.0, "ff00"))
	b := samples(sample(1.0, "ff"))

	_, err := c.Compare(a, b)
	if !errors.Is(err, domain.ErrFormatMismatch) {
		t.Fatalf("expected ErrFormatMismatch, got %v", err)
	}
}

func TestCompare_AveragesAlignedPairs(t *testing.T) {
	c := New(1.0)
	// One exact match and one half-distance match: (1.0 + 0.5) / 2.
	a := samples(sample(1.0, "ff"), sample(5.0, "f0"))
	b := samples(sample(1.0, "ff"), sample(5.0, "00"))

	got, err := c.Compare(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Computed() || math.Abs(got.Value()-0.75) > 1e-9 {
		t.Errorf("got %v, want 0.75", got.Value())
	}
}

func TestNew_DefaultTolerance(t *testing.T) {
	c := New(-1)
	if c.toleranceSec != defaultToleranceSec {
		t.Errorf("tolerance = %v, want default %v", c.toleranceSec, defaultToleranceSec)
	}
}
