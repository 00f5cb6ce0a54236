// Package perceptual compares the visual signal bundles of two pieces of
// content: keyframe hashes, OCR text, detected faces, and motion vectors.
// All four sub-scores are independent and individually optional.
package perceptual

import (
	"math"
	"strings"
	"unicode"

	"github.com/creatorshield/simengine/internal/domain"
)

// Comparator is a pure CPU-bound comparator over perceptual hash bundles.
type Comparator struct{}

// New creates a perceptual hash comparator.
func New() *Comparator { return &Comparator{} }

// Compare scores two bundles across four independent sub-signals. A nil
// bundle on either side yields an all-absent result. The only hard failure
// is a hash format mismatch between the two sides.
func (c *Comparator) Compare(a, b *domain.PerceptualHash) (domain.PerceptualResult, error) {
	var res domain.PerceptualResult
	if a == nil || b == nil {
		return res, nil
	}

	kf, err := keyframeScore(a.Keyframes, b.Keyframes)
	if err != nil {
		return domain.PerceptualResult{}, err
	}
	res.Keyframes = kf
	res.OCR = ocrScore(a.OCRText, b.OCRText)
	res.Faces = faceScore(a.Faces, b.Faces)
	res.Motion = motionScore(a.Motion, b.Motion)
	return res, nil
}

// keyframeScore averages best-match Hamming similarity, iterating from the
// shorter sequence. Equal-length sequences average both directions so the
// score stays symmetric regardless of argument order.
func keyframeScore(a, b []string) (domain.Subscore, error) {
	if len(a) == 0 || len(b) == 0 {
		return domain.SubscoreNone(), nil
	}

	switch {
	case len(a) < len(b):
		s, err := avgBestHash(a, b)
		if err != nil {
			return domain.SubscoreNone(), err
		}
		return domain.NewSubscore(s), nil
	case len(b) < len(a):
		s, err := avgBestHash(b, a)
		if err != nil {
			return domain.SubscoreNone(), err
		}
		return domain.NewSubscore(s), nil
	default:
		ab, err := avgBestHash(a, b)
		if err != nil {
			return domain.SubscoreNone(), err
		}
		ba, err := avgBestHash(b, a)
		if err != nil {
			return domain.SubscoreNone(), err
		}
		return domain.NewSubscore((ab + ba) / 2), nil
	}
}

// avgBestHash finds, for each hash in from, its closest match in to and
// averages the per-pair similarities.
func avgBestHash(from, to []string) (float64, error) {
	var sum float64
	for _, h := range from {
		best := -1.0
		for _, g := range to {
			sim, err := domain.HashSimilarity(h, g)
			if err != nil {
				return 0, err
			}
			if sim > best {
				best = sim
			}
		}
		sum += best
	}
	return sum / float64(len(from)), nil
}

// ocrScore is token-set Jaccard similarity over the concatenated OCR text
// of both bundles. Empty vs empty is absent, empty vs non-empty is 0.
func ocrScore(a, b []string) domain.Subscore {
	as := tokenSet(strings.Join(a, " "))
	bs := tokenSet(strings.Join(b, " "))

	if len(as) == 0 && len(bs) == 0 {
		return domain.SubscoreNone()
	}
	if len(as) == 0 || len(bs) == 0 {
		return domain.NewSubscore(0)
	}

	intersection := 0
	for t := range as {
		if _, ok := bs[t]; ok {
			intersection++
		}
	}
	union := len(as) + len(bs) - intersection
	return domain.NewSubscore(float64(intersection) / float64(union))
}

func tokenSet(text string) map[string]struct{} {
	parts := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(parts) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		set[p] = struct{}{}
	}
	return set
}

// faceScore averages the best pairwise face similarity over the smaller
// set. Faces compare by embedding cosine when both carry embeddings,
// by bounding-box IoU otherwise.
func faceScore(a, b []domain.FaceMatch) domain.Subscore {
	if len(a) == 0 && len(b) == 0 {
		return domain.SubscoreNone()
	}
	if len(a) == 0 || len(b) == 0 {
		return domain.NewSubscore(0)
	}

	switch {
	case len(a) < len(b):
		return domain.NewSubscore(avgBestFace(a, b))
	case len(b) < len(a):
		return domain.NewSubscore(avgBestFace(b, a))
	default:
		return domain.NewSubscore((avgBestFace(a, b) + avgBestFace(b, a)) / 2)
	}
}

func avgBestFace(from, to []domain.FaceMatch) float64 {
	var sum float64
	for _, f := range from {
		best := 0.0
		for _, g := range to {
			if s := facePairScore(f, g); s > best {
				best = s
			}
		}
		sum += best
	}
	return sum / float64(len(from))
}

func facePairScore(a, b domain.FaceMatch) float64 {
	if len(a.Embedding) > 0 && len(a.Embedding) == len(b.Embedding) {
		return domain.Clamp01(domain.Cosine(a.Embedding, b.Embedding))
	}
	return iou(a.Box, b.Box)
}

// iou is intersection-over-union of two bounding boxes.
func iou(a, b domain.BoundingBox) float64 {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)

	if x2 <= x1 || y2 <= y1 {
		return 0
	}
	inter := (x2 - x1) * (y2 - y1)
	union := a.Width*a.Height + b.Width*b.Height - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// motionScore aligns motion vectors by nearest frame index and averages
// cosine similarity of the (direction, magnitude) pairs in cartesian form.
func motionScore(a, b []domain.MotionVector) domain.Subscore {
	if len(a) == 0 || len(b) == 0 {
		return domain.SubscoreNone()
	}

	switch {
	case len(a) < len(b):
		return domain.NewSubscore(avgMotion(a, b))
	case len(b) < len(a):
		return domain.NewSubscore(avgMotion(b, a))
	default:
		return domain.NewSubscore((avgMotion(a, b) + avgMotion(b, a)) / 2)
	}
}

func avgMotion(from, to []domain.MotionVector) float64 {
	var sum float64
	for _, v := range from {
		nearest := to[0]
		for _, w := range to[1:] {
			if absInt(w.FrameIndex-v.FrameIndex) < absInt(nearest.FrameIndex-v.FrameIndex) {
				nearest = w
			}
		}
		sum += motionPairScore(v, nearest)
	}
	return sum / float64(len(from))
}

func motionPairScore(a, b domain.MotionVector) float64 {
	// Zero-magnitude vectors have no direction: two still frames agree,
	// a still frame and a moving one do not.
	if a.Magnitude == 0 && b.Magnitude == 0 {
		return 1
	}
	if a.Magnitude == 0 || b.Magnitude == 0 {
		return 0
	}
	av := cartesian(a)
	bv := cartesian(b)
	return domain.Clamp01(domain.Cosine(av[:], bv[:]))
}

func cartesian(v domain.MotionVector) [2]float32 {
	rad := v.DirectionDeg * math.Pi / 180
	return [2]float32{
		float32(v.Magnitude * math.Cos(rad)),
		float32(v.Magnitude * math.Sin(rad)),
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
