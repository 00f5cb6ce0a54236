package domain

// ContentDescriptor represents one piece of content (original or candidate)
// as analyzed by the upstream extraction pipeline. All fields except ID are
// optional; Scorable reports whether at least one similarity signal can be
// computed from it.
type ContentDescriptor struct {
	ID          string `json:"id"`
	SourceURL   string `json:"source_url,omitempty"`
	Platform    string `json:"platform,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	Frames     []FrameSample     `json:"frames,omitempty"`
	Perceptual *PerceptualHash   `json:"perceptual,omitempty"`
	Audio      *AudioFingerprint `json:"audio,omitempty"`
}

// Scorable reports whether the descriptor carries at least one of the
// signals the engine can score (perceptual hash, audio fingerprint, frame
// samples). Semantic text alone is not sufficient.
func (d ContentDescriptor) Scorable() bool {
	return d.Perceptual != nil || d.Audio != nil || len(d.Frames) > 0
}

// Text returns the free text used for semantic comparison.
func (d ContentDescriptor) Text() string {
	if d.Title == "" {
		return d.Description
	}
	if d.Description == "" {
		return d.Title
	}
	return d.Title + "\n" + d.Description
}

// FrameSample is a sparse time-indexed frame hash (e.g. sampled at 1s/2s/5s).
type FrameSample struct {
	TimestampSec float64 `json:"timestamp_sec"`
	Hash         string  `json:"hash"`
	Thumbnail    []byte  `json:"thumbnail,omitempty"`
}

// PerceptualHash bundles the visual signals extracted from one piece of
// content: ordered keyframe hashes, OCR text, detected faces, and motion
// vectors.
type PerceptualHash struct {
	Keyframes []string       `json:"keyframes,omitempty"`
	OCRText   []string       `json:"ocr_text,omitempty"`
	Faces     []FaceMatch    `json:"faces,omitempty"`
	Motion    []MotionVector `json:"motion,omitempty"`
}

// FaceMatch is a detected face used for presence/positional comparison only.
// No identity is ever stored.
type FaceMatch struct {
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"box"`
	Embedding  []float32   `json:"embedding,omitempty"`
}

// BoundingBox is a face bounding box. Units (normalized or pixel) are
// consistent within a descriptor.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MotionVector describes dominant motion at a frame. FrameIndex is
// monotonically increasing within a descriptor, direction is degrees in
// [0, 360), magnitude is non-negative.
type MotionVector struct {
	FrameIndex   int     `json:"frame_index"`
	DirectionDeg float64 `json:"direction_deg"`
	Magnitude    float64 `json:"magnitude"`
}

// AudioFingerprint carries the audio signals for one piece of content:
// a chromaprint-style hash, an optional spectrogram matrix, an optional
// embedding vector, and the track duration.
type AudioFingerprint struct {
	Hash        string      `json:"hash,omitempty"`
	Spectrogram [][]float64 `json:"spectrogram,omitempty"`
	Embedding   []float32   `json:"embedding,omitempty"`
	DurationSec float64     `json:"duration_sec"`
}
