// Package simengine embeds the multi-signal content similarity engine in
// another Go program. It wires the four comparators and the fusion engine
// without the HTTP surface; callers feed it content descriptors produced by
// their own extraction pipeline.
package simengine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/creatorshield/simengine/internal/domain"
	"github.com/creatorshield/simengine/internal/usecase/audiofp"
	"github.com/creatorshield/simengine/internal/usecase/framesample"
	"github.com/creatorshield/simengine/internal/usecase/fusion"
	"github.com/creatorshield/simengine/internal/usecase/perceptual"
	"github.com/creatorshield/simengine/internal/usecase/scan"
	"github.com/creatorshield/simengine/internal/usecase/semantic"
)

// Core types re-exported for embedding callers.
type (
	ContentDescriptor       = domain.ContentDescriptor
	FrameSample             = domain.FrameSample
	PerceptualHash          = domain.PerceptualHash
	AudioFingerprint        = domain.AudioFingerprint
	FaceMatch               = domain.FaceMatch
	BoundingBox             = domain.BoundingBox
	MotionVector            = domain.MotionVector
	ScraperResult           = domain.ScraperResult
	AdvancedSimilarityScore = domain.AdvancedSimilarityScore
	Subscore                = domain.Subscore
	Alert                   = domain.Alert
	Backend                 = domain.Backend
	ClassifyKind            = domain.ClassifyKind
	Options                 = scan.Options
	WeightConfig            = fusion.WeightConfig
)

// Sentinel errors re-exported for embedding callers.
var (
	ErrFormatMismatch = domain.ErrFormatMismatch
	ErrInvalidWeights = domain.ErrInvalidWeights
	ErrNotScorable    = domain.ErrNotScorable
)

// DefaultWeights returns the default fusion policy.
func DefaultWeights() WeightConfig { return fusion.DefaultWeights() }

// DefaultOptions enables every signal with default threshold and workers.
func DefaultOptions() Options { return scan.DefaultOptions() }

// Engine scores content pairs and runs candidate scans.
type Engine struct {
	svc         *scan.Service
	defaultOpts scan.Options
}

type settings struct {
	backend        domain.Backend
	provider       string
	timeout        time.Duration
	logger         *zap.Logger
	weights        fusion.WeightConfig
	audio          audiofp.Config
	frameTolerance float64
}

// Option configures the engine.
type Option func(*settings)

// WithBackend sets the embedding/classification backend and its provider
// tag. Without a backend the AI embedding signal is disabled.
func WithBackend(b Backend, provider string) Option {
	return func(s *settings) {
		s.backend = b
		s.provider = provider
	}
}

// WithBackendTimeout sets the per-call backend timeout.
func WithBackendTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithWeights overrides the default fusion weights.
func WithWeights(w WeightConfig) Option {
	return func(s *settings) { s.weights = w }
}

// WithAudioPolicy overrides the audio duration plausibility policy.
func WithAudioPolicy(durationRatioLimit, mismatchCap float64) Option {
	return func(s *settings) {
		s.audio = audiofp.Config{DurationRatioLimit: durationRatioLimit, MismatchCap: mismatchCap}
	}
}

// WithFrameTolerance overrides the frame sampling alignment window.
func WithFrameTolerance(seconds float64) Option {
	return func(s *settings) { s.frameTolerance = seconds }
}

// New creates an engine.
func New(opts ...Option) (*Engine, error) {
	s := settings{weights: fusion.DefaultWeights()}
	for _, o := range opts {
		o(&s)
	}

	engine, err := fusion.New(s.weights)
	if err != nil {
		return nil, err
	}

	defaultOpts := scan.DefaultOptions()
	backend := s.backend
	if backend == nil {
		backend = unavailableBackend{}
		defaultOpts.EnableAIEmbedding = false
	}

	svc := scan.New(
		perceptual.New(),
		audiofp.New(s.audio),
		framesample.New(s.frameTolerance),
		semantic.New(backend, s.provider, s.timeout, s.logger),
		engine,
		s.logger,
	)
	return &Engine{svc: svc, defaultOpts: defaultOpts}, nil
}

// Compare scores one original/candidate pair. A nil opts uses the engine
// defaults.
func (e *Engine) Compare(
	ctx context.Context, original, candidate ContentDescriptor, opts *Options,
) (AdvancedSimilarityScore, error) {
	return e.svc.Compare(ctx, original, candidate, e.options(opts))
}

// Scan compares the original against every candidate and returns alerts
// above the threshold.
func (e *Engine) Scan(
	ctx context.Context, original ContentDescriptor, candidates []ContentDescriptor, opts *Options,
) ([]Alert, error) {
	return e.svc.Scan(ctx, original, candidates, e.options(opts))
}

func (e *Engine) options(opts *Options) scan.Options {
	if opts == nil {
		return e.defaultOpts
	}
	return *opts
}

// unavailableBackend stands in when no backend is configured. The AI
// embedding signal is disabled by default in that case, so these paths are
// only reachable when a caller force-enables it.
type unavailableBackend struct{}

func (unavailableBackend) Embed(context.Context, string) ([]float32, error) {
	return nil, domain.ErrBackendUnavailable
}

func (unavailableBackend) Classify(context.Context, string, string, domain.ClassifyKind) (float64, error) {
	return 0, domain.ErrBackendUnavailable
}
