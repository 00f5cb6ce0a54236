package domain

import "context"

// Backend is the shared embedding/classification capability contract.
// Any backend implementing it is pluggable into the semantic provider;
// the fusion engine never sees a concrete backend.
type Backend interface {
	// Embed vectorizes text into a fixed-dimensionality vector.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Classify estimates a 0..1 likelihood for the given kind over an
	// original/candidate text pair.
	Classify(ctx context.Context, original, candidate string, kind ClassifyKind) (float64, error)
}

// HealthChecker verifies backend availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ClassifyKind selects which classifier a Backend runs.
type ClassifyKind string

const (
	// ClassifyCommentary estimates transformative-commentary likelihood.
	// High values reduce the infringement signal.
	ClassifyCommentary ClassifyKind = "commentary"
	// ClassifyRemix estimates remix/adaptation likelihood.
	ClassifyRemix ClassifyKind = "remix"
)
