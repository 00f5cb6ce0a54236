package domain

import "errors"

var (
	// ErrFormatMismatch signals structurally incompatible comparator inputs
	// (e.g. hashes of different bit lengths). Indicates an upstream pipeline
	// bug, never degraded silently.
	ErrFormatMismatch = errors.New("format mismatch")
	// ErrInvalidWeights signals a caller-supplied weight config that is
	// negative or sums to zero across present signals.
	ErrInvalidWeights = errors.New("invalid weight config")
	// ErrNotScorable signals a descriptor carrying none of the scorable
	// signals (perceptual hash, audio fingerprint, frame samples).
	ErrNotScorable = errors.New("descriptor has no scorable signals")
	// ErrBackendUnavailable signals a semantic backend failure. Absorbed
	// into a fallback result by the semantic provider, never surfaced to
	// scan callers.
	ErrBackendUnavailable = errors.New("semantic backend unavailable")
)
