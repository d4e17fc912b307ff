package model

import "errors"

// Failure taxonomy shared across the generation engine. Components wrap
// these sentinels with context; callers branch with errors.Is.
var (
	// ErrInvalidDistribution marks malformed mixture parameters: zero
	// components, mismatched dimensionality, or a negative stddev.
	ErrInvalidDistribution = errors.New("invalid mixture distribution")

	// ErrInvalidSeed marks a seed sequence that is empty or not
	// rectangular.
	ErrInvalidSeed = errors.New("invalid seed sequence")

	// ErrInferenceFailure marks an inference collaborator error or a
	// malformed model response.
	ErrInferenceFailure = errors.New("inference failure")

	// ErrSchedulingFault marks an internal loop invariant violation,
	// such as window length drift.
	ErrSchedulingFault = errors.New("scheduling fault")
)
