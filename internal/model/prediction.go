package model

import "fmt"

// MixturePrediction is one step's mixture-density model output: M
// component weights plus flattened per-component means and stddevs,
// each of length M*D where D is the FlatVector dimensionality.
//
// Weights may be raw logits; they are only guaranteed to be a
// probability vector after temperature normalization. Stddevs are
// non-negative before temperature scaling.
type MixturePrediction struct {
	Weights []float32
	Means   []float32
	Stddevs []float32
}

// Components returns M, the number of mixture components.
func (p MixturePrediction) Components() int {
	return len(p.Weights)
}

// Dim returns D, the per-component output dimensionality, or 0 when the
// prediction shape is malformed.
func (p MixturePrediction) Dim() int {
	m := len(p.Weights)
	if m == 0 || len(p.Means)%m != 0 {
		return 0
	}
	return len(p.Means) / m
}

// Validate checks the shape invariants that make the prediction usable
// for sampling.
func (p MixturePrediction) Validate() error {
	m := len(p.Weights)
	if m == 0 {
		return fmt.Errorf("model: zero mixture components: %w", ErrInvalidDistribution)
	}
	if len(p.Means) == 0 {
		return fmt.Errorf("model: empty means: %w", ErrInvalidDistribution)
	}
	if len(p.Means)%m != 0 {
		return fmt.Errorf("model: means length %d not divisible by %d components: %w",
			len(p.Means), m, ErrInvalidDistribution)
	}
	if len(p.Stddevs) != len(p.Means) {
		return fmt.Errorf("model: stddevs length %d != means length %d: %w",
			len(p.Stddevs), len(p.Means), ErrInvalidDistribution)
	}
	return nil
}
