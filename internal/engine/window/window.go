package window

import (
	"fmt"

	"github.com/crimson-sun/marionette/internal/model"
)

// Window is the fixed-length sliding buffer of the most recent model
// input vectors, oldest first. Its length is set at construction and
// never changes: advancing drops the oldest entry and appends the new
// one.
type Window struct {
	vecs []model.FlatVector
	dim  int
}

// New builds a Window from a caller-supplied seed sequence. The seed
// must be non-empty and rectangular (every vector the same length).
// The seed is copied; the caller keeps ownership of its slices.
func New(seed []model.FlatVector) (*Window, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("window: empty seed: %w", model.ErrInvalidSeed)
	}
	dim := len(seed[0])
	if dim == 0 {
		return nil, fmt.Errorf("window: zero-dimensional seed vectors: %w", model.ErrInvalidSeed)
	}

	vecs := make([]model.FlatVector, len(seed))
	for i, v := range seed {
		if len(v) != dim {
			return nil, fmt.Errorf("window: seed vector %d has length %d, want %d: %w",
				i, len(v), dim, model.ErrInvalidSeed)
		}
		vecs[i] = v.Clone()
	}
	return &Window{vecs: vecs, dim: dim}, nil
}

// Len returns W, the fixed window length.
func (w *Window) Len() int {
	return len(w.vecs)
}

// Dim returns D, the vector dimensionality.
func (w *Window) Dim() int {
	return w.dim
}

// Current returns the window contents oldest-first as a read-only view
// for the inference step. Callers must not modify the returned slices;
// the view is only valid until the next Advance.
func (w *Window) Current() []model.FlatVector {
	return w.vecs
}

// Advance drops the oldest entry and appends v, preserving the window
// length by construction.
func (w *Window) Advance(v model.FlatVector) error {
	if len(v) != w.dim {
		return fmt.Errorf("window: advance vector has length %d, want %d: %w",
			len(v), w.dim, model.ErrSchedulingFault)
	}
	copy(w.vecs, w.vecs[1:])
	w.vecs[len(w.vecs)-1] = v.Clone()
	return nil
}
