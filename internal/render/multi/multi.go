package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/marionette/internal/model"
	"github.com/crimson-sun/marionette/internal/render"
)

// Multi fans one frame out to multiple render.Renderer implementations.
// Every wrapped renderer receives the frame even when an earlier one
// fails; errors are joined so the loop still observes the failure.
type Multi struct {
	renderers []render.Renderer
}

// New creates a Multi that fans out to the given renderers.
func New(renderers ...render.Renderer) *Multi {
	return &Multi{renderers: renderers}
}

// Render delivers the frame to every wrapped renderer.
func (m *Multi) Render(ctx context.Context, frame model.Frame) error {
	var errs []error
	for _, r := range m.renderers {
		if err := r.Render(ctx, frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on every wrapped renderer, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, r := range m.renderers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
