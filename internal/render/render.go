package render

import (
	"context"

	"github.com/crimson-sun/marionette/internal/model"
)

// Renderer consumes smoothed animation frames, one per completed
// generation step. A (0,0) keypoint in the frame's pose marks an
// absent keypoint and must be omitted, not drawn at the origin.
type Renderer interface {
	Render(ctx context.Context, frame model.Frame) error
	Close() error
}
