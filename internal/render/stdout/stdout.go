package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/crimson-sun/marionette/internal/model"
)

// Renderer writes JSON-encoded frames to stdout, one object per line.
type Renderer struct {
	enc *json.Encoder
}

// New creates a stdout Renderer with optional pretty-printed JSON.
func New(pretty bool) *Renderer {
	return NewWriter(os.Stdout, pretty)
}

// NewWriter creates a Renderer targeting an arbitrary writer.
func NewWriter(w io.Writer, pretty bool) *Renderer {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Renderer{enc: enc}
}

func (r *Renderer) Render(_ context.Context, frame model.Frame) error {
	if err := r.enc.Encode(frame); err != nil {
		return fmt.Errorf("stdout render: %w", err)
	}
	return nil
}

func (r *Renderer) Close() error {
	return nil
}
