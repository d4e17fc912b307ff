package seed

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/crimson-sun/marionette/internal/model"
)

// Source supplies the initial sequence window for a generation
// session: exactly `window` vectors of dimensionality `dim`.
type Source interface {
	Seed(window, dim int) ([]model.FlatVector, error)
}

// FileSource reads a recorded pose sequence from a JSON file holding a
// [][]float32 array, the interchange format also written by the
// generate command. When the file holds more rows than the window
// needs, the most recent rows are used.
type FileSource struct {
	Path string
}

func (f FileSource) Seed(window, dim int) ([]model.FlatVector, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	var rows [][]float32
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("seed: parse %s: %w", f.Path, err)
	}

	if len(rows) < window {
		return nil, fmt.Errorf("seed: %s holds %d rows, need %d: %w",
			f.Path, len(rows), window, model.ErrInvalidSeed)
	}
	rows = rows[len(rows)-window:]

	vecs := make([]model.FlatVector, window)
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("seed: row %d has dimensionality %d, want %d: %w",
				i, len(row), dim, model.ErrInvalidSeed)
		}
		vecs[i] = model.FlatVector(row)
	}
	return vecs, nil
}

// SyntheticSource builds a deterministic standing-figure seed for
// development and demos when no recorded sequence is available.
type SyntheticSource struct{}

func (SyntheticSource) Seed(window, dim int) ([]model.FlatVector, error) {
	if window <= 0 || dim <= 0 || dim%2 != 0 {
		return nil, fmt.Errorf("seed: synthetic seed needs positive window and even dim, got %d/%d: %w",
			window, dim, model.ErrInvalidSeed)
	}

	base := standingPose(dim / 2).Flatten()
	vecs := make([]model.FlatVector, window)
	for i := range vecs {
		vecs[i] = base.Clone()
	}
	return vecs, nil
}

// standingPose lays k keypoints out as an upright figure in normalized
// coordinates: a vertical spine with a slight alternating sway so the
// model sees a plausible, non-degenerate posture.
func standingPose(k int) model.Pose {
	pose := make(model.Pose, k)
	for i := range pose {
		t := float64(i) / float64(k)
		pose[i] = model.Keypoint{
			X: float32(0.5 + 0.04*math.Sin(float64(i)*2.1)),
			Y: float32(0.15 + 0.7*t),
		}
	}
	return pose
}

// WriteFile writes a seed sequence in the [][]float32 JSON interchange
// format.
func WriteFile(path string, vecs []model.FlatVector) error {
	rows := make([][]float32, len(vecs))
	for i, v := range vecs {
		rows[i] = v
	}
	data, err := json.MarshalIndent(rows, "", " ")
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}
