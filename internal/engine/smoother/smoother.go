package smoother

import (
	"math"

	"github.com/crimson-sun/marionette/internal/model"
)

// Default smoothing parameters. The base weight controls how strongly
// the most recent history entry pulls on the new value; decay halves
// the pull per step of age.
const (
	DefaultBase  = 0.6
	DefaultDecay = 0.5
	DefaultDepth = 5
)

// Smoother blends each incoming pose against a bounded history of
// recent poses so sampling noise does not jitter the animation.
// History is kept most-recent-first and holds the raw (unsmoothed)
// poses, so the filter tracks the model's actual output rather than
// its own feedback.
type Smoother struct {
	base    float64
	decay   float64
	depth   int
	history []model.Pose
}

// New creates a Smoother. Non-positive base, decay, or depth fall back
// to the defaults.
func New(base, decay float64, depth int) *Smoother {
	if base <= 0 {
		base = DefaultBase
	}
	if decay <= 0 {
		decay = DefaultDecay
	}
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Smoother{base: base, decay: decay, depth: depth}
}

// Smooth returns the smoothed pose and records the unsmoothed input as
// the newest history entry.
//
// A keypoint carrying the (0,0) missing sentinel passes through
// untouched: smoothing must never invent a location for a keypoint the
// model reported absent. History entries that are missing or too short
// at a given keypoint index are skipped for that keypoint only.
func (s *Smoother) Smooth(pose model.Pose) model.Pose {
	out := make(model.Pose, len(pose))
	copy(out, pose)

	considered := len(s.history)
	if considered > s.depth {
		considered = s.depth
	}

	for i, kp := range pose {
		if kp.Missing() {
			continue
		}
		x := float64(kp.X)
		y := float64(kp.Y)

		// Oldest considered entry first, so newer history dominates
		// the final blend.
		for j := considered - 1; j >= 0; j-- {
			h := s.history[j]
			if i >= len(h) || h[i].Missing() {
				continue
			}
			w := s.base * math.Pow(s.decay, float64(j))
			x = x*(1-w) + float64(h[i].X)*w
			y = y*(1-w) + float64(h[i].Y)*w
		}
		out[i] = model.Keypoint{X: float32(x), Y: float32(y)}
	}

	s.push(pose)
	return out
}

// Reset clears the history for a fresh generation session.
func (s *Smoother) Reset() {
	s.history = nil
}

func (s *Smoother) push(pose model.Pose) {
	cp := make(model.Pose, len(pose))
	copy(cp, pose)
	s.history = append([]model.Pose{cp}, s.history...)
	if len(s.history) > s.depth {
		s.history = s.history[:s.depth]
	}
}
