package marionette

import "time"

// Keypoint is one 2D skeleton point. (0,0) means "not detected".
type Keypoint struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Missing reports whether the keypoint carries the absent sentinel.
func (k Keypoint) Missing() bool {
	return k.X == 0 && k.Y == 0
}

// Frame is one emitted animation step.
// This is the stable public type — internal representations may evolve
// independently without breaking consumers.
type Frame struct {
	Session     string     `json:"session"`     // generation session ID
	Step        int        `json:"step"`        // 0-based step index within the session
	Temperature float64    `json:"temperature"` // temperature snapshot used for this step
	Pose        []Keypoint `json:"pose"`        // smoothed keypoints, (0,0) = absent
	At          time.Time  `json:"at"`          // emission time
}

// Prediction carries one step's raw mixture parameters from a custom
// predictor: M weights plus flattened means and stddevs of length M*D.
type Prediction struct {
	Weights []float32
	Means   []float32
	Stddevs []float32
}
