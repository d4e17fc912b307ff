package marionette

import (
	"context"
	"math/rand"
	"time"
)

// Predictor evaluates the sequence model on a window of flattened pose
// vectors. Implement this to drive the engine with something other
// than the bundled ONNX runtime (a remote service, a test stub).
type Predictor interface {
	Predict(ctx context.Context, window [][]float32) (Prediction, error)
	Close() error
}

// FrameHandler receives one smoothed frame per completed step.
// Returning an error faults the session.
type FrameHandler func(Frame) error

type options struct {
	modelPath   string
	predictor   Predictor
	handler     FrameHandler
	temperature float64
	tempMin     float64
	tempMax     float64
	pacing      time.Duration
	smoothBase  float64
	smoothDecay float64
	smoothDepth int
	randSource  rand.Source
}

// Option configures a Marionette instance.
type Option func(*options)

// WithModel sets the ONNX model path. Ignored when WithPredictor is
// also given.
func WithModel(path string) Option {
	return func(o *options) {
		o.modelPath = path
	}
}

// WithPredictor supplies a custom inference implementation instead of
// the bundled ONNX runtime.
func WithPredictor(p Predictor) Option {
	return func(o *options) {
		o.predictor = p
	}
}

// WithFrameHandler sets the callback that receives each emitted frame.
func WithFrameHandler(h FrameHandler) Option {
	return func(o *options) {
		o.handler = h
	}
}

// WithTemperature sets the initial sampling temperature. Default: 1.
func WithTemperature(t float64) Option {
	return func(o *options) {
		o.temperature = t
	}
}

// WithTemperatureBounds sets the range SetTemperature clamps to.
// Default: [0.1, 5].
func WithTemperatureBounds(min, max float64) Option {
	return func(o *options) {
		o.tempMin = min
		o.tempMax = max
	}
}

// WithPacing sets the pause between steps, bounding the visual update
// rate. Zero disables pacing. Default: 30ms.
func WithPacing(d time.Duration) Option {
	return func(o *options) {
		o.pacing = d
	}
}

// WithSmoothing sets the temporal smoothing parameters: the base
// weight of the most recent historical pose, the per-step decay, and
// the history depth. Defaults: 0.6, 0.5, 5.
func WithSmoothing(base, decay float64, depth int) Option {
	return func(o *options) {
		o.smoothBase = base
		o.smoothDecay = decay
		o.smoothDepth = depth
	}
}

// WithRandSource fixes the random source for deterministic sampling.
// Default: seeded from the clock.
func WithRandSource(src rand.Source) Option {
	return func(o *options) {
		o.randSource = src
	}
}

func defaultOptions() options {
	return options{
		modelPath:   "models/dancer.onnx",
		temperature: 1,
		tempMin:     0.1,
		tempMax:     5,
		pacing:      30 * time.Millisecond,
		smoothBase:  0.6,
		smoothDecay: 0.5,
		smoothDepth: 5,
	}
}
