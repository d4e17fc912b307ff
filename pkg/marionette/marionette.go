package marionette

import (
	"context"
	"fmt"

	"github.com/crimson-sun/marionette/internal/engine/sampler"
	"github.com/crimson-sun/marionette/internal/engine/smoother"
	"github.com/crimson-sun/marionette/internal/infer"
	"github.com/crimson-sun/marionette/internal/loop"
	"github.com/crimson-sun/marionette/internal/model"
)

// Marionette is a dance animation generator. One instance owns one
// generation loop; Start/Stop may be called repeatedly to run
// successive sessions.
type Marionette struct {
	loop      *loop.Loop
	predictor infer.Predictor
	tempMin   float64
	tempMax   float64
}

// New creates a Marionette instance. Unless WithPredictor is given,
// the ONNX model at the configured path is loaded, which requires the
// ONNX Runtime shared library alongside the model file.
func New(opts ...Option) (*Marionette, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.tempMin <= 0 || o.tempMax < o.tempMin {
		return nil, fmt.Errorf("marionette: bad temperature bounds [%g, %g]", o.tempMin, o.tempMax)
	}

	var predictor infer.Predictor
	if o.predictor != nil {
		predictor = &predictorAdapter{p: o.predictor}
	} else {
		p, err := infer.NewONNX(o.modelPath)
		if err != nil {
			return nil, fmt.Errorf("marionette: %w", err)
		}
		predictor = p
	}

	l := loop.New(
		predictor,
		sampler.New(o.randSource),
		smoother.New(o.smoothBase, o.smoothDecay, o.smoothDepth),
		&handlerRenderer{h: o.handler},
		loop.Config{Pacing: o.pacing, Temperature: clamp(o.temperature, o.tempMin, o.tempMax)},
	)

	return &Marionette{
		loop:      l,
		predictor: predictor,
		tempMin:   o.tempMin,
		tempMax:   o.tempMax,
	}, nil
}

// Start begins a generation session from a seed window of flattened
// pose vectors (one row per time step, oldest first, equal lengths).
// Start while a session is running is a no-op.
func (m *Marionette) Start(seed [][]float32) error {
	return m.loop.Start(toFlatVectors(seed))
}

// Stop halts the running session at the next safe step boundary and
// waits for it to settle. Stop while idle is a no-op.
func (m *Marionette) Stop() {
	m.loop.Stop()
}

// Generate runs exactly steps unpaced iterations synchronously,
// delivering each frame to the frame handler.
func (m *Marionette) Generate(ctx context.Context, seed [][]float32, steps int) error {
	return m.loop.Generate(ctx, toFlatVectors(seed), steps)
}

// SetTemperature updates the sampling temperature, clamped to the
// configured bounds, and returns the applied value. The next step
// observes the new value.
func (m *Marionette) SetTemperature(t float64) float64 {
	applied := clamp(t, m.tempMin, m.tempMax)
	m.loop.SetTemperature(applied)
	return applied
}

// Temperature returns the current sampling temperature.
func (m *Marionette) Temperature() float64 {
	return m.loop.Temperature()
}

// Running reports whether a session is active.
func (m *Marionette) Running() bool {
	return m.loop.State() == loop.StateRunning
}

// Err returns the fault that halted the last session, or nil.
func (m *Marionette) Err() error {
	return m.loop.Err()
}

// Session returns the current (or most recent) session ID.
func (m *Marionette) Session() string {
	return m.loop.Session()
}

// Close stops any running session and releases the predictor.
func (m *Marionette) Close() error {
	m.loop.Stop()
	return m.predictor.Close()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func toFlatVectors(rows [][]float32) []model.FlatVector {
	vecs := make([]model.FlatVector, len(rows))
	for i, row := range rows {
		vecs[i] = model.FlatVector(row)
	}
	return vecs
}

// predictorAdapter bridges a public Predictor into the engine,
// tagging its failures with the inference-failure sentinel.
type predictorAdapter struct {
	p Predictor
}

func (a *predictorAdapter) Predict(ctx context.Context, window []model.FlatVector) (model.MixturePrediction, error) {
	rows := make([][]float32, len(window))
	for i, v := range window {
		rows[i] = v
	}

	pred, err := a.p.Predict(ctx, rows)
	if err != nil {
		if ctx.Err() != nil {
			return model.MixturePrediction{}, err
		}
		return model.MixturePrediction{}, fmt.Errorf("predictor: %v: %w", err, model.ErrInferenceFailure)
	}
	return model.MixturePrediction{
		Weights: pred.Weights,
		Means:   pred.Means,
		Stddevs: pred.Stddevs,
	}, nil
}

func (a *predictorAdapter) Close() error {
	return a.p.Close()
}

// handlerRenderer delivers frames to the configured FrameHandler.
// A nil handler drops frames, which keeps headless generation valid.
type handlerRenderer struct {
	h FrameHandler
}

func (r *handlerRenderer) Render(_ context.Context, frame model.Frame) error {
	if r.h == nil {
		return nil
	}

	pose := make([]Keypoint, len(frame.Pose))
	for i, kp := range frame.Pose {
		pose[i] = Keypoint{X: kp.X, Y: kp.Y}
	}
	return r.h(Frame{
		Session:     frame.Session,
		Step:        frame.Step,
		Temperature: frame.Temperature,
		Pose:        pose,
		At:          frame.At,
	})
}

func (r *handlerRenderer) Close() error { return nil }
