package marionette

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"
)

// constantPredictor always returns a single-component mixture with
// zero variance, so every sampled pose is exactly the mean.
type constantPredictor struct {
	mean   float32
	failAt int // fail on the Nth call when > 0
	calls  int
	closed bool
}

func (p *constantPredictor) Predict(_ context.Context, window [][]float32) (Prediction, error) {
	p.calls++
	if p.failAt > 0 && p.calls >= p.failAt {
		return Prediction{}, errors.New("backend offline")
	}
	dim := len(window[len(window)-1])
	means := make([]float32, dim)
	for i := range means {
		means[i] = p.mean
	}
	return Prediction{
		Weights: []float32{1},
		Means:   means,
		Stddevs: make([]float32, dim),
	}, nil
}

func (p *constantPredictor) Close() error {
	p.closed = true
	return nil
}

func seedRows(rows, dim int) [][]float32 {
	out := make([][]float32, rows)
	for i := range out {
		row := make([]float32, dim)
		for j := range row {
			row[j] = float32(i + 1)
		}
		out[i] = row
	}
	return out
}

func TestGenerate_DeliversFrames(t *testing.T) {
	var frames []Frame
	m, err := New(
		WithPredictor(&constantPredictor{mean: 100}),
		WithFrameHandler(func(f Frame) error {
			frames = append(frames, f)
			return nil
		}),
		WithRandSource(rand.NewSource(1)),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	if err := m.Generate(context.Background(), seedRows(4, 6), 10); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(frames) != 10 {
		t.Fatalf("frames = %d, want 10", len(frames))
	}
	for i, f := range frames {
		if f.Step != i {
			t.Errorf("frame %d: step = %d", i, f.Step)
		}
		if len(f.Pose) != 3 {
			t.Fatalf("frame %d: pose has %d keypoints, want 3", i, len(f.Pose))
		}
	}
	// Zero variance pins sampled values at the mean, so every frame
	// sits at (100, 100) once smoothing history agrees.
	last := frames[len(frames)-1]
	for i, kp := range last.Pose {
		if kp.X < 99.9 || kp.X > 100.1 || kp.Y < 99.9 || kp.Y > 100.1 {
			t.Errorf("keypoint %d = (%g, %g), want ~(100, 100)", i, kp.X, kp.Y)
		}
	}
}

func TestStartStop_Lifecycle(t *testing.T) {
	got := make(chan Frame, 64)
	m, err := New(
		WithPredictor(&constantPredictor{mean: 50}),
		WithFrameHandler(func(f Frame) error {
			select {
			case got <- f:
			default:
			}
			return nil
		}),
		WithPacing(time.Millisecond),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	if err := m.Start(seedRows(3, 4)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !m.Running() {
		t.Fatal("not running after Start")
	}
	if m.Session() == "" {
		t.Error("empty session ID")
	}

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("no frame within 2s")
	}

	m.Stop()
	if m.Running() {
		t.Error("still running after Stop")
	}
	if err := m.Err(); err != nil {
		t.Errorf("Err after clean stop: %v", err)
	}
}

func TestSetTemperature_Clamped(t *testing.T) {
	m, err := New(
		WithPredictor(&constantPredictor{mean: 1}),
		WithTemperatureBounds(0.2, 3),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	if got := m.SetTemperature(100); got != 3 {
		t.Errorf("SetTemperature(100) = %g, want 3", got)
	}
	if got := m.Temperature(); got != 3 {
		t.Errorf("Temperature = %g, want 3", got)
	}
	if got := m.SetTemperature(0.01); got != 0.2 {
		t.Errorf("SetTemperature(0.01) = %g, want 0.2", got)
	}
	if got := m.SetTemperature(1.5); got != 1.5 {
		t.Errorf("SetTemperature(1.5) = %g, want 1.5", got)
	}
}

func TestNew_RejectsBadBounds(t *testing.T) {
	_, err := New(
		WithPredictor(&constantPredictor{mean: 1}),
		WithTemperatureBounds(2, 1),
	)
	if err == nil {
		t.Fatal("expected error for inverted bounds")
	}
}

func TestGenerate_PredictorFailure(t *testing.T) {
	m, err := New(
		WithPredictor(&constantPredictor{mean: 1, failAt: 3}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	if err := m.Generate(context.Background(), seedRows(3, 4), 10); err == nil {
		t.Fatal("expected failure")
	}
	if m.Err() == nil {
		t.Error("Err not recorded after fault")
	}
}

func TestGenerate_NilHandlerOK(t *testing.T) {
	m, err := New(WithPredictor(&constantPredictor{mean: 1}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	if err := m.Generate(context.Background(), seedRows(3, 4), 5); err != nil {
		t.Fatalf("Generate without handler: %v", err)
	}
}

func TestClose_ReleasesPredictor(t *testing.T) {
	p := &constantPredictor{mean: 1}
	m, err := New(WithPredictor(p))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !p.closed {
		t.Error("predictor not closed")
	}
}
