package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/crimson-sun/marionette/internal/engine/sampler"
	"github.com/crimson-sun/marionette/internal/engine/smoother"
	"github.com/crimson-sun/marionette/internal/engine/window"
	"github.com/crimson-sun/marionette/internal/infer"
	"github.com/crimson-sun/marionette/internal/model"
	"github.com/crimson-sun/marionette/internal/render"
)

// DefaultPacing bounds the visual update rate independent of raw
// inference throughput.
const DefaultPacing = 30 * time.Millisecond

// State is the loop lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Config holds the loop's tunables.
type Config struct {
	// Pacing is the pause between steps. Zero disables pacing (offline
	// generation); negative falls back to DefaultPacing.
	Pacing time.Duration

	// Temperature is the initial sampling temperature.
	Temperature float64
}

// Loop drives autoregressive generation: feed the sliding window to
// the predictor, sample the mixture output, advance the window with
// the sample, smooth, emit, pace, repeat.
//
// The window and smoothing history are mutated only by the loop's own
// step goroutine; steps never overlap. Stop takes effect at a
// suspension boundary (the inference await or the pacing delay) — a
// step already past the inference await finishes sampling, smoothing,
// and emitting before observing it, while a result that arrives after
// stop is discarded with the window untouched.
type Loop struct {
	predictor infer.Predictor
	sampler   *sampler.Sampler
	smoother  *smoother.Smoother
	renderer  render.Renderer
	pacing    time.Duration

	// temperature is read once per step (last-write-wins snapshot).
	temperature atomic.Uint64

	state atomic.Int32

	mu      sync.Mutex
	session string
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// New creates an idle Loop over the given collaborators.
func New(p infer.Predictor, s *sampler.Sampler, sm *smoother.Smoother, r render.Renderer, cfg Config) *Loop {
	pacing := cfg.Pacing
	if pacing < 0 {
		pacing = DefaultPacing
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = 1
	}

	l := &Loop{
		predictor: p,
		sampler:   s,
		smoother:  sm,
		renderer:  r,
		pacing:    pacing,
	}
	l.temperature.Store(math.Float64bits(temp))
	return l
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Err returns the fault that halted the loop, or nil.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Session returns the current (or most recent) session ID.
func (l *Loop) Session() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session
}

// Temperature returns the current sampling temperature.
func (l *Loop) Temperature() float64 {
	return math.Float64frombits(l.temperature.Load())
}

// SetTemperature replaces the sampling temperature. The new value is
// observed by the next step; the in-flight step keeps its snapshot.
func (l *Loop) SetTemperature(t float64) {
	l.temperature.Store(math.Float64bits(t))
}

// Start begins a generation session from the given seed window.
// Calling Start while the loop is running is a no-op; starting from
// Faulted begins a fresh session. The seed must be non-empty and
// rectangular.
func (l *Loop) Start(seed []model.FlatVector) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if State(l.state.Load()) == StateRunning {
		return nil
	}

	w, err := window.New(seed)
	if err != nil {
		return err
	}

	l.smoother.Reset()
	l.session = uuid.NewString()
	l.err = nil

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})
	l.state.Store(int32(StateRunning))

	slog.Info("generation started",
		"session", l.session, "window", w.Len(), "dim", w.Dim(),
		"temperature", l.Temperature(), "pacing", l.pacing)

	go l.run(ctx, w, l.session, l.done)
	return nil
}

// Stop halts a running session at the next suspension boundary and
// waits for the loop to settle. Stopping an idle or faulted loop is a
// no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	if State(l.state.Load()) != StateRunning {
		l.mu.Unlock()
		return
	}
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	cancel()
	<-done
}

func (l *Loop) run(ctx context.Context, w *window.Window, session string, done chan struct{}) {
	defer close(done)

	for step := 0; ; step++ {
		if err := l.step(ctx, w, session, step); err != nil {
			if errors.Is(err, context.Canceled) {
				slog.Info("generation stopped", "session", session, "steps", step)
				l.settle(StateIdle, nil)
				return
			}
			slog.Error("generation faulted", "session", session, "step", step, "err", err)
			l.settle(StateFaulted, err)
			return
		}

		if l.pacing > 0 {
			select {
			case <-ctx.Done():
				slog.Info("generation stopped", "session", session, "steps", step+1)
				l.settle(StateIdle, nil)
				return
			case <-time.After(l.pacing):
			}
		} else if ctx.Err() != nil {
			slog.Info("generation stopped", "session", session, "steps", step+1)
			l.settle(StateIdle, nil)
			return
		}
	}
}

// step runs one full generation iteration. It either completes
// entirely (window advanced, history updated, frame emitted) or
// returns before any state was touched, so no component observes a
// half-applied step.
func (l *Loop) step(ctx context.Context, w *window.Window, session string, step int) error {
	pred, err := l.predictor.Predict(ctx, w.Current())
	// A stop that arrived during the await discards the in-flight
	// result before it can touch the window.
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	if err != nil {
		return fmt.Errorf("loop: inference: %w", err)
	}

	temp := l.Temperature()
	vec, err := l.sampler.Sample(pred, temp)
	if err != nil {
		return fmt.Errorf("loop: sample: %w", err)
	}

	if err := w.Advance(vec); err != nil {
		return fmt.Errorf("loop: %w", err)
	}

	pose := l.smoother.Smooth(model.PoseFromFlat(vec))

	frame := model.Frame{
		Session:     session,
		Step:        step,
		Temperature: temp,
		Pose:        pose,
		At:          time.Now(),
	}
	if err := l.renderer.Render(ctx, frame); err != nil {
		return fmt.Errorf("loop: render: %w", err)
	}
	return nil
}

func (l *Loop) settle(state State, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
	l.state.Store(int32(state))
}
