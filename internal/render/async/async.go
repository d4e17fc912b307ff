package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crimson-sun/marionette/internal/model"
	"github.com/crimson-sun/marionette/internal/render"
)

const (
	defaultBufferSize   = 256
	defaultDrainTimeout = 5 * time.Second
)

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 256.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithOnError sets the callback invoked when the inner renderer fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Render return immediately (dropping the frame)
// when the buffer is full, instead of blocking. Use for sinks where a
// lost frame is preferable to a stalled animation.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// Async decouples the generation loop from a slow renderer via a
// buffered channel. The loop writes into the channel; a background
// goroutine drains it to the wrapped renderer. Errors from the inner
// renderer are passed to errFunc rather than propagated, so a flaky
// sink never halts generation.
type Async struct {
	inner      render.Renderer
	ch         chan model.Frame
	done       chan struct{}
	errFunc    func(error)
	bufSize    int
	dropOnFull bool
	closeOnce  sync.Once
}

// New wraps a render.Renderer in an async channel-based writer.
// The background drain goroutine starts immediately.
func New(inner render.Renderer, opts ...Option) *Async {
	a := &Async{
		inner:   inner,
		bufSize: defaultBufferSize,
		errFunc: func(err error) { slog.Warn("async render error", "error", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan model.Frame, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Render sends the frame into the channel. By default, blocks if the
// channel is full (backpressure). With WithDropOnFull, returns nil
// immediately and the frame is lost.
func (a *Async) Render(_ context.Context, frame model.Frame) error {
	if a.dropOnFull {
		select {
		case a.ch <- frame:
		default:
			slog.Warn("async render buffer full, dropping frame",
				"session", frame.Session, "step", frame.Step)
		}
		return nil
	}
	a.ch <- frame
	return nil
}

// Close closes the channel, waits for the drain goroutine to finish
// (with a timeout), then closes the inner renderer.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.ch)
		select {
		case <-a.done:
		case <-time.After(defaultDrainTimeout):
			slog.Warn("async render drain timed out")
		}
		err = a.inner.Close()
	})
	return err
}

func (a *Async) drain() {
	defer close(a.done)
	for frame := range a.ch {
		if err := a.inner.Render(context.Background(), frame); err != nil {
			a.errFunc(err)
		}
	}
}
