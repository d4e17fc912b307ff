package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/crimson-sun/marionette/internal/engine/window"
	"github.com/crimson-sun/marionette/internal/model"
)

// Generate runs exactly steps unpaced iterations synchronously,
// emitting each frame to the renderer. It uses the same step cycle as
// a live session but returns when done instead of free-running.
// Generate refuses to run while a live session is active.
func (l *Loop) Generate(ctx context.Context, seed []model.FlatVector, steps int) error {
	l.mu.Lock()
	if State(l.state.Load()) == StateRunning {
		l.mu.Unlock()
		return fmt.Errorf("loop: generate while running: %w", model.ErrSchedulingFault)
	}

	w, err := window.New(seed)
	if err != nil {
		l.mu.Unlock()
		return err
	}

	l.smoother.Reset()
	l.session = uuid.NewString()
	l.err = nil
	l.state.Store(int32(StateRunning))
	session := l.session
	l.mu.Unlock()

	slog.Info("offline generation started", "session", session, "steps", steps)

	for step := 0; step < steps; step++ {
		if err := l.step(ctx, w, session, step); err != nil {
			if errors.Is(err, context.Canceled) {
				l.settle(StateIdle, nil)
			} else {
				l.settle(StateFaulted, err)
			}
			return err
		}
	}

	l.settle(StateIdle, nil)
	return nil
}
