package commands

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/marionette/internal/config"
	"github.com/crimson-sun/marionette/internal/engine/sampler"
	"github.com/crimson-sun/marionette/internal/engine/smoother"
	"github.com/crimson-sun/marionette/internal/infer"
	"github.com/crimson-sun/marionette/internal/loop"
	"github.com/crimson-sun/marionette/internal/render"
	"github.com/crimson-sun/marionette/internal/render/async"
	"github.com/crimson-sun/marionette/internal/render/multi"
	"github.com/crimson-sun/marionette/internal/render/record"
	"github.com/crimson-sun/marionette/internal/render/stdout"
	"github.com/crimson-sun/marionette/internal/render/wsrender"
	"github.com/crimson-sun/marionette/internal/seed"
)

var runSeedPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a live generation session",
	Long: `Run a live generation session, streaming one frame per step to the
configured sink until interrupted.

The session is seeded from --seed-file (a [][]float32 JSON pose
sequence) when given, otherwise from a synthetic standing pose.

Examples:
  marionette run --seed-file recording.json
  MARIONETTE_SINK=ws marionette run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		initLogging(cfg)

		predictor, err := infer.NewONNX(cfg.Model.Path)
		if err != nil {
			return err
		}
		defer predictor.Close()

		renderer, err := buildRenderer(cfg)
		if err != nil {
			return err
		}
		defer renderer.Close()

		l := loop.New(
			predictor,
			sampler.New(rand.NewSource(time.Now().UnixNano())),
			smoother.New(cfg.Engine.SmoothBase, cfg.Engine.SmoothDecay, cfg.Engine.SmoothDepth),
			renderer,
			loop.Config{Pacing: cfg.Engine.Pacing, Temperature: cfg.Engine.Temperature},
		)

		seedVecs, err := seedSource(runSeedPath).Seed(cfg.Model.Window, cfg.Model.Dim())
		if err != nil {
			return err
		}
		if err := l.Start(seedVecs); err != nil {
			return err
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case sig := <-sigCh:
				slog.Info("shutting down", "signal", sig.String())
				l.Stop()
				return nil
			case <-ticker.C:
				if l.State() == loop.StateFaulted {
					return fmt.Errorf("session faulted: %w", l.Err())
				}
			}
		}
	},
}

func init() {
	runCmd.Flags().StringVar(&runSeedPath, "seed-file", "", "JSON pose sequence to seed the window")
}

func seedSource(path string) seed.Source {
	if path != "" {
		return seed.FileSource{Path: path}
	}
	return seed.SyntheticSource{}
}

// buildRenderer assembles the configured sink, wrapped with the
// session recorder when a recording path is set.
func buildRenderer(cfg config.Config) (render.Renderer, error) {
	var primary render.Renderer
	switch cfg.Render.Sink {
	case "ws":
		hub := wsrender.New()
		go func() {
			slog.Info("websocket renderer listening", "addr", cfg.Render.Addr)
			if err := http.ListenAndServe(cfg.Render.Addr, hub); err != nil {
				slog.Error("websocket listener failed", "err", err)
			}
		}()
		primary = hub
	default:
		primary = stdout.New(cfg.Render.Pretty)
	}

	if cfg.Render.RecordPath == "" {
		return primary, nil
	}
	rec, err := record.Open(cfg.Render.RecordPath)
	if err != nil {
		return nil, err
	}
	// SQLite writes must not stall the step cadence.
	return multi.New(primary, async.New(rec, async.WithDropOnFull())), nil
}
