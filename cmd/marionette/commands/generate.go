package commands

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/marionette/internal/engine/sampler"
	"github.com/crimson-sun/marionette/internal/engine/smoother"
	"github.com/crimson-sun/marionette/internal/infer"
	"github.com/crimson-sun/marionette/internal/loop"
	"github.com/crimson-sun/marionette/internal/model"
	"github.com/crimson-sun/marionette/internal/seed"
)

var (
	genSteps    int
	genOut      string
	genSeedPath string
	genRandSeed int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate frames offline to a JSON file",
	Long: `Generate a fixed number of frames without pacing and write the
smoothed poses as a [][]float32 JSON sequence. The output file is
valid seed input for later runs.

Examples:
  marionette generate --steps 200 --out dance.json
  marionette generate --steps 60 --seed-file recording.json --rand-seed 7`,
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

		src := rand.NewSource(genRandSeed)
		if genRandSeed == 0 {
			src = rand.NewSource(time.Now().UnixNano())
		}

		collector := &frameCollector{}
		l := loop.New(
			predictor,
			sampler.New(src),
			smoother.New(cfg.Engine.SmoothBase, cfg.Engine.SmoothDecay, cfg.Engine.SmoothDepth),
			collector,
			loop.Config{Pacing: 0, Temperature: cfg.Engine.Temperature},
		)

		seedVecs, err := seedSource(genSeedPath).Seed(cfg.Model.Window, cfg.Model.Dim())
		if err != nil {
			return err
		}
		if err := l.Generate(cmd.Context(), seedVecs, genSteps); err != nil {
			return err
		}

		if err := seed.WriteFile(genOut, collector.Vectors()); err != nil {
			return err
		}
		fmt.Printf("wrote %d frames to %s\n", genSteps, genOut)
		return nil
	},
}

func init() {
	generateCmd.Flags().IntVar(&genSteps, "steps", 120, "number of frames to generate")
	generateCmd.Flags().StringVar(&genOut, "out", "dance.json", "output file")
	generateCmd.Flags().StringVar(&genSeedPath, "seed-file", "", "JSON pose sequence to seed the window")
	generateCmd.Flags().Int64Var(&genRandSeed, "rand-seed", 0, "random seed (0 uses the clock)")
}

// frameCollector gathers emitted poses for the file writer.
type frameCollector struct {
	mu   sync.Mutex
	vecs []model.FlatVector
}

func (c *frameCollector) Render(_ context.Context, frame model.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vecs = append(c.vecs, frame.Pose.Flatten())
	return nil
}

func (c *frameCollector) Close() error { return nil }

func (c *frameCollector) Vectors() []model.FlatVector {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vecs
}
