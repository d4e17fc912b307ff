package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/marionette/internal/seed"
)

var seedOut string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write a synthetic seed window to a JSON file",
	Long: `Write a deterministic standing-figure seed window sized for the
configured model geometry. Useful when no recorded pose sequence is
available to seed a session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		vecs, err := seed.SyntheticSource{}.Seed(cfg.Model.Window, cfg.Model.Dim())
		if err != nil {
			return err
		}
		if err := seed.WriteFile(seedOut, vecs); err != nil {
			return err
		}
		fmt.Printf("wrote %d x %d seed window to %s\n", cfg.Model.Window, cfg.Model.Dim(), seedOut)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedOut, "out", "seed.json", "output file")
}
