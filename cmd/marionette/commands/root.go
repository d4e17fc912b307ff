package commands

import (
	"github.com/spf13/cobra"

	"github.com/crimson-sun/marionette/internal/config"
	"github.com/crimson-sun/marionette/internal/logging"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "marionette",
	Short: "Real-time dance animation from a mixture-density sequence model",
	Long: `Marionette drives real-time animation of a dancing figure from a
pretrained mixture-density sequence model.

Each step feeds a sliding window of recent poses to the model, samples
the returned mixture under a temperature control, smooths the result,
and emits one animation frame.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(seedCmd)
}

// loadConfig loads configuration and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// initLogging sets up slog for the resolved configuration.
func initLogging(cfg config.Config) {
	framesOnStdout := cfg.Render.Sink == "stdout"
	logging.Init(framesOnStdout, logging.ParseLevel(cfg.Log.Level))
}
