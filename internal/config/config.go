package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// Config holds all Marionette configuration.
type Config struct {
	Model  ModelConfig  `yaml:"model"`
	Engine EngineConfig `yaml:"engine"`
	Render RenderConfig `yaml:"render"`
	Log    LogConfig    `yaml:"log"`
}

// ModelConfig describes the sequence model and its input geometry.
type ModelConfig struct {
	Path      string `yaml:"path"`
	Window    int    `yaml:"window"`    // W, sliding window length
	Keypoints int    `yaml:"keypoints"` // K; FlatVector dimensionality is 2K
}

// Dim returns D, the FlatVector dimensionality.
func (m ModelConfig) Dim() int {
	return 2 * m.Keypoints
}

// EngineConfig holds sampling and smoothing settings.
type EngineConfig struct {
	Temperature    float64       `yaml:"temperature"`
	TemperatureMin float64       `yaml:"temperature_min"`
	TemperatureMax float64       `yaml:"temperature_max"`
	Pacing         time.Duration `yaml:"pacing"`
	SmoothBase     float64       `yaml:"smooth_base"`
	SmoothDecay    float64       `yaml:"smooth_decay"`
	SmoothDepth    int           `yaml:"smooth_depth"`
}

// RenderConfig holds frame sink settings.
type RenderConfig struct {
	Sink       string `yaml:"sink"` // "stdout" or "ws"
	Addr       string `yaml:"addr"` // ws listen address
	RecordPath string `yaml:"record_path"`
	Pretty     bool   `yaml:"pretty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Model: ModelConfig{
			Path:      "models/dancer.onnx",
			Window:    30,
			Keypoints: 29,
		},
		Engine: EngineConfig{
			Temperature:    1.0,
			TemperatureMin: 0.1,
			TemperatureMax: 5.0,
			Pacing:         30 * time.Millisecond,
			SmoothBase:     0.6,
			SmoothDecay:    0.5,
			SmoothDepth:    5,
		},
		Render: RenderConfig{
			Sink: "stdout",
			Addr: "localhost:8990",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, overlaid by the optional
// YAML file at path, overlaid by MARIONETTE_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.Model.Path = getenv("MARIONETTE_MODEL_PATH", cfg.Model.Path)
	cfg.Model.Window = getenvInt("MARIONETTE_WINDOW", cfg.Model.Window)
	cfg.Model.Keypoints = getenvInt("MARIONETTE_KEYPOINTS", cfg.Model.Keypoints)
	cfg.Engine.Temperature = getenvFloat("MARIONETTE_TEMPERATURE", cfg.Engine.Temperature)
	cfg.Engine.Pacing = getenvDuration("MARIONETTE_PACING", cfg.Engine.Pacing)
	cfg.Render.Sink = getenv("MARIONETTE_SINK", cfg.Render.Sink)
	cfg.Render.Addr = getenv("MARIONETTE_ADDR", cfg.Render.Addr)
	cfg.Render.RecordPath = getenv("MARIONETTE_RECORD_PATH", cfg.Render.RecordPath)
	cfg.Log.Level = getenv("MARIONETTE_LOG_LEVEL", cfg.Log.Level)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Model.Window <= 0 {
		return fmt.Errorf("config: window must be positive, got %d", c.Model.Window)
	}
	if c.Model.Keypoints <= 0 {
		return fmt.Errorf("config: keypoints must be positive, got %d", c.Model.Keypoints)
	}
	if c.Engine.TemperatureMin <= 0 || c.Engine.TemperatureMax < c.Engine.TemperatureMin {
		return fmt.Errorf("config: bad temperature bounds [%g, %g]",
			c.Engine.TemperatureMin, c.Engine.TemperatureMax)
	}
	if c.Engine.Temperature < c.Engine.TemperatureMin || c.Engine.Temperature > c.Engine.TemperatureMax {
		return fmt.Errorf("config: temperature %g outside [%g, %g]",
			c.Engine.Temperature, c.Engine.TemperatureMin, c.Engine.TemperatureMax)
	}
	switch c.Render.Sink {
	case "stdout", "ws":
	default:
		return fmt.Errorf("config: unknown sink %q", c.Render.Sink)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
