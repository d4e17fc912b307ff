package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MARIONETTE_MODEL_PATH", "MARIONETTE_WINDOW", "MARIONETTE_KEYPOINTS",
		"MARIONETTE_TEMPERATURE", "MARIONETTE_PACING", "MARIONETTE_SINK",
		"MARIONETTE_ADDR", "MARIONETTE_RECORD_PATH", "MARIONETTE_LOG_LEVEL",
	} {
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Model.Window != 30 {
		t.Fatalf("expected default window 30, got %d", cfg.Model.Window)
	}
	if cfg.Model.Keypoints != 29 {
		t.Fatalf("expected default keypoints 29, got %d", cfg.Model.Keypoints)
	}
	if cfg.Model.Dim() != 58 {
		t.Fatalf("expected dim 58, got %d", cfg.Model.Dim())
	}
	if cfg.Engine.Temperature != 1.0 {
		t.Fatalf("expected default temperature 1.0, got %v", cfg.Engine.Temperature)
	}
	if cfg.Engine.Pacing != 30*time.Millisecond {
		t.Fatalf("expected default pacing 30ms, got %v", cfg.Engine.Pacing)
	}
	if cfg.Render.Sink != "stdout" {
		t.Fatalf("expected default sink 'stdout', got %q", cfg.Render.Sink)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	os.Setenv("MARIONETTE_WINDOW", "60")
	os.Setenv("MARIONETTE_TEMPERATURE", "0.7")
	os.Setenv("MARIONETTE_PACING", "50ms")
	os.Setenv("MARIONETTE_SINK", "ws")
	defer clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Model.Window != 60 {
		t.Fatalf("expected window 60, got %d", cfg.Model.Window)
	}
	if cfg.Engine.Temperature != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", cfg.Engine.Temperature)
	}
	if cfg.Engine.Pacing != 50*time.Millisecond {
		t.Fatalf("expected pacing 50ms, got %v", cfg.Engine.Pacing)
	}
	if cfg.Render.Sink != "ws" {
		t.Fatalf("expected sink 'ws', got %q", cfg.Render.Sink)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "marionette.yaml")
	data := []byte(`
model:
  path: models/custom.onnx
  window: 45
engine:
  temperature: 0.8
render:
  sink: ws
  addr: localhost:9000
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Model.Path != "models/custom.onnx" {
		t.Fatalf("expected custom model path, got %q", cfg.Model.Path)
	}
	if cfg.Model.Window != 45 {
		t.Fatalf("expected window 45, got %d", cfg.Model.Window)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Model.Keypoints != 29 {
		t.Fatalf("expected default keypoints 29, got %d", cfg.Model.Keypoints)
	}
	if cfg.Render.Addr != "localhost:9000" {
		t.Fatalf("expected addr localhost:9000, got %q", cfg.Render.Addr)
	}
}

func TestLoad_EnvBeatsYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "marionette.yaml")
	if err := os.WriteFile(path, []byte("model:\n  window: 45\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	os.Setenv("MARIONETTE_WINDOW", "90")
	defer clearEnv(t)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model.Window != 90 {
		t.Fatalf("expected env to win with window 90, got %d", cfg.Model.Window)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"zero window", "MARIONETTE_WINDOW", "0", "window"},
		{"negative keypoints", "MARIONETTE_KEYPOINTS", "-4", "keypoints"},
		{"temperature out of bounds", "MARIONETTE_TEMPERATURE", "50", "temperature"},
		{"unknown sink", "MARIONETTE_SINK", "carrier-pigeon", "sink"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			os.Setenv(tt.key, tt.val)
			defer clearEnv(t)

			_, err := Load("")
			if err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.val)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error to mention %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestGetenvDuration(t *testing.T) {
	const key = "MARIONETTE_TEST_DURATION"
	os.Unsetenv(key)
	if got := getenvDuration(key, time.Second); got != time.Second {
		t.Fatalf("expected fallback 1s, got %v", got)
	}

	os.Setenv(key, "250ms")
	defer os.Unsetenv(key)
	if got := getenvDuration(key, time.Second); got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", got)
	}

	os.Setenv(key, "not-a-duration")
	if got := getenvDuration(key, time.Second); got != time.Second {
		t.Fatalf("expected fallback on parse failure, got %v", got)
	}
}
