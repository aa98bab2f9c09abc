package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	data := []byte(`
board: ascii
loop:
  tickRate: 2ms
  timeWarnings: false
log:
  level: debug
  format: json
metrics:
  address: ":9100"
facts:
  radio: true
  leds: 8
apps:
  heartbeat:
    led: white
    period: 100
  holdled:
    enabled: false
  userapp:
    enabled: false
  boardtest:
    enabled: true
    require: radio == true
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Board != BoardASCII {
		t.Errorf("Expected ascii board, got %s", cfg.Board)
	}
	if cfg.Loop.TickRate != 2*time.Millisecond {
		t.Errorf("Expected 2ms tick rate, got %v", cfg.Loop.TickRate)
	}
	if cfg.Loop.TimeWarnings {
		t.Error("Expected time warnings off")
	}
	if cfg.Loop.TicksPerSecond != 1000 {
		t.Errorf("Expected default ticks per second, got %d", cfg.Loop.TicksPerSecond)
	}
	if cfg.Apps.Heartbeat.LED != "white" || cfg.Apps.Heartbeat.Period != 100 || !cfg.Apps.Heartbeat.Enabled {
		t.Errorf("Unexpected heartbeat config %+v", cfg.Apps.Heartbeat)
	}
	if cfg.Apps.BoardTest.SetupTimeout != 3000 || cfg.Apps.BoardTest.Require != "radio == true" {
		t.Errorf("Unexpected boardtest config %+v", cfg.Apps.BoardTest)
	}
	if cfg.Facts["radio"] != true {
		t.Errorf("Expected radio fact, got %v", cfg.Facts)
	}
	if cfg.Metrics.Address != ":9100" {
		t.Errorf("Expected metrics address, got %q", cfg.Metrics.Address)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := map[string]string{
		"board":       "board: nucleo\n",
		"tick rate":   "loop:\n  tickRate: 0s\n",
		"led":         "apps:\n  heartbeat:\n    led: magenta\n",
		"button":      "apps:\n  holdled:\n    button: 4\n",
		"userapp":     "board: ascii\napps:\n  holdled:\n    led: white\n",
		"boardtest":   "apps:\n  boardtest:\n    enabled: true\n",
		"not yaml":    "loop: [",
		"bad budget":  "loop:\n  budget: -1ms\n",
		"bad maxTask": "loop:\n  maxTasks: -2\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data)); err == nil {
				t.Errorf("Expected error for %q", data)
			}
		})
	}
}
