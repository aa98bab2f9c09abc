// Package config loads the board file used by cmd/superloop.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/comalice/superloop/hal"
)

const (
	BoardASCII     = "ascii"
	BoardDotMatrix = "dotmatrix"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Board   string         `yaml:"board"`
	Loop    LoopConfig     `yaml:"loop"`
	Log     LogConfig      `yaml:"log"`
	Metrics MetricsConfig  `yaml:"metrics"`
	Buttons ButtonConfig   `yaml:"buttons"`
	Facts   map[string]any `yaml:"facts"`
	Apps    AppsConfig     `yaml:"apps"`
}

type LoopConfig struct {
	TickRate       time.Duration `yaml:"tickRate"`
	Budget         time.Duration `yaml:"budget"`
	MaxTasks       int           `yaml:"maxTasks"`
	TicksPerSecond uint64        `yaml:"ticksPerSecond"`
	TimeWarnings   bool          `yaml:"timeWarnings"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Address string `yaml:"address"` // empty disables the endpoint
}

type ButtonConfig struct {
	Debounce uint64 `yaml:"debounce"`
}

type AppsConfig struct {
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	HoldLED   HoldLEDConfig   `yaml:"holdled"`
	UserApp   UserAppConfig   `yaml:"userapp"`
	BoardTest BoardTestConfig `yaml:"boardtest"`
}

// Require is an optional precondition expression, e.g. "radio == true".
type HeartbeatConfig struct {
	Enabled bool   `yaml:"enabled"`
	LED     string `yaml:"led"`
	Period  uint32 `yaml:"period"`
	Require string `yaml:"require"`
}

type HoldLEDConfig struct {
	Enabled   bool   `yaml:"enabled"`
	LED       string `yaml:"led"`
	Button    int    `yaml:"button"`
	Threshold uint64 `yaml:"threshold"`
	Require   string `yaml:"require"`
}

type UserAppConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Period          uint32 `yaml:"period"`
	CountsPerColour uint8  `yaml:"countsPerColour"`
	Require         string `yaml:"require"`
}

type BoardTestConfig struct {
	Enabled      bool   `yaml:"enabled"`
	SetupTimeout uint64 `yaml:"setupTimeout"`
	BannerPeriod uint64 `yaml:"bannerPeriod"`
	Require      string `yaml:"require"`
}

// Default returns the dot-matrix board running the heartbeat, hold LED and
// user app at 1 kHz.
func Default() Config {
	return Config{
		Board: BoardDotMatrix,
		Loop: LoopConfig{
			TickRate:       time.Millisecond,
			Budget:         time.Millisecond,
			MaxTasks:       32,
			TicksPerSecond: 1000,
			TimeWarnings:   true,
		},
		Log:     LogConfig{Level: "info", Format: "console"},
		Buttons: ButtonConfig{Debounce: 25},
		Facts:   map[string]any{},
		Apps: AppsConfig{
			Heartbeat: HeartbeatConfig{Enabled: true, LED: "red3", Period: 250},
			HoldLED:   HoldLEDConfig{Enabled: true, LED: "blue0", Button: 0, Threshold: 2000},
			UserApp:   UserAppConfig{Enabled: true, Period: 250, CountsPerColour: 16},
			BoardTest: BoardTestConfig{SetupTimeout: 3000, BannerPeriod: 200},
		},
	}
}

// Load reads a YAML board file over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values the loop and apps cannot default themselves.
func (c Config) Validate() error {
	if c.Board != BoardASCII && c.Board != BoardDotMatrix {
		return fmt.Errorf("%w: board %q", ErrInvalid, c.Board)
	}
	if c.Loop.TickRate <= 0 {
		return fmt.Errorf("%w: tickRate must be positive", ErrInvalid)
	}
	if c.Loop.Budget < 0 {
		return fmt.Errorf("%w: budget must not be negative", ErrInvalid)
	}
	if c.Loop.MaxTasks < 0 {
		return fmt.Errorf("%w: maxTasks must not be negative", ErrInvalid)
	}
	if c.Apps.Heartbeat.Enabled {
		if _, err := hal.ParseLED(c.Apps.Heartbeat.LED); err != nil {
			return fmt.Errorf("%w: heartbeat: %v", ErrInvalid, err)
		}
	}
	if c.Apps.HoldLED.Enabled {
		if _, err := hal.ParseLED(c.Apps.HoldLED.LED); err != nil {
			return fmt.Errorf("%w: holdled: %v", ErrInvalid, err)
		}
		if c.Apps.HoldLED.Button < 0 || c.Apps.HoldLED.Button > 3 {
			return fmt.Errorf("%w: holdled: button %d out of range", ErrInvalid, c.Apps.HoldLED.Button)
		}
	}
	if c.Apps.UserApp.Enabled && c.Board != BoardDotMatrix {
		return fmt.Errorf("%w: userapp needs the dot-matrix board", ErrInvalid)
	}
	if c.Apps.BoardTest.Enabled && c.Board != BoardASCII {
		return fmt.Errorf("%w: boardtest needs the ascii board", ErrInvalid)
	}
	return nil
}
