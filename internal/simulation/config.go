// Package simulation provides configuration for the time travel simulation.
// Values come from built-in defaults, then an optional JSON file, then
// TIMECUBE_* environment variables.
package simulation

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds every tunable of the simulation
type Config struct {
	// Recording and rewind rules
	TimeTravel TimeTravelConfig `json:"time_travel"`

	// Interactive window
	Window WindowConfig `json:"window"`

	// Logging
	Log LogConfig `json:"log"`
}

// TimeTravelConfig defines history sizes and cube behaviour
type TimeTravelConfig struct {
	// Slots per history
	HistoryCapacity int `json:"history_capacity" env:"TIMECUBE_HISTORY_CAPACITY" validate:"gte=2"`
	// Max ticks per recording
	BatteryLife int `json:"battery_life" env:"TIMECUBE_BATTERY_LIFE" validate:"gte=1,ltefield=HistoryCapacity"`
	// Fraction of the interval scrubbed per tick at full deflection
	ScrubRate float64 `json:"scrub_rate" env:"TIMECUBE_SCRUB_RATE" validate:"gt=0,lte=1"`
	// Fixed ticks per second
	TickRate int `json:"tick_rate" env:"TIMECUBE_TICK_RATE" validate:"gte=1,lte=240"`
}

// WindowConfig defines the interactive window
type WindowConfig struct {
	Width  int    `json:"width" env:"TIMECUBE_WINDOW_WIDTH" validate:"gt=0"`
	Height int    `json:"height" env:"TIMECUBE_WINDOW_HEIGHT" validate:"gt=0"`
	Title  string `json:"title" env:"TIMECUBE_WINDOW_TITLE"`
}

// LogConfig defines logging output
type LogConfig struct {
	Level string `json:"level" env:"TIMECUBE_LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns the defaults the prototype was tuned with
func DefaultConfig() *Config {
	return &Config{
		TimeTravel: TimeTravelConfig{
			HistoryCapacity: 3000,
			BatteryLife:     300,
			ScrubRate:       0.01,
			TickRate:        60,
		},
		Window: WindowConfig{
			Width:  960,
			Height: 540,
			Title:  "Time Cube",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads config from a JSON file, applies environment overrides and
// validates the result. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig() // Start with defaults

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Keep defaults
		case err != nil:
			return nil, fmt.Errorf("failed to read simulation config: %w", err)
		default:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse simulation config: %w", err)
			}
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks every field against its bounds
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid simulation config: %w", err)
	}
	return nil
}

// LogLevel maps the configured level name to a slog level
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return slog.LevelInfo
	}
	return level
}
