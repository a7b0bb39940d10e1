package simulation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timecube.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverlaysFile(t *testing.T) {
	path := writeConfig(t, `{"time_travel": {"battery_life": 120}, "log": {"level": "debug"}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.TimeTravel.BatteryLife)
	assert.Equal(t, 3000, cfg.TimeTravel.HistoryCapacity)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"time_travel": {"battery_life": 120}}`)
	t.Setenv("TIMECUBE_BATTERY_LIFE", "90")
	t.Setenv("TIMECUBE_SCRUB_RATE", "0.05")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.TimeTravel.BatteryLife)
	assert.Equal(t, 0.05, cfg.TimeTravel.ScrubRate)
}

func TestLoadConfigBadEnv(t *testing.T) {
	t.Setenv("TIMECUBE_TICK_RATE", "fast")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoadConfigBadJSON(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `{"time_travel": `))
	assert.ErrorContains(t, err, "failed to parse simulation config")
}

func TestValidateRejectsOutOfBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"capacity too small", func(c *Config) { c.TimeTravel.HistoryCapacity = 1 }},
		{"no battery", func(c *Config) { c.TimeTravel.BatteryLife = 0 }},
		{"battery beyond capacity", func(c *Config) { c.TimeTravel.BatteryLife = 4000 }},
		{"zero scrub rate", func(c *Config) { c.TimeTravel.ScrubRate = 0 }},
		{"tick rate too high", func(c *Config) { c.TimeTravel.TickRate = 1000 }},
		{"no window", func(c *Config) { c.Window.Width = 0 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), "invalid simulation config")
		})
	}
}
