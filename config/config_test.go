package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, float32(10), cfg.Game.LaunchSpeed)
	assert.Equal(t, 3, cfg.Game.PoolCapacity)
	assert.Equal(t, [3]float32{1, 0.5, -10}, cfg.Game.Muzzle)
	assert.Equal(t, [3]float32{0, -9.81, 0}, cfg.Physics.Gravity)
	assert.Equal(t, 33*time.Millisecond, cfg.Engine.BackgroundTick)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	yamlContent := `
window:
  width: 1920
  height: 1080
game:
  pool_capacity: 5
  sensitivity: 0.25
engine:
  background_tick: 50ms
hud:
  mode: terminal
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-config", path, "-width", "800", "-debug", "-no-audio"}))

	cfg, err := Load(flags)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 1080, cfg.Window.Height)
	assert.Equal(t, 5, cfg.Game.PoolCapacity)
	assert.Equal(t, float32(0.25), cfg.Game.Sensitivity)
	assert.Equal(t, 50*time.Millisecond, cfg.Engine.BackgroundTick)
	assert.Equal(t, "terminal", cfg.HUD.Mode)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Audio.Enabled)
	// Untouched sections keep their defaults.
	assert.Equal(t, float32(10), cfg.Game.LaunchSpeed)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(&Flags{Config: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("game:\n  pool_capacity: 0\n"), 0o644))

	_, err := Load(&Flags{Config: path})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"window", func(c *Config) { c.Window.Width = 0 }},
		{"pool", func(c *Config) { c.Game.PoolCapacity = -1 }},
		{"radius", func(c *Config) { c.Game.ScoreRadius = 0 }},
		{"timestep", func(c *Config) { c.Physics.Timestep = 0 }},
		{"tick", func(c *Config) { c.Engine.BackgroundTick = 0 }},
		{"frame limit", func(c *Config) { c.Engine.FrameLimit = -1 }},
		{"depth", func(c *Config) { c.Graphics.Far = c.Graphics.Near }},
		{"hud", func(c *Config) { c.HUD.Mode = "fancy" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := Default()
	cfg.Game.PoolCapacity = 7
	cfg.HUD.Mode = "off"
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := Load(&Flags{Config: path})
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
