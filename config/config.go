// Package config handles game configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all game settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Graphics GraphicsConfig `yaml:"graphics"`
	Game     GameConfig     `yaml:"game"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Engine   EngineConfig   `yaml:"engine"`
	Scene    SceneConfig    `yaml:"scene"`
	Logging  LoggingConfig  `yaml:"logging"`
	Audio    AudioConfig    `yaml:"audio"`
	HUD      HUDConfig      `yaml:"hud"`
}

// WindowConfig holds window settings.
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

// GraphicsConfig holds GPU and camera projection settings.
type GraphicsConfig struct {
	ForceFallbackAdapter bool       `yaml:"force_fallback_adapter"`
	Timestamps           bool       `yaml:"timestamps"` // GPU timestamp queries, when the adapter supports them
	ClearColor           [4]float64 `yaml:"clear_color"`
	FOV                  float32    `yaml:"fov"` // Vertical field of view in degrees
	Near                 float32    `yaml:"near"`
	Far                  float32    `yaml:"far"`
}

// GameConfig holds gameplay tuning.
type GameConfig struct {
	LaunchSpeed  float32    `yaml:"launch_speed"`
	PoolCapacity int        `yaml:"pool_capacity"`
	Sensitivity  float32    `yaml:"sensitivity"` // Degrees per pixel of pointer movement
	Muzzle       [3]float32 `yaml:"muzzle"`
	BallRadius   float32    `yaml:"ball_radius"`
	ScoreRadius  float32    `yaml:"score_radius"`
	DebugLines   bool       `yaml:"debug_lines"`
	RenderBalls  bool       `yaml:"render_balls"`
}

// PhysicsConfig holds simulation settings.
type PhysicsConfig struct {
	Gravity     [3]float32 `yaml:"gravity"`
	Timestep    float32    `yaml:"timestep"` // Seconds advanced by one step
	Restitution float32    `yaml:"restitution"`
	Friction    float32    `yaml:"friction"`
}

// EngineConfig holds frame driver settings.
type EngineConfig struct {
	BackgroundTick time.Duration `yaml:"background_tick"`
	Workers        int           `yaml:"workers"`
	FrameLimit     float64       `yaml:"frame_limit"` // Frames per second; 0 = uncapped
}

// SceneConfig holds asset locations. An empty ShaderDir uses the shaders embedded in the binary.
type SceneConfig struct {
	Path      string `yaml:"path"`
	ShaderDir string `yaml:"shader_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Volume     float64 `yaml:"volume"`
	SampleRate int     `yaml:"sample_rate"`
}

// HUDConfig holds telemetry display settings. Mode is one of log, terminal or off.
type HUDConfig struct {
	Mode     string        `yaml:"mode"`
	Interval time.Duration `yaml:"interval"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Bin Thrower",
			VSync:  true,
		},
		Graphics: GraphicsConfig{
			Timestamps: true,
			ClearColor: [4]float64{0.2, 0.2, 0.2, 1},
			FOV:        60,
			Near:       0.2,
			Far:        100,
		},
		Game: GameConfig{
			LaunchSpeed:  10,
			PoolCapacity: 3,
			Sensitivity:  0.1,
			Muzzle:       [3]float32{1, 0.5, -10},
			BallRadius:   0.1,
			ScoreRadius:  0.1,
			DebugLines:   true,
			RenderBalls:  true,
		},
		Physics: PhysicsConfig{
			Gravity:     [3]float32{0, -9.81, 0},
			Timestep:    1.0 / 60.0,
			Restitution: 0.4,
			Friction:    0.5,
		},
		Engine: EngineConfig{
			BackgroundTick: 33 * time.Millisecond,
			Workers:        4,
		},
		Scene: SceneConfig{
			Path: "assets/map.json",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
		Audio: AudioConfig{
			Enabled:    true,
			Volume:     0.6,
			SampleRate: 44100,
		},
		HUD: HUDConfig{
			Mode:     "log",
			Interval: time.Second,
		},
	}
}

// Validate reports the first setting that cannot drive the game.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size %dx%d: %w", c.Window.Width, c.Window.Height, ErrInvalid)
	case c.Game.PoolCapacity <= 0:
		return fmt.Errorf("game.pool_capacity %d: %w", c.Game.PoolCapacity, ErrInvalid)
	case c.Game.BallRadius <= 0 || c.Game.ScoreRadius <= 0:
		return fmt.Errorf("game radii must be positive: %w", ErrInvalid)
	case c.Physics.Timestep <= 0:
		return fmt.Errorf("physics.timestep %v: %w", c.Physics.Timestep, ErrInvalid)
	case c.Engine.BackgroundTick <= 0:
		return fmt.Errorf("engine.background_tick %v: %w", c.Engine.BackgroundTick, ErrInvalid)
	case c.Engine.FrameLimit < 0:
		return fmt.Errorf("engine.frame_limit %v: %w", c.Engine.FrameLimit, ErrInvalid)
	case c.Graphics.Near <= 0 || c.Graphics.Far <= c.Graphics.Near:
		return fmt.Errorf("graphics near/far %v/%v: %w", c.Graphics.Near, c.Graphics.Far, ErrInvalid)
	case c.HUD.Mode != "log" && c.HUD.Mode != "terminal" && c.HUD.Mode != "off":
		return fmt.Errorf("hud.mode %q: %w", c.HUD.Mode, ErrInvalid)
	}
	return nil
}
