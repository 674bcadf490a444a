package config

import "flag"

// Flags holds the command-line overrides. Zero values mean "not set".
type Flags struct {
	Config    string
	Scene     string
	Debug     bool
	Width     int
	Height    int
	NoAudio   bool
	HUD       string
	LogFile   string
	NoVSync   bool
	Fallback  bool
	ShaderDir string
	PoolCap   int
	FPS       float64
	WriteConf string
}

// RegisterFlags binds the game flags to fs and returns the struct they parse into.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.StringVar(&f.Scene, "scene", "", "Path to the scene file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.BoolVar(&f.NoAudio, "no-audio", false, "Disable audio")
	fs.StringVar(&f.HUD, "hud", "", "Telemetry display: log, terminal or off")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file as well")
	fs.BoolVar(&f.NoVSync, "no-vsync", false, "Present immediately instead of waiting for vblank")
	fs.BoolVar(&f.Fallback, "fallback-adapter", false, "Force the software fallback adapter")
	fs.StringVar(&f.ShaderDir, "shader-dir", "", "Load shaders from this directory instead of the embedded set")
	fs.IntVar(&f.PoolCap, "pool", 0, "Maximum number of live projectiles")
	fs.Float64Var(&f.FPS, "fps", 0, "Frame rate cap, 0 keeps the configured value")
	fs.StringVar(&f.WriteConf, "write-config", "", "Write the effective config to this path and exit")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Scene != "" {
		cfg.Scene.Path = f.Scene
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Width > 0 {
		cfg.Window.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Window.Height = f.Height
	}
	if f.NoAudio {
		cfg.Audio.Enabled = false
	}
	if f.HUD != "" {
		cfg.HUD.Mode = f.HUD
	}
	if f.LogFile != "" {
		cfg.Logging.File = f.LogFile
	}
	if f.NoVSync {
		cfg.Window.VSync = false
	}
	if f.Fallback {
		cfg.Graphics.ForceFallbackAdapter = true
	}
	if f.ShaderDir != "" {
		cfg.Scene.ShaderDir = f.ShaderDir
	}
	if f.PoolCap > 0 {
		cfg.Game.PoolCapacity = f.PoolCap
	}
	if f.FPS > 0 {
		cfg.Engine.FrameLimit = f.FPS
	}
}
