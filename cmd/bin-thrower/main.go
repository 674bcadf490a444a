// Command bin-thrower opens a window with the level from the config and lets the player throw balls at the bin.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/DatBlindArcher/bin-thrower/common/logger"
	"github.com/DatBlindArcher/bin-thrower/config"
	"github.com/DatBlindArcher/bin-thrower/engine"
	"github.com/DatBlindArcher/bin-thrower/engine/audio"
	"github.com/DatBlindArcher/bin-thrower/engine/camera"
	"github.com/DatBlindArcher/bin-thrower/engine/game"
	"github.com/DatBlindArcher/bin-thrower/engine/hud"
	"github.com/DatBlindArcher/bin-thrower/engine/physics"
	"github.com/DatBlindArcher/bin-thrower/engine/profiler"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer/shader"
	"github.com/DatBlindArcher/bin-thrower/engine/scene"
	"github.com/DatBlindArcher/bin-thrower/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if flags.WriteConf != "" {
		if err := cfg.SaveTo(flags.WriteConf); err != nil {
			fmt.Fprintf(os.Stderr, "write config: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// The terminal HUD owns stdout, so console logging is off while it runs.
	log := logger.New(cfg.Logging.Level, logger.FileConfig{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}, cfg.HUD.Mode != hud.ModeTerminal)
	logger.SetDefault(log)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Errorw("bin-thrower stopped", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	// ── Window ──────────────────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	// ── Renderer ────────────────────────────────────────────────────────
	shaders, err := shaderFS(cfg.Scene.ShaderDir)
	if err != nil {
		return err
	}
	presentMode := renderer.PresentModeVSync
	if !cfg.Window.VSync {
		presentMode = renderer.PresentModeUncapped
	}
	r := renderer.NewRenderer(win,
		renderer.WithLogger(logger.Named("renderer")),
		renderer.WithShaderLibrary(shader.NewLibrary(shaders, shader.WithLogger(logger.Named("shader")))),
		renderer.WithCamera(camera.NewCamera(
			camera.WithFov(cfg.Graphics.FOV),
			camera.WithClipPlanes(cfg.Graphics.Near, cfg.Graphics.Far),
		)),
		renderer.WithPresentMode(presentMode),
		renderer.WithTimestamps(cfg.Graphics.Timestamps),
		renderer.WithForceSoftwareRenderer(cfg.Graphics.ForceFallbackAdapter),
		renderer.WithClearColor(cfg.Graphics.ClearColor),
	)
	defer r.Release()
	if err := r.Configure(win.Width(), win.Height()); err != nil {
		if errors.Is(err, renderer.ErrBackendUnavailable) {
			return fmt.Errorf("no usable GPU, try -fallback-adapter: %w", err)
		}
		return err
	}

	// ── Physics + Level ─────────────────────────────────────────────────
	world := physics.NewWorld(
		physics.WithGravity(mgl32.Vec3(cfg.Physics.Gravity)),
		physics.WithTimestep(cfg.Physics.Timestep),
		physics.WithRestitution(cfg.Physics.Restitution),
		physics.WithFriction(cfg.Physics.Friction),
		physics.WithLogger(logger.Named("physics")),
	)

	doc, err := scene.ReadFile(cfg.Scene.Path)
	if err != nil {
		return fmt.Errorf("level: %w", err)
	}
	level := scene.NewScene(world, r,
		scene.WithWorkers(cfg.Engine.Workers),
		scene.WithLogger(logger.Named("scene")),
	)
	defer level.Close()
	if err := level.Load(doc); err != nil {
		return fmt.Errorf("level %s: %w", cfg.Scene.Path, err)
	}

	// ── Game ────────────────────────────────────────────────────────────
	g := game.NewGame(world, r,
		game.WithController(camera.NewCameraController(camera.WithSensitivity(cfg.Game.Sensitivity))),
		game.WithMuzzle(mgl32.Vec3(cfg.Game.Muzzle)),
		game.WithLaunchSpeed(cfg.Game.LaunchSpeed),
		game.WithPoolCapacity(cfg.Game.PoolCapacity),
		game.WithBallRadius(cfg.Game.BallRadius),
		game.WithScoreRadius(cfg.Game.ScoreRadius),
		game.WithDebug(cfg.Game.DebugLines),
		game.WithRenderBalls(cfg.Game.RenderBalls),
		game.WithLogger(logger.Named("game")),
	)
	defer g.Clear()

	// ── Instrumentation + Audio ─────────────────────────────────────────
	display, err := hud.NewDisplay(cfg.HUD.Mode, cfg.HUD.Interval, logger.Named("hud"))
	if err != nil {
		return err
	}
	player := audio.NewNullPlayer()
	if cfg.Audio.Enabled {
		if p, err := audio.NewSpeakerPlayer(cfg.Audio.SampleRate, cfg.Audio.Volume, logger.Named("audio")); err != nil {
			log.Warnw("audio disabled", "error", err)
		} else {
			player = p
		}
	}

	// ── Engine ──────────────────────────────────────────────────────────
	eng, err := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithWorld(world),
		engine.WithGame(g),
		engine.WithProfiler(profiler.NewProfiler(profiler.WithLogger(logger.Named("profiler")))),
		engine.WithDisplay(display),
		engine.WithHUD(cfg.HUD.Mode != hud.ModeOff),
		engine.WithAudio(player),
		engine.WithBackgroundTick(cfg.Engine.BackgroundTick),
		engine.WithFrameLimit(cfg.Engine.FrameLimit),
		engine.WithLogger(log),
	)
	if err != nil {
		display.Close()
		player.Close()
		return err
	}
	return eng.Run(ctx)
}

// shaderFS returns the embedded shaders, or dir when set.
func shaderFS(dir string) (fs.FS, error) {
	if dir == "" {
		return shader.Assets(), nil
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("shader dir: %w", err)
	}
	return os.DirFS(dir), nil
}
