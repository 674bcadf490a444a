// Package hud presents the score and frame telemetry outside the 3D view.
package hud

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/DatBlindArcher/bin-thrower/engine/profiler"
	"go.uber.org/zap"
)

// ErrUnknownMode is returned by NewDisplay for a mode other than log, terminal or off.
var ErrUnknownMode = errors.New("unknown hud mode")

// Display modes accepted by NewDisplay.
const (
	ModeLog      = "log"
	ModeTerminal = "terminal"
	ModeOff      = "off"
)

// Telemetry is one refresh worth of data for a Display.
type Telemetry struct {
	Score        int
	Balls        int
	Entities     int
	Debug        bool
	FPS          float64
	Sections     map[profiler.Section]time.Duration
	GPUAvailable bool
}

// sectionOrder is the order timings are listed in.
var sectionOrder = []profiler.Section{
	profiler.SectionFrame,
	profiler.SectionPhysics,
	profiler.SectionGameplay,
	profiler.SectionRender,
	profiler.SectionGPU,
	profiler.SectionUpdate,
}

// Lines formats the telemetry as short human-readable lines. A missing GPU time reads "n/a".
func (t Telemetry) Lines() []string {
	lines := []string{
		fmt.Sprintf("score %d", t.Score),
		fmt.Sprintf("fps %.1f  balls %d  entities %d  debug %t", t.FPS, t.Balls, t.Entities, t.Debug),
	}
	for _, s := range sectionOrder {
		d, ok := t.Sections[s]
		if s == profiler.SectionGPU && (!ok || !t.GPUAvailable) {
			lines = append(lines, fmt.Sprintf("%-8s n/a", s))
			continue
		}
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-8s %7.3f ms", s, float64(d.Microseconds())/1000))
	}
	return lines
}

// Display shows telemetry. Show may be called from the frame driver at any rate; implementations throttle themselves.
type Display interface {
	// Show presents the given telemetry.
	//
	// Parameters:
	//   - t: the telemetry to show
	Show(t Telemetry)

	// Close releases the display.
	Close()
}

type nopDisplay struct{}

func (nopDisplay) Show(Telemetry) {}
func (nopDisplay) Close()         {}

// logDisplay writes telemetry to the logger whenever the score changes and at most once per interval otherwise.
type logDisplay struct {
	log       *zap.SugaredLogger
	interval  time.Duration
	now       func() time.Time
	last      time.Time
	lastScore int
}

// NewLogDisplay creates a Display that logs telemetry at info level.
//
// Parameters:
//   - log: the logger
//   - interval: minimum time between two periodic log lines
//
// Returns:
//   - Display: the display
func NewLogDisplay(log *zap.SugaredLogger, interval time.Duration) Display {
	return &logDisplay{log: log, interval: interval, now: time.Now, lastScore: -1}
}

func (d *logDisplay) Show(t Telemetry) {
	now := d.now()
	if t.Score == d.lastScore && now.Sub(d.last) < d.interval {
		return
	}
	d.last = now
	d.lastScore = t.Score

	fields := []any{"score", t.Score, "fps", t.FPS, "balls", t.Balls, "entities", t.Entities, "debug", t.Debug}
	keys := make([]profiler.Section, 0, len(t.Sections))
	for s := range t.Sections {
		keys = append(keys, s)
	}
	slices.Sort(keys)
	for _, s := range keys {
		if s == profiler.SectionGPU && !t.GPUAvailable {
			continue
		}
		fields = append(fields, string(s), t.Sections[s])
	}
	d.log.Infow("telemetry", fields...)
}

func (d *logDisplay) Close() {}

// NewDisplay creates the Display for a configured mode.
//
// Parameters:
//   - mode: ModeLog, ModeTerminal or ModeOff
//   - interval: refresh interval for throttled displays
//   - log: the logger
//
// Returns:
//   - Display: the display
//   - error: ErrUnknownMode, or the terminal initialization error
func NewDisplay(mode string, interval time.Duration, log *zap.SugaredLogger) (Display, error) {
	switch mode {
	case ModeLog:
		return NewLogDisplay(log, interval), nil
	case ModeTerminal:
		return NewTerminalDisplay(nil, interval)
	case ModeOff:
		return nopDisplay{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", mode, ErrUnknownMode)
	}
}
