package hud

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
)

var (
	styleTitle = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleText  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// terminalDisplay draws telemetry into a tcell screen, redrawing at most once per interval.
type terminalDisplay struct {
	mu       *sync.Mutex
	screen   tcell.Screen
	interval time.Duration
	now      func() time.Time
	last     time.Time
	closed   bool
}

// NewTerminalDisplay creates a Display that draws into a terminal screen.
//
// Parameters:
//   - screen: the screen to draw into; nil opens the process terminal
//   - interval: minimum time between redraws
//
// Returns:
//   - Display: the display
//   - error: error if the terminal could not be initialized
func NewTerminalDisplay(screen tcell.Screen, interval time.Duration) (Display, error) {
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, err
		}
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.Clear()
	return &terminalDisplay{
		mu:       &sync.Mutex{},
		screen:   screen,
		interval: interval,
		now:      time.Now,
	}, nil
}

func (d *terminalDisplay) Show(t Telemetry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	now := d.now()
	if !d.last.IsZero() && now.Sub(d.last) < d.interval {
		return
	}
	d.last = now

	d.screen.Clear()
	for y, line := range t.Lines() {
		style := styleText
		if y == 0 {
			style = styleTitle
		}
		drawString(d.screen, 0, y, line, style)
	}
	d.screen.Show()
}

func (d *terminalDisplay) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	d.screen.Fini()
}

func drawString(s tcell.Screen, x, y int, text string, style tcell.Style) {
	w, _ := s.Size()
	for _, r := range text {
		if x >= w {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
