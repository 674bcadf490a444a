// Package audio plays short sound cues for game events.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

// Player plays game sound cues. Implementations never block the caller.
type Player interface {
	// PlayScore queues the score chime.
	PlayScore()

	// Close stops playback and drops queued sounds.
	Close()
}

// nullPlayer is the Player used when audio is disabled or no output device exists.
type nullPlayer struct{}

// NewNullPlayer returns a Player that does nothing.
func NewNullPlayer() Player { return nullPlayer{} }

func (nullPlayer) PlayScore() {}
func (nullPlayer) Close()     {}

// speakerPlayer mixes cues into the beep speaker.
type speakerPlayer struct {
	mu     *sync.Mutex
	log    *zap.SugaredLogger
	mixer  *beep.Mixer
	rate   beep.SampleRate
	volume float64
	open   bool
}

var _ Player = &speakerPlayer{}

// NewSpeakerPlayer initializes the speaker and starts the mixer. The speaker goroutine pulls from the mixer;
// PlayScore only appends a streamer under the speaker lock.
//
// Parameters:
//   - sampleRate: output sample rate in Hz
//   - volume: linear gain in [0, 1]
//   - log: logger for playback diagnostics
//
// Returns:
//   - Player: the player
//   - error: error if the output device could not be opened
func NewSpeakerPlayer(sampleRate int, volume float64, log *zap.SugaredLogger) (Player, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	rate := beep.SampleRate(sampleRate)
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	p := &speakerPlayer{
		mu:     &sync.Mutex{},
		log:    log,
		mixer:  &beep.Mixer{},
		rate:   rate,
		volume: volume,
		open:   true,
	}
	speaker.Play(p.mixer)
	return p, nil
}

func (p *speakerPlayer) PlayScore() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return
	}
	speaker.Lock()
	p.mixer.Add(NewChime(p.rate, p.volume))
	speaker.Unlock()
}

func (p *speakerPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return
	}
	p.open = false
	speaker.Clear()
	speaker.Close()
	p.log.Debugw("audio closed")
}
