package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// tone sums equal-amplitude sine oscillators and stops after a fixed number of samples.
// The output stays in [-1, 1].
type tone struct {
	freqs    []float64
	phases   []float64
	duration int
	position int
	rate     beep.SampleRate
}

func newTone(duration time.Duration, rate beep.SampleRate, freqs ...float64) *tone {
	return &tone{freqs: freqs, phases: make([]float64, len(freqs)), duration: rate.N(duration), rate: rate}
}

func (o *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		var val float64
		for k, f := range o.freqs {
			val += math.Sin(2 * math.Pi * o.phases[k])
			o.phases[k] += f / float64(o.rate)
			o.phases[k] -= math.Floor(o.phases[k])
		}
		if len(o.freqs) > 0 {
			val /= float64(len(o.freqs))
		}
		samples[i][0] = val
		samples[i][1] = val
		o.position++
	}
	return len(samples), true
}

func (o *tone) Err() error { return nil }

// decay applies a linear attack then an exponential release to a stream.
type decay struct {
	streamer beep.Streamer
	position int
	attack   int
	total    int
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if d.position < d.attack {
			vol = float64(d.position) / float64(d.attack)
		} else if d.total > d.attack {
			t := float64(d.position-d.attack) / float64(d.total-d.attack)
			vol = math.Exp(-5 * t)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		d.position++
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

// NewChime builds the score cue: a fifth (880 Hz and 1320 Hz) with a short attack and a fading tail.
//
// Parameters:
//   - rate: output sample rate
//   - volume: linear gain in [0, 1]; zero or less is silent
//
// Returns:
//   - beep.Streamer: a finite stream of about 250 ms
func NewChime(rate beep.SampleRate, volume float64) beep.Streamer {
	const length = 250 * time.Millisecond
	shaped := &decay{
		streamer: newTone(length, rate, 880, 1320),
		attack:   rate.N(5 * time.Millisecond),
		total:    rate.N(length),
	}
	return gain(shaped, volume)
}

// gain wraps s in a volume effect. math.Log2(0) is -Inf, so zero volume becomes silent.
func gain(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
