package profiler

import (
	"sync"
	"time"
)

// DefaultSmoothing is the weight given to each new sample by NewAverage.
const DefaultSmoothing = 0.1

// Average is an exponentially weighted moving average of durations. The first sample seeds the value directly.
// It is safe for concurrent use.
type Average struct {
	mu     sync.Mutex
	alpha  float64
	value  float64
	seeded bool
}

// NewAverage creates an Average with the given smoothing factor.
//
// Parameters:
//   - alpha: weight of each new sample in (0, 1]; values outside that range fall back to DefaultSmoothing
//
// Returns:
//   - *Average: the average
func NewAverage(alpha float64) *Average {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultSmoothing
	}
	return &Average{alpha: alpha}
}

// Add folds a sample into the average.
func (a *Average) Add(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.seeded {
		a.value = float64(d)
		a.seeded = true
		return
	}
	a.value += a.alpha * (float64(d) - a.value)
}

// Value returns the current average and whether any sample has been added.
func (a *Average) Value() (time.Duration, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return time.Duration(a.value), a.seeded
}
