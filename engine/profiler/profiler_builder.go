package profiler

import (
	"time"

	"go.uber.org/zap"
)

// ProfilerBuilderOption is a functional option applied to a Profiler during construction via NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often Tick computes and logs statistics.
//
// Parameters:
//   - interval: the reporting interval; non-positive values are ignored
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the interval option to a Profiler
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithLogger sets the logger statistics are written to at debug level.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the logger option to a Profiler
func WithLogger(log *zap.SugaredLogger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if log != nil {
			p.log = log
		}
	}
}

// WithSmoothing sets the weight of each new sample in the section averages.
//
// Parameters:
//   - alpha: smoothing factor in (0, 1]
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the smoothing option to a Profiler
func WithSmoothing(alpha float64) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.smoothing = alpha
	}
}

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}
