package profiler

import (
	"maps"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Section names the timings the frame driver records.
type Section string

const (
	// SectionFrame is the wall time between two consecutive updates (dt).
	SectionFrame Section = "dt"
	// SectionPhysics is the time spent stepping the physics world.
	SectionPhysics Section = "physics"
	// SectionGameplay is the time spent resolving projectiles and score.
	SectionGameplay Section = "gameplay"
	// SectionRender is the CPU time spent recording and submitting a frame.
	SectionRender Section = "render"
	// SectionGPU is the GPU time of the main pass.
	SectionGPU Section = "gpu"
	// SectionUpdate is the time of one whole update, excluding the wait for the next one.
	SectionUpdate Section = "update"
)

// Report is a snapshot of the profiler state.
type Report struct {
	FPS         float64
	Sections    map[Section]time.Duration
	HeapMB      float64
	SysMB       float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
}

// Profiler tracks frame rate, smoothed section timings and memory statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	mu             *sync.Mutex
	log            *zap.SugaredLogger
	now            func() time.Time
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	smoothing      float64
	sections       map[Section]*Average
	report         Report
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		mu:             &sync.Mutex{},
		log:            zap.NewNop().Sugar(),
		now:            time.Now,
		updateInterval: time.Second,
		smoothing:      DefaultSmoothing,
		sections:       make(map[Section]*Average),
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Record folds one sample into the smoothed timing of a section.
//
// Parameters:
//   - section: the section the sample belongs to
//   - d: the measured duration
func (p *Profiler) Record(section Section, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	a, ok := p.sections[section]
	if !ok {
		a = NewAverage(p.smoothing)
		p.sections[section] = a
	}
	a.Add(d)
}

// Time runs fn and records its duration under section.
//
// Parameters:
//   - section: the section to record
//   - fn: the work to time
func (p *Profiler) Time(section Section, fn func()) {
	start := p.now()
	fn()
	p.Record(section, p.now().Sub(start))
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, section timings, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
	// Sys: Total bytes of memory obtained from the OS (actual process footprint)
	r := Report{
		FPS:      float64(p.frameCount) / elapsed.Seconds(),
		Sections: make(map[Section]time.Duration, len(p.sections)),
		HeapMB:   float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:    float64(p.memStats.Sys) / 1024 / 1024,
		GCCount:  p.memStats.NumGC,
	}
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > r.MaxPauseUs {
				r.MaxPauseUs = pause
			}
		}
	}

	fields := []any{
		"fps", r.FPS,
		"heap_mb", r.HeapMB,
		"alloc_rate_mb", r.AllocRateMB,
		"gc", r.GCCount,
		"gc_last_us", r.LastPauseUs,
		"gc_max_us", r.MaxPauseUs,
		"sys_mb", r.SysMB,
	}
	for s, a := range p.sections {
		if v, ok := a.Value(); ok {
			r.Sections[s] = v
			fields = append(fields, string(s), v)
		}
	}
	p.log.Debugw("profiler", fields...)

	p.report = r
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Report returns the statistics computed by the last Tick that logged, with current section timings.
//
// Returns:
//   - Report: the snapshot
func (p *Profiler) Report() Report {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.report
	r.Sections = maps.Clone(p.report.Sections)
	if r.Sections == nil {
		r.Sections = make(map[Section]time.Duration, len(p.sections))
	}
	for s, a := range p.sections {
		if v, ok := a.Value(); ok {
			r.Sections[s] = v
		}
	}
	return r
}
