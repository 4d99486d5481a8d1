package timing

import (
	"sync"
	"time"

	"flemish/internal/logger"
)

// Phase names one step of an application cycle.
type Phase string

const (
	PhaseUpdate        Phase = "update"
	PhaseView          Phase = "view"
	PhasePatch         Phase = "patch"
	PhaseSubscriptions Phase = "subscriptions"
)

// Phases lists the cycle phases in execution order.
var Phases = []Phase{PhaseUpdate, PhaseView, PhasePatch, PhaseSubscriptions}

const DefaultWindow = 256

type Span struct {
	phase Phase
	start time.Time
}

// Tracker keeps the most recent durations of each phase.
type Tracker struct {
	samples map[Phase][]time.Duration
	window  int
	mu      sync.RWMutex
	enabled bool
	now     func() time.Time
}

// NewTracker keeps up to window samples per phase.
func NewTracker(window int) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{
		samples: make(map[Phase][]time.Duration),
		window:  window,
		enabled: true,
		now:     time.Now,
	}
}

func (tt *Tracker) Start(phase Phase) Span {
	return Span{phase: phase, start: tt.now()}
}

// End records the time since span started and returns it.
func (tt *Tracker) End(span Span) time.Duration {
	duration := tt.now().Sub(span.start)

	tt.mu.Lock()
	defer tt.mu.Unlock()
	if !tt.enabled {
		return duration
	}
	samples := append(tt.samples[span.phase], duration)
	if len(samples) > tt.window {
		samples = samples[len(samples)-tt.window:]
	}
	tt.samples[span.phase] = samples
	return duration
}

// Measure runs fn and records how long it took.
func (tt *Tracker) Measure(phase Phase, fn func()) {
	span := tt.Start(phase)
	fn()
	tt.End(span)
}

func (tt *Tracker) Samples(phase Phase) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	samples := tt.samples[phase]
	if samples == nil {
		return nil
	}
	result := make([]time.Duration, len(samples))
	copy(result, samples)
	return result
}

func (tt *Tracker) Average(phase Phase) time.Duration {
	samples := tt.Samples(phase)
	if len(samples) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range samples {
		total += d
	}
	return total / time.Duration(len(samples))
}

func (tt *Tracker) SetEnabled(enabled bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.enabled = enabled
}

// Reset drops the samples of phase, or of every phase when phase is empty.
func (tt *Tracker) Reset(phase Phase) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if phase == "" {
		tt.samples = make(map[Phase][]time.Duration)
	} else {
		delete(tt.samples, phase)
	}
}

// Report logs the average of every phase at debug level.
func (tt *Tracker) Report(log logger.Logger, component string) {
	fields := make(map[string]interface{}, len(Phases))
	for _, phase := range Phases {
		fields[string(phase)] = tt.Average(phase).String()
	}
	log.Debug(component, "cycle timing", fields)
}
