// Package ambient produces the synthetic speech level that drives the
// waveform meter while the assistant is speaking. It is not derived from
// real audio.
package ambient

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	// FrameInterval is the cadence at which Advance is expected to be called.
	FrameInterval = 16 * time.Millisecond

	// DefaultStep is the phase increment per frame.
	DefaultStep = 0.05
)

// SignalSource yields a level in [0,1] once per frame. A real audio analyzer
// can replace the Simulator behind this interface.
type SignalSource interface {
	// Advance moves one frame forward and returns the new level.
	Advance(speaking bool) float64
	// Level returns the most recent level.
	Level() float64
}

// Simulator is a SignalSource built from two sine waves plus noise.
type Simulator struct {
	mu    sync.Mutex
	rng   func() float64
	step  float64
	phase float64
	level float64
}

// Compile-time check that Simulator implements SignalSource.
var _ SignalSource = (*Simulator)(nil)

// Option configures a Simulator.
type Option func(*Simulator)

// WithRand sets the noise source. The default is the global math/rand/v2 generator.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulator) { s.rng = r.Float64 }
}

// WithStep overrides the phase increment per frame.
func WithStep(step float64) Option {
	return func(s *Simulator) { s.step = step }
}

// NewSimulator returns a silent simulator.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{rng: rand.Float64, step: DefaultStep}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Advance computes the next frame. When not speaking both the phase and the
// level drop back to zero, so every speaking turn starts from the same point.
func (s *Simulator) Advance(speaking bool) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !speaking {
		s.phase = 0
		s.level = 0
		return 0
	}

	s.phase += s.step
	s.level = levelAt(s.phase, s.rng())
	return s.level
}

func (s *Simulator) Level() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Phase returns the internal clock.
func (s *Simulator) Phase() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func levelAt(phase, noise float64) float64 {
	v := math.Sin(phase*3)*0.5 + 0.5 + math.Sin(phase*15)*0.2 + noise*0.3
	return min(1, max(0, v))
}
