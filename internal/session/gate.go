package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/raphaelgruber/omnimind/internal/schedule"
)

const (
	// BootCompleteKey is the store key recording that the boot sequence played.
	BootCompleteKey = "omnimind_boot_complete"

	bootCompleteValue = "true"

	// DefaultHideDelay leaves room for the boot screen's exit transition.
	DefaultHideDelay = 500 * time.Millisecond
)

// BootStep is one line of the intro boot sequence.
type BootStep struct {
	ID       string
	Label    string
	Duration time.Duration
}

var bootSteps = []BootStep{
	{ID: "bios", Label: "INITIALIZING BIOS", Duration: 800 * time.Millisecond},
	{ID: "kernel", Label: "LOADING KERNEL", Duration: 600 * time.Millisecond},
	{ID: "neural", Label: "ACTIVATING NEURAL NETWORK", Duration: 900 * time.Millisecond},
	{ID: "database", Label: "CONNECTING TO DATABASE", Duration: 700 * time.Millisecond},
	{ID: "ai", Label: "INITIALIZING AI CORE", Duration: 1000 * time.Millisecond},
	{ID: "systems", Label: "LOADING SYSTEM MODULES", Duration: 800 * time.Millisecond},
}

// Steps returns the boot sequence in display order.
func Steps() []BootStep {
	out := make([]BootStep, len(bootSteps))
	copy(out, bootSteps)
	return out
}

// TotalBootDuration is the time the full sequence takes to play.
func TotalBootDuration() time.Duration {
	var total time.Duration
	for _, s := range bootSteps {
		total += s.Duration
	}
	return total
}

// Gate decides whether the boot sequence is shown and records its completion.
type Gate struct {
	mu        sync.Mutex
	store     Store
	scheduler schedule.Scheduler
	logger    *slog.Logger
	hideDelay time.Duration

	showBoot  bool
	booting   bool
	hideTimer schedule.Timer
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithScheduler sets the scheduler used for the delayed hide.
func WithScheduler(s schedule.Scheduler) GateOption {
	return func(g *Gate) { g.scheduler = s }
}

// WithHideDelay overrides the delay between completion and hiding the boot screen.
// Zero hides immediately.
func WithHideDelay(d time.Duration) GateOption {
	return func(g *Gate) { g.hideDelay = d }
}

// WithLogger sets the gate's logger.
func WithLogger(l *slog.Logger) GateOption {
	return func(g *Gate) { g.logger = l }
}

// NewGate reads the boot flag once. If the store cannot be read, the boot
// sequence is shown.
func NewGate(store Store, opts ...GateOption) *Gate {
	g := &Gate{
		store:     store,
		scheduler: schedule.Real(),
		logger:    slog.Default(),
		hideDelay: DefaultHideDelay,
		showBoot:  true,
		booting:   true,
	}
	for _, opt := range opts {
		opt(g)
	}

	v, ok, err := store.Get(BootCompleteKey)
	switch {
	case err != nil:
		g.logger.Warn("boot flag unreadable, showing boot sequence", "error", err)
	case ok && v == bootCompleteValue:
		g.showBoot = false
		g.booting = false
	}
	return g
}

// ShowBoot reports whether the boot screen should be rendered.
func (g *Gate) ShowBoot() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.showBoot
}

// Booting reports whether the boot sequence is still running.
func (g *Gate) Booting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.booting
}

// Complete records the boot as played. The flag is written and Booting turns
// false immediately; ShowBoot turns false after the hide delay.
func (g *Gate) Complete() {
	if err := g.store.Set(BootCompleteKey, bootCompleteValue); err != nil {
		g.logger.Warn("failed to persist boot flag", "error", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.booting = false
	if !g.showBoot || g.hideTimer != nil {
		return
	}
	if g.hideDelay <= 0 {
		g.showBoot = false
		return
	}

	var timer schedule.Timer
	timer = g.scheduler.AfterFunc(g.hideDelay, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.hideTimer != timer {
			return
		}
		g.hideTimer = nil
		g.showBoot = false
	})
	g.hideTimer = timer
}

// Reset clears the flag and re-arms the boot sequence.
func (g *Gate) Reset() {
	if err := g.store.Clear(BootCompleteKey); err != nil {
		g.logger.Warn("failed to clear boot flag", "error", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopHideLocked()
	g.showBoot = true
	g.booting = true
}

// Close cancels a pending hide.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopHideLocked()
}

func (g *Gate) stopHideLocked() {
	if g.hideTimer != nil {
		g.hideTimer.Stop()
		g.hideTimer = nil
	}
}
