package scheduler

import (
	"time"

	"github.com/grovetools/cyclenext/config"
	"github.com/grovetools/cyclenext/pkg/models"
)

// Policy holds the constants of the redraw decision.
type Policy struct {
	// LazyAfter is the file age above which the scheduler turns lazy.
	LazyAfter time.Duration
	// LazyFactor scales ForceRedrawBase and LoopDelayBase while lazy.
	LazyFactor      int
	ForceRedrawBase time.Duration
	LoopDelayBase   time.Duration
	// FreshnessMargin multiplies the tick sleep for the freshness trigger.
	FreshnessMargin float64
}

// NewPolicy builds a Policy from the configuration.
func NewPolicy(cfg config.Config) Policy {
	return Policy{
		LazyAfter:       cfg.LazyAfter(),
		LazyFactor:      cfg.LazyFactor,
		ForceRedrawBase: cfg.ForceRedraw(),
		LoopDelayBase:   cfg.LoopDelay(),
		FreshnessMargin: cfg.FreshnessMargin,
	}
}

// State is carried from one tick to the next.
type State struct {
	// SinceRedraw is the monotonic time slept since the last redraw.
	SinceRedraw time.Duration
	// LastSize is the terminal size seen by the previous tick. The zero
	// value never matches a real terminal, so the first tick redraws.
	LastSize models.TerminalSize
}

// Decision is the outcome of one tick's evaluation.
type Decision struct {
	Lazy          bool
	Factor        int
	ForceInterval time.Duration
	Sleep         time.Duration

	Resized bool
	Stale   bool
	Fresh   bool
}

// Redraw reports whether any trigger fired.
func (d Decision) Redraw() bool {
	return d.Resized || d.Stale || d.Fresh
}

// Triggers lists the fired triggers by name.
func (d Decision) Triggers() []string {
	var fired []string
	if d.Resized {
		fired = append(fired, "resize")
	}
	if d.Stale {
		fired = append(fired, "stale")
	}
	if d.Fresh {
		fired = append(fired, "fresh")
	}
	return fired
}

// Factor returns LazyFactor when minimalAge exceeds LazyAfter, 1 otherwise.
// There is no hysteresis: every tick decides again.
func (p Policy) Factor(minimalAge time.Duration) int {
	if minimalAge > p.LazyAfter {
		return p.LazyFactor
	}
	return 1
}

// Decide evaluates the three redraw triggers against one consistent snapshot.
func (p Policy) Decide(current models.TerminalSize, state State, minimalAge time.Duration) Decision {
	factor := p.Factor(minimalAge)
	d := Decision{
		Lazy:          minimalAge > p.LazyAfter,
		Factor:        factor,
		ForceInterval: p.ForceRedrawBase * time.Duration(factor),
		Sleep:         p.LoopDelayBase * time.Duration(factor),
	}

	d.Resized = current != state.LastSize
	d.Stale = state.SinceRedraw > d.ForceInterval
	d.Fresh = minimalAge < time.Duration(float64(d.Sleep)*p.FreshnessMargin)

	return d
}
