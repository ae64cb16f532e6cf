// Package scheduler decides, tick by tick, whether the task list on screen
// is stale and redraws it when it is.
//
// A tick observes the terminal size and the minimal age of the watched task
// files, then fires a redraw when the terminal was resized, when the forced
// redraw interval elapsed, or when a watched file changed within the last
// ~1.8 tick sleeps. Without file activity for LazyAfter, the forced redraw
// interval and the tick sleep both stretch by LazyFactor.
//
// A redraw tick sleeps twice, giving the freshly drawn list a pause before
// polling resumes.
package scheduler

import (
	"context"
	"io"
	"time"

	"github.com/grovetools/cyclenext/errors"
	"github.com/grovetools/cyclenext/pkg/models"
	"github.com/sirupsen/logrus"
)

// TerminalSizer reports the current terminal size. It always answers,
// possibly with a stale value.
type TerminalSizer interface {
	Size() models.TerminalSize
}

// ActivitySource is the view of the task files the scheduler needs.
type ActivitySource interface {
	MinimalAge() (time.Duration, error)
	UnsyncedBacklog() (count int, ok bool, err error)
}

// Redrawer replaces the terminal content with a fresh task list.
type Redrawer interface {
	Redraw(ctx context.Context, frame models.Frame) error
}

// TickReport describes one completed evaluation, for logging.
type TickReport struct {
	Tick       int
	Size       models.TerminalSize
	MinimalAge time.Duration
	State      State
	Decision   Decision
}

// Scheduler runs the polling loop. It is single-threaded: every call made
// by a tick completes before the next tick starts.
type Scheduler struct {
	policy   Policy
	filter   []string
	term     TerminalSizer
	activity ActivitySource
	redrawer Redrawer
	clock    Clock
	logger   *logrus.Entry
	observer func(TickReport)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the production clock.
func WithClock(clock Clock) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithObserver registers a callback invoked after each tick's decision,
// before any redraw or sleep.
func WithObserver(fn func(TickReport)) Option {
	return func(s *Scheduler) {
		s.observer = fn
	}
}

// New creates a Scheduler. filter is copied.
func New(policy Policy, filter []string, term TerminalSizer, activity ActivitySource, redrawer Redrawer, opts ...Option) *Scheduler {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Scheduler{
		policy:   policy,
		filter:   append([]string(nil), filter...),
		term:     term,
		activity: activity,
		redrawer: redrawer,
		clock:    NewClock(nil),
		logger:   logrus.NewEntry(discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ticks until ctx is cancelled or the redrawer reports INTERRUPTED; both
// return nil. Other errors from the activity source or the redrawer end the
// loop unchanged.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.WithField("filter", s.filter).Info("Scheduler started")

	var state State
	for tick := 1; ; tick++ {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.Step(ctx, tick, &state); err != nil {
			if ctx.Err() != nil || errors.Is(err, errors.ErrCodeInterrupted) {
				break
			}
			return err
		}
	}

	s.logger.Info("Scheduler stopped")
	return nil
}

// Step runs one tick against state and returns its decision. When ctx is
// cancelled mid-tick, Step returns the context error.
func (s *Scheduler) Step(ctx context.Context, tick int, state *State) (Decision, error) {
	size := s.term.Size()

	age, err := s.activity.MinimalAge()
	if err != nil {
		return Decision{}, err
	}

	d := s.policy.Decide(size, *state, age)
	if s.observer != nil {
		s.observer(TickReport{Tick: tick, Size: size, MinimalAge: age, State: *state, Decision: d})
	}

	if d.Redraw() {
		if err := s.redraw(ctx, size, age); err != nil {
			return d, err
		}
		state.SinceRedraw = 0
		if err := s.clock.Sleep(ctx, d.Sleep); err != nil {
			return d, err
		}
	}

	start := s.clock.Now()
	if err := s.clock.Sleep(ctx, d.Sleep); err != nil {
		return d, err
	}
	state.SinceRedraw += s.clock.Now().Sub(start)
	state.LastSize = size

	return d, nil
}

func (s *Scheduler) redraw(ctx context.Context, size models.TerminalSize, age time.Duration) error {
	backlog, ok, err := s.activity.UnsyncedBacklog()
	if err != nil {
		return err
	}

	return s.redrawer.Redraw(ctx, models.Frame{
		Filter:     append([]string(nil), s.filter...),
		Size:       size,
		LastChange: age,
		Backlog:    backlog,
		HasBacklog: ok,
	})
}
