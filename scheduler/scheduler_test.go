package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/grovetools/cyclenext/errors"
	"github.com/grovetools/cyclenext/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances virtual time on every sleep and cancels the run after
// a given number of sleeps.
type fakeClock struct {
	now         time.Time
	sleeps      []time.Duration
	cancelAfter int
	cancel      context.CancelFunc
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	if c.cancelAfter > 0 && len(c.sleeps) >= c.cancelAfter && c.cancel != nil {
		c.cancel()
		return ctx.Err()
	}
	return nil
}

type fakeTerminal struct {
	sizes []models.TerminalSize
	calls int
}

func (f *fakeTerminal) Size() models.TerminalSize {
	size := f.sizes[len(f.sizes)-1]
	if f.calls < len(f.sizes) {
		size = f.sizes[f.calls]
	}
	f.calls++
	return size
}

type fakeActivity struct {
	ages       []time.Duration
	calls      int
	ageErr     error
	backlog    int
	hasBacklog bool
	backlogErr error
}

func (f *fakeActivity) MinimalAge() (time.Duration, error) {
	if f.ageErr != nil {
		return 0, f.ageErr
	}
	age := f.ages[len(f.ages)-1]
	if f.calls < len(f.ages) {
		age = f.ages[f.calls]
	}
	f.calls++
	return age, nil
}

func (f *fakeActivity) UnsyncedBacklog() (int, bool, error) {
	return f.backlog, f.hasBacklog, f.backlogErr
}

type fakeRedrawer struct {
	frames []models.Frame
	err    error
	onDraw func()
}

func (f *fakeRedrawer) Redraw(ctx context.Context, frame models.Frame) error {
	f.frames = append(f.frames, frame)
	if f.onDraw != nil {
		f.onDraw()
	}
	return f.err
}

var term80 = models.TerminalSize{Rows: 40, Cols: 80}

func newTestScheduler(term *fakeTerminal, activity *fakeActivity, redrawer *fakeRedrawer, clock *fakeClock, opts ...Option) *Scheduler {
	opts = append(opts, WithClock(clock))
	return New(defaultPolicy(), []string{"ready"}, term, activity, redrawer, opts...)
}

func TestFirstTickAlwaysRedraws(t *testing.T) {
	term := &fakeTerminal{sizes: []models.TerminalSize{term80}}
	activity := &fakeActivity{ages: []time.Duration{48 * time.Hour}}
	redrawer := &fakeRedrawer{}
	clock := &fakeClock{now: time.Unix(0, 0)}

	s := newTestScheduler(term, activity, redrawer, clock)
	var state State
	d, err := s.Step(context.Background(), 1, &state)
	require.NoError(t, err)

	assert.Equal(t, []string{"resize"}, d.Triggers())
	require.Len(t, redrawer.frames, 1)
	// lazy tick: two sleeps of 5 x 0.33s
	assert.Equal(t, []time.Duration{1650 * time.Millisecond, 1650 * time.Millisecond}, clock.sleeps)
	assert.Equal(t, 1650*time.Millisecond, state.SinceRedraw)
	assert.Equal(t, term80, state.LastSize)
}

func TestRedrawTickSleepsTwice(t *testing.T) {
	term := &fakeTerminal{sizes: []models.TerminalSize{term80}}
	activity := &fakeActivity{ages: []time.Duration{time.Minute}}
	redrawer := &fakeRedrawer{}
	clock := &fakeClock{now: time.Unix(0, 0)}
	s := newTestScheduler(term, activity, redrawer, clock)

	var state State
	for tick := 1; tick <= 3; tick++ {
		_, err := s.Step(context.Background(), tick, &state)
		require.NoError(t, err)
	}

	assert.Len(t, redrawer.frames, 1)
	step := 330 * time.Millisecond
	assert.Equal(t, []time.Duration{step, step, step, step}, clock.sleeps)
	assert.Equal(t, 3*step, state.SinceRedraw)
}

func TestStaleRedrawAfterForcedInterval(t *testing.T) {
	term := &fakeTerminal{sizes: []models.TerminalSize{term80}}
	activity := &fakeActivity{ages: []time.Duration{time.Minute}}
	redrawer := &fakeRedrawer{}
	clock := &fakeClock{now: time.Unix(0, 0)}
	s := newTestScheduler(term, activity, redrawer, clock)

	var state State
	var redrawTicks []int
	for tick := 1; tick <= 40; tick++ {
		d, err := s.Step(context.Background(), tick, &state)
		require.NoError(t, err)
		if d.Redraw() {
			redrawTicks = append(redrawTicks, tick)
		}
	}

	// After the first redraw every tick adds 0.33s; the 32nd tick starts at
	// 31 x 0.33s = 10.23s > 10s.
	assert.Equal(t, []int{1, 32}, redrawTicks)
}

func TestFreshActivityRedrawsEveryTick(t *testing.T) {
	term := &fakeTerminal{sizes: []models.TerminalSize{term80}}
	activity := &fakeActivity{ages: []time.Duration{100 * time.Millisecond}}
	redrawer := &fakeRedrawer{}
	clock := &fakeClock{now: time.Unix(0, 0)}
	s := newTestScheduler(term, activity, redrawer, clock)

	var state State
	for tick := 1; tick <= 3; tick++ {
		d, err := s.Step(context.Background(), tick, &state)
		require.NoError(t, err)
		assert.True(t, d.Fresh)
	}
	assert.Len(t, redrawer.frames, 3)
	assert.Equal(t, 330*time.Millisecond, state.SinceRedraw)
}

func TestResizeTriggersRedraw(t *testing.T) {
	wide := models.TerminalSize{Rows: 40, Cols: 100}
	term := &fakeTerminal{sizes: []models.TerminalSize{term80, term80, wide, wide}}
	activity := &fakeActivity{ages: []time.Duration{time.Hour}}
	redrawer := &fakeRedrawer{}
	clock := &fakeClock{now: time.Unix(0, 0)}
	s := newTestScheduler(term, activity, redrawer, clock)

	var state State
	for tick := 1; tick <= 4; tick++ {
		_, err := s.Step(context.Background(), tick, &state)
		require.NoError(t, err)
	}

	require.Len(t, redrawer.frames, 2)
	assert.Equal(t, term80, redrawer.frames[0].Size)
	assert.Equal(t, wide, redrawer.frames[1].Size)
}

func TestFrameContents(t *testing.T) {
	term := &fakeTerminal{sizes: []models.TerminalSize{term80}}
	activity := &fakeActivity{ages: []time.Duration{90 * time.Second}, backlog: 3, hasBacklog: true}
	redrawer := &fakeRedrawer{}
	clock := &fakeClock{now: time.Unix(0, 0)}

	filter := []string{"+work", "project:home"}
	s := New(defaultPolicy(), filter, term, activity, redrawer, WithClock(clock))
	filter[0] = "mutated"

	var state State
	_, err := s.Step(context.Background(), 1, &state)
	require.NoError(t, err)

	require.Len(t, redrawer.frames, 1)
	assert.Equal(t, models.Frame{
		Filter:     []string{"+work", "project:home"},
		Size:       term80,
		LastChange: 90 * time.Second,
		Backlog:    3,
		HasBacklog: true,
	}, redrawer.frames[0])
}

func TestObserverSeesEveryTick(t *testing.T) {
	term := &fakeTerminal{sizes: []models.TerminalSize{term80}}
	activity := &fakeActivity{ages: []time.Duration{time.Minute}}
	clock := &fakeClock{now: time.Unix(0, 0)}

	var reports []TickReport
	s := newTestScheduler(term, activity, &fakeRedrawer{}, clock, WithObserver(func(r TickReport) {
		reports = append(reports, r)
	}))

	var state State
	for tick := 1; tick <= 2; tick++ {
		_, err := s.Step(context.Background(), tick, &state)
		require.NoError(t, err)
	}

	require.Len(t, reports, 2)
	assert.True(t, reports[0].Decision.Redraw())
	assert.Equal(t, State{}, reports[0].State)
	assert.False(t, reports[1].Decision.Redraw())
	assert.Equal(t, term80, reports[1].State.LastSize)
}

func TestRunStopsCleanlyOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	term := &fakeTerminal{sizes: []models.TerminalSize{term80}}
	activity := &fakeActivity{ages: []time.Duration{time.Minute}}
	redrawer := &fakeRedrawer{}
	clock := &fakeClock{now: time.Unix(0, 0), cancelAfter: 10, cancel: cancel}

	err := newTestScheduler(term, activity, redrawer, clock).Run(ctx)
	assert.NoError(t, err)
	assert.Len(t, clock.sleeps, 10)
	assert.Len(t, redrawer.frames, 1)
}

func TestRunWithCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	redrawer := &fakeRedrawer{}
	err := newTestScheduler(
		&fakeTerminal{sizes: []models.TerminalSize{term80}},
		&fakeActivity{ages: []time.Duration{0}},
		redrawer,
		&fakeClock{},
	).Run(ctx)

	assert.NoError(t, err)
	assert.Empty(t, redrawer.frames)
}

func TestRunInterruptedDuringRedraw(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redrawer := &fakeRedrawer{
		err:    errors.CommandFailed("task ready", fmt.Errorf("signal: interrupt")),
		onDraw: cancel,
	}
	err := newTestScheduler(
		&fakeTerminal{sizes: []models.TerminalSize{term80}},
		&fakeActivity{ages: []time.Duration{0}},
		redrawer,
		&fakeClock{},
	).Run(ctx)

	assert.NoError(t, err)
}

func TestRunPropagatesErrors(t *testing.T) {
	vanished := errors.WatchedFileVanished("/home/u/.task/undo.data", fmt.Errorf("no such file"))
	corrupt := errors.BacklogCorrupt("/home/u/.task/backlog.data", -1)
	failed := errors.CommandFailed("task ready", fmt.Errorf("exit status 2"))

	tests := []struct {
		name     string
		activity *fakeActivity
		redrawer *fakeRedrawer
		code     errors.ErrorCode
	}{
		{"watched file vanished", &fakeActivity{ageErr: vanished}, &fakeRedrawer{}, errors.ErrCodeWatchedFileVanished},
		{"corrupt backlog", &fakeActivity{ages: []time.Duration{0}, backlogErr: corrupt}, &fakeRedrawer{}, errors.ErrCodeBacklogCorrupt},
		{"task command failed", &fakeActivity{ages: []time.Duration{0}}, &fakeRedrawer{err: failed}, errors.ErrCodeCommandFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Unix(0, 0)}
			s := newTestScheduler(&fakeTerminal{sizes: []models.TerminalSize{term80}}, tt.activity, tt.redrawer, clock)

			err := s.Run(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
			assert.Empty(t, clock.sleeps, "no sleep after a failing tick")
		})
	}
}

func TestRealClock(t *testing.T) {
	wake := make(chan struct{}, 1)
	clock := NewClock(wake)

	start := clock.Now()
	require.NoError(t, clock.Sleep(context.Background(), 10*time.Millisecond))
	assert.GreaterOrEqual(t, clock.Now().Sub(start), 10*time.Millisecond)

	wake <- struct{}{}
	start = clock.Now()
	require.NoError(t, clock.Sleep(context.Background(), time.Hour))
	assert.Less(t, clock.Now().Sub(start), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, clock.Sleep(ctx, time.Hour), context.Canceled)
}

func TestRunStopsWhenTaskCommandInterrupted(t *testing.T) {
	// The child died from Ctrl-C before the context was cancelled.
	redrawer := &fakeRedrawer{
		err: errors.Interrupted("task ready", fmt.Errorf("signal: interrupt")),
	}
	clock := &fakeClock{now: time.Unix(0, 0)}

	err := newTestScheduler(
		&fakeTerminal{sizes: []models.TerminalSize{term80}},
		&fakeActivity{ages: []time.Duration{0}},
		redrawer,
		clock,
	).Run(context.Background())

	assert.NoError(t, err)
	assert.Len(t, redrawer.frames, 1)
	assert.Empty(t, clock.sleeps)
}
