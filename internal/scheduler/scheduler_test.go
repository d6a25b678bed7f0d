package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/gridzilla/internal/loop"
	"github.com/coreman2200/gridzilla/internal/scene"
)

type behaviour int

const (
	cooperative  behaviour = iota // completes on Pause
	stubborn                      // ignores Pause, completes on ForcePause
	unresponsive                  // ignores both
	empty                         // nothing to show
)

type fake struct {
	name    string
	b       behaviour
	loop    loop.Loop
	done    func(scene.Scene)
	selfEnd time.Duration

	running              bool
	runs, pauses, forces int
	pauseAt, forceAt     []time.Duration
	clock                *loop.Virtual
	timer                loop.Timer
}

func (f *fake) Name() string { return f.name }

func (f *fake) Run() {
	f.runs++
	if f.b == empty {
		f.done(f)
		return
	}
	f.running = true
	if f.selfEnd > 0 {
		f.timer = f.loop.AfterFunc(f.selfEnd, f.finish)
	}
}

func (f *fake) finish() {
	if !f.running {
		return
	}
	f.running = false
	if f.timer != nil {
		f.timer.Stop()
	}
	f.done(f)
}

func (f *fake) Pause() {
	f.pauses++
	f.pauseAt = append(f.pauseAt, f.clock.Now())
	if f.b == cooperative {
		f.finish()
	}
}

func (f *fake) ForcePause() {
	f.forces++
	f.forceAt = append(f.forceAt, f.clock.Now())
	if f.b != unresponsive {
		f.finish()
	}
}

type rig struct {
	v     *loop.Virtual
	s     *Scheduler
	fakes []*fake
}

func newRig(bs ...behaviour) *rig {
	v := loop.NewVirtual()
	r := &rig{v: v, s: New(v, Options{}, zerolog.Nop())}
	for i, b := range bs {
		r.fakes = append(r.fakes, &fake{name: fmt.Sprintf("scene%d", i), b: b, loop: v, clock: v, done: r.s.Completed})
	}
	return r
}

func (r *rig) start(t *testing.T) {
	t.Helper()
	scenes := make([]scene.Scene, len(r.fakes))
	for i, f := range r.fakes {
		scenes[i] = f
	}
	require.NoError(t, r.s.Start(scenes))
	r.v.Drain()
}

func TestStartNeedsScenes(t *testing.T) {
	s := New(loop.NewVirtual(), Options{}, zerolog.Nop())
	assert.ErrorIs(t, s.Start(nil), ErrNoScenes)
	assert.Equal(t, -1, s.Index())
}

func TestRotationWraps(t *testing.T) {
	r := newRig(cooperative, cooperative, cooperative)
	for _, f := range r.fakes {
		f.selfEnd = time.Second
	}
	r.start(t)
	assert.Equal(t, 0, r.s.Index())
	assert.Equal(t, "scene0", r.s.Current())

	for k := 1; k <= 7; k++ {
		r.v.Advance(time.Second)
		assert.Equal(t, k%3, r.s.Index(), "after %d advances", k)
	}
	assert.Equal(t, 3, r.fakes[0].runs)
	assert.Equal(t, 3, r.fakes[1].runs)
	assert.Equal(t, 2, r.fakes[2].runs)
	assert.EqualValues(t, 8, r.s.Advances())
	for _, f := range r.fakes {
		assert.Zero(t, f.pauses)
	}
}

func TestPeriodExpiryPausesScene(t *testing.T) {
	r := newRig(cooperative, cooperative)
	r.start(t)

	r.v.Advance(DefaultPeriod - time.Millisecond)
	assert.Zero(t, r.fakes[0].pauses)
	r.v.Advance(time.Millisecond)
	assert.Equal(t, 1, r.fakes[0].pauses)
	assert.Zero(t, r.fakes[0].forces)
	assert.Equal(t, 1, r.s.Index())
	assert.Equal(t, 1, r.fakes[1].runs)

	// the grace timer was cancelled with the completion
	r.v.Advance(DefaultGrace)
	assert.Zero(t, r.fakes[0].forces)
	assert.Zero(t, r.fakes[1].pauses)
}

func TestStubbornSceneIsForcePausedOnce(t *testing.T) {
	r := newRig(stubborn, cooperative)
	r.start(t)

	r.v.Advance(DefaultPeriod)
	f := r.fakes[0]
	require.Equal(t, 1, f.pauses)
	assert.Equal(t, []time.Duration{DefaultPeriod}, f.pauseAt)
	assert.Equal(t, 0, r.s.Index())

	r.v.Advance(DefaultGrace - time.Millisecond)
	assert.Zero(t, f.forces)
	r.v.Advance(time.Millisecond)
	assert.Equal(t, []time.Duration{DefaultPeriod + DefaultGrace}, f.forceAt)
	assert.Equal(t, 1, r.s.Index())

	r.v.Advance(DefaultGrace)
	assert.Equal(t, 1, f.forces)
}

func TestUnresponsiveSceneIsSkipped(t *testing.T) {
	r := newRig(unresponsive, cooperative)
	r.start(t)

	r.v.Advance(DefaultPeriod + DefaultGrace)
	f := r.fakes[0]
	assert.Equal(t, 1, f.pauses)
	assert.Equal(t, 1, f.forces)
	assert.Equal(t, 1, r.s.Index())
	assert.Equal(t, "scene1", r.s.Current())

	// a late completion from the skipped scene does not advance again
	f.finish()
	r.v.Drain()
	assert.Equal(t, 1, r.s.Index())
	assert.EqualValues(t, 2, r.s.Advances())
}

func TestRepeatedCompletionAdvancesOnce(t *testing.T) {
	r := newRig(cooperative, cooperative, cooperative)
	r.start(t)

	r.s.Completed(r.fakes[0])
	r.s.Completed(r.fakes[0])
	r.s.Completed(r.fakes[2])
	r.v.Drain()
	assert.Equal(t, 1, r.s.Index())
	assert.EqualValues(t, 2, r.s.Advances())
}

func TestAtMostOneTimerPending(t *testing.T) {
	r := newRig(stubborn)
	r.start(t)
	assert.Equal(t, 1, r.v.Pending())
	r.v.Advance(DefaultPeriod)
	assert.Equal(t, 1, r.v.Pending(), "grace timer replaces period timer")
	r.v.Advance(DefaultGrace)
	assert.Equal(t, 1, r.v.Pending(), "next period timer")
}

func TestEmptyScenesAreSkipped(t *testing.T) {
	r := newRig(empty, cooperative, empty)
	r.start(t)
	assert.Equal(t, 1, r.s.Index())
	assert.Equal(t, 1, r.fakes[0].runs)

	r.v.Advance(DefaultPeriod)
	assert.Equal(t, 1, r.fakes[2].runs)
	assert.Equal(t, 2, r.fakes[0].runs)
	assert.Equal(t, 1, r.s.Index())
}

func TestAllEmptyBacksOff(t *testing.T) {
	r := newRig(empty, empty, empty)
	r.start(t)
	for _, f := range r.fakes {
		assert.Equal(t, 1, f.runs)
	}
	assert.Equal(t, 1, r.v.Pending(), "waiting out the back-off")

	r.v.Advance(DefaultIdleBackoff - time.Millisecond)
	assert.Equal(t, 1, r.fakes[0].runs)
	r.v.Advance(time.Millisecond)
	for _, f := range r.fakes {
		assert.Equal(t, 2, f.runs)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{Period: time.Minute}.withDefaults()
	assert.Equal(t, time.Minute, o.Period)
	assert.Equal(t, 15*time.Second, o.Grace)
	assert.Equal(t, time.Second, o.IdleBackoff)
	assert.Equal(t, 300000*time.Millisecond, DefaultPeriod)
}
