package scene

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/gridzilla/internal/loop"
)

// Lifecycle is embedded by every scene. It owns the scene's timers and
// guarantees a single completion per Run.
type Lifecycle struct {
	env     Env
	self    Scene
	name    string
	running bool
	timers  map[*entry]struct{}
	log     zerolog.Logger
}

type entry struct{ t loop.Timer }

func (l *Lifecycle) init(self Scene, name string, env Env) {
	l.env = env
	l.self = self
	l.name = name
	l.timers = make(map[*entry]struct{})
	l.log = env.Log.With().Str("scene", name).Logger()
}

func (l *Lifecycle) Name() string { return l.name }

// Running reports whether the scene is between Run and completion.
func (l *Lifecycle) Running() bool { return l.running }

// begin enters Running. It reports false when the scene already runs.
func (l *Lifecycle) begin() bool {
	if l.running {
		l.log.Warn().Msg("run while running")
		return false
	}
	l.running = true
	l.log.Debug().Msg("run")
	return true
}

// skip completes a Run that had nothing to show.
func (l *Lifecycle) skip() {
	l.log.Debug().Msg("nothing to show")
	l.env.Done(l.self)
}

// after arms a timer that only fires while the scene is running.
func (l *Lifecycle) after(d time.Duration, f func()) {
	e := &entry{}
	e.t = l.env.Loop.AfterFunc(d, func() {
		delete(l.timers, e)
		if l.running {
			f()
		}
	})
	l.timers[e] = struct{}{}
}

func (l *Lifecycle) stopTimers() {
	for e := range l.timers {
		e.t.Stop()
		delete(l.timers, e)
	}
}

// complete stops everything and reports completion. Later calls are no-ops
// until the next Run.
func (l *Lifecycle) complete() {
	if !l.running {
		return
	}
	l.running = false
	l.stopTimers()
	l.log.Debug().Msg("complete")
	l.env.Done(l.self)
}

// Pause is the default: stop now and complete.
func (l *Lifecycle) Pause() { l.complete() }

func (l *Lifecycle) ForcePause() { l.self.Pause() }

// show pushes the canvas to the transform. Failures are logged and the
// scene carries on.
func (l *Lifecycle) show() {
	if err := l.env.Transform.TransformScreen(l.env.Canvas); err != nil {
		l.log.Error().Err(err).Msg("transform screen")
	}
}
