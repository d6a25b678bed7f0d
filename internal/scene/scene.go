// Package scene holds the content units the scheduler rotates through and
// the lifecycle they share.
//
// A scene is Idle until Run. It then renders on its own loop timers until
// its content runs out or it is paused, and reports completion through
// Env.Done exactly once per Run. Every method is called on the loop
// goroutine.
package scene

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/gridzilla/internal/loop"
	"github.com/coreman2200/gridzilla/internal/pixel"
	"github.com/coreman2200/gridzilla/internal/transform"
)

type Scene interface {
	Name() string
	// Run starts the scene. A scene with nothing to show completes
	// immediately instead.
	Run()
	// Pause asks the scene to stop. It completes once it has stopped.
	Pause()
	// ForcePause stops the scene unconditionally.
	ForcePause()
}

// Session is one connected viewer.
type Session interface {
	ID() string
}

// ConnectionObserver is implemented by scenes that react to viewers
// connecting and leaving.
type ConnectionObserver interface {
	OnUserConnected(s Session)
	OnUserDisconnected(s Session)
}

// Done reports that a scene has completed.
type Done func(Scene)

// Env is what every scene renders with. Canvas and Transform are shared
// by all scenes; only the running one touches them.
type Env struct {
	Loop      loop.Loop
	Transform transform.Transform
	Canvas    *pixel.Buffer
	Done      Done
	Log       zerolog.Logger
}

// Options common to timed scenes. Zero values take the scene's default.
type Options struct {
	Period        time.Duration
	PerItemPeriod time.Duration
}

func (o Options) period(def time.Duration) time.Duration {
	if o.Period > 0 {
		return o.Period
	}
	return def
}

func (o Options) perItem(def time.Duration) time.Duration {
	if o.PerItemPeriod > 0 {
		return o.PerItemPeriod
	}
	return def
}
