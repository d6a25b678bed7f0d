// Package scheduler rotates through a fixed list of scenes forever.
//
// Each scene gets a period. When it expires the scene is asked to pause;
// if it has not completed within the grace period it is force-paused, and
// if even that does not stop it the scheduler moves on regardless.
package scheduler

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/gridzilla/internal/loop"
	"github.com/coreman2200/gridzilla/internal/scene"
)

const (
	DefaultPeriod      = 300 * time.Second
	DefaultGrace       = 15 * time.Second
	DefaultIdleBackoff = time.Second
)

var ErrNoScenes = errors.New("no scenes to schedule")

type Options struct {
	Period time.Duration
	Grace  time.Duration
	// IdleBackoff delays the next scene once a whole cycle has completed
	// without any scene running.
	IdleBackoff time.Duration
}

func (o Options) withDefaults() Options {
	if o.Period <= 0 {
		o.Period = DefaultPeriod
	}
	if o.Grace <= 0 {
		o.Grace = DefaultGrace
	}
	if o.IdleBackoff <= 0 {
		o.IdleBackoff = DefaultIdleBackoff
	}
	return o
}

// Scheduler owns the scene index and both timers. All methods except
// Current must be called on the loop goroutine.
type Scheduler struct {
	loop loop.Loop
	opts Options
	log  zerolog.Logger

	scenes []scene.Scene
	index  int
	// active is true from Run until the scene's completion is accepted.
	active bool
	// inRun is set while a scene's Run is on the stack.
	inRun      bool
	idleStreak int
	pauseTimer loop.Timer
	forceTimer loop.Timer
	current    atomic.Value
	advances   atomic.Int64
}

func New(l loop.Loop, o Options, log zerolog.Logger) *Scheduler {
	return &Scheduler{loop: l, opts: o.withDefaults(), log: log, index: -1}
}

// Start runs the first scene. The list is fixed from here on.
func (s *Scheduler) Start(scenes []scene.Scene) error {
	if len(scenes) == 0 {
		return ErrNoScenes
	}
	s.scenes = append([]scene.Scene(nil), scenes...)
	s.log.Info().Int("scenes", len(s.scenes)).
		Dur("period", s.opts.Period).Dur("grace", s.opts.Grace).
		Msg("scheduler started")
	s.advance()
	return nil
}

// Scenes returns the scheduled list.
func (s *Scheduler) Scenes() []scene.Scene { return s.scenes }

// Index is the position of the current scene, -1 before Start.
func (s *Scheduler) Index() int { return s.index }

// Current names the scene on the grid. Safe from any goroutine.
func (s *Scheduler) Current() string {
	n, _ := s.current.Load().(string)
	return n
}

// Advances counts scenes started since Start. Safe from any goroutine.
func (s *Scheduler) Advances() int64 { return s.advances.Load() }

func (s *Scheduler) advance() {
	s.index = (s.index + 1) % len(s.scenes)
	sc := s.scenes[s.index]
	s.active = true
	s.current.Store(sc.Name())
	s.advances.Add(1)
	s.stopTimers()
	s.pauseTimer = s.loop.AfterFunc(s.opts.Period, s.requestPause)
	s.log.Info().Int("index", s.index).Str("scene", sc.Name()).Msg("run scene")
	s.inRun = true
	sc.Run()
	s.inRun = false
}

func (s *Scheduler) requestPause() {
	s.pauseTimer = nil
	sc := s.scenes[s.index]
	s.log.Debug().Str("scene", sc.Name()).Msg("pause scene")
	s.forceTimer = s.loop.AfterFunc(s.opts.Grace, s.forcePause)
	sc.Pause()
}

func (s *Scheduler) forcePause() {
	s.forceTimer = nil
	sc := s.scenes[s.index]
	s.log.Warn().Str("scene", sc.Name()).Dur("grace", s.opts.Grace).Msg("scene ignored pause, forcing")
	sc.ForcePause()
	if s.active && s.scenes[s.index] == sc {
		s.log.Warn().Str("scene", sc.Name()).Str("error", "SceneContractViolation").
			Msg("scene still running after force pause, moving on")
		s.completed(sc)
	}
}

// Completed is the scenes' Done callback. Completions from a scene that is
// not the active one, or repeated ones, are ignored.
func (s *Scheduler) Completed(sc scene.Scene) {
	if !s.active || s.index < 0 || s.scenes[s.index] != sc {
		s.log.Debug().Str("scene", sc.Name()).Msg("ignoring stale completion")
		return
	}
	s.completed(sc)
}

func (s *Scheduler) completed(sc scene.Scene) {
	s.active = false
	s.stopTimers()
	s.current.Store("")

	if !s.inRun {
		s.idleStreak = 0
	} else if s.idleStreak++; s.idleStreak >= len(s.scenes) {
		s.idleStreak = 0
		s.log.Debug().Dur("backoff", s.opts.IdleBackoff).Msg("no scene had anything to show")
		s.pauseTimer = s.loop.AfterFunc(s.opts.IdleBackoff, s.advance)
		return
	}
	// posted so a scene completing inside Run does not recurse into the next Run
	s.loop.Post(s.advance)
}

func (s *Scheduler) stopTimers() {
	if s.pauseTimer != nil {
		s.pauseTimer.Stop()
		s.pauseTimer = nil
	}
	if s.forceTimer != nil {
		s.forceTimer.Stop()
		s.forceTimer = nil
	}
}
