// Package loop runs scene and scheduler code on a single goroutine.
//
// Everything that touches scheduler or scene state is either a timer
// callback or a posted function, so none of it needs locking.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a pending callback. Stop reports whether it prevented the call;
// stopping a fired or stopped timer is a no-op.
type Timer interface {
	Stop() bool
}

// Loop schedules work onto the loop goroutine.
type Loop interface {
	// AfterFunc calls f on the loop goroutine once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
	// Post queues f to run on the loop goroutine. Safe from any goroutine.
	Post(f func())
}

// Runner is the production Loop. Nothing runs until Run is called.
type Runner struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool
	wake    chan struct{}
}

func New() *Runner {
	return &Runner{wake: make(chan struct{}, 1)}
}

// Run executes posted work until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	defer func() {
		r.mu.Lock()
		r.stopped = true
		r.queue = nil
		r.mu.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.wake:
		}
		for {
			r.mu.Lock()
			if len(r.queue) == 0 {
				r.mu.Unlock()
				break
			}
			f := r.queue[0]
			r.queue[0] = nil
			r.queue = r.queue[1:]
			r.mu.Unlock()
			f()
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

// Post never blocks, so the loop may post to itself. Work posted after
// the loop has stopped is dropped.
func (r *Runner) Post(f func()) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.queue = append(r.queue, f)
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runner) AfterFunc(d time.Duration, f func()) Timer {
	t := &timer{}
	t.t = time.AfterFunc(d, func() {
		r.Post(func() {
			// Stop may have won the race after the runtime timer fired.
			if t.state.CompareAndSwap(pending, fired) {
				f()
			}
		})
	})
	return t
}

const (
	pending int32 = iota
	fired
	stopped
)

type timer struct {
	t     *time.Timer
	state atomic.Int32
}

func (t *timer) Stop() bool {
	if !t.state.CompareAndSwap(pending, stopped) {
		return false
	}
	t.t.Stop()
	return true
}
