package loop

import (
	"sort"
	"sync"
	"time"
)

// Virtual is a Loop driven by hand. Time only moves in Advance, which runs
// due timers in deadline order (ties in creation order) on the caller's
// goroutine.
type Virtual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*vtimer
	posted []func()
}

func NewVirtual() *Virtual { return &Virtual{} }

type vtimer struct {
	v    *Virtual
	at   time.Duration
	seq  int
	f    func()
	done bool
}

func (t *vtimer) Stop() bool {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.v.remove(t)
	return true
}

// Now is the virtual time elapsed since NewVirtual.
func (v *Virtual) Now() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *Virtual) AfterFunc(d time.Duration, f func()) Timer {
	v.mu.Lock()
	defer v.mu.Unlock()
	if d < 0 {
		d = 0
	}
	v.seq++
	t := &vtimer{v: v, at: v.now + d, seq: v.seq, f: f}
	v.timers = append(v.timers, t)
	sort.SliceStable(v.timers, func(i, j int) bool {
		a, b := v.timers[i], v.timers[j]
		if a.at != b.at {
			return a.at < b.at
		}
		return a.seq < b.seq
	})
	return t
}

// Post queues f; it runs on the next Advance or Drain.
func (v *Virtual) Post(f func()) {
	v.mu.Lock()
	v.posted = append(v.posted, f)
	v.mu.Unlock()
}

// Pending is the number of timers that have neither fired nor been stopped.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.timers)
}

// Drain runs posted work, including work posted while draining.
func (v *Virtual) Drain() {
	for {
		v.mu.Lock()
		if len(v.posted) == 0 {
			v.mu.Unlock()
			return
		}
		f := v.posted[0]
		v.posted = v.posted[1:]
		v.mu.Unlock()
		f()
	}
}

// Advance moves time forward by d, firing every timer that comes due.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	end := v.now + d
	v.mu.Unlock()

	v.Drain()
	for {
		v.mu.Lock()
		if len(v.timers) == 0 || v.timers[0].at > end {
			v.now = end
			v.mu.Unlock()
			return
		}
		t := v.timers[0]
		v.timers = v.timers[1:]
		t.done = true
		v.now = t.at
		v.mu.Unlock()

		t.f()
		v.Drain()
	}
}

func (v *Virtual) remove(t *vtimer) {
	for i, x := range v.timers {
		if x == t {
			v.timers = append(v.timers[:i], v.timers[i+1:]...)
			return
		}
	}
}
