package artnet

import (
	"fmt"
	"sync"

	"github.com/coreman2200/gridzilla/internal/layout"
	"github.com/coreman2200/gridzilla/internal/pixel"
)

// Frame is one recorded Send.
type Frame struct {
	Address  string
	Universe int
	Sequence uint8
	Data     []byte
}

// Recorder is an in-memory Sender. It applies the same staging rules as
// Node and keeps every frame it would have transmitted.
type Recorder struct {
	// Fail, when set, is returned (wrapped in ErrTransmit) from every Send.
	Fail error

	mu     sync.Mutex
	stages map[key]*stage
	order  []layout.Universe
	frames []Frame
	closed bool
}

func NewRecorder() *Recorder {
	return &Recorder{stages: make(map[key]*stage)}
}

func (r *Recorder) Configure(u layout.Universe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{u.Address, u.Universe}
	if _, ok := r.stages[k]; ok {
		return nil
	}
	r.stages[k] = newStage(u)
	r.order = append(r.order, u)
	return nil
}

func (r *Recorder) SetChannelData(address string, universe, channel int, c pixel.RGB) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stages[key{address, universe}]; ok {
		s.set(channel, c)
	}
}

func (r *Recorder) Send(address string, universe int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{address, universe}
	s, ok := r.stages[k]
	if !ok {
		return fmt.Errorf("%w: universe %s not configured", ErrTransmit, k)
	}
	if r.Fail != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransmit, k, r.Fail)
	}
	if !s.due() {
		return nil
	}
	r.frames = append(r.frames, Frame{
		Address:  address,
		Universe: universe,
		Sequence: s.next(),
		Data:     append([]byte(nil), s.data...),
	})
	s.markSent()
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// Configured lists universes in the order they were configured.
func (r *Recorder) Configured() []layout.Universe {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]layout.Universe(nil), r.order...)
}

// Frames returns every frame sent so far.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

// Last returns the most recent frame for a universe.
func (r *Recorder) Last(address string, universe int) (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.frames) - 1; i >= 0; i-- {
		if f := r.frames[i]; f.Address == address && f.Universe == universe {
			return f, true
		}
	}
	return Frame{}, false
}

// Reset forgets recorded frames, keeping staged data.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.frames = nil
	r.mu.Unlock()
}

func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
