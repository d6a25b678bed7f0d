// Package artnet stages RGB channel data per universe and ships it to the
// controllers as ArtDmx packets.
package artnet

import (
	"errors"
	"fmt"

	"github.com/coreman2200/gridzilla/internal/layout"
	"github.com/coreman2200/gridzilla/internal/pixel"
)

// ErrTransmit wraps any failure to put a frame on the wire. Callers log it
// and carry on with the next frame.
var ErrTransmit = errors.New("transmit failed")

// Sender is the contract the grid transform drives. Universes must be
// configured before data is staged for them.
type Sender interface {
	// Configure registers a universe. Configuring the same universe twice is a no-op.
	Configure(u layout.Universe) error
	// SetChannelData stages c at the 1-based channel and the two after it.
	// Writes to unknown universes or past the end are dropped.
	SetChannelData(address string, universe, channel int, c pixel.RGB)
	// Send transmits the staged data of one universe as a single frame.
	Send(address string, universe int) error
	Close() error
}

type key struct {
	addr     string
	universe int
}

func (k key) String() string { return fmt.Sprintf("%s/%d", k.addr, k.universe) }

// stage is one universe's channel buffer plus its send bookkeeping.
type stage struct {
	u     layout.Universe
	data  []byte
	dirty bool
	sent  bool
	seq   uint8
}

func newStage(u layout.Universe) *stage {
	return &stage{u: u, data: make([]byte, layout.MaxChannels)}
}

func (s *stage) set(channel int, c pixel.RGB) {
	i := channel - 1
	if i < 0 || i+3 > len(s.data) {
		return
	}
	if s.data[i] == c.R && s.data[i+1] == c.G && s.data[i+2] == c.B {
		return
	}
	s.data[i], s.data[i+1], s.data[i+2] = c.R, c.G, c.B
	s.dirty = true
}

// due reports whether a Send should hit the wire.
func (s *stage) due() bool {
	return !s.u.SendOnlyChangeData || s.dirty || !s.sent
}

// next returns the sequence byte for the next packet: 0 when sequencing is
// off, otherwise 1..255 wrapping back to 1.
func (s *stage) next() uint8 {
	if !s.u.SendSequenceNumbers {
		return 0
	}
	s.seq++
	if s.seq == 0 {
		s.seq = 1
	}
	return s.seq
}

func (s *stage) markSent() {
	s.dirty = false
	s.sent = true
}
