package artnet

import (
	"encoding/binary"
	"fmt"
)

// Port is the Art-Net UDP port, used both as source and destination.
const Port = 6454

const (
	opDmx       = 0x5000
	protVersion = 14
	headerLen   = 18
)

var magic = [8]byte{'A', 'r', 't', '-', 'N', 'e', 't', 0}

// Dmx is an ArtDmx packet.
type Dmx struct {
	Sequence uint8
	Physical uint8
	// Universe is the 15 bit port-address: net, sub-net and universe.
	Universe uint16
	Data     []byte
}

// MarshalBinary encodes the packet. Data is padded to an even length
// between 2 and 512 bytes.
func (p Dmx) MarshalBinary() ([]byte, error) {
	n := len(p.Data)
	if n > 512 {
		return nil, fmt.Errorf("artnet: %d bytes of dmx data", n)
	}
	if p.Universe > 0x7fff {
		return nil, fmt.Errorf("artnet: universe %d out of range", p.Universe)
	}
	if n < 2 {
		n = 2
	}
	n += n % 2

	b := make([]byte, headerLen+n)
	copy(b, magic[:])
	binary.LittleEndian.PutUint16(b[8:], opDmx)
	binary.BigEndian.PutUint16(b[10:], protVersion)
	b[12] = p.Sequence
	b[13] = p.Physical
	b[14] = byte(p.Universe)
	b[15] = byte(p.Universe >> 8)
	binary.BigEndian.PutUint16(b[16:], uint16(n))
	copy(b[headerLen:], p.Data)
	return b, nil
}

// UnmarshalBinary decodes an ArtDmx packet.
func (p *Dmx) UnmarshalBinary(b []byte) error {
	if len(b) < headerLen || string(b[:8]) != string(magic[:]) {
		return fmt.Errorf("artnet: not an art-net packet")
	}
	if op := binary.LittleEndian.Uint16(b[8:]); op != opDmx {
		return fmt.Errorf("artnet: opcode %#04x is not ArtDmx", op)
	}
	n := int(binary.BigEndian.Uint16(b[16:]))
	if n > len(b)-headerLen {
		return fmt.Errorf("artnet: length %d exceeds packet", n)
	}
	p.Sequence = b[12]
	p.Physical = b[13]
	p.Universe = uint16(b[14]) | uint16(b[15]&0x7f)<<8
	p.Data = append(p.Data[:0], b[headerLen:headerLen+n]...)
	return nil
}
