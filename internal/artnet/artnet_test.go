package artnet

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/gridzilla/internal/layout"
	"github.com/coreman2200/gridzilla/internal/pixel"
)

func TestDmxHeader(t *testing.T) {
	b, err := Dmx{Sequence: 7, Universe: 0x0123, Data: []byte{1, 2, 3}}.MarshalBinary()
	require.NoError(t, err)

	assert.Equal(t, "Art-Net\x00", string(b[:8]))
	assert.Equal(t, []byte{0x00, 0x50}, b[8:10], "opcode is little endian")
	assert.Equal(t, []byte{0, 14}, b[10:12])
	assert.Equal(t, byte(7), b[12])
	assert.Equal(t, byte(0x23), b[14], "sub-uni")
	assert.Equal(t, byte(0x01), b[15], "net")
	assert.Equal(t, []byte{0, 4}, b[16:18], "odd length padded to even")
	assert.Len(t, b, 22)

	var p Dmx
	require.NoError(t, p.UnmarshalBinary(b))
	assert.Equal(t, uint16(0x0123), p.Universe)
	assert.Equal(t, []byte{1, 2, 3, 0}, p.Data)
}

func TestDmxRejectsOversize(t *testing.T) {
	_, err := Dmx{Data: make([]byte, 513)}.MarshalBinary()
	assert.Error(t, err)
	_, err = Dmx{Universe: 0x8000}.MarshalBinary()
	assert.Error(t, err)
}

func uni(addr string, u int) layout.Universe {
	return layout.Universe{Address: addr, Universe: u}
}

func TestRecorderStagesChannels(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.Configure(uni("a", 0)))
	require.NoError(t, r.Configure(uni("a", 0)))
	assert.Len(t, r.Configured(), 1)

	r.SetChannelData("a", 0, 1, pixel.RGB{R: 1, G: 2, B: 3})
	r.SetChannelData("a", 0, 4, pixel.RGB{R: 4, G: 5, B: 6})
	r.SetChannelData("a", 0, 4, pixel.RGB{R: 7, G: 8, B: 9})
	r.SetChannelData("a", 0, 511, pixel.RGB{R: 1}) // would spill past 512
	r.SetChannelData("b", 0, 1, pixel.RGB{R: 1})   // unknown universe
	require.NoError(t, r.Send("a", 0))

	f, ok := r.Last("a", 0)
	require.True(t, ok)
	assert.Len(t, f.Data, layout.MaxChannels)
	assert.Equal(t, []byte{1, 2, 3, 7, 8, 9, 0}, f.Data[:7])
	assert.Zero(t, f.Data[510])
	assert.Zero(t, f.Sequence)

	err := r.Send("b", 0)
	assert.ErrorIs(t, err, ErrTransmit)
}

func TestOnlyChangedDataIsResent(t *testing.T) {
	r := NewRecorder()
	u := uni("a", 3)
	u.SendOnlyChangeData = true
	require.NoError(t, r.Configure(u))

	require.NoError(t, r.Send("a", 3)) // first frame always goes out
	require.NoError(t, r.Send("a", 3))
	assert.Len(t, r.Frames(), 1)

	r.SetChannelData("a", 3, 1, pixel.RGB{})
	require.NoError(t, r.Send("a", 3))
	assert.Len(t, r.Frames(), 1, "writing the same value is not a change")

	r.SetChannelData("a", 3, 1, pixel.RGB{G: 9})
	require.NoError(t, r.Send("a", 3))
	assert.Len(t, r.Frames(), 2)
}

func TestSequenceWrapsSkippingZero(t *testing.T) {
	s := newStage(layout.Universe{SendSequenceNumbers: true})
	var last uint8
	for i := 0; i < 255; i++ {
		last = s.next()
	}
	assert.Equal(t, uint8(255), last)
	assert.Equal(t, uint8(1), s.next())
}

func TestRecorderFailure(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.Configure(uni("a", 0)))
	r.Fail = errors.New("unplugged")
	assert.ErrorIs(t, r.Send("a", 0), ErrTransmit)
	assert.Empty(t, r.Frames())
}

func TestNodeSendsOverUDP(t *testing.T) {
	ln, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer ln.Close()

	n := NewNode()
	n.DestPort = ln.LocalAddr().(*net.UDPAddr).Port
	defer n.Close()

	u := layout.Universe{Address: "127.0.0.1", Universe: 5, SendSequenceNumbers: true}
	require.NoError(t, n.Configure(u))
	n.SetChannelData("127.0.0.1", 5, 1, pixel.RGB{R: 0xff, G: 0x80, B: 0x01})
	require.NoError(t, n.Send("127.0.0.1", 5))

	buf := make([]byte, 1024)
	require.NoError(t, ln.SetReadDeadline(time.Now().Add(2*time.Second)))
	nr, _, err := ln.ReadFromUDP(buf)
	require.NoError(t, err)

	var p Dmx
	require.NoError(t, p.UnmarshalBinary(buf[:nr]))
	assert.Equal(t, uint16(5), p.Universe)
	assert.Equal(t, uint8(1), p.Sequence)
	assert.Len(t, p.Data, 512)
	assert.Equal(t, []byte{0xff, 0x80, 0x01}, p.Data[:3])

	assert.ErrorIs(t, n.Send("127.0.0.1", 6), ErrTransmit)
}
