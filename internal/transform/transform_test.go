package transform

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/coreman2200/gridzilla/internal/artnet"
	"github.com/coreman2200/gridzilla/internal/layout"
	"github.com/coreman2200/gridzilla/internal/pixel"
)

func gridzilla() layout.Topology {
	return layout.Topology{
		Controllers:      []string{"10.7.87.6", "10.7.87.8", "10.7.87.10"},
		ControllerWidth:  4,
		ControllerHeight: 3,
		UniverseWidth:    14,
		UniverseHeight:   12,
		SourcePort:       artnet.Port,
	}
}

func newGrid(t *testing.T) (*Grid, *artnet.Recorder) {
	t.Helper()
	m, err := layout.NewMapper(gridzilla())
	require.NoError(t, err)
	rec := artnet.NewRecorder()
	g, err := NewGrid(m, rec, zerolog.Nop())
	require.NoError(t, err)
	return g, rec
}

func TestGridConfiguresEveryUniverse(t *testing.T) {
	_, rec := newGrid(t)
	us := rec.Configured()
	require.Len(t, us, 36)
	assert.Equal(t, "10.7.87.6", us[0].Address)
	assert.Equal(t, 0, us[0].Universe)
	assert.Equal(t, "10.7.87.10", us[35].Address)
	assert.Equal(t, 11, us[35].Universe)
}

func TestTopLeftPixelLandsOnFirstChannels(t *testing.T) {
	g, rec := newGrid(t)
	b := pixel.New(168, 36)
	b.Set(0, 0, pixel.RGB{R: 255})

	require.NoError(t, g.TransformScreen(b))
	assert.Len(t, rec.Frames(), 36, "one frame per universe")

	f, ok := rec.Last("10.7.87.6", 0)
	require.True(t, ok)
	assert.Equal(t, []byte{255, 0, 0, 0}, f.Data[:4])
	for _, other := range rec.Frames()[1:] {
		assert.NotContains(t, other.Data, byte(255))
	}
}

func TestEveryPixelReachesTheWire(t *testing.T) {
	g, rec := newGrid(t)
	b := pixel.New(168, 36)
	b.Fill(pixel.RGB{R: 1, G: 2, B: 3})
	require.NoError(t, g.TransformScreen(b))

	lit := 0
	for _, f := range rec.Frames() {
		for i := 0; i+2 < 504; i += 3 {
			if f.Data[i] == 1 && f.Data[i+1] == 2 && f.Data[i+2] == 3 {
				lit++
			}
		}
	}
	assert.Equal(t, 168*36, lit)
}

func TestGridRejectsWrongBuffer(t *testing.T) {
	g, rec := newGrid(t)
	err := g.TransformScreen(pixel.New(10, 10))
	assert.ErrorIs(t, err, layout.ErrOutOfBounds)
	assert.Empty(t, rec.Frames())
}

func TestSendFailuresAreNotFatal(t *testing.T) {
	g, rec := newGrid(t)
	rec.Fail = errors.New("no route to host")
	assert.NoError(t, g.TransformScreen(pixel.New(168, 36)))
}

type publisher struct{ frames []Frame }

func (p *publisher) PublishFrame(f Frame) { p.frames = append(p.frames, f) }

func TestPreviewSkipsRepeatedFrames(t *testing.T) {
	pub := &publisher{}
	p := NewPreview(pub)
	b := pixel.New(4, 2)

	require.NoError(t, p.TransformScreen(b))
	require.NoError(t, p.TransformScreen(b))
	require.Len(t, pub.frames, 1)

	b.SetPixel(0, 1, pixel.RGB{B: 9})
	require.NoError(t, p.TransformScreen(b))
	require.Len(t, pub.frames, 2)
	assert.Equal(t, uint64(2), pub.frames[1].ID)
	assert.Equal(t, byte(9), pub.frames[1].RGB[2], "top row first")
}

func TestTerminalRendersHalfBlocks(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out)
	require.NoError(t, term.TransformScreen(pixel.New(3, 3)))
	s := out.String()
	assert.True(t, strings.HasPrefix(s, "\x1b[H"))
	assert.Equal(t, 2, strings.Count(s, "\n"))
	assert.Equal(t, 6, strings.Count(s, "▀"))
}

func TestStripWritesSerpentineOrder(t *testing.T) {
	var buf bytes.Buffer
	order := layout.Serpentine{W: 3, H: 2, FlipEveryRow: true}
	s, err := NewStrip(spitest.NewRecordRaw(&buf), order)
	require.NoError(t, err)
	halt := buf.Len()
	assert.Equal(t, 12*6+3, halt)

	b := pixel.New(3, 2)
	b.SetPixel(0, 1, pixel.RGB{R: 7})
	require.NoError(t, s.TransformScreen(b))
	assert.Equal(t, 2*halt, buf.Len())
	assert.Equal(t, byte(7), s.raw[3*order.Index(0, 1)])
	assert.Equal(t, byte(7), s.raw[15])

	assert.ErrorIs(t, s.TransformScreen(pixel.New(4, 2)), layout.ErrOutOfBounds)
	require.NoError(t, s.Close())
}

type failing struct{ n int }

func (f *failing) TransformScreen(*pixel.Buffer) error {
	f.n++
	return errors.New("boom")
}

func TestTeeDrivesEveryOutput(t *testing.T) {
	a, b := &failing{}, &failing{}
	err := Tee{a, b}.TransformScreen(pixel.New(1, 1))
	assert.Error(t, err)
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}

func TestNewSelectsOutput(t *testing.T) {
	pub := &publisher{}
	var tests = []struct {
		opts Options
		want any
	}{
		{Options{Kind: "auto", TargetEnv: "Dev", Publisher: pub}, &Preview{}},
		{Options{Kind: "", TargetEnv: "dev", Publisher: pub}, &Preview{}},
		{Options{Kind: "terminal"}, &Terminal{}},
		{Options{Kind: "PREVIEW", Publisher: pub}, &Preview{}},
	}
	for _, tc := range tests {
		tc.opts.Topology = gridzilla()
		tr, err := New(tc.opts)
		require.NoError(t, err)
		assert.IsType(t, tc.want, tr)
	}

	assert.Equal(t, KindArtNet, Options{TargetEnv: "Prod"}.Resolve())

	_, err := New(Options{Kind: "laser", Topology: gridzilla()})
	assert.ErrorIs(t, err, layout.ErrConfiguration)
	_, err = New(Options{Kind: "preview", Topology: gridzilla()})
	assert.ErrorIs(t, err, layout.ErrConfiguration)
	_, err = New(Options{Kind: "terminal"})
	assert.ErrorIs(t, err, layout.ErrConfiguration, "topology is validated first")
}
