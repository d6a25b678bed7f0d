package transform

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coreman2200/gridzilla/internal/artnet"
	"github.com/coreman2200/gridzilla/internal/layout"
	"github.com/coreman2200/gridzilla/internal/pixel"
)

// Grid maps every canvas pixel to its Art-Net channel and sends one frame
// per universe.
type Grid struct {
	mapper    *layout.Mapper
	sender    artnet.Sender
	universes []layout.Universe
	// addrs caches Map for every pixel, indexed y*W+x in canvas coordinates.
	addrs []layout.Address
	log   zerolog.Logger
}

// NewGrid configures every universe of the mapper's topology on s.
func NewGrid(m *layout.Mapper, s artnet.Sender, log zerolog.Logger) (*Grid, error) {
	g := &Grid{
		mapper:    m,
		sender:    s,
		universes: m.Topology().Universes(),
		addrs:     make([]layout.Address, m.Width()*m.Height()),
		log:       log,
	}
	for _, u := range g.universes {
		if err := s.Configure(u); err != nil {
			return nil, fmt.Errorf("configure universe %s: %w", u, err)
		}
	}
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			a, err := m.Map(x, y)
			if err != nil {
				return nil, err
			}
			g.addrs[y*m.Width()+x] = a
		}
	}
	return g, nil
}

func (g *Grid) TransformScreen(b *pixel.Buffer) error {
	w, h := g.mapper.Width(), g.mapper.Height()
	if b.W != w || b.H != h {
		return fmt.Errorf("%w: buffer is %dx%d, grid is %dx%d", layout.ErrOutOfBounds, b.W, b.H, w, h)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := g.addrs[y*w+x]
			g.sender.SetChannelData(a.Device, a.Universe, a.Channel, b.Pixel(x, y))
		}
	}
	for _, u := range g.universes {
		if err := g.sender.Send(u.Address, u.Universe); err != nil {
			g.log.Error().Err(err).Str("universe", u.String()).Msg("send frame")
		}
	}
	return nil
}

func (g *Grid) Close() error {
	return g.sender.Close()
}
