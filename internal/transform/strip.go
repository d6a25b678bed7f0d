package transform

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"github.com/coreman2200/gridzilla/internal/layout"
	"github.com/coreman2200/gridzilla/internal/pixel"
)

// Strip drives a small WS2812 matrix over SPI, a bench stand-in for the
// grid. The buffer must match the strip's matrix size.
type Strip struct {
	order layout.Serpentine
	dev   *nrzled.Dev
	raw   []byte
	port  spi.PortCloser
}

// NewStrip wraps an already opened SPI port.
func NewStrip(p spi.Port, order layout.Serpentine) (*Strip, error) {
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: order.Count(),
		Channels:  3,
		Freq:      2500 * physic.KiloHertz,
	})
	if err != nil {
		return nil, fmt.Errorf("open strip: %w", err)
	}
	if err := d.Halt(); err != nil {
		return nil, fmt.Errorf("halt strip: %w", err)
	}
	return &Strip{order: order, dev: d, raw: make([]byte, 3*order.Count())}, nil
}

// OpenStrip initialises the host drivers and opens the named SPI port,
// the first one available when name is empty.
func OpenStrip(name string, order layout.Serpentine) (*Strip, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", name, err)
	}
	s, err := NewStrip(p, order)
	if err != nil {
		p.Close()
		return nil, err
	}
	s.port = p
	return s, nil
}

func (s *Strip) TransformScreen(b *pixel.Buffer) error {
	if b.W != s.order.W || b.H != s.order.H {
		return fmt.Errorf("%w: buffer is %dx%d, strip is %dx%d", layout.ErrOutOfBounds, b.W, b.H, s.order.W, s.order.H)
	}
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			c := b.Pixel(x, y)
			i := 3 * s.order.Index(x, y)
			s.raw[i], s.raw[i+1], s.raw[i+2] = c.R, c.G, c.B
		}
	}
	_, err := s.dev.Write(s.raw)
	return err
}

// Close turns the strip off and releases the port.
func (s *Strip) Close() error {
	err := s.dev.Halt()
	if s.port != nil {
		if cerr := s.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
