package layout

import (
	"fmt"
	"image"
)

// Address locates the three channels holding one pixel.
type Address struct {
	Controller int
	Device     string
	Universe   int
	// Channel is 1-based; R, G and B sit at Channel, Channel+1, Channel+2.
	Channel int
}

// Mapper turns canvas coordinates into protocol addresses for a fixed
// topology. Canvas coordinates have their origin at the bottom-left pixel.
//
// Universe rows are numbered from the top of a controller down: the top row
// of universes holds ids 0..ControllerWidth-1, the next row down continues
// from ControllerWidth. Inside a universe the wire snakes column by column,
// starting at the top of column 0 and reversing every column.
//
// The row order matches the Gridzilla mounting. It has not been checked on
// every installation; run the sweep scene or `gridzilla locate` on new
// hardware before trusting it.
type Mapper struct {
	t    Topology
	w, h int
}

// NewMapper validates t and fails with ErrConfiguration if the grid cannot be
// addressed.
func NewMapper(t Topology) (*Mapper, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Mapper{t: t, w: t.Width(), h: t.Height()}, nil
}

func (m *Mapper) Topology() Topology { return m.t }
func (m *Mapper) Width() int         { return m.w }
func (m *Mapper) Height() int        { return m.h }

// Map returns the address of canvas pixel (x, y).
func (m *Mapper) Map(x, y int) (Address, error) {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return Address{}, fmt.Errorf("%w: (%d,%d) outside %dx%d canvas", ErrOutOfBounds, x, y, m.w, m.h)
	}
	t := m.t
	span := t.ControllerWidth * t.UniverseWidth
	c := x / span
	col := (x % span) / t.UniverseWidth
	row := y / t.UniverseHeight

	lx := x % t.UniverseWidth
	ty := t.UniverseHeight - 1 - y%t.UniverseHeight
	ey := ty
	if lx%2 == 1 {
		ey = t.UniverseHeight - 1 - ty
	}
	return Address{
		Controller: c,
		Device:     t.Controllers[c],
		Universe:   (t.ControllerHeight-1-row)*t.ControllerWidth + col,
		Channel:    1 + 3*(lx*t.UniverseHeight+ey),
	}, nil
}

// Region is the canvas rectangle a universe covers, in canvas coordinates.
func (m *Mapper) Region(controller, universe int) (image.Rectangle, error) {
	t := m.t
	if controller < 0 || controller >= len(t.Controllers) || universe < 0 || universe >= t.UniversesPerController() {
		return image.Rectangle{}, fmt.Errorf("%w: universe %d on controller %d", ErrOutOfBounds, universe, controller)
	}
	row := t.ControllerHeight - 1 - universe/t.ControllerWidth
	x0 := controller*t.ControllerWidth*t.UniverseWidth + (universe%t.ControllerWidth)*t.UniverseWidth
	y0 := row * t.UniverseHeight
	return image.Rect(x0, y0, x0+t.UniverseWidth, y0+t.UniverseHeight), nil
}
