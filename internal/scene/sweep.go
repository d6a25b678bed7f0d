package scene

import (
	"fmt"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/gridzilla/internal/layout"
	"github.com/coreman2200/gridzilla/internal/pixel"
)

const DefaultSweepPerItemPeriod = time.Second

// Sweep lights one universe at a time, in descriptor order, each in its own
// hue and labelled with its universe id. It shows whether the wiring
// matches the mapper.
type Sweep struct {
	Lifecycle
	mapper  *layout.Mapper
	perItem time.Duration
	order   []layout.Universe
	index   int
}

func NewSweep(name string, env Env, m *layout.Mapper, o Options) *Sweep {
	s := &Sweep{mapper: m, perItem: o.perItem(DefaultSweepPerItemPeriod)}
	s.init(s, name, env)
	if m != nil {
		s.order = m.Topology().Universes()
	}
	return s
}

func (s *Sweep) Run() {
	if len(s.order) == 0 {
		s.skip()
		return
	}
	if !s.begin() {
		return
	}
	s.index = 0
	s.step()
}

func (s *Sweep) step() {
	if s.index >= len(s.order) {
		s.complete()
		return
	}
	canvas := s.env.Canvas
	canvas.Clear()

	per := s.mapper.Topology().UniversesPerController()
	controller, u := s.index/per, s.index%per
	r, err := s.mapper.Region(controller, u)
	if err != nil {
		s.log.Error().Err(err).Msg("universe region")
		s.complete()
		return
	}
	hue := 360 * float64(s.index) / float64(len(s.order))
	rr, gg, bb := colorful.Hsv(hue, 1, 1).RGB255()
	c := pixel.RGB{R: rr, G: gg, B: bb}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			canvas.SetPixel(x, y, c)
		}
	}
	// label in the image view: the region's top edge is canvas y Max-1
	label := fmt.Sprint(u)
	top := canvas.H - r.Max.Y
	drawText(canvas, label, r.Min.X+(r.Dx()-textWidth(label))/2, top, pixel.Black)
	s.show()

	s.index++
	s.after(s.perItem, s.step)
}
