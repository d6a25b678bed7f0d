package scene

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/gridzilla/internal/pixel"
)

const (
	DefaultBannerPeriod = 10 * time.Second
	fadeSteps           = 10
	fadeStep            = 50 * time.Millisecond
)

// Banner shows up to three centred lines of text for one period, fading
// in from black. Lines too wide for the grid scroll once the fade is done.
type Banner struct {
	Lifecycle
	lines  []string
	color  pixel.RGB
	period time.Duration
	step   int
	offset int
}

func NewBanner(name string, env Env, lines []string, c pixel.RGB, o Options) *Banner {
	b := &Banner{color: c, period: o.period(DefaultBannerPeriod)}
	for _, l := range lines {
		if l != "" && len(b.lines) < 3 {
			b.lines = append(b.lines, l)
		}
	}
	b.init(b, name, env)
	return b
}

func (b *Banner) Run() {
	if len(b.lines) == 0 {
		b.skip()
		return
	}
	if !b.begin() {
		return
	}
	b.step = 0
	b.offset = 0
	b.fade()
	b.after(b.period, b.complete)
}

func (b *Banner) fade() {
	b.step++
	b.draw(fadeColor(b.color, float64(b.step)/fadeSteps))
	switch {
	case b.step < fadeSteps:
		b.after(fadeStep, b.fade)
	case b.Scrolls():
		b.after(marqueeInterval, b.scroll)
	}
}

func (b *Banner) scroll() {
	b.offset++
	b.draw(b.color)
	b.after(marqueeInterval, b.scroll)
}

// Scrolls reports whether any line is too wide to stand still.
func (b *Banner) Scrolls() bool { return overflows(b.lines, b.env.Canvas.W) }

func (b *Banner) draw(c pixel.RGB) {
	canvas := b.env.Canvas
	canvas.Clear()
	for i, top := range centredTops(len(b.lines), canvas.H) {
		drawLine(canvas, b.lines[i], 0, canvas.W, top, b.offset, c)
	}
	b.show()
}

// fadeColor blends from black to c in Lab space; t runs 0..1.
func fadeColor(c pixel.RGB, t float64) pixel.RGB {
	if t >= 1 {
		return c
	}
	from, _ := colorful.MakeColor(pixel.Black)
	to, _ := colorful.MakeColor(c)
	r, g, bl := from.BlendLab(to, t).Clamped().RGB255()
	return pixel.RGB{R: r, G: g, B: bl}
}
