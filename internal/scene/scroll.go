package scene

import (
	"time"

	"github.com/coreman2200/gridzilla/internal/pixel"
)

// Scroll layout on the 36 pixel grid.
const (
	DefaultScrollSpeed  = 45
	headerTop           = 4
	scrollTopWithHeader = 19
	scrollTopNoHeader   = 12
)

// Scroll shows an optional header over a line of text scrolling right to
// left. A header too wide for the grid scrolls as a marquee. With a period the text repeats until the period ends; without
// one the scene completes after a single pass.
type Scroll struct {
	Lifecycle
	header string
	text   string
	color  pixel.RGB
	speed  int
	period time.Duration

	x     int
	width int
	ticks int
}

// NewScroll builds a scroll scene. speed is in pixels per second.
func NewScroll(name string, env Env, header, text string, c pixel.RGB, speed int, o Options) *Scroll {
	if speed <= 0 {
		speed = DefaultScrollSpeed
	}
	s := &Scroll{header: header, text: text, color: c, speed: speed, period: o.Period}
	s.init(s, name, env)
	return s
}

func (s *Scroll) interval() time.Duration { return time.Second / time.Duration(s.speed) }

func (s *Scroll) Run() {
	if s.text == "" {
		s.skip()
		return
	}
	if !s.begin() {
		return
	}
	s.width = textWidth(s.text)
	s.x = s.env.Canvas.W
	s.ticks = 0
	if s.period > 0 {
		s.after(s.period, s.complete)
	}
	s.frame()
}

func (s *Scroll) frame() {
	canvas := s.env.Canvas
	canvas.Clear()
	top := scrollTopNoHeader
	if s.header != "" {
		drawLine(canvas, s.header, 0, canvas.W, headerTop, s.ticks, s.color)
		top = scrollTopWithHeader
	}
	drawText(canvas, s.text, s.x, top, s.color)
	s.show()

	s.x--
	s.ticks++
	if s.x < -s.width {
		if s.period <= 0 {
			s.complete()
			return
		}
		s.x = canvas.W
	}
	s.after(s.interval(), s.frame)
}
