package scene

import (
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/coreman2200/gridzilla/internal/pixel"
)

const DefaultQRPeriod = 15 * time.Second

// QR shows a QR code on the left with up to three caption lines beside it.
// Light modules are lit, with a one pixel lit border as the quiet zone.
// Captions too wide for the space beside the code scroll.
type QR struct {
	Lifecycle
	content string
	caption []string
	color   pixel.RGB
	period  time.Duration
	bitmap  [][]bool
	offset  int
}

func NewQR(name string, env Env, content string, caption []string, c pixel.RGB, o Options) *QR {
	s := &QR{content: content, color: c, period: o.period(DefaultQRPeriod)}
	for _, l := range caption {
		if l != "" && len(s.caption) < 3 {
			s.caption = append(s.caption, l)
		}
	}
	s.init(s, name, env)
	if content != "" {
		q, err := qrcode.New(content, qrcode.Low)
		if err != nil {
			s.log.Error().Err(err).Msg("encode qr code")
		} else {
			q.DisableBorder = true
			s.bitmap = q.Bitmap()
		}
	}
	return s
}

func (s *QR) Run() {
	canvas := s.env.Canvas
	if len(s.bitmap) == 0 || len(s.bitmap)+2 > canvas.H {
		if len(s.bitmap) > 0 {
			s.log.Warn().Int("modules", len(s.bitmap)).Msg("qr code does not fit the canvas")
		}
		s.skip()
		return
	}
	if !s.begin() {
		return
	}
	s.offset = 0
	s.render()
	s.after(s.period, s.complete)
	if overflows(s.caption, s.env.Canvas.W-s.textLeft()) {
		s.after(marqueeInterval, s.scroll)
	}
}

func (s *QR) scroll() {
	s.offset++
	s.render()
	s.after(marqueeInterval, s.scroll)
}

func (s *QR) textLeft() int {
	size := len(s.bitmap) + 2
	return (s.env.Canvas.H-size)/2 + size
}

func (s *QR) render() {
	canvas := s.env.Canvas
	canvas.Clear()
	size := len(s.bitmap) + 2
	top := (canvas.H - size) / 2
	left := top
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if y == 0 || x == 0 || y == size-1 || x == size-1 || !s.bitmap[y-1][x-1] {
				canvas.Set(left+x, top+y, s.color)
			}
		}
	}
	for i, t := range centredTops(len(s.caption), canvas.H) {
		drawLine(canvas, s.caption[i], s.textLeft(), canvas.W, t, s.offset, s.color)
	}
	s.show()
}
