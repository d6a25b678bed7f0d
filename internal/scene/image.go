package scene

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	xdraw "golang.org/x/image/draw"
)

const (
	DefaultImagePeriod        = 30 * time.Second
	DefaultImagePerItemPeriod = 8 * time.Second
)

// Loader fetches a decoded image by name.
type Loader func(name string) (image.Image, error)

// DirLoader decodes image files relative to dir.
func DirLoader(dir string) Loader {
	return func(name string) (image.Image, error) {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return img, nil
	}
}

// Image shows a list of pictures, one per item period. Pictures taller than
// the canvas are scaled down to fit, pictures wider than it scroll past.
// The next picture only starts if it can finish inside the scene period.
type Image struct {
	Lifecycle
	names   []string
	load    Loader
	period  time.Duration
	perItem time.Duration
	speed   int

	index    int
	used     time.Duration
	failures int
	// gen invalidates the scroller of the previous picture.
	gen int
}

func NewImage(name string, env Env, names []string, load Loader, o Options) *Image {
	s := &Image{
		names:   names,
		load:    load,
		period:  o.period(DefaultImagePeriod),
		perItem: o.perItem(DefaultImagePerItemPeriod),
		speed:   DefaultScrollSpeed,
	}
	s.init(s, name, env)
	return s
}

func (s *Image) Run() {
	if len(s.names) == 0 {
		s.skip()
		return
	}
	if !s.begin() {
		return
	}
	s.used = 0
	s.failures = 0
	s.showImage()
}

func (s *Image) next() {
	s.index = (s.index + 1) % len(s.names)
	if s.used+s.perItem > s.period {
		s.complete()
		return
	}
	s.showImage()
}

func (s *Image) showImage() {
	name := s.names[s.index]
	img, err := s.load(name)
	if err != nil {
		s.log.Error().Err(err).Str("image", name).Msg("load image")
		s.failures++
		if s.failures >= len(s.names) {
			s.complete()
			return
		}
		s.index = (s.index + 1) % len(s.names)
		s.showImage()
		return
	}
	s.failures = 0

	s.gen++
	canvas := s.env.Canvas
	img = fitHeight(img, canvas.H)
	b := img.Bounds()
	top := (canvas.H - b.Dy()) / 2
	timeout := s.perItem
	if b.Dx() > canvas.W {
		s.scroll(img, canvas.W, top, s.gen)
	} else {
		canvas.Clear()
		at := image.Pt((canvas.W-b.Dx())/2, top)
		xdraw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(b.Size())}, img, b.Min, xdraw.Over)
		s.show()
		timeout = s.perItem / 2
	}
	s.used += timeout
	s.after(timeout, s.next)
}

// scroll moves img right to left one pixel per frame, starting at x.
func (s *Image) scroll(img image.Image, x, top, gen int) {
	if gen != s.gen {
		return
	}
	canvas := s.env.Canvas
	b := img.Bounds()
	canvas.Clear()
	at := image.Pt(x, top)
	xdraw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(b.Size())}, img, b.Min, xdraw.Over)
	s.show()
	if x > -b.Dx() {
		s.after(time.Second/time.Duration(s.speed), func() { s.scroll(img, x-1, top, gen) })
	}
}

// fitHeight scales img down to h pixels high, keeping its aspect ratio.
func fitHeight(img image.Image, h int) image.Image {
	b := img.Bounds()
	if b.Dy() <= h {
		return img
	}
	w := b.Dx() * h / b.Dy()
	if w < 1 {
		w = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}
