package scene

import (
	"image"
	"image/color"
	"image/draw"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var face font.Face = basicfont.Face7x13

// Face7x13 only ever inks rows 1..12 of its 13 row cell, so a line is a
// 12 row band and three lines fill the 36 pixel grid exactly.
const (
	inkTop     = 1
	lineHeight = 12
)

// marqueeGap separates the end of a scrolling line from its next pass.
const marqueeGap = 28

// marqueeInterval moves scrolling lines at the scroll scene's default speed.
const marqueeInterval = time.Second / DefaultScrollSpeed

// clipped limits drawing on an image to r.
type clipped struct {
	draw.Image
	r image.Rectangle
}

func (c clipped) Bounds() image.Rectangle { return c.r.Intersect(c.Image.Bounds()) }

func textWidth(s string) int {
	return font.MeasureString(face, s).Ceil()
}

// drawText draws s into the band of lineHeight rows starting at top, in
// image coordinates, with the first glyph cell at x. Nothing is drawn
// outside the band.
func drawText(dst draw.Image, s string, x, top int, c color.Color) {
	b := dst.Bounds()
	d := &font.Drawer{
		Dst:  clipped{dst, image.Rect(b.Min.X, top, b.Max.X, top+lineHeight)},
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, top-inkTop+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// drawLine centres s between columns x0 and x1. A line wider than that
// scrolls left by offset pixels and wraps around.
func drawLine(dst draw.Image, s string, x0, x1, top, offset int, c color.Color) {
	w := textWidth(s)
	if w <= x1-x0 {
		drawText(dst, s, x0+(x1-x0-w)/2, top, c)
		return
	}
	b := dst.Bounds()
	area := clipped{dst, image.Rect(x0, b.Min.Y, x1, b.Max.Y)}
	span := w + marqueeGap
	x := x0 - offset%span
	drawText(area, s, x, top, c)
	drawText(area, s, x+span, top, c)
}

// overflows reports whether any line is wider than width.
func overflows(lines []string, width int) bool {
	for _, l := range lines {
		if textWidth(l) > width {
			return true
		}
	}
	return false
}

// centredTops returns the top of each of n lines centred on a canvas of
// height h.
func centredTops(n, h int) []int {
	tops := make([]int, n)
	y := (h - n*lineHeight) / 2
	for i := range tops {
		tops[i] = y + i*lineHeight
	}
	return tops
}
