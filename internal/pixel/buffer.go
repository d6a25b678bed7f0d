package pixel

import (
	"image"
	"image/color"
)

// RGB is a single pixel as it goes out on the wire.
type RGB struct{ R, G, B uint8 }

// RGBA implements color.Color.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// FromColor drops alpha after converting to 8-bit RGBA.
func FromColor(c color.Color) RGB {
	if v, ok := c.(RGB); ok {
		return v
	}
	v := color.RGBAModel.Convert(c).(color.RGBA)
	return RGB{R: v.R, G: v.G, B: v.B}
}

var Black = RGB{}

// Buffer is the shared canvas scenes render into.
//
// Pix is row-major with row 0 at the top so the image.Image view (At/Set)
// works with image/draw and font drawers unchanged. Pixel/SetPixel use canvas
// coordinates instead: origin bottom-left, y growing upward, which is how the
// physical grid is addressed.
type Buffer struct {
	W, H int
	Pix  []RGB
}

func New(w, h int) *Buffer {
	return &Buffer{W: w, H: h, Pix: make([]RGB, w*h)}
}

func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.W, b.H) }

func (b *Buffer) ColorModel() color.Model { return color.RGBAModel }

func (b *Buffer) At(x, y int) color.Color {
	if !b.inImage(x, y) {
		return Black
	}
	return b.Pix[y*b.W+x]
}

func (b *Buffer) Set(x, y int, c color.Color) {
	if !b.inImage(x, y) {
		return
	}
	b.Pix[y*b.W+x] = FromColor(c)
}

// Pixel reads canvas coordinate (x, y); y=0 is the bottom row.
func (b *Buffer) Pixel(x, y int) RGB {
	if !b.inImage(x, y) {
		return Black
	}
	return b.Pix[(b.H-1-y)*b.W+x]
}

// SetPixel writes canvas coordinate (x, y); y=0 is the bottom row.
func (b *Buffer) SetPixel(x, y int, c RGB) {
	if !b.inImage(x, y) {
		return
	}
	b.Pix[(b.H-1-y)*b.W+x] = c
}

func (b *Buffer) Fill(c RGB) {
	for i := range b.Pix {
		b.Pix[i] = c
	}
}

func (b *Buffer) Clear() { b.Fill(Black) }

// Bytes returns the canvas as packed RGB, top row first.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, len(b.Pix)*3)
	for i, c := range b.Pix {
		out[i*3+0] = c.R
		out[i*3+1] = c.G
		out[i*3+2] = c.B
	}
	return out
}

func (b *Buffer) inImage(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.W && y < b.H
}
