package transform

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/coreman2200/gridzilla/internal/pixel"
)

// Terminal draws the buffer with half-block characters, two canvas rows
// per text line, repainting in place.
type Terminal struct {
	w      io.Writer
	styles map[[2]pixel.RGB]lipgloss.Style
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, styles: make(map[[2]pixel.RGB]lipgloss.Style)}
}

func hex(c pixel.RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

func (t *Terminal) style(top, bottom pixel.RGB) lipgloss.Style {
	k := [2]pixel.RGB{top, bottom}
	s, ok := t.styles[k]
	if !ok {
		s = lipgloss.NewStyle().Foreground(hex(top)).Background(hex(bottom))
		if len(t.styles) > 4096 {
			clear(t.styles)
		}
		t.styles[k] = s
	}
	return s
}

// Render returns the text for one frame without the cursor control.
func (t *Terminal) Render(b *pixel.Buffer) string {
	var sb strings.Builder
	for y := 0; y < b.H; y += 2 {
		for x := 0; x < b.W; x++ {
			top := b.Pix[y*b.W+x]
			bottom := pixel.Black
			if y+1 < b.H {
				bottom = b.Pix[(y+1)*b.W+x]
			}
			sb.WriteString(t.style(top, bottom).Render("▀"))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (t *Terminal) TransformScreen(b *pixel.Buffer) error {
	_, err := io.WriteString(t.w, "\x1b[H"+t.Render(b))
	return err
}
