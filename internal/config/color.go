package config

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/gridzilla/internal/layout"
	"github.com/coreman2200/gridzilla/internal/pixel"
)

// names are the colours show files may use by name.
var names = map[string]string{
	"white":           "#ffffff",
	"red":             "#ff0000",
	"dark red":        "#8b0000",
	"green":           "#00ff00",
	"lime":            "#32cd32",
	"teal":            "#008080",
	"blue":            "#0000ff",
	"midnight blue":   "#191970",
	"cornflower blue": "#6495ed",
	"purple":          "#800080",
	"pink":            "#ff69b4",
	"orange":          "#ffa500",
	"yellow":          "#ffff00",
	"gold":            "#ffd700",
}

// ParseColor accepts a colour name or #rrggbb. Empty is white.
func ParseColor(s string) (pixel.RGB, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pixel.RGB{R: 255, G: 255, B: 255}, nil
	}
	hex, ok := names[strings.ToLower(s)]
	if !ok {
		hex = s
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return pixel.RGB{}, fmt.Errorf("%w: colour %q", layout.ErrConfiguration, s)
	}
	r, g, b := c.RGB255()
	return pixel.RGB{R: r, G: g, B: b}, nil
}
