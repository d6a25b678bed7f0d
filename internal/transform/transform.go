// Package transform ships a rendered pixel buffer to whatever displays it:
// the Art-Net grid, a browser preview, the terminal or a bench LED strip.
package transform

import (
	"errors"

	"github.com/coreman2200/gridzilla/internal/pixel"
)

// Transform renders a full buffer to its output. Implementations are
// stateful singletons and are only ever driven from the loop goroutine.
type Transform interface {
	TransformScreen(b *pixel.Buffer) error
}

// Tee fans one buffer out to several transforms, e.g. the grid plus a
// preview. Every output is driven even if an earlier one fails.
type Tee []Transform

func (t Tee) TransformScreen(b *pixel.Buffer) error {
	var errs []error
	for _, x := range t {
		if err := x.TransformScreen(b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every output that holds resources.
func (t Tee) Close() error {
	var errs []error
	for _, x := range t {
		if c, ok := x.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
