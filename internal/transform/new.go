package transform

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/coreman2200/gridzilla/internal/artnet"
	"github.com/coreman2200/gridzilla/internal/layout"
)

// Output kinds accepted by New.
const (
	KindArtNet   = "artnet"
	KindPreview  = "preview"
	KindTerminal = "terminal"
	KindStrip    = "strip"
	KindAuto     = "auto"
)

// EnvDev selects the preview when the kind is auto.
const EnvDev = "Dev"

type Options struct {
	Kind      string
	TargetEnv string
	Topology  layout.Topology

	// Publisher receives preview frames. Required for preview, and when
	// Mirror is set.
	Publisher FramePublisher
	// Mirror also sends every grid frame to the preview.
	Mirror bool

	// Terminal output, stdout when nil.
	Terminal io.Writer

	StripPort    string
	FlipEveryRow bool

	Log zerolog.Logger
}

// Resolve returns the concrete kind auto stands for.
func (o Options) Resolve() string {
	k := strings.ToLower(o.Kind)
	if k == "" || k == KindAuto {
		if strings.EqualFold(o.TargetEnv, EnvDev) {
			return KindPreview
		}
		return KindArtNet
	}
	return k
}

// New builds the output once at startup. Any error wraps
// layout.ErrConfiguration.
func New(o Options) (Transform, error) {
	if err := o.Topology.Validate(); err != nil {
		return nil, err
	}
	switch kind := o.Resolve(); kind {
	case KindArtNet:
		m, err := layout.NewMapper(o.Topology)
		if err != nil {
			return nil, err
		}
		node := artnet.NewNode()
		node.Log = o.Log
		g, err := NewGrid(m, node, o.Log)
		if err != nil {
			node.Close()
			if !errors.Is(err, layout.ErrConfiguration) {
				err = fmt.Errorf("%w: %v", layout.ErrConfiguration, err)
			}
			return nil, err
		}
		if o.Mirror && o.Publisher != nil {
			return Tee{g, NewPreview(o.Publisher)}, nil
		}
		return g, nil
	case KindPreview:
		if o.Publisher == nil {
			return nil, fmt.Errorf("%w: preview output without a frame publisher", layout.ErrConfiguration)
		}
		return NewPreview(o.Publisher), nil
	case KindTerminal:
		w := o.Terminal
		if w == nil {
			w = os.Stdout
		}
		return NewTerminal(w), nil
	case KindStrip:
		order := layout.Serpentine{W: o.Topology.Width(), H: o.Topology.Height(), FlipEveryRow: o.FlipEveryRow}
		s, err := OpenStrip(o.StripPort, order)
		if err != nil {
			o.Log.Warn().Err(err).Msg("no SPI strip, printing at the console")
			return New(Options{Kind: KindTerminal, Topology: o.Topology, Terminal: o.Terminal, Log: o.Log})
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown transform %q", layout.ErrConfiguration, kind)
	}
}
