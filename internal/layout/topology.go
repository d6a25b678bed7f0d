package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a topology or canvas that cannot be addressed.
	// It is only ever returned at startup.
	ErrConfiguration = errors.New("configuration error")
	// ErrOutOfBounds marks a canvas coordinate outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
)

// MaxChannels is the size of one Art-Net DMX universe.
const MaxChannels = 512

// Topology describes the physical grid. Controllers are listed left to right;
// each one drives ControllerWidth x ControllerHeight universes of
// UniverseWidth x UniverseHeight pixels.
type Topology struct {
	Controllers      []string
	ControllerWidth  int
	ControllerHeight int
	UniverseWidth    int
	UniverseHeight   int

	SourcePort          int
	SendOnlyChangeData  bool
	SendSequenceNumbers bool
}

// Universe is the descriptor handed to the protocol sender, one per
// (controller, universe) pair.
type Universe struct {
	Address             string
	Universe            int
	SourcePort          int
	SendOnlyChangeData  bool
	SendSequenceNumbers bool
}

func (u Universe) String() string { return fmt.Sprintf("%s/%d", u.Address, u.Universe) }

// Width of the canvas in pixels.
func (t Topology) Width() int {
	return len(t.Controllers) * t.ControllerWidth * t.UniverseWidth
}

// Height of the canvas in pixels.
func (t Topology) Height() int { return t.ControllerHeight * t.UniverseHeight }

func (t Topology) UniversesPerController() int { return t.ControllerWidth * t.ControllerHeight }

// ChannelsPerUniverse is 3 channels for every pixel in a universe.
func (t Topology) ChannelsPerUniverse() int { return 3 * t.UniverseWidth * t.UniverseHeight }

// Validate checks the geometry can be addressed at all.
func (t Topology) Validate() error {
	if len(t.Controllers) == 0 {
		return fmt.Errorf("%w: no controllers", ErrConfiguration)
	}
	seen := make(map[string]bool, len(t.Controllers))
	for i, a := range t.Controllers {
		if a == "" {
			return fmt.Errorf("%w: controller %d has no address", ErrConfiguration, i)
		}
		if seen[a] {
			return fmt.Errorf("%w: controller address %s listed twice", ErrConfiguration, a)
		}
		seen[a] = true
	}
	if t.ControllerWidth <= 0 || t.ControllerHeight <= 0 {
		return fmt.Errorf("%w: controller is %dx%d universes", ErrConfiguration, t.ControllerWidth, t.ControllerHeight)
	}
	if t.UniverseWidth <= 0 || t.UniverseHeight <= 0 {
		return fmt.Errorf("%w: universe is %dx%d pixels", ErrConfiguration, t.UniverseWidth, t.UniverseHeight)
	}
	if n := t.ChannelsPerUniverse(); n > MaxChannels {
		return fmt.Errorf("%w: %d channels per universe exceeds %d", ErrConfiguration, n, MaxChannels)
	}
	if t.SourcePort < 0 || t.SourcePort > 65535 {
		return fmt.Errorf("%w: source port %d", ErrConfiguration, t.SourcePort)
	}
	return nil
}

// CheckCanvas fails unless w x h is exactly the grid's canvas.
func (t Topology) CheckCanvas(w, h int) error {
	if w != t.Width() || h != t.Height() {
		return fmt.Errorf("%w: canvas %dx%d does not match grid %dx%d",
			ErrConfiguration, w, h, t.Width(), t.Height())
	}
	return nil
}

// Universes lists every descriptor, controller by controller, universe ids
// ascending within a controller.
func (t Topology) Universes() []Universe {
	out := make([]Universe, 0, len(t.Controllers)*t.UniversesPerController())
	for _, addr := range t.Controllers {
		for u := 0; u < t.UniversesPerController(); u++ {
			out = append(out, Universe{
				Address:             addr,
				Universe:            u,
				SourcePort:          t.SourcePort,
				SendOnlyChangeData:  t.SendOnlyChangeData,
				SendSequenceNumbers: t.SendSequenceNumbers,
			})
		}
	}
	return out
}
