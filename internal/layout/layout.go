package layout

// Serpentine orders a W x H matrix as one chained LED strip, the way small
// bench matrices are wired: rows bottom to top, every other row reversed.
type Serpentine struct {
	W, H         int
	FlipEveryRow bool
}

// Index maps canvas (x, y) to the strip position (0..Count-1).
func (s Serpentine) Index(x, y int) int {
	xx := x
	if s.FlipEveryRow && y%2 == 1 {
		xx = s.W - 1 - x
	}
	return y*s.W + xx
}

func (s Serpentine) Count() int { return s.W * s.H }
