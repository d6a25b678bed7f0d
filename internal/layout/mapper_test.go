package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridzilla() Topology {
	return Topology{
		Controllers:      []string{"10.7.87.6", "10.7.87.8", "10.7.87.10"},
		ControllerWidth:  4,
		ControllerHeight: 3,
		UniverseWidth:    14,
		UniverseHeight:   12,
		SourcePort:       6454,
	}
}

func TestGridzillaGeometry(t *testing.T) {
	topo := gridzilla()
	require.NoError(t, topo.Validate())
	assert.Equal(t, 168, topo.Width())
	assert.Equal(t, 36, topo.Height())
	assert.Len(t, topo.Universes(), 36)
	assert.NoError(t, topo.CheckCanvas(168, 36))
}

func TestTopLeftPixelIsFirstChannel(t *testing.T) {
	m, err := NewMapper(gridzilla())
	require.NoError(t, err)

	a, err := m.Map(0, 35)
	require.NoError(t, err)
	assert.Equal(t, Address{Controller: 0, Device: "10.7.87.6", Universe: 0, Channel: 1}, a)
}

func TestSnakeWithinUniverse(t *testing.T) {
	m, err := NewMapper(gridzilla())
	require.NoError(t, err)

	var tests = []struct {
		x, y    int
		channel int
	}{
		{0, 35, 1},    // top of column 0
		{0, 34, 4},    // one down
		{0, 24, 34},   // bottom of column 0
		{1, 24, 37},   // column 1 starts at the bottom
		{1, 35, 70},   // and ends at the top
		{2, 35, 73},   // column 2 starts at the top again
		{13, 35, 502}, // last column is odd: top is the last pixel
		{13, 24, 469}, // bottom of the last column
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d,%d", tc.x, tc.y), func(t *testing.T) {
			a, err := m.Map(tc.x, tc.y)
			require.NoError(t, err)
			assert.Equal(t, 0, a.Universe)
			assert.Equal(t, tc.channel, a.Channel)
		})
	}
}

func TestUniverseRowsCountDownFromTop(t *testing.T) {
	m, err := NewMapper(gridzilla())
	require.NoError(t, err)

	var tests = []struct {
		x, y       int
		controller int
		universe   int
	}{
		{0, 35, 0, 0},
		{14, 35, 0, 1},
		{55, 35, 0, 3},
		{0, 23, 0, 4},
		{0, 0, 0, 8},
		{55, 0, 0, 11},
		{56, 35, 1, 0},
		{167, 0, 2, 11},
	}
	for _, tc := range tests {
		a, err := m.Map(tc.x, tc.y)
		require.NoError(t, err)
		assert.Equal(t, tc.controller, a.Controller, "controller of (%d,%d)", tc.x, tc.y)
		assert.Equal(t, tc.universe, a.Universe, "universe of (%d,%d)", tc.x, tc.y)
	}
}

func TestMapIsABijection(t *testing.T) {
	topo := gridzilla()
	m, err := NewMapper(topo)
	require.NoError(t, err)

	type key struct {
		device   string
		universe int
		channel  int
	}
	maxChannel := topo.ChannelsPerUniverse() - 2
	seen := make(map[key]bool)
	for x := 0; x < m.Width(); x++ {
		for y := 0; y < m.Height(); y++ {
			a, err := m.Map(x, y)
			require.NoError(t, err)
			require.GreaterOrEqual(t, a.Channel, 1)
			require.LessOrEqual(t, a.Channel, maxChannel)
			require.Zero(t, (a.Channel-1)%3, "channel %d not pixel aligned", a.Channel)
			k := key{a.Device, a.Universe, a.Channel}
			require.False(t, seen[k], "duplicate address %+v for (%d,%d)", k, x, y)
			seen[k] = true
		}
	}

	// every valid triple is hit
	for _, u := range topo.Universes() {
		for ch := 1; ch <= maxChannel; ch += 3 {
			assert.True(t, seen[key{u.Address, u.Universe, ch}], "%s channel %d never mapped", u, ch)
		}
	}
	assert.Len(t, seen, m.Width()*m.Height())
}

func TestOutOfBounds(t *testing.T) {
	m, err := NewMapper(gridzilla())
	require.NoError(t, err)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {168, 0}, {0, 36}} {
		_, err := m.Map(p[0], p[1])
		assert.ErrorIs(t, err, ErrOutOfBounds)
	}
}

func TestRegionMatchesMap(t *testing.T) {
	topo := gridzilla()
	m, err := NewMapper(topo)
	require.NoError(t, err)

	for c := range topo.Controllers {
		for u := 0; u < topo.UniversesPerController(); u++ {
			r, err := m.Region(c, u)
			require.NoError(t, err)
			assert.Equal(t, 14, r.Dx())
			assert.Equal(t, 12, r.Dy())
			for x := r.Min.X; x < r.Max.X; x++ {
				for y := r.Min.Y; y < r.Max.Y; y++ {
					a, err := m.Map(x, y)
					require.NoError(t, err)
					require.Equal(t, c, a.Controller)
					require.Equal(t, u, a.Universe)
				}
			}
		}
	}
	_, err = m.Region(3, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestBadTopologyFailsFast(t *testing.T) {
	var tests = []struct {
		name string
		edit func(*Topology)
	}{
		{"no controllers", func(t *Topology) { t.Controllers = nil }},
		{"duplicate address", func(t *Topology) { t.Controllers = []string{"a", "a"} }},
		{"empty address", func(t *Topology) { t.Controllers = []string{""} }},
		{"zero width", func(t *Topology) { t.ControllerWidth = 0 }},
		{"zero universe", func(t *Topology) { t.UniverseHeight = 0 }},
		{"too many channels", func(t *Topology) { t.UniverseWidth = 15 }},
		{"bad port", func(t *Topology) { t.SourcePort = 70000 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			topo := gridzilla()
			tc.edit(&topo)
			_, err := NewMapper(topo)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestCanvasMismatch(t *testing.T) {
	assert.ErrorIs(t, gridzilla().CheckCanvas(168, 35), ErrConfiguration)
	assert.ErrorIs(t, gridzilla().CheckCanvas(170, 36), ErrConfiguration)
}

func TestSerpentineIndex(t *testing.T) {
	s := Serpentine{W: 3, H: 2, FlipEveryRow: true}
	assert.Equal(t, 6, s.Count())
	assert.Equal(t, 0, s.Index(0, 0))
	assert.Equal(t, 2, s.Index(2, 0))
	assert.Equal(t, 5, s.Index(0, 1))
	assert.Equal(t, 3, s.Index(2, 1))

	s.FlipEveryRow = false
	assert.Equal(t, 3, s.Index(0, 1))
}
