package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopy-tools/geocrown/internal/mask"
)

func TestIdentityRoundTrip(t *testing.T) {
	tf := Identity()
	pts := []mask.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 7}, {X: 0, Y: 7}}

	ring := tf.ProjectRing(pts)
	require.Len(t, ring, 5) // closed

	for i, p := range pts {
		assert.InDelta(t, float64(p.X), ring[i][0], 1e-12)
		assert.InDelta(t, float64(p.Y), ring[i][1], 1e-12)
	}
	assert.Equal(t, ring[0], ring[len(ring)-1])
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		tf       Transform
		col, row float64
		x, y     float64
	}{
		{
			name: "north-up raster",
			tf:   Transform{A: 0.5, C: 100, E: -0.5, F: 200},
			col:  10, row: 20,
			x: 105, y: 190,
		},
		{
			name: "origin only",
			tf:   Transform{A: 1, C: -3, E: 1, F: 4},
			col:  0, row: 0,
			x: -3, y: 4,
		},
		{
			name: "rotation terms",
			tf:   Transform{A: 1, B: 0.1, C: 0, D: 0.2, E: 1, F: 0},
			col:  10, row: 10,
			x: 11, y: 12,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.tf.Apply(tt.col, tt.row)
			assert.InDelta(t, tt.x, x, 1e-12)
			assert.InDelta(t, tt.y, y, 1e-12)
		})
	}
}

func TestProjectRingEmpty(t *testing.T) {
	ring := Identity().ProjectRing(nil)
	assert.Empty(t, ring)
}

func TestExtent(t *testing.T) {
	// 10x20 raster, 2m pixels, origin at (100, 500), north-up.
	tf := Transform{A: 2, C: 100, E: -2, F: 500}
	b := tf.Extent(10, 20)

	assert.Equal(t, orb.Point{100, 460}, b.Min)
	assert.Equal(t, orb.Point{120, 500}, b.Max)
}

func TestExtentIdentity(t *testing.T) {
	b := Identity().Extent(50, 50)
	assert.Equal(t, orb.Point{0, 0}, b.Min)
	assert.Equal(t, orb.Point{50, 50}, b.Max)
}
