// Package geo provides the affine pixel-to-world mapping and bounding-box
// predicates used when projecting per-tile detections into map space.
package geo

import (
	"github.com/paulmach/orb"

	"github.com/canopy-tools/geocrown/internal/mask"
)

// Transform is a 6-parameter affine mapping from pixel (col,row) to world (x,y):
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
//
// For north-up rasters B and D are zero, A is the pixel width and E the
// (negative) pixel height.
type Transform struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the transform that maps pixels to themselves.
func Identity() Transform {
	return Transform{A: 1, E: 1}
}

// Apply maps a single pixel coordinate to world space.
func (t Transform) Apply(col, row float64) (float64, float64) {
	x := t.A*col + t.B*row + t.C
	y := t.D*col + t.E*row + t.F
	return x, y
}

// ProjectRing maps a pixel ring to a world-space ring, preserving point
// order. The returned ring is closed (first point repeated at the end) so it
// can be used directly as a GeoJSON polygon ring. An empty input yields an
// empty ring.
func (t Transform) ProjectRing(pts []mask.Point) orb.Ring {
	if len(pts) == 0 {
		return orb.Ring{}
	}
	ring := make(orb.Ring, 0, len(pts)+1)
	for _, p := range pts {
		x, y := t.Apply(float64(p.X), float64(p.Y))
		ring = append(ring, orb.Point{x, y})
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// Extent returns the world-space bounding box of a raster with the given
// pixel dimensions under this transform.
func (t Transform) Extent(width, height int) orb.Bound {
	w, h := float64(width), float64(height)
	corners := [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}}

	x0, y0 := t.Apply(corners[0][0], corners[0][1])
	b := orb.Bound{Min: orb.Point{x0, y0}, Max: orb.Point{x0, y0}}
	for _, c := range corners[1:] {
		x, y := t.Apply(c[0], c[1])
		b = b.Extend(orb.Point{x, y})
	}
	return b
}
