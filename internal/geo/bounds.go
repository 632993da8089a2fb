package geo

import "github.com/paulmach/orb"

// ShrinkBound insets a bounding box by shift on every side, yielding the
// usable extent of a tile that was cut with overlap margins. If the shift
// consumes the whole box the result is empty (Min >= Max on an axis).
func ShrinkBound(b orb.Bound, shift float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.Min[0] + shift, b.Min[1] + shift},
		Max: orb.Point{b.Max[0] - shift, b.Max[1] - shift},
	}
}

// Interior reports whether every vertex of ring lies strictly inside b.
// A vertex exactly on the boundary counts as outside, so a crown touching a
// shared tile edge is attributed to at most one tile when neighbouring
// outputs are later stitched.
func Interior(ring orb.Ring, b orb.Bound) bool {
	if len(ring) == 0 {
		return false
	}
	for _, p := range ring {
		if p[0] <= b.Min[0] || p[0] >= b.Max[0] || p[1] <= b.Min[1] || p[1] >= b.Max[1] {
			return false
		}
	}
	return true
}
