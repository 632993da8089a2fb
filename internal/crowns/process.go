package crowns

import (
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"

	"github.com/canopy-tools/geocrown/internal/geo"
	"github.com/canopy-tools/geocrown/internal/mask"
)

// Options controls how one tile's instances are turned into features.
type Options struct {
	// MultiClass emits the class id on every feature. Instances without a
	// class id are skipped in this mode so a collection never mixes
	// labelled and unlabelled features.
	MultiClass bool

	// Transform is the tile's pixel-to-world affine mapping.
	Transform geo.Transform

	// Confidence, when set, drops instances scoring strictly below it.
	Confidence *float64

	// UsableBounds, when set, enables edge-crown suppression: crowns not
	// strictly interior to the bounds are dropped as presumed truncated
	// duplicates of a neighbouring tile's detection.
	UsableBounds *orb.Bound

	// Simplify, when positive, is the Douglas-Peucker tolerance applied to
	// the projected ring before emission.
	Simplify float64
}

// Crown is one surviving instance: its emitted feature plus the pixel-space
// ring it was traced from (kept for overlay rendering).
type Crown struct {
	Feature *geojson.Feature
	Pixels  []mask.Point
}

// Process converts a tile's instance list into features, preserving input
// order. Instances are skipped when they score below the confidence
// threshold, decode to a degenerate polygon, or touch the usable tile
// boundary under overlap mode. Per-instance problems never surface as
// errors.
func Process(instances []Instance, opts Options) []Crown {
	out := make([]Crown, 0, len(instances))

	for _, inst := range instances {
		if opts.Confidence != nil && inst.Score < *opts.Confidence {
			continue
		}
		if opts.MultiClass && inst.CategoryID == nil {
			slog.Debug("instance missing category_id in multi-class run, skipping")
			continue
		}

		bitmap, err := inst.Segmentation.Bitmap()
		if err != nil {
			slog.Debug("instance mask failed to decode, skipping", "error", err)
			continue
		}
		pixels := mask.OuterContour(bitmap)
		if pixels == nil {
			continue
		}

		ring := opts.Transform.ProjectRing(pixels)
		if opts.UsableBounds != nil && !geo.Interior(ring, *opts.UsableBounds) {
			continue
		}
		if opts.Simplify > 0 {
			simplified := simplify.DouglasPeucker(opts.Simplify).Simplify(ring.Clone()).(orb.Ring)
			if len(simplified) >= 4 {
				ring = simplified
			}
		}
		// RFC 7946 wants counterclockwise exterior rings.
		if ring.Orientation() != orb.CCW {
			ring.Reverse()
		}

		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties = geojson.Properties{"confidence": inst.Score}
		if opts.MultiClass {
			f.Properties["category"] = *inst.CategoryID
		}
		out = append(out, Crown{Feature: f, Pixels: pixels})
	}
	return out
}
