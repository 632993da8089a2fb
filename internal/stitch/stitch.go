// Package stitch defines the downstream collaborator that merges per-tile
// crown collections into a single seamless layer. Stitching and cleaning
// are not performed by this tool; the interface marks the boundary.
package stitch

import "github.com/paulmach/orb/geojson"

// Stitcher merges per-tile feature collections and resolves duplicate
// crowns detected in more than one tile.
type Stitcher interface {
	// StitchCrowns combines the collections written for adjacent tiles
	// into one layer.
	StitchCrowns(collections []*geojson.FeatureCollection) (*geojson.FeatureCollection, error)

	// CleanCrowns removes overlapping duplicates from a stitched layer,
	// keeping the higher-confidence crown.
	CleanCrowns(layer *geojson.FeatureCollection) (*geojson.FeatureCollection, error)
}

// NoOp returns its input unchanged. Useful as a placeholder until a real
// stitcher is wired in.
type NoOp struct{}

// StitchCrowns concatenates the collections without de-duplication.
func (NoOp) StitchCrowns(collections []*geojson.FeatureCollection) (*geojson.FeatureCollection, error) {
	out := geojson.NewFeatureCollection()
	for _, fc := range collections {
		out.Features = append(out.Features, fc.Features...)
	}
	return out, nil
}

// CleanCrowns returns the layer as-is.
func (NoOp) CleanCrowns(layer *geojson.FeatureCollection) (*geojson.FeatureCollection, error) {
	return layer, nil
}
