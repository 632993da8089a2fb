package crowns

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// CRSName formats an EPSG id as the OGC urn used in the output collections.
func CRSName(epsg int) string {
	return fmt.Sprintf("urn:ogc:def:crs:EPSG::%d", epsg)
}

// NewFeatureCollection assembles the output collection for one tile,
// stamping it with the tile's own coordinate reference system.
func NewFeatureCollection(epsg int, cs []Crown) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{
		"crs": map[string]interface{}{
			"type": "name",
			"properties": map[string]interface{}{
				"name": CRSName(epsg),
			},
		},
	}
	for _, c := range cs {
		fc.Append(c.Feature)
	}
	return fc
}
