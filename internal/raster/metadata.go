// Package raster reads per-tile georeferencing metadata: the affine
// transform and dimensions from a GeoTIFF's tags, and the coordinate
// reference system id from a small sidecar file written by the tiler.
package raster

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"

	"github.com/canopy-tools/geocrown/internal/geo"
)

// ErrNoCRS is returned when neither the sidecar file nor the raster's
// embedded GeoKeys provide an EPSG id.
var ErrNoCRS = errors.New("no coordinate reference system for tile")

// TileMetadata is the georeferencing information of one tile, read fresh for
// every prediction file and discarded afterwards.
type TileMetadata struct {
	Transform geo.Transform
	EPSG      int
	Width     int
	Height    int
}

// Extent returns the tile's full world-space bounding box.
func (m TileMetadata) Extent() orb.Bound {
	return m.Transform.Extent(m.Width, m.Height)
}

// sidecar is the on-disk geo-metadata companion of a tile.
type sidecar struct {
	EPSG int `json:"epsg"`
}

// ReadMetadata reads the tile raster at tilePath and its geo-metadata
// sidecar at sidecarPath. The sidecar's EPSG id wins over any id embedded in
// the raster's GeoKeys; a missing sidecar falls back to the embedded id.
func ReadMetadata(tilePath, sidecarPath string) (TileMetadata, error) {
	tags, err := readGeoTIFF(tilePath)
	if err != nil {
		return TileMetadata{}, fmt.Errorf("reading tile %s: %w", tilePath, err)
	}

	tf, err := tags.transform()
	if err != nil {
		return TileMetadata{}, fmt.Errorf("tile %s: %w", tilePath, err)
	}

	epsg := tags.epsg
	if code, err := readSidecar(sidecarPath); err == nil {
		epsg = code
	} else if !os.IsNotExist(err) {
		return TileMetadata{}, fmt.Errorf("reading geo metadata %s: %w", sidecarPath, err)
	}
	if epsg == 0 {
		return TileMetadata{}, fmt.Errorf("tile %s: %w", tilePath, ErrNoCRS)
	}

	return TileMetadata{
		Transform: tf,
		EPSG:      epsg,
		Width:     tags.width,
		Height:    tags.height,
	}, nil
}

func readSidecar(path string) (int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: sidecar path derives from the configured tiles directory
	if err != nil {
		return 0, err
	}
	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return 0, fmt.Errorf("parsing sidecar: %w", err)
	}
	if sc.EPSG <= 0 {
		return 0, fmt.Errorf("sidecar has invalid epsg %d", sc.EPSG)
	}
	return sc.EPSG, nil
}
