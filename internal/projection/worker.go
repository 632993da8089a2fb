package projection

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/canopy-tools/geocrown/internal/crowns"
	"github.com/canopy-tools/geocrown/internal/geo"
	"github.com/canopy-tools/geocrown/internal/overlay"
	"github.com/canopy-tools/geocrown/internal/raster"
)

// Filename conventions shared with the tiler and the detector.
const (
	// PredictionPrefix is stripped from a prediction file's stem to recover
	// the companion tile's stem.
	PredictionPrefix = "Prediction_"
	// PredictionExt marks files in the predictions directory to project.
	PredictionExt = ".json"
	// RasterExt is the tile raster extension.
	RasterExt = ".tif"
	// GeoMetadataExt is the tile's CRS sidecar extension.
	GeoMetadataExt = ".geo"
	// OutputExt is the extension of written feature collections.
	OutputExt = ".geojson"
)

// ErrMissingTile is returned when a prediction file's companion raster or
// geo-metadata cannot be found.
var ErrMissingTile = errors.New("companion tile not found")

// runBatch projects one batch of prediction files in order. Per-file
// problems are logged and recorded but never abort the batch; a wholesale
// batch failure is recovered into the result so sibling batches keep
// running.
func runBatch(index int, files []string, cfg Config, tick func()) (br BatchResult) {
	br.Index = index
	defer func() {
		if r := recover(); r != nil {
			br.Err = fmt.Errorf("batch %d failed: %v", index, r)
			slog.Error("projection batch failed", "batch", index, "error", r)
		}
	}()

	for _, path := range files {
		fr := processFile(path, cfg)
		if fr.Err != nil {
			slog.Warn("skipping prediction file", "file", path, "error", fr.Err)
		}
		br.Files = append(br.Files, fr)
		tick()
	}
	return br
}

// processFile projects a single prediction file: resolve the companion
// tile, read its georeferencing, convert the instances, and write one
// feature collection next to the other outputs.
func processFile(path string, cfg Config) FileResult {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	tileStem := strings.TrimPrefix(stem, PredictionPrefix)
	tilePath := filepath.Join(cfg.TilesDir, tileStem+RasterExt)
	sidecarPath := filepath.Join(cfg.TilesDir, tileStem+GeoMetadataExt)

	meta, err := raster.ReadMetadata(tilePath, sidecarPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %v", ErrMissingTile, err)
		}
		return FileResult{Path: path, Status: FileSkipped, Err: err}
	}

	instances, err := crowns.ReadPredictions(path)
	if err != nil {
		return FileResult{Path: path, Status: FileSkipped, Err: err}
	}

	opts := crowns.Options{
		MultiClass: cfg.MultiClass,
		Transform:  meta.Transform,
		Confidence: cfg.Confidence,
		Simplify:   cfg.Simplify,
	}
	if cfg.OverlapShift != nil {
		usable := geo.ShrinkBound(meta.Extent(), *cfg.OverlapShift)
		opts.UsableBounds = &usable
	}

	cs := crowns.Process(instances, opts)
	fc := crowns.NewFeatureCollection(meta.EPSG, cs)
	data, err := fc.MarshalJSON()
	if err != nil {
		return FileResult{Path: path, Status: FileSkipped, Err: fmt.Errorf("encoding %s: %w", path, err)}
	}

	outPath := filepath.Join(cfg.OutputDir, stem+OutputExt)
	if err := os.WriteFile(outPath, data, 0o600); err != nil {
		return FileResult{Path: path, Status: FileSkipped, Err: fmt.Errorf("writing %s: %w", outPath, err)}
	}

	if cfg.OverlayDir != "" {
		if err := overlay.Save(tilePath, cs, cfg.OverlayDir, tileStem); err != nil {
			// The projected collection is already on disk; a failed overlay
			// render loses only the preview image.
			slog.Warn("overlay rendering failed", "tile", tilePath, "error", err)
		}
	}

	return FileResult{Path: path, Status: FileProcessed, Features: len(cs)}
}
