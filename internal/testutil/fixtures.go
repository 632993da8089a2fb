// Package testutil builds the synthetic tiles, masks, and prediction files
// used across the test suites.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canopy-tools/geocrown/internal/crowns"
	"github.com/canopy-tools/geocrown/internal/rle"
)

// RectMask builds an RLE mask of size h x w with the half-open rectangle
// [x0,x1) x [y0,y1) as foreground.
func RectMask(h, w, x0, y0, x1, y1 int) rle.Mask {
	bits := make([]bool, w*h) // column-major, per the COCO convention
	for i := range bits {
		col, row := i/h, i%h
		bits[i] = col >= x0 && col < x1 && row >= y0 && row < y1
	}

	var runs []int
	count := 0
	val := false
	for _, b := range bits {
		if b == val {
			count++
			continue
		}
		runs = append(runs, count)
		val = b
		count = 1
	}
	runs = append(runs, count)

	return rle.Mask{Size: [2]int{h, w}, Counts: rle.NewCounts(runs)}
}

// EmptyMask builds an all-background RLE mask of size h x w.
func EmptyMask(h, w int) rle.Mask {
	return rle.Mask{Size: [2]int{h, w}, Counts: rle.NewCounts([]int{w * h})}
}

// WritePredictions writes an instance list as a prediction file.
func WritePredictions(t *testing.T, path string, instances []crowns.Instance) {
	t.Helper()
	data, err := json.Marshal(instances)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

// WriteSidecar writes a tile's geo-metadata sidecar with the given EPSG id.
func WriteSidecar(t *testing.T, path string, epsg int) {
	t.Helper()
	data, err := json.Marshal(map[string]int{"epsg": epsg})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

// IntPtr returns a pointer to v, for optional category ids in fixtures.
func IntPtr(v int) *int { return &v }

// TempTileSet creates tiles/, predictions/, and output/ directories under a
// test temp dir and returns their paths.
func TempTileSet(t *testing.T) (tilesDir, predsDir, outDir string) {
	t.Helper()
	root := t.TempDir()
	tilesDir = filepath.Join(root, "tiles")
	predsDir = filepath.Join(root, "predictions")
	outDir = filepath.Join(root, "output")
	require.NoError(t, os.MkdirAll(tilesDir, 0o750))
	require.NoError(t, os.MkdirAll(predsDir, 0o750))
	return tilesDir, predsDir, outDir
}
