package overlay

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopy-tools/geocrown/internal/crowns"
	"github.com/canopy-tools/geocrown/internal/geo"
	"github.com/canopy-tools/geocrown/internal/mask"
	"github.com/canopy-tools/geocrown/internal/testutil"
)

// crownNRGBA is CrownColor as stored in an NRGBA image.
var crownNRGBA = color.NRGBA{R: 255, A: 255}

func TestRenderDrawsOutline(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 20))
	cs := []crowns.Crown{
		{Pixels: []mask.Point{{X: 5, Y: 5}, {X: 14, Y: 5}, {X: 14, Y: 14}, {X: 5, Y: 14}}},
	}

	out := Render(img, cs)

	assert.Equal(t, crownNRGBA, out.NRGBAAt(5, 5))
	assert.Equal(t, crownNRGBA, out.NRGBAAt(10, 5))  // top edge
	assert.Equal(t, crownNRGBA, out.NRGBAAt(5, 10))  // left edge, closing segment
	assert.Equal(t, crownNRGBA, out.NRGBAAt(14, 14)) // opposite corner
	// Interior and exterior stay untouched.
	assert.Equal(t, uint8(0), out.NRGBAAt(10, 10).R)
	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).R)
}

func TestRenderEmptyCrowns(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	out := Render(img, nil)
	require.NotNil(t, out)
	assert.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())
}

func TestRenderClipsOutOfBoundsRing(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	cs := []crowns.Crown{
		{Pixels: []mask.Point{{X: -3, Y: 2}, {X: 12, Y: 2}, {X: 12, Y: 6}, {X: -3, Y: 6}}},
	}
	out := Render(img, cs)
	assert.Equal(t, crownNRGBA, out.NRGBAAt(4, 2))
}

func TestSaveWritesPNG(t *testing.T) {
	dir := t.TempDir()
	tilePath := filepath.Join(dir, "tile.tif")
	testutil.WriteGeoTIFF(t, tilePath, 16, 16, geo.Identity(), 0)

	overlayDir := filepath.Join(dir, "overlays")
	cs := []crowns.Crown{
		{Pixels: []mask.Point{{X: 2, Y: 2}, {X: 12, Y: 2}, {X: 12, Y: 12}, {X: 2, Y: 12}}},
	}
	require.NoError(t, Save(tilePath, cs, overlayDir, "tile"))

	info, err := os.Stat(filepath.Join(overlayDir, "tile_overlay.png"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSaveMissingTile(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "nope.tif"), nil, t.TempDir(), "nope")
	assert.Error(t, err)
}

func TestDrawLineEndpoints(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	col := color.NRGBA{G: 255, A: 255}
	drawLine(dst, 1, 1, 7, 4, col)
	assert.Equal(t, col, dst.NRGBAAt(1, 1))
	assert.Equal(t, col, dst.NRGBAAt(7, 4))
}
