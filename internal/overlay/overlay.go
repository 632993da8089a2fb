// Package overlay renders projected crown outlines back onto their source
// tiles, producing the PNG copies used for quick visual inspection.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"

	"github.com/canopy-tools/geocrown/internal/crowns"
	"github.com/canopy-tools/geocrown/internal/mask"
)

// CrownColor is the outline colour for rendered crowns.
var CrownColor = color.RGBA{255, 0, 0, 255}

// Save renders the crowns' pixel rings over the tile raster and writes
// <stem>_overlay.png into dir, creating it if needed.
func Save(tilePath string, cs []crowns.Crown, dir, stem string) error {
	f, err := os.Open(tilePath) //nolint:gosec // G304: tile path derives from the configured tiles directory
	if err != nil {
		return fmt.Errorf("opening tile: %w", err)
	}
	img, err := tiff.Decode(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("decoding tile: %w", err)
	}

	rendered := Render(img, cs)

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating overlay directory: %w", err)
	}
	outPath := filepath.Join(dir, stem+"_overlay.png")
	if err := imaging.Save(rendered, outPath); err != nil {
		return fmt.Errorf("saving overlay: %w", err)
	}
	return nil
}

// Render draws each crown's pixel ring over a copy of the tile image.
func Render(img image.Image, cs []crowns.Crown) *image.NRGBA {
	dst := imaging.Clone(img)
	for _, c := range cs {
		drawRing(dst, c.Pixels, CrownColor)
	}
	return dst
}

// drawRing draws the closed polygon over dst.
func drawRing(dst *image.NRGBA, pts []mask.Point, col color.Color) {
	if len(pts) < 2 {
		return
	}
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		drawLine(dst, a.X, a.Y, b.X, b.Y, col)
	}
}

// drawLine draws a segment using a simple Bresenham variant.
func drawLine(dst *image.NRGBA, x0, y0, x1, y1 int, col color.Color) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	e := dx + dy
	for {
		if image.Pt(x0, y0).In(dst.Bounds()) {
			dst.Set(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
