// Package mask turns binary instance bitmaps into pixel-space boundary
// polygons.
package mask

// Point is an integer pixel coordinate (column, row).
type Point struct {
	X int
	Y int
}

// Bitmap is a row-major binary image.
type Bitmap struct {
	Bits   []bool
	Width  int
	Height int
}

// At reports whether the pixel at (x, y) is foreground. Out-of-range
// coordinates are background.
func (b Bitmap) At(x, y int) bool {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return false
	}
	return b.Bits[y*b.Width+x]
}

// Empty reports whether the bitmap has no foreground pixels.
func (b Bitmap) Empty() bool {
	for _, v := range b.Bits {
		if v {
			return false
		}
	}
	return true
}
