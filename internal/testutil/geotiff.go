package testutil

import (
	"encoding/binary"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canopy-tools/geocrown/internal/geo"
)

// WriteGeoTIFF writes a minimal grayscale GeoTIFF fixture.
func WriteGeoTIFF(t *testing.T, path string, width, height int, tf geo.Transform, epsg int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, EncodeGeoTIFF(width, height, tf, epsg), 0o600))
}

// EncodeGeoTIFF builds a minimal little-endian grayscale GeoTIFF carrying the
// given affine transform in a ModelTransformation tag and, when epsg is
// positive, the CRS id in a GeoKey directory. The pixel data is a single
// uncompressed strip of zeros, decodable by standard TIFF readers.
func EncodeGeoTIFF(width, height int, tf geo.Transform, epsg int) []byte {
	type entry struct {
		tag   uint16
		typ   uint16
		count uint32
		value uint32
	}

	const (
		typeShort  = 3
		typeLong   = 4
		typeDouble = 12
	)

	nEntries := 10
	if epsg > 0 {
		nEntries++
	}
	ifdSize := 2 + nEntries*12 + 4
	xformOffset := 8 + ifdSize
	geoKeyOffset := xformOffset + 16*8
	pixelOffset := geoKeyOffset
	if epsg > 0 {
		pixelOffset += 8 * 2
	}

	entries := []entry{
		{256, typeShort, 1, uint32(width)},
		{257, typeShort, 1, uint32(height)},
		{258, typeShort, 1, 8},                    // BitsPerSample
		{259, typeShort, 1, 1},                    // Compression: none
		{262, typeShort, 1, 1},                    // Photometric: BlackIsZero
		{273, typeLong, 1, uint32(pixelOffset)},   // StripOffsets
		{277, typeShort, 1, 1},                    // SamplesPerPixel
		{278, typeShort, 1, uint32(height)},       // RowsPerStrip
		{279, typeLong, 1, uint32(width * height)}, // StripByteCounts
		{34264, typeDouble, 16, uint32(xformOffset)},
	}
	if epsg > 0 {
		entries = append(entries, entry{34735, typeShort, 8, uint32(geoKeyOffset)})
	}

	buf := make([]byte, 0, pixelOffset+width*height)
	le := binary.LittleEndian

	put16 := func(v uint16) { buf = le.AppendUint16(buf, v) }
	put32 := func(v uint32) { buf = le.AppendUint32(buf, v) }
	put64f := func(v float64) { buf = le.AppendUint64(buf, math.Float64bits(v)) }

	// Header
	buf = append(buf, 'I', 'I')
	put16(42)
	put32(8)

	// IFD
	put16(uint16(len(entries)))
	for _, e := range entries {
		put16(e.tag)
		put16(e.typ)
		put32(e.count)
		if e.typ == typeShort && e.count == 1 {
			put16(uint16(e.value))
			put16(0)
		} else {
			put32(e.value)
		}
	}
	put32(0) // no next IFD

	// ModelTransformation: row-major 4x4.
	xform := [16]float64{
		tf.A, tf.B, 0, tf.C,
		tf.D, tf.E, 0, tf.F,
		0, 0, 0, 0,
		0, 0, 0, 1,
	}
	for _, v := range xform {
		put64f(v)
	}

	// GeoKey directory: header + ProjectedCSTypeGeoKey.
	if epsg > 0 {
		for _, v := range [8]uint16{1, 1, 0, 1, 3072, 0, 1, uint16(epsg)} {
			put16(v)
		}
	}

	// Pixel strip.
	buf = append(buf, make([]byte, width*height)...)

	return buf
}
