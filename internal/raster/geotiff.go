package raster

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/canopy-tools/geocrown/internal/geo"
)

// ErrNoGeoreference is returned when a TIFF carries neither a
// ModelTransformation nor a ModelPixelScale/ModelTiepoint pair.
var ErrNoGeoreference = errors.New("raster has no georeferencing tags")

// TIFF tags we care about. The Model* tags and the GeoKey directory are
// defined by the GeoTIFF specification.
const (
	tagImageWidth          = 256
	tagImageLength         = 257
	tagModelPixelScale     = 33550
	tagModelTiepoint       = 33922
	tagModelTransformation = 34264
	tagGeoKeyDirectory     = 34735
)

// GeoTIFF keys carrying the EPSG id of the coordinate reference system.
const (
	keyGeographicType  = 2048
	keyProjectedCSType = 3072
)

const (
	typeShort  = 3
	typeLong   = 4
	typeDouble = 12
)

// geoTags holds the raw georeferencing information parsed from a tile.
type geoTags struct {
	width      int
	height     int
	pixelScale []float64
	tiepoint   []float64
	modelXform []float64
	epsg       int
}

// readGeoTIFF parses the first IFD of a classic TIFF file and extracts the
// dimensions and georeferencing tags. The file is opened, read, and closed
// within this call; no handles are retained.
func readGeoTIFF(path string) (geoTags, error) {
	f, err := os.Open(path) //nolint:gosec // G304: tile path derives from the configured tiles directory
	if err != nil {
		return geoTags{}, err
	}
	defer func() {
		_ = f.Close()
	}()
	return parseGeoTIFF(f)
}

func parseGeoTIFF(r io.ReaderAt) (geoTags, error) {
	var hdr [8]byte
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return geoTags{}, fmt.Errorf("reading tiff header: %w", err)
	}

	var bo binary.ByteOrder
	switch {
	case hdr[0] == 'I' && hdr[1] == 'I':
		bo = binary.LittleEndian
	case hdr[0] == 'M' && hdr[1] == 'M':
		bo = binary.BigEndian
	default:
		return geoTags{}, errors.New("not a tiff file")
	}
	if bo.Uint16(hdr[2:4]) != 42 {
		return geoTags{}, errors.New("not a classic tiff file")
	}

	ifdOffset := int64(bo.Uint32(hdr[4:8]))
	var cntBuf [2]byte
	if _, err := r.ReadAt(cntBuf[:], ifdOffset); err != nil {
		return geoTags{}, fmt.Errorf("reading ifd: %w", err)
	}
	n := int(bo.Uint16(cntBuf[:]))

	entries := make([]byte, n*12)
	if _, err := r.ReadAt(entries, ifdOffset+2); err != nil {
		return geoTags{}, fmt.Errorf("reading ifd entries: %w", err)
	}

	var tags geoTags
	for i := 0; i < n; i++ {
		e := entries[i*12 : i*12+12]
		tag := bo.Uint16(e[0:2])
		typ := bo.Uint16(e[2:4])
		count := int(bo.Uint32(e[4:8]))

		switch tag {
		case tagImageWidth:
			tags.width = int(scalarValue(e, typ, bo))
		case tagImageLength:
			tags.height = int(scalarValue(e, typ, bo))
		case tagModelPixelScale, tagModelTiepoint, tagModelTransformation:
			vals, err := doubleValues(r, e, typ, count, bo)
			if err != nil {
				return geoTags{}, err
			}
			switch tag {
			case tagModelPixelScale:
				tags.pixelScale = vals
			case tagModelTiepoint:
				tags.tiepoint = vals
			case tagModelTransformation:
				tags.modelXform = vals
			}
		case tagGeoKeyDirectory:
			keys, err := shortValues(r, e, typ, count, bo)
			if err != nil {
				return geoTags{}, err
			}
			tags.epsg = epsgFromGeoKeys(keys)
		}
	}

	if tags.width <= 0 || tags.height <= 0 {
		return geoTags{}, errors.New("tiff missing image dimensions")
	}
	return tags, nil
}

// scalarValue reads an inline SHORT or LONG entry value.
func scalarValue(entry []byte, typ uint16, bo binary.ByteOrder) uint32 {
	if typ == typeShort {
		return uint32(bo.Uint16(entry[8:10]))
	}
	return bo.Uint32(entry[8:12])
}

// doubleValues reads a DOUBLE array entry, following the offset since
// doubles never fit inline.
func doubleValues(r io.ReaderAt, entry []byte, typ uint16, count int, bo binary.ByteOrder) ([]float64, error) {
	if typ != typeDouble || count <= 0 {
		return nil, fmt.Errorf("unexpected type %d for double tag", typ)
	}
	buf := make([]byte, count*8)
	off := int64(bo.Uint32(entry[8:12]))
	if _, err := r.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("reading tag values: %w", err)
	}
	vals := make([]float64, count)
	for i := range vals {
		vals[i] = math.Float64frombits(bo.Uint64(buf[i*8 : i*8+8]))
	}
	return vals, nil
}

// shortValues reads a SHORT array entry, inline when it fits in four bytes.
func shortValues(r io.ReaderAt, entry []byte, typ uint16, count int, bo binary.ByteOrder) ([]uint16, error) {
	if typ != typeShort || count <= 0 {
		return nil, fmt.Errorf("unexpected type %d for short tag", typ)
	}
	var buf []byte
	if count <= 2 {
		buf = entry[8 : 8+count*2]
	} else {
		buf = make([]byte, count*2)
		off := int64(bo.Uint32(entry[8:12]))
		if _, err := r.ReadAt(buf, off); err != nil {
			return nil, fmt.Errorf("reading tag values: %w", err)
		}
	}
	vals := make([]uint16, count)
	for i := range vals {
		vals[i] = bo.Uint16(buf[i*2 : i*2+2])
	}
	return vals, nil
}

// epsgFromGeoKeys extracts the CRS id from a GeoKey directory. Projected
// systems take precedence over geographic ones. Returns 0 when absent.
func epsgFromGeoKeys(keys []uint16) int {
	if len(keys) < 4 {
		return 0
	}
	numKeys := int(keys[3])
	geographic := 0
	for i := 1; i <= numKeys && (i+1)*4 <= len(keys); i++ {
		k := keys[i*4 : i*4+4]
		keyID, tagLoc, value := k[0], k[1], k[3]
		if tagLoc != 0 {
			continue // value stored in another tag, not a bare code
		}
		switch keyID {
		case keyProjectedCSType:
			return int(value)
		case keyGeographicType:
			geographic = int(value)
		}
	}
	return geographic
}

// transform derives the affine pixel-to-world mapping from the parsed tags.
func (t geoTags) transform() (geo.Transform, error) {
	if len(t.modelXform) >= 8 {
		m := t.modelXform
		return geo.Transform{A: m[0], B: m[1], C: m[3], D: m[4], E: m[5], F: m[7]}, nil
	}
	if len(t.pixelScale) >= 2 && len(t.tiepoint) >= 6 {
		sx, sy := t.pixelScale[0], t.pixelScale[1]
		i, j := t.tiepoint[0], t.tiepoint[1]
		x, y := t.tiepoint[3], t.tiepoint[4]
		return geo.Transform{
			A: sx, C: x - sx*i,
			E: -sy, F: y + sy*j,
		}, nil
	}
	return geo.Transform{}, ErrNoGeoreference
}
