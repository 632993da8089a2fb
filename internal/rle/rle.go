// Package rle decodes COCO-style run-length-encoded instance masks.
//
// A mask is serialized as {"size": [height, width], "counts": ...} where
// counts is either a plain array of run lengths or the compressed string
// form produced by pycocotools (6-bit chunks offset by 48, with runs after
// the second stored as deltas). Runs are column-major and always start with
// the background run, which may be zero-length.
package rle

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/canopy-tools/geocrown/internal/mask"
)

// ErrMalformed is returned when an encoded mask does not follow the expected
// structure.
var ErrMalformed = errors.New("malformed rle mask")

// Mask is one run-length-encoded instance mask as found in prediction files.
type Mask struct {
	Size   [2]int `json:"size"` // height, width
	Counts Counts `json:"counts"`
}

// Counts holds the run lengths, decoded from either wire form.
type Counts struct {
	runs []int
}

// Runs returns the decoded run lengths.
func (c Counts) Runs() []int { return c.runs }

// UnmarshalJSON accepts both the compressed string form and a plain integer
// array.
func (c *Counts) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		runs, err := decodeCountsString(s)
		if err != nil {
			return err
		}
		c.runs = runs
		return nil
	}

	var runs []int
	if err := json.Unmarshal(data, &runs); err != nil {
		return fmt.Errorf("%w: counts must be a string or an integer array", ErrMalformed)
	}
	c.runs = runs
	return nil
}

// MarshalJSON writes the uncompressed array form.
func (c Counts) MarshalJSON() ([]byte, error) {
	if c.runs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.runs)
}

// NewCounts builds a Counts value from explicit run lengths. Used by tests
// and fixture generators.
func NewCounts(runs []int) Counts {
	return Counts{runs: append([]int(nil), runs...)}
}

// Bitmap expands the mask into a row-major binary image. Run lengths are
// column-major per the COCO convention.
func (m Mask) Bitmap() (mask.Bitmap, error) {
	h, w := m.Size[0], m.Size[1]
	if h <= 0 || w <= 0 {
		return mask.Bitmap{}, fmt.Errorf("%w: invalid size [%d %d]", ErrMalformed, h, w)
	}

	total := 0
	for _, r := range m.Counts.runs {
		if r < 0 {
			return mask.Bitmap{}, fmt.Errorf("%w: negative run length %d", ErrMalformed, r)
		}
		total += r
	}
	if total != w*h {
		return mask.Bitmap{}, fmt.Errorf("%w: runs cover %d pixels, mask has %d", ErrMalformed, total, w*h)
	}

	bits := make([]bool, w*h)
	pos := 0
	val := false
	for _, r := range m.Counts.runs {
		for j := 0; j < r; j++ {
			if val {
				// Column-major run index to row-major bit index.
				bits[(pos%h)*w+pos/h] = true
			}
			pos++
		}
		val = !val
	}
	return mask.Bitmap{Bits: bits, Width: w, Height: h}, nil
}

// decodeCountsString expands the pycocotools compressed counts string.
// Values are little-endian base-32 chunks offset by +48, bit 0x20 marks a
// continuation, and from the third value onward each run is stored as a
// delta against the value two places back.
func decodeCountsString(s string) ([]int, error) {
	var runs []int
	for p := 0; p < len(s); {
		x := 0
		k := 0
		more := true
		for more {
			if p >= len(s) {
				return nil, fmt.Errorf("%w: truncated counts string", ErrMalformed)
			}
			c := int(s[p]) - 48
			if c < 0 || c > 63 {
				return nil, fmt.Errorf("%w: counts byte %q out of range", ErrMalformed, s[p])
			}
			x |= (c & 0x1f) << (5 * k)
			more = c&0x20 != 0
			p++
			if !more && c&0x10 != 0 {
				x |= -1 << (5 * (k + 1))
			}
			k++
		}
		if len(runs) > 2 {
			x += runs[len(runs)-2]
		}
		runs = append(runs, x)
	}
	return runs, nil
}
