package rle

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountsUnmarshalArray(t *testing.T) {
	var c Counts
	require.NoError(t, json.Unmarshal([]byte(`[2,3,4,5]`), &c))
	assert.Equal(t, []int{2, 3, 4, 5}, c.Runs())
}

func TestCountsUnmarshalCompressedString(t *testing.T) {
	// Values below 15 encode as single bytes offset by 48; from the fourth
	// value onward the wire carries a delta against the value two back, so
	// "2342" decodes as runs [2 3 4 5].
	var c Counts
	require.NoError(t, json.Unmarshal([]byte(`"2342"`), &c))
	assert.Equal(t, []int{2, 3, 4, 5}, c.Runs())
}

func TestCountsUnmarshalMultiByteValue(t *testing.T) {
	// 15 sets the sign bit of its low chunk, forcing the two-byte form
	// "_0" (47|0x20 then 0).
	var c Counts
	require.NoError(t, json.Unmarshal([]byte(`"_0"`), &c))
	assert.Equal(t, []int{15}, c.Runs())
}

func TestCountsUnmarshalBadPayload(t *testing.T) {
	var c Counts
	err := json.Unmarshal([]byte(`{"not":"counts"}`), &c)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestBitmapColumnMajor(t *testing.T) {
	// 3 rows x 2 cols, runs [1 2 3]: pixel 0 off, pixels 1-2 on, rest off.
	// Column-major pixel 1 is (col 0, row 1), pixel 2 is (col 0, row 2).
	m := Mask{Size: [2]int{3, 2}, Counts: NewCounts([]int{1, 2, 3})}

	b, err := m.Bitmap()
	require.NoError(t, err)
	assert.Equal(t, 2, b.Width)
	assert.Equal(t, 3, b.Height)

	assert.False(t, b.At(0, 0))
	assert.True(t, b.At(0, 1))
	assert.True(t, b.At(0, 2))
	assert.False(t, b.At(1, 0))
	assert.False(t, b.At(1, 1))
	assert.False(t, b.At(1, 2))
}

func TestBitmapAllBackground(t *testing.T) {
	m := Mask{Size: [2]int{4, 4}, Counts: NewCounts([]int{16})}
	b, err := m.Bitmap()
	require.NoError(t, err)
	assert.True(t, b.Empty())
}

func TestBitmapErrors(t *testing.T) {
	tests := []struct {
		name string
		m    Mask
	}{
		{"zero size", Mask{Size: [2]int{0, 0}, Counts: NewCounts([]int{0})}},
		{"runs exceed size", Mask{Size: [2]int{2, 2}, Counts: NewCounts([]int{5})}},
		{"runs short of size", Mask{Size: [2]int{2, 2}, Counts: NewCounts([]int{3})}},
		{"negative run", Mask{Size: [2]int{2, 2}, Counts: NewCounts([]int{-1, 5})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.m.Bitmap()
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestMaskJSONRoundTrip(t *testing.T) {
	in := Mask{Size: [2]int{3, 2}, Counts: NewCounts([]int{1, 2, 3})}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Mask
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.Size, out.Size)
	assert.Equal(t, in.Counts.Runs(), out.Counts.Runs())
}
