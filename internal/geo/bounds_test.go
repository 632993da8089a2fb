package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestShrinkBound(t *testing.T) {
	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{100, 100}}
	shrunk := ShrinkBound(b, 10)

	assert.Equal(t, orb.Point{10, 10}, shrunk.Min)
	assert.Equal(t, orb.Point{90, 90}, shrunk.Max)
}

func TestShrinkBoundZero(t *testing.T) {
	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{100, 100}}
	assert.Equal(t, b, ShrinkBound(b, 0))
}

func TestInterior(t *testing.T) {
	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}

	tests := []struct {
		name string
		ring orb.Ring
		want bool
	}{
		{
			name: "fully inside",
			ring: orb.Ring{{2, 2}, {8, 2}, {8, 8}, {2, 8}, {2, 2}},
			want: true,
		},
		{
			name: "vertex exactly on edge is outside",
			ring: orb.Ring{{2, 2}, {10, 5}, {5, 8}, {2, 2}},
			want: false,
		},
		{
			name: "vertex on min edge is outside",
			ring: orb.Ring{{0, 5}, {5, 2}, {5, 8}, {0, 5}},
			want: false,
		},
		{
			name: "vertex beyond bounds",
			ring: orb.Ring{{2, 2}, {12, 5}, {5, 8}, {2, 2}},
			want: false,
		},
		{
			name: "empty ring",
			ring: orb.Ring{},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interior(tt.ring, b))
		})
	}
}
