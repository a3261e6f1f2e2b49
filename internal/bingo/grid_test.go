package bingo

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeighborsOf(t *testing.T) {
	tests := []struct {
		name     string
		row, col int
		size     int
		mode     NeighborMode
		want     []int
	}{
		{"interior 8", 1, 1, 3, Surrounding, []int{0, 1, 2, 3, 5, 6, 7, 8}},
		{"interior 4", 1, 1, 3, Orthogonal, []int{1, 3, 5, 7}},
		{"corner 8", 0, 0, 3, Surrounding, []int{1, 3, 4}},
		{"corner 4", 0, 0, 3, Orthogonal, []int{1, 3}},
		{"edge 8", 0, 2, 5, Surrounding, []int{1, 3, 6, 7, 8}},
		{"edge 4", 4, 2, 5, Orthogonal, []int{17, 21, 23}},
		{"far corner", 4, 4, 5, Surrounding, []int{18, 19, 23}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := NeighborsOf(test.row, test.col, test.size, test.mode)
			slices.Sort(got)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestNeighborSymmetry(t *testing.T) {
	for _, mode := range []NeighborMode{Orthogonal, Surrounding} {
		for size := MinGridSize; size <= 7; size++ {
			for a := range size * size {
				for _, b := range NeighborsOf(a/size, a%size, size, mode) {
					back := NeighborsOf(b/size, b%size, size, mode)
					assert.Contains(t, back, a, "size %d mode %s: %d -> %d", size, mode, a, b)
				}
			}
		}
	}
}

func TestNeighborsInBounds(t *testing.T) {
	size := 4
	for a := range size * size {
		for _, n := range NeighborsOf(a/size, a%size, size, Surrounding) {
			assert.True(t, 0 <= n && n < size*size)
			assert.NotEqual(t, a, n)
		}
	}
}
