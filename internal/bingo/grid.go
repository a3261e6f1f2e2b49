package bingo

// NeighborsOf lists the row-major indices adjacent to (row, col). Cells
// outside the grid are omitted; there is no wraparound.
func NeighborsOf(row, col, gridSize int, mode NeighborMode) []int {
	neighbors := make([]int, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if mode == Orthogonal && dr != 0 && dc != 0 {
				continue
			}
			r, c := row+dr, col+dc
			if 0 <= r && r < gridSize && 0 <= c && c < gridSize {
				neighbors = append(neighbors, r*gridSize+c)
			}
		}
	}
	return neighbors
}

func (b *Board) neighbors(index int) []int {
	return NeighborsOf(index/b.GridSize, index%b.GridSize, b.GridSize, b.NeighborMode)
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
