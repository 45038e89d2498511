package collision

import (
	"math"
	"sort"

	"github.com/san-kum/rigidsim/internal/rigid"
)

// maxCellsPerBody bounds how many cells one body may occupy; larger bodies
// are paired with everything like planes.
const maxCellsPerBody = 4096

type cellKey struct {
	x, y, z int64
}

// gridPairs buckets bounded bodies into cubic cells and returns the pairs
// sharing at least one cell, plus every pair involving an unbounded body,
// sorted so that the result is a subset of the exhaustive order.
func gridPairs(bodies []rigid.Body, cellSize float64) [][2]int {
	cells := make(map[cellKey][]int)
	var unbounded []int

	for i := range bodies {
		lo, hi, ok := bodies[i].Bounds()
		if !ok {
			unbounded = append(unbounded, i)
			continue
		}
		x0, x1 := cellRange(lo[0], hi[0], cellSize)
		y0, y1 := cellRange(lo[1], hi[1], cellSize)
		z0, z1 := cellRange(lo[2], hi[2], cellSize)
		if span := (x1 - x0 + 1) * (y1 - y0 + 1) * (z1 - z0 + 1); span > maxCellsPerBody || span <= 0 {
			unbounded = append(unbounded, i)
			continue
		}
		for x := x0; x <= x1; x++ {
			for y := y0; y <= y1; y++ {
				for z := z0; z <= z1; z++ {
					k := cellKey{x, y, z}
					cells[k] = append(cells[k], i)
				}
			}
		}
	}

	seen := make(map[[2]int]struct{})
	add := func(i, j int) {
		if i == j || (bodies[i].IsStatic() && bodies[j].IsStatic()) {
			return
		}
		if i > j {
			i, j = j, i
		}
		seen[[2]int{i, j}] = struct{}{}
	}
	for _, members := range cells {
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				add(members[a], members[b])
			}
		}
	}
	for _, u := range unbounded {
		for j := range bodies {
			add(u, j)
		}
	}

	pairs := make([][2]int, 0, len(seen))
	for p := range seen {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a][0] != pairs[b][0] {
			return pairs[a][0] < pairs[b][0]
		}
		return pairs[a][1] < pairs[b][1]
	})
	return pairs
}

func cellRange(lo, hi, size float64) (int64, int64) {
	return int64(math.Floor(lo / size)), int64(math.Floor(hi / size))
}
