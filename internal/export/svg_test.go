package export

import (
	"strings"
	"testing"

	"github.com/san-kum/rigidsim/internal/storage"
)

func trajectory() *storage.Trajectory {
	return &storage.Trajectory{
		Columns: []string{"b0_x", "b0_y", "b0_z", "b0_vx", "b0_vy", "b0_vz"},
		Times:   []float64{0, 0.1, 0.2},
		States: [][]float64{
			{0, 5, 0, 1, 0, 0},
			{0.1, 4.9, 0, 1, -1, 0},
			{0.2, 4.6, 0, 1, -2, 0},
		},
	}
}

func TestBodyPath(t *testing.T) {
	path, err := BodyPath(trajectory(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != 3 || path[2] != (Point{X: 0.2, Y: 4.6}) {
		t.Errorf("path = %v", path)
	}
	if _, err := BodyPath(trajectory(), 1); err == nil {
		t.Error("expected error for missing body")
	}
}

func TestTrajectorySVG(t *testing.T) {
	svg, err := TrajectorySVG(trajectory(), []int{0}, 200, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not an svg document")
	}
	if strings.Count(svg, "<path") != 1 || strings.Count(svg, " L") != 2 {
		t.Errorf("unexpected path data:\n%s", svg)
	}
	if _, err := TrajectorySVG(trajectory(), []int{3}, 200, 100); err == nil {
		t.Error("expected error for missing body")
	}
}

func TestPathsSVGSkipsShortPaths(t *testing.T) {
	svg := PathsSVG([][]Point{{{X: 1, Y: 1}}}, 50, 50)
	if strings.Contains(svg, "<path") {
		t.Error("single point path should be skipped")
	}
	if !strings.Contains(svg, "<rect") {
		t.Error("missing background")
	}
}
