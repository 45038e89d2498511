package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/rigidsim/internal/storage"
)

type Point struct {
	X, Y float64
}

var palette = []string{"#00ff9f", "#ffcc00", "#ff5fd7", "#5fafff", "#ff5f5f", "#afff5f"}

// BodyPath extracts the x-y path of body i from a recorded trajectory.
func BodyPath(traj *storage.Trajectory, i int) ([]Point, error) {
	xs := traj.Column(fmt.Sprintf("b%d_x", i))
	ys := traj.Column(fmt.Sprintf("b%d_y", i))
	if xs == nil || ys == nil {
		return nil, fmt.Errorf("no body %d in trajectory", i)
	}
	out := make([]Point, len(xs))
	for k := range xs {
		out[k] = Point{X: xs[k], Y: ys[k]}
	}
	return out, nil
}

// TrajectorySVG draws the side-view paths of the given bodies with shared
// bounds.
func TrajectorySVG(traj *storage.Trajectory, bodies []int, width, height int) (string, error) {
	paths := make([][]Point, 0, len(bodies))
	for _, i := range bodies {
		p, err := BodyPath(traj, i)
		if err != nil {
			return "", err
		}
		paths = append(paths, p)
	}
	return PathsSVG(paths, width, height), nil
}

// PathsSVG renders one polyline per path. Paths with fewer than two points
// are skipped.
func PathsSVG(paths [][]Point, width, height int) string {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, path := range paths {
		for _, p := range path {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	if math.IsInf(minX, 0) {
		minX, maxX, minY, maxY = 0, 1, 0, 1
	}

	// keep the aspect ratio so arcs look like arcs
	rangeX := math.Max(maxX-minX, 1e-9)
	rangeY := math.Max(maxY-minY, 1e-9)
	span := math.Max(rangeX, rangeY) * 1.2
	cx, cy := 0.5*(minX+maxX), 0.5*(minY+maxY)
	minX, minY = cx-span/2, cy-span/2
	size := float64(min(width, height))
	offX := (float64(width) - size) / 2
	offY := (float64(height) - size) / 2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for n, path := range paths {
		if len(path) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, palette[n%len(palette)]))
		for i, p := range path {
			x := offX + (p.X-minX)/span*size
			y := offY + size - (p.Y-minY)/span*size
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
