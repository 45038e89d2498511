package tui

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/rigid"
)

// canvas is a side view of the world: x runs across, y runs up. Terminal
// cells are about twice as tall as wide, so x gets twice the scale.
type canvas struct {
	w, h   int
	cells  [][]rune
	scale  float64
	cx, cy float64
}

func newCanvas(w, h int, scale float64, center mgl64.Vec3) *canvas {
	cells := make([][]rune, h)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", w))
	}
	return &canvas{w: w, h: h, cells: cells, scale: scale, cx: center[0], cy: center[1]}
}

// fitScale picks cells per metre so every bounded body fits the canvas.
func fitScale(bodies []rigid.Body, w, h int) (float64, mgl64.Vec3) {
	lo := mgl64.Vec3{math.Inf(1), math.Inf(1), 0}
	hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), 0}
	for i := range bodies {
		blo, bhi, ok := bodies[i].Bounds()
		if !ok {
			continue
		}
		for k := 0; k < 2; k++ {
			lo[k] = math.Min(lo[k], blo[k])
			hi[k] = math.Max(hi[k], bhi[k])
		}
	}
	if math.IsInf(lo[0], 0) {
		return 4, mgl64.Vec3{}
	}
	// leave headroom below for the floor and above for bounces
	lo[1] = math.Min(lo[1], 0) - 1
	hi[1] += 2
	lo[0]--
	hi[0]++
	center := mgl64.Vec3{0.5 * (lo[0] + hi[0]), 0.5 * (lo[1] + hi[1]), 0}
	sx := float64(w) / (2 * (hi[0] - lo[0]))
	sy := float64(h) / (hi[1] - lo[1])
	return math.Max(math.Min(sx, sy), 0.5), center
}

func (c *canvas) project(p mgl64.Vec3) (int, int) {
	x := float64(c.w)/2 + 2*c.scale*(p[0]-c.cx)
	y := float64(c.h)/2 - c.scale*(p[1]-c.cy)
	return int(math.Round(x)), int(math.Round(y))
}

func (c *canvas) set(x, y int, r rune) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.cells[y][x] = r
	}
}

func (c *canvas) line(x1, y1, x2, y2 int, r rune) {
	dx := intAbs(x2 - x1)
	dy := intAbs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.set(x1, y1, r)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (c *canvas) segment(a, b mgl64.Vec3, r rune) {
	x1, y1 := c.project(a)
	x2, y2 := c.project(b)
	c.line(x1, y1, x2, y2, r)
}

func (c *canvas) drawBody(b *rigid.Body) {
	switch b.Kind {
	case rigid.Plane:
		c.drawPlane(b)
	case rigid.Sphere:
		c.drawSphere(b)
	case rigid.Box:
		c.drawBox(b)
	case rigid.Cylinder:
		lo, hi := b.Position.Sub(b.Axis().Mul(0.5*b.Height)), b.Position.Add(b.Axis().Mul(0.5*b.Height))
		c.segment(lo, hi, '█')
	}
}

// drawPlane draws the plane's trace in the x-y view. Planes edge-on to the
// view are skipped.
func (c *canvas) drawPlane(b *rigid.Body) {
	n := b.Normal
	if math.Abs(n[0]) < 1e-6 && math.Abs(n[1]) < 1e-6 {
		return
	}
	dir := mgl64.Vec3{-n[1], n[0], 0}.Normalize()
	reach := float64(c.w+c.h) / c.scale
	c.segment(b.Position.Sub(dir.Mul(reach)), b.Position.Add(dir.Mul(reach)), '═')
}

func (c *canvas) drawSphere(b *rigid.Body) {
	steps := max(8, int(4*b.Radius*c.scale))
	for k := 0; k < steps; k++ {
		a := 2 * math.Pi * float64(k) / float64(steps)
		x, y := c.project(b.Position.Add(mgl64.Vec3{b.Radius * math.Cos(a), b.Radius * math.Sin(a), 0}))
		c.set(x, y, '∘')
	}
	x, y := c.project(b.Position)
	c.set(x, y, 'o')
}

// drawBox outlines the four box edges that face the viewer.
func (c *canvas) drawBox(b *rigid.Body) {
	h := b.HalfExtents
	corners := [4]mgl64.Vec3{
		b.WorldPoint(mgl64.Vec3{-h[0], -h[1], h[2]}),
		b.WorldPoint(mgl64.Vec3{h[0], -h[1], h[2]}),
		b.WorldPoint(mgl64.Vec3{h[0], h[1], h[2]}),
		b.WorldPoint(mgl64.Vec3{-h[0], h[1], h[2]}),
	}
	for i := range corners {
		c.segment(corners[i], corners[(i+1)%4], '#')
	}
}

func (c *canvas) drawJoint(bodies []rigid.Body, j *rigid.Joint) {
	if j.BodyA < 0 || j.BodyA >= len(bodies) || j.BodyB < 0 || j.BodyB >= len(bodies) {
		return
	}
	a := bodies[j.BodyA].WorldPoint(j.AnchorA)
	b := bodies[j.BodyB].WorldPoint(j.AnchorB)
	c.segment(bodies[j.BodyA].Position, a, '·')
	c.segment(a, bodies[j.BodyB].Position, '·')
	c.segment(a, b, '+')
}

func (c *canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString("   ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	return b.String()
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	if len(data) > width {
		data = data[len(data)-width:]
	}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	var sb strings.Builder
	for _, v := range data {
		idx := int((v - minVal) / rang * 7)
		sb.WriteRune(chars[max(0, min(idx, 7))])
	}
	return sb.String()
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
