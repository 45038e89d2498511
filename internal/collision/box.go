package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/rigid"
)

// boxPlane tests every corner against the plane and reports the deepest
// penetration at the centroid of the penetrating corners.
func boxPlane(b, p *rigid.Body, ib, ip int) []rigid.Contact {
	var (
		deepest  float64
		centroid mgl64.Vec3
		count    int
	)
	for _, corner := range boxCorners(b) {
		dist := p.Normal.Dot(corner) - p.Offset
		if dist >= 0 || !withinExtents(p, corner) {
			continue
		}
		deepest = math.Min(deepest, dist)
		centroid = centroid.Add(corner)
		count++
	}
	if count == 0 {
		return nil
	}
	return []rigid.Contact{{
		A: ib, B: ip,
		Normal:   p.Normal.Mul(-1),
		Depth:    -deepest,
		Point:    centroid.Mul(1 / float64(count)),
		HasPoint: true,
	}}
}

func boxAxes(b *rigid.Body) [3]mgl64.Vec3 {
	return [3]mgl64.Vec3{
		b.Orientation.Rotate(mgl64.Vec3{1, 0, 0}),
		b.Orientation.Rotate(mgl64.Vec3{0, 1, 0}),
		b.Orientation.Rotate(mgl64.Vec3{0, 0, 1}),
	}
}

func projectBox(b *rigid.Body, axes [3]mgl64.Vec3, l mgl64.Vec3) float64 {
	return b.HalfExtents[0]*math.Abs(axes[0].Dot(l)) +
		b.HalfExtents[1]*math.Abs(axes[1].Dot(l)) +
		b.HalfExtents[2]*math.Abs(axes[2].Dot(l))
}

// boxBox runs a separating-axis test over the 15 candidate axes and reports
// the axis of least overlap. Face axes are tested first and win ties.
func boxBox(a, b *rigid.Body, ia, ib int) []rigid.Contact {
	axA := boxAxes(a)
	axB := boxAxes(b)
	d := b.Position.Sub(a.Position)

	axes := make([]mgl64.Vec3, 0, 15)
	axes = append(axes, axA[:]...)
	axes = append(axes, axB[:]...)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c := axA[i].Cross(axB[j])
			if l := c.Len(); l > 1e-6 {
				axes = append(axes, c.Mul(1/l))
			}
		}
	}

	best := math.Inf(1)
	var normal mgl64.Vec3
	for _, l := range axes {
		dist := d.Dot(l)
		overlap := projectBox(a, axA, l) + projectBox(b, axB, l) - math.Abs(dist)
		if overlap <= 0 {
			return nil
		}
		if overlap < best {
			best = overlap
			normal = l
			if dist < 0 {
				normal = l.Mul(-1)
			}
		}
	}

	// deepest corner of b along -normal
	point := b.Position
	lowest := math.Inf(1)
	for _, corner := range boxCorners(b) {
		if s := corner.Dot(normal); s < lowest {
			lowest, point = s, corner
		}
	}
	return []rigid.Contact{{A: ia, B: ib, Normal: normal, Depth: best, Point: point, HasPoint: true}}
}

// boxCylinder combines three tests and keeps the deepest: box corners inside
// the cylinder, cylinder cap samples inside the box, and the lateral surface
// against the box via the closest points of the axis segment and the box.
// An axis passing through the box is pushed out through the nearest face.
func boxCylinder(b, c *rigid.Body, ib, ic int) []rigid.Contact {
	var best candidate

	for _, corner := range boxCorners(b) {
		if depth, out, ok := insideCylinder(c, corner); ok {
			best.offer(depth, out.Mul(-1), corner)
		}
	}
	for _, p := range cylinderSamples(c) {
		if depth, out, ok := insideBox(b, p); ok {
			best.offer(depth, out, p)
		}
	}

	p0, p1 := cylinderEnds(c)
	s, t := closestOnSegment(b.Position, p0, p1)
	var q mgl64.Vec3
	for k := 0; k < 4; k++ {
		q = closestOnBox(b, s)
		s, t = closestOnSegment(q, p0, p1)
	}
	q = closestOnBox(b, s)
	if t > 0 && t < 1 {
		diff := s.Sub(q)
		switch dist := diff.Len(); {
		case dist <= eps:
			// the axis runs through the box
			if depth, out, ok := insideBox(b, s); ok {
				best.offer(depth+c.Radius, out, s)
			}
		case dist < c.Radius:
			best.offer(c.Radius-dist, diff.Mul(1/dist), q)
		}
	}

	return best.contact(ib, ic)
}
