package collision

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/rigid"
)

// cylinderPlane finds the rim point of each end cap that reaches furthest
// against the plane normal and reports the deeper one.
func cylinderPlane(c, p *rigid.Body, ic, ip int) []rigid.Contact {
	axis := c.Axis()
	half := 0.5 * c.Height
	w := p.Normal.Sub(axis.Mul(p.Normal.Dot(axis)))
	rim := mgl64.Vec3{}
	if l := w.Len(); l > eps {
		rim = w.Mul(-c.Radius / l)
	}

	deepest := 0.0
	var point mgl64.Vec3
	found := false
	for _, s := range [2]float64{1, -1} {
		q := c.Position.Add(axis.Mul(s * half)).Add(rim)
		dist := p.Normal.Dot(q) - p.Offset
		if dist < deepest && withinExtents(p, q) {
			deepest, point, found = dist, q, true
		}
	}
	if !found {
		return nil
	}
	return []rigid.Contact{{
		A: ic, B: ip,
		Normal:   p.Normal.Mul(-1),
		Depth:    -deepest,
		Point:    point,
		HasPoint: true,
	}}
}

// cylinderCylinder keeps the deepest of: cap samples of either cylinder
// inside the other, and the lateral surfaces meeting between the interiors
// of both axis segments.
func cylinderCylinder(a, b *rigid.Body, ia, ib int) []rigid.Contact {
	var best candidate

	for _, p := range cylinderSamples(b) {
		if depth, out, ok := insideCylinder(a, p); ok {
			best.offer(depth, out, p)
		}
	}
	for _, p := range cylinderSamples(a) {
		if depth, out, ok := insideCylinder(b, p); ok {
			best.offer(depth, out.Mul(-1), p)
		}
	}

	a0, a1 := cylinderEnds(a)
	b0, b1 := cylinderEnds(b)
	ca, cb, s, t := closestSegments(a0, a1, b0, b1)
	if s > 0 && s < 1 && t > 0 && t < 1 {
		diff := cb.Sub(ca)
		dist := diff.Len()
		sum := a.Radius + b.Radius
		switch {
		case dist <= eps:
			best.offer(sum, crossingNormal(a, b), ca)
		case dist < sum:
			n := diff.Mul(1 / dist)
			best.offer(sum-dist, n, ca.Add(n.Mul(a.Radius-0.5*(sum-dist))))
		}
	}

	return best.contact(ia, ib)
}

// crossingNormal separates two cylinders whose axes intersect. It prefers
// the common perpendicular of the axes, then the center offset, oriented
// from a toward b.
func crossingNormal(a, b *rigid.Body) mgl64.Vec3 {
	offset := b.Position.Sub(a.Position)
	n := a.Axis().Cross(b.Axis())
	switch {
	case n.Len() > eps:
		n = n.Normalize()
	case offset.Len() > eps:
		return offset.Normalize()
	default:
		return rigid.Perpendicular(a.Axis())
	}
	if n.Dot(offset) < 0 {
		n = n.Mul(-1)
	}
	return n
}
