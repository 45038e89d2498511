package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/rigid"
)

// sphereSphere emits one contact per body, each carrying half the overlap.
func sphereSphere(a, b *rigid.Body, ia, ib int) []rigid.Contact {
	d := b.Position.Sub(a.Position)
	dist := d.Len()
	sum := a.Radius + b.Radius
	if dist >= sum {
		return nil
	}
	n := up
	if dist > eps {
		n = d.Mul(1 / dist)
	}
	depth := sum - dist
	point := a.Position.Add(n.Mul(a.Radius - 0.5*depth))
	half := 0.5 * depth
	return []rigid.Contact{
		{A: ia, B: ib, Normal: n, Depth: half, Point: point, HasPoint: true},
		{A: ib, B: ia, Normal: n.Mul(-1), Depth: half, Point: point, HasPoint: true},
	}
}

func spherePlane(s, p *rigid.Body, is, ip int) []rigid.Contact {
	dist := p.Normal.Dot(s.Position) - p.Offset
	if dist >= s.Radius {
		return nil
	}
	point := s.Position.Sub(p.Normal.Mul(dist))
	if !withinExtents(p, point) {
		return nil
	}
	return []rigid.Contact{{
		A: is, B: ip,
		Normal:   p.Normal.Mul(-1),
		Depth:    s.Radius - dist,
		Point:    point,
		HasPoint: true,
	}}
}

func sphereBox(s, b *rigid.Body, is, ib int) []rigid.Contact {
	local := b.LocalPoint(s.Position)
	h := b.HalfExtents
	clamped := local
	for i := 0; i < 3; i++ {
		clamped[i] = clamp(local[i], -h[i], h[i])
	}

	if clamped != local {
		diff := local.Sub(clamped)
		dist := diff.Len()
		if dist >= s.Radius {
			return nil
		}
		if dist > eps {
			out := b.Orientation.Rotate(diff.Mul(1 / dist))
			return []rigid.Contact{{
				A: is, B: ib,
				Normal:   out.Mul(-1),
				Depth:    s.Radius - dist,
				Point:    b.WorldPoint(clamped),
				HasPoint: true,
			}}
		}
	}

	axis, sign := nearestFace(local, h)
	faceDist := h[axis] - sign*local[axis]
	var n mgl64.Vec3
	n[axis] = sign
	onFace := local
	onFace[axis] = sign * h[axis]
	return []rigid.Contact{{
		A: is, B: ib,
		Normal:   b.Orientation.Rotate(n).Mul(-1),
		Depth:    s.Radius + math.Max(faceDist, 0),
		Point:    b.WorldPoint(onFace),
		HasPoint: true,
	}}
}

// sphereCylinder projects the sphere center onto the solid cylinder: the
// axis segment clamps the height and the radius clamps the lateral offset.
// A center inside the cylinder leaves through the nearer of the lateral
// surface and the end caps.
func sphereCylinder(s, c *rigid.Body, is, ic int) []rigid.Contact {
	axis := c.Axis()
	half := 0.5 * c.Height
	d := s.Position.Sub(c.Position)
	h := d.Dot(axis)
	radial := d.Sub(axis.Mul(h))
	rl := radial.Len()

	if math.Abs(h) > half || rl > c.Radius {
		hc := clamp(h, -half, half)
		rc := radial
		if rl > c.Radius {
			rc = radial.Mul(c.Radius / rl)
		}
		closest := c.Position.Add(axis.Mul(hc)).Add(rc)
		diff := s.Position.Sub(closest)
		dist := diff.Len()
		if dist >= s.Radius {
			return nil
		}
		if dist > eps {
			return []rigid.Contact{{
				A: is, B: ic,
				Normal:   diff.Mul(-1 / dist),
				Depth:    s.Radius - dist,
				Point:    closest,
				HasPoint: true,
			}}
		}
	}

	capDist := half - math.Abs(h)
	latDist := c.Radius - rl
	var out mgl64.Vec3
	var dist float64
	if capDist <= latDist {
		out, dist = axis.Mul(signOf(h)), capDist
	} else {
		out, dist = radialDir(radial, rl, axis), latDist
	}
	return []rigid.Contact{{
		A: is, B: ic,
		Normal:   out.Mul(-1),
		Depth:    s.Radius + math.Max(dist, 0),
		Point:    s.Position.Add(out.Mul(dist)),
		HasPoint: true,
	}}
}
