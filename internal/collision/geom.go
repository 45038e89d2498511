package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/rigid"
)

const eps = 1e-9

var up = mgl64.Vec3{0, 1, 0}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// closestOnSegment returns the point of segment [a, b] nearest to p and its
// parameter in [0, 1].
func closestOnSegment(p, a, b mgl64.Vec3) (mgl64.Vec3, float64) {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < eps {
		return a, 0
	}
	t := clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
	return a.Add(ab.Mul(t)), t
}

// closestSegments returns the closest points between segments [p1, q1] and
// [p2, q2] with their parameters.
func closestSegments(p1, q1, p2, q2 mgl64.Vec3) (c1, c2 mgl64.Vec3, s, t float64) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	switch {
	case a < eps && e < eps:
		return p1, p2, 0, 0
	case a < eps:
		t = clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e < eps {
			s = clamp(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > eps {
				s = clamp((b*f-c*e)/denom, 0, 1)
			} else {
				// parallel: middle of the overlap of segment 2 projected on segment 1
				s0, s1 := -c/a, (b-c)/a
				s = 0.5 * (clamp(math.Min(s0, s1), 0, 1) + clamp(math.Max(s0, s1), 0, 1))
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = clamp((b-c)/a, 0, 1)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t)), s, t
}

func boxCorners(b *rigid.Body) [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	h := b.HalfExtents
	for i := 0; i < 8; i++ {
		local := mgl64.Vec3{h[0], h[1], h[2]}
		if i&1 != 0 {
			local[0] = -local[0]
		}
		if i&2 != 0 {
			local[1] = -local[1]
		}
		if i&4 != 0 {
			local[2] = -local[2]
		}
		out[i] = b.WorldPoint(local)
	}
	return out
}

// closestOnBox clamps a world point to the box and returns the clamped
// point in world space.
func closestOnBox(b *rigid.Body, p mgl64.Vec3) mgl64.Vec3 {
	local := b.LocalPoint(p)
	for i := 0; i < 3; i++ {
		local[i] = clamp(local[i], -b.HalfExtents[i], b.HalfExtents[i])
	}
	return b.WorldPoint(local)
}

// insideBox reports how deep p lies inside the box and the outward normal
// of the nearest face.
func insideBox(b *rigid.Body, p mgl64.Vec3) (depth float64, outward mgl64.Vec3, ok bool) {
	local := b.LocalPoint(p)
	h := b.HalfExtents
	for i := 0; i < 3; i++ {
		if math.Abs(local[i]) >= h[i] {
			return 0, mgl64.Vec3{}, false
		}
	}
	axis, sign := nearestFace(local, h)
	var n mgl64.Vec3
	n[axis] = sign
	return h[axis] - sign*local[axis], b.Orientation.Rotate(n), true
}

// nearestFace picks the face of an axis-aligned box of half extents h
// closest to the interior point local. Ties go to the earlier face in
// +x, -x, +y, -y, +z, -z order.
func nearestFace(local, h mgl64.Vec3) (axis int, sign float64) {
	best := math.Inf(1)
	for i := 0; i < 3; i++ {
		if d := h[i] - local[i]; d < best {
			best, axis, sign = d, i, 1
		}
		if d := h[i] + local[i]; d < best {
			best, axis, sign = d, i, -1
		}
	}
	return axis, sign
}

// insideCylinder reports how deep p lies inside the cylinder and the
// outward normal of the nearest surface, lateral or end cap.
func insideCylinder(c *rigid.Body, p mgl64.Vec3) (depth float64, outward mgl64.Vec3, ok bool) {
	axis := c.Axis()
	half := 0.5 * c.Height
	d := p.Sub(c.Position)
	h := d.Dot(axis)
	radial := d.Sub(axis.Mul(h))
	rl := radial.Len()
	if math.Abs(h) >= half || rl >= c.Radius {
		return 0, mgl64.Vec3{}, false
	}
	capDist := half - math.Abs(h)
	latDist := c.Radius - rl
	if capDist <= latDist {
		return capDist, axis.Mul(signOf(h)), true
	}
	return latDist, radialDir(radial, rl, axis), true
}

// cylinderSamples returns the two cap centers followed by eight rim points
// on each cap.
func cylinderSamples(c *rigid.Body) []mgl64.Vec3 {
	axis := c.Axis()
	u := rigid.Perpendicular(axis)
	v := axis.Cross(u)
	half := 0.5 * c.Height
	out := make([]mgl64.Vec3, 0, 18)
	for _, s := range [2]float64{1, -1} {
		out = append(out, c.Position.Add(axis.Mul(s*half)))
	}
	for _, s := range [2]float64{1, -1} {
		center := c.Position.Add(axis.Mul(s * half))
		for k := 0; k < 8; k++ {
			a := float64(k) * math.Pi / 4
			dir := u.Mul(math.Cos(a)).Add(v.Mul(math.Sin(a)))
			out = append(out, center.Add(dir.Mul(c.Radius)))
		}
	}
	return out
}

func cylinderEnds(c *rigid.Body) (mgl64.Vec3, mgl64.Vec3) {
	half := c.Axis().Mul(0.5 * c.Height)
	return c.Position.Sub(half), c.Position.Add(half)
}

func radialDir(radial mgl64.Vec3, rl float64, axis mgl64.Vec3) mgl64.Vec3 {
	if rl < eps {
		return rigid.Perpendicular(axis)
	}
	return radial.Mul(1 / rl)
}

func signOf(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// withinExtents reports whether p projects inside a bounded plane.
func withinExtents(plane *rigid.Body, p mgl64.Vec3) bool {
	if plane.Extents[0] == 0 && plane.Extents[1] == 0 {
		return true
	}
	u, v := plane.PlaneBasis()
	rel := p.Sub(plane.Position)
	if plane.Extents[0] > 0 && math.Abs(rel.Dot(u)) > plane.Extents[0] {
		return false
	}
	if plane.Extents[1] > 0 && math.Abs(rel.Dot(v)) > plane.Extents[1] {
		return false
	}
	return true
}

// candidate tracks the deepest contact proposal seen so far.
type candidate struct {
	depth  float64
	normal mgl64.Vec3
	point  mgl64.Vec3
	ok     bool
}

func (c *candidate) offer(depth float64, normal, point mgl64.Vec3) {
	if depth <= 0 || (c.ok && depth <= c.depth) {
		return
	}
	c.depth, c.normal, c.point, c.ok = depth, normal, point, true
}

func (c *candidate) contact(a, b int) []rigid.Contact {
	if !c.ok {
		return nil
	}
	return []rigid.Contact{{A: a, B: b, Normal: c.normal, Depth: c.depth, Point: c.point, HasPoint: true}}
}
