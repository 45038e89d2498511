package solver

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/rigid"
)

const eps = 1e-9

// CombineRestitution averages the restitution of two materials.
func CombineRestitution(a, b float64) float64 {
	return 0.5 * (a + b)
}

// CombineFriction is the geometric mean of two friction coefficients.
func CombineFriction(a, b float64) float64 {
	return math.Sqrt(a * b)
}

func invMass(b *rigid.Body) float64 {
	if b.IsStatic() {
		return 0
	}
	return b.InvMass
}

func valid(bodies []rigid.Body, a, b int) bool {
	return a != b && a >= 0 && b >= 0 && a < len(bodies) && b < len(bodies)
}

// ResolveContacts runs p.ContactIterations passes over contacts. Each pass
// re-measures a contact's depth against how far its bodies have already
// separated along the normal, and removes an equal share of what remains,
// so the last pass leaves no penetration.
func ResolveContacts(bodies []rigid.Body, contacts []rigid.Contact, p *rigid.Params) {
	if len(contacts) == 0 {
		return
	}
	iters := max(p.ContactIterations, 1)
	start := make([]mgl64.Vec3, len(bodies))
	for i := range bodies {
		start[i] = bodies[i].Position
	}
	for it := 0; it < iters; it++ {
		share := 1 / float64(iters-it)
		for k := range contacts {
			resolveContact(bodies, start, &contacts[k], p, share)
		}
	}
}

func resolveContact(bodies []rigid.Body, start []mgl64.Vec3, c *rigid.Contact, p *rigid.Params, share float64) {
	if !valid(bodies, c.A, c.B) {
		return
	}
	a, b := &bodies[c.A], &bodies[c.B]
	wa, wb := invMass(a), invMass(b)
	sum := wa + wb
	if sum <= 0 {
		return
	}
	l := c.Normal.Len()
	if !(l > eps) || math.IsInf(l, 0) {
		return
	}
	n := c.Normal.Mul(1 / l)

	if c.Depth > 0 && !math.IsInf(c.Depth, 0) {
		moved := b.Position.Sub(start[c.B]).Sub(a.Position.Sub(start[c.A])).Dot(n)
		if remaining := c.Depth - moved; remaining > 0 {
			corr := remaining * share
			a.Position = a.Position.Sub(n.Mul(corr * wa / sum))
			b.Position = b.Position.Add(n.Mul(corr * wb / sum))
		}
	}

	rel := b.Velocity.Sub(a.Velocity)
	vn := rel.Dot(n)
	if vn >= 0 {
		return
	}

	e := 0.0
	if -vn > p.RestitutionThreshold {
		e = CombineRestitution(a.Restitution, b.Restitution)
	}
	jn := -(1 + e) * vn / sum
	a.Velocity = a.Velocity.Sub(n.Mul(jn * wa))
	b.Velocity = b.Velocity.Add(n.Mul(jn * wb))

	rel = b.Velocity.Sub(a.Velocity)
	vt := rel.Sub(n.Mul(rel.Dot(n)))
	speed := vt.Len()
	if speed < eps {
		return
	}
	t := vt.Mul(1 / speed)
	jt := math.Min(speed/sum, CombineFriction(a.Friction, b.Friction)*jn)
	a.Velocity = a.Velocity.Add(t.Mul(jt * wa))
	b.Velocity = b.Velocity.Sub(t.Mul(jt * wb))
}
