package solver

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/rigid"
)

// SolveJoints runs p.Iterations sweeps over joints in insertion order.
// Motors act once per call, on the first sweep.
func SolveJoints(bodies []rigid.Body, joints []rigid.Joint, p *rigid.Params) {
	iters := max(p.Iterations, 1)
	for it := 0; it < iters; it++ {
		for k := range joints {
			SolveJoint(bodies, &joints[k], p, it == 0)
		}
	}
}

// pair carries the two bodies of one joint and their correction weights.
type pair struct {
	a, b   *rigid.Body
	wa, wb float64
	sum    float64
	// scale is the compliance factor sum/(sum + compliance/dt^2).
	scale float64
	rigid bool
}

// SolveJoint applies one correction pass of j. motor selects whether the
// joint's motor acts in this pass.
func SolveJoint(bodies []rigid.Body, j *rigid.Joint, p *rigid.Params, motor bool) {
	if !valid(bodies, j.BodyA, j.BodyB) {
		return
	}
	a, b := &bodies[j.BodyA], &bodies[j.BodyB]
	wa, wb := invMass(a), invMass(b)
	sum := wa + wb
	if sum <= 0 {
		return
	}
	alpha := j.Compliance / (p.Dt * p.Dt)
	s := pair{a: a, b: b, wa: wa, wb: wb, sum: sum, scale: sum / (sum + alpha), rigid: j.Compliance == 0}

	switch j.Kind {
	case rigid.Distance:
		solveDistance(&s, j)
	case rigid.Revolute:
		solveAnchors(&s, j)
		solveHinge(&s, j, p, motor)
	case rigid.Prismatic:
		solveOrientation(&s, j)
		solveSlider(&s, j, p, motor)
	case rigid.Ball:
		solveAnchors(&s, j)
	case rigid.Fixed:
		solveAnchors(&s, j)
		solveOrientation(&s, j)
	}
}

func (s *pair) anchors(j *rigid.Joint) (mgl64.Vec3, mgl64.Vec3) {
	return s.a.WorldPoint(j.AnchorA), s.b.WorldPoint(j.AnchorB)
}

// linear moves A by +delta and B by -delta, weighted by inverse mass, and
// for rigid joints removes the relative velocity along delta.
func (s *pair) linear(delta mgl64.Vec3) {
	l := delta.Len()
	if !(l > eps) || math.IsInf(l, 0) {
		return
	}
	s.a.Position = s.a.Position.Add(delta.Mul(s.scale * s.wa / s.sum))
	s.b.Position = s.b.Position.Sub(delta.Mul(s.scale * s.wb / s.sum))

	if s.rigid {
		dir := delta.Mul(1 / l)
		vn := s.b.Velocity.Sub(s.a.Velocity).Dot(dir)
		s.a.Velocity = s.a.Velocity.Add(dir.Mul(vn * s.wa / s.sum))
		s.b.Velocity = s.b.Velocity.Sub(dir.Mul(vn * s.wb / s.sum))
	}
}

// angular rotates B by +angle and A by -angle about the unit axis, weighted
// by inverse mass.
func (s *pair) angular(axis mgl64.Vec3, angle float64) {
	if math.Abs(angle) < eps || math.IsNaN(angle) {
		return
	}
	turn := angle * s.scale
	s.a.Orientation = mgl64.QuatRotate(-turn*s.wa/s.sum, axis).Mul(s.a.Orientation).Normalize()
	s.b.Orientation = mgl64.QuatRotate(turn*s.wb/s.sum, axis).Mul(s.b.Orientation).Normalize()
}

// dampSpin removes the relative angular velocity component rel, split by
// inverse mass.
func (s *pair) dampSpin(rel mgl64.Vec3) {
	s.a.AngularVelocity = s.a.AngularVelocity.Add(rel.Mul(s.wa / s.sum))
	s.b.AngularVelocity = s.b.AngularVelocity.Sub(rel.Mul(s.wb / s.sum))
}

func (s *pair) relativeSpin() mgl64.Vec3 {
	return s.b.AngularVelocity.Sub(s.a.AngularVelocity)
}

func solveDistance(s *pair, j *rigid.Joint) {
	pa, pb := s.anchors(j)
	d := pb.Sub(pa)
	l := d.Len()
	if l < eps {
		return
	}
	s.linear(d.Mul((l - j.RestLength) / l))
}

func solveAnchors(s *pair, j *rigid.Joint) {
	pa, pb := s.anchors(j)
	s.linear(pb.Sub(pa))
}

// solveOrientation drives qA^-1 qB toward the stored target rotation.
func solveOrientation(s *pair, j *rigid.Joint) {
	want := s.a.Orientation.Mul(j.Target)
	diff := want.Mul(s.b.Orientation.Conjugate())
	if diff.W < 0 {
		diff = diff.Scale(-1)
	}
	l := diff.V.Len()
	if l < eps {
		return
	}
	s.angular(diff.V.Mul(1/l), 2*math.Atan2(l, diff.W))
	if s.rigid {
		s.dampSpin(s.relativeSpin())
	}
}

func solveHinge(s *pair, j *rigid.Joint, p *rigid.Params, motor bool) {
	axisA := s.a.Orientation.Rotate(j.Axis)
	axisB := s.b.Orientation.Rotate(j.AxisB)

	// rotate so that B's axis maps onto A's
	cross := axisB.Cross(axisA)
	if sin := cross.Len(); sin > eps {
		s.angular(cross.Mul(1/sin), math.Atan2(sin, axisB.Dot(axisA)))
		axisA = s.a.Orientation.Rotate(j.Axis)
	}
	if s.rigid {
		rel := s.relativeSpin()
		s.dampSpin(rel.Sub(axisA.Mul(rel.Dot(axisA))))
	}

	if motor && j.Motor.Enabled {
		driveSpin(s, axisA, j.Motor, p.Dt)
	}

	if j.Limits.Enabled {
		refA := s.a.Orientation.Rotate(j.RefA)
		refB := s.b.Orientation.Rotate(j.RefB)
		angle := math.Atan2(refA.Cross(refB).Dot(axisA), refA.Dot(refB))
		limitAngle(s, axisA, angle, j.Limits)
	}
}

// HingeAngle returns the relative rotation of B about a revolute joint's
// axis, zero at creation.
func HingeAngle(bodies []rigid.Body, j *rigid.Joint) (float64, bool) {
	if !valid(bodies, j.BodyA, j.BodyB) || j.Kind != rigid.Revolute {
		return 0, false
	}
	a, b := &bodies[j.BodyA], &bodies[j.BodyB]
	axisA := a.Orientation.Rotate(j.Axis)
	refA := a.Orientation.Rotate(j.RefA)
	refB := b.Orientation.Rotate(j.RefB)
	return math.Atan2(refA.Cross(refB).Dot(axisA), refA.Dot(refB)), true
}

func driveSpin(s *pair, axis mgl64.Vec3, m rigid.Motor, dt float64) {
	dv := m.Speed - s.relativeSpin().Dot(axis)
	limit := m.MaxForce * dt * s.sum
	dv = math.Max(-limit, math.Min(limit, dv))
	s.a.AngularVelocity = s.a.AngularVelocity.Sub(axis.Mul(dv * s.wa / s.sum))
	s.b.AngularVelocity = s.b.AngularVelocity.Add(axis.Mul(dv * s.wb / s.sum))
}

func limitAngle(s *pair, axis mgl64.Vec3, angle float64, lim rigid.Limits) {
	var corr float64
	switch {
	case angle < lim.Lower:
		corr = lim.Lower - angle
	case angle > lim.Upper:
		corr = lim.Upper - angle
	default:
		return
	}
	s.angular(axis, corr)
	if spin := s.relativeSpin().Dot(axis); spin*corr < 0 {
		s.dampSpin(axis.Mul(spin))
	}
}

func solveSlider(s *pair, j *rigid.Joint, p *rigid.Params, motor bool) {
	axis := s.a.Orientation.Rotate(j.Axis)
	pa, pb := s.anchors(j)
	d := pb.Sub(pa)
	along := d.Dot(axis)
	s.linear(d.Sub(axis.Mul(along)))

	if motor && j.Motor.Enabled {
		dv := j.Motor.Speed - s.b.Velocity.Sub(s.a.Velocity).Dot(axis)
		limit := j.Motor.MaxForce * p.Dt * s.sum
		dv = math.Max(-limit, math.Min(limit, dv))
		s.a.Velocity = s.a.Velocity.Sub(axis.Mul(dv * s.wa / s.sum))
		s.b.Velocity = s.b.Velocity.Add(axis.Mul(dv * s.wb / s.sum))
	}

	if j.Limits.Enabled {
		pa, pb = s.anchors(j)
		along = pb.Sub(pa).Dot(axis)
		switch {
		case along < j.Limits.Lower:
			s.linear(axis.Mul(along - j.Limits.Lower))
		case along > j.Limits.Upper:
			s.linear(axis.Mul(along - j.Limits.Upper))
		}
	}
}
