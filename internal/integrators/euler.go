package integrators

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/rigid"
)

// Euler is the semi-implicit Euler integrator: velocity is updated first
// and the new velocity moves the body.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "semi-implicit-euler" }

// Step advances one body by p.Dt. Static bodies are left untouched.
func (e *Euler) Step(b *rigid.Body, p *rigid.Params) {
	if b.IsStatic() {
		return
	}
	dt := p.Dt

	accel := p.Gravity.Add(b.Force.Mul(b.InvMass))
	b.Velocity = b.Velocity.Add(accel.Mul(dt))
	b.Position = b.Position.Add(b.Velocity.Mul(dt))

	// first-order quaternion derivative: q' = 0.5 * (0, w) * q
	omega := mgl64.Quat{W: 0, V: b.AngularVelocity}
	b.Orientation = b.Orientation.Add(omega.Mul(b.Orientation).Scale(0.5 * dt))
	if p.Renormalize {
		b.Orientation = b.Orientation.Normalize()
	}

	if p.FloorClamp && b.Kind == rigid.Sphere && b.Position[1] < p.FloorHeight {
		b.Position[1] = p.FloorHeight
		b.Velocity[1] = 0
	}
}

// StepAll advances every body in order.
func (e *Euler) StepAll(bodies []rigid.Body, p *rigid.Params) {
	for i := range bodies {
		e.Step(&bodies[i], p)
	}
}
