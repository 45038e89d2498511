package integrators

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/rigid"
)

func sphereAt(pos mgl64.Vec3) rigid.Body {
	b, err := rigid.NewSphere(rigid.SphereSpec{BodySpec: rigid.BodySpec{Position: pos, Mass: 2}, Radius: 0.5})
	if err != nil {
		panic(err)
	}
	return b
}

func TestFreeFall(t *testing.T) {
	integ := NewEuler()
	p := rigid.DefaultParams()
	p.Dt = 1e-4
	steps := 1000
	g := -p.Gravity.Y()

	b := sphereAt(mgl64.Vec3{0, 0, 0})
	for i := 0; i < steps; i++ {
		integ.Step(&b, &p)
	}

	tEnd := float64(steps) * p.Dt
	if math.Abs(b.Velocity.Y()-(-g*tEnd)) > 1e-4 {
		t.Errorf("velocity = %.6f, want %.6f", b.Velocity.Y(), -g*tEnd)
	}
	if math.Abs(b.Position.Y()-(-0.5*g*tEnd*tEnd)) > 1e-4 {
		t.Errorf("position = %.6f, want %.6f", b.Position.Y(), -0.5*g*tEnd*tEnd)
	}
}

func TestExternalForce(t *testing.T) {
	integ := NewEuler()
	p := rigid.DefaultParams()
	p.Gravity = mgl64.Vec3{}

	b := sphereAt(mgl64.Vec3{})
	b.Force = mgl64.Vec3{4, 0, 0}
	integ.Step(&b, &p)

	// a = F/m = 2
	if math.Abs(b.Velocity.X()-2*p.Dt) > 1e-12 {
		t.Errorf("velocity.x = %v, want %v", b.Velocity.X(), 2*p.Dt)
	}
}

func TestFloorClamp(t *testing.T) {
	integ := NewEuler()
	p := rigid.DefaultParams()
	p.FloorClamp = true
	p.FloorHeight = 0

	b := sphereAt(mgl64.Vec3{0, 0.001, 0})
	b.Velocity = mgl64.Vec3{1, -5, 0}
	integ.Step(&b, &p)

	if b.Position.Y() != 0 {
		t.Errorf("position.y = %v, want 0", b.Position.Y())
	}
	if b.Velocity.Y() != 0 {
		t.Errorf("velocity.y = %v, want 0", b.Velocity.Y())
	}
	if b.Velocity.X() != 1 {
		t.Errorf("horizontal velocity must be preserved, got %v", b.Velocity.X())
	}
}

func TestFloorClampSpheresOnly(t *testing.T) {
	integ := NewEuler()
	p := rigid.DefaultParams()
	p.FloorClamp = true

	box, _ := rigid.NewBox(rigid.BoxSpec{
		BodySpec:    rigid.BodySpec{Position: mgl64.Vec3{0, 0.001, 0}, Velocity: mgl64.Vec3{0, -5, 0}, Mass: 1},
		HalfExtents: mgl64.Vec3{1, 1, 1},
	})
	integ.Step(&box, &p)
	if box.Position.Y() >= 0 {
		t.Errorf("box should not be clamped, y = %v", box.Position.Y())
	}
}

func TestStaticBodyUntouched(t *testing.T) {
	integ := NewEuler()
	p := rigid.DefaultParams()

	b, _ := rigid.NewSphere(rigid.SphereSpec{BodySpec: rigid.BodySpec{Position: mgl64.Vec3{0, 3, 0}}, Radius: 1})
	before := b
	integ.Step(&b, &p)
	if b != before {
		t.Errorf("static body changed: %+v", b)
	}
}

func TestOrientationRenormalized(t *testing.T) {
	integ := NewEuler()
	p := rigid.DefaultParams()
	p.Gravity = mgl64.Vec3{}

	b := sphereAt(mgl64.Vec3{})
	b.AngularVelocity = mgl64.Vec3{0, 0, math.Pi}
	for i := 0; i < 100; i++ {
		integ.Step(&b, &p)
	}
	if math.Abs(b.Orientation.Len()-1) > 1e-9 {
		t.Errorf("|q| = %v, want 1", b.Orientation.Len())
	}

	// one second at pi rad/s is half a turn about z
	x := b.Orientation.Rotate(mgl64.Vec3{1, 0, 0})
	if !x.ApproxEqualThreshold(mgl64.Vec3{-1, 0, 0}, 0.05) {
		t.Errorf("rotated x axis = %v, want about (-1, 0, 0)", x)
	}
}

func TestOrientationDriftWithoutRenormalize(t *testing.T) {
	integ := NewEuler()
	p := rigid.DefaultParams()
	p.Gravity = mgl64.Vec3{}
	p.Renormalize = false

	b := sphereAt(mgl64.Vec3{})
	b.AngularVelocity = mgl64.Vec3{0, 0, math.Pi}
	for i := 0; i < 100; i++ {
		integ.Step(&b, &p)
	}
	if b.Orientation.Len() <= 1 {
		t.Errorf("first-order update should grow |q|, got %v", b.Orientation.Len())
	}
}
