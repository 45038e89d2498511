package rigid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeKind tags the shape a Body carries. The declaration order is the
// canonical order used when dispatching shape pairs.
type ShapeKind uint8

const (
	Sphere ShapeKind = iota
	Box
	Cylinder
	Plane

	NumShapeKinds = 4
)

func (k ShapeKind) String() string {
	switch k {
	case Sphere:
		return "sphere"
	case Box:
		return "box"
	case Cylinder:
		return "cylinder"
	case Plane:
		return "plane"
	default:
		return "unknown"
	}
}

// ParseShapeKind maps a lower-case shape name to its kind.
func ParseShapeKind(name string) (ShapeKind, bool) {
	switch name {
	case "sphere":
		return Sphere, true
	case "box":
		return Box, true
	case "cylinder":
		return Cylinder, true
	case "plane":
		return Plane, true
	}
	return 0, false
}

// Body is a rigid body. Which shape fields are meaningful depends on Kind:
// Radius for spheres and cylinders, HalfExtents for boxes, Height for
// cylinders (full height along local +Y), Normal, Offset and Extents for
// planes. A plane is the set of points p with Normal·p = Offset.
type Body struct {
	Kind ShapeKind

	Position        mgl64.Vec3
	Velocity        mgl64.Vec3
	Orientation     mgl64.Quat
	AngularVelocity mgl64.Vec3
	Force           mgl64.Vec3

	InvMass     float64
	Friction    float64
	Restitution float64

	Radius      float64
	HalfExtents mgl64.Vec3
	Height      float64
	Normal      mgl64.Vec3
	Offset      float64
	Extents     [2]float64
}

// BodySpec holds the fields shared by every dynamic shape. A zero Mass (or
// +Inf) makes the body static; a zero Orientation means identity.
type BodySpec struct {
	Position        mgl64.Vec3
	Velocity        mgl64.Vec3
	Orientation     mgl64.Quat
	AngularVelocity mgl64.Vec3
	Mass            float64
	Friction        float64
	Restitution     float64
}

type SphereSpec struct {
	BodySpec
	Radius float64
}

type BoxSpec struct {
	BodySpec
	HalfExtents mgl64.Vec3
}

type CylinderSpec struct {
	BodySpec
	Radius float64
	Height float64
}

// PlaneSpec describes a static plane. Extents are half sizes along the
// plane's tangent axes; zero means unbounded in that direction.
type PlaneSpec struct {
	Normal      mgl64.Vec3
	Offset      float64
	Extents     [2]float64
	Friction    float64
	Restitution float64
}

func NewSphere(spec SphereSpec) (Body, error) {
	b, err := newBody(Sphere, spec.BodySpec, "add_sphere")
	if err != nil {
		return Body{}, err
	}
	if !(spec.Radius > 0) || math.IsInf(spec.Radius, 0) {
		return Body{}, configErr("add_sphere", "radius", ErrInvalidShape)
	}
	b.Radius = spec.Radius
	return b, nil
}

func NewBox(spec BoxSpec) (Body, error) {
	b, err := newBody(Box, spec.BodySpec, "add_box")
	if err != nil {
		return Body{}, err
	}
	for i := 0; i < 3; i++ {
		if !(spec.HalfExtents[i] > 0) || math.IsInf(spec.HalfExtents[i], 0) {
			return Body{}, configErr("add_box", "half_extents", ErrInvalidShape)
		}
	}
	b.HalfExtents = spec.HalfExtents
	return b, nil
}

func NewCylinder(spec CylinderSpec) (Body, error) {
	b, err := newBody(Cylinder, spec.BodySpec, "add_cylinder")
	if err != nil {
		return Body{}, err
	}
	if !(spec.Radius > 0) || math.IsInf(spec.Radius, 0) {
		return Body{}, configErr("add_cylinder", "radius", ErrInvalidShape)
	}
	if !(spec.Height > 0) || math.IsInf(spec.Height, 0) {
		return Body{}, configErr("add_cylinder", "height", ErrInvalidShape)
	}
	b.Radius = spec.Radius
	b.Height = spec.Height
	return b, nil
}

func NewPlane(spec PlaneSpec) (Body, error) {
	n := spec.Normal.Len()
	if n < 1e-9 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Body{}, configErr("add_plane", "normal", ErrZeroAxis)
	}
	if spec.Extents[0] < 0 || spec.Extents[1] < 0 {
		return Body{}, configErr("add_plane", "extents", ErrInvalidShape)
	}
	if spec.Friction < 0 || spec.Restitution < 0 {
		return Body{}, configErr("add_plane", "material", ErrInvalidParameter)
	}
	normal := spec.Normal.Mul(1 / n)
	return Body{
		Kind:        Plane,
		Position:    normal.Mul(spec.Offset),
		Orientation: mgl64.QuatBetweenVectors(mgl64.Vec3{0, 1, 0}, normal),
		Friction:    spec.Friction,
		Restitution: spec.Restitution,
		Normal:      normal,
		Offset:      spec.Offset,
		Extents:     spec.Extents,
	}, nil
}

func newBody(kind ShapeKind, spec BodySpec, op string) (Body, error) {
	if spec.Mass < 0 || math.IsNaN(spec.Mass) {
		return Body{}, configErr(op, "mass", ErrNegativeMass)
	}
	if spec.Friction < 0 || spec.Restitution < 0 {
		return Body{}, configErr(op, "material", ErrInvalidParameter)
	}
	invMass := 0.0
	if spec.Mass > 0 && !math.IsInf(spec.Mass, 1) {
		invMass = 1 / spec.Mass
	}
	q := spec.Orientation
	if q.W == 0 && q.V == (mgl64.Vec3{}) {
		q = mgl64.QuatIdent()
	} else {
		q = q.Normalize()
	}
	return Body{
		Kind:            kind,
		Position:        spec.Position,
		Velocity:        spec.Velocity,
		Orientation:     q,
		AngularVelocity: spec.AngularVelocity,
		InvMass:         invMass,
		Friction:        spec.Friction,
		Restitution:     spec.Restitution,
	}, nil
}

// Mass returns the body's mass, +Inf for static bodies.
func (b *Body) Mass() float64 {
	if b.InvMass == 0 {
		return math.Inf(1)
	}
	return 1 / b.InvMass
}

func (b *Body) IsStatic() bool {
	return b.Kind == Plane || b.InvMass == 0
}

// WorldPoint maps a point in body space to world space.
func (b *Body) WorldPoint(local mgl64.Vec3) mgl64.Vec3 {
	return b.Position.Add(b.Orientation.Rotate(local))
}

// LocalPoint maps a world point into body space.
func (b *Body) LocalPoint(world mgl64.Vec3) mgl64.Vec3 {
	return b.Orientation.Conjugate().Rotate(world.Sub(b.Position))
}

// Axis returns the body's local +Y axis in world space; for cylinders this
// is the symmetry axis.
func (b *Body) Axis() mgl64.Vec3 {
	return b.Orientation.Rotate(mgl64.Vec3{0, 1, 0})
}

// PlaneBasis returns two unit tangents spanning a plane body. For the
// ground plane (normal +Y) they are +X and +Z.
func (b *Body) PlaneBasis() (u, v mgl64.Vec3) {
	ref := mgl64.Vec3{0, 0, 1}
	if math.Abs(b.Normal.Z()) >= 0.9 {
		ref = mgl64.Vec3{1, 0, 0}
	}
	u = b.Normal.Cross(ref).Normalize()
	v = u.Cross(b.Normal)
	return u, v
}

// Bounds returns a world-space axis-aligned box enclosing the body. Planes
// are reported as unbounded.
func (b *Body) Bounds() (lo, hi mgl64.Vec3, bounded bool) {
	var half mgl64.Vec3
	switch b.Kind {
	case Sphere:
		half = mgl64.Vec3{b.Radius, b.Radius, b.Radius}
	case Box:
		m := b.Orientation.Mat4().Mat3()
		for i := 0; i < 3; i++ {
			half[i] = math.Abs(m.At(i, 0))*b.HalfExtents[0] +
				math.Abs(m.At(i, 1))*b.HalfExtents[1] +
				math.Abs(m.At(i, 2))*b.HalfExtents[2]
		}
	case Cylinder:
		r := math.Sqrt(b.Radius*b.Radius + 0.25*b.Height*b.Height)
		half = mgl64.Vec3{r, r, r}
	case Plane:
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	return b.Position.Sub(half), b.Position.Add(half), true
}
