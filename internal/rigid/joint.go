package rigid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// JointKind tags the constraint a Joint enforces.
type JointKind uint8

const (
	Distance JointKind = iota
	Revolute
	Prismatic
	Ball
	Fixed
)

func (k JointKind) String() string {
	switch k {
	case Distance:
		return "distance"
	case Revolute:
		return "revolute"
	case Prismatic:
		return "prismatic"
	case Ball:
		return "ball"
	case Fixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// ParseJointKind maps a lower-case joint name to its kind.
func ParseJointKind(name string) (JointKind, bool) {
	switch name {
	case "distance":
		return Distance, true
	case "revolute", "hinge":
		return Revolute, true
	case "prismatic", "slider":
		return Prismatic, true
	case "ball":
		return Ball, true
	case "fixed":
		return Fixed, true
	}
	return 0, false
}

// Limits bounds the relative angle (revolute, radians) or the relative
// translation along the axis (prismatic).
type Limits struct {
	Enabled bool
	Lower   float64
	Upper   float64
}

// Motor drives the relative velocity about or along the joint axis toward
// Speed. MaxForce bounds the change applied per step.
type Motor struct {
	Enabled  bool
	Speed    float64
	MaxForce float64
}

// Joint constrains two bodies. Anchors are in each body's local space.
// Axis is local to body A; AxisB, RefA, RefB and Target are captured from
// the bodies' poses when the joint is created.
type Joint struct {
	Kind         JointKind
	BodyA, BodyB int

	AnchorA    mgl64.Vec3
	AnchorB    mgl64.Vec3
	Compliance float64

	RestLength float64

	Axis   mgl64.Vec3
	AxisB  mgl64.Vec3
	RefA   mgl64.Vec3
	RefB   mgl64.Vec3
	Limits Limits
	Motor  Motor

	Target mgl64.Quat
}

// JointSpec holds the fields every joint kind accepts.
type JointSpec struct {
	AnchorA    mgl64.Vec3
	AnchorB    mgl64.Vec3
	Compliance float64
}

type DistanceSpec struct {
	JointSpec
	RestLength float64
}

// AxisSpec configures revolute and prismatic joints. Axis is expressed in
// body A's local space.
type AxisSpec struct {
	JointSpec
	Axis   mgl64.Vec3
	Limits Limits
	Motor  Motor
}

func validateCommon(op string, a, b int, spec JointSpec) error {
	if a == b {
		return configErr(op, "bodies", ErrSameBody)
	}
	if spec.Compliance < 0 || math.IsNaN(spec.Compliance) {
		return configErr(op, "compliance", ErrInvalidParameter)
	}
	return nil
}

func NewDistanceJoint(a, b int, spec DistanceSpec) (Joint, error) {
	if err := validateCommon("add_distance_joint", a, b, spec.JointSpec); err != nil {
		return Joint{}, err
	}
	if spec.RestLength < 0 || math.IsNaN(spec.RestLength) {
		return Joint{}, configErr("add_distance_joint", "rest_length", ErrInvalidParameter)
	}
	return Joint{
		Kind:       Distance,
		BodyA:      a,
		BodyB:      b,
		AnchorA:    spec.AnchorA,
		AnchorB:    spec.AnchorB,
		Compliance: spec.Compliance,
		RestLength: spec.RestLength,
		Target:     mgl64.QuatIdent(),
	}, nil
}

// NewAxisJoint builds a revolute or prismatic joint. qa and qb are the
// current orientations of the two bodies; the relative pose at creation
// becomes the joint's zero angle and locked rotation.
func NewAxisJoint(kind JointKind, a, b int, spec AxisSpec, qa, qb mgl64.Quat) (Joint, error) {
	op := "add_revolute_joint"
	if kind == Prismatic {
		op = "add_prismatic_joint"
	}
	if err := validateCommon(op, a, b, spec.JointSpec); err != nil {
		return Joint{}, err
	}
	n := spec.Axis.Len()
	if n < 1e-9 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Joint{}, configErr(op, "axis", ErrZeroAxis)
	}
	if spec.Limits.Enabled && spec.Limits.Lower > spec.Limits.Upper {
		return Joint{}, configErr(op, "limits", ErrInvalidParameter)
	}
	if spec.Motor.Enabled && spec.Motor.MaxForce < 0 {
		return Joint{}, configErr(op, "motor_max_force", ErrInvalidParameter)
	}
	axis := spec.Axis.Mul(1 / n)
	world := qa.Rotate(axis)
	refA := Perpendicular(axis)
	return Joint{
		Kind:       kind,
		BodyA:      a,
		BodyB:      b,
		AnchorA:    spec.AnchorA,
		AnchorB:    spec.AnchorB,
		Compliance: spec.Compliance,
		Axis:       axis,
		AxisB:      qb.Conjugate().Rotate(world),
		RefA:       refA,
		RefB:       qb.Conjugate().Rotate(qa.Rotate(refA)),
		Limits:     spec.Limits,
		Motor:      spec.Motor,
		Target:     qa.Conjugate().Mul(qb).Normalize(),
	}, nil
}

// NewBallJoint builds a joint that only coincides anchors.
func NewBallJoint(a, b int, spec JointSpec) (Joint, error) {
	if err := validateCommon("add_ball_joint", a, b, spec); err != nil {
		return Joint{}, err
	}
	return Joint{
		Kind:       Ball,
		BodyA:      a,
		BodyB:      b,
		AnchorA:    spec.AnchorA,
		AnchorB:    spec.AnchorB,
		Compliance: spec.Compliance,
		Target:     mgl64.QuatIdent(),
	}, nil
}

// NewFixedJoint builds a joint that also preserves the bodies' relative
// orientation at creation.
func NewFixedJoint(a, b int, spec JointSpec, qa, qb mgl64.Quat) (Joint, error) {
	if err := validateCommon("add_fixed_joint", a, b, spec); err != nil {
		return Joint{}, err
	}
	return Joint{
		Kind:       Fixed,
		BodyA:      a,
		BodyB:      b,
		AnchorA:    spec.AnchorA,
		AnchorB:    spec.AnchorB,
		Compliance: spec.Compliance,
		Target:     qa.Conjugate().Mul(qb).Normalize(),
	}, nil
}

// Perpendicular returns a unit vector orthogonal to the unit vector v.
func Perpendicular(v mgl64.Vec3) mgl64.Vec3 {
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(v.X()) > 0.9 {
		ref = mgl64.Vec3{0, 1, 0}
	}
	return v.Cross(ref).Normalize()
}
