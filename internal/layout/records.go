package layout

import (
	"github.com/san-kum/rigidsim/internal/rigid"
)

// PutBody writes b into dst[:BodySize].
func PutBody(dst []byte, b *rigid.Body) {
	putVec3(dst, 0, b.Position)
	putU32(dst, 12, uint32(b.Kind))
	putVec3(dst, 16, b.Velocity)
	putF32(dst, 28, b.InvMass)
	putQuat(dst, 32, b.Orientation)
	putVec3(dst, 48, b.AngularVelocity)
	putF32(dst, 60, b.Friction)
	putVec3(dst, 64, b.Force)
	putF32(dst, 76, b.Restitution)

	var s0, s1 [4]float64
	switch b.Kind {
	case rigid.Sphere:
		s0[0] = b.Radius
	case rigid.Box:
		s0[0], s0[1], s0[2] = b.HalfExtents[0], b.HalfExtents[1], b.HalfExtents[2]
	case rigid.Cylinder:
		s0[0], s0[1] = b.Radius, b.Height
	case rigid.Plane:
		s0[0], s0[1], s0[2], s0[3] = b.Normal[0], b.Normal[1], b.Normal[2], b.Offset
		s1[0], s1[1] = b.Extents[0], b.Extents[1]
	}
	for i := 0; i < 4; i++ {
		putF32(dst, 80+4*i, s0[i])
		putF32(dst, 96+4*i, s1[i])
	}
}

// GetBody reads a body record from src[:BodySize].
func GetBody(src []byte) rigid.Body {
	b := rigid.Body{
		Kind:            rigid.ShapeKind(getU32(src, 12)),
		Position:        getVec3(src, 0),
		Velocity:        getVec3(src, 16),
		InvMass:         getF32(src, 28),
		Orientation:     getQuat(src, 32),
		AngularVelocity: getVec3(src, 48),
		Friction:        getF32(src, 60),
		Force:           getVec3(src, 64),
		Restitution:     getF32(src, 76),
	}
	switch b.Kind {
	case rigid.Sphere:
		b.Radius = getF32(src, 80)
	case rigid.Box:
		b.HalfExtents = getVec3(src, 80)
	case rigid.Cylinder:
		b.Radius = getF32(src, 80)
		b.Height = getF32(src, 84)
	case rigid.Plane:
		b.Normal = getVec3(src, 80)
		b.Offset = getF32(src, 92)
		b.Extents = [2]float64{getF32(src, 96), getF32(src, 100)}
	}
	return b
}

func EncodeBodies(bodies []rigid.Body) []byte {
	out := make([]byte, len(bodies)*BodySize)
	for i := range bodies {
		PutBody(out[i*BodySize:], &bodies[i])
	}
	return out
}

func DecodeBodies(data []byte) ([]rigid.Body, error) {
	n, err := Count(data, BodySize)
	if err != nil {
		return nil, err
	}
	out := make([]rigid.Body, n)
	for i := range out {
		out[i] = GetBody(data[i*BodySize:])
	}
	return out, nil
}

// PutJoint writes j into dst[:JointSize].
func PutJoint(dst []byte, j *rigid.Joint) {
	var flags uint32
	if j.Limits.Enabled {
		flags |= jointLimits
	}
	if j.Motor.Enabled {
		flags |= jointMotor
	}
	putU32(dst, 0, uint32(j.Kind))
	putIndex(dst, 4, j.BodyA)
	putIndex(dst, 8, j.BodyB)
	putU32(dst, 12, flags)
	putVec3(dst, 16, j.AnchorA)
	putF32(dst, 28, j.Compliance)
	putVec3(dst, 32, j.AnchorB)
	putF32(dst, 44, j.RestLength)
	putVec3(dst, 48, j.Axis)
	putF32(dst, 60, j.Limits.Lower)
	putVec3(dst, 64, j.AxisB)
	putF32(dst, 76, j.Limits.Upper)
	putVec3(dst, 80, j.RefA)
	putF32(dst, 92, j.Motor.Speed)
	putVec3(dst, 96, j.RefB)
	putF32(dst, 108, j.Motor.MaxForce)
	putQuat(dst, 112, j.Target)
}

// GetJoint reads a joint record from src[:JointSize].
func GetJoint(src []byte) rigid.Joint {
	flags := getU32(src, 12)
	return rigid.Joint{
		Kind:       rigid.JointKind(getU32(src, 0)),
		BodyA:      getIndex(src, 4),
		BodyB:      getIndex(src, 8),
		AnchorA:    getVec3(src, 16),
		Compliance: getF32(src, 28),
		AnchorB:    getVec3(src, 32),
		RestLength: getF32(src, 44),
		Axis:       getVec3(src, 48),
		AxisB:      getVec3(src, 64),
		RefA:       getVec3(src, 80),
		RefB:       getVec3(src, 96),
		Limits: rigid.Limits{
			Enabled: flags&jointLimits != 0,
			Lower:   getF32(src, 60),
			Upper:   getF32(src, 76),
		},
		Motor: rigid.Motor{
			Enabled:  flags&jointMotor != 0,
			Speed:    getF32(src, 92),
			MaxForce: getF32(src, 108),
		},
		Target: getQuat(src, 112),
	}
}

func EncodeJoints(joints []rigid.Joint) []byte {
	out := make([]byte, len(joints)*JointSize)
	for i := range joints {
		PutJoint(out[i*JointSize:], &joints[i])
	}
	return out
}

func DecodeJoints(data []byte) ([]rigid.Joint, error) {
	n, err := Count(data, JointSize)
	if err != nil {
		return nil, err
	}
	out := make([]rigid.Joint, n)
	for i := range out {
		out[i] = GetJoint(data[i*JointSize:])
	}
	return out, nil
}

// PutContact writes c into dst[:ContactSize].
func PutContact(dst []byte, c *rigid.Contact) {
	var flags uint32
	if c.HasPoint {
		flags |= contactHasPoint
	}
	putVec3(dst, 0, c.Normal)
	putF32(dst, 12, c.Depth)
	putVec3(dst, 16, c.Point)
	putU32(dst, 28, flags)
	putIndex(dst, 32, c.A)
	putIndex(dst, 36, c.B)
	putU32(dst, 40, 0)
	putU32(dst, 44, 0)
}

// GetContact reads a contact record from src[:ContactSize].
func GetContact(src []byte) rigid.Contact {
	return rigid.Contact{
		Normal:   getVec3(src, 0),
		Depth:    getF32(src, 12),
		Point:    getVec3(src, 16),
		HasPoint: getU32(src, 28)&contactHasPoint != 0,
		A:        getIndex(src, 32),
		B:        getIndex(src, 36),
	}
}

// EncodeContacts writes contacts into a buffer of capacity records. Entries
// beyond capacity are dropped.
func EncodeContacts(contacts []rigid.Contact, capacity int) []byte {
	out := make([]byte, capacity*ContactSize)
	for i := range contacts {
		if i >= capacity {
			break
		}
		PutContact(out[i*ContactSize:], &contacts[i])
	}
	return out
}

// DecodeContacts reads the first count records of data.
func DecodeContacts(data []byte, count int) ([]rigid.Contact, error) {
	n, err := Count(data, ContactSize)
	if err != nil {
		return nil, err
	}
	if count > n {
		count = n
	}
	out := make([]rigid.Contact, count)
	for i := range out {
		out[i] = GetContact(data[i*ContactSize:])
	}
	return out, nil
}

func EncodeCount(n int) []byte {
	out := make([]byte, CountSize)
	putU32(out, 0, uint32(n))
	return out
}

func DecodeCount(data []byte) int {
	if len(data) < CountSize {
		return 0
	}
	return int(getU32(data, 0))
}

func EncodeParams(p *rigid.Params) []byte {
	out := make([]byte, ParamsSize)
	var flags uint32
	if p.FloorClamp {
		flags |= paramsFloorClamp
	}
	if p.Renormalize {
		flags |= paramsRenormalize
	}
	putVec3(out, 0, p.Gravity)
	putF32(out, 12, p.Dt)
	putF32(out, 16, p.FloorHeight)
	putF32(out, 20, p.RestitutionThreshold)
	putU32(out, 24, uint32(p.ContactIterations))
	putU32(out, 28, uint32(p.Iterations))
	putU32(out, 32, flags)
	putU32(out, 36, uint32(p.BroadPhase))
	putF32(out, 40, p.CellSize)
	return out
}

// DecodeParams reads a params record. ContactCapacity is not part of the
// record; kernels size contact output from the requested output shape.
func DecodeParams(data []byte) (rigid.Params, error) {
	if len(data) != ParamsSize {
		return rigid.Params{}, ErrRecordSize
	}
	flags := getU32(data, 32)
	return rigid.Params{
		Gravity:              getVec3(data, 0),
		Dt:                   getF32(data, 12),
		FloorHeight:          getF32(data, 16),
		RestitutionThreshold: getF32(data, 20),
		ContactIterations:    int(getU32(data, 24)),
		Iterations:           int(getU32(data, 28)),
		FloorClamp:           flags&paramsFloorClamp != 0,
		Renormalize:          flags&paramsRenormalize != 0,
		BroadPhase:           rigid.BroadPhase(getU32(data, 36)),
		CellSize:             getF32(data, 40),
	}, nil
}
