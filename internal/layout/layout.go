// Package layout defines the canonical byte layout of every record passed
// through the kernel dispatch boundary.
//
// All fields are little-endian float32 or uint32. A 3-component vector is
// always followed by a scalar so that it occupies one 16-byte slot. Both
// compute backends and the world encode and decode through this package
// only, so a layout change is a change of [Version].
//
// Body (112 bytes):
//
//	  0 position.xyz   12 kind
//	 16 velocity.xyz   28 invMass
//	 32 orientation x, y, z, w
//	 48 angular.xyz    60 friction
//	 64 force.xyz      76 restitution
//	 80 shape0.xyzw    96 shape1.xyzw
//
// Joint (128 bytes):
//
//	  0 kind, bodyA, bodyB, flags
//	 16 anchorA.xyz    28 compliance
//	 32 anchorB.xyz    44 restLength
//	 48 axisA.xyz      60 lower
//	 64 axisB.xyz      76 upper
//	 80 refA.xyz       92 motorSpeed
//	 96 refB.xyz      108 motorMaxForce
//	112 target x, y, z, w
//
// Contact (48 bytes):
//
//	  0 normal.xyz     12 depth
//	 16 point.xyz      28 flags
//	 32 bodyA, bodyB, pad, pad
//
// Params (48 bytes):
//
//	  0 gravity.xyz    12 dt
//	 16 floorHeight, restitutionThreshold, contactIterations, iterations
//	 32 flags, broadPhase, cellSize, pad
package layout

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const Version = 1

const (
	BodySize    = 112
	JointSize   = 128
	ContactSize = 48
	ParamsSize  = 48
	CountSize   = 4
)

// NoBody encodes a negative body index.
const NoBody = math.MaxUint32

const (
	jointLimits uint32 = 1 << iota
	jointMotor
)

const (
	contactHasPoint uint32 = 1 << iota
)

const (
	paramsFloorClamp uint32 = 1 << iota
	paramsRenormalize
)

var ErrRecordSize = errors.New("layout: buffer length is not a whole number of records")

var le = binary.LittleEndian

func putF32(b []byte, off int, v float64) {
	le.PutUint32(b[off:], math.Float32bits(float32(v)))
}

func getF32(b []byte, off int) float64 {
	return float64(math.Float32frombits(le.Uint32(b[off:])))
}

func putU32(b []byte, off int, v uint32) {
	le.PutUint32(b[off:], v)
}

func getU32(b []byte, off int) uint32 {
	return le.Uint32(b[off:])
}

func putVec3(b []byte, off int, v mgl64.Vec3) {
	putF32(b, off, v[0])
	putF32(b, off+4, v[1])
	putF32(b, off+8, v[2])
}

func getVec3(b []byte, off int) mgl64.Vec3 {
	return mgl64.Vec3{getF32(b, off), getF32(b, off+4), getF32(b, off+8)}
}

func putQuat(b []byte, off int, q mgl64.Quat) {
	putVec3(b, off, q.V)
	putF32(b, off+12, q.W)
}

func getQuat(b []byte, off int) mgl64.Quat {
	return mgl64.Quat{V: getVec3(b, off), W: getF32(b, off+12)}
}

func putIndex(b []byte, off int, i int) {
	if i < 0 || uint64(i) >= NoBody {
		putU32(b, off, NoBody)
		return
	}
	putU32(b, off, uint32(i))
}

func getIndex(b []byte, off int) int {
	v := getU32(b, off)
	if v == NoBody {
		return -1
	}
	return int(v)
}

// Count returns the number of records of size recSize in data.
func Count(data []byte, recSize int) (int, error) {
	if len(data)%recSize != 0 {
		return 0, fmt.Errorf("%w: %d bytes, record size %d", ErrRecordSize, len(data), recSize)
	}
	return len(data) / recSize, nil
}
