package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/layout"
	"github.com/san-kum/rigidsim/internal/rigid"
	"github.com/zeebo/xxh3"
)

// BodyState is the read-only view of one body: its transform, velocities
// and shape parameters.
type BodyState struct {
	Index           int
	Kind            rigid.ShapeKind
	Static          bool
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3

	Radius      float64
	HalfExtents mgl64.Vec3
	Height      float64
	Normal      mgl64.Vec3
	Offset      float64
}

type Snapshot struct {
	Step     int
	Time     float64
	Bodies   []BodyState
	Contacts int
}

func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Step:     w.steps,
		Time:     w.time,
		Bodies:   make([]BodyState, len(w.bodies)),
		Contacts: len(w.contacts),
	}
	for i := range w.bodies {
		b := &w.bodies[i]
		s.Bodies[i] = BodyState{
			Index:           i,
			Kind:            b.Kind,
			Static:          b.IsStatic(),
			Position:        b.Position,
			Orientation:     b.Orientation,
			Velocity:        b.Velocity,
			AngularVelocity: b.AngularVelocity,
			Radius:          b.Radius,
			HalfExtents:     b.HalfExtents,
			Height:          b.Height,
			Normal:          b.Normal,
			Offset:          b.Offset,
		}
	}
	return s
}

// Digest hashes the canonical encoding of every body. Two worlds built and
// stepped the same way have the same digest.
func (w *World) Digest() uint64 {
	return xxh3.Hash(layout.EncodeBodies(w.bodies))
}
