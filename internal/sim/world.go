package sim

import (
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/compute"
	"github.com/san-kum/rigidsim/internal/integrators"
	"github.com/san-kum/rigidsim/internal/rigid"
	"github.com/sirupsen/logrus"
)

type World struct {
	bodies   []rigid.Body
	joints   []rigid.Joint
	contacts []rigid.Contact
	params   rigid.Params

	backend compute.Backend
	mode    Mode
	log     logrus.FieldLogger

	euler *integrators.Euler
	buf   *rigid.ContactBuffer

	time  float64
	steps int

	metrics   []Metric
	observers []Observer
}

type Option func(*World)

func WithLogger(l logrus.FieldLogger) Option {
	return func(w *World) { w.log = l }
}

func WithMode(m Mode) Option {
	return func(w *World) { w.mode = m }
}

func WithBackend(b compute.Backend) Option {
	return func(w *World) { w.backend = b }
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// New creates an empty world. The device backend is used unless
// WithBackend supplies another one.
func New(p rigid.Params, opts ...Option) (*World, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		params: p,
		mode:   ModeDevice,
		euler:  integrators.NewEuler(),
		buf:    rigid.NewContactBuffer(p.ContactCapacity),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = discardLogger()
	}
	if w.backend == nil {
		w.backend = compute.NewDevice()
	}
	return w, nil
}

func (w *World) addBody(b rigid.Body, err error) (int, error) {
	if err != nil {
		return -1, err
	}
	w.bodies = append(w.bodies, b)
	idx := len(w.bodies) - 1
	w.log.WithFields(logrus.Fields{"body": idx, "kind": b.Kind}).Debug("body added")
	return idx, nil
}

func (w *World) AddSphere(spec rigid.SphereSpec) (int, error) {
	return w.addBody(rigid.NewSphere(spec))
}

func (w *World) AddBox(spec rigid.BoxSpec) (int, error) {
	return w.addBody(rigid.NewBox(spec))
}

func (w *World) AddCylinder(spec rigid.CylinderSpec) (int, error) {
	return w.addBody(rigid.NewCylinder(spec))
}

func (w *World) AddPlane(spec rigid.PlaneSpec) (int, error) {
	return w.addBody(rigid.NewPlane(spec))
}

// orientation returns body i's orientation, or identity for an index that
// does not exist yet.
func (w *World) orientation(i int) mgl64.Quat {
	if i < 0 || i >= len(w.bodies) {
		return mgl64.QuatIdent()
	}
	return w.bodies[i].Orientation
}

// addJoint stores j. A joint naming a missing body is kept so indices stay
// stable, and is skipped by the solver.
func (w *World) addJoint(j rigid.Joint, err error) (int, error) {
	if err != nil {
		return -1, err
	}
	w.joints = append(w.joints, j)
	idx := len(w.joints) - 1
	fields := logrus.Fields{"joint": idx, "kind": j.Kind, "a": j.BodyA, "b": j.BodyB}
	if !w.hasBody(j.BodyA) || !w.hasBody(j.BodyB) {
		w.log.WithFields(fields).Warn("joint references a missing body and will be skipped")
	} else {
		w.log.WithFields(fields).Debug("joint added")
	}
	return idx, nil
}

func (w *World) hasBody(i int) bool {
	return i >= 0 && i < len(w.bodies)
}

func (w *World) AddDistanceJoint(a, b int, spec rigid.DistanceSpec) (int, error) {
	return w.addJoint(rigid.NewDistanceJoint(a, b, spec))
}

func (w *World) AddRevoluteJoint(a, b int, spec rigid.AxisSpec) (int, error) {
	return w.addJoint(rigid.NewAxisJoint(rigid.Revolute, a, b, spec, w.orientation(a), w.orientation(b)))
}

func (w *World) AddPrismaticJoint(a, b int, spec rigid.AxisSpec) (int, error) {
	return w.addJoint(rigid.NewAxisJoint(rigid.Prismatic, a, b, spec, w.orientation(a), w.orientation(b)))
}

func (w *World) AddBallJoint(a, b int, spec rigid.JointSpec) (int, error) {
	return w.addJoint(rigid.NewBallJoint(a, b, spec))
}

func (w *World) AddFixedJoint(a, b int, spec rigid.JointSpec) (int, error) {
	return w.addJoint(rigid.NewFixedJoint(a, b, spec, w.orientation(a), w.orientation(b)))
}

func outOfRange(op, field string) error {
	return &rigid.ConfigurationError{Op: op, Field: field, Err: rigid.ErrIndexOutOfRange}
}

// SetForce sets the external force applied to body i on every following
// step until it is changed.
func (w *World) SetForce(i int, f mgl64.Vec3) error {
	if !w.hasBody(i) {
		return outOfRange("set_force", "body")
	}
	w.bodies[i].Force = f
	return nil
}

func (w *World) SetVelocity(i int, v mgl64.Vec3) error {
	if !w.hasBody(i) {
		return outOfRange("set_velocity", "body")
	}
	w.bodies[i].Velocity = v
	return nil
}

// SetMotor replaces the motor of a revolute or prismatic joint.
func (w *World) SetMotor(j int, m rigid.Motor) error {
	if j < 0 || j >= len(w.joints) {
		return outOfRange("set_motor", "joint")
	}
	if k := w.joints[j].Kind; k != rigid.Revolute && k != rigid.Prismatic {
		return &rigid.ConfigurationError{Op: "set_motor", Field: "kind", Err: rigid.ErrInvalidParameter}
	}
	if m.Enabled && m.MaxForce < 0 {
		return &rigid.ConfigurationError{Op: "set_motor", Field: "motor_max_force", Err: rigid.ErrInvalidParameter}
	}
	w.joints[j].Motor = m
	return nil
}

// SetParams replaces the simulation parameters. Invalid parameters leave
// the current ones in place.
func (w *World) SetParams(p rigid.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	w.params = p
	if w.buf.Cap() != p.ContactCapacity {
		w.buf = rigid.NewContactBuffer(p.ContactCapacity)
	}
	return nil
}

// SetBackend swaps the device backend. The previous backend is not
// cleaned up.
func (w *World) SetBackend(b compute.Backend) {
	w.backend = b
}

func (w *World) SetMode(m Mode) { w.mode = m }

func (w *World) AddMetric(m Metric)     { w.metrics = append(w.metrics, m) }
func (w *World) AddObserver(o Observer) { w.observers = append(w.observers, o) }

func (w *World) Params() rigid.Params     { return w.params }
func (w *World) Backend() compute.Backend { return w.backend }
func (w *World) Mode() Mode               { return w.mode }
func (w *World) Time() float64            { return w.time }
func (w *World) Steps() int               { return w.steps }
func (w *World) NumBodies() int           { return len(w.bodies) }
func (w *World) NumJoints() int           { return len(w.joints) }

func (w *World) Body(i int) (rigid.Body, bool) {
	if !w.hasBody(i) {
		return rigid.Body{}, false
	}
	return w.bodies[i], true
}

func (w *World) Bodies() []rigid.Body {
	return append([]rigid.Body(nil), w.bodies...)
}

func (w *World) Joints() []rigid.Joint {
	return append([]rigid.Joint(nil), w.joints...)
}

// Contacts returns the contacts found by the most recent step.
func (w *World) Contacts() []rigid.Contact {
	return append([]rigid.Contact(nil), w.contacts...)
}
