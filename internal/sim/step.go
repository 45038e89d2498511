package sim

import (
	"fmt"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/compute"
	"github.com/san-kum/rigidsim/internal/layout"
	"github.com/san-kum/rigidsim/internal/rigid"
	"github.com/san-kum/rigidsim/internal/solver"
	"github.com/sirupsen/logrus"
)

// StepError reports a device step that failed. The world is unchanged.
type StepError struct {
	Step    int
	Backend string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d on %s: %v", e.Step, e.Backend, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Step advances the world by one timestep using the configured mode.
func (w *World) Step() error {
	if w.mode == ModeReference {
		w.StepReference()
		return nil
	}
	return w.StepDevice()
}

// StepReference runs the pipeline directly on the store. It cannot fail.
func (w *World) StepReference() {
	w.euler.StepAll(w.bodies, &w.params)

	w.buf.Reset()
	collision.Detect(w.bodies, &w.params, w.buf)
	if d := w.buf.Dropped(); d > 0 {
		w.log.WithFields(logrus.Fields{"step": w.steps, "dropped": d, "capacity": w.buf.Cap()}).
			Warn("contact buffer full, dropping contacts")
	}

	solver.ResolveContacts(w.bodies, w.buf.Items(), &w.params)
	solver.SolveJoints(w.bodies, w.joints, &w.params)

	w.contacts = append(w.contacts[:0], w.buf.Items()...)
	w.advance("reference")
}

// StepDevice encodes the store, dispatches the four stage kernels and
// writes the result back only if every kernel succeeded.
func (w *World) StepDevice() error {
	name := "none"
	if w.backend != nil {
		name = w.backend.Name()
	}
	fail := func(err error) error {
		w.log.WithFields(logrus.Fields{"step": w.steps, "backend": name}).WithError(err).Warn("device step failed")
		return &StepError{Step: w.steps, Backend: name, Err: err}
	}
	if w.backend == nil || !w.backend.Available() {
		return fail(&compute.DispatchError{Kernel: compute.KernelIntegrateBodies, Backend: name, Err: compute.ErrBackendUnavailable})
	}

	bodies, contacts, err := w.dispatchStages()
	if err != nil {
		return fail(err)
	}

	for i := range w.bodies {
		b := &w.bodies[i]
		b.Position = bodies[i].Position
		b.Velocity = bodies[i].Velocity
		b.Orientation = bodies[i].Orientation
		b.AngularVelocity = bodies[i].AngularVelocity
	}
	if len(contacts) == w.params.ContactCapacity && len(contacts) > 0 {
		w.log.WithFields(logrus.Fields{"step": w.steps, "capacity": w.params.ContactCapacity}).
			Warn("contact buffer full, contacts may have been dropped")
	}
	w.contacts = contacts
	w.advance(name)
	return nil
}

func (w *World) dispatchStages() ([]rigid.Body, []rigid.Contact, error) {
	be := w.backend
	pb := compute.RecordBuffer(layout.EncodeParams(&w.params), layout.ParamsSize)
	bb := compute.RecordBuffer(layout.EncodeBodies(w.bodies), layout.BodySize)
	jb := compute.RecordBuffer(layout.EncodeJoints(w.joints), layout.JointSize)
	bodyShape := []compute.Shape{bb.Shape}

	out, err := be.Dispatch(compute.KernelIntegrateBodies, []compute.Buffer{bb, pb}, bodyShape)
	if err != nil {
		return nil, nil, err
	}
	bb = out[0]

	det, err := be.Dispatch(compute.KernelDetectContacts, []compute.Buffer{bb, pb},
		[]compute.Shape{{w.params.ContactCapacity}, {1}})
	if err != nil {
		return nil, nil, err
	}

	out, err = be.Dispatch(compute.KernelSolveContacts, []compute.Buffer{bb, det[0], det[1], pb}, bodyShape)
	if err != nil {
		return nil, nil, err
	}
	bb = out[0]

	out, err = be.Dispatch(compute.KernelSolveJoints, []compute.Buffer{bb, jb, pb}, bodyShape)
	if err != nil {
		return nil, nil, err
	}

	bodies, err := layout.DecodeBodies(out[0].Data)
	if err != nil {
		return nil, nil, err
	}
	if len(bodies) != len(w.bodies) {
		return nil, nil, fmt.Errorf("%w: backend returned %d bodies, want %d", compute.ErrShapeMismatch, len(bodies), len(w.bodies))
	}
	contacts, err := layout.DecodeContacts(det[0].Data, layout.DecodeCount(det[1].Data))
	if err != nil {
		return nil, nil, err
	}
	return bodies, contacts, nil
}

func (w *World) advance(backend string) {
	w.time += w.params.Dt
	w.steps++
	w.log.WithFields(logrus.Fields{
		"step":     w.steps,
		"time":     w.time,
		"contacts": len(w.contacts),
		"backend":  backend,
	}).Debug("step complete")
}
