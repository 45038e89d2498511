package compute

import (
	"fmt"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/integrators"
	"github.com/san-kum/rigidsim/internal/layout"
	"github.com/san-kum/rigidsim/internal/rigid"
	"github.com/san-kum/rigidsim/internal/solver"
)

func decodeParams(b Buffer) (rigid.Params, error) {
	p, err := layout.DecodeParams(b.Data)
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	return p, nil
}

func decodeBodies(b Buffer) ([]rigid.Body, error) {
	bodies, err := layout.DecodeBodies(b.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	return bodies, nil
}

// integrateKernel advances each body record independently.
func integrateKernel(r runner, in, out []Buffer) error {
	p, err := decodeParams(in[1])
	if err != nil {
		return err
	}
	src, dst := in[0].Data, out[0].Data
	euler := integrators.NewEuler()
	return r.forEach(in[0].Len(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			b := layout.GetBody(src[i*layout.BodySize:])
			euler.Step(&b, &p)
			layout.PutBody(dst[i*layout.BodySize:], &b)
		}
	})
}

// detectKernel runs broad and narrow phase in canonical pair order and
// writes at most len(out[0]) contacts.
func detectKernel(r runner, in, out []Buffer) error {
	p, err := decodeParams(in[1])
	if err != nil {
		return err
	}
	bodies, err := decodeBodies(in[0])
	if err != nil {
		return err
	}
	buf := rigid.NewContactBuffer(out[0].Len())
	if err := r.forEach(1, func(int, int) {
		collision.Detect(bodies, &p, buf)
	}); err != nil {
		return err
	}
	return writeContacts(out, buf.Items())
}

func writeContacts(out []Buffer, cs []rigid.Contact) error {
	for i := range cs {
		layout.PutContact(out[0].Data[i*layout.ContactSize:], &cs[i])
	}
	copy(out[1].Data, layout.EncodeCount(len(cs)))
	return nil
}

func solveContactsKernel(r runner, in, out []Buffer) error {
	p, err := decodeParams(in[3])
	if err != nil {
		return err
	}
	bodies, err := decodeBodies(in[0])
	if err != nil {
		return err
	}
	cs, err := layout.DecodeContacts(in[1].Data, layout.DecodeCount(in[2].Data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	if err := r.forEach(1, func(int, int) {
		solver.ResolveContacts(bodies, cs, &p)
	}); err != nil {
		return err
	}
	copy(out[0].Data, layout.EncodeBodies(bodies))
	return nil
}

func solveJointsKernel(r runner, in, out []Buffer) error {
	p, err := decodeParams(in[2])
	if err != nil {
		return err
	}
	bodies, err := decodeBodies(in[0])
	if err != nil {
		return err
	}
	js, err := layout.DecodeJoints(in[1].Data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	if err := r.forEach(1, func(int, int) {
		solver.SolveJoints(bodies, js, &p)
	}); err != nil {
		return err
	}
	copy(out[0].Data, layout.EncodeBodies(bodies))
	return nil
}

func physicsKernels() map[KernelID]kernelFunc {
	return map[KernelID]kernelFunc{
		KernelIntegrateBodies: integrateKernel,
		KernelDetectContacts:  detectKernel,
		KernelSolveContacts:   solveContactsKernel,
		KernelSolveJoints:     solveJointsKernel,
	}
}
