package compute

import (
	"fmt"

	"github.com/san-kum/rigidsim/internal/layout"
)

// validate checks a dispatch against the catalogue before any backend runs
// it. Both backends call it, so they reject the same inputs the same way.
func validate(id KernelID, inputs []Buffer, outputs []Shape) (Kernel, error) {
	k, ok := Lookup(id)
	if !ok {
		return Kernel{}, fmt.Errorf("%w: id %d", ErrUnknownKernel, id)
	}
	if len(inputs) != len(k.Inputs) {
		return k, mismatch("%d inputs, want %d", len(inputs), len(k.Inputs))
	}
	if len(outputs) != len(k.Outputs) {
		return k, mismatch("%d outputs, want %d", len(outputs), len(k.Outputs))
	}
	for i, in := range inputs {
		bind := k.Inputs[i]
		if in.ElemSize != bind.ElemSize {
			return k, mismatch("input %s element size %d, want %d", bind.Name, in.ElemSize, bind.ElemSize)
		}
		n := in.Shape.Elems()
		if n < 0 {
			return k, mismatch("input %s has negative shape %v", bind.Name, in.Shape)
		}
		if len(in.Data) != n*in.ElemSize {
			return k, mismatch("input %s holds %d bytes, shape %v needs %d", bind.Name, len(in.Data), in.Shape, n*in.ElemSize)
		}
	}
	for i, out := range outputs {
		if out.Elems() < 0 {
			return k, mismatch("output %s has negative shape %v", k.Outputs[i].Name, out)
		}
	}
	return k, checkShapes(id, inputs, outputs)
}

func sameShape(name string, got, want Shape) error {
	if !got.Equal(want) {
		return mismatch("%s shape %v, want %v", name, got, want)
	}
	return nil
}

func rank(name string, s Shape, r int) error {
	if len(s) != r {
		return mismatch("%s rank %d, want %d", name, len(s), r)
	}
	return nil
}

func checkShapes(id KernelID, in []Buffer, out []Shape) error {
	switch id {
	case KernelAdd, KernelSub, KernelMul, KernelDiv, KernelMin, KernelMax:
		if err := sameShape("b", in[1].Shape, in[0].Shape); err != nil {
			return err
		}
		return sameShape("out", out[0], in[0].Shape)

	case KernelNeg, KernelExp, KernelLog, KernelSqrt, KernelRsqrt, KernelTanh, KernelRelu, KernelSigmoid:
		return sameShape("out", out[0], in[0].Shape)

	case KernelClamp:
		if err := sameShape("bounds", in[1].Shape, Shape{2}); err != nil {
			return err
		}
		return sameShape("out", out[0], in[0].Shape)

	case KernelWhere:
		for i, name := range []string{"a", "b"} {
			if err := sameShape(name, in[i+1].Shape, in[0].Shape); err != nil {
				return err
			}
		}
		return sameShape("out", out[0], in[0].Shape)

	case KernelAddBroadcast:
		if err := rank("x", in[0].Shape, 2); err != nil {
			return err
		}
		if err := sameShape("row", in[1].Shape, Shape{in[0].Shape[1]}); err != nil {
			return err
		}
		return sameShape("out", out[0], in[0].Shape)

	case KernelReduceSum, KernelReduceMean, KernelReduceMax:
		s := in[0].Shape
		if len(s) == 0 || s[len(s)-1] < 1 {
			return mismatch("x shape %v has no reduction axis", s)
		}
		r, _ := rows(s)
		return sameShape("out", out[0], Shape{r})

	case KernelSegmentedReduceSum:
		if err := rank("values", in[0].Shape, 1); err != nil {
			return err
		}
		if err := sameShape("segments", in[1].Shape, in[0].Shape); err != nil {
			return err
		}
		return rank("out", out[0], 1)

	case KernelScatterAdd:
		if err := rank("base", in[0].Shape, 1); err != nil {
			return err
		}
		if err := rank("indices", in[1].Shape, 1); err != nil {
			return err
		}
		if err := sameShape("values", in[2].Shape, in[1].Shape); err != nil {
			return err
		}
		return sameShape("out", out[0], in[0].Shape)

	case KernelGather:
		if err := rank("src", in[0].Shape, 1); err != nil {
			return err
		}
		if err := rank("indices", in[1].Shape, 1); err != nil {
			return err
		}
		return sameShape("out", out[0], in[1].Shape)

	case KernelMatMul:
		if err := rank("a", in[0].Shape, 2); err != nil {
			return err
		}
		if err := rank("b", in[1].Shape, 2); err != nil {
			return err
		}
		if in[0].Shape[1] != in[1].Shape[0] {
			return mismatch("inner dimensions %d and %d differ", in[0].Shape[1], in[1].Shape[0])
		}
		return sameShape("out", out[0], Shape{in[0].Shape[0], in[1].Shape[1]})

	case KernelIntegrateBodies:
		if err := physicsInputs(in[0], in[1]); err != nil {
			return err
		}
		return sameShape("out", out[0], in[0].Shape)

	case KernelDetectContacts:
		if err := physicsInputs(in[0], in[1]); err != nil {
			return err
		}
		if err := rank("contacts", out[0], 1); err != nil {
			return err
		}
		return sameShape("count", out[1], Shape{1})

	case KernelSolveContacts:
		if err := physicsInputs(in[0], in[3]); err != nil {
			return err
		}
		if err := rank("contacts", in[1].Shape, 1); err != nil {
			return err
		}
		if err := sameShape("count", in[2].Shape, Shape{1}); err != nil {
			return err
		}
		return sameShape("out", out[0], in[0].Shape)

	case KernelSolveJoints:
		if err := physicsInputs(in[0], in[2]); err != nil {
			return err
		}
		if err := rank("joints", in[1].Shape, 1); err != nil {
			return err
		}
		return sameShape("out", out[0], in[0].Shape)

	case KernelExpandInstances:
		if err := rank("template", in[0].Shape, 1); err != nil {
			return err
		}
		if err := sameShape("count", in[1].Shape, Shape{1}); err != nil {
			return err
		}
		return sameShape("out", out[0], Shape{int(in[1].U32(0)), in[0].Shape[0]})

	case KernelRngNormal:
		return sameShape("seed", in[0].Shape, Shape{1})
	}
	return nil
}

func physicsInputs(bodies, params Buffer) error {
	if err := rank("bodies", bodies.Shape, 1); err != nil {
		return err
	}
	if len(params.Data) != layout.ParamsSize {
		return mismatch("params holds %d bytes, want %d", len(params.Data), layout.ParamsSize)
	}
	return sameShape("params", params.Shape, Shape{1})
}
