package compute

import (
	"fmt"
	"sort"
)

type Backend interface {
	Name() string
	Available() bool
	// Dispatch runs kernel on inputs and returns freshly allocated outputs
	// of the requested shapes. Inputs are never modified.
	Dispatch(kernel KernelID, inputs []Buffer, outputs []Shape) ([]Buffer, error)
	Cleanup()
}

var factories = map[string]func() Backend{
	"reference": func() Backend { return NewReference() },
	"device":    func() Backend { return NewDevice() },
}

// New builds a backend by name.
func New(name string) (Backend, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q: %w", name, ErrBackendUnavailable)
	}
	return f(), nil
}

func Names() []string {
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// dispatch is the path shared by every backend: validate, allocate outputs,
// then run the backend's implementation of the kernel.
func dispatch(name string, impls map[KernelID]kernelFunc, r runner, id KernelID, inputs []Buffer, outputs []Shape) ([]Buffer, error) {
	k, err := validate(id, inputs, outputs)
	if err != nil {
		return nil, &DispatchError{Kernel: id, Backend: name, Err: err}
	}
	fn, ok := impls[id]
	if !ok {
		return nil, &DispatchError{Kernel: id, Backend: name, Err: fmt.Errorf("%w: no implementation", ErrUnknownKernel)}
	}
	out := make([]Buffer, len(outputs))
	for i, s := range outputs {
		out[i] = NewBuffer(append(Shape(nil), s...), k.Outputs[i].ElemSize)
	}
	if err := fn(r, inputs, out); err != nil {
		return nil, &DispatchError{Kernel: id, Backend: name, Err: err}
	}
	return out, nil
}

func mergeKernels(sets ...map[KernelID]kernelFunc) map[KernelID]kernelFunc {
	out := make(map[KernelID]kernelFunc, numKernels)
	for _, s := range sets {
		for id, fn := range s {
			out[id] = fn
		}
	}
	return out
}

// protect runs fn and turns a panic into an ErrKernelPanic error.
func protect(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrKernelPanic, r)
		}
	}()
	fn()
	return nil
}
