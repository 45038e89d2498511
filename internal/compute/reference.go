package compute

// Reference runs every kernel as one sequential loop on the calling
// goroutine. Its outputs are the ones other backends are checked against.
type Reference struct {
	kernels map[KernelID]kernelFunc
	closed  bool
}

func NewReference() *Reference {
	return &Reference{kernels: mergeKernels(tensorKernels(), physicsKernels(), generatorKernels())}
}

func (r *Reference) Name() string    { return "reference" }
func (r *Reference) Available() bool { return !r.closed }
func (r *Reference) Cleanup()        { r.closed = true }

func (r *Reference) Dispatch(kernel KernelID, inputs []Buffer, outputs []Shape) ([]Buffer, error) {
	if r.closed {
		return nil, &DispatchError{Kernel: kernel, Backend: r.Name(), Err: ErrBackendUnavailable}
	}
	return dispatch(r.Name(), r.kernels, sequential{}, kernel, inputs, outputs)
}

type sequential struct{}

func (sequential) forEach(n int, fn func(lo, hi int)) error {
	return protect(func() { fn(0, n) })
}
