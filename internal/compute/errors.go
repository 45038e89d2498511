package compute

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownKernel      = errors.New("unknown kernel")
	ErrShapeMismatch      = errors.New("shape mismatch")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrKernelPanic        = errors.New("kernel panicked")
)

// DispatchError reports a kernel that could not run or failed while running.
type DispatchError struct {
	Kernel  KernelID
	Backend string
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s on %s: %v", e.Kernel, e.Backend, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

func mismatch(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrShapeMismatch, fmt.Sprintf(format, args...))
}
