// Package compute dispatches numeric and physics kernels over byte buffers.
//
// Two backends implement the same [Backend] interface:
//
//   - reference: every kernel as a plain sequential loop. Its results are
//     authoritative.
//   - device: per-item kernels split across worker goroutines, for
//     throughput on multi-core hosts.
//
// # Kernels
//
// The kernel catalogue is fixed. Each [Kernel] lists its input and output
// bindings; callers pass input buffers and the shapes of the outputs they
// want back:
//
//	be, _ := compute.New("device")
//	out, err := be.Dispatch(compute.KernelAdd, []compute.Buffer{a, b}, []compute.Shape{a.Shape})
//
// Tensor kernels read and write little-endian float32 elements, with
// indices as uint32. Physics kernels read and write records in the
// canonical layout of package layout.
//
// # Errors
//
// Inputs are validated the same way before either backend runs a kernel,
// so malformed dispatches fail identically on both. Every failure is a
// [*DispatchError]; use errors.Is with [ErrUnknownKernel],
// [ErrShapeMismatch], [ErrBackendUnavailable] or [ErrKernelPanic] to
// classify it.
package compute
