package compute

import (
	"runtime"
	"sort"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/rigid"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// serialThreshold is the item count below which the device runs a kernel
// on the calling goroutine.
const serialThreshold = 16

// Device splits per-item kernels into contiguous chunks, one worker
// goroutine per chunk. Kernels with shared accumulation run as a single
// chunk. Dispatch returns after every worker has finished.
type Device struct {
	workers int
	kernels map[KernelID]kernelFunc
	closed  bool
}

func NewDevice() *Device {
	return NewDeviceWorkers(runtime.NumCPU())
}

// NewDeviceWorkers builds a device with a fixed worker count.
func NewDeviceWorkers(workers int) *Device {
	d := &Device{workers: max(workers, 1)}
	d.kernels = mergeKernels(tensorKernels(), physicsKernels(), generatorKernels(), map[KernelID]kernelFunc{
		KernelDetectContacts: d.detectKernel,
	})
	return d
}

func (d *Device) Name() string    { return "device" }
func (d *Device) Available() bool { return !d.closed }
func (d *Device) Cleanup()        { d.closed = true }
func (d *Device) Workers() int    { return d.workers }

func (d *Device) Dispatch(kernel KernelID, inputs []Buffer, outputs []Shape) ([]Buffer, error) {
	if d.closed {
		return nil, &DispatchError{Kernel: kernel, Backend: d.Name(), Err: ErrBackendUnavailable}
	}
	return dispatch(d.Name(), d.kernels, d, kernel, inputs, outputs)
}

func (d *Device) forEach(n int, fn func(lo, hi int)) error {
	if n < serialThreshold || d.workers == 1 {
		return protect(func() { fn(0, n) })
	}

	var g errgroup.Group
	chunkSize := (n + d.workers - 1) / d.workers
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			return protect(func() { fn(start, end) })
		})
	}
	return g.Wait()
}

type slot struct {
	pair  int
	local int
	c     rigid.Contact
}

// detectKernel runs narrow phase for candidate pairs in parallel. Workers
// reserve output slots through an atomic counter; contacts past capacity
// are dropped. Survivors are then put back in (pair, local) order so the
// result matches sequential enumeration whenever nothing was dropped.
func (d *Device) detectKernel(r runner, in, out []Buffer) error {
	p, err := decodeParams(in[1])
	if err != nil {
		return err
	}
	bodies, err := decodeBodies(in[0])
	if err != nil {
		return err
	}
	pairs := collision.CandidatePairs(bodies, &p)
	capacity := out[0].Len()
	slots := make([]slot, capacity)
	next := atomic.NewInt64(0)

	err = r.forEach(len(pairs), func(lo, hi int) {
		for k := lo; k < hi; k++ {
			for local, c := range collision.Pair(bodies, pairs[k][0], pairs[k][1]) {
				idx := next.Inc() - 1
				if idx >= int64(capacity) {
					continue
				}
				slots[idx] = slot{pair: k, local: local, c: c}
			}
		}
	})
	if err != nil {
		return err
	}

	kept := slots[:min(int(next.Load()), capacity)]
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].pair != kept[j].pair {
			return kept[i].pair < kept[j].pair
		}
		return kept[i].local < kept[j].local
	})
	cs := make([]rigid.Contact, len(kept))
	for i := range kept {
		cs[i] = kept[i].c
	}
	return writeContacts(out, cs)
}
