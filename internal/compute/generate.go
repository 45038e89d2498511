package compute

import (
	"math"

	"github.com/zeebo/xxh3"
)

// expandInstancesKernel repeats the template once per output row.
func expandInstancesKernel(r runner, in, out []Buffer) error {
	tmpl, o := in[0], out[0]
	n := tmpl.Len()
	if n == 0 {
		return nil
	}
	return r.forEach(o.Len(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			o.SetF32(i, tmpl.F32(i%n))
		}
	})
}

// normalAt derives a standard normal sample from (seed, i) alone, so the
// result does not depend on how the index range is split across workers.
func normalAt(seed uint32, i int) float32 {
	var key [8]byte
	le.PutUint32(key[0:], seed)
	le.PutUint32(key[4:], uint32(i))
	h := xxh3.Hash(key[:])
	u1 := (float64(h>>32) + 1) / (1 << 32)
	u2 := float64(uint32(h)) / (1 << 32)
	return float32(math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2))
}

func rngNormalKernel(r runner, in, out []Buffer) error {
	seed, o := in[0].U32(0), out[0]
	return r.forEach(o.Len(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			o.SetF32(i, normalAt(seed, i))
		}
	})
}

func generatorKernels() map[KernelID]kernelFunc {
	return map[KernelID]kernelFunc{
		KernelExpandInstances: expandInstancesKernel,
		KernelRngNormal:       rngNormalKernel,
	}
}
