package compute

import (
	"github.com/chewxy/math32"
)

// runner executes fn over [0, n) in one or more disjoint ranges and returns
// once every range has finished.
type runner interface {
	forEach(n int, fn func(lo, hi int)) error
}

type kernelFunc func(r runner, in, out []Buffer) error

func unaryOp(op func(float32) float32) kernelFunc {
	return func(r runner, in, out []Buffer) error {
		x, o := in[0], out[0]
		return r.forEach(x.Len(), func(lo, hi int) {
			for i := lo; i < hi; i++ {
				o.SetF32(i, op(x.F32(i)))
			}
		})
	}
}

func binaryOp(op func(a, b float32) float32) kernelFunc {
	return func(r runner, in, out []Buffer) error {
		a, b, o := in[0], in[1], out[0]
		return r.forEach(a.Len(), func(lo, hi int) {
			for i := lo; i < hi; i++ {
				o.SetF32(i, op(a.F32(i), b.F32(i)))
			}
		})
	}
}

// tanh is evaluated through Exp so that large inputs saturate cleanly.
func tanh(x float32) float32 {
	t := math32.Exp(-2 * math32.Abs(x))
	y := (1 - t) / (1 + t)
	if x < 0 {
		return -y
	}
	return y
}

func sigmoid(x float32) float32 {
	if x >= 0 {
		return 1 / (1 + math32.Exp(-x))
	}
	e := math32.Exp(x)
	return e / (1 + e)
}

func relu(x float32) float32 {
	if x > 0 {
		return x
	}
	return 0
}

func clampKernel(r runner, in, out []Buffer) error {
	x, o := in[0], out[0]
	lo, hi := in[1].F32(0), in[1].F32(1)
	return r.forEach(x.Len(), func(a, b int) {
		for i := a; i < b; i++ {
			o.SetF32(i, math32.Max(lo, math32.Min(hi, x.F32(i))))
		}
	})
}

func whereKernel(r runner, in, out []Buffer) error {
	cond, a, b, o := in[0], in[1], in[2], out[0]
	return r.forEach(cond.Len(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if cond.U32(i) != 0 {
				o.SetF32(i, a.F32(i))
			} else {
				o.SetF32(i, b.F32(i))
			}
		}
	})
}

func addBroadcastKernel(r runner, in, out []Buffer) error {
	x, row, o := in[0], in[1], out[0]
	n, cols := x.Shape[0], x.Shape[1]
	return r.forEach(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 0; j < cols; j++ {
				o.SetF32(i*cols+j, x.F32(i*cols+j)+row.F32(j))
			}
		}
	})
}

// reduceRows folds each row of the trailing axis left to right.
func reduceRows(fold func(acc, v float32) float32, finish func(acc float32, cols int) float32) kernelFunc {
	return func(r runner, in, out []Buffer) error {
		x, o := in[0], out[0]
		n, cols := rows(x.Shape)
		return r.forEach(n, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				acc := x.F32(i * cols)
				for j := 1; j < cols; j++ {
					acc = fold(acc, x.F32(i*cols+j))
				}
				if finish != nil {
					acc = finish(acc, cols)
				}
				o.SetF32(i, acc)
			}
		})
	}
}

func sum(acc, v float32) float32 { return acc + v }

func mean(acc float32, cols int) float32 { return acc / float32(cols) }

// segmentedReduceSumKernel sums values into out[segments[i]]. Segment ids
// outside the output are skipped. Accumulation is shared, so it runs as a
// single range.
func segmentedReduceSumKernel(r runner, in, out []Buffer) error {
	vals, seg, o := in[0], in[1], out[0]
	k := o.Len()
	return r.forEach(1, func(int, int) {
		for i := 0; i < vals.Len(); i++ {
			s := int(seg.U32(i))
			if s >= k {
				continue
			}
			o.SetF32(s, o.F32(s)+vals.F32(i))
		}
	})
}

// scatterAddKernel copies base and adds values[i] at indices[i], skipping
// indices outside base.
func scatterAddKernel(r runner, in, out []Buffer) error {
	base, idx, vals, o := in[0], in[1], in[2], out[0]
	copy(o.Data, base.Data)
	m := base.Len()
	return r.forEach(1, func(int, int) {
		for i := 0; i < idx.Len(); i++ {
			j := int(idx.U32(i))
			if j >= m {
				continue
			}
			o.SetF32(j, o.F32(j)+vals.F32(i))
		}
	})
}

// gatherKernel reads src[indices[i]], writing 0 for indices outside src.
func gatherKernel(r runner, in, out []Buffer) error {
	src, idx, o := in[0], in[1], out[0]
	m := src.Len()
	return r.forEach(idx.Len(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			j := int(idx.U32(i))
			if j >= m {
				o.SetF32(i, 0)
				continue
			}
			o.SetF32(i, src.F32(j))
		}
	})
}

// matMulKernel computes one output row per item, accumulating over k in
// ascending order.
func matMulKernel(r runner, in, out []Buffer) error {
	a, b, o := in[0], in[1], out[0]
	m, k, n := a.Shape[0], a.Shape[1], b.Shape[1]
	return r.forEach(m, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 0; j < n; j++ {
				var acc float32
				for p := 0; p < k; p++ {
					acc += a.F32(i*k+p) * b.F32(p*n+j)
				}
				o.SetF32(i*n+j, acc)
			}
		}
	})
}

func tensorKernels() map[KernelID]kernelFunc {
	return map[KernelID]kernelFunc{
		KernelAdd:     binaryOp(func(a, b float32) float32 { return a + b }),
		KernelSub:     binaryOp(func(a, b float32) float32 { return a - b }),
		KernelMul:     binaryOp(func(a, b float32) float32 { return a * b }),
		KernelDiv:     binaryOp(func(a, b float32) float32 { return a / b }),
		KernelMin:     binaryOp(math32.Min),
		KernelMax:     binaryOp(math32.Max),
		KernelNeg:     unaryOp(func(x float32) float32 { return -x }),
		KernelExp:     unaryOp(math32.Exp),
		KernelLog:     unaryOp(math32.Log),
		KernelSqrt:    unaryOp(math32.Sqrt),
		KernelRsqrt:   unaryOp(func(x float32) float32 { return 1 / math32.Sqrt(x) }),
		KernelTanh:    unaryOp(tanh),
		KernelRelu:    unaryOp(relu),
		KernelSigmoid: unaryOp(sigmoid),

		KernelClamp:        clampKernel,
		KernelWhere:        whereKernel,
		KernelAddBroadcast: addBroadcastKernel,

		KernelReduceSum:          reduceRows(sum, nil),
		KernelReduceMean:         reduceRows(sum, mean),
		KernelReduceMax:          reduceRows(math32.Max, nil),
		KernelSegmentedReduceSum: segmentedReduceSumKernel,

		KernelScatterAdd: scatterAddKernel,
		KernelGather:     gatherKernel,
		KernelMatMul:     matMulKernel,
	}
}
