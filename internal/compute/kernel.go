package compute

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/san-kum/rigidsim/internal/layout"
)

type KernelID uint16

const (
	KernelAdd KernelID = iota
	KernelSub
	KernelMul
	KernelDiv
	KernelMin
	KernelMax
	KernelNeg
	KernelExp
	KernelLog
	KernelSqrt
	KernelRsqrt
	KernelTanh
	KernelRelu
	KernelSigmoid
	KernelClamp
	KernelWhere
	KernelAddBroadcast
	KernelReduceSum
	KernelReduceMean
	KernelReduceMax
	KernelSegmentedReduceSum
	KernelScatterAdd
	KernelGather
	KernelMatMul
	KernelIntegrateBodies
	KernelDetectContacts
	KernelSolveContacts
	KernelSolveJoints
	KernelExpandInstances
	KernelRngNormal

	numKernels
)

// Class groups kernels by how a backend may parallelise them.
type Class uint8

const (
	ClassElementwise Class = iota
	ClassReduction
	ClassIndexing
	ClassLinalg
	ClassPhysics
	ClassGenerator
)

func (c Class) String() string {
	switch c {
	case ClassElementwise:
		return "elementwise"
	case ClassReduction:
		return "reduction"
	case ClassIndexing:
		return "indexing"
	case ClassLinalg:
		return "linalg"
	case ClassPhysics:
		return "physics"
	case ClassGenerator:
		return "generator"
	default:
		return "unknown"
	}
}

// Binding describes one kernel input or output.
type Binding struct {
	Name     string
	ElemSize int
}

type Kernel struct {
	ID      KernelID
	Name    string
	Class   Class
	Inputs  []Binding
	Outputs []Binding
}

func f32(name string) Binding { return Binding{Name: name, ElemSize: 4} }
func u32(name string) Binding { return Binding{Name: name, ElemSize: 4} }

var (
	bindBodies   = Binding{Name: "bodies", ElemSize: layout.BodySize}
	bindJoints   = Binding{Name: "joints", ElemSize: layout.JointSize}
	bindContacts = Binding{Name: "contacts", ElemSize: layout.ContactSize}
	bindParams   = Binding{Name: "params", ElemSize: layout.ParamsSize}
	bindCount    = Binding{Name: "count", ElemSize: layout.CountSize}
)

var catalogue = orderedmap.NewOrderedMap[KernelID, Kernel]()

func define(id KernelID, name string, class Class, in, out []Binding) {
	catalogue.Set(id, Kernel{ID: id, Name: name, Class: class, Inputs: in, Outputs: out})
}

func elementwise2(id KernelID, name string) {
	define(id, name, ClassElementwise, []Binding{f32("a"), f32("b")}, []Binding{f32("out")})
}

func elementwise1(id KernelID, name string) {
	define(id, name, ClassElementwise, []Binding{f32("x")}, []Binding{f32("out")})
}

func init() {
	elementwise2(KernelAdd, "add")
	elementwise2(KernelSub, "sub")
	elementwise2(KernelMul, "mul")
	elementwise2(KernelDiv, "div")
	elementwise2(KernelMin, "min")
	elementwise2(KernelMax, "max")
	elementwise1(KernelNeg, "neg")
	elementwise1(KernelExp, "exp")
	elementwise1(KernelLog, "log")
	elementwise1(KernelSqrt, "sqrt")
	elementwise1(KernelRsqrt, "rsqrt")
	elementwise1(KernelTanh, "tanh")
	elementwise1(KernelRelu, "relu")
	elementwise1(KernelSigmoid, "sigmoid")
	define(KernelClamp, "clamp", ClassElementwise, []Binding{f32("x"), f32("bounds")}, []Binding{f32("out")})
	define(KernelWhere, "where", ClassElementwise, []Binding{u32("cond"), f32("a"), f32("b")}, []Binding{f32("out")})
	define(KernelAddBroadcast, "add_broadcast", ClassElementwise, []Binding{f32("x"), f32("row")}, []Binding{f32("out")})

	define(KernelReduceSum, "reduce_sum", ClassReduction, []Binding{f32("x")}, []Binding{f32("out")})
	define(KernelReduceMean, "reduce_mean", ClassReduction, []Binding{f32("x")}, []Binding{f32("out")})
	define(KernelReduceMax, "reduce_max", ClassReduction, []Binding{f32("x")}, []Binding{f32("out")})
	define(KernelSegmentedReduceSum, "segmented_reduce_sum", ClassReduction, []Binding{f32("values"), u32("segments")}, []Binding{f32("out")})

	define(KernelScatterAdd, "scatter_add", ClassIndexing, []Binding{f32("base"), u32("indices"), f32("values")}, []Binding{f32("out")})
	define(KernelGather, "gather", ClassIndexing, []Binding{f32("src"), u32("indices")}, []Binding{f32("out")})

	define(KernelMatMul, "matmul", ClassLinalg, []Binding{f32("a"), f32("b")}, []Binding{f32("out")})

	define(KernelIntegrateBodies, "integrate_bodies", ClassPhysics, []Binding{bindBodies, bindParams}, []Binding{bindBodies})
	define(KernelDetectContacts, "detect_contacts", ClassPhysics, []Binding{bindBodies, bindParams}, []Binding{bindContacts, bindCount})
	define(KernelSolveContacts, "solve_contacts", ClassPhysics, []Binding{bindBodies, bindContacts, bindCount, bindParams}, []Binding{bindBodies})
	define(KernelSolveJoints, "solve_joints", ClassPhysics, []Binding{bindBodies, bindJoints, bindParams}, []Binding{bindBodies})

	define(KernelExpandInstances, "expand_instances", ClassGenerator, []Binding{f32("template"), u32("count")}, []Binding{f32("out")})
	define(KernelRngNormal, "rng_normal", ClassGenerator, []Binding{u32("seed")}, []Binding{f32("out")})
}

// Lookup returns the catalogue entry for id.
func Lookup(id KernelID) (Kernel, bool) {
	return catalogue.Get(id)
}

// Kernels lists the catalogue in definition order.
func Kernels() []Kernel {
	out := make([]Kernel, 0, catalogue.Len())
	for el := catalogue.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// ParseKernel finds a kernel by its catalogue name.
func ParseKernel(name string) (KernelID, bool) {
	for el := catalogue.Front(); el != nil; el = el.Next() {
		if el.Value.Name == name {
			return el.Key, true
		}
	}
	return 0, false
}

func (id KernelID) String() string {
	if k, ok := catalogue.Get(id); ok {
		return k.Name
	}
	return "unknown"
}
