package collision

import (
	"github.com/san-kum/rigidsim/internal/rigid"
)

// routine detects contacts between a and b, whose kinds are in canonical
// order. Contacts reference ia and ib and have normals pointing from a to b.
type routine func(a, b *rigid.Body, ia, ib int) []rigid.Contact

var table [rigid.NumShapeKinds][rigid.NumShapeKinds]routine

func init() {
	register(rigid.Sphere, rigid.Sphere, sphereSphere)
	register(rigid.Sphere, rigid.Box, sphereBox)
	register(rigid.Sphere, rigid.Cylinder, sphereCylinder)
	register(rigid.Sphere, rigid.Plane, spherePlane)
	register(rigid.Box, rigid.Box, boxBox)
	register(rigid.Box, rigid.Cylinder, boxCylinder)
	register(rigid.Box, rigid.Plane, boxPlane)
	register(rigid.Cylinder, rigid.Cylinder, cylinderCylinder)
	register(rigid.Cylinder, rigid.Plane, cylinderPlane)
	register(rigid.Plane, rigid.Plane, nil)
}

func register(a, b rigid.ShapeKind, fn routine) {
	if a > b {
		panic("collision: routine registered out of canonical order")
	}
	table[a][b] = fn
}

// Pair runs narrow-phase detection between bodies i and j. Normals point
// from i to j regardless of which routine ran.
func Pair(bodies []rigid.Body, i, j int) []rigid.Contact {
	if i == j || i < 0 || j < 0 || i >= len(bodies) || j >= len(bodies) {
		return nil
	}
	a, b := &bodies[i], &bodies[j]
	if a.IsStatic() && b.IsStatic() {
		return nil
	}
	if a.Kind >= rigid.NumShapeKinds || b.Kind >= rigid.NumShapeKinds {
		return nil
	}

	if a.Kind <= b.Kind {
		fn := table[a.Kind][b.Kind]
		if fn == nil {
			return nil
		}
		return fn(a, b, i, j)
	}

	fn := table[b.Kind][a.Kind]
	if fn == nil {
		return nil
	}
	contacts := fn(b, a, j, i)
	for k := range contacts {
		contacts[k] = contacts[k].Swapped()
	}
	return contacts
}

// CandidatePairs lists the body pairs (i < j) that narrow phase must test,
// in ascending (i, j) order. Pairs of two static bodies are omitted.
func CandidatePairs(bodies []rigid.Body, p *rigid.Params) [][2]int {
	if p.BroadPhase == rigid.BroadPhaseGrid {
		return gridPairs(bodies, p.CellSize)
	}
	pairs := make([][2]int, 0, len(bodies))
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			if bodies[i].IsStatic() && bodies[j].IsStatic() {
				continue
			}
			pairs = append(pairs, [2]int{i, j})
		}
	}
	return pairs
}

// Detect appends the contacts of every candidate pair to buf in pair order.
func Detect(bodies []rigid.Body, p *rigid.Params, buf *rigid.ContactBuffer) {
	for _, pair := range CandidatePairs(bodies, p) {
		for _, c := range Pair(bodies, pair[0], pair[1]) {
			buf.Append(c)
		}
	}
}
