package collision

import (
	"math"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/rigid"
)

func sphere(pos mgl64.Vec3, r float64) rigid.Body {
	b, err := rigid.NewSphere(rigid.SphereSpec{BodySpec: rigid.BodySpec{Position: pos, Mass: 1}, Radius: r})
	if err != nil {
		panic(err)
	}
	return b
}

func box(pos, half mgl64.Vec3, q mgl64.Quat) rigid.Body {
	b, err := rigid.NewBox(rigid.BoxSpec{BodySpec: rigid.BodySpec{Position: pos, Orientation: q, Mass: 1}, HalfExtents: half})
	if err != nil {
		panic(err)
	}
	return b
}

func cylinder(pos mgl64.Vec3, r, h float64, q mgl64.Quat) rigid.Body {
	b, err := rigid.NewCylinder(rigid.CylinderSpec{BodySpec: rigid.BodySpec{Position: pos, Orientation: q, Mass: 1}, Radius: r, Height: h})
	if err != nil {
		panic(err)
	}
	return b
}

func ground() rigid.Body {
	b, err := rigid.NewPlane(rigid.PlaneSpec{Normal: mgl64.Vec3{0, 1, 0}})
	if err != nil {
		panic(err)
	}
	return b
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSphereSphereSplitsDepth(t *testing.T) {
	r := 0.8
	bodies := []rigid.Body{sphere(mgl64.Vec3{}, r), sphere(mgl64.Vec3{1.5 * r, 0, 0}, r)}

	cs := Pair(bodies, 0, 1)
	if len(cs) != 2 {
		t.Fatalf("got %d contacts, want 2", len(cs))
	}
	for _, c := range cs {
		if !near(c.Depth, 0.25*r) {
			t.Errorf("depth = %v, want %v", c.Depth, 0.25*r)
		}
		if !near(c.Normal.Len(), 1) {
			t.Errorf("normal not unit: %v", c.Normal)
		}
	}
	if !cs[0].Normal.Add(cs[1].Normal).ApproxEqual(mgl64.Vec3{}) {
		t.Errorf("normals not opposite: %v %v", cs[0].Normal, cs[1].Normal)
	}
	if cs[0].A != 0 || cs[0].B != 1 || cs[1].A != 1 || cs[1].B != 0 {
		t.Errorf("unexpected body indices: %+v", cs)
	}
}

func TestNoOverlapNoContact(t *testing.T) {
	q := mgl64.QuatIdent()
	tests := []struct {
		name   string
		bodies []rigid.Body
	}{
		{"sphere-sphere", []rigid.Body{sphere(mgl64.Vec3{}, 1), sphere(mgl64.Vec3{2, 0, 0}, 1)}},
		{"sphere-plane", []rigid.Body{sphere(mgl64.Vec3{0, 1, 0}, 1), ground()}},
		{"sphere-box", []rigid.Body{sphere(mgl64.Vec3{0, 3, 0}, 1), box(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, q)}},
		{"sphere-cylinder", []rigid.Body{sphere(mgl64.Vec3{3, 0, 0}, 1), cylinder(mgl64.Vec3{}, 1, 2, q)}},
		{"box-box", []rigid.Body{box(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, q), box(mgl64.Vec3{2.5, 0, 0}, mgl64.Vec3{1, 1, 1}, q)}},
		{"box-plane", []rigid.Body{box(mgl64.Vec3{0, 1.01, 0}, mgl64.Vec3{1, 1, 1}, q), ground()}},
		{"box-cylinder", []rigid.Body{box(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, q), cylinder(mgl64.Vec3{0, 3, 0}, 1, 2, q)}},
		{"cylinder-plane", []rigid.Body{cylinder(mgl64.Vec3{0, 1.5, 0}, 1, 2, q), ground()}},
		{"cylinder-cylinder", []rigid.Body{cylinder(mgl64.Vec3{}, 1, 2, q), cylinder(mgl64.Vec3{2.5, 0, 0}, 1, 2, q)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if cs := Pair(tt.bodies, 0, 1); len(cs) != 0 {
				t.Errorf("expected no contacts, got %+v", cs)
			}
			if cs := Pair(tt.bodies, 1, 0); len(cs) != 0 {
				t.Errorf("expected no contacts (swapped), got %+v", cs)
			}
		})
	}
}

func TestSpherePlane(t *testing.T) {
	bodies := []rigid.Body{sphere(mgl64.Vec3{0, 0.4, 0}, 0.5), ground()}
	cs := Pair(bodies, 0, 1)
	if len(cs) != 1 {
		t.Fatalf("got %d contacts, want 1", len(cs))
	}
	if !near(cs[0].Depth, 0.1) {
		t.Errorf("depth = %v, want 0.1", cs[0].Depth)
	}
	// sphere is A, pushed along -normal, i.e. up
	if !cs[0].Normal.ApproxEqual(mgl64.Vec3{0, -1, 0}) {
		t.Errorf("normal = %v", cs[0].Normal)
	}
}

func TestBoundedPlane(t *testing.T) {
	plane, _ := rigid.NewPlane(rigid.PlaneSpec{Normal: mgl64.Vec3{0, 1, 0}, Extents: [2]float64{1, 1}})
	bodies := []rigid.Body{sphere(mgl64.Vec3{5, 0.4, 0}, 0.5), plane}
	if cs := Pair(bodies, 0, 1); len(cs) != 0 {
		t.Errorf("sphere outside plane extents should not collide: %+v", cs)
	}
}

func TestSwappedOrderNegatesNormal(t *testing.T) {
	bodies := []rigid.Body{ground(), sphere(mgl64.Vec3{0, 0.4, 0}, 0.5)}
	cs := Pair(bodies, 0, 1)
	if len(cs) != 1 {
		t.Fatalf("got %d contacts", len(cs))
	}
	if cs[0].A != 0 || cs[0].B != 1 {
		t.Errorf("indices = %d,%d want 0,1", cs[0].A, cs[0].B)
	}
	if !cs[0].Normal.ApproxEqual(mgl64.Vec3{0, 1, 0}) {
		t.Errorf("normal = %v, want +Y from plane to sphere", cs[0].Normal)
	}
}

func TestSphereBox(t *testing.T) {
	q := mgl64.QuatIdent()

	t.Run("outside face", func(t *testing.T) {
		bodies := []rigid.Body{sphere(mgl64.Vec3{0, 1.3, 0}, 0.5), box(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, q)}
		cs := Pair(bodies, 0, 1)
		if len(cs) != 1 || !near(cs[0].Depth, 0.2) {
			t.Fatalf("contacts = %+v", cs)
		}
		if !cs[0].Normal.ApproxEqual(mgl64.Vec3{0, -1, 0}) {
			t.Errorf("normal = %v", cs[0].Normal)
		}
	})

	t.Run("center inside", func(t *testing.T) {
		bodies := []rigid.Body{sphere(mgl64.Vec3{0.9, 0, 0}, 0.5), box(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, q)}
		cs := Pair(bodies, 0, 1)
		if len(cs) != 1 {
			t.Fatalf("got %d contacts", len(cs))
		}
		if !near(cs[0].Depth, 0.6) {
			t.Errorf("depth = %v, want radius + 0.1", cs[0].Depth)
		}
		if !cs[0].Normal.ApproxEqual(mgl64.Vec3{-1, 0, 0}) {
			t.Errorf("normal = %v, want -X", cs[0].Normal)
		}
	})

	t.Run("rotated box", func(t *testing.T) {
		rot := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1})
		// the rotated box's corner points up the +Y axis at height sqrt(2)
		bodies := []rigid.Body{sphere(mgl64.Vec3{0, math.Sqrt2 + 0.4, 0}, 0.5), box(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, rot)}
		cs := Pair(bodies, 0, 1)
		if len(cs) != 1 || math.Abs(cs[0].Depth-0.1) > 1e-6 {
			t.Fatalf("contacts = %+v", cs)
		}
	})
}

func TestBoxPlane(t *testing.T) {
	q := mgl64.QuatIdent()
	bodies := []rigid.Body{box(mgl64.Vec3{0, 0.9, 0}, mgl64.Vec3{1, 1, 1}, q), ground()}
	cs := Pair(bodies, 0, 1)
	if len(cs) != 1 {
		t.Fatalf("got %d contacts, want 1", len(cs))
	}
	if !near(cs[0].Depth, 0.1) {
		t.Errorf("depth = %v, want 0.1", cs[0].Depth)
	}
	if !near(cs[0].Point.Y(), -0.1) || !near(cs[0].Point.X(), 0) {
		t.Errorf("point = %v, want centroid of bottom face", cs[0].Point)
	}
}

func TestCylinderPlane(t *testing.T) {
	q := mgl64.QuatIdent()
	bodies := []rigid.Body{cylinder(mgl64.Vec3{0, 0.95, 0}, 0.5, 2, q), ground()}
	cs := Pair(bodies, 0, 1)
	if len(cs) != 1 || !near(cs[0].Depth, 0.05) {
		t.Fatalf("contacts = %+v", cs)
	}

	// lying on its side the rim touches first
	side := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	bodies = []rigid.Body{cylinder(mgl64.Vec3{0, 0.45, 0}, 0.5, 2, side), ground()}
	cs = Pair(bodies, 0, 1)
	if len(cs) != 1 || math.Abs(cs[0].Depth-0.05) > 1e-9 {
		t.Fatalf("side contacts = %+v", cs)
	}
}

func TestSphereCylinder(t *testing.T) {
	q := mgl64.QuatIdent()

	t.Run("lateral", func(t *testing.T) {
		bodies := []rigid.Body{sphere(mgl64.Vec3{1.3, 0, 0}, 0.5), cylinder(mgl64.Vec3{}, 1, 2, q)}
		cs := Pair(bodies, 0, 1)
		if len(cs) != 1 || !near(cs[0].Depth, 0.2) {
			t.Fatalf("contacts = %+v", cs)
		}
		if !cs[0].Normal.ApproxEqual(mgl64.Vec3{-1, 0, 0}) {
			t.Errorf("normal = %v", cs[0].Normal)
		}
	})

	t.Run("end cap", func(t *testing.T) {
		bodies := []rigid.Body{sphere(mgl64.Vec3{0.2, 1.4, 0}, 0.5), cylinder(mgl64.Vec3{}, 1, 2, q)}
		cs := Pair(bodies, 0, 1)
		if len(cs) != 1 || !near(cs[0].Depth, 0.1) {
			t.Fatalf("contacts = %+v", cs)
		}
		if !cs[0].Normal.ApproxEqual(mgl64.Vec3{0, -1, 0}) {
			t.Errorf("normal = %v", cs[0].Normal)
		}
	})

	t.Run("center inside", func(t *testing.T) {
		bodies := []rigid.Body{sphere(mgl64.Vec3{0, 0.9, 0}, 0.5), cylinder(mgl64.Vec3{}, 1, 2, q)}
		cs := Pair(bodies, 0, 1)
		if len(cs) != 1 || !near(cs[0].Depth, 0.6) {
			t.Fatalf("contacts = %+v", cs)
		}
	})
}

func TestCylinderCylinder(t *testing.T) {
	q := mgl64.QuatIdent()

	t.Run("stacked", func(t *testing.T) {
		bodies := []rigid.Body{cylinder(mgl64.Vec3{}, 1, 2, q), cylinder(mgl64.Vec3{0, 1.9, 0}, 1, 2, q)}
		cs := Pair(bodies, 0, 1)
		if len(cs) != 1 || math.Abs(cs[0].Depth-0.1) > 1e-9 {
			t.Fatalf("contacts = %+v", cs)
		}
		if !cs[0].Normal.ApproxEqual(mgl64.Vec3{0, 1, 0}) {
			t.Errorf("normal = %v, want +Y", cs[0].Normal)
		}
	})

	t.Run("side by side", func(t *testing.T) {
		bodies := []rigid.Body{cylinder(mgl64.Vec3{}, 1, 2, q), cylinder(mgl64.Vec3{1.8, 0, 0}, 1, 2, q)}
		cs := Pair(bodies, 0, 1)
		if len(cs) != 1 || math.Abs(cs[0].Depth-0.2) > 1e-9 {
			t.Fatalf("contacts = %+v", cs)
		}
		if !cs[0].Normal.ApproxEqual(mgl64.Vec3{1, 0, 0}) {
			t.Errorf("normal = %v, want +X", cs[0].Normal)
		}
	})

	t.Run("crossing axes", func(t *testing.T) {
		alongX := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
		alongZ := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0})
		bodies := []rigid.Body{cylinder(mgl64.Vec3{}, 0.3, 4, alongX), cylinder(mgl64.Vec3{}, 0.3, 4, alongZ)}
		cs := Pair(bodies, 0, 1)
		if len(cs) != 1 || math.Abs(cs[0].Depth-0.6) > 1e-9 {
			t.Fatalf("contacts = %+v", cs)
		}
		if math.Abs(math.Abs(cs[0].Normal.Y())-1) > 1e-9 {
			t.Errorf("normal = %v, want along Y", cs[0].Normal)
		}
	})
}

func TestBoxCylinder(t *testing.T) {
	q := mgl64.QuatIdent()

	t.Run("cylinder standing on box", func(t *testing.T) {
		bodies := []rigid.Body{box(mgl64.Vec3{}, mgl64.Vec3{2, 1, 2}, q), cylinder(mgl64.Vec3{0, 1.9, 0}, 0.5, 2, q)}
		cs := Pair(bodies, 0, 1)
		if len(cs) != 1 || math.Abs(cs[0].Depth-0.1) > 1e-9 {
			t.Fatalf("contacts = %+v", cs)
		}
		if !cs[0].Normal.ApproxEqual(mgl64.Vec3{0, 1, 0}) {
			t.Errorf("normal = %v, want +Y", cs[0].Normal)
		}
	})

	t.Run("cylinder lying on box", func(t *testing.T) {
		side := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0})
		bodies := []rigid.Body{box(mgl64.Vec3{}, mgl64.Vec3{2, 1, 2}, q), cylinder(mgl64.Vec3{0, 1.45, 0}, 0.5, 2, side)}
		cs := Pair(bodies, 0, 1)
		if len(cs) != 1 || math.Abs(cs[0].Depth-0.05) > 1e-6 {
			t.Fatalf("contacts = %+v", cs)
		}
		if cs[0].Normal.Y() < 0.99 {
			t.Errorf("normal = %v, want +Y", cs[0].Normal)
		}
	})

	side := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	sunk := []struct {
		name  string
		y     float64
		depth float64
	}{
		{"axis above face", 1.2, 0.1},
		{"axis just above face", 1.05, 0.25},
		{"axis inside near face", 0.9, 0.4},
		{"axis inside deep", 0.5, 0.8},
	}
	for _, tt := range sunk {
		t.Run(tt.name, func(t *testing.T) {
			bodies := []rigid.Body{box(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, q), cylinder(mgl64.Vec3{0, tt.y, 0}, 0.3, 4, side)}
			cs := Pair(bodies, 0, 1)
			if len(cs) != 1 || math.Abs(cs[0].Depth-tt.depth) > 1e-6 {
				t.Fatalf("contacts = %+v, want depth %v", cs, tt.depth)
			}
			if !cs[0].Normal.ApproxEqual(mgl64.Vec3{0, 1, 0}) {
				t.Errorf("normal = %v, want +Y", cs[0].Normal)
			}
		})
	}
}

func TestBoxBox(t *testing.T) {
	q := mgl64.QuatIdent()
	bodies := []rigid.Body{box(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, q), box(mgl64.Vec3{0, 1.8, 0}, mgl64.Vec3{1, 1, 1}, q)}
	cs := Pair(bodies, 0, 1)
	if len(cs) != 1 || math.Abs(cs[0].Depth-0.2) > 1e-9 {
		t.Fatalf("contacts = %+v", cs)
	}
	if !cs[0].Normal.ApproxEqual(mgl64.Vec3{0, 1, 0}) {
		t.Errorf("normal = %v", cs[0].Normal)
	}
}

func TestStaticPairsSkipped(t *testing.T) {
	static, _ := rigid.NewSphere(rigid.SphereSpec{Radius: 1})
	bodies := []rigid.Body{static, ground()}
	if cs := Pair(bodies, 0, 1); cs != nil {
		t.Errorf("static pair produced contacts: %+v", cs)
	}
}

func TestCoincidentSpheresStayFinite(t *testing.T) {
	bodies := []rigid.Body{sphere(mgl64.Vec3{}, 1), sphere(mgl64.Vec3{}, 1)}
	for _, c := range Pair(bodies, 0, 1) {
		for i := 0; i < 3; i++ {
			if math.IsNaN(c.Normal[i]) {
				t.Fatalf("NaN normal: %+v", c)
			}
		}
	}
}

func TestDetectIsIdempotent(t *testing.T) {
	q := mgl64.QuatIdent()
	bodies := []rigid.Body{
		sphere(mgl64.Vec3{0, 0.4, 0}, 0.5),
		sphere(mgl64.Vec3{0.7, 0.4, 0}, 0.5),
		box(mgl64.Vec3{3, 0.9, 0}, mgl64.Vec3{1, 1, 1}, q),
		cylinder(mgl64.Vec3{3, 2.8, 0}, 0.5, 2, q),
		ground(),
	}
	before := append([]rigid.Body(nil), bodies...)
	p := rigid.DefaultParams()

	first := rigid.NewContactBuffer(64)
	Detect(bodies, &p, first)
	second := rigid.NewContactBuffer(64)
	Detect(bodies, &p, second)

	if first.Len() == 0 {
		t.Fatal("expected contacts")
	}
	if !reflect.DeepEqual(first.Items(), second.Items()) {
		t.Error("detection is not deterministic")
	}
	if !reflect.DeepEqual(before, bodies) {
		t.Error("detection mutated bodies")
	}
}

func TestGridMatchesExhaustive(t *testing.T) {
	q := mgl64.QuatIdent()
	var bodies []rigid.Body
	for i := 0; i < 6; i++ {
		for j := 0; j < 3; j++ {
			pos := mgl64.Vec3{float64(i) * 0.9, 0.45 + float64(j)*0.95, float64(i%2) * 0.3}
			if (i+j)%3 == 0 {
				bodies = append(bodies, box(pos, mgl64.Vec3{0.5, 0.5, 0.5}, q))
			} else {
				bodies = append(bodies, sphere(pos, 0.5))
			}
		}
	}
	bodies = append(bodies, sphere(mgl64.Vec3{40, 40, 40}, 1), ground())

	exhaustive := rigid.DefaultParams()
	grid := exhaustive
	grid.BroadPhase = rigid.BroadPhaseGrid
	grid.CellSize = 1

	a := rigid.NewContactBuffer(1024)
	Detect(bodies, &exhaustive, a)
	b := rigid.NewContactBuffer(1024)
	Detect(bodies, &grid, b)

	if a.Len() == 0 {
		t.Fatal("scenario produced no contacts")
	}
	if !reflect.DeepEqual(a.Items(), b.Items()) {
		t.Errorf("grid broad phase changed results: %d vs %d contacts", a.Len(), b.Len())
	}
	if len(CandidatePairs(bodies, &grid)) >= len(CandidatePairs(bodies, &exhaustive)) {
		t.Error("grid should prune candidate pairs")
	}
}
