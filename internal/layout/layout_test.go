package layout

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/rigid"
)

func TestBodyFieldOffsets(t *testing.T) {
	b := rigid.Body{
		Kind:        rigid.Cylinder,
		Position:    mgl64.Vec3{1, 2, 3},
		Velocity:    mgl64.Vec3{4, 5, 6},
		InvMass:     0.5,
		Orientation: mgl64.QuatIdent(),
		Radius:      0.25,
		Height:      2,
	}
	buf := EncodeBodies([]rigid.Body{b})
	if len(buf) != BodySize {
		t.Fatalf("len = %d, want %d", len(buf), BodySize)
	}

	f32 := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	checks := []struct {
		name string
		off  int
		want float32
	}{
		{"position.y", 4, 2},
		{"velocity.z", 24, 6},
		{"invMass", 28, 0.5},
		{"orientation.w", 44, 1},
		{"radius", 80, 0.25},
		{"height", 84, 2},
	}
	for _, c := range checks {
		if got := f32(c.off); got != c.want {
			t.Errorf("%s at %d = %v, want %v", c.name, c.off, got, c.want)
		}
	}
	if kind := binary.LittleEndian.Uint32(buf[12:]); kind != uint32(rigid.Cylinder) {
		t.Errorf("kind = %d, want %d", kind, rigid.Cylinder)
	}

	got := GetBody(buf)
	if got.Radius != 0.25 || got.Height != 2 || got.Position != b.Position {
		t.Errorf("decoded body mismatch: %+v", got)
	}
}

func TestPlaneRecord(t *testing.T) {
	p, err := rigid.NewPlane(rigid.PlaneSpec{Normal: mgl64.Vec3{0, 1, 0}, Offset: -1, Extents: [2]float64{3, 4}})
	if err != nil {
		t.Fatal(err)
	}
	got := GetBody(EncodeBodies([]rigid.Body{p}))
	if got.Offset != -1 || got.Extents != [2]float64{3, 4} || got.Normal != p.Normal {
		t.Errorf("plane round trip: %+v", got)
	}
}

func TestJointNegativeIndex(t *testing.T) {
	j := rigid.Joint{Kind: rigid.Distance, BodyA: -3, BodyB: 2, RestLength: 1.5, Target: mgl64.QuatIdent()}
	buf := EncodeJoints([]rigid.Joint{j})
	if binary.LittleEndian.Uint32(buf[4:]) != NoBody {
		t.Error("negative index should encode as NoBody")
	}
	out, err := DecodeJoints(buf)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].BodyA != -1 || out[0].BodyB != 2 || out[0].RestLength != 1.5 {
		t.Errorf("decoded joint = %+v", out[0])
	}
}

func TestContactsRespectCapacity(t *testing.T) {
	cs := []rigid.Contact{{A: 0, B: 1, Depth: 0.1}, {A: 1, B: 2, Depth: 0.2}, {A: 2, B: 3, Depth: 0.3}}
	buf := EncodeContacts(cs, 2)
	if len(buf) != 2*ContactSize {
		t.Fatalf("len = %d", len(buf))
	}
	out, err := DecodeContacts(buf, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[1].B != 2 {
		t.Errorf("decoded = %+v", out)
	}
}

func TestParamsFlags(t *testing.T) {
	p := rigid.DefaultParams()
	p.FloorClamp = true
	p.BroadPhase = rigid.BroadPhaseGrid
	got, err := DecodeParams(EncodeParams(&p))
	if err != nil {
		t.Fatal(err)
	}
	if !got.FloorClamp || !got.Renormalize || got.BroadPhase != rigid.BroadPhaseGrid {
		t.Errorf("flags lost: %+v", got)
	}
	if got.Iterations != p.Iterations || got.ContactIterations != p.ContactIterations {
		t.Errorf("iteration counts lost: %+v", got)
	}
}

func TestRecordSizeMismatch(t *testing.T) {
	if _, err := DecodeBodies(make([]byte, BodySize+3)); !errors.Is(err, ErrRecordSize) {
		t.Errorf("expected ErrRecordSize, got %v", err)
	}
}
