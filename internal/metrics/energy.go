package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/rigid"
	"github.com/san-kum/rigidsim/internal/sim"
)

// TotalEnergy is the translational kinetic energy plus the gravitational
// potential energy of every dynamic body, with zero potential at the origin.
func TotalEnergy(bodies []rigid.Body, gravity mgl64.Vec3) float64 {
	var e float64
	for i := range bodies {
		b := &bodies[i]
		if b.IsStatic() {
			continue
		}
		m := b.Mass()
		e += 0.5*m*b.Velocity.Dot(b.Velocity) - m*gravity.Dot(b.Position)
	}
	return e
}

// Energy averages TotalEnergy over the observed steps.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(w *sim.World) {
	e.totalEnergy += TotalEnergy(w.Bodies(), w.Params().Gravity)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change of TotalEnergy from the first
// observed step.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(w *sim.World) {
	energy := TotalEnergy(w.Bodies(), w.Params().Gravity)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
