package rigid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BroadPhase selects how candidate body pairs are enumerated.
type BroadPhase uint8

const (
	// BroadPhaseExhaustive tests every pair.
	BroadPhaseExhaustive BroadPhase = iota
	// BroadPhaseGrid buckets bounded bodies into a uniform grid first.
	BroadPhaseGrid
)

func (b BroadPhase) String() string {
	if b == BroadPhaseGrid {
		return "grid"
	}
	return "exhaustive"
}

const (
	DefaultDt                   = 0.01
	DefaultIterations           = 8
	DefaultContactIterations    = 4
	DefaultRestitutionThreshold = 0.05
	DefaultCellSize             = 4.0
	DefaultContactCapacity      = 1024
)

// Params are the world-wide simulation settings. They are read-only while a
// step runs.
type Params struct {
	Gravity mgl64.Vec3
	Dt      float64

	// Iterations is the number of joint solver sweeps per step.
	Iterations int
	// ContactIterations is the number of contact resolver passes per step.
	ContactIterations int

	// FloorClamp enables the sphere-only ground clamp in the integrator.
	FloorClamp  bool
	FloorHeight float64

	// Renormalize keeps orientations unit length after integration.
	Renormalize bool

	// RestitutionThreshold is the approach speed below which contacts do
	// not bounce.
	RestitutionThreshold float64

	BroadPhase BroadPhase
	CellSize   float64

	ContactCapacity int
}

func DefaultParams() Params {
	return Params{
		Gravity:              mgl64.Vec3{0, -9.81, 0},
		Dt:                   DefaultDt,
		Iterations:           DefaultIterations,
		ContactIterations:    DefaultContactIterations,
		Renormalize:          true,
		RestitutionThreshold: DefaultRestitutionThreshold,
		BroadPhase:           BroadPhaseExhaustive,
		CellSize:             DefaultCellSize,
		ContactCapacity:      DefaultContactCapacity,
	}
}

func (p Params) Validate() error {
	if !(p.Dt > 0) || math.IsInf(p.Dt, 0) {
		return configErr("configure", "dt", ErrNonPositiveDt)
	}
	for i := 0; i < 3; i++ {
		if math.IsNaN(p.Gravity[i]) || math.IsInf(p.Gravity[i], 0) {
			return configErr("configure", "gravity", ErrInvalidParameter)
		}
	}
	if p.Iterations < 1 {
		return configErr("configure", "iterations", ErrInvalidParameter)
	}
	if p.ContactIterations < 1 {
		return configErr("configure", "contact_iterations", ErrInvalidParameter)
	}
	if p.RestitutionThreshold < 0 {
		return configErr("configure", "restitution_threshold", ErrInvalidParameter)
	}
	if p.BroadPhase == BroadPhaseGrid && !(p.CellSize > 0) {
		return configErr("configure", "cell_size", ErrInvalidParameter)
	}
	if p.BroadPhase > BroadPhaseGrid {
		return configErr("configure", "broad_phase", ErrInvalidParameter)
	}
	if p.ContactCapacity < 0 {
		return configErr("configure", "contact_capacity", ErrInvalidParameter)
	}
	return nil
}
