package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/sim"
)

// Stability is the fraction of steps in which every body had a finite
// state and a speed under threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(w *sim.World) {
	s.samples++
	for _, b := range w.Bodies() {
		speed := b.Velocity.Len()
		if math.IsNaN(speed) || math.IsNaN(b.Position.Len()) || speed > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
