package metrics

import "github.com/san-kum/rigidsim/internal/sim"

// ContactCount averages the number of contacts per step.
type ContactCount struct {
	total   int
	samples int
}

func NewContactCount() *ContactCount { return &ContactCount{} }

func (c *ContactCount) Name() string { return "contacts" }

func (c *ContactCount) Observe(w *sim.World) {
	c.total += len(w.Contacts())
	c.samples++
}

func (c *ContactCount) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.total) / float64(c.samples)
}

func (c *ContactCount) Reset() {
	c.total = 0
	c.samples = 0
}

// MaxPenetration is the deepest contact seen in any step. Contacts are
// recorded before resolution, so this measures how far bodies sink within
// one timestep.
type MaxPenetration struct {
	depth float64
}

func NewMaxPenetration() *MaxPenetration { return &MaxPenetration{} }

func (m *MaxPenetration) Name() string { return "max_penetration" }

func (m *MaxPenetration) Observe(w *sim.World) {
	for _, c := range w.Contacts() {
		if c.Depth > m.depth {
			m.depth = c.Depth
		}
	}
}

func (m *MaxPenetration) Value() float64 { return m.depth }

func (m *MaxPenetration) Reset() { m.depth = 0 }

// Standard returns the metrics the CLI attaches to every run.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewEnergyDrift(),
		NewStability(1e3),
		NewContactCount(),
		NewMaxPenetration(),
	}
}
