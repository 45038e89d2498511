package storage

import (
	"fmt"

	"github.com/san-kum/rigidsim/internal/sim"
)

// Trajectory holds one row per recorded step: the position and velocity of
// every body, flattened as x, y, z, vx, vy, vz per body.
type Trajectory struct {
	Columns []string
	Times   []float64
	States  [][]float64
}

// Column returns the series for one column, or nil.
func (t *Trajectory) Column(name string) []float64 {
	for c, n := range t.Columns {
		if n != name {
			continue
		}
		out := make([]float64, len(t.States))
		for i, row := range t.States {
			if c < len(row) {
				out[i] = row[c]
			}
		}
		return out
	}
	return nil
}

// Recorder is a sim.Observer that samples the world every Every steps.
type Recorder struct {
	Every int
	traj  Trajectory
}

func NewRecorder(every int) *Recorder {
	return &Recorder{Every: max(every, 1)}
}

func columns(n int) []string {
	out := make([]string, 0, n*6)
	for i := 0; i < n; i++ {
		for _, f := range []string{"x", "y", "z", "vx", "vy", "vz"} {
			out = append(out, fmt.Sprintf("b%d_%s", i, f))
		}
	}
	return out
}

// Record samples the world unconditionally.
func (r *Recorder) Record(w *sim.World) {
	bodies := w.Bodies()
	if r.traj.Columns == nil {
		r.traj.Columns = columns(len(bodies))
	}
	row := make([]float64, 0, len(bodies)*6)
	for _, b := range bodies {
		row = append(row, b.Position[0], b.Position[1], b.Position[2], b.Velocity[0], b.Velocity[1], b.Velocity[2])
	}
	r.traj.Times = append(r.traj.Times, w.Time())
	r.traj.States = append(r.traj.States, row)
}

func (r *Recorder) OnStep(w *sim.World) {
	if w.Steps()%r.Every == 0 {
		r.Record(w)
	}
}

func (r *Recorder) Trajectory() *Trajectory {
	return &r.traj
}
