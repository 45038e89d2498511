package sim

import (
	"context"
	"fmt"
)

// Run advances the world by steps timesteps, checking ctx before each one.
// Metrics are reset at the start; observers and metrics see the world after
// every completed step. On error the partial result is returned with it.
func (w *World) Run(ctx context.Context, steps int) (*Result, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", steps)
	}

	result := &Result{Metrics: make(map[string]float64)}
	for _, m := range w.metrics {
		m.Reset()
	}

	finish := func() *Result {
		for _, m := range w.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
		result.Time = w.time
		result.Digest = w.Digest()
		result.Final = w.Bodies()
		return result
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return finish(), ctx.Err()
		default:
		}

		if err := w.Step(); err != nil {
			return finish(), err
		}
		result.StepsTaken++

		for _, m := range w.metrics {
			m.Observe(w)
		}
		for _, obs := range w.observers {
			obs.OnStep(w)
		}
	}
	return finish(), nil
}
