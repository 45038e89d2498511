package sim

import "github.com/san-kum/rigidsim/internal/rigid"

// Mode selects the pipeline Step runs.
type Mode uint8

const (
	// ModeDevice dispatches the four stages through the world's backend.
	ModeDevice Mode = iota
	// ModeReference runs the stages directly on the body store.
	ModeReference
)

func (m Mode) String() string {
	if m == ModeReference {
		return "reference"
	}
	return "device"
}

func ParseMode(name string) (Mode, bool) {
	switch name {
	case "device", "":
		return ModeDevice, true
	case "reference":
		return ModeReference, true
	}
	return 0, false
}

// Metric accumulates a scalar over the steps of a run.
type Metric interface {
	Name() string
	Observe(w *World)
	Value() float64
	Reset()
}

// Observer is called after every completed step of a run.
type Observer interface {
	OnStep(w *World)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(w *World)

func (f ObserverFunc) OnStep(w *World) { f(w) }

type Result struct {
	StepsTaken int
	Time       float64
	Metrics    map[string]float64
	Digest     uint64
	Final      []rigid.Body
}
