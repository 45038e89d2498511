package config

import (
	"math"
	"sort"
)

func ground() BodyConfig {
	return BodyConfig{Shape: "plane", Normal: [3]float64{0, 1, 0}, Friction: 0.5}
}

func scene(name string, steps int, bodies []BodyConfig, joints []JointConfig) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Steps = steps
	cfg.Bodies = bodies
	cfg.Joints = joints
	return cfg
}

var Presets = map[string]*Config{
	"drop": scene("drop", 300, []BodyConfig{
		ground(),
		{Shape: "sphere", Position: [3]float64{0, 5, 0}, Mass: 1, Radius: 0.5, Friction: 0.5, Restitution: 0.6},
	}, nil),

	"stack": scene("stack", 500, []BodyConfig{
		ground(),
		{Shape: "box", Position: [3]float64{0, 0.5, 0}, Mass: 1, HalfExtents: [3]float64{0.5, 0.5, 0.5}, Friction: 0.6},
		{Shape: "box", Position: [3]float64{0, 1.5, 0}, Mass: 1, HalfExtents: [3]float64{0.5, 0.5, 0.5}, Friction: 0.6},
		{Shape: "box", Position: [3]float64{0, 2.5, 0}, Mass: 1, HalfExtents: [3]float64{0.5, 0.5, 0.5}, Friction: 0.6},
		{Shape: "box", Position: [3]float64{0, 3.5, 0}, Mass: 1, HalfExtents: [3]float64{0.5, 0.5, 0.5}, Friction: 0.6},
	}, nil),

	"pendulum": scene("pendulum", 1000, []BodyConfig{
		{Shape: "sphere", Position: [3]float64{0, 5, 0}, Radius: 0.1},
		{Shape: "sphere", Position: [3]float64{2, 5, 0}, Mass: 1, Radius: 0.25},
		{Shape: "sphere", Position: [3]float64{4, 5, 0}, Mass: 1, Radius: 0.25},
	}, []JointConfig{
		{Type: "distance", A: 0, B: 1, RestLength: 2},
		{Type: "distance", A: 1, B: 2, RestLength: 2},
	}),

	"hinge": scene("hinge", 600, []BodyConfig{
		{Shape: "box", Position: [3]float64{0, 2, 0}, HalfExtents: [3]float64{0.1, 1, 0.1}},
		{Shape: "box", Position: [3]float64{1.1, 2, 0}, Mass: 2, HalfExtents: [3]float64{1, 1, 0.05}},
	}, []JointConfig{{
		Type:    "revolute",
		A:       0,
		B:       1,
		AnchorA: [3]float64{0.1, 0, 0},
		AnchorB: [3]float64{-1, 0, 0},
		Axis:    [3]float64{0, 1, 0},
		Limits:  &LimitsConfig{Lower: -math.Pi / 2, Upper: math.Pi / 2},
		Motor:   &MotorConfig{Speed: 1, MaxForce: 50},
	}}),

	"slider": scene("slider", 600, []BodyConfig{
		{Shape: "box", Position: [3]float64{0, 1, 0}, HalfExtents: [3]float64{0.2, 0.2, 0.2}},
		{Shape: "box", Position: [3]float64{1, 1, 0}, Mass: 1, HalfExtents: [3]float64{0.2, 0.2, 0.2}},
	}, []JointConfig{{
		Type:   "prismatic",
		A:      0,
		B:      1,
		Axis:   [3]float64{1, 0, 0},
		Limits: &LimitsConfig{Lower: 0.5, Upper: 3},
		Motor:  &MotorConfig{Speed: 0.5, MaxForce: 20},
	}}),

	"mixed": func() *Config {
		cfg := scene("mixed", 800, []BodyConfig{
			ground(),
			{Shape: "sphere", Position: [3]float64{-2, 3, 0}, Mass: 1, Radius: 0.5, Friction: 0.4, Restitution: 0.4},
			{Shape: "box", Position: [3]float64{0, 4, 0}, Rotation: RotationConfig{Axis: [3]float64{1, 1, 0}, Angle: 0.4}, Mass: 2, HalfExtents: [3]float64{0.5, 0.3, 0.4}, Friction: 0.5},
			{Shape: "cylinder", Position: [3]float64{2, 3, 0}, Mass: 1.5, Radius: 0.4, Height: 1, Friction: 0.5},
			{Shape: "sphere", Position: [3]float64{0.1, 6, 0.1}, Mass: 0.5, Radius: 0.3, Friction: 0.4, Restitution: 0.2},
		}, []JointConfig{
			{Type: "distance", A: 2, B: 4, RestLength: 2, Compliance: 1e-4},
		})
		cfg.Params.BroadPhase = "grid"
		return cfg
	}(),
}

// GetPreset returns a copy of the named scene, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.Bodies = append([]BodyConfig(nil), cfg.Bodies...)
	c.Joints = append([]JointConfig(nil), cfg.Joints...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
