package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/compute"
	"github.com/san-kum/rigidsim/internal/rigid"
	"github.com/san-kum/rigidsim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSteps   = 500
	DefaultBackend = "device"
	DefaultMode    = "device"
)

// Config is a scene file: world parameters, bodies, joints and how to run
// them.
type Config struct {
	Name    string        `yaml:"name"`
	Backend string        `yaml:"backend"`
	Mode    string        `yaml:"mode"`
	Steps   int           `yaml:"steps"`
	Params  ParamsConfig  `yaml:"params"`
	Bodies  []BodyConfig  `yaml:"bodies"`
	Joints  []JointConfig `yaml:"joints"`
}

type ParamsConfig struct {
	Gravity              [3]float64 `yaml:"gravity"`
	Dt                   float64    `yaml:"dt"`
	Iterations           int        `yaml:"iterations"`
	ContactIterations    int        `yaml:"contact_iterations"`
	FloorClamp           bool       `yaml:"floor_clamp"`
	FloorHeight          float64    `yaml:"floor_height"`
	Renormalize          bool       `yaml:"renormalize"`
	RestitutionThreshold float64    `yaml:"restitution_threshold"`
	BroadPhase           string     `yaml:"broad_phase"`
	CellSize             float64    `yaml:"cell_size"`
	ContactCapacity      int        `yaml:"contact_capacity"`
}

// RotationConfig is an axis-angle orientation. A zero axis means identity.
type RotationConfig struct {
	Axis  [3]float64 `yaml:"axis"`
	Angle float64    `yaml:"angle"`
}

type BodyConfig struct {
	Shape           string         `yaml:"shape"`
	Position        [3]float64     `yaml:"position"`
	Velocity        [3]float64     `yaml:"velocity,omitempty"`
	Rotation        RotationConfig `yaml:"rotation,omitempty"`
	AngularVelocity [3]float64     `yaml:"angular_velocity,omitempty"`
	Mass            float64        `yaml:"mass"`
	Friction        float64        `yaml:"friction,omitempty"`
	Restitution     float64        `yaml:"restitution,omitempty"`

	Radius      float64    `yaml:"radius,omitempty"`
	HalfExtents [3]float64 `yaml:"half_extents,omitempty"`
	Height      float64    `yaml:"height,omitempty"`
	Normal      [3]float64 `yaml:"normal,omitempty"`
	Offset      float64    `yaml:"offset,omitempty"`
	Extents     [2]float64 `yaml:"extents,omitempty"`
}

type LimitsConfig struct {
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

type MotorConfig struct {
	Speed    float64 `yaml:"speed"`
	MaxForce float64 `yaml:"max_force"`
}

type JointConfig struct {
	Type       string        `yaml:"type"`
	A          int           `yaml:"a"`
	B          int           `yaml:"b"`
	AnchorA    [3]float64    `yaml:"anchor_a,omitempty"`
	AnchorB    [3]float64    `yaml:"anchor_b,omitempty"`
	Compliance float64       `yaml:"compliance,omitempty"`
	RestLength float64       `yaml:"rest_length,omitempty"`
	Axis       [3]float64    `yaml:"axis,omitempty"`
	Limits     *LimitsConfig `yaml:"limits,omitempty"`
	Motor      *MotorConfig  `yaml:"motor,omitempty"`
}

func DefaultParamsConfig() ParamsConfig {
	p := rigid.DefaultParams()
	return ParamsConfig{
		Gravity:              p.Gravity,
		Dt:                   p.Dt,
		Iterations:           p.Iterations,
		ContactIterations:    p.ContactIterations,
		Renormalize:          p.Renormalize,
		RestitutionThreshold: p.RestitutionThreshold,
		BroadPhase:           p.BroadPhase.String(),
		CellSize:             p.CellSize,
		ContactCapacity:      p.ContactCapacity,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Name:    "scene",
		Backend: DefaultBackend,
		Mode:    DefaultMode,
		Steps:   DefaultSteps,
		Params:  DefaultParamsConfig(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) RigidParams() (rigid.Params, error) {
	p := c.Params
	out := rigid.Params{
		Gravity:              p.Gravity,
		Dt:                   p.Dt,
		Iterations:           p.Iterations,
		ContactIterations:    p.ContactIterations,
		FloorClamp:           p.FloorClamp,
		FloorHeight:          p.FloorHeight,
		Renormalize:          p.Renormalize,
		RestitutionThreshold: p.RestitutionThreshold,
		CellSize:             p.CellSize,
		ContactCapacity:      p.ContactCapacity,
	}
	switch p.BroadPhase {
	case "", "exhaustive":
		out.BroadPhase = rigid.BroadPhaseExhaustive
	case "grid":
		out.BroadPhase = rigid.BroadPhaseGrid
	default:
		return out, &rigid.ConfigurationError{Op: "configure", Field: "broad_phase", Err: rigid.ErrInvalidParameter}
	}
	return out, out.Validate()
}

func (r RotationConfig) Quat() mgl64.Quat {
	axis := mgl64.Vec3(r.Axis)
	if axis.Len() < 1e-12 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(r.Angle, axis.Normalize())
}

func (b BodyConfig) spec() rigid.BodySpec {
	return rigid.BodySpec{
		Position:        b.Position,
		Velocity:        b.Velocity,
		Orientation:     b.Rotation.Quat(),
		AngularVelocity: b.AngularVelocity,
		Mass:            b.Mass,
		Friction:        b.Friction,
		Restitution:     b.Restitution,
	}
}

func addBody(w *sim.World, b BodyConfig) (int, error) {
	kind, ok := rigid.ParseShapeKind(b.Shape)
	if !ok {
		return -1, &rigid.ConfigurationError{Op: "add_body", Field: "shape", Err: rigid.ErrInvalidShape}
	}
	switch kind {
	case rigid.Sphere:
		return w.AddSphere(rigid.SphereSpec{BodySpec: b.spec(), Radius: b.Radius})
	case rigid.Box:
		return w.AddBox(rigid.BoxSpec{BodySpec: b.spec(), HalfExtents: b.HalfExtents})
	case rigid.Cylinder:
		return w.AddCylinder(rigid.CylinderSpec{BodySpec: b.spec(), Radius: b.Radius, Height: b.Height})
	default:
		return w.AddPlane(rigid.PlaneSpec{
			Normal:      b.Normal,
			Offset:      b.Offset,
			Extents:     b.Extents,
			Friction:    b.Friction,
			Restitution: b.Restitution,
		})
	}
}

func (j JointConfig) common() rigid.JointSpec {
	return rigid.JointSpec{AnchorA: j.AnchorA, AnchorB: j.AnchorB, Compliance: j.Compliance}
}

func (j JointConfig) axisSpec() rigid.AxisSpec {
	s := rigid.AxisSpec{JointSpec: j.common(), Axis: j.Axis}
	if j.Limits != nil {
		s.Limits = rigid.Limits{Enabled: true, Lower: j.Limits.Lower, Upper: j.Limits.Upper}
	}
	if j.Motor != nil {
		s.Motor = rigid.Motor{Enabled: true, Speed: j.Motor.Speed, MaxForce: j.Motor.MaxForce}
	}
	return s
}

func addJoint(w *sim.World, j JointConfig) (int, error) {
	kind, ok := rigid.ParseJointKind(j.Type)
	if !ok {
		return -1, &rigid.ConfigurationError{Op: "add_joint", Field: "type", Err: rigid.ErrInvalidParameter}
	}
	switch kind {
	case rigid.Distance:
		return w.AddDistanceJoint(j.A, j.B, rigid.DistanceSpec{JointSpec: j.common(), RestLength: j.RestLength})
	case rigid.Revolute:
		return w.AddRevoluteJoint(j.A, j.B, j.axisSpec())
	case rigid.Prismatic:
		return w.AddPrismaticJoint(j.A, j.B, j.axisSpec())
	case rigid.Ball:
		return w.AddBallJoint(j.A, j.B, j.common())
	default:
		return w.AddFixedJoint(j.A, j.B, j.common())
	}
}

// Build creates a world from the scene. Options are applied after the
// scene's own backend and mode, so callers can override them.
func Build(cfg *Config, opts ...sim.Option) (*sim.World, error) {
	p, err := cfg.RigidParams()
	if err != nil {
		return nil, err
	}
	mode, ok := sim.ParseMode(cfg.Mode)
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	backendName := cfg.Backend
	if backendName == "" {
		backendName = DefaultBackend
	}
	be, err := compute.New(backendName)
	if err != nil {
		return nil, err
	}

	all := append([]sim.Option{sim.WithBackend(be), sim.WithMode(mode)}, opts...)
	w, err := sim.New(p, all...)
	if err != nil {
		return nil, err
	}
	for i, b := range cfg.Bodies {
		if _, err := addBody(w, b); err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
	}
	for i, j := range cfg.Joints {
		if _, err := addJoint(w, j); err != nil {
			return nil, fmt.Errorf("joint %d: %w", i, err)
		}
	}
	return w, nil
}
