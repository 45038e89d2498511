package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/rigidsim/internal/rigid"
	"github.com/san-kum/rigidsim/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Backend != "device" {
		t.Errorf("Backend = %s, want device", cfg.Backend)
	}
	if cfg.Params.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Steps <= 0 {
		t.Error("steps should be positive")
	}
	if _, err := cfg.RigidParams(); err != nil {
		t.Errorf("default params invalid: %v", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	want := GetPreset("hinge")
	if err := Save(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Bodies) != len(want.Bodies) || len(got.Joints) != len(want.Joints) {
		t.Fatalf("loaded %d bodies %d joints, want %d %d", len(got.Bodies), len(got.Joints), len(want.Bodies), len(want.Joints))
	}
	if got.Joints[0].Motor == nil || got.Joints[0].Motor.MaxForce != 50 {
		t.Errorf("motor = %+v, want max force 50", got.Joints[0].Motor)
	}
	if got.Params.Dt != want.Params.Dt {
		t.Errorf("dt = %v, want %v", got.Params.Dt, want.Params.Dt)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("name: partial\nparams:\n  dt: 0.005\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Params.Dt != 0.005 {
		t.Errorf("dt = %v, want 0.005", cfg.Params.Dt)
	}
	if cfg.Params.Iterations != rigid.DefaultIterations || !cfg.Params.Renormalize {
		t.Errorf("defaults lost: %+v", cfg.Params)
	}
	if cfg.Steps != DefaultSteps {
		t.Errorf("steps = %d, want %d", cfg.Steps, DefaultSteps)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("drop")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Bodies[1].Restitution != 0.6 {
		t.Errorf("expected restitution 0.6, got %f", cfg.Bodies[1].Restitution)
	}
	cfg.Steps = 1
	if Presets["drop"].Steps == 1 {
		t.Error("GetPreset returned the shared preset")
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("ListPresets() has %d names, want %d", len(names), len(Presets))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}

func TestBuildPresets(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			w, err := Build(cfg, sim.WithMode(sim.ModeReference))
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if w.NumBodies() != len(cfg.Bodies) || w.NumJoints() != len(cfg.Joints) {
				t.Errorf("world has %d bodies %d joints", w.NumBodies(), w.NumJoints())
			}
			for i := 0; i < 10; i++ {
				if err := w.Step(); err != nil {
					t.Fatalf("step %d: %v", i, err)
				}
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"bad dt", func(c *Config) { c.Params.Dt = -1 }, rigid.ErrNonPositiveDt},
		{"bad broad phase", func(c *Config) { c.Params.BroadPhase = "octree" }, rigid.ErrInvalidParameter},
		{"bad shape", func(c *Config) { c.Bodies = []BodyConfig{{Shape: "cone"}} }, rigid.ErrInvalidShape},
		{"negative mass", func(c *Config) {
			c.Bodies = []BodyConfig{{Shape: "sphere", Mass: -1, Radius: 1}}
		}, rigid.ErrNegativeMass},
		{"bad joint", func(c *Config) { c.Joints = []JointConfig{{Type: "weld"}} }, rigid.ErrInvalidParameter},
		{"same body", func(c *Config) { c.Joints = []JointConfig{{Type: "ball", A: 1, B: 1}} }, rigid.ErrSameBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			_, err := Build(cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("Build err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuildUnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "quantum"
	if _, err := Build(cfg); err == nil {
		t.Error("expected error for unknown backend")
	}
}
