package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/satsim/internal/dynamo"
)

const (
	DefaultStepScale = 0.1
	DefaultHorizon   = 100
	DefaultMode      = "scan-all"
	DefaultTickMs    = 50
)

// Scenario describes a population and how to run it.
type Scenario struct {
	Name      string       `yaml:"name"`
	StepScale float64      `yaml:"step_scale"`
	Horizon   int          `yaml:"horizon"`
	Mode      string       `yaml:"mode"`
	TickMs    int          `yaml:"tick_ms"`
	Bodies    []BodyConfig `yaml:"bodies"`
}

// BodyConfig carries exactly one of Linear or Orbital.
type BodyConfig struct {
	ID      string         `yaml:"id"`
	Radius  *float64       `yaml:"radius"`
	Linear  *LinearConfig  `yaml:"linear,omitempty"`
	Orbital *OrbitalConfig `yaml:"orbital,omitempty"`
}

// LinearConfig takes 2 (z = 0) or 3 components per vector.
type LinearConfig struct {
	Pos []float64 `yaml:"pos,flow"`
	Vel []float64 `yaml:"vel,flow"`
}

type OrbitalConfig struct {
	OrbitRadius     float64 `yaml:"orbit_radius"`
	AngularVelocity float64 `yaml:"angular_velocity"`
	Phase           float64 `yaml:"phase"`
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Name:      "custom",
		StepScale: DefaultStepScale,
		Horizon:   DefaultHorizon,
		Mode:      DefaultMode,
		TickMs:    DefaultTickMs,
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Scenario, error) {
	sc := DefaultScenario()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Scenario) TickInterval() time.Duration {
	if s.TickMs <= 0 {
		return DefaultTickMs * time.Millisecond
	}
	return time.Duration(s.TickMs) * time.Millisecond
}

// Build turns the body list into validated bodies, in file order.
func (s *Scenario) Build() ([]dynamo.Body, error) {
	bodies := make([]dynamo.Body, 0, len(s.Bodies))
	for i, bc := range s.Bodies {
		b, err := bc.Build()
		if err != nil {
			return nil, fmt.Errorf("body %d (%s): %w", i+1, bc.ID, err)
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

func (bc BodyConfig) Build() (dynamo.Body, error) {
	if bc.Radius == nil {
		return dynamo.Body{}, &dynamo.InputError{Field: "radius", Err: dynamo.ErrMissing}
	}
	switch {
	case bc.Linear != nil && bc.Orbital != nil:
		return dynamo.Body{}, &dynamo.InputError{Field: "kinematics", Value: "linear+orbital", Err: dynamo.ErrKinematics}
	case bc.Linear != nil:
		pos, err := vec("pos", bc.Linear.Pos)
		if err != nil {
			return dynamo.Body{}, err
		}
		vel, err := vec("vel", bc.Linear.Vel)
		if err != nil {
			return dynamo.Body{}, err
		}
		return dynamo.NewLinear(bc.ID, *bc.Radius, pos, vel)
	case bc.Orbital != nil:
		o := bc.Orbital
		return dynamo.NewOrbital(bc.ID, *bc.Radius, o.OrbitRadius, o.AngularVelocity, o.Phase)
	default:
		return dynamo.Body{}, &dynamo.InputError{Field: "kinematics", Err: dynamo.ErrKinematics}
	}
}

func vec(field string, v []float64) (dynamo.Vec3, error) {
	switch len(v) {
	case 2:
		return dynamo.Vec3{X: v[0], Y: v[1]}, nil
	case 3:
		return dynamo.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
	default:
		return dynamo.Vec3{}, &dynamo.InputError{
			Field: field,
			Value: fmt.Sprint(v),
			Err:   fmt.Errorf("want 2 or 3 components, got %d", len(v)),
		}
	}
}

// FromBodies is the inverse of Build; used when storing a scenario.
func FromBodies(name string, stepScale float64, horizon int, mode string, bodies []dynamo.Body) *Scenario {
	sc := DefaultScenario()
	sc.Name = name
	sc.StepScale = stepScale
	sc.Horizon = horizon
	sc.Mode = mode
	for _, b := range bodies {
		r := b.Radius
		bc := BodyConfig{ID: b.ID, Radius: &r}
		if b.Mode() == dynamo.Orbital {
			bc.Orbital = &OrbitalConfig{OrbitRadius: b.OrbitRadius, AngularVelocity: b.AngularVelocity, Phase: b.Theta}
		} else {
			bc.Linear = &LinearConfig{
				Pos: []float64{b.Pos.X, b.Pos.Y, b.Pos.Z},
				Vel: []float64{b.Vel.X, b.Vel.Y, b.Vel.Z},
			}
		}
		sc.Bodies = append(sc.Bodies, bc)
	}
	return sc
}
