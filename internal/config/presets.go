package config

import (
	"math"
	"sort"
)

func f(v float64) *float64 { return &v }

var Presets = map[string]*Scenario{
	"leaving": {
		Name: "leaving", StepScale: 0.1, Horizon: 100, Mode: "scan-all", TickMs: 16,
		Bodies: []BodyConfig{
			{ID: "Sat-1", Radius: f(10), Linear: &LinearConfig{Pos: []float64{200, 0, 0}, Vel: []float64{0, 1, 0}}},
			{ID: "Sat-2", Radius: f(10), Linear: &LinearConfig{Pos: []float64{200, 30, 0}, Vel: []float64{0, -1, 0}}},
			{ID: "Sat-3", Radius: f(10), Linear: &LinearConfig{Pos: []float64{-150, 0, 80}, Vel: []float64{2, 0, -1}}},
		},
	},
	"orbiting": {
		Name: "orbiting", StepScale: 0.1, Horizon: 360, Mode: "scan-all", TickMs: 16,
		Bodies: []BodyConfig{
			{ID: "Sat-1", Radius: f(10), Orbital: &OrbitalConfig{OrbitRadius: 150, AngularVelocity: 0.05}},
			{ID: "Sat-2", Radius: f(10), Orbital: &OrbitalConfig{OrbitRadius: 150, AngularVelocity: -0.03}},
			{ID: "Sat-3", Radius: f(8), Orbital: &OrbitalConfig{OrbitRadius: 220, AngularVelocity: 0.02, Phase: math.Pi / 2}},
		},
	},
	"canvas": {
		Name: "canvas", StepScale: 1, Horizon: 400, Mode: "scan-all", TickMs: 50,
		Bodies: []BodyConfig{
			{ID: "Sat-1", Radius: f(10), Linear: &LinearConfig{Pos: []float64{100, 100}, Vel: []float64{2, 1}}},
			{ID: "Sat-2", Radius: f(10), Linear: &LinearConfig{Pos: []float64{700, 500}, Vel: []float64{-2, -1}}},
		},
	},
	"headon": {
		Name: "headon", StepScale: 0.1, Horizon: 50, Mode: "scan-all", TickMs: 50,
		Bodies: []BodyConfig{
			{ID: "A", Radius: f(10), Linear: &LinearConfig{Pos: []float64{0, 0, 0}, Vel: []float64{1, 0, 0}}},
			{ID: "B", Radius: f(10), Linear: &LinearConfig{Pos: []float64{5, 0, 0}, Vel: []float64{-1, 0, 0}}},
		},
	},
	"antipodal": {
		Name: "antipodal", StepScale: 0.1, Horizon: 360, Mode: "scan-all", TickMs: 16,
		Bodies: []BodyConfig{
			{ID: "A", Radius: f(5), Orbital: &OrbitalConfig{OrbitRadius: 100, AngularVelocity: 0.05}},
			{ID: "B", Radius: f(5), Orbital: &OrbitalConfig{OrbitRadius: 100, AngularVelocity: 0.05, Phase: math.Pi}},
		},
	},
}

// GetPreset returns a copy so callers can override fields freely.
func GetPreset(name string) *Scenario {
	sc, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *sc
	cp.Bodies = append([]BodyConfig(nil), sc.Bodies...)
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
