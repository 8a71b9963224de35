package dynamo

import (
	"encoding/json"
	"fmt"
	"math"
)

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v.X * f, v.Y * f, v.Z * f}
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vec3) IsValid() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}

// Mode selects the kinematic model of a body. It is fixed at construction.
type Mode int

const (
	Linear Mode = iota
	Orbital
)

func (m Mode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Orbital:
		return "orbital"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "linear":
		return Linear, nil
	case "orbital":
		return Orbital, nil
	default:
		return 0, &InputError{Field: "mode", Value: s, Err: ErrKinematics}
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	if m != Linear && m != Orbital {
		return nil, &InputError{Field: "mode", Value: m.String(), Err: ErrKinematics}
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Body is one simulated satellite. Linear bodies use Pos and Vel; orbital
// bodies use OrbitRadius, AngularVelocity and Theta. Fields of the other
// mode are ignored.
type Body struct {
	ID     string  `json:"id"`
	Radius float64 `json:"radius"`

	Pos Vec3 `json:"pos"`
	Vel Vec3 `json:"vel"`

	OrbitRadius     float64 `json:"orbit_radius"`
	AngularVelocity float64 `json:"angular_velocity"` // radians per step
	Theta           float64 `json:"theta"`            // accumulated phase, not wrapped

	mode Mode
}

// bodyFields has Body's exported fields without its methods.
type bodyFields Body

func (b Body) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		bodyFields
		Mode Mode `json:"mode"`
	}{bodyFields(b), b.mode})
}

// UnmarshalJSON restores the kinematic mode and rejects bodies the
// constructors would have rejected.
func (b *Body) UnmarshalJSON(data []byte) error {
	var aux struct {
		bodyFields
		Mode Mode `json:"mode"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	decoded := Body(aux.bodyFields)
	decoded.mode = aux.Mode
	if err := decoded.Validate(); err != nil {
		return err
	}
	*b = decoded
	return nil
}

// NewLinear builds a constant-velocity body.
func NewLinear(id string, radius float64, pos, vel Vec3) (Body, error) {
	if err := checkRadius("radius", radius); err != nil {
		return Body{}, err
	}
	if !pos.IsValid() {
		return Body{}, &InputError{Field: "position", Value: pos.String(), Err: ErrNonFinite}
	}
	if !vel.IsValid() {
		return Body{}, &InputError{Field: "velocity", Value: vel.String(), Err: ErrNonFinite}
	}
	return Body{ID: id, Radius: radius, Pos: pos, Vel: vel, mode: Linear}, nil
}

// NewOrbital builds a body on a planar circular orbit around the origin
// starting at the given phase.
func NewOrbital(id string, radius, orbitRadius, angularVelocity, phase float64) (Body, error) {
	if err := checkRadius("radius", radius); err != nil {
		return Body{}, err
	}
	if err := checkRadius("orbit_radius", orbitRadius); err != nil {
		return Body{}, err
	}
	if !finite(angularVelocity) {
		return Body{}, &InputError{Field: "angular_velocity", Value: fmt.Sprint(angularVelocity), Err: ErrNonFinite}
	}
	if !finite(phase) {
		return Body{}, &InputError{Field: "phase", Value: fmt.Sprint(phase), Err: ErrNonFinite}
	}
	return Body{
		ID:              id,
		Radius:          radius,
		OrbitRadius:     orbitRadius,
		AngularVelocity: angularVelocity,
		Theta:           phase,
		mode:            Orbital,
	}, nil
}

func (b Body) Mode() Mode { return b.mode }

// Position returns the effective Cartesian centre of the body.
func (b Body) Position() Vec3 {
	if b.mode == Orbital {
		return Vec3{
			X: b.OrbitRadius * math.Cos(b.Theta),
			Y: 0,
			Z: b.OrbitRadius * math.Sin(b.Theta),
		}
	}
	return b.Pos
}

func (b Body) String() string {
	switch b.mode {
	case Orbital:
		return fmt.Sprintf("%s orbital r=%.2f orbit=%.2f w=%.4f theta=%.4f", b.ID, b.Radius, b.OrbitRadius, b.AngularVelocity, b.Theta)
	default:
		return fmt.Sprintf("%s linear r=%.2f pos=%s vel=%s", b.ID, b.Radius, b.Pos, b.Vel)
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func checkRadius(field string, r float64) error {
	if !finite(r) {
		return &InputError{Field: field, Value: fmt.Sprint(r), Err: ErrNonFinite}
	}
	if r < 0 {
		return &InputError{Field: field, Value: fmt.Sprint(r), Err: ErrNegativeRadius}
	}
	return nil
}

// Validate re-checks a body that may have been assembled by hand.
func (b Body) Validate() error {
	if err := checkRadius("radius", b.Radius); err != nil {
		return err
	}
	switch b.mode {
	case Linear:
		if !b.Pos.IsValid() || !b.Vel.IsValid() {
			return &InputError{Field: "kinematics", Value: b.String(), Err: ErrNonFinite}
		}
	case Orbital:
		if err := checkRadius("orbit_radius", b.OrbitRadius); err != nil {
			return err
		}
		if !finite(b.AngularVelocity) {
			return &InputError{Field: "angular_velocity", Value: fmt.Sprint(b.AngularVelocity), Err: ErrNonFinite}
		}
		if !finite(b.Theta) {
			return &InputError{Field: "phase", Value: fmt.Sprint(b.Theta), Err: ErrNonFinite}
		}
	default:
		return &InputError{Field: "mode", Value: b.mode.String(), Err: ErrKinematics}
	}
	return nil
}

const KindCollision = "collision"

// Event reports a pair of bodies whose centres are closer than the sum of
// their radii. Step is the tick number in live mode and the lookahead step
// in a forecast.
type Event struct {
	Kind     string  `json:"kind"`
	A        string  `json:"a"`
	B        string  `json:"b"`
	Step     int     `json:"step"`
	Distance float64 `json:"distance"`
}

func (e Event) String() string {
	return fmt.Sprintf("%s between %s and %s at step %d (d=%.3f)", e.Kind, e.A, e.B, e.Step, e.Distance)
}

// Integrator moves bodies forward by whole steps.
type Integrator interface {
	Advance(b *Body, steps int)
	Project(b Body, steps int) Body
}
