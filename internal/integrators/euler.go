package integrators

import "github.com/san-kum/satsim/internal/dynamo"

// DefaultStepScale is the velocity multiplier per step of the 3D views.
const DefaultStepScale = 0.1

// Euler advances bodies by fixed steps. Linear bodies move by
// Vel*StepScale per step; orbital bodies add AngularVelocity to their phase
// per step and ignore StepScale.
type Euler struct {
	StepScale float64
}

func NewEuler(stepScale float64) *Euler {
	return &Euler{StepScale: stepScale}
}

func (e *Euler) Advance(b *dynamo.Body, steps int) {
	if steps == 0 {
		return
	}
	n := float64(steps)
	switch b.Mode() {
	case dynamo.Orbital:
		b.Theta += b.AngularVelocity * n
	default:
		b.Pos = b.Pos.Add(b.Vel.Scale(e.StepScale * n))
	}
}

// Project returns b advanced by steps without touching the caller's copy.
func (e *Euler) Project(b dynamo.Body, steps int) dynamo.Body {
	e.Advance(&b, steps)
	return b
}
