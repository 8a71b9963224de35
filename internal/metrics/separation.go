package metrics

import (
	"math"

	"github.com/san-kum/satsim/internal/collision"
	"github.com/san-kum/satsim/internal/dynamo"
)

// MinSeparation tracks the smallest envelope gap seen between any pair.
type MinSeparation struct {
	min float64
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{min: math.Inf(1)}
}

func (m *MinSeparation) Name() string { return "min_separation" }

func (m *MinSeparation) Observe(bodies []dynamo.Body, tick int) {
	collision.Pairs(bodies, func(i, j int) bool {
		if s := collision.Separation(bodies[i], bodies[j]); s < m.min {
			m.min = s
		}
		return true
	})
}

// Value is +Inf until a pair has been observed.
func (m *MinSeparation) Value() float64 { return m.min }

func (m *MinSeparation) Reset() { m.min = math.Inf(1) }
