package metrics

import (
	"github.com/san-kum/satsim/internal/collision"
	"github.com/san-kum/satsim/internal/dynamo"
)

// ContactRatio is the fraction of observed ticks with at least one
// colliding pair.
type ContactRatio struct {
	name     string
	contacts int
	samples  int
}

func NewContactRatio() *ContactRatio {
	return &ContactRatio{name: "contact_ratio"}
}

func (c *ContactRatio) Name() string {
	return c.name
}

func (c *ContactRatio) Observe(bodies []dynamo.Body, tick int) {
	c.samples++
	hit := false
	collision.Pairs(bodies, func(i, j int) bool {
		hit = collision.Colliding(bodies[i], bodies[j])
		return !hit
	})
	if hit {
		c.contacts++
	}
}

func (c *ContactRatio) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.contacts) / float64(c.samples)
}

func (c *ContactRatio) Reset() {
	c.contacts = 0
	c.samples = 0
}
