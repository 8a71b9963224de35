// Package collision decides whether two bodies overlap.
//
// Two bodies collide when the distance between their centres is strictly
// less than the sum of their radii. Touching spheres do not collide and no
// tolerance is applied.
package collision

import "github.com/san-kum/satsim/internal/dynamo"

func Distance(a, b dynamo.Body) float64 {
	return a.Position().Sub(b.Position()).Norm()
}

// Separation is the gap between the two envelopes; negative when they overlap.
func Separation(a, b dynamo.Body) float64 {
	return Distance(a, b) - (a.Radius + b.Radius)
}

func Colliding(a, b dynamo.Body) bool {
	return Distance(a, b) < a.Radius+b.Radius
}

// Pairs visits every unordered pair (i, j), i < j, in index order. It stops
// when fn returns false.
func Pairs(bodies []dynamo.Body, fn func(i, j int) bool) {
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			if !fn(i, j) {
				return
			}
		}
	}
}

// Scan returns an event for every colliding pair, tagged with step.
func Scan(bodies []dynamo.Body, step int) []dynamo.Event {
	var events []dynamo.Event
	Pairs(bodies, func(i, j int) bool {
		if ev, ok := Check(bodies[i], bodies[j], step); ok {
			events = append(events, ev)
		}
		return true
	})
	return events
}

// Check returns the collision event for a and b when they collide.
func Check(a, b dynamo.Body, step int) (dynamo.Event, bool) {
	d := Distance(a, b)
	if !(d < a.Radius+b.Radius) {
		return dynamo.Event{}, false
	}
	return dynamo.Event{Kind: dynamo.KindCollision, A: a.ID, B: b.ID, Step: step, Distance: d}, true
}
