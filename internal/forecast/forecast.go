// Package forecast projects a population forward in closed form and
// reports the collisions it would run into, without touching stored state.
package forecast

import (
	"fmt"
	"strings"

	"github.com/san-kum/satsim/internal/collision"
	"github.com/san-kum/satsim/internal/dynamo"
)

type Mode int

const (
	// ScanAll reports every colliding pair at every step of the horizon.
	ScanAll Mode = iota
	// StopAtFirst reports only the first colliding pair and stops.
	StopAtFirst
)

func (m Mode) String() string {
	if m == StopAtFirst {
		return "first"
	}
	return "scan-all"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "scan-all", "scan_all", "scanall", "all":
		return ScanAll, nil
	case "first", "stop-at-first", "stop_at_first", "stopatfirst":
		return StopAtFirst, nil
	default:
		return ScanAll, fmt.Errorf("unknown forecast mode: %s (want scan-all or first)", s)
	}
}

type Report struct {
	Mode    Mode
	Horizon int
	Events  []dynamo.Event
}

func (r *Report) Collided() bool { return len(r.Events) > 0 }

// First returns the earliest event, lowest pair index first on ties.
func (r *Report) First() (dynamo.Event, bool) {
	if len(r.Events) == 0 {
		return dynamo.Event{}, false
	}
	return r.Events[0], true
}

func (r *Report) Summary() string {
	ev, ok := r.First()
	if !ok {
		return fmt.Sprintf("No collision predicted in %d time steps.", r.Horizon)
	}
	return fmt.Sprintf("Collision predicted between %s and %s at time step %d", ev.A, ev.B, ev.Step)
}

type Forecaster struct {
	integ dynamo.Integrator
}

func New(integ dynamo.Integrator) *Forecaster {
	return &Forecaster{integ: integ}
}

// Predict projects bodies s = 1..horizon steps ahead and scans every pair
// at each step. bodies is only read.
func (f *Forecaster) Predict(bodies []dynamo.Body, horizon int, mode Mode) *Report {
	report := &Report{Mode: mode, Horizon: horizon}
	if horizon <= 0 {
		return report
	}

	projected := make([]dynamo.Body, len(bodies))
	for s := 1; s <= horizon; s++ {
		for i := range bodies {
			projected[i] = f.integ.Project(bodies[i], s)
		}

		stop := false
		collision.Pairs(projected, func(i, j int) bool {
			ev, ok := collision.Check(projected[i], projected[j], s)
			if !ok {
				return true
			}
			report.Events = append(report.Events, ev)
			if mode == StopAtFirst {
				stop = true
				return false
			}
			return true
		})
		if stop {
			break
		}
	}
	return report
}

// Separations returns the envelope gap between bodies i and j for every
// step 0..horizon. Negative values mean overlap.
func (f *Forecaster) Separations(bodies []dynamo.Body, i, j, horizon int) ([]float64, error) {
	if i < 0 || j < 0 || i >= len(bodies) || j >= len(bodies) {
		return nil, fmt.Errorf("pair (%d, %d) out of range for %d bodies", i, j, len(bodies))
	}
	if horizon < 0 {
		horizon = 0
	}
	out := make([]float64, horizon+1)
	for s := 0; s <= horizon; s++ {
		out[s] = collision.Separation(f.integ.Project(bodies[i], s), f.integ.Project(bodies[j], s))
	}
	return out, nil
}

// ClosestPair finds the pair with the smallest separation over the horizon.
func (f *Forecaster) ClosestPair(bodies []dynamo.Body, horizon int) (i, j int, ok bool) {
	best := 0.0
	collision.Pairs(bodies, func(a, b int) bool {
		seps, _ := f.Separations(bodies, a, b, horizon)
		for _, v := range seps {
			if !ok || v < best {
				best, i, j, ok = v, a, b, true
			}
		}
		return true
	})
	return i, j, ok
}
