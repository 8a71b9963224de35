package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/satsim/internal/collision"
	"github.com/san-kum/satsim/internal/dynamo"
)

var (
	ErrAlreadyRunning = errors.New("sim: simulation already running")
	ErrStopped        = errors.New("sim: simulation stopped")
)

// Simulator owns a population of bodies. Only the goroutine calling Step
// (normally Run) mutates it; everyone else reads published snapshots.
type Simulator struct {
	integ   dynamo.Integrator
	logger  *log.Logger
	sinks   []EventSink
	metrics []Metric

	mu     sync.Mutex
	bodies []dynamo.Body
	tick   int

	status   atomic.Int32
	snapshot atomic.Pointer[Snapshot]
	stop     chan struct{}
	stopOnce sync.Once
}

type Option func(*Simulator)

func WithSink(sink EventSink) Option {
	return func(s *Simulator) { s.sinks = append(s.sinks, sink) }
}

func WithMetric(m Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, m) }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

func New(integ dynamo.Integrator, opts ...Option) *Simulator {
	s := &Simulator{
		integ:   integ,
		logger:  log.New(io.Discard),
		sinks:   make([]EventSink, 0),
		metrics: make([]Metric, 0),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	s.publish(nil)
	return s
}

// Add validates b and appends it to the population. It is visible in the
// snapshot returned right after.
func (s *Simulator) Add(b dynamo.Body) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("add %q: %w", b.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bodies = append(s.bodies, b)
	var last []dynamo.Event
	if snap := s.snapshot.Load(); snap != nil {
		last = snap.Events
	}
	s.publish(last)
	s.logger.Debug("body added", "id", b.ID, "mode", b.Mode(), "bodies", len(s.bodies))
	return nil
}

// Step advances every body by one step, then reports every colliding pair.
// Pairs that stay in contact are reported again on every tick.
func (s *Simulator) Step() []dynamo.Event {
	s.mu.Lock()
	s.tick++
	for i := range s.bodies {
		s.integ.Advance(&s.bodies[i], 1)
	}
	events := collision.Scan(s.bodies, s.tick)
	for _, m := range s.metrics {
		m.Observe(s.bodies, s.tick)
	}
	s.publish(events)
	tick := s.tick
	s.mu.Unlock()

	s.logger.Debug("tick", "tick", tick, "events", len(events))
	for _, ev := range events {
		for _, sink := range s.sinks {
			sink.Emit(ev)
		}
	}
	return events
}

// Run ticks until ctx is cancelled, Stop is called or cfg.MaxTicks ticks
// have run. Cancellation is a normal way out and returns nil.
func (s *Simulator) Run(ctx context.Context, cfg Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if !s.status.CompareAndSwap(int32(Idle), int32(Running)) {
		if Status(s.status.Load()) == Stopped {
			return ErrStopped
		}
		return ErrAlreadyRunning
	}
	s.republish()

	snap := s.Snapshot()
	s.logger.Info("simulation started", "bodies", len(snap.Bodies), "interval", cfg.Interval)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			s.halt(fmt.Sprintf("context: %v", ctx.Err()))
			return nil
		case <-s.stop:
			s.halt("stop requested")
			return nil
		case <-ticker.C:
			s.Step()
			ticks++
			if cfg.MaxTicks > 0 && ticks >= cfg.MaxTicks {
				s.halt("tick limit reached")
				return nil
			}
		}
	}
}

// Stop asks a running loop to finish after its current tick. A simulator
// stopped before Run never starts.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		if s.status.CompareAndSwap(int32(Idle), int32(Stopped)) {
			s.republish()
		}
	})
}

func (s *Simulator) Status() Status {
	return Status(s.status.Load())
}

// Snapshot returns the last published state. Callers must not modify it.
func (s *Simulator) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

func (s *Simulator) Metrics() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s *Simulator) halt(reason string) {
	s.status.Store(int32(Stopped))
	s.republish()
	snap := s.Snapshot()
	s.logger.Info("simulation stopped", "reason", reason, "tick", snap.Tick)
}

func (s *Simulator) republish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var last []dynamo.Event
	if snap := s.snapshot.Load(); snap != nil {
		last = snap.Events
	}
	s.publish(last)
}

// publish must be called with s.mu held (or before the simulator is shared).
func (s *Simulator) publish(events []dynamo.Event) {
	bodies := make([]dynamo.Body, len(s.bodies))
	copy(bodies, s.bodies)
	evs := make([]dynamo.Event, len(events))
	copy(evs, events)
	s.snapshot.Store(&Snapshot{
		Tick:   s.tick,
		Status: Status(s.status.Load()),
		Bodies: bodies,
		Events: evs,
	})
}

func validateConfig(cfg Config) error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}
	if cfg.MaxTicks < 0 {
		return fmt.Errorf("max ticks must not be negative, got %d", cfg.MaxTicks)
	}
	return nil
}
