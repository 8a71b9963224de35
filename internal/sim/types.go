package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/san-kum/satsim/internal/dynamo"
)

// Status is the lifecycle of a Simulator: Idle -> Running -> Stopped.
type Status int32

const (
	Idle Status = iota
	Running
	Stopped
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = Idle
	case "running":
		*s = Running
	case "stopped":
		*s = Stopped
	default:
		return fmt.Errorf("sim: unknown status %q", text)
	}
	return nil
}

// EventSink receives collision events. Emit is called from the tick
// goroutine and must not block for long.
type EventSink interface {
	Emit(ev dynamo.Event)
}

type Metric interface {
	Name() string
	Observe(bodies []dynamo.Body, tick int)
	Value() float64
	Reset()
}

// Snapshot is an immutable copy of the population published after each tick.
type Snapshot struct {
	Tick   int            `json:"tick"`
	Status Status         `json:"status"`
	Bodies []dynamo.Body  `json:"bodies"`
	Events []dynamo.Event `json:"events"`
}

type Config struct {
	Interval time.Duration
	MaxTicks int // 0 runs until stopped
}

func DefaultConfig() Config {
	return Config{Interval: 50 * time.Millisecond}
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(ev dynamo.Event)

func (f SinkFunc) Emit(ev dynamo.Event) { f(ev) }

// Recorder keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []dynamo.Event
}

func (r *Recorder) Emit(ev dynamo.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *Recorder) Events() []dynamo.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]dynamo.Event, len(r.events))
	copy(out, r.events)
	return out
}

// ChanSink forwards events to a buffered channel and drops them when the
// reader falls behind.
type ChanSink struct {
	C       chan dynamo.Event
	dropped int64
	mu      sync.Mutex
}

func NewChanSink(size int) *ChanSink {
	return &ChanSink{C: make(chan dynamo.Event, size)}
}

func (c *ChanSink) Emit(ev dynamo.Event) {
	select {
	case c.C <- ev:
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
	}
}

func (c *ChanSink) Dropped() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}
