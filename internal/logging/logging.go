// Package logging builds the satsim logger and a collision event sink
// that writes to it.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/satsim/internal/dynamo"
)

func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return log.InfoLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level: %s", s)
	}
}

// New returns a timestamped logger writing to w.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "satsim",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	}), nil
}

// EventSink logs every collision at warn level.
type EventSink struct {
	logger *log.Logger
}

func NewEventSink(l *log.Logger) *EventSink {
	return &EventSink{logger: l.WithPrefix("collision")}
}

func (s *EventSink) Emit(ev dynamo.Event) {
	s.logger.Warn("collision detected", "a", ev.A, "b", ev.B, "step", ev.Step, "distance", fmt.Sprintf("%.3f", ev.Distance))
}
