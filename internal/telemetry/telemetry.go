// Package telemetry exposes simulator activity as Prometheus metrics.
package telemetry

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/satsim/internal/dynamo"
	"github.com/san-kum/satsim/internal/forecast"
	"github.com/san-kum/satsim/internal/sim"
)

const (
	SourceLive     = "live"
	SourceForecast = "forecast"
)

// Collector bundles the satsim metrics. It is an event sink for the live loop.
type Collector struct {
	gatherer prometheus.Gatherer

	Ticks     prometheus.Counter
	Events    *prometheus.CounterVec
	Bodies    prometheus.Gauge
	Forecasts *prometheus.CounterVec
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Registering twice reuses the existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "satsim_ticks_total",
		Help: "Total number of live simulation ticks.",
	}))
	if err != nil {
		return nil, err
	}
	events, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "satsim_collision_events_total",
		Help: "Collision events reported, labeled by source (live or forecast).",
	}, []string{"source"}))
	if err != nil {
		return nil, err
	}
	bodies, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "satsim_bodies",
		Help: "Number of bodies in the live population.",
	}))
	if err != nil {
		return nil, err
	}
	forecasts, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "satsim_forecasts_total",
		Help: "Forecast runs, labeled by mode.",
	}, []string{"mode"}))
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:  gatherer,
		Ticks:     ticks,
		Events:    events,
		Bodies:    bodies,
		Forecasts: forecasts,
	}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (c *Collector) Emit(ev dynamo.Event) {
	c.Events.WithLabelValues(SourceLive).Inc()
}

func (c *Collector) ObserveForecast(r *forecast.Report) {
	c.Forecasts.WithLabelValues(r.Mode.String()).Inc()
	c.Events.WithLabelValues(SourceForecast).Add(float64(len(r.Events)))
}

// Metric adapts the collector to the simulator's per-tick metric hook.
func (c *Collector) Metric() sim.Metric { return &tickMetric{c: c} }

type tickMetric struct {
	c     *Collector
	ticks int
}

func (m *tickMetric) Name() string { return "ticks" }
func (m *tickMetric) Observe(bodies []dynamo.Body, tick int) {
	m.ticks++
	m.c.Ticks.Inc()
	m.c.Bodies.Set(float64(len(bodies)))
}
func (m *tickMetric) Value() float64 { return float64(m.ticks) }
func (m *tickMetric) Reset()         { m.ticks = 0 }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
