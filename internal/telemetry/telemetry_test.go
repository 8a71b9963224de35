package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/satsim/internal/dynamo"
	"github.com/san-kum/satsim/internal/forecast"
	"github.com/san-kum/satsim/internal/integrators"
	"github.com/san-kum/satsim/internal/sim"
)

func TestCollectorCountsLiveTicksAndEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	s := sim.New(integrators.NewEuler(0.1), sim.WithSink(c), sim.WithMetric(c.Metric()))
	a, _ := dynamo.NewLinear("A", 10, dynamo.Vec3{}, dynamo.Vec3{})
	b, _ := dynamo.NewLinear("B", 10, dynamo.Vec3{X: 5}, dynamo.Vec3{})
	_ = s.Add(a)
	_ = s.Add(b)

	for i := 0; i < 4; i++ {
		s.Step()
	}

	if got := testutil.ToFloat64(c.Ticks); got != 4 {
		t.Errorf("ticks = %v, want 4", got)
	}
	if got := testutil.ToFloat64(c.Events.WithLabelValues(SourceLive)); got != 4 {
		t.Errorf("live events = %v, want 4", got)
	}
	if got := testutil.ToFloat64(c.Bodies); got != 2 {
		t.Errorf("bodies = %v, want 2", got)
	}
	if s.Metrics()["ticks"] != 4 {
		t.Errorf("tick metric = %v", s.Metrics()["ticks"])
	}
}

func TestCollectorForecast(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}

	c.ObserveForecast(&forecast.Report{Mode: forecast.StopAtFirst, Events: []dynamo.Event{{}}})
	c.ObserveForecast(&forecast.Report{Mode: forecast.ScanAll, Events: []dynamo.Event{{}, {}, {}}})

	if got := testutil.ToFloat64(c.Forecasts.WithLabelValues("first")); got != 1 {
		t.Errorf("first forecasts = %v", got)
	}
	if got := testutil.ToFloat64(c.Events.WithLabelValues(SourceForecast)); got != 4 {
		t.Errorf("forecast events = %v, want 4", got)
	}
}

func TestCollectorRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second registration failed: %v", err)
	}

	first.Ticks.Inc()
	if got := testutil.ToFloat64(second.Ticks); got != 1 {
		t.Errorf("second collector should share counters, got %v", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	c.Ticks.Add(3)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "satsim_ticks_total 3") {
		t.Errorf("metrics output missing ticks:\n%s", rec.Body.String())
	}
}
