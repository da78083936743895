package middleware

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/querystate/pkg/history"
	"github.com/vango-dev/querystate/pkg/location"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	var m dto.Metric
	if err := (<-ch).Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	}
	t.Fatalf("metric is neither counter nor gauge")
	return 0
}

func TestPrometheusPush(t *testing.T) {
	reg := prometheus.NewRegistry()
	mem := history.NewMemory(location.Location{Pathname: "/"})
	h := Prometheus(mem, WithRegistry(reg), WithNamespace("test"))

	if err := h.Push("/list?page=2", nil); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if got := h.Location().Search; got != "?page=2" {
		t.Errorf("Location().Search = %q", got)
	}
	if got := counterValue(t, h.metrics.pushesTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("success pushes = %v, want 1", got)
	}

	var hist dto.Metric
	if err := h.metrics.pushDuration.Write(&hist); err != nil {
		t.Fatal(err)
	}
	if hist.Histogram.GetSampleCount() != 1 {
		t.Errorf("duration samples = %d, want 1", hist.Histogram.GetSampleCount())
	}
}

func TestPrometheusPushError(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := Prometheus(history.NewStatic(location.Location{Pathname: "/"}, nil), WithRegistry(reg))

	if err := h.Push("/x", nil); err == nil {
		t.Fatal("expected static push to fail")
	}
	if got := counterValue(t, h.metrics.pushesTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("error pushes = %v, want 1", got)
	}
	if got := counterValue(t, h.metrics.pushErrors.WithLabelValues("Q001")); got != 1 {
		t.Errorf("Q001 errors = %v, want 1", got)
	}
}

func TestPrometheusListen(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := Prometheus(history.NewMemory(location.Location{Pathname: "/"}), WithRegistry(reg))

	calls := 0
	unlisten := h.Listen(func(location.Location) { calls++ })
	if got := counterValue(t, h.metrics.activeListeners); got != 1 {
		t.Errorf("active listeners = %v, want 1", got)
	}

	_ = h.Push("/a", nil)
	_ = h.Push("/b", nil)
	if calls != 2 {
		t.Errorf("listener calls = %d, want 2", calls)
	}
	if got := counterValue(t, h.metrics.locationChanges); got != 2 {
		t.Errorf("location changes = %v, want 2", got)
	}

	unlisten()
	unlisten()
	if got := counterValue(t, h.metrics.activeListeners); got != 0 {
		t.Errorf("active listeners after unlisten = %v, want 0", got)
	}
	_ = h.Push("/c", nil)
	if calls != 2 {
		t.Errorf("listener called after unlisten")
	}
}

func TestPrometheusSharesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := Prometheus(history.NewMemory(location.Empty()), WithRegistry(reg))
	b := Prometheus(history.NewMemory(location.Empty()), WithRegistry(reg))
	if a.metrics != b.metrics {
		t.Error("histories on the same registry should share collectors")
	}
}

func TestDefaultMetricsConfig(t *testing.T) {
	config := defaultMetricsConfig()
	if config.Namespace != "querystate" {
		t.Errorf("Namespace = %q", config.Namespace)
	}
	if config.Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should default to prometheus.DefaultRegisterer")
	}
	if len(config.Buckets) == 0 {
		t.Error("Buckets should not be empty")
	}
}

func TestErrorCode(t *testing.T) {
	static := history.NewStatic(location.Empty(), nil)
	if got := errorCode(static.Push("/", nil)); got != "Q001" {
		t.Errorf("errorCode(static push) = %q", got)
	}
	if got := errorCode(history.ErrPushNotAllowed); got != "internal" {
		t.Errorf("errorCode(plain) = %q", got)
	}
}
