package middleware

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	qerrors "github.com/vango-dev/querystate/internal/errors"
	"github.com/vango-dev/querystate/pkg/history"
	"github.com/vango-dev/querystate/pkg/location"
)

// MetricsConfig configures the Prometheus decorator.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "querystate").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for push duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus decorator.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "querystate",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

type metrics struct {
	pushesTotal     *prometheus.CounterVec
	pushErrors      *prometheus.CounterVec
	pushDuration    prometheus.Histogram
	locationChanges prometheus.Counter
	activeListeners prometheus.Gauge
}

// Metrics are registered once per registry; decorating several histories
// against the same registry shares the collectors.
var (
	registeredMetrics   = map[prometheus.Registerer]*metrics{}
	registeredMetricsMu sync.Mutex
)

func metricsFor(config MetricsConfig) *metrics {
	registeredMetricsMu.Lock()
	defer registeredMetricsMu.Unlock()

	if m, ok := registeredMetrics[config.Registry]; ok {
		return m
	}
	m := initMetrics(config)
	registeredMetrics[config.Registry] = m
	return m
}

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		pushesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pushes_total",
			Help:        "Total number of history pushes",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		pushErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "push_errors_total",
			Help:        "Total number of failed history pushes by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		pushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "push_duration_seconds",
			Help:        "History push duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		locationChanges: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "location_changes_total",
			Help:        "Total number of location change notifications delivered to listeners",
			ConstLabels: config.ConstLabels,
		}),

		activeListeners: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_listeners",
			Help:        "Number of registered location listeners",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// InstrumentedHistory records Prometheus metrics around a history.
type InstrumentedHistory struct {
	next    history.History
	metrics *metrics
}

// Prometheus wraps h with metrics collection.
func Prometheus(h history.History, opts ...MetricsOption) *InstrumentedHistory {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &InstrumentedHistory{next: h, metrics: metricsFor(config)}
}

// Unwrap returns the decorated history.
func (h *InstrumentedHistory) Unwrap() history.History {
	return h.next
}

// Location implements history.History.
func (h *InstrumentedHistory) Location() location.Location {
	return h.next.Location()
}

// Listen implements history.History.
func (h *InstrumentedHistory) Listen(fn history.Listener) history.Unlisten {
	m := h.metrics
	m.activeListeners.Inc()
	inner := h.next.Listen(func(loc location.Location) {
		m.locationChanges.Inc()
		fn(loc)
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			m.activeListeners.Dec()
			inner()
		})
	}
}

// Push implements history.History.
func (h *InstrumentedHistory) Push(path string, state location.Options) error {
	start := time.Now()
	err := h.next.Push(path, state)
	h.metrics.pushDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		h.metrics.pushesTotal.WithLabelValues("error").Inc()
		h.metrics.pushErrors.WithLabelValues(errorCode(err)).Inc()
		return err
	}
	h.metrics.pushesTotal.WithLabelValues("success").Inc()
	return nil
}

// errorCode returns the registered code of err, keeping label cardinality
// bounded.
func errorCode(err error) string {
	var qe *qerrors.Error
	if errors.As(err, &qe) && qe.Code != "" {
		return qe.Code
	}
	return "internal"
}
