package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/querystate/pkg/history"
	"github.com/vango-dev/querystate/pkg/location"
)

// Default tracer name for querystate histories.
const defaultTracerName = "querystate"

// OTelConfig configures the OpenTelemetry decorator.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "querystate").
	TracerName string

	// TracerProvider overrides the global tracer provider.
	TracerProvider trace.TracerProvider

	// TraceNotifications creates a span for every location change delivered
	// to a listener. Enabled by default.
	TraceNotifications bool

	// AttributeExtractor adds custom attributes to every span.
	AttributeExtractor func(loc location.Location) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry decorator.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithTraceNotifications enables/disables spans for location notifications.
func WithTraceNotifications(enabled bool) OTelOption {
	return func(c *OTelConfig) {
		c.TraceNotifications = enabled
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(loc location.Location) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:         defaultTracerName,
		TraceNotifications: true,
	}
}

// TracedHistory creates spans around a history.
type TracedHistory struct {
	next   history.History
	config OTelConfig
}

// OpenTelemetry wraps h with tracing.
func OpenTelemetry(h history.History, opts ...OTelOption) *TracedHistory {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.TracerProvider != nil {
		config.tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		config.tracer = otel.Tracer(config.TracerName)
	}
	return &TracedHistory{next: h, config: config}
}

// Unwrap returns the decorated history.
func (h *TracedHistory) Unwrap() history.History {
	return h.next
}

// Location implements history.History.
func (h *TracedHistory) Location() location.Location {
	return h.next.Location()
}

// Listen implements history.History.
func (h *TracedHistory) Listen(fn history.Listener) history.Unlisten {
	if !h.config.TraceNotifications {
		return h.next.Listen(fn)
	}
	return h.next.Listen(func(loc location.Location) {
		_, span := h.config.tracer.Start(
			context.Background(),
			"querystate.location_change",
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(h.attributes(loc)...),
			trace.WithTimestamp(time.Now()),
		)
		defer span.End()
		fn(loc)
	})
}

// Push implements history.History.
func (h *TracedHistory) Push(path string, state location.Options) error {
	target := location.Split(path)
	attrs := append(h.attributes(target), attribute.String("querystate.path", path))

	_, span := h.config.tracer.Start(
		context.Background(),
		"querystate.push",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	err := h.next.Push(path, state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (h *TracedHistory) attributes(loc location.Location) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("querystate.pathname", loc.Pathname),
		attribute.String("querystate.search", loc.Search),
	}
	if h.config.AttributeExtractor != nil {
		attrs = append(attrs, h.config.AttributeExtractor(loc)...)
	}
	return attrs
}
