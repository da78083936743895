// Package middleware provides observability decorators for any
// history.History.
//
// This package includes:
//   - Prometheus metrics for pushes, location notifications and listeners
//   - OpenTelemetry spans for pushes and location notifications
//
// Decorators wrap a history and are themselves histories, so they stack:
//
//	h := middleware.OpenTelemetry(
//	    middleware.Prometheus(history.NewMemory(loc),
//	        middleware.WithNamespace("myapp"),
//	    ),
//	)
//	p := provider.New(nil).Provide(h, provider.Config{Schema: sch})
//
// # Prometheus Metrics
//
//   - querystate_pushes_total: pushes by status (success, error)
//   - querystate_push_errors_total: failed pushes by error code
//   - querystate_push_duration_seconds: push duration histogram
//   - querystate_location_changes_total: notifications delivered to listeners
//   - querystate_active_listeners: listeners currently registered
//
// Expose them with promhttp, for example through wshistory.NewRouter.
//
// # OpenTelemetry
//
// Spans are created with the global tracer provider unless one is given
// with WithTracerProvider. Failed pushes record the error and set the span
// status.
package middleware
