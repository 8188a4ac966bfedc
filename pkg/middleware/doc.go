// Package middleware provides HTTP middleware for the vbind preview server.
//
// # Prometheus Metrics
//
// Prometheus records request counts and latencies per chi route pattern,
// so /events/{type} is one series regardless of the event name:
//
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
//
// Metrics collected:
//   - vbind_http_requests_total{route,method,status}
//   - vbind_http_request_duration_seconds{route,method}
//
// # OpenTelemetry
//
// OpenTelemetry starts a server span per request on the global tracer
// provider and marks 5xx responses as errors:
//
//	r.Use(middleware.OpenTelemetry(middleware.WithTracerName("preview")))
package middleware
