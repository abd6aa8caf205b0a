// Package metric exposes Prometheus metrics for the horn processes.
//
// NewMetricsRegistry builds a private Prometheus registry with the core horn
// metrics (NATS connection, RPC calls, bus bridge traffic, horn service
// playback) plus Go runtime and process collectors. Components receive the
// *Metrics value; every Record method is safe on a nil receiver so metrics
// stay optional in tests.
//
// Server serves the registry on /metrics and a liveness probe on /health.
package metric
