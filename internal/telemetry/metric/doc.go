// Package metric provides Prometheus metrics for RevGate.
//
// Metrics cover the revocation hot path (check rates, tier hit
// ratios, check latency) plus revocation writes, shared-tier errors,
// and gauges fed from the store's statistics snapshot. Everything is
// registered on a private registry so tests can run in parallel
// without collisions, and exposed at /metrics via promhttp.
package metric
