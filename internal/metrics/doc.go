// Package metrics defines the Prometheus collectors exported by the service:
// HTTP request counters and latencies, per-file encode job outcomes, and
// artifact delivery counters.
package metrics
