// Package metrics exposes Prometheus instrumentation for the streaming
// pipeline: request and fragment counters, stream duration, failover
// counts, session gauges, and adaptation outcomes.
package metrics
