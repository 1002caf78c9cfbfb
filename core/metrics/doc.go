// Package metrics defines the sink interfaces used to record allocation
// outcomes and solver statistics. Concrete sinks (Prometheus, InfluxDB) live
// in infra/metrics and are registered on the factory registry at startup.
package metrics
