// Package metrics provides Prometheus instrumentation for fanout components.
//
// # Overview
//
// The metrics package instruments:
//   - Executor runs (runs, failures, durations, items, partitions, transferred bytes)
//   - Worker pools (submitted, completed and failed tasks, queue wait, pool size)
//   - Concurrency limiters (active and waiting operations, wait times)
//   - Scheduled jobs (runs, failures, durations)
//
// # Quick Start
//
// Enable metrics through the component configs:
//
//	cfg := parallel.DefaultConfig()
//	cfg.Name = "thumbnails"
//	cfg.Metrics = metrics.DefaultConfig()
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	reg := prometheus.NewRegistry()
//	r := metrics.For(metrics.Config{Enabled: true, Registry: reg})
//
// For caches one Registry per registerer and namespace, so any number of
// components can share a registerer without duplicate registration panics.
//
// # Labels
//
//   - executor_name: Config.Name of the executor run
//   - pool_name: name given to a metrics-enabled worker pool
//   - limiter_name: name given to a metrics-enabled concurrency limiter
//   - job_name: scheduler job name
//   - reason: failure class ("invalid_config", "transfer", "task")
//   - direction: "in" (to workers) or "out" (from workers)
package metrics
