// Package metrics provides Prometheus instrumentation for fanout components.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name unless Config.Namespace is set.
const DefaultNamespace = "fanout"

// Registry holds all metric instances for fanout components.
type Registry struct {
	// Executor Metrics
	RunsTotal        *prometheus.CounterVec
	RunFailures      *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	RunItems         *prometheus.CounterVec
	PartitionCount   *prometheus.GaugeVec
	TransferredBytes *prometheus.CounterVec

	// Worker Pool Metrics
	TasksSubmitted        *prometheus.CounterVec
	TasksCompleted        *prometheus.CounterVec
	TasksFailed           *prometheus.CounterVec
	TaskExecutionDuration *prometheus.HistogramVec
	TaskQueueWait         *prometheus.HistogramVec
	WorkerPoolSize        *prometheus.GaugeVec
	WorkerPoolActive      *prometheus.GaugeVec
	WorkerPoolQueued      *prometheus.GaugeVec

	// Concurrency Metrics
	ConcurrencyActive   *prometheus.GaugeVec
	ConcurrencyWaiting  *prometheus.GaugeVec
	ConcurrencyWaitTime *prometheus.HistogramVec

	// Scheduler Metrics
	JobRuns     *prometheus.CounterVec
	JobFailures *prometheus.CounterVec
	JobDuration *prometheus.HistogramVec
}

type registryKey struct {
	reg       prometheus.Registerer
	namespace string
}

var (
	registriesMu sync.Mutex
	registries   = map[registryKey]*Registry{}
)

// DefaultRegistry returns the registry bound to prometheus.DefaultRegisterer.
func DefaultRegistry() *Registry {
	return For(DefaultConfig())
}

// For returns the Registry for config's registerer and namespace, creating and
// registering the collectors on first use. Components sharing a registerer
// share collectors, so registering twice never panics.
func For(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	namespace := config.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}

	key := registryKey{reg: reg, namespace: namespace}

	registriesMu.Lock()
	defer registriesMu.Unlock()

	if r, ok := registries[key]; ok {
		return r
	}
	r := newRegistry(reg, namespace)
	registries[key] = r
	return r
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
// Prefer For, which reuses collectors already registered on reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return For(Config{Enabled: true, Registry: reg})
}

func newRegistry(reg prometheus.Registerer, namespace string) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Executor Metrics
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "executor",
				Name:      "runs_total",
				Help:      "Total number of executor runs",
			},
			[]string{"executor_name"},
		),

		RunFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "executor",
				Name:      "run_failures_total",
				Help:      "Total number of executor runs that returned an error",
			},
			[]string{"executor_name", "reason"},
		),

		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "executor",
				Name:      "run_duration_seconds",
				Help:      "Wall-clock duration of executor runs",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"executor_name"},
		),

		RunItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "executor",
				Name:      "items_total",
				Help:      "Total number of collection elements dispatched",
			},
			[]string{"executor_name"},
		),

		PartitionCount: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "executor",
				Name:      "partitions",
				Help:      "Number of sub-collections in the most recent partition plan",
			},
			[]string{"executor_name"},
		),

		TransferredBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "executor",
				Name:      "transferred_bytes_total",
				Help:      "Bytes moved across the isolation boundary",
			},
			[]string{"executor_name", "direction"},
		),

		// Worker Pool Metrics
		TasksSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "tasks_submitted_total",
				Help:      "Total number of tasks submitted",
			},
			[]string{"pool_name"},
		),

		TasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "tasks_completed_total",
				Help:      "Total number of tasks completed successfully",
			},
			[]string{"pool_name"},
		),

		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "tasks_failed_total",
				Help:      "Total number of tasks that failed",
			},
			[]string{"pool_name"},
		),

		TaskExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "task_duration_seconds",
				Help:      "Time spent executing tasks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),

		TaskQueueWait: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "task_queue_wait_seconds",
				Help:      "Time tasks spent queued before a worker picked them up",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),

		WorkerPoolSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "size",
				Help:      "Current worker pool size",
			},
			[]string{"pool_name"},
		),

		WorkerPoolActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "active_workers",
				Help:      "Number of active workers",
			},
			[]string{"pool_name"},
		),

		WorkerPoolQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "queued_tasks",
				Help:      "Number of queued tasks",
			},
			[]string{"pool_name"},
		),

		// Concurrency Metrics
		ConcurrencyActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "concurrency",
				Name:      "active",
				Help:      "Number of active concurrent operations",
			},
			[]string{"limiter_name"},
		),

		ConcurrencyWaiting: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "concurrency",
				Name:      "waiting",
				Help:      "Number of operations waiting for concurrency slot",
			},
			[]string{"limiter_name"},
		),

		ConcurrencyWaitTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "concurrency",
				Name:      "wait_duration_seconds",
				Help:      "Time spent waiting for a concurrency slot",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"limiter_name"},
		),

		// Scheduler Metrics
		JobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "job_runs_total",
				Help:      "Total number of scheduled job runs",
			},
			[]string{"job_name"},
		),

		JobFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "job_failures_total",
				Help:      "Total number of scheduled job runs that failed",
			},
			[]string{"job_name"},
		),

		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "job_duration_seconds",
				Help:      "Time spent running scheduled jobs",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"job_name"},
		),
	}
}
