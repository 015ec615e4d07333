package parallel

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	gferrors "github.com/vnykmshr/fanout/pkg/common/errors"
	"github.com/vnykmshr/fanout/pkg/common/validation"
	"github.com/vnykmshr/fanout/pkg/metrics"
	"github.com/vnykmshr/fanout/pkg/scheduling/concurrency"
)

// DefaultThreadCount is the inner concurrency used when Config.ThreadCount is 0.
const DefaultThreadCount = 5

// Func is the target function applied to every element of a collection.
// It may be called concurrently from many goroutines and must not rely on
// state shared with other invocations.
type Func[E, R any] func(ctx context.Context, elem E, args Args) (R, error)

// Config controls how an Executor distributes work.
type Config struct {
	// CPUCount is the number of isolated outer workers and the requested
	// partition count. Zero resolves through HostParallelism at run time.
	CPUCount int

	// ThreadCount is the number of concurrent units inside each outer
	// worker. Zero means DefaultThreadCount.
	ThreadCount int

	// HostParallelism reports the host's parallelism. It resolves a zero
	// CPUCount and caps how many outer workers run at once. Nil means
	// runtime.NumCPU.
	HostParallelism func() int

	// Codec copies shards and result batches across the isolation boundary.
	// Nil means GobCodec.
	Codec Codec

	// PreserveOrder restores input order in the final result list. When
	// false, results follow the round-robin partition order.
	PreserveOrder bool

	// Logger receives run diagnostics. Nil means slog.Default().
	Logger *slog.Logger

	// Name labels logs and metrics. Empty means "default".
	Name string

	// Metrics enables Prometheus instrumentation of the run and its pools.
	Metrics metrics.Config
}

// DefaultConfig returns the configuration used by Run.
func DefaultConfig() Config {
	return Config{
		HostParallelism: runtime.NumCPU,
		Codec:           GobCodec{},
		Name:            "default",
	}
}

// Validate reports the first invalid field as a ValidationError.
func (c Config) Validate() error {
	if err := validation.ValidateNonNegative("parallel", "cpu_count", c.CPUCount); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative("parallel", "thread_count", c.ThreadCount); err != nil {
		return err
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.HostParallelism == nil {
		c.HostParallelism = runtime.NumCPU
	}
	if c.ThreadCount == 0 {
		c.ThreadCount = DefaultThreadCount
	}
	if c.Codec == nil {
		c.Codec = GobCodec{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Name == "" {
		c.Name = "default"
	}
	return c
}

// shard is the unit of work handed to one outer worker.
type shard[E any] struct {
	Index int
	Items []E
	Args  Args
}

// Executor applies a function to every element of a collection using
// isolated outer workers, each running a bounded number of concurrent units.
// An Executor holds no per-run state and may be run repeatedly.
type Executor[E, R any] struct {
	fn         Func[E, R]
	collection []E
	args       Args
}

// New creates an Executor for fn over collection with the given extra
// arguments.
func New[E, R any](fn Func[E, R], collection []E, args ...Arg) *Executor[E, R] {
	return &Executor[E, R]{
		fn:         fn,
		collection: collection,
		args:       buildArgs(args),
	}
}

// Len returns the size of the input collection.
func (e *Executor[E, R]) Len() int {
	return len(e.collection)
}

// Run executes with DefaultConfig.
func (e *Executor[E, R]) Run(ctx context.Context) ([]R, error) {
	return e.RunWithConfig(ctx, DefaultConfig())
}

// RunWithConfig partitions the collection round-robin into at most
// config.CPUCount shards, runs each shard on an isolated worker that applies
// the function to its elements with at most config.ThreadCount concurrent
// units, and concatenates the per-shard result batches in shard order.
//
// It returns either one result per element or an error, never partial
// results. A failing function call's error is returned unmodified; when
// several calls fail, the one whose result would come first in the output
// wins. Remaining work is not cancelled, and RunWithConfig returns only after
// it finishes.
func (e *Executor[E, R]) RunWithConfig(ctx context.Context, config Config) ([]R, error) {
	config = config.withDefaults()
	logger := config.Logger.With("executor", config.Name)

	var reg *metrics.Registry
	if config.Metrics.Enabled {
		reg = metrics.For(config.Metrics)
		reg.RunsTotal.WithLabelValues(config.Name).Inc()
	}

	if err := e.validate(config); err != nil {
		logger.Warn("rejected run configuration", "error", err)
		recordFailure(reg, config.Name, "invalid_config")
		return nil, err
	}

	if len(e.collection) == 0 {
		return []R{}, nil
	}

	start := time.Now()
	results, err := e.run(ctx, config, logger, reg)
	elapsed := time.Since(start)

	if reg != nil {
		reg.RunDuration.WithLabelValues(config.Name).Observe(elapsed.Seconds())
	}
	if err != nil {
		reason := "task"
		if gferrors.IsTransferError(err) {
			reason = "transfer"
		}
		recordFailure(reg, config.Name, reason)
		logger.Warn("run failed", "items", len(e.collection), "duration", elapsed, "error", err)
		return nil, err
	}

	logger.Info("run completed", "items", len(results), "duration", elapsed)
	return results, nil
}

func (e *Executor[E, R]) validate(config Config) error {
	if e.fn == nil {
		return gferrors.NewValidationError("parallel", "fn", nil, "cannot be nil").
			WithHint("pass a target function to New")
	}
	return config.Validate()
}

func (e *Executor[E, R]) run(ctx context.Context, config Config, logger *slog.Logger, reg *metrics.Registry) ([]R, error) {
	host := config.HostParallelism()
	if host <= 0 {
		host = 1
	}
	cpuCount := config.CPUCount
	if cpuCount == 0 {
		cpuCount = host
	}

	plan := Partition(e.collection, cpuCount)
	shards := make([]shard[E], len(plan))
	for k, items := range plan {
		shards[k] = shard[E]{Index: k, Items: items, Args: e.args}
	}

	logger.Debug("partitioned collection",
		"items", len(e.collection),
		"shards", len(shards),
		"cpu_count", cpuCount,
		"thread_count", config.ThreadCount,
		"codec", config.Codec.Name(),
	)

	if reg != nil {
		reg.RunItems.WithLabelValues(config.Name).Add(float64(len(e.collection)))
		reg.PartitionCount.WithLabelValues(config.Name).Set(float64(len(shards)))
	}

	outer := NewIsolatedPool[shard[E], []R](IsolatedConfig{
		MaxWorkers: min(cpuCount, host),
		Codec:      config.Codec,
		Name:       config.Name,
		Metrics:    config.Metrics,
		OnTransfer: func(direction string, size int) {
			if reg != nil {
				reg.TransferredBytes.WithLabelValues(config.Name, direction).Add(float64(size))
			}
		},
	})

	batches, err := outer.Map(ctx, shards, func(ctx context.Context, s shard[E]) ([]R, error) {
		return e.runShard(ctx, s, config, logger)
	})
	if err != nil {
		return nil, err
	}

	results := Flatten(batches)
	if config.PreserveOrder {
		results = Restore(results, PartitionIndices(len(e.collection), cpuCount))
	}
	return results, nil
}

// runShard is the body of one outer worker.
func (e *Executor[E, R]) runShard(ctx context.Context, s shard[E], config Config, logger *slog.Logger) ([]R, error) {
	limiter, err := concurrency.NewWithConfigAndMetrics(
		concurrency.Config{Capacity: config.ThreadCount},
		fmt.Sprintf("%s-shard-%d", config.Name, s.Index),
		config.Metrics,
	)
	if err != nil {
		return nil, err
	}

	logger.Debug("shard started", "shard", s.Index, "items", len(s.Items))

	inner := NewSharedPool[E, R](limiter)
	batch, err := inner.Map(ctx, s.Items, func(ctx context.Context, elem E) (R, error) {
		return e.fn(ctx, elem, s.Args)
	})
	if err != nil {
		logger.Debug("shard failed", "shard", s.Index, "error", err)
		return nil, err
	}

	logger.Debug("shard finished", "shard", s.Index, "results", len(batch))
	return batch, nil
}

func recordFailure(reg *metrics.Registry, name, reason string) {
	if reg != nil {
		reg.RunFailures.WithLabelValues(name, reason).Inc()
	}
}

// IsTransferError reports whether err came from copying values across the
// isolation boundary.
func IsTransferError(err error) bool {
	return gferrors.IsTransferError(err)
}
