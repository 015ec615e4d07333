/*
Package fanout runs a function over every element of a collection using two
levels of parallelism.

The collection is split round-robin into one shard per outer worker. Each
shard is copied across an isolation boundary by a codec and processed by a
pool of bounded concurrent units. Results come back shard by shard and are
flattened into a single list.

Packages:

  - pkg/parallel: partitioner, isolated and shared mappers, executor, aggregator
  - pkg/scheduling/workerpool: fixed worker pool with per-task handles
  - pkg/scheduling/concurrency: FIFO concurrency limiter
  - pkg/scheduling/scheduler: one-shot, interval and cron scheduling of runs
  - pkg/metrics: Prometheus collectors for runs, pools and jobs
  - pkg/common/errors: error types shared by every package

Example usage:

	import "github.com/vnykmshr/fanout/pkg/parallel"

	square := func(ctx context.Context, n int, _ parallel.Args) (int, error) {
		return n * n, nil
	}

	results, err := parallel.New(square, []int{0, 1, 2, 3, 4, 5, 6, 7}).
		RunWithConfig(ctx, parallel.Config{CPUCount: 3, ThreadCount: 2})
	// results: [0 9 36 1 16 49 4 25]

The fanout command in cmd/fanout exposes the executor on the command line.
*/
package fanout
