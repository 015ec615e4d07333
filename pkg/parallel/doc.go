/*
Package parallel applies a function to every element of a collection using two
levels of parallelism.

The outer level is a pool of isolated workers. The collection is split
round-robin into at most CPUCount shards and each shard runs on its own worker.
A shard reaches its worker only as bytes produced by a Codec, so workers never
share memory with the caller or with each other. The inner level runs inside
every worker: each element of the shard becomes a goroutine, and a semaphore
keeps at most ThreadCount of them inside the function at once.

Basic usage:

	square := func(ctx context.Context, n int, args parallel.Args) (int, error) {
		return n * n, nil
	}

	results, err := parallel.New(square, []int{0, 1, 2, 3, 4, 5, 6, 7}).
		RunWithConfig(ctx, parallel.Config{CPUCount: 3})
	// results: [0 9 36 1 16 49 4 25]

Result order:

Results come back shard by shard, so with more elements than shards they follow
the partition order rather than the input order. For [0..7] and three shards
the order is 0,3,6,1,4,7,2,5. Set Config.PreserveOrder to get input order
instead. For a fixed collection and fixed counts the order is deterministic.

Extra arguments:

Positional and named arguments given to New reach every call:

	exec := parallel.New(scale, items, parallel.Pos(10), parallel.Kw("round", true))

	func scale(ctx context.Context, x float64, args parallel.Args) (float64, error) {
		factor, err := parallel.ArgAt[int](args, 0)
		...
		round, _ := parallel.Lookup[bool](args, "round")
		...
	}

Failures:

Either every result is returned or an error is. The first failing call, in
output order, decides the error and it is returned unmodified, so errors.Is and
== comparisons against sentinel errors work. Nothing is cancelled: other calls
run to completion before Run returns. Values the codec cannot encode or decode
fail with an error matching errors.ErrTransfer from pkg/common/errors. A
panicking call is recovered and reported as an *errors.OperationError.

Building blocks:

Partition, Flatten and Restore are the pure planning and aggregation steps.
IsolatedPool and SharedPool both implement Mapper and can be used directly,
nested or on their own.
*/
package parallel
