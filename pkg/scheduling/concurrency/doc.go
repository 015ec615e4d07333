/*
Package concurrency provides a counting semaphore that bounds how many
operations run at once.

	limiter := concurrency.New(5)

	if err := limiter.Wait(ctx); err != nil {
		return err
	}
	defer limiter.Release()

Waiters are served in arrival order: Release hands the freed permit directly
to the oldest waiter, and TryAcquire never jumps the queue. A Wait abandoned
through its context never leaks a permit.

Use NewWithConfigAndMetrics to export active and waiting gauges plus a wait
time histogram to Prometheus.
*/
package concurrency
