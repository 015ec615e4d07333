/*
Package workerpool provides a fixed-size worker pool whose submissions return
pending-result handles.

A pool manages a fixed number of worker goroutines pulling tasks from a queue.
Every Submit returns a *Handle; awaiting handles in the order they were
submitted gives results in submission order no matter which worker finishes
first.

Basic usage:

	pool := workerpool.New(4, 100) // 4 workers, queue size 100
	defer pool.Shutdown()

	var handles []*workerpool.Handle
	for _, item := range items {
		item := item
		h, err := pool.Submit(ctx, workerpool.TaskFunc(func(ctx context.Context) error {
			return process(ctx, item)
		}))
		if err != nil {
			return err
		}
		handles = append(handles, h)
	}

	for _, h := range handles {
		if res := h.Wait(); res.Error != nil {
			return res.Error
		}
	}

Shutdown:

Shutdown stops accepting tasks but lets already queued tasks run; the returned
channel closes when the last worker exits. Nothing is cancelled.

Panics:

A panicking task is recovered. Its Result carries an *errors.OperationError
with the panic value and the stack trace, and Config.PanicHandler is called.

Configuration:

	config := workerpool.Config{
		WorkerCount: 8,
		QueueSize:   64,
		TaskTimeout: 30 * time.Second,
		OnTaskComplete: func(workerID int, result workerpool.Result) {
			log.Printf("worker %d finished task %d in %v", workerID, result.Index, result.Duration)
		},
	}
	pool, err := workerpool.NewWithConfigSafe(config)

Use NewWithConfigAndMetrics to export submitted/completed/failed counters,
queue wait and duration histograms and pool gauges to Prometheus.
*/
package workerpool
