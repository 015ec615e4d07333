/*
Package scheduling provides the execution primitives behind the parallel
executor.

  - workerpool: fixed worker pool returning a Handle per submitted task
  - concurrency: FIFO limiter bounding how many units run at once
  - scheduler: time-based triggering of tasks on top of a worker pool

Worker Pool:

	pool := workerpool.New(4, 100) // 4 workers, queue size 100
	defer func() { <-pool.Shutdown() }()

	h, err := pool.Submit(ctx, workerpool.TaskFunc(func(ctx context.Context) error {
		return nil
	}))
	if err == nil {
		result := h.Wait()
		_ = result.Error
	}

Concurrency Limiter:

	limiter := concurrency.New(5)
	if err := limiter.Wait(ctx); err == nil {
		defer limiter.Release()
		// at most five callers run here at once
	}

Task Scheduler:

	s := scheduler.New()
	_ = s.Start()
	defer func() { <-s.Stop() }()

	_ = s.ScheduleAfter("warmup", task, time.Minute)
	_ = s.ScheduleRepeating("poll", task, time.Hour)
	_ = s.ScheduleCron("weekdays", "0 9 * * MON-FRI", task)

All components are safe for concurrent use. Blocking calls take a
context.Context.
*/
package scheduling
