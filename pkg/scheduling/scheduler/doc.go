/*
Package scheduler runs workerpool tasks at fixed times, at fixed intervals or on
cron schedules.

A background loop wakes every TickInterval, submits due jobs to a worker pool
and reschedules repeating ones. Without a configured pool the scheduler owns a
single-worker pool, so runs of one job never overlap.

Basic usage:

	s := scheduler.New()
	defer func() { <-s.Stop() }()

	if err := s.Start(); err != nil {
		return err
	}

	job := workerpool.TaskFunc(func(ctx context.Context) error {
		_, err := exec.Run(ctx)
		return err
	})

	s.ScheduleAfter("warmup", job, 5*time.Second)
	s.ScheduleRepeating("poll", job, 30*time.Second)
	s.ScheduleCron("nightly", "0 2 * * *", job)

Cron expressions:

ScheduleCron accepts standard five-field expressions, a six-field form with a
leading seconds field and descriptors:

	"0,30 * * * *"     on the hour and half past
	"30 0 9 * * 1-5"   09:00:30 on weekdays
	"@hourly"          at the start of every hour
	"@every 10s"       every 10 seconds

Use ValidateCron to check an expression without scheduling it.

Stopping:

Stop halts the loop, cancels the context handed to running jobs and returns a
channel that closes once they have returned. A stopped scheduler cannot be
restarted.

Set Config.Metrics to count runs and failures per job and to record run
durations. Job outcomes are logged through Config.Logger.
*/
package scheduler
