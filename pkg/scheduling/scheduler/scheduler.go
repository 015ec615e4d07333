package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	gferrors "github.com/vnykmshr/fanout/pkg/common/errors"
	"github.com/vnykmshr/fanout/pkg/metrics"
	"github.com/vnykmshr/fanout/pkg/scheduling/workerpool"
)

// Job describes a scheduled job.
type Job struct {
	ID       string
	RunAt    time.Time
	Interval time.Duration // zero for one-time and cron jobs
	Cron     string        // empty unless scheduled with ScheduleCron
	Created  time.Time
	Runs     int64
}

// Scheduler runs jobs at fixed times, at fixed intervals or on cron schedules.
type Scheduler interface {
	Schedule(id string, task workerpool.Task, runAt time.Time) error
	ScheduleAfter(id string, task workerpool.Task, delay time.Duration) error
	ScheduleRepeating(id string, task workerpool.Task, interval time.Duration) error
	ScheduleCron(id string, cronExpr string, task workerpool.Task) error

	Cancel(id string) bool
	CancelAll()
	List() []Job
	Next(id string) (time.Time, bool)

	// Start begins dispatching due jobs.
	Start() error

	// Stop halts dispatching, cancels the context of running jobs and returns
	// a channel that closes once they have returned.
	Stop() <-chan struct{}
}

// Config holds scheduler configuration.
type Config struct {
	// WorkerPool runs due jobs. If nil, the scheduler owns a single-worker pool
	// so runs of the same job never overlap.
	WorkerPool workerpool.Pool

	// Location evaluates cron expressions. Defaults to time.Local.
	Location *time.Location

	// TickInterval is how often due jobs are looked for. Defaults to 50ms.
	TickInterval time.Duration

	// MaxJobs caps the number of scheduled jobs. Defaults to 10000.
	MaxJobs int

	// Logger receives job outcomes. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records job runs, failures and durations.
	Metrics metrics.Config
}

// cronParser accepts five-field expressions, an optional leading seconds
// field and descriptors such as @hourly or @every 10s.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateCron reports whether expr is an expression ScheduleCron accepts.
func ValidateCron(expr string) error {
	if expr == "" {
		return gferrors.NewValidationError("scheduler", "cron", expr, "cannot be empty").
			WithHint("use five fields, six with seconds, or a descriptor such as @every 1m")
	}
	if _, err := cronParser.Parse(expr); err != nil {
		return gferrors.NewValidationError("scheduler", "cron", expr, err.Error()).
			WithHint("use five fields, six with seconds, or a descriptor such as @every 1m")
	}
	return nil
}

type scheduledJob struct {
	id           string
	task         workerpool.Task
	runAt        time.Time
	interval     time.Duration
	cronExpr     string
	cronSchedule cron.Schedule
	created      time.Time
	runs         int64
}

type scheduler struct {
	pool         workerpool.Pool
	ownPool      bool
	location     *time.Location
	tickInterval time.Duration
	maxJobs      int
	logger       *slog.Logger
	registry     *metrics.Registry

	mu       sync.RWMutex
	jobs     map[string]*scheduledJob
	running  bool
	stopped  bool
	done     chan struct{}
	cancel   context.CancelFunc
	loopDone chan struct{}
	inflight sync.WaitGroup
	stopOnce sync.Once
	finished chan struct{}
}

// New creates a scheduler with default configuration.
func New() Scheduler {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a scheduler with custom configuration.
func NewWithConfig(cfg Config) Scheduler {
	pool := cfg.WorkerPool
	ownPool := false
	if pool == nil {
		pool = workerpool.New(1, 16)
		ownPool = true
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = 50 * time.Millisecond
	}

	maxJobs := cfg.MaxJobs
	if maxJobs <= 0 {
		maxJobs = 10000
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &scheduler{
		pool:         pool,
		ownPool:      ownPool,
		location:     location,
		tickInterval: tickInterval,
		maxJobs:      maxJobs,
		logger:       logger,
		jobs:         make(map[string]*scheduledJob),
		finished:     make(chan struct{}),
	}
	if cfg.Metrics.Enabled {
		s.registry = metrics.For(cfg.Metrics)
	}
	return s
}

func validateJob(id string, task workerpool.Task) error {
	if id == "" {
		return gferrors.NewValidationError("scheduler", "id", id, "cannot be empty")
	}
	if len(id) > 255 {
		return gferrors.NewValidationError("scheduler", "id", id, "too long").
			WithHint("use at most 255 characters")
	}
	if task == nil {
		return gferrors.NewValidationError("scheduler", "task", nil, "cannot be nil")
	}
	return nil
}

func (s *scheduler) add(job *scheduledJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.id]; exists {
		return fmt.Errorf("job with ID %q already exists, use a different ID or cancel the existing job first", job.id)
	}
	if len(s.jobs) >= s.maxJobs {
		return fmt.Errorf("cannot schedule job: %w (maximum %d jobs)", gferrors.ErrCapacityExceeded, s.maxJobs)
	}

	job.created = time.Now()
	s.jobs[job.id] = job
	return nil
}

func (s *scheduler) Schedule(id string, task workerpool.Task, runAt time.Time) error {
	if err := validateJob(id, task); err != nil {
		return err
	}
	if runAt.IsZero() {
		return gferrors.NewValidationError("scheduler", "run_at", runAt, "cannot be zero")
	}
	return s.add(&scheduledJob{id: id, task: task, runAt: runAt})
}

func (s *scheduler) ScheduleAfter(id string, task workerpool.Task, delay time.Duration) error {
	return s.Schedule(id, task, time.Now().Add(delay))
}

// ScheduleRepeating runs task immediately and then every interval.
func (s *scheduler) ScheduleRepeating(id string, task workerpool.Task, interval time.Duration) error {
	if err := validateJob(id, task); err != nil {
		return err
	}
	if interval <= 0 {
		return gferrors.NewValidationError("scheduler", "interval", interval, "must be positive")
	}
	return s.add(&scheduledJob{id: id, task: task, runAt: time.Now(), interval: interval})
}

func (s *scheduler) ScheduleCron(id string, cronExpr string, task workerpool.Task) error {
	if err := validateJob(id, task); err != nil {
		return err
	}
	if err := ValidateCron(cronExpr); err != nil {
		return err
	}

	schedule, _ := cronParser.Parse(cronExpr)
	return s.add(&scheduledJob{
		id:           id,
		task:         task,
		runAt:        schedule.Next(time.Now().In(s.location)),
		cronExpr:     cronExpr,
		cronSchedule: schedule,
	})
}

func (s *scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		delete(s.jobs, id)
		return true
	}
	return false
}

func (s *scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = make(map[string]*scheduledJob)
}

// List returns the scheduled jobs sorted by next run time.
func (s *scheduler) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, Job{
			ID:       j.id,
			RunAt:    j.runAt,
			Interval: j.interval,
			Cron:     j.cronExpr,
			Created:  j.created,
			Runs:     j.runs,
		})
	}

	sort.Slice(jobs, func(i, k int) bool {
		return jobs[i].RunAt.Before(jobs[k].RunAt)
	})
	return jobs
}

func (s *scheduler) Next(id string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return time.Time{}, false
	}
	return j.runAt, true
}

func (s *scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return fmt.Errorf("cannot start scheduler: %w", gferrors.ErrClosed)
	}
	if s.running {
		return fmt.Errorf("scheduler already running, call Stop() first")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.loopDone = make(chan struct{})

	go s.run(ctx, s.done, s.loopDone)
	return nil
}

func (s *scheduler) Stop() <-chan struct{} {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		wasRunning := s.running
		s.running = false
		if wasRunning {
			close(s.done)
			s.cancel()
		}
		loopDone := s.loopDone
		s.mu.Unlock()

		go func() {
			defer close(s.finished)
			if wasRunning {
				<-loopDone
			}
			s.inflight.Wait()
			if s.ownPool {
				<-s.pool.Shutdown()
			}
		}()
	})
	return s.finished
}

func (s *scheduler) run(ctx context.Context, done, loopDone chan struct{}) {
	defer close(loopDone)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			s.dispatch(ctx, now)
		}
	}
}

// dispatch submits every due job and reschedules repeating ones.
func (s *scheduler) dispatch(ctx context.Context, now time.Time) {
	s.mu.Lock()
	due := make([]*scheduledJob, 0)
	for id, j := range s.jobs {
		if now.Before(j.runAt) {
			continue
		}
		due = append(due, j)
		j.runs++

		switch {
		case j.interval > 0:
			j.runAt = now.Add(j.interval)
		case j.cronSchedule != nil:
			j.runAt = j.cronSchedule.Next(now.In(s.location))
		default:
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()

	for _, j := range due {
		handle, err := s.pool.Submit(ctx, j.task)
		if err != nil {
			s.logger.Warn("job not submitted", "job", j.id, "error", err)
			s.record(j.id, 0, err)
			continue
		}

		s.inflight.Add(1)
		go func(id string) {
			defer s.inflight.Done()
			res := handle.Wait()
			s.record(id, res.Duration, res.Error)
		}(j.id)
	}
}

func (s *scheduler) record(id string, d time.Duration, err error) {
	if s.registry != nil {
		s.registry.JobRuns.WithLabelValues(id).Inc()
		s.registry.JobDuration.WithLabelValues(id).Observe(d.Seconds())
		if err != nil {
			s.registry.JobFailures.WithLabelValues(id).Inc()
		}
	}

	if err != nil {
		s.logger.Warn("job failed", "job", id, "duration", d, "error", err)
		return
	}
	s.logger.Debug("job finished", "job", id, "duration", d)
}
