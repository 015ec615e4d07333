package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vnykmshr/fanout/pkg/common/validation"
)

// Task represents a unit of work that can be executed by a worker.
type Task interface {
	// Execute runs the task with the given context.
	Execute(ctx context.Context) error
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func(ctx context.Context) error

// Execute implements the Task interface for TaskFunc.
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Result represents the outcome of one task execution.
type Result struct {
	// Index is the submission sequence number of the task, starting at 0.
	Index int

	// Error is any error returned by the task, or a recovered panic.
	Error error

	// Duration is how long the task took to execute
	Duration time.Duration

	// WorkerID identifies which worker executed the task
	WorkerID int
}

// Pool runs submitted tasks on a fixed set of workers. Each submission
// returns a Handle, so callers choose the order in which results are awaited.
type Pool interface {
	// Submit queues a task and returns its pending-result handle.
	// It fails if the pool is shut down or ctx is done before the task is queued.
	Submit(ctx context.Context, task Task) (*Handle, error)

	// Shutdown stops accepting tasks. Already queued tasks still run.
	// The returned channel closes once every worker has exited.
	Shutdown() <-chan struct{}

	// Size returns the number of workers in the pool.
	Size() int

	// QueueSize returns the number of queued tasks waiting for a worker.
	QueueSize() int

	// ActiveWorkers returns the number of workers currently executing tasks.
	ActiveWorkers() int

	// TotalSubmitted returns the total number of tasks submitted to the pool.
	TotalSubmitted() int64

	// TotalCompleted returns the total number of tasks completed by the pool.
	TotalCompleted() int64
}

// Config holds configuration options for creating a worker pool.
type Config struct {
	// WorkerCount is the number of workers in the pool.
	// Must be greater than 0.
	WorkerCount int

	// QueueSize is the capacity of the task queue. Submit blocks while the
	// queue is full. Zero means an unbuffered queue.
	QueueSize int

	// TaskTimeout bounds each task execution. Zero means no timeout.
	// A task that fails after its timeout fires reports an error matching
	// errors.ErrTimeout as well as the task's own error.
	TaskTimeout time.Duration

	// PanicHandler is called when a task panics. The panic is always
	// recovered and reported through the task's Result as well.
	PanicHandler func(index int, recovered interface{})

	// OnWorkerStart is called when a worker starts.
	OnWorkerStart func(workerID int)

	// OnWorkerStop is called when a worker stops.
	OnWorkerStop func(workerID int)

	// OnTaskStart is called before a task begins execution.
	OnTaskStart func(workerID int, index int)

	// OnTaskComplete is called after a task completes (success or failure).
	OnTaskComplete func(workerID int, result Result)
}

// job couples a task with its submission context and handle.
type job struct {
	task     Task
	ctx      context.Context
	handle   *Handle
	queuedAt time.Time
}

// workerPool implements the Pool interface.
type workerPool struct {
	config Config

	taskQueue    chan job
	shutdownOnce sync.Once
	done         chan struct{}

	// mu guards isShutdown and the close of taskQueue against concurrent sends.
	mu         sync.RWMutex
	isShutdown bool

	nextIndex      atomic.Int64
	activeWorkers  atomic.Int32
	totalSubmitted atomic.Int64
	totalCompleted atomic.Int64

	workerWg sync.WaitGroup
}

// New creates a new worker pool with the specified number of workers and queue size.
// It panics on invalid arguments; use NewWithConfigSafe to get an error instead.
func New(workerCount, queueSize int) Pool {
	pool, err := NewWithConfigSafe(Config{
		WorkerCount: workerCount,
		QueueSize:   queueSize,
	})
	if err != nil {
		panic(err)
	}
	return pool
}

// NewWithConfigSafe creates a worker pool, returning a ValidationError for a
// non-positive worker count or a negative queue size.
func NewWithConfigSafe(config Config) (Pool, error) {
	if err := validation.ValidatePositive("workerpool", "worker_count", config.WorkerCount); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegative("workerpool", "queue_size", config.QueueSize); err != nil {
		return nil, err
	}

	pool := &workerPool{
		config:    config,
		taskQueue: make(chan job, config.QueueSize),
		done:      make(chan struct{}),
	}

	for i := 0; i < config.WorkerCount; i++ {
		w := &worker{id: i, pool: pool}
		pool.workerWg.Add(1)
		go w.run()
	}

	go func() {
		pool.workerWg.Wait()
		close(pool.done)
	}()

	return pool, nil
}
