package workerpool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	gferrors "github.com/vnykmshr/fanout/pkg/common/errors"
)

// Submit queues a task and returns its handle.
func (p *workerPool) Submit(ctx context.Context, task Task) (*Handle, error) {
	if task == nil {
		return nil, fmt.Errorf("task cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("cannot submit task: context canceled: %w", ctx.Err())
	default:
	}

	// The read lock keeps Shutdown from closing the queue under a pending send.
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.isShutdown {
		return nil, fmt.Errorf("cannot submit task: %w", gferrors.ErrClosed)
	}

	handle := newHandle(int(p.nextIndex.Add(1) - 1))
	j := job{task: task, ctx: ctx, handle: handle, queuedAt: time.Now()}

	select {
	case p.taskQueue <- j:
		p.totalSubmitted.Add(1)
		return handle, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("cannot submit task: context canceled: %w", ctx.Err())
	}
}

// Shutdown stops accepting new tasks and lets queued tasks drain.
func (p *workerPool) Shutdown() <-chan struct{} {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.isShutdown = true
		close(p.taskQueue)
		p.mu.Unlock()
	})
	return p.done
}

// Size returns the number of workers in the pool.
func (p *workerPool) Size() int {
	return p.config.WorkerCount
}

// QueueSize returns the current number of queued tasks waiting for execution.
func (p *workerPool) QueueSize() int {
	return len(p.taskQueue)
}

func (p *workerPool) ActiveWorkers() int {
	return int(p.activeWorkers.Load())
}

func (p *workerPool) TotalSubmitted() int64 {
	return p.totalSubmitted.Load()
}

func (p *workerPool) TotalCompleted() int64 {
	return p.totalCompleted.Load()
}

// worker represents a single worker in the pool.
type worker struct {
	id   int
	pool *workerPool
}

// run is the main loop for a worker. It exits once the queue is closed and drained.
func (w *worker) run() {
	defer w.pool.workerWg.Done()

	if w.pool.config.OnWorkerStart != nil {
		w.pool.config.OnWorkerStart(w.id)
	}
	if w.pool.config.OnWorkerStop != nil {
		defer w.pool.config.OnWorkerStop(w.id)
	}

	for j := range w.pool.taskQueue {
		w.execute(j)
	}
}

// execute runs one job and completes its handle, recovering panics.
func (w *worker) execute(j job) {
	p := w.pool

	p.activeWorkers.Add(1)

	if p.config.OnTaskStart != nil {
		p.config.OnTaskStart(w.id, j.handle.index)
	}

	start := time.Now()
	var err error

	defer func() {
		if r := recover(); r != nil {
			if p.config.PanicHandler != nil {
				p.config.PanicHandler(j.handle.index, r)
			}
			err = gferrors.NewOperationError("workerpool", "Execute", fmt.Errorf("task panicked: %v", r)).
				WithContext(string(debug.Stack()))
		}

		result := Result{
			Index:    j.handle.index,
			Error:    err,
			Duration: time.Since(start),
			WorkerID: w.id,
		}

		p.activeWorkers.Add(-1)
		p.totalCompleted.Add(1)

		if p.config.OnTaskComplete != nil {
			p.config.OnTaskComplete(w.id, result)
		}
		j.handle.complete(result)
	}()

	ctx := j.ctx
	if p.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.TaskTimeout)
		defer cancel()
	}

	err = j.task.Execute(ctx)

	// Only the pool's own deadline is reported as ErrTimeout.
	if err != nil && p.config.TaskTimeout > 0 && j.ctx.Err() == nil &&
		errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %v: %w", gferrors.ErrTimeout, p.config.TaskTimeout, err)
	}
}
