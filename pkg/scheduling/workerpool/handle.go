package workerpool

import (
	"context"
)

// Handle is the pending result of one submitted task.
type Handle struct {
	index  int
	done   chan struct{}
	result Result
}

func newHandle(index int) *Handle {
	return &Handle{index: index, done: make(chan struct{})}
}

// Index returns the submission sequence number of the task.
func (h *Handle) Index() int {
	return h.index
}

// Done returns a channel that is closed once the task has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task has finished and returns its Result.
func (h *Handle) Wait() Result {
	<-h.done
	return h.result
}

// WaitContext is Wait bounded by ctx. It returns ctx.Err() if ctx is done
// first; the task itself keeps running.
func (h *Handle) WaitContext(ctx context.Context) (Result, error) {
	select {
	case <-h.done:
		return h.result, nil
	case <-ctx.Done():
		return Result{Index: h.index}, ctx.Err()
	}
}

func (h *Handle) complete(result Result) {
	h.result = result
	close(h.done)
}
