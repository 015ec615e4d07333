package concurrency

import (
	"context"
	"sync"

	"github.com/vnykmshr/fanout/pkg/common/validation"
)

// Limiter bounds the number of operations running at the same time.
// It is a counting semaphore whose waiters are served in arrival order.
type Limiter interface {
	// TryAcquire takes a permit if one is free and reports whether it did.
	// It never blocks.
	TryAcquire() bool

	// Wait blocks until a permit is granted or ctx is done.
	Wait(ctx context.Context) error

	// Release returns a permit. It panics if no permit is held.
	Release()

	// Capacity returns the maximum number of permits.
	Capacity() int

	// Available returns the number of free permits.
	Available() int

	// InUse returns the number of permits currently held.
	InUse() int

	// Waiting returns the number of callers blocked in Wait.
	Waiting() int
}

// Config holds configuration options for creating a new Limiter.
type Config struct {
	// Capacity is the maximum number of concurrent operations allowed.
	Capacity int
}

// semaphore implements Limiter with a mutex and a FIFO waiter queue.
type semaphore struct {
	mu       sync.Mutex
	capacity int
	inUse    int
	waiters  []chan struct{}
}

// New creates a limiter and panics if capacity is not positive.
func New(capacity int) Limiter {
	l, err := NewSafe(capacity)
	if err != nil {
		panic(err)
	}
	return l
}

// NewSafe creates a limiter with validation that returns an error instead of panicking.
func NewSafe(capacity int) (Limiter, error) {
	return NewWithConfigSafe(Config{Capacity: capacity})
}

// NewWithConfigSafe creates a limiter from config, returning a ValidationError
// for a non-positive capacity.
func NewWithConfigSafe(config Config) (Limiter, error) {
	if err := validation.ValidatePositive("concurrency", "capacity", config.Capacity); err != nil {
		return nil, err
	}
	return &semaphore{capacity: config.Capacity}, nil
}
