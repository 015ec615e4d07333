package concurrency

import (
	"context"
)

// TryAcquire takes a permit without blocking.
func (s *semaphore) TryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Queued waiters go first.
	if s.inUse < s.capacity && len(s.waiters) == 0 {
		s.inUse++
		return true
	}
	return false
}

// Wait blocks until a permit is granted.
func (s *semaphore) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	if s.inUse < s.capacity && len(s.waiters) == 0 {
		s.inUse++
		s.mu.Unlock()
		return nil
	}

	ready := make(chan struct{})
	s.waiters = append(s.waiters, ready)
	s.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		if !s.removeWaiter(ready) {
			// The permit was handed over while we were giving up.
			s.Release()
		}
		return ctx.Err()
	}
}

// Release returns a permit, handing it straight to the oldest waiter if any.
func (s *semaphore) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inUse == 0 {
		panic("concurrency: release without acquire")
	}

	if len(s.waiters) > 0 {
		next := s.waiters[0]
		s.waiters[0] = nil
		s.waiters = s.waiters[1:]
		close(next)
		return
	}
	s.inUse--
}

func (s *semaphore) Capacity() int {
	return s.capacity
}

func (s *semaphore) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capacity - s.inUse
}

func (s *semaphore) InUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inUse
}

func (s *semaphore) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters)
}

// removeWaiter drops ready from the queue and reports whether it was still queued.
func (s *semaphore) removeWaiter(ready chan struct{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, w := range s.waiters {
		if w == ready {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			return true
		}
	}
	return false
}
