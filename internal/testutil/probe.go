package testutil

import (
	"sync"
	"time"
)

// Probe records how a function is invoked across goroutines: the number of
// calls, how many were running at once and the peak of that number.
type Probe struct {
	mu      sync.Mutex
	calls   int
	running int
	peak    int
	delay   time.Duration
}

// NewProbe creates a Probe whose Enter blocks for delay before returning.
func NewProbe(delay time.Duration) *Probe {
	return &Probe{delay: delay}
}

// Enter marks the start of an invocation and returns the matching exit func.
func (p *Probe) Enter() func() {
	p.mu.Lock()
	p.calls++
	p.running++
	if p.running > p.peak {
		p.peak = p.running
	}
	delay := p.delay
	p.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	return func() {
		p.mu.Lock()
		p.running--
		p.mu.Unlock()
	}
}

// Calls returns the number of invocations so far.
func (p *Probe) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Running returns the number of invocations in progress.
func (p *Probe) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Peak returns the highest number of simultaneous invocations observed.
func (p *Probe) Peak() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peak
}
