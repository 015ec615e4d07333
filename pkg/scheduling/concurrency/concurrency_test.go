package concurrency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/fanout/internal/testutil"
	gferrors "github.com/vnykmshr/fanout/pkg/common/errors"
	"github.com/vnykmshr/fanout/pkg/metrics"
)

func TestNewSafe(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		wantErr  bool
	}{
		{"valid capacity", 10, false},
		{"capacity one", 1, false},
		{"zero capacity", 0, true},
		{"negative capacity", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter, err := NewSafe(tt.capacity)
			if tt.wantErr {
				testutil.AssertError(t, err)
				testutil.AssertEqual(t, gferrors.IsValidationError(err), true)
				testutil.AssertEqual(t, limiter == nil, true)
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, limiter.Capacity(), tt.capacity)
			testutil.AssertEqual(t, limiter.Available(), tt.capacity)
			testutil.AssertEqual(t, limiter.InUse(), 0)
		})
	}
}

func TestNewPanicsOnInvalidCapacity(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic")
		}
	}()
	New(0)
}

func TestTryAcquireRelease(t *testing.T) {
	limiter := New(2)

	testutil.AssertEqual(t, limiter.TryAcquire(), true)
	testutil.AssertEqual(t, limiter.TryAcquire(), true)
	testutil.AssertEqual(t, limiter.TryAcquire(), false)
	testutil.AssertEqual(t, limiter.InUse(), 2)
	testutil.AssertEqual(t, limiter.Available(), 0)

	limiter.Release()
	testutil.AssertEqual(t, limiter.Available(), 1)
	testutil.AssertEqual(t, limiter.TryAcquire(), true)
}

func TestReleaseWithoutAcquirePanics(t *testing.T) {
	limiter := New(1)
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic")
		}
	}()
	limiter.Release()
}

func TestWaitHandsOffOnRelease(t *testing.T) {
	limiter := New(1)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	testutil.AssertNoError(t, limiter.Wait(ctx))

	acquired := make(chan struct{})
	go func() {
		if err := limiter.Wait(ctx); err == nil {
			close(acquired)
		}
	}()

	testutil.Eventually(t, func() bool { return limiter.Waiting() == 1 })

	select {
	case <-acquired:
		t.Fatal("waiter acquired before release")
	default:
	}

	limiter.Release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by release")
	}
	testutil.AssertEqual(t, limiter.InUse(), 1)
	limiter.Release()
	testutil.AssertEqual(t, limiter.InUse(), 0)
}

func TestTryAcquireDoesNotJumpQueue(t *testing.T) {
	limiter := New(1)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	testutil.AssertEqual(t, limiter.TryAcquire(), true)

	done := make(chan error, 1)
	go func() { done <- limiter.Wait(ctx) }()
	testutil.Eventually(t, func() bool { return limiter.Waiting() == 1 })

	limiter.Release()
	testutil.AssertNoError(t, <-done)
	testutil.AssertEqual(t, limiter.TryAcquire(), false)
	limiter.Release()
}

func TestWaitContextCancellation(t *testing.T) {
	limiter := New(1)
	testutil.AssertEqual(t, limiter.TryAcquire(), true)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	testutil.AssertEqual(t, errors.Is(err, context.DeadlineExceeded), true)
	testutil.AssertEqual(t, limiter.Waiting(), 0)
	testutil.AssertEqual(t, limiter.InUse(), 1)

	limiter.Release()
	testutil.AssertEqual(t, limiter.Available(), 1)
}

func TestWaitPreCanceledContext(t *testing.T) {
	limiter := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.Wait(ctx)
	testutil.AssertEqual(t, errors.Is(err, context.Canceled), true)
	testutil.AssertEqual(t, limiter.InUse(), 0)
}

func TestConcurrencyCeiling(t *testing.T) {
	const capacity = 3
	limiter := New(capacity)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	var running, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Wait(ctx); err != nil {
				t.Errorf("wait: %v", err)
				return
			}
			defer limiter.Release()

			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&running, -1)
		}()
	}
	wg.Wait()

	if peak > capacity {
		t.Fatalf("peak concurrency %d exceeds capacity %d", peak, capacity)
	}
	testutil.AssertEqual(t, limiter.InUse(), 0)
	testutil.AssertEqual(t, limiter.Waiting(), 0)
}

func TestMetricsLimiter(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := metrics.Config{Enabled: true, Registry: reg}

	limiter, err := NewWithConfigAndMetrics(Config{Capacity: 2}, "inner", cfg)
	testutil.AssertNoError(t, err)

	ml, ok := limiter.(*MetricsLimiter)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, ml.MetricsEnabled(), true)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()
	testutil.AssertNoError(t, limiter.Wait(ctx))
	testutil.AssertEqual(t, limiter.TryAcquire(), true)

	active := metrics.For(cfg).ConcurrencyActive.WithLabelValues("inner")
	testutil.AssertEqual(t, promtestutil.ToFloat64(active), float64(2))

	limiter.Release()
	limiter.Release()
	testutil.AssertEqual(t, promtestutil.ToFloat64(active), float64(0))

	ml.DisableMetrics()
	testutil.AssertEqual(t, ml.MetricsEnabled(), false)
}

func TestMetricsLimiterDisabled(t *testing.T) {
	limiter, err := NewWithConfigAndMetrics(Config{Capacity: 1}, "plain", metrics.Disabled())
	testutil.AssertNoError(t, err)
	_, wrapped := limiter.(*MetricsLimiter)
	testutil.AssertEqual(t, wrapped, false)

	_, err = NewWithConfigAndMetrics(Config{Capacity: 0}, "bad", metrics.Disabled())
	testutil.AssertError(t, err)
}
