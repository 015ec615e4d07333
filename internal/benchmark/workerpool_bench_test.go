package benchmark

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vnykmshr/fanout/pkg/scheduling/workerpool"
)

var noop = workerpool.TaskFunc(func(_ context.Context) error { return nil })

// BenchmarkWorkerPoolSubmit measures task submission performance.
func BenchmarkWorkerPoolSubmit(b *testing.B) {
	for _, workers := range []int{2, 4, 8} {
		b.Run(workerLabel(workers), func(b *testing.B) {
			pool, err := workerpool.NewWithConfigSafe(workerpool.Config{WorkerCount: workers, QueueSize: 1000})
			if err != nil {
				b.Fatalf("failed to create pool: %v", err)
			}
			defer func() { <-pool.Shutdown() }()

			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = pool.Submit(ctx, noop)
			}
		})
	}
}

// BenchmarkWorkerPoolThroughput measures end-to-end task execution,
// awaiting every handle in submission order.
func BenchmarkWorkerPoolThroughput(b *testing.B) {
	pool := workerpool.New(4, 100)
	defer func() { <-pool.Shutdown() }()

	ctx := context.Background()
	handles := make([]*workerpool.Handle, 0, b.N)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h, err := pool.Submit(ctx, noop)
		if err != nil {
			b.Fatal(err)
		}
		handles = append(handles, h)
	}
	for _, h := range handles {
		h.Wait()
	}
}

// BenchmarkWorkerPoolContention measures submission from many goroutines.
func BenchmarkWorkerPoolContention(b *testing.B) {
	pool := workerpool.New(8, 500)
	defer func() { <-pool.Shutdown() }()

	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = pool.Submit(ctx, noop)
		}
	})
}

// BenchmarkWorkerPoolWithWork measures performance with actual work.
func BenchmarkWorkerPoolWithWork(b *testing.B) {
	for _, work := range []time.Duration{0, time.Microsecond, 10 * time.Microsecond} {
		label := "NoWork"
		if work > 0 {
			label = work.String()
		}

		b.Run(label, func(b *testing.B) {
			pool := workerpool.New(4, 100)
			defer func() { <-pool.Shutdown() }()

			task := workerpool.TaskFunc(func(_ context.Context) error {
				if work > 0 {
					time.Sleep(work)
				}
				return nil
			})

			ctx := context.Background()
			handles := make([]*workerpool.Handle, 0, b.N)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				h, err := pool.Submit(ctx, task)
				if err != nil {
					b.Fatal(err)
				}
				handles = append(handles, h)
			}
			for _, h := range handles {
				h.Wait()
			}
		})
	}
}

// BenchmarkWorkerPoolLifecycle measures creating a pool, running a few
// tasks and draining it, which is what every isolated Map does.
func BenchmarkWorkerPoolLifecycle(b *testing.B) {
	ctx := context.Background()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pool := workerpool.New(4, 8)
		for j := 0; j < 8; j++ {
			_, _ = pool.Submit(ctx, noop)
		}
		<-pool.Shutdown()
	}
}

func workerLabel(workers int) string {
	return fmt.Sprintf("%dworkers", workers)
}
