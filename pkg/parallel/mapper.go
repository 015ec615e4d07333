package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	gferrors "github.com/vnykmshr/fanout/pkg/common/errors"
	"github.com/vnykmshr/fanout/pkg/metrics"
	"github.com/vnykmshr/fanout/pkg/scheduling/concurrency"
	"github.com/vnykmshr/fanout/pkg/scheduling/workerpool"
)

// MapFunc is applied to each item by a Mapper.
type MapFunc[In, Out any] func(ctx context.Context, item In) (Out, error)

// Mapper applies a function to every item with bounded concurrency.
//
// Map submits one unit per item in item order, awaits the units in the same
// order and returns the outputs in that order. The first failure found while
// awaiting is returned and no outputs are. Map never cancels units: it
// returns only after every submitted unit has finished.
type Mapper[In, Out any] interface {
	Map(ctx context.Context, items []In, fn MapFunc[In, Out]) ([]Out, error)
}

var (
	_ Mapper[int, int] = (*SharedPool[int, int])(nil)
	_ Mapper[int, int] = (*IsolatedPool[int, int])(nil)
)

// SharedPool runs units as goroutines sharing the caller's memory. The
// number of units invoking fn at once never exceeds the limiter's capacity.
type SharedPool[In, Out any] struct {
	limiter concurrency.Limiter
}

// NewSharedPool creates a SharedPool gated by limiter.
func NewSharedPool[In, Out any](limiter concurrency.Limiter) *SharedPool[In, Out] {
	return &SharedPool[In, Out]{limiter: limiter}
}

// Map implements Mapper. A panic in fn is returned as an *errors.OperationError.
func (p *SharedPool[In, Out]) Map(ctx context.Context, items []In, fn MapFunc[In, Out]) ([]Out, error) {
	pending := make([]*future[Out], len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		f := newFuture[Out]()
		pending[i] = f

		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := p.limiter.Wait(ctx); err != nil {
				var zero Out
				f.resolve(zero, err)
				return
			}
			defer p.limiter.Release()

			f.resolve(invoke(ctx, i, item, fn))
		}()
	}
	defer wg.Wait()

	out := make([]Out, len(items))
	for i, f := range pending {
		v, err := f.await()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func invoke[In, Out any](ctx context.Context, index int, item In, fn MapFunc[In, Out]) (out Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gferrors.NewOperationError("parallel", "invoke", fmt.Errorf("panic: %v", r)).
				WithContext(fmt.Sprintf("unit %d", index))
		}
	}()
	return fn(ctx, item)
}

// IsolatedConfig configures an IsolatedPool.
type IsolatedConfig struct {
	// MaxWorkers caps the number of workers running at once.
	// Zero means runtime.NumCPU().
	MaxWorkers int

	// Codec copies values across the isolation boundary. Nil means GobCodec.
	Codec Codec

	// Name labels the underlying worker pool in metrics.
	Name string

	// Metrics instruments the underlying worker pool.
	Metrics metrics.Config

	// OnTransfer, when set, observes the size of every encoded payload.
	// direction is "in" for inputs and "out" for outputs.
	OnTransfer func(direction string, size int)
}

// IsolatedPool runs each item on a worker of a fixed-size worker pool. Items
// and outputs cross the boundary only as encoded bytes, so a worker never
// shares memory with the caller or with other workers.
type IsolatedPool[In, Out any] struct {
	config IsolatedConfig
}

// NewIsolatedPool creates an IsolatedPool. The worker pool itself is created
// per Map call and sized to min(len(items), MaxWorkers).
func NewIsolatedPool[In, Out any](config IsolatedConfig) *IsolatedPool[In, Out] {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = runtime.NumCPU()
	}
	if config.Codec == nil {
		config.Codec = GobCodec{}
	}
	return &IsolatedPool[In, Out]{config: config}
}

// Map implements Mapper. Encoding an item or decoding an output fails with an
// error matching errors.ErrTransfer. Encoding errors inside a worker are
// transfer errors too; other worker errors are returned unmodified.
func (p *IsolatedPool[In, Out]) Map(ctx context.Context, items []In, fn MapFunc[In, Out]) ([]Out, error) {
	if len(items) == 0 {
		return []Out{}, nil
	}

	workers := min(len(items), p.config.MaxWorkers)
	pool, err := workerpool.NewWithConfigAndMetrics(workerpool.Config{
		WorkerCount: workers,
		QueueSize:   len(items),
	}, p.config.Name, p.config.Metrics)
	if err != nil {
		return nil, err
	}
	defer func() { <-pool.Shutdown() }()

	codec := p.config.Codec
	handles := make([]*workerpool.Handle, 0, len(items))
	replies := make([][]byte, len(items))

	for i, item := range items {
		payload, err := codec.Marshal(item)
		if err != nil {
			return nil, gferrors.NewTransferError("parallel", "submit", err).
				WithContext(fmt.Sprintf("item %d, codec %s", i, codec.Name()))
		}
		p.observe("in", len(payload))

		h, err := pool.Submit(ctx, workerpool.TaskFunc(func(ctx context.Context) error {
			var in In
			if err := codec.Unmarshal(payload, &in); err != nil {
				return gferrors.NewTransferError("parallel", "receive", err).
					WithContext(fmt.Sprintf("item %d, codec %s", i, codec.Name()))
			}

			out, err := fn(ctx, in)
			if err != nil {
				return err
			}

			reply, err := codec.Marshal(out)
			if err != nil {
				return gferrors.NewTransferError("parallel", "reply", err).
					WithContext(fmt.Sprintf("item %d, codec %s", i, codec.Name()))
			}
			replies[i] = reply
			return nil
		}))
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}

	out := make([]Out, len(items))
	for i, h := range handles {
		res := h.Wait()
		if res.Error != nil {
			return nil, res.Error
		}

		p.observe("out", len(replies[i]))
		if err := codec.Unmarshal(replies[i], &out[i]); err != nil {
			return nil, gferrors.NewTransferError("parallel", "collect", err).
				WithContext(fmt.Sprintf("item %d, codec %s", i, codec.Name()))
		}
	}
	return out, nil
}

func (p *IsolatedPool[In, Out]) observe(direction string, size int) {
	if p.config.OnTransfer != nil {
		p.config.OnTransfer(direction, size)
	}
}
