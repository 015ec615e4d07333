package workerpool_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/vnykmshr/fanout/pkg/scheduling/workerpool"
)

func Example() {
	pool := workerpool.New(3, 10)
	defer func() { <-pool.Shutdown() }()

	ctx := context.Background()
	squares := make([]int, 5)

	var handles []*workerpool.Handle
	for i := range squares {
		h, err := pool.Submit(ctx, workerpool.TaskFunc(func(context.Context) error {
			squares[i] = i * i
			return nil
		}))
		if err != nil {
			fmt.Println("submit failed:", err)
			return
		}
		handles = append(handles, h)
	}

	for _, h := range handles {
		if res := h.Wait(); res.Error != nil {
			fmt.Println("task failed:", res.Error)
		}
	}
	fmt.Println(squares)
	// Output: [0 1 4 9 16]
}

func ExampleHandle_Wait() {
	pool := workerpool.New(1, 1)
	defer func() { <-pool.Shutdown() }()

	h, _ := pool.Submit(context.Background(), workerpool.TaskFunc(func(context.Context) error {
		return errors.New("disk full")
	}))

	res := h.Wait()
	fmt.Println(res.Index, res.Error)
	// Output: 0 disk full
}
