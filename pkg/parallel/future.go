package parallel

// future is the pending result of one inner unit.
type future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *future[T] {
	return &future[T]{done: make(chan struct{})}
}

func (f *future[T]) resolve(val T, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

func (f *future[T]) await() (T, error) {
	<-f.done
	return f.val, f.err
}
