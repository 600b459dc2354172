package future

import (
	"context"
	"fmt"
)

// Result is the outcome of a Task.
type Result[T any] struct {
	Value T
	Err   error
}

// Get returns the result as a value, error pair.
func (r Result[T]) Get() (T, error) {
	return r.Value, r.Err
}

// cell holds the outcome of one task run, readable once done is closed.
type cell[T any] struct {
	done   chan struct{}
	result Result[T]
}

// await waits for the outcome. When ctx is done first the outcome still wins if it is already there.
func (c *cell[T]) await(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.result.Get()
	case <-ctx.Done():
		select {
		case <-c.done:
			return c.result.Get()
		default:
			var zero T
			return zero, context.Cause(ctx)
		}
	}
}

// recover turns a panic of the task goroutine into the task error.
func (r *Result[T]) recover() {
	switch v := recover().(type) {
	case nil:
	case error:
		r.Err = v
	default:
		r.Err = fmt.Errorf("%+v", v)
	}
}
