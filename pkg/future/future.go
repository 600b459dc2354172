// Package future provides deferred values, the suspending building block of asynchronous cursors.
//
// A Future is awaited with a context and always resolves to the same result, however often and from
// however many goroutines it is awaited.
package future

import (
	"context"
	"sync"
)

// Task computes a value of type T, it is executed at most once per Future.
type Task[T any] func(context.Context) (T, error)

// Future returns the result of its Task, the same result for every call.
type Future[T any] func(context.Context) (T, error)

// New starts task on its own goroutine immediately and returns a Future of its result.
func New[T any](ctx context.Context, task Task[T]) Future[T] {
	run, receive := split(task)
	go run(ctx)
	return receive
}

// NewDeferred returns a Future which only starts task the first time it is awaited, with the context of
// that first await.
func NewDeferred[T any](task Task[T]) Future[T] {
	run, receive := split(task)
	var once sync.Once
	return func(ctx context.Context) (T, error) {
		once.Do(func() { go run(ctx) })
		return receive(ctx)
	}
}

// NewValue returns a Future already resolved to v.
func NewValue[T any](v T) Future[T] {
	return func(context.Context) (T, error) {
		return v, nil
	}
}

// NewError returns a Future already failed with err.
func NewError[T any](err error) Future[T] {
	return func(context.Context) (T, error) {
		var zero T
		return zero, err
	}
}

// Await blocks until f is resolved or ctx is done. A nil Future resolves to the zero value.
func (f Future[T]) Await(ctx context.Context) (T, error) {
	if f == nil {
		var zero T
		return zero, nil
	}
	return f(ctx)
}

// Then returns a deferred Future applying fn to the value of f, a failure of f skips fn.
func Then[T, U any](f Future[T], fn func(context.Context, T) (U, error)) Future[U] {
	return NewDeferred(func(ctx context.Context) (U, error) {
		v, err := f.Await(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(ctx, v)
	})
}

// split separates task into the goroutine body and the receiving side. Only the task outcome is kept:
// an await which gives up on its context does not resolve the Future, a later await still gets the result.
func split[T any](task Task[T]) (run func(context.Context), receive Future[T]) {
	c := &cell[T]{done: make(chan struct{})}
	run = func(ctx context.Context) {
		defer close(c.done)
		defer c.result.recover()
		c.result.Value, c.result.Err = task(ctx)
	}
	return run, c.await
}
