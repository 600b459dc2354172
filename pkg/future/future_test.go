package future

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
	"gotest.tools/v3/assert"
)

func delayed(val int, delay time.Duration) Future[int] {
	if delay == 0 {
		return NewValue(val)
	}
	return func(ctx context.Context) (int, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(delay):
			return val, nil
		}
	}
}

func TestNewValue(t *testing.T) {
	t.Run("int", func(t *testing.T) {
		v, err := NewValue(42).Await(context.Background())
		assert.NilError(t, err)
		assert.Equal(t, v, 42)
	})

	t.Run("struct", func(t *testing.T) {
		type page struct{ Size int }
		v, err := NewValue(page{Size: 7}).Await(context.Background())
		assert.NilError(t, err)
		assert.Equal(t, v.Size, 7)
	})
}

func TestNewError(t *testing.T) {
	errTest := errors.New("test error")
	_, err := NewError[int](errTest).Await(context.Background())
	assert.ErrorIs(t, err, errTest)
}

func TestFuture_AwaitTimeout(t *testing.T) {
	f := delayed(1, 100*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFuture_AwaitNil(t *testing.T) {
	var f Future[string]
	v, err := f.Await(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, v, "")
}

func TestFuture_CanceledAwaitDoesNotResolve(t *testing.T) {
	release := make(chan struct{})
	f := New(context.Background(), func(context.Context) (int, error) {
		<-release
		return 7, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	v, err := f.Await(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, v, 7)
}

func TestNewAndNewDeferred(t *testing.T) {
	types := []struct {
		name    string
		factory func(Task[int]) Future[int]
	}{
		{"New", func(task Task[int]) Future[int] { return New(context.Background(), task) }},
		{"NewDeferred", NewDeferred[int]},
	}

	for _, typ := range types {
		t.Run(typ.name+"/success", func(t *testing.T) {
			var count atomic.Int32
			f := typ.factory(func(context.Context) (int, error) {
				count.Add(1)
				return 42, nil
			})
			for range 2 {
				v, err := f.Await(context.Background())
				assert.NilError(t, err)
				assert.Equal(t, v, 42)
			}
			assert.Equal(t, count.Load(), int32(1))
		})

		t.Run(typ.name+"/error", func(t *testing.T) {
			errTest := errors.New("errTest")
			f := typ.factory(func(context.Context) (int, error) {
				return 0, errTest
			})
			for range 2 {
				_, err := f.Await(context.Background())
				assert.ErrorIs(t, err, errTest)
			}
		})

		t.Run(typ.name+"/panic", func(t *testing.T) {
			f := typ.factory(func(context.Context) (int, error) {
				panic("panic!")
			})
			_, err := f.Await(context.Background())
			assert.Error(t, err, "panic!")
			_, err = f.Await(context.Background())
			assert.Error(t, err, "panic!")
		})

		t.Run(typ.name+"/concurrent awaits", func(t *testing.T) {
			var count atomic.Int32
			f := typ.factory(func(context.Context) (int, error) {
				count.Add(1)
				time.Sleep(10 * time.Millisecond)
				return 99, nil
			})
			var g errgroup.Group
			for i := range 5 {
				g.Go(func() error {
					v, err := f.Await(context.Background())
					if err != nil {
						return err
					}
					if v != 99 {
						return errors.New("awaiter " + strconv.Itoa(i) + " got " + strconv.Itoa(v))
					}
					return nil
				})
			}
			assert.NilError(t, g.Wait())
			assert.Equal(t, count.Load(), int32(1))
		})
	}
}

func TestNewDeferred_NotStartedUntilAwaited(t *testing.T) {
	var started atomic.Bool
	f := NewDeferred(func(context.Context) (int, error) {
		started.Store(true)
		return 1, nil
	})
	time.Sleep(5 * time.Millisecond)
	assert.Assert(t, !started.Load())
	v, err := f.Await(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, v, 1)
	assert.Assert(t, started.Load())
}

func TestThen(t *testing.T) {
	ctx := context.Background()
	f := Then(delayed(20, time.Millisecond), func(_ context.Context, v int) (string, error) {
		return strconv.Itoa(v + 1), nil
	})
	v, err := f.Await(ctx)
	assert.NilError(t, err)
	assert.Equal(t, v, "21")

	errTest := errors.New("upstream")
	called := false
	failed := Then(NewError[int](errTest), func(context.Context, int) (string, error) {
		called = true
		return "", nil
	})
	_, err = failed.Await(ctx)
	assert.ErrorIs(t, err, errTest)
	assert.Assert(t, !called)
}

func TestResult_Get(t *testing.T) {
	v, err := Result[string]{Value: "ok"}.Get()
	assert.NilError(t, err)
	assert.Equal(t, v, "ok")
}
