package asynccursor

import (
	"context"

	"github.com/norio-nomura/lazyseq/internal/core"
	"github.com/norio-nomura/lazyseq/pkg/cursor"
	"github.com/norio-nomura/lazyseq/pkg/future"
	"github.com/norio-nomura/lazyseq/pkg/source"
	"github.com/norio-nomura/lazyseq/pkg/xiter"
)

// Step is returned by [Pipe] callbacks.
type Step = cursor.Step

const (
	Emit = cursor.Emit
	Skip = cursor.Skip
	Stop = cursor.Stop
)

// ErrLeafType is returned by [Flat] pulls meeting a leaf which is not of the requested type.
var ErrLeafType = cursor.ErrLeafType

// TakeWhile yields values until one fails pred, that value is yielded too. An error of pred fails the pull.
func (c *Cursor[T]) TakeWhile(pred func(context.Context, T) (bool, error)) *Cursor[T] {
	return derive(core.TakeWhile(c.core.Opener(), liftFactory(pred)))
}

// SkipWhile drops the leading values satisfying pred.
func (c *Cursor[T]) SkipWhile(pred func(context.Context, T) (bool, error)) *Cursor[T] {
	return derive(core.SkipWhile(c.core.Opener(), liftFactory(pred)))
}

// Take yields the first n values.
func (c *Cursor[T]) Take(n int) *Cursor[T] {
	return derive(core.Take(c.core.Opener(), n))
}

// Skip drops the first n values.
func (c *Cursor[T]) Skip(n int) *Cursor[T] {
	return derive(core.Drop(c.core.Opener(), n))
}

// Filter yields the values satisfying pred.
func (c *Cursor[T]) Filter(pred func(context.Context, T) (bool, error)) *Cursor[T] {
	return derive(core.Filter(c.core.Opener(), lift(pred)))
}

// Pipe maps, filters and terminates with a single callback.
func Pipe[T, U any](c *Cursor[T], fn func(context.Context, T) (U, Step, error)) *Cursor[U] {
	piped := core.PipeFunc[T, U](fn)
	return derive(core.Pipe(c.core.Opener(), func() core.PipeFunc[T, U] { return piped }))
}

// MapWhile yields fn of each value until fn reports false.
func MapWhile[T, U any](c *Cursor[T], fn func(context.Context, T) (U, bool, error)) *Cursor[U] {
	return Pipe(c, func(ctx context.Context, v T) (U, Step, error) {
		u, ok, err := fn(ctx, v)
		if err != nil || !ok {
			return u, Stop, err
		}
		return u, Emit, nil
	})
}

// Map yields fn of each value.
func Map[T, U any](c *Cursor[T], fn func(context.Context, T) (U, error)) *Cursor[U] {
	return Pipe(c, func(ctx context.Context, v T) (U, Step, error) {
		u, err := fn(ctx, v)
		return u, Emit, err
	})
}

// FilterMap yields the results fn reports present.
func FilterMap[T, U any](c *Cursor[T], fn func(context.Context, T) (U, bool, error)) *Cursor[U] {
	return Pipe(c, func(ctx context.Context, v T) (U, Step, error) {
		u, ok, err := fn(ctx, v)
		if err != nil || !ok {
			return u, Skip, err
		}
		return u, Emit, nil
	})
}

// Dedupe yields each distinct value once per lap.
func Dedupe[T comparable](c *Cursor[T]) *Cursor[T] {
	return derive(core.Dedupe(c.core.Opener()))
}

// Await resolves a cursor of futures into a cursor of their values, one at a time and in order.
func Await[T any](c *Cursor[future.Future[T]]) *Cursor[T] {
	return Map(c, func(ctx context.Context, f future.Future[T]) (T, error) {
		return f.Await(ctx)
	})
}

// MapFuture starts fn for each value and awaits its result before the next value is pulled.
func MapFuture[T, U any](c *Cursor[T], fn func(T) future.Future[U]) *Cursor[U] {
	return Await(Map(c, func(_ context.Context, v T) (future.Future[U], error) {
		return fn(v), nil
	}))
}

// Fold is a strict left fold draining c, the first error stops it.
func Fold[T, U any](ctx context.Context, c *Cursor[T], seed U, fn func(context.Context, U, T) (U, error)) (U, error) {
	return core.Fold(ctx, c.core, seed, fn)
}

// Collect drains c into a slice.
func (c *Cursor[T]) Collect(ctx context.Context) ([]T, error) {
	return core.Collect(ctx, c.core)
}

// ForEach drains c calling fn for every value. An error of fn abandons the lap and is returned.
func (c *Cursor[T]) ForEach(ctx context.Context, fn func(context.Context, T) error) error {
	return core.ForEach(ctx, c.core, fn)
}

// First returns the first value of a fresh lap, c does not move.
func (c *Cursor[T]) First(ctx context.Context) (T, bool, error) {
	return core.First(ctx, c.core)
}

// Last drains c and returns its final value.
func (c *Cursor[T]) Last(ctx context.Context) (T, bool, error) {
	return core.Last(ctx, c.core)
}

// Size drains c and counts its values.
func (c *Cursor[T]) Size(ctx context.Context) (int, error) {
	return core.Size(ctx, c.core)
}

// Nth pulls c from its current position and returns the k-th value.
func (c *Cursor[T]) Nth(ctx context.Context, k int) (T, bool, error) {
	return core.Nth(ctx, c.core, k)
}

// Position pulls c from its current position and returns the index of the first value equal to target,
// or -1.
func Position[T comparable](ctx context.Context, c *Cursor[T], target T) (int, error) {
	return core.Position(ctx, c.core, func(_ context.Context, v T) (bool, error) {
		return v == target, nil
	})
}

// PositionFunc is [Position] with a caller supplied equality.
func PositionFunc[T any](ctx context.Context, c *Cursor[T], eq func(context.Context, T) (bool, error)) (int, error) {
	return core.Position(ctx, c.core, lift(eq))
}

// Exists pulls c from its current position until target is found.
func Exists[T comparable](ctx context.Context, c *Cursor[T], target T) (bool, error) {
	i, err := Position(ctx, c, target)
	return i >= 0, err
}

// ExistsFunc is [Exists] with a caller supplied equality.
func ExistsFunc[T any](ctx context.Context, c *Cursor[T], eq func(context.Context, T) (bool, error)) (bool, error) {
	i, err := PositionFunc(ctx, c, eq)
	return i >= 0, err
}

// Find returns the first value satisfying pred without moving c.
func (c *Cursor[T]) Find(ctx context.Context, pred func(context.Context, T) (bool, error)) (T, bool, error) {
	return core.Find(ctx, c.core, lift(pred))
}

// FindMap pulls c until fn reports a present result and returns it.
func FindMap[T, U any](ctx context.Context, c *Cursor[T], fn func(context.Context, T) (U, bool, error)) (U, bool, error) {
	return core.FindMap(ctx, c.core, fn)
}

// Every reports whether all values satisfy pred, true for an empty c.
func (c *Cursor[T]) Every(ctx context.Context, pred func(context.Context, T) (bool, error)) (bool, error) {
	return core.Every(ctx, c.core, lift(pred))
}

// Some reports whether any value satisfies pred.
func (c *Cursor[T]) Some(ctx context.Context, pred func(context.Context, T) (bool, error)) (bool, error) {
	return core.Some(ctx, c.core, lift(pred))
}

// Chain yields a lap of c followed by a lap of other. Synchronous sources chain through [source.Lift].
func (c *Cursor[T]) Chain(other source.Async[T]) *Cursor[T] {
	return derive(core.Chain[T](c.core.Opener(), other.Open))
}

// Cycle repeats c forever, an empty c gives an empty cycle.
func (c *Cursor[T]) Cycle() *Cursor[T] {
	return derive(core.Cycle(c.core.Opener()))
}

// Enumerate pairs every value with its index in the lap.
func Enumerate[T any](c *Cursor[T]) *Cursor[xiter.Indexed[T]] {
	return derive(core.Enumerate(c.core.Opener()))
}

// Zip pairs the values of a and b until either runs out.
func Zip[A, B any](a *Cursor[A], b *Cursor[B]) *Cursor[xiter.Zipped[A, B]] {
	return derive(core.Zip(a.core.Opener(), b.core.Opener()))
}

// ZipLongest pairs the values of a and b until both run out.
func ZipLongest[A, B any](a *Cursor[A], b *Cursor[B]) *Cursor[xiter.Zipped[A, B]] {
	return derive(core.ZipLongest(a.core.Opener(), b.core.Opener()))
}

// FlatMap descends depth first into values which are themselves cursors, synchronous or not, and yields
// fn of every other value.
func FlatMap[T, U any](c *Cursor[T], fn func(context.Context, any) (U, error)) *Cursor[U] {
	return derive(core.Flat(core.Box(c.core.Opener()), unwrap, fn))
}

// Flat is [FlatMap] asserting every leaf to U.
func Flat[U, T any](c *Cursor[T]) *Cursor[U] {
	return derive(core.Flat(core.Box(c.core.Opener()), unwrap, core.AssertLeaf[U]))
}

func unwrap(v any) (source.Producer[any], bool) {
	if n, ok := v.(source.Nested); ok {
		return n.OpenNested(), true
	}
	return nil, false
}
