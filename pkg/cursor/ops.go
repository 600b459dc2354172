package cursor

import (
	"context"

	"github.com/norio-nomura/lazyseq/internal/check"
	"github.com/norio-nomura/lazyseq/internal/core"
	"github.com/norio-nomura/lazyseq/pkg/source"
	"github.com/norio-nomura/lazyseq/pkg/xiter"
)

// Step is returned by [Pipe] callbacks.
type Step = core.Step

const (
	Emit = core.Emit
	Skip = core.Skip
	Stop = core.Stop
)

// ErrLeafType is the cause of the panic raised by [Flat] for a leaf which is not of the requested type.
var ErrLeafType = core.ErrLeafType

// --- Slicing ---

// TakeWhile yields values until one fails pred, that value is yielded too.
func (c *Cursor[T]) TakeWhile(pred func(T) bool) *Cursor[T] {
	return derive(core.TakeWhile(c.core.Opener(), liftFactory(pred)))
}

// SkipWhile drops the leading values satisfying pred and yields everything after.
func (c *Cursor[T]) SkipWhile(pred func(T) bool) *Cursor[T] {
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

// --- Transforms ---

// Filter yields the values satisfying pred.
func (c *Cursor[T]) Filter(pred func(T) bool) *Cursor[T] {
	return derive(core.Filter(c.core.Opener(), lift(pred)))
}

// Pipe maps, filters and terminates with a single callback: [Emit] yields the result, [Skip] drops the
// value, [Stop] ends the lap.
func Pipe[T, U any](c *Cursor[T], fn func(T) (U, Step)) *Cursor[U] {
	piped := func(_ context.Context, v T) (U, Step, error) {
		u, step := fn(v)
		return u, step, nil
	}
	return derive(core.Pipe(c.core.Opener(), func() core.PipeFunc[T, U] { return piped }))
}

// MapWhile yields fn of each value until fn reports false, which ends the lap without yielding.
func MapWhile[T, U any](c *Cursor[T], fn func(T) (U, bool)) *Cursor[U] {
	return Pipe(c, func(v T) (U, Step) {
		if u, ok := fn(v); ok {
			return u, Emit
		}
		var zero U
		return zero, Stop
	})
}

// Map yields fn of each value.
func Map[T, U any](c *Cursor[T], fn func(T) U) *Cursor[U] {
	return MapWhile(c, func(v T) (U, bool) {
		return fn(v), true
	})
}

// FilterMap yields fn of each value when fn reports it present, absent results are skipped.
func FilterMap[T, U any](c *Cursor[T], fn func(T) (U, bool)) *Cursor[U] {
	return Pipe(c, func(v T) (U, Step) {
		if u, ok := fn(v); ok {
			return u, Emit
		}
		var zero U
		return zero, Skip
	})
}

// Dedupe yields each distinct value once per lap.
func Dedupe[T comparable](c *Cursor[T]) *Cursor[T] {
	return derive(core.Dedupe(c.core.Opener()))
}

// --- Folding & collecting ---

// Fold is a strict left fold draining c.
func Fold[T, U any](c *Cursor[T], seed U, fn func(U, T) U) U {
	acc, err := core.Fold(background, c.core, seed, func(_ context.Context, acc U, v T) (U, error) {
		return fn(acc, v), nil
	})
	check.NoErr(err, "synchronous fold")
	return acc
}

// Collect drains c into a slice.
func (c *Cursor[T]) Collect() []T {
	vs, err := core.Collect(background, c.core)
	check.NoErr(err, "synchronous collect")
	return vs
}

// ForEach drains c calling fn for every value.
func (c *Cursor[T]) ForEach(fn func(T)) {
	err := core.ForEach(background, c.core, func(_ context.Context, v T) error {
		fn(v)
		return nil
	})
	check.NoErr(err, "synchronous for each")
}

// --- Queries ---

// First returns the first value of a fresh lap, c does not move.
func (c *Cursor[T]) First() (T, bool) {
	v, ok, err := core.First(background, c.core)
	check.NoErr(err, "synchronous first")
	return v, ok
}

// Last drains c and returns its final value.
func (c *Cursor[T]) Last() (T, bool) {
	v, ok, err := core.Last(background, c.core)
	check.NoErr(err, "synchronous last")
	return v, ok
}

// Size drains c and returns how many values it had.
func (c *Cursor[T]) Size() int {
	n, err := core.Size(background, c.core)
	check.NoErr(err, "synchronous size")
	return n
}

// Nth pulls c from its current position and returns the k-th value.
func (c *Cursor[T]) Nth(k int) (T, bool) {
	v, ok, err := core.Nth(background, c.core, k)
	check.NoErr(err, "synchronous nth")
	return v, ok
}

// Position pulls c from its current position and returns the index of the first value equal to target,
// or -1.
func Position[T comparable](c *Cursor[T], target T) int {
	return PositionFunc(c, func(v T) bool { return v == target })
}

// PositionFunc is [Position] with a caller supplied equality.
func PositionFunc[T any](c *Cursor[T], eq func(T) bool) int {
	i, err := core.Position(background, c.core, lift(eq))
	check.NoErr(err, "synchronous position")
	return i
}

// Exists pulls c from its current position until target is found.
func Exists[T comparable](c *Cursor[T], target T) bool {
	return Position(c, target) >= 0
}

// ExistsFunc is [Exists] with a caller supplied equality.
func ExistsFunc[T any](c *Cursor[T], eq func(T) bool) bool {
	return PositionFunc(c, eq) >= 0
}

// --- Search ---

// Find returns the first value satisfying pred without moving c, pred is not called after the match.
func (c *Cursor[T]) Find(pred func(T) bool) (T, bool) {
	v, ok, err := core.Find(background, c.core, lift(pred))
	check.NoErr(err, "synchronous find")
	return v, ok
}

// FindMap pulls c until fn reports a present result and returns it.
func FindMap[T, U any](c *Cursor[T], fn func(T) (U, bool)) (U, bool) {
	u, ok, err := core.FindMap(background, c.core, func(_ context.Context, v T) (U, bool, error) {
		u, ok := fn(v)
		return u, ok, nil
	})
	check.NoErr(err, "synchronous find map")
	return u, ok
}

// Every reports whether all values satisfy pred, true for an empty c.
func (c *Cursor[T]) Every(pred func(T) bool) bool {
	ok, err := core.Every(background, c.core, lift(pred))
	check.NoErr(err, "synchronous every")
	return ok
}

// Some reports whether any value satisfies pred, false for an empty c.
func (c *Cursor[T]) Some(pred func(T) bool) bool {
	ok, err := core.Some(background, c.core, lift(pred))
	check.NoErr(err, "synchronous some")
	return ok
}

// --- Combinators ---

// Chain yields a lap of c followed by a lap of other. Another Cursor can be chained through
// [source.From].
func (c *Cursor[T]) Chain(other source.Of[T]) *Cursor[T] {
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

// FlatMap descends depth first into values which are themselves Cursors, at any depth, and yields fn of
// every other value.
func FlatMap[T, U any](c *Cursor[T], fn func(any) U) *Cursor[U] {
	return derive(core.Flat(core.Box(c.core.Opener()), unwrap, func(_ context.Context, leaf any) (U, error) {
		return fn(leaf), nil
	}))
}

// Flat is [FlatMap] asserting every leaf to U, a leaf of another type panics with [ErrLeafType].
func Flat[U, T any](c *Cursor[T]) *Cursor[U] {
	return derive(core.Flat(core.Box(c.core.Opener()), unwrap, core.AssertLeaf[U]))
}

type nested interface {
	source.Nested
	synchronous()
}

func unwrap(v any) (source.Producer[any], bool) {
	if n, ok := v.(nested); ok {
		return n.OpenNested(), true
	}
	return nil, false
}
