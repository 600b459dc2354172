// Package cursor provides lazy, restartable, composable sequences which never suspend.
//
// A Cursor pulls values from its source one at a time, only when asked. Once its producer is exhausted the
// cursor quietly opens a fresh one, so the same Cursor can be iterated again and again:
//
//	c := cursor.Values(1, 2, 3)
//	c.Collect() // [1 2 3]
//	c.Collect() // [1 2 3]
//
// Operators never mutate their receiver, they return a new Cursor drawing fresh laps from the receiver's
// source. Type changing operators are package functions since methods cannot have type parameters:
//
//	cursor.Map(c.Filter(isOdd), strconv.Itoa).Take(2).Collect()
//
// Callbacks are expected to be pure. A panicking callback propagates to whoever pulled, the cursor is then
// in an unspecified position and should be Reset or dropped.
package cursor

import (
	"context"
	"iter"

	"github.com/norio-nomura/lazyseq/internal/check"
	"github.com/norio-nomura/lazyseq/internal/core"
	"github.com/norio-nomura/lazyseq/pkg/source"
	"github.com/norio-nomura/lazyseq/pkg/xiter"
)

// Exhaustion selects what happens after the last value of a lap.
type Exhaustion = core.Policy

const (
	// Restart transparently starts a new lap on the pull after the one reporting completion.
	Restart = core.Restart
	// StayExhausted keeps reporting completion until Reset.
	StayExhausted = core.StayExhausted
)

// Option configures a Cursor at construction.
type Option func(*config)

type config struct {
	exhaustion Exhaustion
}

// WithExhaustion sets the exhaustion policy, the default is [Restart].
func WithExhaustion(e Exhaustion) Option {
	return func(c *config) {
		c.exhaustion = e
	}
}

// Cursor is a restartable sequence of T. It is not safe for concurrent use, Clone it instead.
type Cursor[T any] struct {
	core *core.Cursor[T]
}

// New returns a Cursor over src. Nothing is pulled from src before the first Next.
func New[T any](src source.Of[T], opts ...Option) *Cursor[T] {
	cfg := config{exhaustion: Restart}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cursor[T]{core: core.New(src.Open, cfg.exhaustion)}
}

// Values returns a Cursor over vs.
func Values[T any](vs ...T) *Cursor[T] {
	return New(source.Values(vs...))
}

// FromSlice returns a Cursor over s, every lap reads s again.
func FromSlice[T any, S ~[]T](s S) *Cursor[T] {
	return New(source.Slice[T](s))
}

// FromSeq returns a Cursor ranging over seq again for each lap.
func FromSeq[T any](seq iter.Seq[T]) *Cursor[T] {
	return New(source.Seq(seq))
}

// FromFunc returns a Cursor calling fn for the sequence of each lap.
func FromFunc[T any](fn func() iter.Seq[T]) *Cursor[T] {
	return New(source.Func(fn))
}

func derive[T any](open core.Opener[T]) *Cursor[T] {
	return &Cursor[T]{core: core.New(open, Restart)}
}

var background = context.Background()

// Next returns the next value, or false when the current lap is over.
func (c *Cursor[T]) Next() (T, bool) {
	v, ok, err := c.core.Next(background)
	check.NoErr(err, "synchronous pull")
	return v, ok
}

// Reset abandons the current lap, the next pull starts from the beginning. It also releases anything a
// partially consumed producer still holds.
func (c *Cursor[T]) Reset() {
	c.core.Reset()
}

// Exhaustion reports the policy c was built with.
func (c *Cursor[T]) Exhaustion() Exhaustion {
	return c.core.Policy()
}

// Exhausted reports whether a StayExhausted cursor is waiting for a Reset.
func (c *Cursor[T]) Exhausted() bool {
	return c.core.State() == core.Exhausted
}

// All iterates c itself from its current position. Breaking out of the loop resets a Restart cursor.
func (c *Cursor[T]) All() iter.Seq[T] {
	return xiter.FromPull(c.Next, c.core.StopEarly)
}

// Clone returns a Cursor over the same source with its own position.
func (c *Cursor[T]) Clone() *Cursor[T] {
	return &Cursor[T]{core: c.core.Clone()}
}

// Open implements [source.Opener], the producer starts a fresh lap and does not move c.
func (c *Cursor[T]) Open() source.Producer[T] {
	return c.core.Open()
}

// OpenNested implements [source.Nested].
func (c *Cursor[T]) OpenNested() source.Producer[any] {
	return core.Box(c.core.Opener())()
}

func (c *Cursor[T]) synchronous() {}

func lift[T any](pred func(T) bool) core.Pred[T] {
	return func(_ context.Context, v T) (bool, error) {
		return pred(v), nil
	}
}

func liftFactory[T any](pred func(T) bool) func() core.Pred[T] {
	lifted := lift(pred)
	return func() core.Pred[T] { return lifted }
}
