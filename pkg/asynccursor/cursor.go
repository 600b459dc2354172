// Package asynccursor provides lazy, restartable, composable sequences whose pulls may suspend and fail.
//
// It mirrors package cursor: the same operators with the same restart semantics, but every pull takes a
// context.Context and every callback may return an error. An error ends the terminal operation which
// observed it and is returned to the caller unchanged, wrapped errors stay matchable with errors.Is.
package asynccursor

import (
	"context"
	"iter"

	"github.com/norio-nomura/lazyseq/internal/core"
	"github.com/norio-nomura/lazyseq/pkg/cursor"
	"github.com/norio-nomura/lazyseq/pkg/future"
	"github.com/norio-nomura/lazyseq/pkg/source"
	"github.com/norio-nomura/lazyseq/pkg/xiter"
)

// Exhaustion selects what happens after the last value of a lap.
type Exhaustion = cursor.Exhaustion

const (
	Restart       = cursor.Restart
	StayExhausted = cursor.StayExhausted
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

// Cursor is a restartable sequence of T whose values may take time to arrive. It is not safe for
// concurrent use, give every goroutine its own Clone.
type Cursor[T any] struct {
	core *core.Cursor[T]
}

// New returns a Cursor over src. Nothing is pulled or awaited before the first Next.
func New[T any](src source.Async[T], opts ...Option) *Cursor[T] {
	cfg := config{exhaustion: Restart}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cursor[T]{core: core.New(src.Open, cfg.exhaustion)}
}

// Values returns a Cursor over vs.
func Values[T any](vs ...T) *Cursor[T] {
	return New(source.Lift(source.Values(vs...)))
}

// FromFutures returns a Cursor awaiting fs in order, every lap awaits them again.
func FromFutures[T any](fs ...future.Future[T]) *Cursor[T] {
	return New(source.Futures(fs...))
}

// FromStream returns a Cursor ranging over a fresh stream from fn every lap.
func FromStream[T any](fn func() iter.Seq2[T, error]) *Cursor[T] {
	return New(source.Stream(fn))
}

// FromPull returns a Cursor calling fn for the getter of every lap.
func FromPull[T any](fn func() source.PullFunc[T]) *Cursor[T] {
	return New(source.Pull(fn))
}

// FromSync returns a Cursor over the source of c. The result has its own position.
func FromSync[T any](c *cursor.Cursor[T]) *Cursor[T] {
	return &Cursor[T]{core: core.New(c.Open, c.Exhaustion())}
}

func derive[T any](open core.Opener[T]) *Cursor[T] {
	return &Cursor[T]{core: core.New(open, Restart)}
}

// Next returns the next value, or false when the current lap is over. A cancelled ctx is reported by
// whatever the pull was waiting on.
func (c *Cursor[T]) Next(ctx context.Context) (T, bool, error) {
	return c.core.Next(ctx)
}

// Reset abandons the current lap, the next pull starts from the beginning.
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

// All iterates c itself from its current position. A failing pull is yielded once and ends the loop,
// breaking out early resets a Restart cursor.
func (c *Cursor[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return xiter.FromPullContext(ctx, c.Next, c.core.StopEarly)
}

// Clone returns a Cursor over the same source with its own position.
func (c *Cursor[T]) Clone() *Cursor[T] {
	return &Cursor[T]{core: c.core.Clone()}
}

// Open implements [source.Opener].
func (c *Cursor[T]) Open() source.Producer[T] {
	return c.core.Open()
}

// OpenNested implements [source.Nested].
func (c *Cursor[T]) OpenNested() source.Producer[any] {
	return core.Box(c.core.Opener())()
}

func lift[T any](pred func(context.Context, T) (bool, error)) core.Pred[T] {
	return core.Pred[T](pred)
}

func liftFactory[T any](pred func(context.Context, T) (bool, error)) func() core.Pred[T] {
	return func() core.Pred[T] { return lift(pred) }
}
