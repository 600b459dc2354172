package core

import (
	"context"

	"github.com/norio-nomura/lazyseq/pkg/source"
	"github.com/norio-nomura/lazyseq/pkg/xiter"
)

// Step is what a pipe callback decides for one element.
type Step int

const (
	// Emit yields the returned value.
	Emit Step = iota
	// Skip drops the element and moves on to the next one.
	Skip
	// Stop drops the element and ends the lap.
	Stop
)

func (s Step) String() string {
	switch s {
	case Emit:
		return "emit"
	case Skip:
		return "skip"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// Pred is a predicate which may suspend and fail.
type Pred[T any] func(ctx context.Context, v T) (bool, error)

// PipeFunc maps, filters and terminates in one callback.
type PipeFunc[T, U any] func(ctx context.Context, v T) (U, Step, error)

// Each operator below returns an Opener: every lap of the derived cursor opens a fresh producer of its
// parent, so the parent's own position is never touched. Callback factories are invoked once per lap which
// keeps per-lap state (counters, seen sets) from leaking into the next lap.

// lap lazily opens one parent producer and tracks whether the lap is over.
type lap[T any] struct {
	open   Opener[T]
	parent source.Producer[T]
	done   bool
}

func (l *lap[T]) pull(ctx context.Context) (T, bool, error) {
	var zero T
	if l.done {
		return zero, false, nil
	}
	if l.parent == nil {
		l.parent = l.open()
	}
	v, ok, err := l.parent.Next(ctx)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		l.stop()
		return zero, false, nil
	}
	return v, true, nil
}

func (l *lap[T]) stop() {
	l.done = true
	if l.parent != nil {
		l.parent.Stop()
	}
}

// Pipe is the primitive behind map, filter, filter-map and map-while.
func Pipe[T, U any](open Opener[T], newFn func() PipeFunc[T, U]) Opener[U] {
	return func() source.Producer[U] {
		return &pipeProducer[T, U]{lap: lap[T]{open: open}, newFn: newFn}
	}
}

type pipeProducer[T, U any] struct {
	lap   lap[T]
	newFn func() PipeFunc[T, U]
	fn    PipeFunc[T, U]
}

func (p *pipeProducer[T, U]) Next(ctx context.Context) (U, bool, error) {
	var zero U
	if p.fn == nil {
		p.fn = p.newFn()
	}
	for {
		v, ok, err := p.lap.pull(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		u, step, err := p.fn(ctx, v)
		if err != nil {
			return zero, false, err
		}
		switch step {
		case Emit:
			return u, true, nil
		case Stop:
			p.lap.stop()
			return zero, false, nil
		}
	}
}

func (p *pipeProducer[T, U]) Stop() {
	p.lap.stop()
}

// Filter keeps the elements pred accepts.
func Filter[T any](open Opener[T], pred Pred[T]) Opener[T] {
	return Pipe(open, func() PipeFunc[T, T] {
		return func(ctx context.Context, v T) (T, Step, error) {
			keep, err := pred(ctx, v)
			if err != nil || !keep {
				return v, Skip, err
			}
			return v, Emit, nil
		}
	})
}

// TakeWhile yields each element before testing it, the first element failing newPred's predicate is still
// yielded and ends the lap. The test runs when the following element is requested.
func TakeWhile[T any](open Opener[T], newPred func() Pred[T]) Opener[T] {
	return func() source.Producer[T] {
		return &takeWhileProducer[T]{lap: lap[T]{open: open}, newPred: newPred}
	}
}

type takeWhileProducer[T any] struct {
	lap     lap[T]
	newPred func() Pred[T]
	pred    Pred[T]
	last    T
	pending bool
}

func (p *takeWhileProducer[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if p.pred == nil {
		p.pred = p.newPred()
	}
	if p.pending {
		p.pending = false
		more, err := p.pred(ctx, p.last)
		if err != nil {
			return zero, false, err
		}
		if !more {
			p.lap.stop()
			return zero, false, nil
		}
	}
	v, ok, err := p.lap.pull(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	p.last, p.pending = v, true
	return v, true, nil
}

func (p *takeWhileProducer[T]) Stop() {
	p.pending = false
	p.lap.stop()
}

// SkipWhile drops the prefix accepted by newPred's predicate, the predicate is not consulted again once it
// rejected an element.
func SkipWhile[T any](open Opener[T], newPred func() Pred[T]) Opener[T] {
	return func() source.Producer[T] {
		return &skipWhileProducer[T]{lap: lap[T]{open: open}, newPred: newPred}
	}
}

type skipWhileProducer[T any] struct {
	lap     lap[T]
	newPred func() Pred[T]
	pred    Pred[T]
	skipped bool
}

func (p *skipWhileProducer[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if p.pred == nil {
		p.pred = p.newPred()
	}
	for {
		v, ok, err := p.lap.pull(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		if p.skipped {
			return v, true, nil
		}
		drop, err := p.pred(ctx, v)
		if err != nil {
			return zero, false, err
		}
		if !drop {
			p.skipped = true
			return v, true, nil
		}
	}
}

func (p *skipWhileProducer[T]) Stop() {
	p.lap.stop()
}

// Take yields the first n elements, none for n <= 0.
func Take[T any](open Opener[T], n int) Opener[T] {
	if n <= 0 {
		return Empty[T]()
	}
	return TakeWhile(open, func() Pred[T] {
		count := 0
		return func(context.Context, T) (bool, error) {
			count++
			return count < n, nil
		}
	})
}

// Drop drops the first n elements.
func Drop[T any](open Opener[T], n int) Opener[T] {
	if n <= 0 {
		return open
	}
	return SkipWhile(open, func() Pred[T] {
		count := 0
		return func(context.Context, T) (bool, error) {
			count++
			return count <= n, nil
		}
	})
}

// Empty opens producers which never yield.
func Empty[T any]() Opener[T] {
	return source.Empty[T]
}

// Enumerate pairs each element with its index in the lap.
func Enumerate[T any](open Opener[T]) Opener[xiter.Indexed[T]] {
	return Pipe(open, func() PipeFunc[T, xiter.Indexed[T]] {
		index := 0
		return func(_ context.Context, v T) (xiter.Indexed[T], Step, error) {
			pair := xiter.Indexed[T]{Index: index, Value: v}
			index++
			return pair, Emit, nil
		}
	})
}

// Dedupe drops elements already seen during the lap.
func Dedupe[T comparable](open Opener[T]) Opener[T] {
	return Pipe(open, func() PipeFunc[T, T] {
		seen := make(map[T]struct{})
		return func(_ context.Context, v T) (T, Step, error) {
			if _, exists := seen[v]; exists {
				return v, Skip, nil
			}
			seen[v] = struct{}{}
			return v, Emit, nil
		}
	})
}

// Box erases the element type, used to flatten nested sequences of unknown depth.
func Box[T any](open Opener[T]) Opener[any] {
	return Pipe(open, func() PipeFunc[T, any] {
		return func(_ context.Context, v T) (any, Step, error) {
			return v, Emit, nil
		}
	})
}

// Chain yields a lap of each opener in turn.
func Chain[T any](opens ...Opener[T]) Opener[T] {
	return func() source.Producer[T] {
		return &chainProducer[T]{opens: opens}
	}
}

type chainProducer[T any] struct {
	opens   []Opener[T]
	index   int
	current source.Producer[T]
}

func (p *chainProducer[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	for p.index < len(p.opens) {
		if p.current == nil {
			p.current = p.opens[p.index]()
		}
		v, ok, err := p.current.Next(ctx)
		if err != nil {
			return zero, false, err
		}
		if ok {
			return v, true, nil
		}
		p.current.Stop()
		p.current = nil
		p.index++
	}
	return zero, false, nil
}

func (p *chainProducer[T]) Stop() {
	if p.current != nil {
		p.current.Stop()
		p.current = nil
	}
	p.index = len(p.opens)
}

// Cycle repeats the parent forever. It pulls an auto-restarting clone, so every lap of the parent ends with
// exactly one completion: one completion is skipped over, two in a row mean the parent is empty.
func Cycle[T any](open Opener[T]) Opener[T] {
	return func() source.Producer[T] {
		return &cycleProducer[T]{open: open}
	}
}

type cycleProducer[T any] struct {
	open     Opener[T]
	clone    *Cursor[T]
	consumed bool
	done     bool
}

func (p *cycleProducer[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if p.done {
		return zero, false, nil
	}
	if p.clone == nil {
		p.clone = New(p.open, Restart)
	}
	for {
		v, ok, err := p.clone.Next(ctx)
		if err != nil {
			return zero, false, err
		}
		if ok {
			p.consumed = false
			return v, true, nil
		}
		if p.consumed {
			p.Stop()
			return zero, false, nil
		}
		p.consumed = true
	}
}

func (p *cycleProducer[T]) Stop() {
	p.done = true
	if p.clone != nil {
		p.clone.Release()
	}
}

// Unwrapper reports whether an element is itself a sequence to descend into and opens it.
type Unwrapper func(v any) (source.Producer[any], bool)

// Flat walks nested sequences depth first, leaves are passed to fn in pull order.
func Flat[U any](open Opener[any], unwrap Unwrapper, fn func(ctx context.Context, leaf any) (U, error)) Opener[U] {
	return func() source.Producer[U] {
		return &flatProducer[U]{open: open, unwrap: unwrap, fn: fn}
	}
}

type flatProducer[U any] struct {
	open   Opener[any]
	unwrap Unwrapper
	fn     func(ctx context.Context, leaf any) (U, error)
	stack  []source.Producer[any]
	opened bool
}

func (p *flatProducer[U]) Next(ctx context.Context) (U, bool, error) {
	var zero U
	if !p.opened {
		p.opened = true
		p.stack = append(p.stack, p.open())
	}
	for len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		v, ok, err := top.Next(ctx)
		if err != nil {
			return zero, false, err
		}
		if !ok {
			top.Stop()
			p.stack = p.stack[:len(p.stack)-1]
			continue
		}
		if nested, isNested := p.unwrap(v); isNested {
			p.stack = append(p.stack, nested)
			continue
		}
		u, err := p.fn(ctx, v)
		if err != nil {
			return zero, false, err
		}
		return u, true, nil
	}
	return zero, false, nil
}

func (p *flatProducer[U]) Stop() {
	p.opened = true
	for i := len(p.stack) - 1; i >= 0; i-- {
		p.stack[i].Stop()
	}
	p.stack = nil
}

// Zip pairs elements of both openers, the lap ends with the shorter one.
func Zip[A, B any](openA Opener[A], openB Opener[B]) Opener[xiter.Zipped[A, B]] {
	return func() source.Producer[xiter.Zipped[A, B]] {
		return &zipProducer[A, B]{a: lap[A]{open: openA}, b: lap[B]{open: openB}}
	}
}

// ZipLongest pairs elements of both openers until both are exhausted, the missing side is the zero value
// with its OK flag unset.
func ZipLongest[A, B any](openA Opener[A], openB Opener[B]) Opener[xiter.Zipped[A, B]] {
	return func() source.Producer[xiter.Zipped[A, B]] {
		return &zipProducer[A, B]{a: lap[A]{open: openA}, b: lap[B]{open: openB}, longest: true}
	}
}

type zipProducer[A, B any] struct {
	a       lap[A]
	b       lap[B]
	longest bool
}

func (p *zipProducer[A, B]) Next(ctx context.Context) (xiter.Zipped[A, B], bool, error) {
	var z xiter.Zipped[A, B]
	var err error
	z.V1, z.OK1, err = p.a.pull(ctx)
	if err != nil {
		return xiter.Zipped[A, B]{}, false, err
	}
	if !z.OK1 && !p.longest {
		p.Stop()
		return xiter.Zipped[A, B]{}, false, nil
	}
	z.V2, z.OK2, err = p.b.pull(ctx)
	if err != nil {
		return xiter.Zipped[A, B]{}, false, err
	}
	if !z.OK2 && (!p.longest || !z.OK1) {
		p.Stop()
		return xiter.Zipped[A, B]{}, false, nil
	}
	return z, true, nil
}

func (p *zipProducer[A, B]) Stop() {
	p.a.stop()
	p.b.stop()
}
