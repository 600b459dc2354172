package source

import (
	"context"
	"iter"

	"github.com/norio-nomura/lazyseq/pkg/future"
)

// PullFunc is a context aware getter, it reports false once there is nothing more to get.
type PullFunc[T any] func(ctx context.Context) (T, bool, error)

// Async is a source whose values may only be available after suspending: deferred values, fallible
// streams or getters which do I/O.
type Async[T any] struct {
	kind     Kind
	sync     Of[T]
	futures  []future.Future[T]
	fseq     iter.Seq[future.Future[T]]
	ffn      func() iter.Seq[future.Future[T]]
	stream   func() iter.Seq2[T, error]
	pullFunc func() PullFunc[T]
}

// Lift turns a synchronous source into an asynchronous one.
func Lift[T any](s Of[T]) Async[T] {
	return Async[T]{kind: s.kind, sync: s}
}

// Futures captures a static collection of deferred values, each lap awaits them again in order. A
// [future.Future] always resolves to the same result so awaiting twice is cheap.
func Futures[T any](fs ...future.Future[T]) Async[T] {
	return Async[T]{kind: KindFutures, futures: fs}
}

// FutureSeq captures a static iterable of deferred values.
func FutureSeq[T any](seq iter.Seq[future.Future[T]]) Async[T] {
	if seq == nil {
		return Async[T]{}
	}
	return Async[T]{kind: KindFutureSeq, fseq: seq}
}

// FutureFunc calls fn once per lap, see [Func] for the restart caveat.
func FutureFunc[T any](fn func() iter.Seq[future.Future[T]]) Async[T] {
	if fn == nil {
		return Async[T]{}
	}
	return Async[T]{kind: KindFutureFunc, ffn: fn}
}

// Stream calls fn once per lap, a non nil error ends the lap and is returned from the pull which observed
// it.
func Stream[T any](fn func() iter.Seq2[T, error]) Async[T] {
	if fn == nil {
		return Async[T]{}
	}
	return Async[T]{kind: KindStream, stream: fn}
}

// Pull calls fn once per lap to obtain a getter, the getter receives the context of every pull.
func Pull[T any](fn func() PullFunc[T]) Async[T] {
	if fn == nil {
		return Async[T]{}
	}
	return Async[T]{kind: KindPull, pullFunc: fn}
}

// Kind reports which shape s was built from.
func (s Async[T]) Kind() Kind {
	return s.kind
}

// Open returns a fresh producer positioned at the start of the source.
func (s Async[T]) Open() Producer[T] {
	switch s.kind {
	case KindFutures:
		return &futureProducer[T]{inner: &sliceProducer[future.Future[T]]{values: s.futures}}
	case KindFutureSeq:
		return &futureProducer[T]{inner: &seqProducer[future.Future[T]]{seq: s.fseq}}
	case KindFutureFunc:
		fn := s.ffn
		return Lazy(func() Producer[T] {
			return &futureProducer[T]{inner: &seqProducer[future.Future[T]]{seq: fn()}}
		})
	case KindStream:
		fn := s.stream
		return Lazy(func() Producer[T] { return &streamProducer[T]{seq: fn()} })
	case KindPull:
		fn := s.pullFunc
		return Lazy(func() Producer[T] { return &pullProducer[T]{get: fn()} })
	default:
		return s.sync.Open()
	}
}

type futureProducer[T any] struct {
	inner Producer[future.Future[T]]
}

func (p *futureProducer[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	f, ok, err := p.inner.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := f.Await(ctx)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (p *futureProducer[T]) Stop() {
	p.inner.Stop()
}

type streamProducer[T any] struct {
	seq  iter.Seq2[T, error]
	next func() (T, error, bool)
	stop func()
	done bool
}

func (p *streamProducer[T]) Next(context.Context) (T, bool, error) {
	var zero T
	if p.done || p.seq == nil {
		return zero, false, nil
	}
	if p.next == nil {
		p.next, p.stop = iter.Pull2(p.seq)
	}
	v, err, ok := p.next()
	if !ok {
		p.Stop()
		return zero, false, nil
	}
	if err != nil {
		p.Stop()
		return zero, false, err
	}
	return v, true, nil
}

func (p *streamProducer[T]) Stop() {
	p.done = true
	if p.stop != nil {
		p.stop()
		p.stop = nil
		p.next = nil
	}
}

type pullProducer[T any] struct {
	get  PullFunc[T]
	done bool
}

func (p *pullProducer[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if p.done || p.get == nil {
		return zero, false, nil
	}
	v, ok, err := p.get(ctx)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		p.done = true
		return zero, false, nil
	}
	return v, true, nil
}

func (p *pullProducer[T]) Stop() {
	p.done = true
}
