// Package source normalizes the shapes a sequence can be built from into a single factory of producers.
//
// A Producer is a single-pass pull object. Every source shape resolves, once and at construction time, to
// an Open method returning a brand new Producer, so a cursor can restart by simply opening again.
package source

import (
	"context"
	"iter"
)

// Producer is the live, single-pass iteration object a cursor pulls from.
//
// Next returns the next value and true, or false once the producer is exhausted. Once exhausted, Next keeps
// returning false. Stop releases whatever the producer holds (nested producers, goroutines) and may be
// called any number of times.
type Producer[T any] interface {
	Next(ctx context.Context) (T, bool, error)
	Stop()
}

// Opener is anything able to open a fresh producer on demand.
type Opener[T any] interface {
	Open() Producer[T]
}

// Nested is implemented by sequences which can be flattened into their parent, the values are boxed since
// the nesting depth and element types are only known at runtime.
type Nested interface {
	OpenNested() Producer[any]
}

// Kind tags which shape a source was built from.
type Kind int

const (
	KindEmpty Kind = iota
	KindValues
	KindSeq
	KindFunc
	KindOpener
	KindFutures
	KindFutureSeq
	KindFutureFunc
	KindStream
	KindPull
)

var kindNames = map[Kind]string{
	KindEmpty:      "empty",
	KindValues:     "values",
	KindSeq:        "seq",
	KindFunc:       "func",
	KindOpener:     "opener",
	KindFutures:    "futures",
	KindFutureSeq:  "future-seq",
	KindFutureFunc: "future-func",
	KindStream:     "stream",
	KindPull:       "pull",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Of is a synchronous source: values which are available without suspending.
type Of[T any] struct {
	kind   Kind
	values []T
	seq    iter.Seq[T]
	fn     func() iter.Seq[T]
	opener Opener[T]
}

// Values captures the given values, every lap re-reads the same backing slice.
func Values[T any](vs ...T) Of[T] {
	return Of[T]{kind: KindValues, values: vs}
}

// Slice captures s as is, later mutations of s are observed by later laps.
func Slice[T any, S ~[]T](s S) Of[T] {
	return Of[T]{kind: KindValues, values: s}
}

// Seq captures a static iterable, it is ranged again from the start every lap.
func Seq[T any](seq iter.Seq[T]) Of[T] {
	if seq == nil {
		return Of[T]{}
	}
	return Of[T]{kind: KindSeq, seq: seq}
}

// Func calls fn once per lap. fn must hand out a fresh sequence each call: a one-shot sequence will make
// the second lap silently empty, which the cursor cannot detect.
func Func[T any](fn func() iter.Seq[T]) Of[T] {
	if fn == nil {
		return Of[T]{}
	}
	return Of[T]{kind: KindFunc, fn: fn}
}

// From wraps anything that already knows how to open producers, such as another cursor.
func From[T any](o Opener[T]) Of[T] {
	if o == nil {
		return Of[T]{}
	}
	return Of[T]{kind: KindOpener, opener: o}
}

// Kind reports which shape s was built from.
func (s Of[T]) Kind() Kind {
	return s.kind
}

// Open returns a fresh producer positioned at the start of the source.
func (s Of[T]) Open() Producer[T] {
	switch s.kind {
	case KindValues:
		return &sliceProducer[T]{values: s.values}
	case KindSeq:
		return &seqProducer[T]{seq: s.seq}
	case KindFunc:
		fn := s.fn
		return Lazy(func() Producer[T] { return &seqProducer[T]{seq: fn()} })
	case KindOpener:
		return s.opener.Open()
	default:
		return Empty[T]()
	}
}

// Lazy defers open until the first Next, so opening a factory shaped source runs no caller code.
func Lazy[T any](open func() Producer[T]) Producer[T] {
	return &lazyProducer[T]{open: open}
}

type lazyProducer[T any] struct {
	open    func() Producer[T]
	current Producer[T]
	stopped bool
}

func (p *lazyProducer[T]) Next(ctx context.Context) (T, bool, error) {
	if p.stopped {
		var zero T
		return zero, false, nil
	}
	if p.current == nil {
		p.current = p.open()
	}
	return p.current.Next(ctx)
}

func (p *lazyProducer[T]) Stop() {
	p.stopped = true
	if p.current != nil {
		p.current.Stop()
	}
}

// Empty returns a producer which is exhausted from the start.
func Empty[T any]() Producer[T] {
	return emptyProducer[T]{}
}

type emptyProducer[T any] struct{}

func (emptyProducer[T]) Next(context.Context) (T, bool, error) {
	var zero T
	return zero, false, nil
}

func (emptyProducer[T]) Stop() {}

type sliceProducer[T any] struct {
	values []T
	index  int
}

func (p *sliceProducer[T]) Next(context.Context) (T, bool, error) {
	if p.index >= len(p.values) {
		var zero T
		return zero, false, nil
	}
	v := p.values[p.index]
	p.index++
	return v, true, nil
}

func (p *sliceProducer[T]) Stop() {
	p.index = len(p.values)
}

// seqProducer only calls iter.Pull on the first Next, so opening one never starts a coroutine.
type seqProducer[T any] struct {
	seq  iter.Seq[T]
	next func() (T, bool)
	stop func()
	done bool
}

func (p *seqProducer[T]) Next(context.Context) (T, bool, error) {
	var zero T
	if p.done || p.seq == nil {
		return zero, false, nil
	}
	if p.next == nil {
		p.next, p.stop = iter.Pull(p.seq)
	}
	v, ok := p.next()
	if !ok {
		p.Stop()
		return zero, false, nil
	}
	return v, true, nil
}

func (p *seqProducer[T]) Stop() {
	p.done = true
	if p.stop != nil {
		p.stop()
		p.stop = nil
		p.next = nil
	}
}
