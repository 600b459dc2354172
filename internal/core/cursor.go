// Package core is the algorithm core shared by the synchronous and asynchronous cursors.
//
// Every pull and every callback takes a context and may fail. The synchronous cursor drives the core with
// a background context and callbacks which never fail, the asynchronous cursor passes its caller's context
// through. Nothing in here is duplicated between the two.
package core

import (
	"context"

	"github.com/norio-nomura/lazyseq/internal/check"
	"github.com/norio-nomura/lazyseq/pkg/source"
)

// Policy decides what a cursor does once its producer is exhausted.
type Policy int

const (
	// Restart opens a fresh producer as soon as the current one reports completion.
	Restart Policy = iota
	// StayExhausted keeps reporting completion until the cursor is explicitly reset.
	StayExhausted
)

func (p Policy) String() string {
	switch p {
	case Restart:
		return "restart"
	case StayExhausted:
		return "stay-exhausted"
	default:
		return "unknown"
	}
}

// State of the pull protocol.
type State int

const (
	Ready State = iota
	Exhausted
)

func (s State) String() string {
	if s == Exhausted {
		return "exhausted"
	}
	return "ready"
}

// Opener opens a fresh producer, it is the normalized form of every source.
type Opener[T any] func() source.Producer[T]

// Cursor is the restartable pull object. It owns its active producer exclusively, clones share only the
// opener.
type Cursor[T any] struct {
	open   Opener[T]
	policy Policy
	active source.Producer[T]
	state  State
}

// New returns a cursor over open, no producer is opened until the first pull.
func New[T any](open Opener[T], policy Policy) *Cursor[T] {
	check.Check(open != nil, "core.New called with a nil opener")
	return &Cursor[T]{open: open, policy: policy}
}

// Policy is fixed at construction.
func (c *Cursor[T]) Policy() Policy {
	return c.policy
}

func (c *Cursor[T]) State() State {
	return c.state
}

// Opener returns the shared factory of c, derived cursors capture it instead of c itself.
func (c *Cursor[T]) Opener() Opener[T] {
	return c.open
}

// Open returns a fresh producer over the source of c without touching the position of c.
func (c *Cursor[T]) Open() source.Producer[T] {
	return c.open()
}

// Clone returns a cursor over the same source with its own position.
func (c *Cursor[T]) Clone() *Cursor[T] {
	return New(c.open, c.policy)
}

// Next pulls the next value. The pull which observes exhaustion reports false, a Restart cursor is then
// ready to start a new lap on the following pull.
//
// A failed pull returns its error and leaves the position unspecified.
func (c *Cursor[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if c.state == Exhausted {
		return zero, false, nil
	}
	if c.active == nil {
		c.active = c.open()
	}
	v, ok, err := c.active.Next(ctx)
	if err != nil {
		return zero, false, err
	}
	if ok {
		return v, true, nil
	}
	c.active.Stop()
	c.active = nil
	c.state = Exhausted
	if c.policy == Restart {
		c.active = c.open()
		c.state = Ready
	}
	return zero, false, nil
}

// Reset discards the active producer and starts over from a fresh one, whatever the current state.
func (c *Cursor[T]) Reset() {
	if c.active != nil {
		c.active.Stop()
	}
	c.active = c.open()
	c.state = Ready
}

// Release stops the active producer without opening a new one. The next pull opens lazily.
func (c *Cursor[T]) Release() {
	if c.active != nil {
		c.active.Stop()
		c.active = nil
	}
}

// Each pulls c until exhaustion or until fn returns false. Leaving the loop before exhaustion, by choice or
// by a failing fn, resets a Restart cursor like abandoning any other iteration of it would.
func (c *Cursor[T]) Each(ctx context.Context, fn func(T) (bool, error)) error {
	for {
		v, ok, err := c.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		more, err := fn(v)
		if err != nil {
			c.StopEarly()
			return err
		}
		if !more {
			c.StopEarly()
			return nil
		}
	}
}

// StopEarly is the abandon-iteration hook: a Restart cursor resets, a StayExhausted cursor keeps its place.
func (c *Cursor[T]) StopEarly() {
	if c.policy == Restart {
		c.Reset()
	}
}
