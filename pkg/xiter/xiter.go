// Package xiter bridges pull style producers and Go 1.23+ range-over-func sequences.
//
// This file contains the pull to push adapters.
package xiter

import (
	"context"
	"iter"
)

// FromPull returns an iter.Seq[T] yielding the values of next until it reports false. When the loop body
// breaks out early, abandon is called instead.
func FromPull[T any](next func() (T, bool), abandon func()) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := next()
			if !ok {
				return
			}
			if !yield(v) {
				if abandon != nil {
					abandon()
				}
				return
			}
		}
	}
}

// FromPullContext is the fallible variant of [FromPull]. A failing pull is yielded once, with the zero
// value, and ends the sequence.
func FromPullContext[T any](ctx context.Context, next func(context.Context) (T, bool, error), abandon func()) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, ok, err := next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			if !yield(v, nil) {
				if abandon != nil {
					abandon()
				}
				return
			}
		}
	}
}

// Values drops the errors of seq, stopping at the first one and storing it in *errp.
func Values[T any](seq iter.Seq2[T, error], errp *error) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v, err := range seq {
			if err != nil {
				*errp = err
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}
