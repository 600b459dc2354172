package core

import "context"

// First pulls one value from a fresh producer, c keeps its position.
func First[T any](ctx context.Context, c *Cursor[T]) (T, bool, error) {
	p := c.Open()
	defer p.Stop()
	return p.Next(ctx)
}

// Last drains c and returns the final value of the lap.
func Last[T any](ctx context.Context, c *Cursor[T]) (T, bool, error) {
	var last T
	found := false
	for {
		v, ok, err := c.Next(ctx)
		if err != nil {
			var zero T
			return zero, false, err
		}
		if !ok {
			return last, found, nil
		}
		last, found = v, true
	}
}

// Size drains c counting its values.
func Size[T any](ctx context.Context, c *Cursor[T]) (int, error) {
	count := 0
	err := c.Each(ctx, func(T) (bool, error) {
		count++
		return true, nil
	})
	return count, err
}

// Nth pulls c from its current position up to the k-th value.
func Nth[T any](ctx context.Context, c *Cursor[T], k int) (T, bool, error) {
	var found T
	ok := false
	if k < 0 {
		return found, false, nil
	}
	index := 0
	err := c.Each(ctx, func(v T) (bool, error) {
		if index == k {
			found, ok = v, true
			return false, nil
		}
		index++
		return true, nil
	})
	return found, ok, err
}

// Position pulls c from its current position until eq holds, returning the count of values before it or
// -1 when c ran out first.
func Position[T any](ctx context.Context, c *Cursor[T], eq Pred[T]) (int, error) {
	count := 0
	found := false
	err := c.Each(ctx, func(v T) (bool, error) {
		match, err := eq(ctx, v)
		if err != nil {
			return false, err
		}
		if match {
			found = true
			return false, nil
		}
		count++
		return true, nil
	})
	if err != nil || !found {
		return -1, err
	}
	return count, nil
}

// Fold is a strict left fold over c.
func Fold[T, U any](ctx context.Context, c *Cursor[T], seed U, fn func(context.Context, U, T) (U, error)) (U, error) {
	acc := seed
	err := c.Each(ctx, func(v T) (bool, error) {
		next, err := fn(ctx, acc, v)
		if err != nil {
			return false, err
		}
		acc = next
		return true, nil
	})
	return acc, err
}

// Collect folds c into a slice in pull order, an empty lap gives an empty, non nil slice.
func Collect[T any](ctx context.Context, c *Cursor[T]) ([]T, error) {
	return Fold(ctx, c, make([]T, 0), func(_ context.Context, acc []T, v T) ([]T, error) {
		return append(acc, v), nil
	})
}

// ForEach calls fn for every value of c.
func ForEach[T any](ctx context.Context, c *Cursor[T], fn func(context.Context, T) error) error {
	return c.Each(ctx, func(v T) (bool, error) {
		return true, fn(ctx, v)
	})
}

// Find returns the first value of the filtered view of c. pred is not called past the match and c keeps
// its position.
func Find[T any](ctx context.Context, c *Cursor[T], pred Pred[T]) (T, bool, error) {
	p := Filter(c.Opener(), pred)()
	defer p.Stop()
	return p.Next(ctx)
}

// FindMap pulls c until fn reports a present result.
func FindMap[T, U any](ctx context.Context, c *Cursor[T], fn func(context.Context, T) (U, bool, error)) (U, bool, error) {
	var found U
	ok := false
	err := c.Each(ctx, func(v T) (bool, error) {
		u, present, err := fn(ctx, v)
		if err != nil {
			return false, err
		}
		if present {
			found, ok = u, true
			return false, nil
		}
		return true, nil
	})
	return found, ok, err
}

// Every is true unless a value failing pred can be found, so it holds for an empty c.
func Every[T any](ctx context.Context, c *Cursor[T], pred Pred[T]) (bool, error) {
	_, found, err := Find(ctx, c, Not(pred))
	if err != nil {
		return false, err
	}
	return !found, nil
}

// Some is true when a value satisfying pred can be found, so it fails for an empty c.
func Some[T any](ctx context.Context, c *Cursor[T], pred Pred[T]) (bool, error) {
	_, found, err := Find(ctx, c, pred)
	if err != nil {
		return false, err
	}
	return found, nil
}

// Not negates pred, errors pass through.
func Not[T any](pred Pred[T]) Pred[T] {
	return func(ctx context.Context, v T) (bool, error) {
		ok, err := pred(ctx, v)
		return !ok && err == nil, err
	}
}
