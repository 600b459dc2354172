package asynccursor_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/norio-nomura/lazyseq/pkg/asynccursor"
	"github.com/norio-nomura/lazyseq/pkg/cursor"
	"github.com/norio-nomura/lazyseq/pkg/future"
	"github.com/norio-nomura/lazyseq/pkg/source"
	"github.com/norio-nomura/lazyseq/pkg/xiter"
)

func lessThan(n int) func(context.Context, int) (bool, error) {
	return func(_ context.Context, v int) (bool, error) {
		return v < n, nil
	}
}

func collect[T any](t *testing.T, c *asynccursor.Cursor[T]) []T {
	t.Helper()
	vs, err := c.Collect(context.Background())
	assert.NilError(t, err)
	return vs
}

func TestOperators(t *testing.T) {
	c := resolved(1, 2, 3)
	testCases := []struct {
		name string
		c    *asynccursor.Cursor[int]
		want []int
	}{
		{name: "take while", c: c.TakeWhile(lessThan(2)), want: []int{1, 2}},
		{name: "skip while", c: c.SkipWhile(lessThan(2)), want: []int{2, 3}},
		{name: "take", c: c.Take(2), want: []int{1, 2}},
		{name: "take none", c: c.Take(0), want: []int{}},
		{name: "skip", c: c.Skip(1), want: []int{2, 3}},
		{name: "filter", c: c.Filter(func(_ context.Context, v int) (bool, error) { return v != 2, nil }), want: []int{1, 3}},
		{name: "cycle", c: c.Cycle().Take(5), want: []int{1, 2, 3, 1, 2}},
		{name: "chain", c: c.Chain(source.Futures(future.NewValue(4))), want: []int{1, 2, 3, 4}},
		{name: "dedupe", c: asynccursor.Dedupe(c.Chain(source.Lift(source.Values(2)))), want: []int{1, 2, 3}},
		{
			name: "map while",
			c: asynccursor.MapWhile(c, func(_ context.Context, v int) (int, bool, error) {
				return v * 2, v != 3, nil
			}),
			want: []int{2, 4},
		},
		{
			name: "filter map",
			c: asynccursor.FilterMap(c, func(_ context.Context, v int) (int, bool, error) {
				return v * 10, v%2 == 1, nil
			}),
			want: []int{10, 30},
		},
		{
			name: "pipe",
			c: asynccursor.Pipe(c, func(_ context.Context, v int) (int, asynccursor.Step, error) {
				if v == 2 {
					return 0, asynccursor.Stop, nil
				}
				return v, asynccursor.Emit, nil
			}),
			want: []int{1},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.DeepEqual(t, collect(t, tc.c), tc.want)
			assert.DeepEqual(t, collect(t, tc.c), tc.want)
		})
	}
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	c := resolved(1, 2, 3)

	first, ok, err := c.First(ctx)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, first, 1)

	last, ok, err := c.Last(ctx)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, last, 3)

	size, err := c.Size(ctx)
	assert.NilError(t, err)
	assert.Equal(t, size, 3)

	third, ok, err := c.Nth(ctx, 2)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, third, 3)

	pos, err := asynccursor.Position(ctx, c, 2)
	assert.NilError(t, err)
	assert.Equal(t, pos, 1)
	pos, err = asynccursor.PositionFunc(ctx, c, lessThan(0))
	assert.NilError(t, err)
	assert.Equal(t, pos, -1)

	exists, err := asynccursor.Exists(ctx, c, 3)
	assert.NilError(t, err)
	assert.Assert(t, exists)
	exists, err = asynccursor.ExistsFunc(ctx, c, lessThan(1))
	assert.NilError(t, err)
	assert.Assert(t, !exists)

	calls := 0
	found, ok, err := c.Find(ctx, func(_ context.Context, v int) (bool, error) {
		calls++
		return v == 2, nil
	})
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, found, 2)
	assert.Equal(t, calls, 2)

	label, ok, err := asynccursor.FindMap(ctx, c, func(_ context.Context, v int) (string, bool, error) {
		return "n" + strconv.Itoa(v), v == 3, nil
	})
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, label, "n3")

	every, err := c.Every(ctx, lessThan(7))
	assert.NilError(t, err)
	assert.Assert(t, every)
	some, err := c.Some(ctx, lessThan(1))
	assert.NilError(t, err)
	assert.Assert(t, !some)

	var seen []int
	err = c.ForEach(ctx, func(_ context.Context, v int) error {
		seen = append(seen, v)
		return nil
	})
	assert.NilError(t, err)
	assert.DeepEqual(t, seen, []int{1, 2, 3})
}

func TestEmpty(t *testing.T) {
	ctx := context.Background()
	c := asynccursor.Values[int]()
	every, err := c.Every(ctx, lessThan(0))
	assert.NilError(t, err)
	assert.Assert(t, every)
	some, err := c.Some(ctx, lessThan(10))
	assert.NilError(t, err)
	assert.Assert(t, !some)
	assert.DeepEqual(t, collect(t, c.Cycle()), []int{})
}

func TestQueryError(t *testing.T) {
	ctx := context.Background()
	c := resolved(1, 2, 3)
	failing := func(_ context.Context, v int) (bool, error) {
		if v == 2 {
			return false, errBoom
		}
		return false, nil
	}
	_, _, err := c.Find(ctx, failing)
	assert.ErrorIs(t, err, errBoom)
	_, err = c.Every(ctx, func(ctx context.Context, v int) (bool, error) {
		ok, err := failing(ctx, v)
		return !ok, err
	})
	assert.ErrorIs(t, err, errBoom)
	_, err = asynccursor.PositionFunc(ctx, c, failing)
	assert.ErrorIs(t, err, errBoom)
}

func TestAwait(t *testing.T) {
	fs := asynccursor.Values[future.Future[int]](future.NewValue(1), nil, future.NewValue(3))
	assert.DeepEqual(t, collect(t, asynccursor.Await(fs)), []int{1, 0, 3})

	failed := asynccursor.Values(future.NewValue(1), future.NewError[int](errBoom))
	_, err := asynccursor.Await(failed).Collect(context.Background())
	assert.ErrorIs(t, err, errBoom)
}

func TestMapFuture(t *testing.T) {
	var started []int
	c := asynccursor.MapFuture(asynccursor.Values(1, 2, 3), func(v int) future.Future[string] {
		started = append(started, v)
		return future.NewDeferred(func(context.Context) (string, error) {
			return strconv.Itoa(v * v), nil
		})
	})
	assert.DeepEqual(t, collect(t, c), []string{"1", "4", "9"})
	assert.DeepEqual(t, started, []int{1, 2, 3})
}

func TestMapFuture_NilFuture(t *testing.T) {
	c := asynccursor.MapFuture(asynccursor.Values(1, 2), func(v int) future.Future[int] {
		if v == 1 {
			return nil
		}
		return future.NewValue(v * 10)
	})
	assert.DeepEqual(t, collect(t, c), []int{0, 20})
}

func TestEnumerateZip(t *testing.T) {
	c := resolved(1, 2, 3)
	sum, err := asynccursor.Fold(context.Background(), asynccursor.Enumerate(c), 0,
		func(_ context.Context, acc int, p xiter.Indexed[int]) (int, error) {
			return acc + p.Index*p.Value, nil
		})
	assert.NilError(t, err)
	assert.Equal(t, sum, 8)

	zipped := collect(t, asynccursor.Zip(c, asynccursor.Values("a", "b")))
	assert.DeepEqual(t, zipped, []xiter.Zipped[int, string]{
		{V1: 1, OK1: true, V2: "a", OK2: true},
		{V1: 2, OK1: true, V2: "b", OK2: true},
	})
	assert.Equal(t, len(collect(t, asynccursor.ZipLongest(c, asynccursor.Values("a")))), 3)
}

func TestFlat(t *testing.T) {
	inner := resolved(3, 4)
	nested := asynccursor.Values[any](asynccursor.Values[any](1, cursor.Values(2)), inner)
	assert.DeepEqual(t, collect(t, asynccursor.Flat[int](nested)), []int{1, 2, 3, 4})

	doubled := asynccursor.FlatMap(nested, func(_ context.Context, leaf any) (int, error) {
		return leaf.(int) * 2, nil
	})
	assert.DeepEqual(t, collect(t, doubled), []int{2, 4, 6, 8})

	_, err := asynccursor.Flat[string](nested).Collect(context.Background())
	assert.Assert(t, errors.Is(err, asynccursor.ErrLeafType))
}
