package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"gotest.tools/v3/assert"

	"github.com/norio-nomura/lazyseq/pkg/asynccursor"
)

const channelID = snowflake.ID(42)

var errUnavailable = errors.New("service unavailable")

type request struct {
	Before snowflake.ID
	Limit  int
}

// fakeLister serves messages with IDs 1..n, newest first, and fails the first failures requests.
type fakeLister struct {
	n        int
	failures int
	requests []request
}

func (f *fakeLister) GetMessages(ch snowflake.ID, _ snowflake.ID, before snowflake.ID, _ snowflake.ID, limit int, _ ...rest.RequestOpt) ([]discord.Message, error) {
	f.requests = append(f.requests, request{Before: before, Limit: limit})
	if ch != channelID {
		return nil, errors.New("unknown channel " + ch.String())
	}
	if f.failures > 0 {
		f.failures--
		return nil, errUnavailable
	}
	var page []discord.Message
	for id := f.n; id > 0 && len(page) < limit; id-- {
		if before != 0 && snowflake.ID(id) >= before {
			continue
		}
		page = append(page, discord.Message{ID: snowflake.ID(id), ChannelID: ch, Content: "message " + strconv.Itoa(id)})
	}
	return page, nil
}

func testConfig(pageSize int) Config {
	return Config{
		ChannelID:  channelID,
		PageSize:   pageSize,
		MaxRetries: 3,
		NewBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} },
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func ids(t *testing.T, c *asynccursor.Cursor[discord.Message]) []snowflake.ID {
	t.Helper()
	ms, err := c.Collect(context.Background())
	assert.NilError(t, err)
	out := make([]snowflake.ID, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func TestHistory_Pages(t *testing.T) {
	f := &fakeLister{n: 5}
	c := New(f, testConfig(2))
	assert.Equal(t, len(f.requests), 0)

	assert.DeepEqual(t, ids(t, c), []snowflake.ID{5, 4, 3, 2, 1})
	assert.DeepEqual(t, f.requests, []request{{Before: 0, Limit: 2}, {Before: 4, Limit: 2}, {Before: 2, Limit: 2}})

	f.n = 6
	assert.DeepEqual(t, ids(t, c), []snowflake.ID{6, 5, 4, 3, 2, 1}) // a new lap starts from the newest page
}

func TestHistory_ExactPages(t *testing.T) {
	f := &fakeLister{n: 4}
	assert.DeepEqual(t, ids(t, New(f, testConfig(2))), []snowflake.ID{4, 3, 2, 1})
	assert.Equal(t, len(f.requests), 3, "an empty page ends the lap")
}

func TestHistory_Lazy(t *testing.T) {
	f := &fakeLister{n: 10}
	c := New(f, testConfig(3))
	first, ok, err := c.First(context.Background())
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, first.ID, snowflake.ID(10))
	assert.Equal(t, len(f.requests), 1)

	f.requests = nil
	assert.DeepEqual(t, ids(t, c.Take(4)), []snowflake.ID{10, 9, 8, 7})
	assert.Equal(t, len(f.requests), 2)
}

func TestHistory_Before(t *testing.T) {
	f := &fakeLister{n: 10}
	cfg := testConfig(0)
	cfg.Before = 4
	assert.DeepEqual(t, ids(t, New(f, cfg)), []snowflake.ID{3, 2, 1})
	assert.Equal(t, f.requests[0].Limit, MaxPageSize)
}

func TestHistory_Retries(t *testing.T) {
	f := &fakeLister{n: 2, failures: 2}
	assert.DeepEqual(t, ids(t, New(f, testConfig(5))), []snowflake.ID{2, 1})
	assert.Equal(t, len(f.requests), 3)

	f = &fakeLister{n: 2, failures: 5}
	cfg := testConfig(5)
	cfg.MaxRetries = 1
	_, err := New(f, cfg).Collect(context.Background())
	assert.ErrorIs(t, err, errUnavailable)
	assert.ErrorContains(t, err, "failed to get messages in channel 42")
	assert.Equal(t, len(f.requests), 2)
}

func TestHistory_ContextCanceled(t *testing.T) {
	f := &fakeLister{n: 2, failures: 100}
	cfg := testConfig(5)
	cfg.MaxRetries = 1000
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(f, cfg).Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Assert(t, len(f.requests) <= 1)
}

func TestHistory_Compose(t *testing.T) {
	f := &fakeLister{n: 9}
	c := New(f, testConfig(4))
	even := c.Filter(func(_ context.Context, m discord.Message) (bool, error) {
		return m.ID%2 == 0, nil
	})
	assert.DeepEqual(t, ids(t, even), []snowflake.ID{8, 6, 4, 2})

	contents, err := asynccursor.Map(c.Take(2), func(_ context.Context, m discord.Message) (string, error) {
		return m.Content, nil
	}).Collect(context.Background())
	assert.NilError(t, err)
	assert.Assert(t, slices.Equal(contents, []string{"message 9", "message 8"}))
}
