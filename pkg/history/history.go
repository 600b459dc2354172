// Package history exposes the message history of a Discord channel as an asynchronous cursor.
//
// Messages are fetched page by page, newest first, only when the cursor is pulled past the page already
// in hand. Every lap starts again from the newest page, so a restarted cursor observes messages posted in
// the meantime.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/norio-nomura/lazyseq/pkg/asynccursor"
	"github.com/norio-nomura/lazyseq/pkg/source"
)

// MaxPageSize is the largest page Discord serves.
const MaxPageSize = 100

// MessageLister is the part of [rest.Rest] needed to read a channel history.
type MessageLister interface {
	GetMessages(channelID snowflake.ID, around snowflake.ID, before snowflake.ID, after snowflake.ID, limit int, opts ...rest.RequestOpt) ([]discord.Message, error)
}

// Config selects which messages are read and how requests are made.
type Config struct {
	ChannelID snowflake.ID
	// Before starts every lap below this message, zero starts at the newest message.
	Before snowflake.ID
	// PageSize outside 1..MaxPageSize means MaxPageSize.
	PageSize int
	// MaxRetries bounds the retries of a single page request.
	MaxRetries uint64
	// NewBackOff returns the retry schedule of a page request, exponential when nil.
	NewBackOff func() backoff.BackOff
	// WithTimeout bounds a single request attempt, no timeout when nil.
	WithTimeout func(context.Context) (context.Context, context.CancelFunc)
	Logger      *slog.Logger
}

// Source returns an asynchronous source over the history selected by cfg.
func Source(l MessageLister, cfg Config) source.Async[discord.Message] {
	return source.Pull(func() source.PullFunc[discord.Message] {
		p := &pager{lister: l, cfg: cfg, before: cfg.Before}
		return p.next
	})
}

// New returns a cursor over the history selected by cfg.
func New(l MessageLister, cfg Config, opts ...asynccursor.Option) *asynccursor.Cursor[discord.Message] {
	return asynccursor.New(Source(l, cfg), opts...)
}

// pager holds the position of one lap.
type pager struct {
	lister MessageLister
	cfg    Config
	before snowflake.ID
	page   []discord.Message
	last   bool
}

func (p *pager) next(ctx context.Context) (discord.Message, bool, error) {
	if len(p.page) == 0 {
		if p.last {
			return discord.Message{}, false, nil
		}
		page, err := p.fetch(ctx)
		if err != nil {
			return discord.Message{}, false, err
		}
		p.page = page
		p.last = len(page) < p.cfg.pageSize()
		if len(page) == 0 {
			return discord.Message{}, false, nil
		}
		p.before = page[len(page)-1].ID
	}
	m := p.page[0]
	p.page = p.page[1:]
	return m, true, nil
}

func (p *pager) fetch(ctx context.Context) ([]discord.Message, error) {
	logger := p.cfg.logger().With(slog.Any("channel.id", p.cfg.ChannelID), slog.Any("before", p.before))
	b := backoff.WithContext(backoff.WithMaxRetries(p.cfg.newBackOff(), p.cfg.MaxRetries), ctx)
	attempt := func() ([]discord.Message, error) {
		reqCtx, cancel := p.cfg.withTimeout(ctx)
		defer cancel()
		return p.lister.GetMessages(p.cfg.ChannelID, 0, p.before, 0, p.cfg.pageSize(), rest.WithCtx(reqCtx))
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("Retrying messages page", slog.Any("err", err), slog.Duration("wait", wait))
	}
	page, err := backoff.RetryNotifyWithData(attempt, b, notify)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages in channel %s: %w", p.cfg.ChannelID, err)
	}
	logger.Debug("Fetched messages page", slog.Int("count", len(page)))
	return page, nil
}

func (c Config) pageSize() int {
	switch {
	case c.PageSize <= 0 || c.PageSize > MaxPageSize:
		return MaxPageSize
	default:
		return c.PageSize
	}
}

func (c Config) newBackOff() backoff.BackOff {
	if c.NewBackOff != nil {
		return c.NewBackOff()
	}
	return backoff.NewExponentialBackOff()
}

func (c Config) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.WithTimeout != nil {
		return c.WithTimeout(ctx)
	}
	return context.WithCancel(ctx)
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
