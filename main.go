/*
Copyright © 2025 Norio Nomura

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
	"golang.org/x/sync/errgroup"

	"github.com/norio-nomura/lazyseq/pkg/asynccursor"
	"github.com/norio-nomura/lazyseq/pkg/history"
	"github.com/norio-nomura/lazyseq/pkg/options"
)

func main() {
	var (
		debug                bool
		readOptionsFromStdin bool
		includeBots          bool
		limit                int
		contains             string
		before               string
		opt                  *options.Options
		err                  error
	)
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&readOptionsFromStdin, "stdin", false, "Read JSON options from stdin")
	flag.BoolVar(&includeBots, "bots", false, "Include messages written by bots")
	flag.IntVar(&limit, "limit", 20, "Number of messages to print per channel")
	flag.StringVar(&contains, "contains", "", "Only print messages containing this text")
	flag.StringVar(&before, "before", "", "Only print messages older than this message ID")
	flag.Parse()
	if readOptionsFromStdin {
		opt, err = options.FromReader(os.Stdin)
	} else {
		opt, err = options.FromEnv()
	}
	if err != nil {
		panic(err)
	}
	if debug {
		opt.LogLevel = "debug"
	}
	if err := setupLogger(opt); err != nil {
		panic(err)
	}

	channels, err := opt.Channels()
	if err != nil {
		panic(err)
	}
	if ids := flag.Args(); len(ids) > 0 {
		channels, err = (&options.Options{ChannelIDs: ids}).Channels()
		if err != nil {
			panic(err)
		}
	}
	if len(channels) == 0 {
		fmt.Fprintln(os.Stderr, "usage: lazyseq [flags] channel-id...")
		os.Exit(2)
	}
	var beforeID snowflake.ID
	if before != "" {
		if beforeID, err = snowflake.Parse(before); err != nil {
			panic(fmt.Errorf("invalid -before: %w", err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	client := rest.New(rest.NewClient(opt.DiscordToken))
	filter := messageFilter{includeBots: includeBots, contains: contains}
	cursors := make([]*asynccursor.Cursor[discord.Message], len(channels))
	for i, channelID := range channels {
		cfg := history.Config{
			ChannelID:   channelID,
			Before:      beforeID,
			PageSize:    min(max(opt.PageSize, limit), history.MaxPageSize),
			MaxRetries:  uint64(max(opt.MaxRetries, 0)),
			WithTimeout: opt.ContextWithRestTimeout,
		}
		cursors[i] = history.New(client, cfg).Filter(filter.match).Take(limit)
	}

	results, err := prefetch(ctx, cursors)
	if err != nil {
		slog.Error("Failed to read channel history", slog.Any("err", err))
		stop()
		os.Exit(1)
	}
	for i, messages := range results {
		for _, m := range messages {
			fmt.Printf("%s\t%s\t%s\t%s\n", channels[i], m.CreatedAt.Format(time.RFC3339), m.Author.Username, oneLine(m.Content))
		}
	}
}

// setupLogger installs a zerolog backed slog handler as the default logger.
func setupLogger(opt *options.Options) error {
	level, err := opt.Level()
	if err != nil {
		return err
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	slog.SetDefault(slog.New(slogzerolog.Option{Level: level, Logger: &logger}.NewZerologHandler()))
	return nil
}

// prefetch drains every cursor on its own goroutine, each through an independent clone.
func prefetch[T any](ctx context.Context, cursors []*asynccursor.Cursor[T]) ([][]T, error) {
	results := make([][]T, len(cursors))
	g, ctx := errgroup.WithContext(ctx)
	for i, c := range cursors {
		clone := c.Clone()
		g.Go(func() error {
			vs, err := clone.Collect(ctx)
			if err != nil {
				return err
			}
			results[i] = vs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type messageFilter struct {
	includeBots bool
	contains    string
}

func (f messageFilter) match(_ context.Context, m discord.Message) (bool, error) {
	if m.Author.Bot && !f.includeBots {
		return false, nil
	}
	return strings.Contains(m.Content, f.contains), nil
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
