// Package options provides configuration for the lazyseq history command.
package options

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/disgoorg/snowflake/v2"
)

// Options holds configuration values for the history command, loaded from environment variables or JSON.
type Options struct {
	ChannelIDs         []string `env:"DISCORD_CHANNEL_IDS" json:","`
	DiscordToken       string   `env:"DISCORD_TOKEN" json:","`
	LogLevel           string   `env:"LOG_LEVEL" json:",omitempty" default:"info"`
	MaxRetries         int      `env:"MAX_RETRIES" json:"," default:"3"`
	PageSize           int      `env:"PAGE_SIZE" json:"," default:"100"`
	RestTimeoutSeconds int      `env:"REST_TIMEOUT_SECONDS" json:"," default:"10"`
}

// defaultOptions creates a new Options instance with the values of its default tags.
func defaultOptions() (*Options, error) {
	options := &Options{}
	if err := defaults.Set(options); err != nil {
		return nil, fmt.Errorf("failed to set default options: %w", err)
	}
	return options, nil
}

// FromEnv populates Options from environment variables dynamically.
// The token is removed from the environment once read.
func FromEnv() (*Options, error) {
	options, err := defaultOptions()
	if err != nil {
		return nil, err
	}
	v := reflect.ValueOf(options).Elem()
	t := v.Type()

	for i := range v.NumField() {
		field := v.Field(i)
		fieldType := t.Field(i)

		envKey := fieldType.Tag.Get("env")
		if envKey == "" {
			continue
		}

		envValue, exists := os.LookupEnv(envKey)
		if !exists {
			continue
		}

		switch field.Kind() {
		case reflect.Slice:
			if field.Type().Elem().Kind() != reflect.String {
				return nil, fmt.Errorf("unsupported slice type for %s", envKey)
			}
			// Comma or space separated
			sliceValue := strings.FieldsFunc(envValue, func(r rune) bool { return r == ',' || r == ' ' })
			field.Set(reflect.ValueOf(sliceValue))
		case reflect.String:
			field.SetString(envValue)
		case reflect.Int:
			intValue, err := strconv.Atoi(envValue)
			if err != nil {
				return nil, fmt.Errorf("invalid value for %s: %w", envKey, err)
			}
			field.SetInt(int64(intValue))
		}
	}

	if err := os.Unsetenv("DISCORD_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to unset environment variable DISCORD_TOKEN: %w", err)
	}

	if options.DiscordToken == "" {
		return nil, errors.New("`DISCORD_TOKEN` is missing in environment variables")
	}
	return options, nil
}

// FromReader reads JSON from r and populates Options, missing fields keep their defaults.
func FromReader(r io.Reader) (*Options, error) {
	options, err := defaultOptions()
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(options); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	if options.DiscordToken == "" {
		return nil, errors.New("`DISCORD_TOKEN` is missing in JSON")
	}
	return options, nil
}

// Channels parses ChannelIDs.
func (o *Options) Channels() ([]snowflake.ID, error) {
	ids := make([]snowflake.ID, 0, len(o.ChannelIDs))
	for _, s := range o.ChannelIDs {
		id, err := snowflake.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid channel ID %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Level parses LogLevel, an empty level means info.
func (o *Options) Level() (slog.Level, error) {
	var level slog.Level
	if o.LogLevel == "" {
		return level, nil
	}
	if err := level.UnmarshalText([]byte(o.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", o.LogLevel, err)
	}
	return level, nil
}

// ContextWithRestTimeout creates a context with the REST timeout duration.
// This context can be used to enforce a timeout for REST API calls.
func (o *Options) ContextWithRestTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := o.RestTimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	return context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
}
