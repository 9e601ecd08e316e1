package aggregator

import (
	"time"

	"github.com/katalog-cli/katalog/key"
	"github.com/spf13/viper"
)

type Options struct {
	// Deadline bounds a whole aggregation when the caller's context has none. Zero waits for every source.
	Deadline time.Duration

	// SourceTimeout bounds a single attempt against one source.
	SourceTimeout time.Duration

	// Concurrency caps the sources queried at once. Zero is unlimited.
	Concurrency int

	// Retries is the number of extra attempts after a transient failure.
	Retries int

	// RetryDelay is the first backoff interval; it doubles per retry.
	RetryDelay time.Duration

	// RatePerSecond limits searches per source. Zero disables limiting.
	RatePerSecond float64
}

func DefaultOptions() Options {
	return Options{
		SourceTimeout: 15 * time.Second,
		Concurrency:   8,
		Retries:       2,
		RetryDelay:    500 * time.Millisecond,
	}
}

// OptionsFromConfig reads the sources.* keys.
func OptionsFromConfig() Options {
	opts := DefaultOptions()

	if viper.IsSet(key.SourcesTimeout) {
		opts.SourceTimeout = time.Duration(viper.GetInt(key.SourcesTimeout)) * time.Second
	}
	if viper.IsSet(key.SourcesDeadline) {
		opts.Deadline = time.Duration(viper.GetInt(key.SourcesDeadline)) * time.Second
	}
	if viper.IsSet(key.SourcesConcurrency) {
		opts.Concurrency = viper.GetInt(key.SourcesConcurrency)
	}
	if viper.IsSet(key.SourcesRetries) {
		opts.Retries = viper.GetInt(key.SourcesRetries)
	}
	if viper.IsSet(key.SourcesRetryDelay) {
		opts.RetryDelay = time.Duration(viper.GetInt(key.SourcesRetryDelay)) * time.Millisecond
	}
	if viper.IsSet(key.SourcesRate) {
		opts.RatePerSecond = viper.GetFloat64(key.SourcesRate)
	}

	return opts
}
