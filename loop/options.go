package loop

import (
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-asynclocal/internal/debug"
	"github.com/cschleiden/go-asynclocal/internal/sync"
)

type Options struct {
	Logger *slog.Logger

	// Clock drives timers. If a *clock.Mock is used, the loop does not wait for timers but
	// moves the clock forward to the next timer once all coroutines are blocked.
	Clock clock.Clock

	// DeadlockDetection is the maximum time a single coroutine step may take before the
	// loop gives up on it. Defaults to 40 seconds.
	DeadlockDetection time.Duration
}

var DefaultOptions = Options{
	DeadlockDetection: sync.DeadlockDetection,
}

type Option func(*Options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func WithClock(c clock.Clock) Option {
	return func(o *Options) {
		o.Clock = c
	}
}

func WithDeadlockDetection(d time.Duration) Option {
	return func(o *Options) {
		o.DeadlockDetection = d
	}
}

func ApplyOptions(opts ...Option) Options {
	options := DefaultOptions

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = debug.Logger()
	}

	if options.Clock == nil {
		options.Clock = clock.New()
	}

	return options
}
