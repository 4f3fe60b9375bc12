package asynclocal

import (
	"log/slog"

	"github.com/cschleiden/go-asynclocal/internal/debug"
	im "github.com/cschleiden/go-asynclocal/internal/metrics"
	"github.com/cschleiden/go-asynclocal/metrics"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Options struct {
	Logger *slog.Logger

	Metrics metrics.Client

	// TracerProvider is used to record a span for the lifetime of every Context.
	TracerProvider trace.TracerProvider

	// Registry holds the contexts tracked for the loop's operations. If not set, every Local
	// gets a registry of its own.
	Registry *Registry
}

var DefaultOptions = Options{
	Metrics:        im.NewNoopMetricsClient(),
	TracerProvider: noop.NewTracerProvider(),
}

type Option func(*Options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func WithMetrics(client metrics.Client) Option {
	return func(o *Options) {
		o.Metrics = client
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Options) {
		o.TracerProvider = tp
	}
}

func WithRegistry(r *Registry) Option {
	return func(o *Options) {
		o.Registry = r
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

	if options.Metrics == nil {
		options.Metrics = im.NewNoopMetricsClient()
	}

	if options.TracerProvider == nil {
		options.TracerProvider = noop.NewTracerProvider()
	}

	if options.Registry == nil {
		options.Registry = NewRegistry()
	}

	return options
}

type runOptions struct {
	inherit bool
}

// RunOption configures the Context created by Run.
type RunOption func(*runOptions)

// WithInheritance controls whether the new Context falls back to the values of its parent.
// Contexts inherit by default.
func WithInheritance(inherit bool) RunOption {
	return func(o *runOptions) {
		o.inherit = inherit
	}
}

// WithoutInheritance creates a Context that never looks up values in its parent.
func WithoutInheritance() RunOption {
	return WithInheritance(false)
}

func applyRunOptions(opts []RunOption) runOptions {
	o := runOptions{inherit: true}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
