package asynclocal

import (
	"log/slog"
	"strconv"
	"sync"

	"github.com/cschleiden/go-asynclocal/internal/metrickeys"
	im "github.com/cschleiden/go-asynclocal/internal/metrics"
	"github.com/cschleiden/go-asynclocal/internal/tracing"
	"github.com/cschleiden/go-asynclocal/log"
	"github.com/cschleiden/go-asynclocal/loop"
	"github.com/cschleiden/go-asynclocal/metrics"
	"go.opentelemetry.io/otel/trace"
)

// Local tracks the contexts of the operations scheduled on a loop.
type Local struct {
	loop     *loop.Loop
	registry *Registry

	logger  *slog.Logger
	metrics metrics.Client
	tracer  trace.Tracer

	enableOnce sync.Once
	hook       *loop.Hook
}

func New(l *loop.Loop, opts ...Option) *Local {
	options := ApplyOptions(opts...)

	return &Local{
		loop:     l,
		registry: options.Registry,
		logger:   options.Logger,
		metrics:  options.Metrics,
		tracer:   options.TracerProvider.Tracer(tracing.TracerName),
	}
}

func (a *Local) Loop() *loop.Loop {
	return a.loop
}

func (a *Local) Registry() *Registry {
	return a.registry
}

// enable installs the lifecycle hook on first use.
func (a *Local) enable() {
	a.enableOnce.Do(func() {
		a.hook = a.loop.CreateHook(&tracker{local: a}).Enable()
	})
}

// Context returns the Context of the currently executing operation, or nil.
func (a *Local) Context() *Context {
	return a.registry.Get(a.loop.ExecutionID())
}

// ContextOf returns the Context of the operation with the given id, or nil.
func (a *Local) ContextOf(id loop.ID) *Context {
	return a.registry.Get(id)
}

// Get returns the value stored under name in the current Context. It returns ErrNoContext if no
// Context is current.
func (a *Local) Get(name string) (any, error) {
	c := a.Context()
	if c == nil {
		return nil, ErrNoContext
	}

	return c.Get(name), nil
}

// Set stores value under name in the current Context and returns the previous value. It returns
// ErrNoContext if no Context is current.
func (a *Local) Set(name string, value any) (any, error) {
	c := a.Context()
	if c == nil {
		return nil, ErrNoContext
	}

	return c.Set(name, value), nil
}

// Run creates a new Context and calls fn with it. Every operation scheduled while fn runs, and
// everything those schedule in turn, sees the new Context as current.
//
// The error returned by fn is passed through with the Context attached, see ContextFromError.
// Errors fn panics with are attached the same way before the panic continues.
func (a *Local) Run(fn func(c *Context) error, opts ...RunOption) error {
	_, err := RunValue(a, func(c *Context) (struct{}, error) {
		return struct{}{}, fn(c)
	}, opts...)

	return err
}

// RunValue is like Run for functions returning a value.
func RunValue[T any](a *Local, fn func(c *Context) (T, error), opts ...RunOption) (T, error) {
	o := applyRunOptions(opts)

	a.enable()

	res := a.loop.NewResource(ResourceType)
	defer res.Close()

	c := a.newContext(res, o.inherit)
	a.registry.Set(res.ID(), c)

	timer := im.NewTimer(a.metrics, a.loop.Clock(), metrickeys.RunDuration, metrics.Tags{
		metrickeys.Inherit: strconv.FormatBool(o.inherit),
	})

	var v T
	err := res.RunInScope(func() error {
		defer repanic(c)

		var err error
		v, err = fn(c)
		return err
	})

	timer.StopWithTags(metrics.Tags{metrickeys.Failed: strconv.FormatBool(err != nil)})

	if err != nil {
		return v, attach(tracing.WithSpanError(c.span, err), c)
	}

	return v, nil
}

// RunFuture is like Run for functions settling their result later. The returned future is
// settled with the outcome of the future returned by fn; a rejection carries the new Context.
func RunFuture[T any](a *Local, fn func(c *Context) *loop.Future[T], opts ...RunOption) *loop.Future[T] {
	out := loop.NewFuture[T](a.loop)

	_ = a.Run(func(c *Context) error {
		f := fn(c)
		if f == nil {
			var zero T
			out.Resolve(zero)
			return nil
		}

		f.Then(func(v T, err error) {
			if err != nil {
				out.Reject(attach(tracing.WithSpanError(c.span, err), c))
				return
			}

			out.Resolve(v)
		})

		return nil
	}, opts...)

	return out
}

func (a *Local) newContext(res *loop.Resource, inherit bool) *Context {
	c := &Context{
		local:   a,
		res:     res,
		inherit: inherit,
		values:  make(map[string]any),
	}

	var parentSpan trace.Span
	parentID := uint64(0)
	if parent := c.ParentContext(); parent != nil {
		parentSpan = parent.span
		parentID = uint64(parent.ID())
	}

	c.span = tracing.StartContextSpan(a.tracer, parentSpan, uint64(res.ID()), uint64(res.TriggerID()), inherit)

	a.metrics.Counter(metrickeys.ContextCreated, metrics.Tags{metrickeys.Inherit: strconv.FormatBool(inherit)}, 1)

	a.logger.Debug("context created",
		slog.Uint64(log.ContextIDKey, uint64(res.ID())),
		slog.Uint64(log.TriggerIDKey, uint64(res.TriggerID())),
		slog.Uint64(log.ParentContextKey, parentID),
		slog.Bool(log.ContextInheritKey, inherit),
	)

	return c
}

// enter makes sure the entries of a bound function are registered while it runs, even if the
// operations owning them have been destroyed already. The returned function undoes the
// registration.
func (a *Local) enter(entries []entry) func() {
	var restore []entry

	for _, e := range entries {
		prev := a.registry.Get(e.id)
		if prev == e.c {
			continue
		}

		a.registry.Set(e.id, e.c)
		restore = append(restore, entry{id: e.id, c: prev})
	}

	return func() {
		for i := len(restore) - 1; i >= 0; i-- {
			if e := restore[i]; e.c == nil {
				a.registry.Delete(e.id)
			} else {
				a.registry.Set(e.id, e.c)
			}
		}
	}
}

// Bind binds fn to the current Context, see Context.Bind. If no Context is current, fn is
// returned as is.
func (a *Local) Bind(fn func() error) func() error {
	c := a.Context()
	if c == nil {
		return fn
	}

	return c.Bind(fn)
}

// BindEmitter binds target to the current Context, see Context.BindEmitter. It does nothing if no
// Context is current.
func (a *Local) BindEmitter(target any) error {
	c := a.Context()
	if c == nil {
		return nil
	}

	return c.BindEmitter(target)
}

// CleanAll drops all tracked contexts and ends their spans. It is meant to reset state between
// tests.
func (a *Local) CleanAll() {
	for id, c := range a.registry.All() {
		if c.ID() == id {
			c.span.End()
		}
	}

	a.registry.Clear()
	a.metrics.Gauge(metrickeys.RegistrySize, metrics.Tags{}, 0)
}
