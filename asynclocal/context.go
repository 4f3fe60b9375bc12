package asynclocal

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/cschleiden/go-asynclocal/events"
	"github.com/cschleiden/go-asynclocal/internal/metrickeys"
	"github.com/cschleiden/go-asynclocal/log"
	"github.com/cschleiden/go-asynclocal/loop"
	"github.com/cschleiden/go-asynclocal/metrics"
	"go.opentelemetry.io/otel/trace"
)

// ResourceType is the operation type of the resource backing a Context.
const ResourceType = "AsyncLocal"

// InterceptorName is the name under which BindEmitter intercepts an emitter.
const InterceptorName = "asynclocal"

// listenerKey tags emitter registrations with the binding of the Context they were attached in.
type listenerKey struct{}

// Context is a named value store shared by all operations triggered, directly or not, from the
// function passed to Run.
type Context struct {
	local *Local
	res   *loop.Resource

	inherit bool
	values  map[string]any

	span trace.Span
}

// ID returns the id of the operation owning the Context.
func (c *Context) ID() loop.ID {
	return c.res.ID()
}

// TriggerID returns the id of the operation that was executing when the Context was created.
func (c *Context) TriggerID() loop.ID {
	return c.res.TriggerID()
}

// Inherit reports whether values not set on c are looked up in its parent.
func (c *Context) Inherit() bool {
	return c.inherit
}

// Span returns the span recorded for the lifetime of c.
func (c *Context) Span() trace.Span {
	return c.span
}

// ParentContext returns the Context that was current when c was created, or nil.
func (c *Context) ParentContext() *Context {
	return c.local.registry.Get(c.TriggerID())
}

// Lookup returns the value stored under name. If c does not hold a value itself and inherits
// from its parent, the parent chain is searched up to the first Context that does not inherit.
func (c *Context) Lookup(name string) (any, bool) {
	for cur := c; cur != nil; cur = cur.ParentContext() {
		if v, ok := cur.values[name]; ok {
			return v, true
		}

		if !cur.inherit {
			break
		}
	}

	return nil, false
}

// Get is like Lookup but returns nil for values that are not set.
func (c *Context) Get(name string) any {
	v, _ := c.Lookup(name)
	return v
}

// Set stores value under name and returns the value c held before, ignoring inherited values.
func (c *Context) Set(name string, value any) any {
	prev := c.values[name]
	c.values[name] = value
	return prev
}

// Delete removes the value c holds for name. Inherited values become visible again.
func (c *Context) Delete(name string) {
	delete(c.values, name)
}

// Names returns the sorted names of the values held by c itself.
func (c *Context) Names() []string {
	return slices.Sorted(maps.Keys(c.values))
}

// Value returns the value stored under name if it is of type T.
func Value[T any](c *Context, name string) (T, bool) {
	v, ok := c.Lookup(name)
	if !ok {
		var zero T
		return zero, false
	}

	t, ok := v.(T)
	return t, ok
}

// Bind returns a function that calls fn with c as the current Context, no matter where it is
// called from. Errors returned by fn, and errors fn panics with, carry c unless they already
// carry a Context.
//
// The ancestors c inherits from are captured by Bind. If c is bound after its parent was
// destroyed, fn only sees the values of c itself.
func (c *Context) Bind(fn func() error) func() error {
	b := c.binding()

	return func() error {
		return b.call(fn)
	}
}

// BindListener is like Bind for event listeners.
func (c *Context) BindListener(listener events.Listener) events.Listener {
	return c.binding().listener(listener)
}

// BindValue is like Bind for functions returning a value.
func BindValue[T any](c *Context, fn func() (T, error)) func() (T, error) {
	b := c.binding()

	return func() (T, error) {
		var v T
		err := b.call(func() error {
			var err error
			v, err = fn()
			return err
		})

		return v, err
	}
}

// BindEmitter makes listeners registered on target run with the Context that was current when
// they were registered. Listeners registered while no Context was current, or before the
// emitter was bound, are called as they are. target has to implement events.Target.
func (c *Context) BindEmitter(target any) error {
	t, ok := target.(events.Target)
	if !ok {
		return ErrNotEmitter
	}

	a := c.local

	t.Intercept(InterceptorName, events.Interceptor{
		Attach: func(r *events.Registration) {
			cur := a.Context()
			if cur == nil {
				return
			}

			r.SetValue(listenerKey{}, cur.binding())

			a.metrics.Counter(metrickeys.ListenerBound, metrics.Tags{}, 1)
			a.logger.Debug("attaching listener",
				slog.Uint64(log.ContextIDKey, uint64(cur.ID())),
				slog.String(log.EventKey, r.Event()),
			)
		},
		Invoke: func(r *events.Registration, listener events.Listener) events.Listener {
			b, ok := r.Value(listenerKey{}).(*binding)
			if !ok {
				return listener
			}

			a.logger.Debug("binding listener",
				slog.Uint64(log.ContextIDKey, uint64(b.c.ID())),
				slog.String(log.EventKey, r.Event()),
			)

			return b.listener(listener)
		},
	})

	return nil
}
