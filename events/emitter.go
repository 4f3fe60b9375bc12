// Package events provides an event emitter whose listener registration and invocation can be
// intercepted, so that listeners can be decorated at the point they are attached and again at
// the point they are called.
//
// Emitters are meant to be used from a single thread of control, like the operations of a
// loop.Loop, and are not safe for concurrent use.
package events

import (
	"errors"
	"fmt"
	"slices"
)

// ErrorEvent is the name of the event emitted for errors. Emitting it without any listener
// attached panics.
const ErrorEvent = "error"

// ErrUnhandled is wrapped by the panic value raised when an error event has no listeners.
var ErrUnhandled = errors.New("unhandled error event")

// Listener is a function called with the arguments passed to Emit.
type Listener func(args ...any)

// Target is what an emitter needs to provide to have its listeners intercepted.
type Target interface {
	On(event string, listener Listener) *Registration
	AddListener(event string, listener Listener) *Registration
	Emit(event string, args ...any) bool
	Intercept(name string, i Interceptor)
}

// Interceptor hooks into an emitter. Attach is called whenever a listener is registered,
// Invoke whenever a listener is about to be called and returns the listener to call instead.
type Interceptor struct {
	Attach func(r *Registration)
	Invoke func(r *Registration, listener Listener) Listener
}

type namedInterceptor struct {
	name string
	Interceptor
}

type Emitter struct {
	listeners    map[string][]*Registration
	interceptors []namedInterceptor
}

var _ Target = (*Emitter)(nil)

func New() *Emitter {
	return &Emitter{
		listeners: make(map[string][]*Registration),
	}
}

// Intercept installs i under name. Installing an interceptor under a name already in use
// replaces the previous one.
func (e *Emitter) Intercept(name string, i Interceptor) {
	for idx := range e.interceptors {
		if e.interceptors[idx].name == name {
			e.interceptors[idx].Interceptor = i
			return
		}
	}

	e.interceptors = append(e.interceptors, namedInterceptor{name: name, Interceptor: i})
}

// On registers listener for event.
func (e *Emitter) On(event string, listener Listener) *Registration {
	return e.add(event, listener, false)
}

// AddListener is an alias for On.
func (e *Emitter) AddListener(event string, listener Listener) *Registration {
	return e.On(event, listener)
}

// Once registers listener for a single emission of event.
func (e *Emitter) Once(event string, listener Listener) *Registration {
	return e.add(event, listener, true)
}

func (e *Emitter) add(event string, listener Listener, once bool) *Registration {
	if listener == nil {
		panic("events: nil listener")
	}

	r := &Registration{
		emitter:  e,
		event:    event,
		listener: listener,
		once:     once,
	}

	for _, i := range e.interceptors {
		if i.Attach != nil {
			i.Attach(r)
		}
	}

	e.listeners[event] = append(e.listeners[event], r)

	return r
}

// Off removes the registration. Removing a registration twice has no effect.
func (e *Emitter) Off(r *Registration) {
	regs := e.listeners[r.event]
	regs = slices.DeleteFunc(slices.Clone(regs), func(x *Registration) bool { return x == r })

	if len(regs) == 0 {
		delete(e.listeners, r.event)
	} else {
		e.listeners[r.event] = regs
	}
}

// ListenerCount returns the number of listeners registered for event.
func (e *Emitter) ListenerCount(event string) int {
	return len(e.listeners[event])
}

// Emit calls the listeners registered for event, in registration order, with args. It reports
// whether any listener was called. Emitting ErrorEvent without listeners panics with an error
// wrapping ErrUnhandled and, if the first argument is an error, that error.
func (e *Emitter) Emit(event string, args ...any) bool {
	// Listeners added or removed while emitting do not affect this emission
	regs := slices.Clone(e.listeners[event])

	if len(regs) == 0 {
		if event == ErrorEvent {
			panic(unhandled(args))
		}

		return false
	}

	for _, r := range regs {
		if r.once {
			e.Off(r)
		}

		listener := r.listener
		for _, i := range e.interceptors {
			if i.Invoke != nil {
				listener = i.Invoke(r, listener)
			}
		}

		listener(args...)
	}

	return true
}

func unhandled(args []any) error {
	if len(args) > 0 {
		if err, ok := args[0].(error); ok {
			return fmt.Errorf("%w: %w", ErrUnhandled, err)
		}

		return fmt.Errorf("%w: %v", ErrUnhandled, args[0])
	}

	return ErrUnhandled
}
