package asynclocal

import "errors"

// ErrNoContext is returned when values are read or written while no Context is active.
//
//lint:ignore ST1005 message is part of the public contract
var ErrNoContext = errors.New("No async local context has been set up")

// ErrNotEmitter is returned when BindEmitter is called with something that is not an emitter.
//
//lint:ignore ST1005 message is part of the public contract
var ErrNotEmitter = errors.New("Can only bind real event emitter")

// ContextError wraps an error that escaped from a function run within a Context. It records
// the Context that was active where the error originated.
type ContextError struct {
	Context *Context

	err error
}

var _ error = (*ContextError)(nil)

func (e *ContextError) Error() string {
	return e.err.Error()
}

func (e *ContextError) Unwrap() error {
	return e.err
}

// ContextFromError returns the Context attached to err, or nil if there is none.
func ContextFromError(err error) *Context {
	var ce *ContextError
	if errors.As(err, &ce) {
		return ce.Context
	}

	return nil
}

// attach records c on err. An error that already carries a Context keeps it, so the
// innermost Context wins.
func attach(err error, c *Context) error {
	if err == nil {
		return nil
	}

	if ContextFromError(err) != nil {
		return err
	}

	return &ContextError{Context: c, err: err}
}

// repanic must be deferred. It attaches c to errors raised with panic before re-raising them.
func repanic(c *Context) {
	if r := recover(); r != nil {
		if err, ok := r.(error); ok {
			panic(attach(err, c))
		}

		panic(r)
	}
}
