package panics

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// PanicError is the error recorded when code running on a coroutine panics.
type PanicError struct {
	value      any
	stacktrace string
}

var _ error = (*PanicError)(nil)

// NewPanicError captures the given recovered value together with the stack of the caller.
// It is meant to be called from the deferred function that recovered the panic.
func NewPanicError(v any) *PanicError {
	return &PanicError{
		value:      v,
		stacktrace: stack(v, 3),
	}
}

func (pe *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", pe.value)
}

// Value returns the value the coroutine panicked with.
func (pe *PanicError) Value() any {
	return pe.value
}

func (pe *PanicError) Stack() string {
	return pe.stacktrace
}

// Unwrap returns the panic value if it was an error.
func (pe *PanicError) Unwrap() error {
	if err, ok := pe.value.(error); ok {
		return err
	}

	return nil
}

func stack(v any, skip int) string {
	goerr := goerrors.Wrap(v, skip)
	if goerr == nil {
		return ""
	}

	return string(goerr.Stack())
}
