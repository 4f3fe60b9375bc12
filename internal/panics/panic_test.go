package panics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_NewPanicError(t *testing.T) {
	var pe *PanicError

	func() {
		defer func() {
			pe = NewPanicError(recover())
		}()

		panic("test")
	}()

	require.Equal(t, "panic: test", pe.Error())
	require.Equal(t, "test", pe.Value())
	require.NotEmpty(t, pe.Stack())
	require.Nil(t, pe.Unwrap())
}

func Test_PanicError_UnwrapsErrors(t *testing.T) {
	inner := errors.New("boom")

	pe := NewPanicError(inner)

	require.ErrorIs(t, pe, inner)
	require.Equal(t, "panic: boom", pe.Error())
}
