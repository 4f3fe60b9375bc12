package asynclocal

import (
	"errors"
	"testing"

	"github.com/cschleiden/go-asynclocal/events"
	"github.com/stretchr/testify/require"
)

func Test_Context_Values(t *testing.T) {
	a, _ := newTestLocal(t)

	err := a.Run(func(outer *Context) error {
		outer.Set("b", 1)
		outer.Set("a", nil)

		return a.Run(func(c *Context) error {
			v, ok := c.Lookup("a")
			require.True(t, ok)
			require.Nil(t, v)

			c.Set("b", 2)
			require.Equal(t, 2, c.Get("b"))
			require.Equal(t, []string{"b"}, c.Names())

			c.Delete("b")
			require.Equal(t, 1, c.Get("b"))
			require.Empty(t, c.Names())

			require.Equal(t, []string{"a", "b"}, outer.Names())

			return nil
		})
	})

	require.NoError(t, err)
}

func Test_Context_BindValue(t *testing.T) {
	a, _ := newTestLocal(t)

	var fn func() (int, error)
	var ctx *Context

	err := a.Run(func(c *Context) error {
		ctx = c
		c.Set("n", 21)

		fn = BindValue(c, func() (int, error) {
			v, err := a.Get("n")
			if err != nil {
				return 0, err
			}

			return v.(int) * 2, nil
		})

		return nil
	})
	require.NoError(t, err)

	v, err := fn()
	require.NoError(t, err)
	require.Equal(t, 42, v)

	failing := BindValue(ctx, func() (int, error) {
		return 0, errors.New("BOOM")
	})

	_, err = failing()
	require.Same(t, ctx, ContextFromError(err))
}

func Test_Context_BindListener(t *testing.T) {
	a, _ := newTestLocal(t)

	var ctx, seen *Context
	var args []any

	err := a.Run(func(c *Context) error {
		ctx = c
		return nil
	})
	require.NoError(t, err)

	listener := ctx.BindListener(func(xs ...any) {
		seen = a.Context()
		args = xs
	})

	listener("x", 1)

	require.Same(t, ctx, seen)
	require.Equal(t, []any{"x", 1}, args)
}

func Test_Context_BindEmitter_NoContext(t *testing.T) {
	a, _ := newTestLocal(t)

	e := events.New()
	require.NoError(t, a.BindEmitter(e))
	require.NoError(t, a.BindEmitter(struct{}{}))

	called := false
	e.On("event", func(args ...any) {
		require.Nil(t, a.Context())
		called = true
	})

	require.True(t, e.Emit("event"))
	require.True(t, called)
}

func Test_Context_BindEmitter_NotAnEmitter(t *testing.T) {
	a, _ := newTestLocal(t)

	err := a.Run(func(c *Context) error {
		err := a.BindEmitter(struct{}{})
		require.ErrorIs(t, err, ErrNotEmitter)
		require.EqualError(t, err, "Can only bind real event emitter")

		require.ErrorIs(t, c.BindEmitter(nil), ErrNotEmitter)

		return nil
	})

	require.NoError(t, err)
}

func Test_Context_UnboundEmitter_UsesEmitContext(t *testing.T) {
	a, l := newTestLocal(t)

	e := events.New()

	var outer, inner *Context
	var seen []*Context

	e.On("event", func(args ...any) {
		seen = append(seen, a.Context())
	})

	err := a.Run(func(c *Context) error {
		outer = c

		e.On("event", func(args ...any) {
			seen = append(seen, a.Context())
		})

		return a.Run(func(c *Context) error {
			inner = c

			e.On("event", func(args ...any) {
				seen = append(seen, a.Context())
			})

			e.Emit("event")

			return nil
		})
	})
	require.NoError(t, err)

	runLoop(t, l)

	require.NotNil(t, outer)
	require.Equal(t, []*Context{inner, inner, inner}, seen)
}

func Test_Context_BindEmitter_AttachTimeContext(t *testing.T) {
	a, l := newTestLocal(t)

	e := events.New()

	var outer, inner *Context
	var got, errs []*Context
	var untagged []*Context

	e.On("event", func(args ...any) {
		untagged = append(untagged, a.Context())
	})

	err := a.Run(func(c *Context) error {
		outer = c

		require.NoError(t, a.BindEmitter(e))

		e.On("event", func(args ...any) {
			require.Equal(t, []any{"ok"}, args)
			got = append(got, a.Context())
		})

		e.On(events.ErrorEvent, func(args ...any) {
			errs = append(errs, a.Context())
		})

		return a.Run(func(c *Context) error {
			inner = c

			e.AddListener("event", func(args ...any) {
				got = append(got, a.Context())
			})

			e.On(events.ErrorEvent, func(args ...any) {
				errs = append(errs, a.Context())
			})

			require.NotSame(t, outer, a.Context())
			e.Emit("event", "ok")

			l.AfterFunc(10, func() {
				e.Emit(events.ErrorEvent, errors.New("BOOM"))
			})

			return nil
		})
	})
	require.NoError(t, err)

	runLoop(t, l)

	require.Equal(t, []*Context{outer, inner}, got)
	require.Equal(t, []*Context{outer, inner}, errs)
	require.Equal(t, []*Context{inner}, untagged)

	// Emitting outside of any context still restores the attach-time contexts
	got, untagged = nil, nil
	e.Emit("event", "ok")

	require.Equal(t, []*Context{outer, inner}, got)
	require.Equal(t, []*Context{nil}, untagged)
	require.Nil(t, a.Context())
	require.Zero(t, a.Registry().Len())
}

func Test_Context_BindEmitter_ListenerWithoutContext(t *testing.T) {
	a, _ := newTestLocal(t)

	e := events.New()

	err := a.Run(func(c *Context) error {
		return a.BindEmitter(e)
	})
	require.NoError(t, err)

	var seen []*Context
	e.On("event", func(args ...any) {
		seen = append(seen, a.Context())
	})

	var emitter *Context
	err = a.Run(func(c *Context) error {
		emitter = c
		e.Emit("event")
		return nil
	})
	require.NoError(t, err)

	require.Equal(t, []*Context{emitter}, seen)
}

func Test_Context_BindEmitter_Rebind(t *testing.T) {
	a, _ := newTestLocal(t)

	e := events.New()

	var ctx *Context
	calls := 0

	err := a.Run(func(c *Context) error {
		ctx = c

		require.NoError(t, c.BindEmitter(e))
		require.NoError(t, c.BindEmitter(e))

		e.Once("event", func(args ...any) {
			require.Same(t, ctx, a.Context())
			calls++
		})

		return nil
	})
	require.NoError(t, err)

	e.Emit("event")
	e.Emit("event")

	require.Equal(t, 1, calls)
	require.Zero(t, e.ListenerCount("event"))
}

func Test_Context_BindEmitter_ListenerPanics(t *testing.T) {
	a, _ := newTestLocal(t)

	e := events.New()
	boom := errors.New("BOOM")

	var ctx *Context

	err := a.Run(func(c *Context) error {
		ctx = c
		require.NoError(t, a.BindEmitter(e))

		e.On("event", func(args ...any) {
			panic(boom)
		})

		return nil
	})
	require.NoError(t, err)

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		e.Emit("event")
	}()

	perr, ok := recovered.(error)
	require.True(t, ok)
	require.ErrorIs(t, perr, boom)
	require.Same(t, ctx, ContextFromError(perr))
}
