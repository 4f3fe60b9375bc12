package contextpropagation

import (
	"context"
	"errors"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-asynclocal/asynclocal"
	"github.com/cschleiden/go-asynclocal/loop"
	"github.com/stretchr/testify/require"
)

type tenantKey struct{}

type failingPropagator struct{}

func (failingPropagator) Inject(context.Context, *asynclocal.Context) error {
	return errors.New("inject failed")
}

func (failingPropagator) Extract(_ *asynclocal.Context, ctx context.Context) (context.Context, error) {
	return ctx, nil
}

func newTestLocal(t *testing.T) (*asynclocal.Local, *loop.Loop) {
	l := loop.New(loop.WithClock(clock.NewMock()))
	t.Cleanup(l.Close)

	return asynclocal.New(l), l
}

func Test_Run_PropagatesValues(t *testing.T) {
	a, l := newTestLocal(t)

	propagators := []ContextPropagator{Value(tenantKey{}, "tenant")}
	ctx := context.WithValue(context.Background(), tenantKey{}, "acme")

	var seen any
	var inner context.Context

	err := Run(ctx, a, propagators, func(ctx context.Context, c *asynclocal.Context) error {
		require.Equal(t, "acme", c.Get("tenant"))

		got, ok := asynclocal.FromContext(ctx)
		require.True(t, ok)
		require.Same(t, c, got)

		l.Go(func() {
			seen, _ = a.Get("tenant")

			// Values set later flow back into context.Context
			_ = a.Run(func(c *asynclocal.Context) error {
				c.Set("tenant", "other")

				inner, _ = FromLocal(c, context.Background(), propagators)
				return nil
			})
		})

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, l.Run(context.Background()))

	require.Equal(t, "acme", seen)
	require.Equal(t, "other", inner.Value(tenantKey{}))
}

func Test_Run_MissingValue(t *testing.T) {
	a, _ := newTestLocal(t)

	err := Run(context.Background(), a, []ContextPropagator{Value(tenantKey{}, "tenant")}, func(ctx context.Context, c *asynclocal.Context) error {
		_, ok := c.Lookup("tenant")
		require.False(t, ok)
		require.Nil(t, ctx.Value(tenantKey{}))

		return nil
	})

	require.NoError(t, err)
}

func Test_Run_InjectError(t *testing.T) {
	a, _ := newTestLocal(t)

	called := false
	err := Run(context.Background(), a, []ContextPropagator{failingPropagator{}}, func(context.Context, *asynclocal.Context) error {
		called = true
		return nil
	})

	require.EqualError(t, err, "inject failed")
	require.NotNil(t, asynclocal.ContextFromError(err))
	require.False(t, called)
}
