package correlation

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-asynclocal/asynclocal"
	"github.com/cschleiden/go-asynclocal/loop"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T) (*asynclocal.Local, *loop.Loop) {
	l := loop.New(loop.WithClock(clock.NewMock()))
	t.Cleanup(l.Close)

	return asynclocal.New(l), l
}

func Test_Ensure(t *testing.T) {
	a, _ := newTestLocal(t)

	_, ok := ID(nil)
	require.False(t, ok)

	err := a.Run(func(c *asynclocal.Context) error {
		id := Ensure(c)

		_, err := uuid.Parse(id)
		require.NoError(t, err)
		require.Equal(t, id, Ensure(c))

		return a.Run(func(inner *asynclocal.Context) error {
			require.Equal(t, id, Ensure(inner))
			return nil
		})
	})

	require.NoError(t, err)
}

func Test_Run(t *testing.T) {
	a, l := newTestLocal(t)

	var seen []string

	err := Run(a, "req-1", func(c *asynclocal.Context) error {
		l.AfterFunc(time.Second, func() {
			id, _ := ID(a.Context())
			seen = append(seen, id)
		})

		return nil
	})
	require.NoError(t, err)

	err = Run(a, "", func(c *asynclocal.Context) error {
		id, ok := ID(c)
		require.True(t, ok)
		require.NotEmpty(t, id)

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, l.Run(context.Background()))
	require.Equal(t, []string{"req-1"}, seen)
}

func Test_Handler(t *testing.T) {
	a, l := newTestLocal(t)

	var buf bytes.Buffer
	logger := slog.New(NewHandler(slog.NewTextHandler(&buf, nil), a)).With("component", "test")

	logger.Info("outside")
	require.NotContains(t, buf.String(), "correlation_id")
	buf.Reset()

	err := Run(a, "req-1", func(c *asynclocal.Context) error {
		l.Go(func() {
			logger.Info("inside")
		})

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, l.Run(context.Background()))

	require.Contains(t, buf.String(), "asynclocal.correlation_id=req-1")
	require.Contains(t, buf.String(), "component=test")
	buf.Reset()

	// A Context passed explicitly takes precedence
	err = Run(a, "req-2", func(c *asynclocal.Context) error {
		ctx := asynclocal.NewContext(context.Background(), c)

		return Run(a, "req-3", func(*asynclocal.Context) error {
			logger.InfoContext(ctx, "explicit")
			return nil
		})
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "asynclocal.correlation_id=req-2")
}
