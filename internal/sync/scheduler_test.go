package sync

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func Test_Scheduler(t *testing.T) {
	s := NewScheduler()

	hit := 0

	s.NewCoroutine(nil, func() error {
		hit++

		s.Yield(false)

		hit++

		return nil
	})

	require.Equal(t, 0, hit)

	require.NoError(t, s.Execute())
	require.Equal(t, 1, hit)
	require.Equal(t, 1, s.RunningCoroutines())

	// Coroutine is finished
	require.NoError(t, s.Execute())
	require.Equal(t, 2, hit)
	require.Equal(t, 0, s.RunningCoroutines())
}

func Test_Scheduler_YieldWithProgressContinues(t *testing.T) {
	s := NewScheduler()

	steps := 0

	s.NewCoroutine(nil, func() error {
		for i := 0; i < 3; i++ {
			steps++
			s.Yield(true)
		}

		return nil
	})

	require.NoError(t, s.Execute())
	require.Equal(t, 3, steps)
	require.Equal(t, 0, s.RunningCoroutines())
}

func Test_Scheduler_Current(t *testing.T) {
	s := NewScheduler()

	require.Nil(t, s.Current())

	var seen Coroutine
	c := s.NewCoroutine("first", func() error {
		seen = s.Current()
		return nil
	})

	require.NoError(t, s.Execute())
	require.Same(t, c, seen)
	require.Equal(t, "first", seen.Data())
	require.Nil(t, s.Current())
}

func Test_Scheduler_CoroutineStartedFromCoroutine(t *testing.T) {
	s := NewScheduler()

	var order []string

	s.NewCoroutine(nil, func() error {
		order = append(order, "parent")

		s.NewCoroutine(nil, func() error {
			order = append(order, "child")
			return nil
		})

		return nil
	})

	require.NoError(t, s.Execute())
	require.Equal(t, []string{"parent", "child"}, order)
}

func Test_OneCoroutineAtATime(t *testing.T) {
	s := NewScheduler()

	active := false

	for j := 0; j < 2; j++ {
		s.NewCoroutine(nil, func() error {
			for i := 0; i < 5; i++ {
				require.False(t, active)

				active = true
				time.Sleep(time.Millisecond)
				active = false

				s.Yield(true)
			}

			return nil
		})
	}

	require.NoError(t, s.Execute())
	require.Equal(t, 0, s.RunningCoroutines())
}

func Test_Scheduler_ReturnsCoroutineError(t *testing.T) {
	s := NewScheduler()

	s.NewCoroutine(nil, func() error {
		return errors.New("failed")
	})

	require.EqualError(t, s.Execute(), "failed")
}

func Test_Scheduler_Exit(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := NewScheduler()

	s.NewCoroutine(nil, func() error {
		s.Yield(false)

		require.FailNow(t, "should not reach this")

		return nil
	})

	require.NoError(t, s.Execute())
	require.Equal(t, 1, s.RunningCoroutines())

	s.Exit()

	require.Equal(t, 0, s.RunningCoroutines())
}

func Test_Scheduler_YieldOutsideCoroutinePanics(t *testing.T) {
	s := NewScheduler()

	require.Panics(t, func() {
		s.Yield(false)
	})
}
