package loop

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/benbjohnson/clock"
)

// Timer is a callback scheduled to run after a delay.
type Timer struct {
	loop *Loop
	op   *operation

	at  time.Time
	seq uint64
	fn  func()

	done bool
}

// AfterFunc schedules fn to run on a new coroutine once d has elapsed on the loop's clock.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	l.timerSeq++

	t := &Timer{
		loop: l,
		op:   l.newOperation(TypeTimeout),
		at:   l.clock.Now().Add(d),
		seq:  l.timerSeq,
		fn:   fn,
	}

	// Timers due at the same time fire in the order they were created
	i := sort.Search(len(l.timers), func(i int) bool {
		return l.timers[i].at.After(t.at)
	})
	l.timers = slices.Insert(l.timers, i, t)

	return t
}

// ID returns the id of the timer's operation.
func (t *Timer) ID() ID {
	return t.op.id
}

// Stop prevents the timer from firing. It returns false if the timer already fired or was
// stopped before.
func (t *Timer) Stop() bool {
	if t.done {
		return false
	}

	t.done = true
	t.loop.timers = slices.DeleteFunc(t.loop.timers, func(x *Timer) bool { return x == t })
	t.loop.finish(t.op)

	return true
}

func (l *Loop) waitForTimer(ctx context.Context) error {
	next := l.timers[0]

	now := l.clock.Now()
	if !next.at.After(now) {
		return nil
	}

	if m, ok := l.clock.(*clock.Mock); ok {
		m.Set(next.at)
		return nil
	}

	t := l.clock.Timer(next.at.Sub(now))
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (l *Loop) fireTimers() {
	now := l.clock.Now()

	for len(l.timers) > 0 && !l.timers[0].at.After(now) {
		t := l.timers[0]
		l.timers = l.timers[1:]

		t.done = true
		l.spawn(t.op, func() error {
			t.fn()
			return nil
		})
	}
}
