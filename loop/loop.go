package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-asynclocal/internal/sync"
	"github.com/cschleiden/go-asynclocal/log"
)

// ErrDeadlock is returned by Run when coroutines are still blocked but nothing is left that
// could unblock them.
var ErrDeadlock = errors.New("all coroutines are blocked")

// frame is one level of scoped execution
type frame struct {
	id      ID
	trigger ID
}

// task is the per-coroutine state of an operation running on the loop
type task struct {
	op     *operation
	frames []frame
}

// Loop is a single-threaded cooperative runtime. Work is scheduled as operations, each with a
// unique id and the id of the operation that triggered it. Only one operation executes at any
// time; a coroutine gives up control by yielding or waiting on a future.
//
// A Loop is not safe for concurrent use. All methods must be called from code running on the
// loop, or from the goroutine driving it while Run is not executing.
type Loop struct {
	logger *slog.Logger
	clock  clock.Clock

	s *sync.Scheduler

	nextID ID
	ops    map[ID]*operation
	hooks  []*Hook

	// top holds the execution frames of code not running on a coroutine
	top []frame

	timers   []*Timer
	timerSeq uint64
}

func New(opts ...Option) *Loop {
	options := ApplyOptions(opts...)

	return &Loop{
		logger: options.Logger,
		clock:  options.Clock,
		s:      sync.NewSchedulerWithDeadlockDetection(options.DeadlockDetection),
		nextID: RootID,
		ops:    make(map[ID]*operation),
		top:    []frame{{id: RootID}},
	}
}

// Clock returns the clock driving the loop's timers.
func (l *Loop) Clock() clock.Clock {
	return l.clock
}

func (l *Loop) frames() *[]frame {
	if c := l.s.Current(); c != nil {
		if t, ok := c.Data().(*task); ok {
			return &t.frames
		}
	}

	return &l.top
}

// ExecutionID returns the id of the operation that is currently executing.
func (l *Loop) ExecutionID() ID {
	f := *l.frames()
	return f[len(f)-1].id
}

// TriggerID returns the id of the operation that triggered the currently executing one.
func (l *Loop) TriggerID() ID {
	f := *l.frames()
	return f[len(f)-1].trigger
}

// runInScope executes fn with id established as the current operation. The previous operation
// is restored when fn returns or panics.
func (l *Loop) runInScope(id, trigger ID, fn func() error) error {
	fs := l.frames()
	*fs = append(*fs, frame{id: id, trigger: trigger})
	defer func() {
		*fs = (*fs)[:len(*fs)-1]
	}()

	return fn()
}

// Alive reports whether the operation with the given id has not been destroyed yet.
func (l *Loop) Alive(id ID) bool {
	if id == RootID {
		return true
	}

	_, ok := l.ops[id]
	return ok
}

// Operations returns the number of operations that have not been destroyed.
func (l *Loop) Operations() int {
	return len(l.ops)
}

// Go schedules fn to run on a new coroutine. The coroutine is triggered by the currently
// executing operation.
func (l *Loop) Go(fn func()) {
	op := l.newOperation(TypeCoroutine)
	l.spawn(op, func() error {
		fn()
		return nil
	})
}

func (l *Loop) spawn(op *operation, fn func() error) {
	t := &task{
		op:     op,
		frames: []frame{{id: op.id, trigger: op.trigger}},
	}

	l.s.NewCoroutine(t, func() error {
		// Also runs when fn panics or the coroutine is exited by Close
		defer l.finish(op)

		return fn()
	})
}

// Yield suspends the current coroutine and lets other coroutines run before continuing.
func (l *Loop) Yield() {
	if l.s.Current() == nil {
		panic("Yield called outside of a coroutine")
	}

	l.s.Yield(true)
}

// Run executes scheduled work until nothing is left to do. Timers are fired once all
// coroutines are blocked. Run returns the first error a coroutine failed with, ErrDeadlock
// if coroutines are blocked without any pending timer, or the context error if ctx is done
// while waiting for a timer.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := l.s.Execute(); err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if len(l.timers) == 0 {
			if n := l.s.RunningCoroutines(); n > 0 {
				return fmt.Errorf("%w: %d coroutine(s) waiting", ErrDeadlock, n)
			}

			return nil
		}

		l.logger.Debug("waiting for timer",
			slog.Int(log.CoroutinesKey, l.s.RunningCoroutines()),
			slog.Int(log.TimersKey, len(l.timers)),
			slog.Time(log.AtKey, l.timers[0].at),
		)

		if err := l.waitForTimer(ctx); err != nil {
			return err
		}

		l.fireTimers()
	}
}

// Close exits all coroutines that are still blocked and drops pending timers.
func (l *Loop) Close() {
	l.s.Exit()
	l.timers = nil
}
