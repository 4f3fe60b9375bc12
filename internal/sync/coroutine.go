package sync

import (
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/cschleiden/go-asynclocal/internal/panics"
)

// DeadlockDetection is how long Execute waits for a coroutine to hand the baton back.
const DeadlockDetection = 40 * time.Second

var ErrCoroutineAlreadyFinished = errors.New("coroutine already finished")

// Coroutine is a goroutine that only runs while it holds the baton. Exactly one coroutine, or the
// code calling Execute, runs at any time.
type Coroutine interface {
	// Execute hands the baton to the coroutine and waits until it yields or finishes.
	Execute()

	// Yield hands the baton back. It must only be called from the coroutine itself.
	Yield()

	// Exit unwinds a yielded coroutine. Deferred functions of the coroutine still run.
	Exit()

	// MadeProgress marks the current step as having made progress, a scheduler will
	// keep executing coroutines that made progress.
	MadeProgress()

	Blocked() bool
	Finished() bool
	Progress() bool

	Error() error

	// Data returns the per-task value the coroutine was created with.
	Data() any
}

type coroutine struct {
	// resume passes the baton to the coroutine, yielded passes it back
	resume  chan struct{}
	yielded chan struct{}

	blocked  atomic.Bool
	finished atomic.Bool
	exiting  atomic.Bool
	progress atomic.Bool

	err  error
	data any

	timeout time.Duration
}

var _ Coroutine = (*coroutine)(nil)

// NewCoroutine starts a coroutine for fn. The coroutine does not run until the first
// call to Execute.
func NewCoroutine(data any, fn func() error) Coroutine {
	return newCoroutine(data, DeadlockDetection, fn)
}

func newCoroutine(data any, timeout time.Duration, fn func() error) *coroutine {
	c := &coroutine{
		resume:  make(chan struct{}),
		yielded: make(chan struct{}, 1),
		data:    data,
		timeout: timeout,
	}

	// Not started yet
	c.blocked.Store(true)

	go c.run(fn)

	return c
}

func (c *coroutine) run(fn func() error) {
	defer c.done()
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		// Raised by Yield after Exit, nothing failed
		if err, ok := r.(error); ok && errors.Is(err, ErrCoroutineAlreadyFinished) {
			return
		}

		c.err = panics.NewPanicError(r)
	}()

	c.wait()

	c.err = fn()
}

// done runs last on the coroutine's goroutine, also when it is unwound by Exit.
func (c *coroutine) done() {
	c.finished.Store(true)
	c.yielded <- struct{}{}
}

func (c *coroutine) Data() any {
	return c.data
}

func (c *coroutine) Finished() bool {
	return c.finished.Load()
}

func (c *coroutine) Blocked() bool {
	return c.blocked.Load()
}

func (c *coroutine) MadeProgress() {
	c.progress.Store(true)
}

func (c *coroutine) Progress() bool {
	return c.progress.Load()
}

func (c *coroutine) Yield() {
	if c.exiting.Load() {
		panic(ErrCoroutineAlreadyFinished)
	}

	c.blocked.Store(true)
	c.yielded <- struct{}{}

	c.wait()
}

// wait parks the coroutine until the next Execute.
func (c *coroutine) wait() {
	<-c.resume

	if c.exiting.Load() {
		// Unwinds fn, done reports back to Exit
		runtime.Goexit()
	}

	c.blocked.Store(false)
}

func (c *coroutine) Execute() {
	c.progress.Store(false)

	if c.Finished() {
		return
	}

	t := time.NewTimer(c.timeout)
	defer t.Stop()

	c.resume <- struct{}{}

	runtime.Gosched()

	select {
	case <-c.yielded:
	case <-t.C:
		panic("coroutine timed out")
	}
}

func (c *coroutine) Exit() {
	if c.Finished() {
		return
	}

	c.exiting.Store(true)
	c.Execute()
}

func (c *coroutine) Error() error {
	return c.err
}
