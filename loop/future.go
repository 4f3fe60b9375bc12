package loop

// Future is a value that becomes available later. Coroutines can wait for it with Get,
// continuations registered with Then run on their own coroutine once it is settled.
type Future[T any] struct {
	loop *Loop
	op   *operation

	settled bool
	v       T
	err     error

	callbacks []func()
}

// NewFuture creates an unsettled future, triggered by the currently executing operation.
func NewFuture[T any](l *Loop) *Future[T] {
	return &Future[T]{
		loop: l,
		op:   l.newOperation(TypeFuture),
	}
}

// Async runs fn on a new coroutine and returns a future settled with its result.
func Async[T any](l *Loop, fn func() (T, error)) *Future[T] {
	f := NewFuture[T](l)

	l.Go(func() {
		v, err := fn()
		if err != nil {
			f.Reject(err)
			return
		}

		f.Resolve(v)
	})

	return f
}

// Resolve settles the future with v. Settling an already settled future has no effect.
func (f *Future[T]) Resolve(v T) {
	f.settle(v, nil)
}

// Reject settles the future with err. Settling an already settled future has no effect.
func (f *Future[T]) Reject(err error) {
	var zero T
	f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) {
	if f.settled {
		return
	}

	f.settled = true
	f.v = v
	f.err = err

	callbacks := f.callbacks
	f.callbacks = nil
	for _, cb := range callbacks {
		cb()
	}

	f.loop.finish(f.op)
}

func (f *Future[T]) Settled() bool {
	return f.settled
}

// Get returns the value of the future. If the future is not settled yet, the current
// coroutine is suspended until it is. Get panics when it would have to wait outside of a
// coroutine.
func (f *Future[T]) Get() (T, error) {
	for !f.settled {
		if f.loop.s.Current() == nil {
			panic("waiting for a future outside of a coroutine")
		}

		f.loop.s.Yield(false)
	}

	if c := f.loop.s.Current(); c != nil {
		c.MadeProgress()
	}

	return f.v, f.err
}

// Then schedules fn to run once the future is settled. The continuation is an operation of its
// own, triggered by the operation executing when Then is called.
func (f *Future[T]) Then(fn func(T, error)) {
	op := f.loop.newOperation(TypeFutureThen)

	run := func() {
		f.loop.spawn(op, func() error {
			fn(f.v, f.err)
			return nil
		})
	}

	if f.settled {
		run()
		return
	}

	f.callbacks = append(f.callbacks, run)
}
