package sync

import "time"

type Scheduler struct {
	coroutines []Coroutine

	// current is the coroutine holding the baton, nil while the scheduler itself runs
	current Coroutine

	deadlockDetection time.Duration
}

func NewScheduler() *Scheduler {
	return NewSchedulerWithDeadlockDetection(DeadlockDetection)
}

func NewSchedulerWithDeadlockDetection(d time.Duration) *Scheduler {
	if d <= 0 {
		d = DeadlockDetection
	}

	return &Scheduler{
		coroutines:        make([]Coroutine, 0),
		deadlockDetection: d,
	}
}

// NewCoroutine starts a new co-routine and tracks it in this scheduler. The coroutine is
// executed during the next (or the currently running) call to Execute.
func (s *Scheduler) NewCoroutine(data any, fn func() error) Coroutine {
	c := newCoroutine(data, s.deadlockDetection, fn)
	s.coroutines = append(s.coroutines, c)
	return c
}

// Current returns the coroutine that is currently executing, or nil.
func (s *Scheduler) Current() Coroutine {
	return s.current
}

// Yield suspends the currently executing coroutine. Marking progress keeps the scheduler
// from treating the coroutine as blocked.
func (s *Scheduler) Yield(progress bool) {
	c := s.current
	if c == nil {
		panic("yield called outside of a coroutine")
	}

	if progress {
		c.MadeProgress()
	}

	c.Yield()
}

// Execute executes all coroutines until they are all blocked
func (s *Scheduler) Execute() error {
	allBlocked := false
	for !allBlocked {
		allBlocked = true
		for i := 0; i < len(s.coroutines); i++ {
			c := s.coroutines[i]

			s.execute(c)

			if c.Finished() {
				// Coroutine finished, this counts as progress
				allBlocked = false

				// remove from list
				s.coroutines[i] = nil
				s.coroutines = append(s.coroutines[:i], s.coroutines[i+1:]...)
				i--

				if err := c.Error(); err != nil {
					// Coroutine encountered an error, abort execution
					return err
				}
			} else {
				// Determine if coroutine made any progress or if it stayed blocked
				allBlocked = allBlocked && !c.Progress()
			}
		}
	}

	return nil
}

func (s *Scheduler) execute(c Coroutine) {
	prev := s.current
	s.current = c
	defer func() { s.current = prev }()

	c.Execute()
}

func (s *Scheduler) RunningCoroutines() int {
	return len(s.coroutines)
}

func (s *Scheduler) Exit() {
	for _, c := range s.coroutines {
		prev := s.current
		s.current = c
		c.Exit()
		s.current = prev
	}

	s.coroutines = s.coroutines[:0]
}
