package loop

import "sync"

var (
	defaultLoop     *Loop
	defaultLoopOnce sync.Once
)

// Default returns the process-wide loop, created with DefaultOptions on first use.
func Default() *Loop {
	defaultLoopOnce.Do(func() {
		defaultLoop = New()
	})

	return defaultLoop
}
