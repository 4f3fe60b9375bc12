package p

import (
	"asynclocal"
	"fmt"
	"time"
)

func handle(c *asynclocal.Context) error {
	return nil
}

func handleWithGoRoutine(c *asynclocal.Context) error {
	go func() { // want "use loop.Go instead of `go`, goroutines do not carry the async local context"
		fmt.Println("hello")
	}()

	return nil
}

func handleSleeping(c *asynclocal.Context, d time.Duration) error {
	if d > 0 {
		time.Sleep(d) // want "time.Sleep blocks the loop, use loop.AfterFunc instead"
	}

	return nil
}

func handleTimer(c *asynclocal.Context) error {
	time.AfterFunc(time.Second, func() {}) // want "use loop.AfterFunc instead of time.AfterFunc, the callback does not carry the async local context"

	return nil
}

func withValue(c asynclocal.Context) error {
	go fmt.Println("not a pointer")

	return nil
}

func plain() {
	go fmt.Println("no context")
	time.Sleep(time.Millisecond)
}

func run() error {
	return asynclocal.Run(func(c *asynclocal.Context) error {
		go fmt.Println("in run") // want "use loop.Go instead of `go`, goroutines do not carry the async local context"

		return asynclocal.Run(func(c *asynclocal.Context) error {
			time.Sleep(time.Millisecond) // want "time.Sleep blocks the loop, use loop.AfterFunc instead"
			return nil
		})
	})
}
