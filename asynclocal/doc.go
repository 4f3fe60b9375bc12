// Package asynclocal propagates request-scoped values across the operations of a loop.Loop
// without passing them around explicitly.
//
// A Context is created with Run. Every operation scheduled while the function passed to Run
// executes (coroutines, timers, future continuations) and every operation those schedule in
// turn sees the same Context as current:
//
//	local := asynclocal.New(l)
//
//	err := local.Run(func(c *asynclocal.Context) error {
//		c.Set("request_id", id)
//
//		l.AfterFunc(time.Second, func() {
//			v, _ := local.Get("request_id") // id
//		})
//
//		return nil
//	})
//
// Contexts created inside another Context fall back to the values of their parent unless they
// were created WithoutInheritance. A Context is dropped once the loop reports that the
// operation owning it and everything it triggered are finished.
package asynclocal
