package asynclocal

import (
	"github.com/cschleiden/go-asynclocal/events"
	"github.com/cschleiden/go-asynclocal/loop"
)

type entry struct {
	id loop.ID
	c  *Context
}

// binding holds the registry entries a bound function needs: the Context under its own id and,
// while it inherits, every ancestor under the id it was found at. Entries are captured when the
// function is bound, so inherited values stay visible after the ancestors are destroyed.
type binding struct {
	c       *Context
	entries []entry
}

func (c *Context) binding() *binding {
	b := &binding{
		c:       c,
		entries: []entry{{id: c.ID(), c: c}},
	}

	for cur := c; cur.inherit; {
		parent := cur.ParentContext()
		if parent == nil {
			break
		}

		b.entries = append(b.entries, entry{id: cur.TriggerID(), c: parent})
		cur = parent
	}

	return b
}

func (b *binding) call(fn func() error) error {
	c := b.c

	defer c.local.enter(b.entries)()

	err := c.res.RunInScope(func() error {
		defer repanic(c)

		return fn()
	})

	return attach(err, c)
}

func (b *binding) listener(listener events.Listener) events.Listener {
	return func(args ...any) {
		_ = b.call(func() error {
			listener(args...)
			return nil
		})
	}
}
