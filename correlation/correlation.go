// Package correlation tags the work done within an async local context with a correlation id
// and adds it to log records.
package correlation

import (
	"github.com/cschleiden/go-asynclocal/asynclocal"
	"github.com/google/uuid"
)

// Key is the name the correlation id is stored under.
const Key = "correlation_id"

// NewID returns a new random correlation id.
func NewID() string {
	return uuid.NewString()
}

// ID returns the correlation id visible in c.
func ID(c *asynclocal.Context) (string, bool) {
	if c == nil {
		return "", false
	}

	return asynclocal.Value[string](c, Key)
}

// Ensure returns the correlation id visible in c. If there is none, a new id is stored in c.
func Ensure(c *asynclocal.Context) string {
	if id, ok := ID(c); ok {
		return id
	}

	id := NewID()
	c.Set(Key, id)

	return id
}

// Run runs fn in a new Context carrying id. An empty id is replaced with a new one.
func Run(local *asynclocal.Local, id string, fn func(c *asynclocal.Context) error) error {
	if id == "" {
		id = NewID()
	}

	return local.Run(func(c *asynclocal.Context) error {
		c.Set(Key, id)

		return fn(c)
	})
}
