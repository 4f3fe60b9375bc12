package asynclocal

import (
	"iter"
	"maps"

	"github.com/cschleiden/go-asynclocal/loop"
)

// Registry maps operation ids to the Context active for them.
type Registry struct {
	contexts map[loop.ID]*Context
}

func NewRegistry() *Registry {
	return &Registry{
		contexts: make(map[loop.ID]*Context),
	}
}

// Get returns the Context registered for id, or nil.
func (r *Registry) Get(id loop.ID) *Context {
	return r.contexts[id]
}

func (r *Registry) Set(id loop.ID, c *Context) {
	r.contexts[id] = c
}

func (r *Registry) Delete(id loop.ID) {
	delete(r.contexts, id)
}

func (r *Registry) Len() int {
	return len(r.contexts)
}

// All iterates over all entries. Entries must not be added or removed while iterating.
func (r *Registry) All() iter.Seq2[loop.ID, *Context] {
	return maps.All(r.contexts)
}

// Clear removes all entries.
func (r *Registry) Clear() {
	clear(r.contexts)
}
