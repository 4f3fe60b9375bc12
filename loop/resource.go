package loop

// Resource is an operation whose extent is managed explicitly. Code can be executed in the
// resource's scope any number of times until it is closed.
type Resource struct {
	loop *Loop
	op   *operation
}

// NewResource creates a resource triggered by the currently executing operation.
func (l *Loop) NewResource(typ string) *Resource {
	return &Resource{
		loop: l,
		op:   l.newOperation(typ),
	}
}

func (r *Resource) ID() ID {
	return r.op.id
}

func (r *Resource) TriggerID() ID {
	return r.op.trigger
}

func (r *Resource) Type() string {
	return r.op.typ
}

// RunInScope executes fn with the resource established as the current operation. Errors and
// panics from fn are passed through unchanged.
func (r *Resource) RunInScope(fn func() error) error {
	return r.loop.runInScope(r.op.id, r.op.trigger, fn)
}

// Close marks the resource's own work as done. The resource is destroyed as soon as every
// operation it triggered has been destroyed as well. Close is idempotent.
func (r *Resource) Close() {
	r.loop.finish(r.op)
}
