package events

// Registration records one listener attached to an emitter. Interceptors can store values on
// it at attach time and read them back when the listener is invoked.
type Registration struct {
	emitter  *Emitter
	event    string
	listener Listener
	once     bool

	values map[any]any
}

func (r *Registration) Event() string {
	return r.event
}

func (r *Registration) Listener() Listener {
	return r.listener
}

func (r *Registration) Once() bool {
	return r.once
}

// Value returns the value stored under key, or nil.
func (r *Registration) Value(key any) any {
	return r.values[key]
}

// SetValue stores v under key. Keys should be of an unexported type to avoid collisions.
func (r *Registration) SetValue(key, v any) {
	if r.values == nil {
		r.values = make(map[any]any)
	}

	r.values[key] = v
}

// Remove detaches the listener from its emitter.
func (r *Registration) Remove() {
	r.emitter.Off(r)
}
