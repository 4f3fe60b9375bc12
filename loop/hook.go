package loop

import "slices"

// HookHandler receives lifecycle notifications for operations scheduled on a loop.
//
// Notifications are delivered synchronously on the loop's thread of control: Init while the
// operation is being created, Destroy once the operation and everything it triggered is done.
type HookHandler interface {
	Init(id ID, typ string, triggerID ID)
	Destroy(id ID)
}

// Hook is a HookHandler registration. A hook only receives notifications while enabled.
type Hook struct {
	loop    *Loop
	handler HookHandler
	enabled bool
}

// CreateHook registers handler with the loop. The returned hook starts out disabled.
func (l *Loop) CreateHook(handler HookHandler) *Hook {
	return &Hook{
		loop:    l,
		handler: handler,
	}
}

// Enable starts delivering notifications to the hook. Enabling an enabled hook has no effect.
func (h *Hook) Enable() *Hook {
	if h.enabled {
		return h
	}

	h.enabled = true
	h.loop.hooks = append(h.loop.hooks, h)

	return h
}

// Disable stops delivering notifications to the hook.
func (h *Hook) Disable() *Hook {
	if !h.enabled {
		return h
	}

	h.enabled = false
	h.loop.hooks = slices.DeleteFunc(h.loop.hooks, func(x *Hook) bool { return x == h })

	return h
}

func (h *Hook) Enabled() bool {
	return h.enabled
}
