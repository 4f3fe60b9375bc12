package tracing

const (
	ContextID        = "asynclocal.context.id"
	ContextTriggerID = "asynclocal.context.trigger_id"
	ContextInherit   = "asynclocal.context.inherit"
)
