package metrickeys

const (
	Prefix = "asynclocal."

	// Contexts
	ContextCreated    = Prefix + "context.created"
	ContextDestroyed  = Prefix + "context.destroyed"
	ContextPropagated = Prefix + "context.propagated"

	RegistrySize = Prefix + "registry.size"

	RunDuration = Prefix + "run.duration"

	// Emitters
	ListenerBound = Prefix + "emitter.listener.bound"
)

// Tag names
const (
	// Whether a context inherits values from its parent
	Inherit = "inherit"

	// Type of the operation a context was propagated to
	OperationType = "operation_type"

	// Whether the wrapped function failed
	Failed = "failed"
)
