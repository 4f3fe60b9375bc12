package log

const (
	NamespaceKey = "asynclocal"

	OperationIDKey   = NamespaceKey + ".operation.id"
	OperationTypeKey = NamespaceKey + ".operation.type"
	TriggerIDKey     = NamespaceKey + ".operation.trigger_id"

	ContextIDKey      = NamespaceKey + ".context.id"
	ContextInheritKey = NamespaceKey + ".context.inherit"
	ParentContextKey  = NamespaceKey + ".context.parent_id"

	RegistrySizeKey = NamespaceKey + ".registry.size"

	CoroutinesKey = NamespaceKey + ".loop.coroutines"
	TimersKey     = NamespaceKey + ".loop.timers"

	EventKey = NamespaceKey + ".event"

	CorrelationIDKey = NamespaceKey + ".correlation_id"

	DurationKey = NamespaceKey + ".duration_ms"

	// AtKey is the time at which a timer is scheduled to fire
	AtKey = NamespaceKey + ".timer.at"
)
