package asynclocal

import (
	"log/slog"

	"github.com/cschleiden/go-asynclocal/internal/metrickeys"
	"github.com/cschleiden/go-asynclocal/log"
	"github.com/cschleiden/go-asynclocal/loop"
	"github.com/cschleiden/go-asynclocal/metrics"
)

// tracker keeps the registry in sync with the lifecycle of the loop's operations.
type tracker struct {
	local *Local
}

var _ loop.HookHandler = (*tracker)(nil)

// Init propagates the Context of the triggering operation to the new one.
func (t *tracker) Init(id loop.ID, typ string, triggerID loop.ID) {
	c := t.local.registry.Get(triggerID)
	if c == nil {
		return
	}

	t.local.registry.Set(id, c)

	t.local.metrics.Counter(metrickeys.ContextPropagated, metrics.Tags{metrickeys.OperationType: typ}, 1)
	t.local.metrics.Gauge(metrickeys.RegistrySize, metrics.Tags{}, float64(t.local.registry.Len()))

	t.local.logger.Debug("context propagated",
		slog.Uint64(log.ContextIDKey, uint64(c.ID())),
		slog.Uint64(log.OperationIDKey, uint64(id)),
		slog.String(log.OperationTypeKey, typ),
	)
}

func (t *tracker) Destroy(id loop.ID) {
	c := t.local.registry.Get(id)
	t.local.registry.Delete(id)

	if c == nil {
		return
	}

	t.local.metrics.Gauge(metrickeys.RegistrySize, metrics.Tags{}, float64(t.local.registry.Len()))

	// Other ids only borrowed the Context
	if c.ID() != id {
		return
	}

	c.span.End()

	t.local.metrics.Counter(metrickeys.ContextDestroyed, metrics.Tags{}, 1)

	t.local.logger.Debug("context destroyed",
		slog.Uint64(log.ContextIDKey, uint64(id)),
		slog.Int(log.RegistrySizeKey, t.local.registry.Len()),
	)
}
