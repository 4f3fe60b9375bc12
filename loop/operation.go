package loop

import (
	"log/slog"
	"slices"

	"github.com/cschleiden/go-asynclocal/log"
)

// ID identifies an operation scheduled on a loop.
type ID uint64

// RootID is the id of the top-level operation. It is never destroyed.
const RootID ID = 1

// Operation types reported to hooks
const (
	TypeCoroutine  = "Coroutine"
	TypeTimeout    = "Timeout"
	TypeFuture     = "Future"
	TypeFutureThen = "FutureThen"
)

type operation struct {
	id      ID
	trigger ID
	typ     string

	// refs counts the operation's own reference plus one per live operation it triggered
	refs int

	// finished is set once the operation's own work is done
	finished bool
}

func (l *Loop) newOperation(typ string) *operation {
	l.nextID++

	op := &operation{
		id:      l.nextID,
		trigger: l.ExecutionID(),
		typ:     typ,
		refs:    1,
	}

	if parent, ok := l.ops[op.trigger]; ok {
		parent.refs++
	}

	l.ops[op.id] = op

	l.logger.Debug("operation created",
		slog.Uint64(log.OperationIDKey, uint64(op.id)),
		slog.String(log.OperationTypeKey, typ),
		slog.Uint64(log.TriggerIDKey, uint64(op.trigger)),
	)

	for _, h := range slices.Clone(l.hooks) {
		h.handler.Init(op.id, typ, op.trigger)
	}

	return op
}

// finish releases the operation's own reference.
func (l *Loop) finish(op *operation) {
	if op.finished {
		return
	}

	op.finished = true
	l.release(op)
}

// release drops one reference. Once no references are left the operation is destroyed and
// releases the reference it holds on its trigger.
func (l *Loop) release(op *operation) {
	for op != nil {
		op.refs--
		if op.refs > 0 {
			return
		}

		delete(l.ops, op.id)

		l.logger.Debug("operation destroyed",
			slog.Uint64(log.OperationIDKey, uint64(op.id)),
			slog.String(log.OperationTypeKey, op.typ),
		)

		for _, h := range slices.Clone(l.hooks) {
			h.handler.Destroy(op.id)
		}

		op = l.ops[op.trigger]
	}
}
