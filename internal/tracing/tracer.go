package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const TracerName = "github.com/cschleiden/go-asynclocal"

const ContextSpanName = "asynclocal.Context"

// StartContextSpan starts the span covering the lifetime of an async local context. If parent
// is not nil, the new span is created as its child.
func StartContextSpan(tracer trace.Tracer, parent trace.Span, id, triggerID uint64, inherit bool) trace.Span {
	ctx := context.Background()
	if parent != nil {
		ctx = trace.ContextWithSpan(ctx, parent)
	}

	_, span := tracer.Start(ctx, ContextSpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int64(ContextID, int64(id)),
			attribute.Int64(ContextTriggerID, int64(triggerID)),
			attribute.Bool(ContextInherit, inherit),
		),
	)

	return span
}
