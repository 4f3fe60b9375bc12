package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func Test_StartContextSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)).Tracer(TracerName)

	parent := StartContextSpan(tracer, nil, 2, 1, true)
	child := StartContextSpan(tracer, parent, 3, 2, false)

	child.End()
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)

	require.Equal(t, ContextSpanName, spans[0].Name())
	require.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	require.Contains(t, spans[0].Attributes(), attribute.Int64(ContextID, 3))
	require.Contains(t, spans[0].Attributes(), attribute.Bool(ContextInherit, false))
	require.False(t, spans[1].Parent().IsValid())
}

func Test_WithSpanError(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)).Tracer(TracerName)

	span := StartContextSpan(tracer, nil, 2, 1, true)

	err := errors.New("failed")
	require.Equal(t, err, WithSpanError(span, err))
	require.NoError(t, WithSpanError(span, nil))

	span.End()

	require.Equal(t, codes.Error, sr.Ended()[0].Status().Code)
	require.Equal(t, "failed", sr.Ended()[0].Status().Description)
}
