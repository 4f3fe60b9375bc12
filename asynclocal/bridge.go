package asynclocal

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type contextKey struct{}

// NewContext returns a copy of parent carrying c, and the span recorded for c.
func NewContext(parent context.Context, c *Context) context.Context {
	ctx := context.WithValue(parent, contextKey{}, c)

	if c.span != nil {
		ctx = trace.ContextWithSpan(ctx, c.span)
	}

	return ctx
}

// FromContext returns the Context stored in ctx by NewContext.
func FromContext(ctx context.Context) (*Context, bool) {
	c, ok := ctx.Value(contextKey{}).(*Context)
	return c, ok && c != nil
}
