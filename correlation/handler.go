package correlation

import (
	"context"
	"log/slog"

	"github.com/cschleiden/go-asynclocal/asynclocal"
	"github.com/cschleiden/go-asynclocal/log"
)

// Handler adds the correlation id of the current Context to every record.
type Handler struct {
	next  slog.Handler
	local *asynclocal.Local
}

var _ slog.Handler = (*Handler)(nil)

func NewHandler(next slog.Handler, local *asynclocal.Local) *Handler {
	return &Handler{
		next:  next,
		local: local,
	}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle looks up the Context in ctx first, see asynclocal.NewContext, and falls back to the
// Context current on the loop.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	c, ok := asynclocal.FromContext(ctx)
	if !ok {
		c = h.local.Context()
	}

	if id, ok := ID(c); ok {
		r = r.Clone()
		r.AddAttrs(slog.String(log.CorrelationIDKey, id))
	}

	return h.next.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewHandler(h.next.WithAttrs(attrs), h.local)
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return NewHandler(h.next.WithGroup(name), h.local)
}
