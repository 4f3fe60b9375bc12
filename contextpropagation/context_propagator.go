// Package contextpropagation moves values between context.Context and async local contexts, for
// code where both meet.
package contextpropagation

import (
	"context"

	"github.com/cschleiden/go-asynclocal/asynclocal"
)

type ContextPropagator interface {
	// Inject copies values carried by ctx into c
	Inject(ctx context.Context, c *asynclocal.Context) error

	// Extract returns a copy of ctx carrying values of c
	Extract(c *asynclocal.Context, ctx context.Context) (context.Context, error)
}

// Run runs fn in a new Context seeded with the values the propagators inject from ctx. fn
// receives ctx extended with the values the propagators extract from the new Context.
func Run(
	ctx context.Context,
	local *asynclocal.Local,
	propagators []ContextPropagator,
	fn func(ctx context.Context, c *asynclocal.Context) error,
	opts ...asynclocal.RunOption,
) error {
	return local.Run(func(c *asynclocal.Context) error {
		for _, p := range propagators {
			if err := p.Inject(ctx, c); err != nil {
				return err
			}
		}

		ctx, err := FromLocal(c, ctx, propagators)
		if err != nil {
			return err
		}

		return fn(ctx, c)
	}, opts...)
}

// FromLocal returns a copy of parent carrying c and the values the propagators extract from it.
func FromLocal(c *asynclocal.Context, parent context.Context, propagators []ContextPropagator) (context.Context, error) {
	ctx := asynclocal.NewContext(parent, c)

	for _, p := range propagators {
		var err error
		if ctx, err = p.Extract(c, ctx); err != nil {
			return nil, err
		}
	}

	return ctx, nil
}

type valuePropagator struct {
	key  any
	name string
}

// Value propagates the context.Context value stored under key as the async local value name.
func Value(key any, name string) ContextPropagator {
	return &valuePropagator{key: key, name: name}
}

func (p *valuePropagator) Inject(ctx context.Context, c *asynclocal.Context) error {
	if v := ctx.Value(p.key); v != nil {
		c.Set(p.name, v)
	}

	return nil
}

func (p *valuePropagator) Extract(c *asynclocal.Context, ctx context.Context) (context.Context, error) {
	v, ok := c.Lookup(p.name)
	if !ok {
		return ctx, nil
	}

	return context.WithValue(ctx, p.key, v), nil
}
