package main

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

type tracingOptions struct {
	stdout       io.Writer
	otlpEndpoint string
	otlpURLPath  string
}

func newTracerProvider(ctx context.Context, opts tracingOptions) (*trace.TracerProvider, error) {
	r := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String("asynclocal-demo"),
		semconv.ServiceVersionKey.String(version),
		attribute.String("environment", "demo"),
	)

	tpOpts := []trace.TracerProviderOption{trace.WithResource(r)}

	if opts.stdout != nil {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(opts.stdout), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}

		tpOpts = append(tpOpts, trace.WithSyncer(exp))
	}

	if opts.otlpEndpoint != "" {
		clientOpts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(opts.otlpEndpoint),
			otlptracehttp.WithInsecure(),
		}
		if opts.otlpURLPath != "" {
			clientOpts = append(clientOpts, otlptracehttp.WithURLPath(opts.otlpURLPath))
		}

		exp, err := otlptrace.New(ctx, otlptracehttp.NewClient(clientOpts...))
		if err != nil {
			return nil, err
		}

		tpOpts = append(tpOpts, trace.WithBatcher(exp))
	}

	return trace.NewTracerProvider(tpOpts...), nil
}
