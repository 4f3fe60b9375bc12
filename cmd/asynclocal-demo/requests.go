package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-asynclocal/asynclocal"
	"github.com/cschleiden/go-asynclocal/correlation"
	"github.com/cschleiden/go-asynclocal/events"
	"github.com/cschleiden/go-asynclocal/loop"
	promclient "github.com/cschleiden/go-asynclocal/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

const requestStarted = "request.started"

func requestFinished(i int) string {
	return fmt.Sprintf("request.%d.finished", i)
}

func newRequestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Simulate concurrent requests, each tracked in its own context",
		Args:  cobra.NoArgs,
		RunE:  runRequests,
	}

	cmd.Flags().IntP("count", "n", 3, "Number of requests to simulate")
	cmd.Flags().Duration("latency", 100*time.Millisecond, "Simulated latency of each step")
	cmd.Flags().Bool("simulate-time", true, "Use a simulated clock instead of waiting")
	cmd.Flags().Bool("stdout-traces", false, "Print spans to stdout")
	cmd.Flags().String("otlp-endpoint", "", "Export spans to this OTLP/HTTP endpoint (host:port)")
	cmd.Flags().String("otlp-path", "", "URL path of the OTLP/HTTP endpoint")
	cmd.Flags().Bool("metrics", false, "Print metrics when done")
	cmd.Flags().Duration("timeout", time.Minute, "Overall timeout")

	return cmd
}

func runRequests(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	latency, _ := cmd.Flags().GetDuration("latency")
	simulate, _ := cmd.Flags().GetBool("simulate-time")
	stdoutTraces, _ := cmd.Flags().GetBool("stdout-traces")
	otlpEndpoint, _ := cmd.Flags().GetString("otlp-endpoint")
	otlpPath, _ := cmd.Flags().GetString("otlp-path")
	printMetrics, _ := cmd.Flags().GetBool("metrics")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	verbose, _ := cmd.Flags().GetBool("verbose")

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	out := cmd.OutOrStdout()

	topts := tracingOptions{otlpEndpoint: otlpEndpoint, otlpURLPath: otlpPath}
	if stdoutTraces {
		topts.stdout = out
	}

	tp, err := newTracerProvider(ctx, topts)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer tp.Shutdown(context.Background())

	var c clock.Clock = clock.New()
	if simulate {
		c = clock.NewMock()
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	base := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})

	l := loop.New(loop.WithClock(c), loop.WithLogger(slog.New(base)))
	defer l.Close()

	reg := prometheus.NewRegistry()

	local := asynclocal.New(l,
		asynclocal.WithLogger(slog.New(base)),
		asynclocal.WithTracerProvider(tp),
		asynclocal.WithMetrics(promclient.New(reg)),
	)

	logger := slog.New(correlation.NewHandler(base, local))

	e := events.New()
	e.On(requestStarted, func(args ...any) {
		logger.Info("request started", "request", args[0])
	})

	for i := range count {
		err := correlation.Run(local, "", func(rc *asynclocal.Context) error {
			rc.Set("request", i)

			if err := local.BindEmitter(e); err != nil {
				return err
			}

			e.Once(requestFinished(i), func(args ...any) {
				id, _ := correlation.ID(local.Context())
				fmt.Fprintf(out, "request %d finished (correlation id %s)\n", i, id)
			})

			e.Emit(requestStarted, i)

			handle(local, l, logger, latency*time.Duration(i+1), func() {
				e.Emit(requestFinished(i))
			})

			return nil
		})
		if err != nil {
			return err
		}
	}

	if err := l.Run(ctx); err != nil {
		return fmt.Errorf("running loop: %w", err)
	}

	if printMetrics {
		return writeMetrics(out, reg)
	}

	return nil
}

// handle simulates a request going through a lookup and a store step.
func handle(local *asynclocal.Local, l *loop.Loop, logger *slog.Logger, latency time.Duration, done func()) {
	lookup := loop.NewFuture[string](l)

	l.AfterFunc(latency, func() {
		v, _ := local.Get("request")
		lookup.Resolve(fmt.Sprintf("record-%v", v))
	})

	l.Go(func() {
		record, err := lookup.Get()
		if err != nil {
			logger.Error("lookup failed", "error", err)
			return
		}

		logger.Info("looked up record", "record", record)

		stored := asynclocal.RunFuture(local, func(c *asynclocal.Context) *loop.Future[string] {
			return loop.Async(l, func() (string, error) {
				l.Yield()
				return record, nil
			})
		})

		stored.Then(func(record string, err error) {
			if err != nil {
				logger.Error("store failed", "error", err)
				return
			}

			logger.Info("stored record", "record", record)
			done()
		})
	})
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}

	return nil
}
