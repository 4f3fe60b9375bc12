// Package metrics defines the client async local contexts report metrics to.
package metrics

import "time"

type Tags map[string]string

type Client interface {
	// Counter increments the counter name by value
	Counter(name string, tags Tags, value float64)

	// Gauge sets the current value of name
	Gauge(name string, tags Tags, value float64)

	Distribution(name string, tags Tags, value float64)

	Timing(name string, tags Tags, duration time.Duration)

	// WithTags returns a client adding the given tags to every metric
	WithTags(tags Tags) Client
}
