package metrics

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-asynclocal/metrics"
)

type Timer struct {
	client metrics.Client
	clock  clock.Clock
	start  time.Time
	name   string
	tags   metrics.Tags
}

func NewTimer(client metrics.Client, c clock.Clock, name string, tags metrics.Tags) *Timer {
	return &Timer{
		client: client,
		clock:  c,
		start:  c.Now(),
		name:   name,
		tags:   tags,
	}
}

// Stop the timer and report the elapsed time
func (t *Timer) Stop() {
	t.client.Timing(t.name, t.tags, t.clock.Since(t.start))
}

// StopWithTags stops the timer and reports the elapsed time with additional tags
func (t *Timer) StopWithTags(tags metrics.Tags) {
	merged := make(metrics.Tags, len(t.tags)+len(tags))
	for k, v := range t.tags {
		merged[k] = v
	}
	for k, v := range tags {
		merged[k] = v
	}

	t.client.Timing(t.name, merged, t.clock.Since(t.start))
}
