// Package prometheus reports metrics to a Prometheus registry.
package prometheus

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cschleiden/go-asynclocal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

var nameReplacer = strings.NewReplacer(".", "_", "-", "_")

// Client implements metrics.Client on top of Prometheus collectors. Collectors are created and
// registered on first use. The label names of a metric are fixed by the tags of its first
// observation; later tags outside that set are dropped, missing ones are reported empty.
type Client struct {
	state *state
	tags  metrics.Tags
}

var _ metrics.Client = (*Client)(nil)

type state struct {
	mu  sync.Mutex
	reg prometheus.Registerer

	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	labels     map[string][]string
}

func New(reg prometheus.Registerer) *Client {
	return &Client{
		state: &state{
			reg:        reg,
			counters:   make(map[string]*prometheus.CounterVec),
			gauges:     make(map[string]*prometheus.GaugeVec),
			histograms: make(map[string]*prometheus.HistogramVec),
			labels:     make(map[string][]string),
		},
		tags: metrics.Tags{},
	}
}

func (c *Client) Counter(name string, tags metrics.Tags, value float64) {
	s := c.state
	s.mu.Lock()
	defer s.mu.Unlock()

	name = metricName(name)
	tags = c.merge(tags)

	v, ok := s.counters[name]
	if !ok {
		v = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: name,
			Help: "Counter " + name,
		}, s.labelNames(name, tags))
		s.reg.MustRegister(v)
		s.counters[name] = v
	}

	v.With(s.labelValues(name, tags)).Add(value)
}

func (c *Client) Gauge(name string, tags metrics.Tags, value float64) {
	s := c.state
	s.mu.Lock()
	defer s.mu.Unlock()

	name = metricName(name)
	tags = c.merge(tags)

	v, ok := s.gauges[name]
	if !ok {
		v = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: name,
			Help: "Gauge " + name,
		}, s.labelNames(name, tags))
		s.reg.MustRegister(v)
		s.gauges[name] = v
	}

	v.With(s.labelValues(name, tags)).Set(value)
}

func (c *Client) Distribution(name string, tags metrics.Tags, value float64) {
	c.observe(metricName(name), tags, value)
}

// Timing records duration in seconds, in a histogram suffixed with _seconds.
func (c *Client) Timing(name string, tags metrics.Tags, duration time.Duration) {
	c.observe(metricName(name)+"_seconds", tags, duration.Seconds())
}

func (c *Client) observe(name string, tags metrics.Tags, value float64) {
	s := c.state
	s.mu.Lock()
	defer s.mu.Unlock()

	tags = c.merge(tags)

	v, ok := s.histograms[name]
	if !ok {
		v = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    name,
			Help:    "Histogram " + name,
			Buckets: prometheus.DefBuckets,
		}, s.labelNames(name, tags))
		s.reg.MustRegister(v)
		s.histograms[name] = v
	}

	v.With(s.labelValues(name, tags)).Observe(value)
}

func (c *Client) WithTags(tags metrics.Tags) metrics.Client {
	return &Client{
		state: c.state,
		tags:  c.merge(tags),
	}
}

func (c *Client) merge(tags metrics.Tags) metrics.Tags {
	merged := make(metrics.Tags, len(c.tags)+len(tags))
	maps.Copy(merged, c.tags)
	maps.Copy(merged, tags)

	return merged
}

func (s *state) labelNames(name string, tags metrics.Tags) []string {
	names := make([]string, 0, len(tags))
	for k := range tags {
		names = append(names, metricName(k))
	}
	slices.Sort(names)

	s.labels[name] = names

	return names
}

func (s *state) labelValues(name string, tags metrics.Tags) prometheus.Labels {
	sanitized := make(map[string]string, len(tags))
	for k, v := range tags {
		sanitized[metricName(k)] = v
	}

	labels := prometheus.Labels{}
	for _, n := range s.labels[name] {
		labels[n] = sanitized[n]
	}

	return labels
}

func metricName(name string) string {
	return nameReplacer.Replace(name)
}
