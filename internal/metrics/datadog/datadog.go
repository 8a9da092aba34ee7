// Package datadog sends import metrics to a DogStatsD agent. Labels become
// "key:value" tags, the job included, since DogStatsD has no grouping key.
package datadog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/DataDog/datadog-go/v5/statsd"

	"tabimport/internal/metrics"
)

// DefaultNamespace is prepended to every metric name unless Config sets one.
const DefaultNamespace = "tabimport."

// Config selects the agent and the names and tags sent to it.
type Config struct {
	// Addr is host:port for UDP or unix:///path for a socket.
	Addr       string
	Namespace  string
	GlobalTags []string
}

// statsdClient is the part of statsd.ClientInterface the backend calls.
type statsdClient interface {
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	Flush() error
	Close() error
}

// Backend forwards counters and histograms to DogStatsD.
type Backend struct {
	client    statsdClient
	namespace string
}

// NewBackend dials the agent at cfg.Addr. UDP needs no listener, so an
// absent agent is not an error here.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, errors.New("datadog: agent address is required")
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	opts := []statsd.Option{statsd.WithNamespace(ns)}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: statsd client: %w", err)
	}
	return &Backend{client: c, namespace: ns}, nil
}

// IncCounter sends a Count. DogStatsD counts are integral, so delta is
// truncated; the run layer only emits whole counts.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Count(name, int64(delta), tags(labels), 1)
}

// ObserveHistogram sends a Histogram sample.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Histogram(name, value, tags(labels), 1)
}

// Flush drains the client buffer and closes it. A CLI run flushes once at
// exit, so the backend is not usable afterwards.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return errors.Join(b.client.Flush(), b.client.Close())
}

// tags renders labels as sorted "key:value" strings.
func tags(l metrics.Labels) []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for k, v := range l {
		out = append(out, k+":"+strings.ReplaceAll(v, ",", "_"))
	}
	sort.Strings(out)
	return out
}
