// Package prompush sends import metrics to a Prometheus Pushgateway.
//
// An import is a short-lived CLI run with nothing to scrape, so values are
// collected in a private registry and pushed on Flush. The grouping key
// "job" names the pushing program; the import job travels as the
// "import_job" label so several jobs of one run stay apart.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"tabimport/internal/metrics"
)

// JobLabel carries metrics.Labels["job"] on every series.
const JobLabel = "import_job"

// Backend collects into a registry and pushes it on Flush.
type Backend struct {
	pusher *push.Pusher

	counters map[string]*prometheus.CounterVec
	// counterLabels lists, per counter, the metrics.Labels keys read after
	// the job label.
	counterLabels map[string][]string
	steps         *prometheus.SummaryVec
}

// NewBackend builds a backend pushing to gatewayURL under the grouping key
// job=group. An empty group selects "tabimport".
func NewBackend(group, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if group == "" {
		group = "tabimport"
	}

	b := &Backend{
		counters:      map[string]*prometheus.CounterVec{},
		counterLabels: map[string][]string{},
	}
	reg := prometheus.NewRegistry()
	for _, c := range []struct {
		name, help string
		labels     []string
	}{
		{metrics.RunsTotal, "Finished imports by outcome.", []string{"outcome"}},
		{metrics.RecordsTotal, "Records by kind: imported, rejected, discarded, rendered.", []string{"kind"}},
		{metrics.StepTotal, "Run step executions by step and status.", []string{"step", "status"}},
	} {
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: c.name, Help: c.help}, append([]string{JobLabel}, c.labels...))
		if err := reg.Register(vec); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", c.name, err)
		}
		b.counters[c.name] = vec
		b.counterLabels[c.name] = c.labels
	}

	b.steps = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:       metrics.StepDuration,
		Help:       "Run step duration in seconds by step and status.",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{JobLabel, "step", "status"})
	if err := reg.Register(b.steps); err != nil {
		return nil, fmt.Errorf("prompush: register %s: %w", metrics.StepDuration, err)
	}

	b.pusher = push.New(gatewayURL, group).Gatherer(reg)
	return b, nil
}

// IncCounter adds delta to a known counter; other names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	vec, ok := b.counters[name]
	if !ok {
		return
	}
	values := []string{labels["job"]}
	for _, k := range b.counterLabels[name] {
		values = append(values, labels[k])
	}
	vec.WithLabelValues(values...).Add(delta)
}

// ObserveHistogram records step durations; other names are ignored.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.steps == nil {
		return
	}
	b.steps.WithLabelValues(labels["job"], labels["step"], labels["status"]).Observe(value)
}

// Flush replaces the group's metrics on the gateway with the registry.
func (b *Backend) Flush() error {
	if b.pusher == nil {
		return nil
	}
	if err := b.pusher.Push(); err != nil {
		return fmt.Errorf("prompush: push: %w", err)
	}
	return nil
}
