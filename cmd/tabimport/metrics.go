package main

import (
	"log"
	"os"

	"tabimport/internal/metrics"
	"tabimport/internal/metrics/datadog"
	"tabimport/internal/metrics/prompush"
)

// metricsSink is one selectable backend: where its address comes from and
// how to build it.
type metricsSink struct {
	env, fallback string
	flag          func(o cliOptions) string
	build         func(addr string) (metrics.Backend, error)
}

var metricsSinks = map[string]metricsSink{
	"pushgateway": {
		env:      "PUSHGATEWAY_URL",
		fallback: "http://localhost:9091",
		flag:     func(o cliOptions) string { return o.pushGatewayURL },
		build: func(addr string) (metrics.Backend, error) {
			return prompush.NewBackend("tabimport", addr)
		},
	},
	"datadog": {
		env:      "DD_AGENT_ADDR",
		fallback: "127.0.0.1:8125",
		flag:     func(o cliOptions) string { return o.ddAddr },
		build: func(addr string) (metrics.Backend, error) {
			return datadog.NewBackend(datadog.Config{Addr: addr, GlobalTags: []string{"service:tabimport"}})
		},
	},
}

// firstSet returns the first non-empty value.
func firstSet(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// setupMetrics installs the backend picked by flag, then METRICS_BACKEND,
// and returns the func that flushes it at exit. Any problem leaves metrics
// off; a run never fails because of them.
func setupMetrics(o cliOptions) func() {
	name := firstSet(o.metricsBackend, os.Getenv("METRICS_BACKEND"), "none")
	if name == "none" {
		log.Printf("metrics: disabled")
		return func() {}
	}
	sink, ok := metricsSinks[name]
	if !ok {
		log.Printf("metrics: unknown backend %q, disabled", name)
		return func() {}
	}

	addr := firstSet(sink.flag(o), os.Getenv(sink.env), sink.fallback)
	b, err := sink.build(addr)
	if err != nil {
		log.Printf("metrics: %s at %s: %v, disabled", name, addr, err)
		return func() {}
	}
	log.Printf("metrics: backend=%s addr=%s", name, addr)
	metrics.SetBackend(b)

	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush: %v", err)
		}
	}
}
