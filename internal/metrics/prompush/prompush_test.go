package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"tabimport/internal/metrics"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func newBackend(t testing.TB) *Backend {
	t.Helper()
	b, err := NewBackend("", "http://pushgateway.invalid:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	return b
}

/*
TestNewBackend_RequiresURL checks the only construction error.
*/
func TestNewBackend_RequiresURL(t *testing.T) {
	t.Parallel()

	if b, err := NewBackend("tabimport", ""); err == nil || b != nil {
		t.Fatalf("NewBackend without URL = %v, %v", b, err)
	}
}

/*
TestIncCounter routes the run layer's counters by metric name and keeps
import jobs apart through the import_job label.
*/
func TestIncCounter(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.IncCounter(metrics.RunsTotal, 1, metrics.Labels{"job": "people", "outcome": "failure"})
	b.IncCounter(metrics.RunsTotal, 1, metrics.Labels{"job": "people", "outcome": "failure"})
	b.IncCounter(metrics.RunsTotal, 1, metrics.Labels{"job": "towns", "outcome": "failure"})
	b.IncCounter(metrics.RecordsTotal, 41, metrics.Labels{"job": "towns", "kind": metrics.KindImported})
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"job": "towns", "step": "render", "status": "success"})
	b.IncCounter("unrelated_total", 9, metrics.Labels{"job": "towns"})

	tests := []struct {
		name   string
		values []string
		want   float64
	}{
		{metrics.RunsTotal, []string{"people", "failure"}, 2},
		{metrics.RunsTotal, []string{"towns", "failure"}, 1},
		{metrics.RunsTotal, []string{"towns", "success"}, 0},
		{metrics.RecordsTotal, []string{"towns", metrics.KindImported}, 41},
		{metrics.StepTotal, []string{"towns", "render", "success"}, 1},
	}
	for _, tt := range tests {
		if got := counterValue(t, b.counters[tt.name].WithLabelValues(tt.values...)); got != tt.want {
			t.Errorf("%s%v = %v; want %v", tt.name, tt.values, got, tt.want)
		}
	}
	if len(b.counters) != 3 {
		t.Fatalf("counters = %d; unknown names must not register new ones", len(b.counters))
	}
}

/*
TestObserveHistogram checks that step durations land in the summary and that
other names are ignored.
*/
func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	l := metrics.Labels{"job": "people", "step": "import", "status": "success"}
	b.ObserveHistogram(metrics.StepDuration, 0.25, l)
	b.ObserveHistogram(metrics.StepDuration, 0.5, l)
	b.ObserveHistogram("other_seconds", 9, l)

	m := &dto.Metric{}
	if err := b.steps.WithLabelValues("people", "import", "success").(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if s := m.GetSummary(); s.GetSampleCount() != 2 || s.GetSampleSum() != 0.75 {
		t.Fatalf("summary count=%d sum=%v; want 2, 0.75", s.GetSampleCount(), s.GetSampleSum())
	}

	(&Backend{}).ObserveHistogram(metrics.StepDuration, 1, l) // zero value is inert
}

/*
TestFlush pushes to a fake gateway and checks the grouping path and that the
body carries the import job label.
*/
func TestFlush(t *testing.T) {
	t.Parallel()

	type pushed struct {
		method, path, body string
	}
	got := make(chan pushed, 1)
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- pushed{r.Method, r.URL.Path, string(body)}
		w.WriteHeader(http.StatusOK)
	}))
	defer gw.Close()

	b, err := NewBackend("nightly", gw.URL)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter(metrics.RunsTotal, 1, metrics.Labels{"job": "people", "outcome": "success"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	p := <-got
	if p.method != http.MethodPut || p.path != "/metrics/job/nightly" {
		t.Fatalf("push = %s %s", p.method, p.path)
	}
	if !strings.Contains(p.body, "people") {
		t.Fatalf("push body does not carry the import job")
	}
}

/*
TestFlush_GatewayDown checks that a failed push is reported.
*/
func TestFlush_GatewayDown(t *testing.T) {
	t.Parallel()

	gw := httptest.NewServer(http.NotFoundHandler())
	url := gw.URL
	gw.Close()

	b, err := NewBackend("nightly", url)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if err := b.Flush(); err == nil || !strings.Contains(err.Error(), "prompush: push") {
		t.Fatalf("Flush = %v; want push error", err)
	}
	if err := (&Backend{}).Flush(); err != nil {
		t.Fatalf("zero Backend Flush = %v", err)
	}
}

func BenchmarkIncCounter(b *testing.B) {
	be := newBackend(b)
	l := metrics.Labels{"job": "people", "kind": metrics.KindImported}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		be.IncCounter(metrics.RecordsTotal, 1, l)
	}
}
