// Package metrics counts what import runs do: finished runs per outcome,
// records per kind and the duration of each run step. The engine never
// records anything; the run layer and the renderer do.
//
// A process has one Backend. Until SetBackend installs a real one
// (Pushgateway or DogStatsD, in the subpackages) every call is a no-op.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metric names, shared by every backend.
const (
	RunsTotal    = "import_runs_total"
	RecordsTotal = "import_records_total"
	StepTotal    = "import_step_total"
	StepDuration = "import_step_duration_seconds"
)

// Record kinds counted under RecordsTotal.
const (
	// KindImported counts records appended to the output table.
	KindImported = "imported"
	// KindRejected counts the record whose decode failure stopped an import.
	KindRejected = "rejected"
	// KindDiscarded counts JSON records decoded before a failure and then
	// dropped with the rest of the table.
	KindDiscarded = "discarded"
	// KindRendered counts points written by an output.
	KindRendered = "rendered"
)

// Labels are attached to one observation. Every metric carries "job".
type Labels map[string]string

// Backend receives observations.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush delivers buffered values; a push backend pushes here.
	Flush() error
}

type nop struct{}

func (nop) IncCounter(string, float64, Labels)       {}
func (nop) ObserveHistogram(string, float64, Labels) {}
func (nop) Flush() error                             { return nil }

// slot lets atomic.Value hold backends of different concrete types.
type slot struct{ Backend }

var current atomic.Value

func init() { current.Store(slot{nop{}}) }

func get() Backend { return current.Load().(slot).Backend }

// SetBackend installs b for the whole process. Jobs running in parallel
// may record while it is swapped. Nil restores the no-op backend.
func SetBackend(b Backend) {
	if b == nil {
		b = nop{}
	}
	current.Store(slot{b})
}

// Flush flushes the installed backend.
func Flush() error { return get().Flush() }

// RecordStep counts one execution of a run step ("import", "render") and
// its duration, labelled with status success or failure.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	l := Labels{"job": job, "step": step, "status": status}
	b := get()
	b.IncCounter(StepTotal, 1, l)
	b.ObserveHistogram(StepDuration, d.Seconds(), l)
}

// RecordRow adds n records of kind to the job's count. Zero and negative
// counts are dropped so a counter never appears with nothing in it.
func RecordRow(job, kind string, n int64) {
	if n <= 0 {
		return
	}
	get().IncCounter(RecordsTotal, float64(n), Labels{"job": job, "kind": kind})
}

// RecordRun counts one finished import by outcome ("success",
// "partial_failure", "failure").
func RecordRun(job, outcome string) {
	get().IncCounter(RunsTotal, 1, Labels{"job": job, "outcome": outcome})
}
