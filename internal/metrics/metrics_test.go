package metrics

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
)

// recorder keeps every observation as "name{k=v,...} value".
type recorder struct {
	mu      sync.Mutex
	lines   []string
	flushes int
}

func (r *recorder) add(kind, name string, v float64, l Labels) {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k+"="+l[k])
	}
	sort.Strings(keys)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf("%s %s%v %g", kind, name, keys, v))
}

func (r *recorder) IncCounter(name string, d float64, l Labels)       { r.add("counter", name, d, l) }
func (r *recorder) ObserveHistogram(name string, v float64, l Labels) { r.add("hist", name, v, l) }
func (r *recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
	return nil
}

// install swaps in a recorder for the duration of a test.
func install(t *testing.T) *recorder {
	t.Helper()
	r := &recorder{}
	SetBackend(r)
	t.Cleanup(func() { SetBackend(nil) })
	return r
}

func expectLines(t *testing.T, r *recorder, want ...string) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lines) != len(want) {
		t.Fatalf("got %d observations:\n%q\nwant:\n%q", len(r.lines), r.lines, want)
	}
	for i := range want {
		if r.lines[i] != want[i] {
			t.Fatalf("observation %d = %q; want %q", i, r.lines[i], want[i])
		}
	}
}

/*
TestRecordStep checks the counter and duration of a successful and a failed
step. Tests in this file swap the global backend and do not run in parallel.
*/
func TestRecordStep(t *testing.T) {
	r := install(t)

	RecordStep("people", "import", nil, 2*time.Second)
	RecordStep("towns", "render", errors.New("disk full"), 1500*time.Millisecond)

	expectLines(t, r,
		"counter import_step_total[job=people status=success step=import] 1",
		"hist import_step_duration_seconds[job=people status=success step=import] 2",
		"counter import_step_total[job=towns status=failure step=render] 1",
		"hist import_step_duration_seconds[job=towns status=failure step=render] 1.5",
	)
}

/*
TestRecordRowAndRun checks the record and run counters and that empty
record counts are dropped.
*/
func TestRecordRowAndRun(t *testing.T) {
	r := install(t)

	RecordRow("people", KindImported, 3)
	RecordRow("people", KindRejected, 0)
	RecordRow("people", KindDiscarded, -1)
	RecordRow("towns", KindRendered, 5)
	RecordRun("towns", "partial_failure")

	expectLines(t, r,
		"counter import_records_total[job=people kind=imported] 3",
		"counter import_records_total[job=towns kind=rendered] 5",
		"counter import_runs_total[job=towns outcome=partial_failure] 1",
	)
}

/*
TestSetBackend checks Flush delegation, the no-op default restored by nil
and concurrent recording while the backend is swapped.
*/
func TestSetBackend(t *testing.T) {
	r := install(t)
	if err := Flush(); err != nil || r.flushes != 1 {
		t.Fatalf("Flush = %v, flushes = %d", err, r.flushes)
	}

	SetBackend(nil)
	RecordRun("ignored", "success")
	if err := Flush(); err != nil {
		t.Fatalf("nop Flush = %v", err)
	}
	if len(r.lines) != 0 || r.flushes != 1 {
		t.Fatalf("recorder saw calls after reset: %q", r.lines)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				SetBackend(&recorder{})
			}
			RecordRow(fmt.Sprintf("job-%d", i), KindImported, 1)
		}(i)
	}
	wg.Wait()
}
