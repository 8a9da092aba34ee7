package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"tabimport/internal/config"
	"tabimport/internal/datasource"
	"tabimport/internal/datasource/file"
	"tabimport/internal/datasource/httpds"
	"tabimport/internal/metrics"
	"tabimport/internal/parser"
	csvparser "tabimport/internal/parser/csv"
	jsonparser "tabimport/internal/parser/json"
	"tabimport/internal/schema"
	"tabimport/internal/table"
	"tabimport/internal/textenc"
)

// Result is one finished run of a job.
type Result struct {
	Name    string
	Source  string
	Format  parser.Format
	Table   *table.Table
	Report  Report
	Elapsed time.Duration
}

// Test seams.
var (
	newSourceFn = newSource
	nowFn       = time.Now
)

// ImportSource opens src, decodes its text with the named encoding (the
// format default when empty) and runs Import. The stream is closed on every
// path. A source that cannot be opened is reported as a source error.
func ImportSource(ctx context.Context, src datasource.Source, encoding string, f parser.Format, s schema.Schema, opt Options) (*table.Table, Report) {
	rc, err := src.Open(ctx)
	if err != nil {
		return empty(s), fatal("cannot open source", &parser.SourceParseError{Format: f, Err: err})
	}
	defer rc.Close()

	def := textenc.DefaultJSON
	if f == parser.CSV {
		def = textenc.DefaultCSV
	}
	r, err := textenc.NewReader(rc, encoding, def)
	if err != nil {
		return empty(s), fatal("cannot decode source text", &parser.SourceParseError{Format: f, Err: err})
	}
	return Import(r, f, s, opt)
}

// Run executes one job: it validates the job, resolves the source and the
// format, imports, and records logs and metrics. The returned error covers
// problems that keep the import from starting (an invalid job, an
// extension that is neither .json nor .csv); everything after that is
// described by Result.Report.
func Run(ctx context.Context, j config.Job) (*Result, error) {
	issues := config.ValidateJob(j)
	for _, iss := range issues {
		if iss.Severity == config.SeverityWarning {
			log.Printf("import: job %s: %s", j.Name, iss.Error())
		}
	}
	if config.HasErrors(issues) {
		var msgs []string
		for _, iss := range issues {
			if iss.Severity == config.SeverityError {
				msgs = append(msgs, iss.Error())
			}
		}
		return nil, fmt.Errorf("import: invalid job: %s", strings.Join(msgs, "; "))
	}

	s, err := j.Schema()
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	src := newSourceFn(j.Source)
	f, err := formatOf(j.Parser, src.Path())
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	name := j.Name
	if name == "" {
		name = src.Name()
	}
	opt := Options{
		JSON: jsonparser.FromConfigOptions(j.Parser.Options),
		CSV:  csvparser.FromConfigOptions(j.Parser.Options),
	}

	runID := uuid.NewString()
	log.Printf("import: job=%s run=%s source=%s format=%s fields=%s",
		name, runID, j.Source.Location(), f, s)

	start := nowFn()
	t, rep := ImportSource(ctx, src, j.Source.Encoding, f, s, opt)
	elapsed := nowFn().Sub(start)
	rep.RunID = runID

	recordRun(name, rep, elapsed)
	logReport(name, rep, t, elapsed)

	return &Result{
		Name:    name,
		Source:  j.Source.Location(),
		Format:  f,
		Table:   t,
		Report:  rep,
		Elapsed: elapsed,
	}, nil
}

func newSource(s config.Source) datasource.Located {
	if s.Kind == "http" {
		c := httpds.NewClient(httpds.Config{
			MaxRetries:         s.HTTP.MaxRetries,
			InsecureSkipVerify: s.HTTP.InsecureSkipVerify,
		})
		return httpds.NewSource(c, s.HTTP.URL)
	}
	return file.NewLocal(s.File.Path)
}

// formatOf prefers an explicit parser kind and otherwise infers the format
// from the extension of path.
func formatOf(p config.Parser, path string) (parser.Format, error) {
	if strings.TrimSpace(p.Kind) != "" {
		return parser.ParseFormat(p.Kind)
	}
	return parser.FormatFromPath(path)
}

func recordRun(job string, rep Report, d time.Duration) {
	var stepErr error
	if rep.Outcome != Success {
		stepErr = errors.New(rep.Outcome.String())
	}
	metrics.RecordStep(job, "import", stepErr, d)
	metrics.RecordRow(job, metrics.KindImported, int64(rep.RecordsImported))

	var rerr *RecordError
	if errors.As(rep.Err, &rerr) {
		metrics.RecordRow(job, metrics.KindRejected, 1)
		if rep.Outcome == Failure && rerr.Format == parser.JSON {
			metrics.RecordRow(job, metrics.KindDiscarded, int64(rerr.Index))
		}
	}
	metrics.RecordRun(job, rep.Outcome.String())
}

func logReport(job string, rep Report, t *table.Table, d time.Duration) {
	log.Printf("import: job=%s run=%s outcome=%s records=%d fingerprint=%016x elapsed=%s",
		job, rep.RunID, rep.Outcome, rep.RecordsImported, t.Fingerprint(), d.Truncate(time.Millisecond))
	if rep.Err != nil {
		log.Printf("import: job=%s %s: %s", job, rep.ErrorKind, rep.ErrorDetail)
	}
}

// compile-time checks
var (
	_ datasource.Located = (*file.Local)(nil)
	_ datasource.Located = (*httpds.Source)(nil)
)
