// Command tabimport runs import jobs: each job reads a JSON or CSV source,
// decodes it into a point table according to its field schema and renders
// the table to a PLY file or a SQL table.
//
// Jobs come from job config files (-job, -list) or from an ad-hoc source
// given on the command line (-input with -fields).
//
// Exit codes: 0 when every job succeeded, 2 when the worst job outcome was a
// partial failure, 1 on any failure or invalid job.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"tabimport/internal/config"
	"tabimport/internal/datasource/file"
	"tabimport/internal/importer"
	"tabimport/internal/render"
	"tabimport/internal/schema"
)

// listFlag collects a repeatable, comma-separated flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			*l = append(*l, p)
		}
	}
	return nil
}

type cliOptions struct {
	jobs     listFlag
	list     string
	validate bool
	verbose  bool
	parallel int

	// ad-hoc job
	input    string
	fields   string
	format   string
	arrayKey string
	comma    string
	skip     int
	encoding string
	out      string

	metricsBackend string
	pushGatewayURL string
	ddAddr         string
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	var o cliOptions
	fs := flag.NewFlagSet("tabimport", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.Var(&o.jobs, "job", "job config JSON path (repeatable or comma-separated)")
	fs.StringVar(&o.list, "list", "", "file listing job config paths, one per line")
	fs.BoolVar(&o.validate, "validate", false, "validate the jobs and exit")
	fs.BoolVar(&o.verbose, "v", false, "enable verbose logs")
	fs.IntVar(&o.parallel, "parallel", 1, "number of jobs run concurrently")

	fs.StringVar(&o.input, "input", "", "ad-hoc source: file path or http(s) URL")
	fs.StringVar(&o.fields, "fields", "", `ad-hoc field schema, e.g. "age:int,female:bool"`)
	fs.StringVar(&o.format, "format", "", "ad-hoc format json|csv (default: from extension)")
	fs.StringVar(&o.arrayKey, "array-key", "", "ad-hoc JSON member holding the records")
	fs.StringVar(&o.comma, "comma", "", "ad-hoc CSV delimiter")
	fs.IntVar(&o.skip, "skip", 0, "ad-hoc CSV lines to skip before the header")
	fs.StringVar(&o.encoding, "encoding", "", "ad-hoc text encoding (default: per format)")
	fs.StringVar(&o.out, "out", "", "ad-hoc PLY output path (default: no output)")

	fs.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: pushgateway, datadog or none (overrides env METRICS_BACKEND)")
	fs.StringVar(&o.pushGatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	fs.StringVar(&o.ddAddr, "dd-addr", "", "DogStatsD address (overrides env DD_AGENT_ADDR)")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if len(o.jobs) == 0 && o.list == "" && o.input == "" {
		return o, errors.New("no jobs: use -job, -list or -input")
	}
	if o.parallel < 1 {
		o.parallel = 1
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fatalf("%v", err)
	}
	if !o.verbose {
		log.SetOutput(io.Discard)
	}
	os.Exit(run(context.Background(), o, os.Stdout))
}

// run loads, validates and executes the jobs and returns the exit code.
func run(ctx context.Context, o cliOptions, stdout io.Writer) int {
	jobs, err := loadJobs(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	invalid := false
	for _, j := range jobs {
		for _, iss := range config.ValidateJob(j) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", jobLabel(j), iss.Error())
			if iss.Severity == config.SeverityError {
				invalid = true
			}
		}
	}
	if invalid {
		return 1
	}
	if o.validate {
		fmt.Fprintf(stdout, "%d job(s) valid\n", len(jobs))
		return 0
	}

	flush := setupMetrics(o)
	defer flush()

	start := time.Now()
	lines := make([]string, len(jobs))
	codes := make([]int, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallel)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			lines[i], codes[i] = runJob(gctx, j)
			return nil
		})
	}
	_ = g.Wait()

	code := 0
	for i, line := range lines {
		fmt.Fprintln(stdout, line)
		if codes[i] == 1 || (codes[i] == 2 && code == 0) {
			code = codes[i]
		}
	}
	log.Printf("tabimport: %d job(s) in %s", len(jobs), time.Since(start).Truncate(time.Millisecond))
	return code
}

// runJob imports one job and renders its table when anything was imported.
// It returns the user-facing report line and the job's exit code.
func runJob(ctx context.Context, j config.Job) (string, int) {
	res, err := importer.Run(ctx, j)
	if err != nil {
		return fmt.Sprintf("%s: error: %v", jobLabel(j), err), 1
	}

	line := fmt.Sprintf("%s: %s", res.Name, res.Report)
	code := 0
	switch res.Report.Outcome {
	case importer.Failure:
		return line, 1
	case importer.PartialFailure:
		code = 2
	}

	if render.Enabled(j.Output) {
		tgt, err := render.Render(ctx, j.Output, res.Name, res.Report.RunID, res.Table)
		if err != nil {
			return fmt.Sprintf("%s\n%s: error: %v", line, res.Name, err), 1
		}
		line += fmt.Sprintf(" -> %s %s (%d rows)", tgt.Kind, tgt.Location, tgt.Rows)
	}
	return line, code
}

func loadJobs(o cliOptions) ([]config.Job, error) {
	paths := append([]string(nil), o.jobs...)
	if o.list != "" {
		listed, err := file.ReadList(o.list)
		if err != nil {
			return nil, err
		}
		paths = append(paths, listed...)
	}

	var jobs []config.Job
	for _, p := range paths {
		j, err := config.Load(p)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}

	if o.input != "" {
		j, err := adHocJob(o)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// adHocJob builds a job from the -input family of flags.
func adHocJob(o cliOptions) (config.Job, error) {
	s, err := schema.Parse(o.fields)
	if err != nil {
		return config.Job{}, fmt.Errorf("-fields: %w", err)
	}

	var j config.Job
	if strings.HasPrefix(o.input, "http://") || strings.HasPrefix(o.input, "https://") {
		j.Source = config.Source{Kind: "http", HTTP: config.SourceHTTP{URL: o.input}}
	} else {
		j.Source = config.Source{Kind: "file", File: config.SourceFile{Path: o.input}}
	}
	j.Source.Encoding = o.encoding

	opts := config.Options{}
	if o.arrayKey != "" {
		opts["array_key"] = o.arrayKey
	}
	if o.comma != "" {
		opts["comma"] = o.comma
	}
	if o.skip > 0 {
		opts["skip_lines"] = o.skip
	}
	j.Parser = config.Parser{Kind: o.format, Options: opts}

	for _, f := range s {
		j.Fields = append(j.Fields, config.FieldSpec{Name: f.Name, Type: f.Type.String()})
	}
	if o.out != "" {
		j.Output = config.Output{Kind: "ply", Path: o.out}
	}
	return j, nil
}

func jobLabel(j config.Job) string {
	if j.Name != "" {
		return j.Name
	}
	return j.Source.Location()
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
