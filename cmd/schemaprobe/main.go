// Command schemaprobe samples a JSON or CSV source and prints a starter job
// config for tabimport: the source, the parser options and one field per
// column whose values all read as a number or a boolean.
//
// Usage:
//
//	schemaprobe -location data/people.json
//	schemaprobe -location https://example.com/export.csv -comma ';' -compact
//	schemaprobe -location data/people.json -ddl postgres -table public.people
//	schemaprobe -serve :8080
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"unicode/utf8"

	"tabimport/internal/probe"
	_ "tabimport/internal/storage/all" // register DDL builders
	"tabimport/internal/webui"
)

type cliOptions struct {
	probe   probe.Options
	out     probe.Output
	serve   string
	verbose bool
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	var (
		o     cliOptions
		comma string
	)
	fs := flag.NewFlagSet("schemaprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.probe.Location, "location", "", "file path or http(s) URL to sample")
	fs.StringVar(&o.probe.Format, "format", "", "json|csv (default: from extension)")
	fs.StringVar(&o.probe.ArrayKey, "array-key", "", "JSON member holding the records (default: first array)")
	fs.StringVar(&comma, "comma", ",", "CSV delimiter")
	fs.IntVar(&o.probe.SkipLines, "skip", 0, "CSV lines to skip before the header")
	fs.StringVar(&o.probe.Encoding, "encoding", "", "text encoding (default: per format)")
	fs.IntVar(&o.probe.MaxBytes, "max-bytes", probe.DefaultMaxBytes, "bytes to sample")
	fs.IntVar(&o.probe.MaxRecords, "max-records", probe.DefaultMaxRecords, "records to inspect")
	fs.BoolVar(&o.probe.Insecure, "insecure", false, "skip TLS verification")
	fs.StringVar(&o.out.Name, "name", "", "job name (default: normalized file name)")
	fs.BoolVar(&o.out.Compact, "compact", false, "print only the compact field schema")
	fs.StringVar(&o.out.DDLKind, "ddl", "", "print the point table DDL for a SQL kind instead of the job")
	fs.StringVar(&o.out.Table, "table", "", "table name for -ddl (default: job name)")
	fs.StringVar(&o.serve, "serve", "", "serve the probe web UI on this address instead")
	fs.BoolVar(&o.verbose, "v", false, "enable verbose logs")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.serve != "" {
		return o, nil
	}
	if o.probe.Location == "" {
		return o, errors.New("-location is required")
	}
	if utf8.RuneCountInString(comma) != 1 {
		return o, fmt.Errorf("-comma must be exactly one character, got %q", comma)
	}
	o.probe.Comma, _ = utf8.DecodeRuneInString(comma)
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

	if o.serve != "" {
		srv := webui.NewServer(webui.Config{Addr: o.serve})
		log.Printf("schemaprobe: listening on %s", o.serve)
		if err := srv.ListenAndServe(); err != nil {
			log.Fatal(err)
		}
		return
	}

	if !o.verbose {
		log.SetOutput(io.Discard)
	}
	if err := run(context.Background(), o, os.Stdout, os.Stderr); err != nil {
		fatalf("%v", err)
	}
}

func run(ctx context.Context, o cliOptions, stdout, stderr io.Writer) error {
	res, err := probe.Probe(ctx, o.probe)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings() {
		fmt.Fprintln(stderr, w)
	}
	return probe.WriteOutput(stdout, res, o.probe, o.out)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
