// Package webui serves the schema probe over HTTP: an HTML form at "/", the
// same form posted to "/probe", and a text API at "/api/probe" for scripts.
//
// Only http(s) locations are probed. The server never reads local files.
package webui

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"tabimport/internal/probe"
)

//go:embed index.tmpl.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

// Config controls server startup.
type Config struct {
	Addr string
}

// Server routes the form and the API.
type Server struct {
	addr string
	mux  *http.ServeMux
}

// NewServer builds the routes. Wrong methods get 405 from the mux.
func NewServer(cfg Config) *Server {
	s := &Server{addr: cfg.Addr, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /{$}", s.form)
	s.mux.HandleFunc("POST /probe", s.formResult)
	s.mux.HandleFunc("GET /api/probe", s.api)
	return s
}

// ListenAndServe blocks serving cfg.Addr.
func (s *Server) ListenAndServe() error {
	hs := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return hs.ListenAndServe()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// query is one probe call as typed into the form or the API query string.
type query struct {
	Location string
	ArrayKey string
	Comma    string
	Skip     int
	Bytes    int
	Name     string
	Mode     string
	DDLKind  string
	Table    string
}

// page is what the template renders.
type page struct {
	query
	ResultText string
}

func readQuery(v url.Values) query {
	field := func(k string) string { return strings.TrimSpace(v.Get(k)) }
	num := func(k string) int {
		n, _ := strconv.Atoi(field(k))
		return n
	}
	return query{
		Location: field("location"),
		ArrayKey: field("array_key"),
		Comma:    v.Get("comma"),
		Skip:     num("skip"),
		Bytes:    num("bytes"),
		Name:     field("name"),
		Mode:     v.Get("mode"),
		DDLKind:  field("ddl"),
		Table:    field("table"),
	}
}

// delimiterNames are spellings that are awkward to type into a form.
var delimiterNames = map[string]string{
	`\t`:        "\t",
	"tab":       "\t",
	"semicolon": ";",
	"pipe":      "|",
}

func (q query) options() (probe.Options, error) {
	if !probe.IsURL(q.Location) {
		return probe.Options{}, errors.New("location must be an http(s) URL")
	}
	o := probe.Options{Location: q.Location, ArrayKey: q.ArrayKey, SkipLines: q.Skip, MaxBytes: q.Bytes}

	comma := q.Comma
	if named, ok := delimiterNames[strings.ToLower(comma)]; ok {
		comma = named
	}
	switch utf8.RuneCountInString(comma) {
	case 0:
	case 1:
		o.Comma, _ = utf8.DecodeRuneInString(comma)
	default:
		return probe.Options{}, fmt.Errorf("delimiter must be one character, got %q", q.Comma)
	}
	return o, nil
}

func (q query) output() probe.Output {
	out := probe.Output{Name: q.Name}
	switch q.Mode {
	case "compact":
		out.Compact = true
	case "ddl":
		out.DDLKind, out.Table = q.DDLKind, q.Table
	}
	return out
}

// probeText runs the probe and returns its warnings as "--" lines followed
// by the requested output.
func probeText(ctx context.Context, q query) (string, error) {
	opt, err := q.options()
	if err != nil {
		return "", err
	}
	res, err := probe.Probe(ctx, opt)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	for _, w := range res.Warnings() {
		fmt.Fprintf(&buf, "-- %s\n", w)
	}
	if err := probe.WriteOutput(&buf, res, opt, q.output()); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Server) form(w http.ResponseWriter, r *http.Request) {
	render(w, page{query: query{Mode: "job"}})
}

func (s *Server) formResult(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form: "+err.Error(), http.StatusBadRequest)
		return
	}
	q := readQuery(r.PostForm)
	text, err := probeText(r.Context(), q)
	if err != nil {
		log.Printf("webui: probe %s: %v", q.Location, err)
		http.Error(w, "probe failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	render(w, page{query: q, ResultText: text})
}

func (s *Server) api(w http.ResponseWriter, r *http.Request) {
	text, err := probeText(r.Context(), readQuery(r.URL.Query()))
	if err != nil {
		http.Error(w, "probe failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, text)
}

func render(w http.ResponseWriter, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, p); err != nil {
		log.Printf("webui: template: %v", err)
	}
}
