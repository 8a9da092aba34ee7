package probe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tabimport/internal/parser"
	"tabimport/internal/schema"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func columnByName(t *testing.T, r Result, name string) Column {
	t.Helper()
	for _, c := range r.Columns {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("column %q not found in %+v", name, r.Columns)
	return Column{}
}

/*
TestProbe_CSV samples a semicolon separated file and checks the inferred
types, the usable schema and the suggested job.
*/
func TestProbe_CSV(t *testing.T) {
	t.Parallel()

	p := writeFile(t, "Städte Liste.csv",
		"# export\nname;pop;area;capital\nBern;134794;51.6;true\nThun;43568;21;FALSE\n")

	opt := Options{Location: p, Comma: ';', SkipLines: 1}
	res, err := Probe(context.Background(), opt)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.Format != parser.CSV || res.Records != 2 || len(res.Columns) != 4 {
		t.Fatalf("format=%v records=%d columns=%+v", res.Format, res.Records, res.Columns)
	}
	if c := columnByName(t, res, "name"); c.Usable {
		t.Fatalf("name column should not be usable: %+v", c)
	}

	want := schema.Schema{
		{Name: "pop", Type: schema.Integer},
		{Name: "area", Type: schema.Float},
		{Name: "capital", Type: schema.Boolean},
	}
	if got := res.Schema(); got.String() != want.String() {
		t.Fatalf("Schema() = %s; want %s", got, want)
	}

	j := res.Job(opt, "")
	if j.Name != "stadte_liste" {
		t.Fatalf("job name = %q; want stadte_liste", j.Name)
	}
	if j.Parser.Kind != "csv" || j.Parser.Options.String("comma", "") != ";" || j.Parser.Options.Int("skip_lines", 0) != 1 {
		t.Fatalf("parser = %+v", j.Parser)
	}
	if j.Source.Kind != "file" || j.Source.File.Path != p {
		t.Fatalf("source = %+v", j.Source)
	}
	if j.Output.Kind != "ply" || j.Output.Path != filepath.Join(filepath.Dir(p), "stadte_liste.ply") {
		t.Fatalf("output = %+v", j.Output)
	}
	if len(j.Fields) != 3 || j.Fields[2].Type != "bool" {
		t.Fatalf("fields = %+v", j.Fields)
	}
}

/*
TestProbe_JSONDiscoversArray verifies that without an array key the first
array-valued member is used and that columns keep first-seen order.
*/
func TestProbe_JSONDiscoversArray(t *testing.T) {
	t.Parallel()

	p := writeFile(t, "people.json", `{
		"meta": {"version": [1, 2], "by": "x"},
		"count": 2,
		"rows": [
			{"c": true, "a": 1, "b": "x"},
			{"a": 2.5, "c": false, "d": null, "e": {"k": 1}}
		]
	}`)

	res, err := Probe(context.Background(), Options{Location: p})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.ArrayKey != "rows" || res.Records != 2 {
		t.Fatalf("array key=%q records=%d", res.ArrayKey, res.Records)
	}

	var names []string
	for _, c := range res.Columns {
		names = append(names, c.Name)
	}
	if got := strings.Join(names, ","); got != "a,b,c,d,e" {
		t.Fatalf("columns = %s; want a,b,c,d,e", got)
	}

	if c := columnByName(t, res, "a"); !c.Usable || c.Type != schema.Float || c.Present != 2 {
		t.Fatalf("a = %+v", c)
	}
	if c := columnByName(t, res, "c"); !c.Usable || c.Type != schema.Boolean {
		t.Fatalf("c = %+v", c)
	}
	for _, n := range []string{"b", "d", "e"} {
		if c := columnByName(t, res, n); c.Usable || c.Present != 1 {
			t.Fatalf("%s = %+v", n, c)
		}
	}

	j := res.Job(Options{Location: p}, "census")
	if j.Name != "census" || j.Parser.Options.String("array_key", "") != "rows" {
		t.Fatalf("job = %+v", j)
	}
}

/*
TestProbe_Truncated verifies that a sample cut in the middle of a record
still yields the complete records before the cut.
*/
func TestProbe_Truncated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		body string
		cut  string
	}{
		{
			name: "json",
			file: "a.json",
			body: `{"rows":[{"a":1},{"a":2},{"a":3333333}]}`,
			cut:  `{"rows":[{"a":1},{"a":2},{"a":33`,
		},
		{
			name: "csv",
			file: "a.csv",
			body: "a,b\n1,2\n3,4\n5,6\n",
			cut:  "a,b\n1,2\n3,4\n5,",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := writeFile(t, tt.file, tt.body)
			res, err := Probe(context.Background(), Options{Location: p, ArrayKey: "rows", MaxBytes: len(tt.cut)})
			if err != nil {
				t.Fatalf("Probe: %v", err)
			}
			if res.Records != 2 {
				t.Fatalf("records = %d; want 2", res.Records)
			}
			if c := columnByName(t, res, "a"); c.Type != schema.Integer || !c.Usable {
				t.Fatalf("a = %+v", c)
			}
		})
	}
}

/*
TestProbe_MaxRecords verifies the record cap.
*/
func TestProbe_MaxRecords(t *testing.T) {
	t.Parallel()

	p := writeFile(t, "a.csv", "a\n1\n2\nx\n")
	res, err := Probe(context.Background(), Options{Location: p, MaxRecords: 2})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if c := columnByName(t, res, "a"); res.Records != 2 || c.Type != schema.Integer {
		t.Fatalf("records=%d a=%+v", res.Records, c)
	}
}

/*
TestProbe_HTTP samples a remote CSV and infers the format from the URL path.
*/
func TestProbe_HTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "x,y\n1.5,2\n2.5,3\n")
	}))
	defer srv.Close()

	loc := srv.URL + "/exports/points.csv?rev=3"
	opt := Options{Location: loc}
	res, err := Probe(context.Background(), opt)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.Format != parser.CSV || res.Records != 2 {
		t.Fatalf("format=%v records=%d", res.Format, res.Records)
	}

	j := res.Job(opt, "")
	if j.Name != "points" || j.Source.Kind != "http" || j.Source.HTTP.URL != loc || j.Output.Kind != "" {
		t.Fatalf("job = %+v", j)
	}
}

/*
TestProbe_PeekSeam verifies that sampling goes through the overridable
peek function and receives the byte cap.
*/
func TestProbe_PeekSeam(t *testing.T) {
	orig := peekFn
	t.Cleanup(func() { peekFn = orig })

	var gotN int
	peekFn = func(_ context.Context, location string, n int, insecure bool) ([]byte, error) {
		gotN = n
		return []byte(`{"items":[{"v":1}]}`), nil
	}

	res, err := Probe(context.Background(), Options{Location: "https://example.com/x.json", ArrayKey: "items"})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if gotN != DefaultMaxBytes {
		t.Fatalf("n = %d; want %d", gotN, DefaultMaxBytes)
	}
	if len(res.Columns) != 1 || res.Columns[0].Type != schema.Integer {
		t.Fatalf("columns = %+v", res.Columns)
	}
}

/*
TestProbe_Errors covers inputs that cannot be probed.
*/
func TestProbe_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		body string
		opt  Options
		want string
	}{
		{name: "extension", file: "a.xlsx", body: "x", want: "unsupported extension"},
		{name: "no array", file: "a.json", body: `{"a":1,"b":{"c":2}}`, want: "no record array"},
		{name: "member not array", file: "a.json", body: `{"rows":{"a":1}}`, opt: Options{ArrayKey: "rows"}, want: "is not an array"},
		{name: "top level array", file: "a.json", body: `[{"a":1}]`, want: "top level"},
		{name: "empty csv", file: "a.csv", body: "", want: "no header row"},
		{name: "missing file", file: "", want: "sample"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opt := tt.opt
			if tt.file == "" {
				opt.Location = filepath.Join(t.TempDir(), "gone.csv")
			} else {
				opt.Location = writeFile(t, tt.file, tt.body)
			}
			_, err := Probe(context.Background(), opt)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v; want it to contain %q", err, tt.want)
			}
		})
	}
}
