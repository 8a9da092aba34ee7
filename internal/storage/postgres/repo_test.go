package postgres

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"tabimport/internal/schema"
	"tabimport/internal/storage"
)

/*
TestIdentifier verifies the COPY target for plain and qualified names.
*/
func TestIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want pgx.Identifier
	}{
		{"points", pgx.Identifier{"points"}},
		{"analytics.points", pgx.Identifier{"analytics", "points"}},
		{"analytics..points", pgx.Identifier{"analytics", "points"}},
	}
	for _, tt := range tests {
		if got := identifier(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("identifier(%q)=%v; want %v", tt.in, got, tt.want)
		}
	}
}

/*
TestDescribe verifies that a server detail line is kept and that other
errors pass through.
*/
func TestDescribe(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{
		Code:    "23505",
		Message: "duplicate key value violates unique constraint",
		Detail:  "Key (run_id, point_index)=(r, 0) already exists.",
	}
	got := describe(pgErr).Error()
	if !strings.Contains(got, "already exists") || !strings.Contains(got, "SQLSTATE 23505") {
		t.Fatalf("describe = %q", got)
	}

	plain := errors.New("conn closed")
	if describe(plain) != plain {
		t.Fatalf("plain error was rewrapped")
	}
}

/*
TestOpen_Lazy verifies that Open only parses the DSN: a bad DSN fails, a
good one yields a pool without contacting a server.
*/
func TestOpen_Lazy(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), storage.Config{DSN: "postgres://h:notaport/db"}); err == nil {
		t.Fatalf("bad DSN: want error")
	}

	r, err := Open(context.Background(), storage.Config{DSN: "postgres://u@127.0.0.1:1/db", Table: "public.points"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	if n, err := r.CopyFrom(context.Background(), []string{"run_id"}, nil); err != nil || n != 0 {
		t.Fatalf("CopyFrom(nil) = %d, %v; want 0, nil", n, err)
	}
}

/*
TestRegister verifies the "postgres" kind in both registries. It swaps a
package variable and therefore does not run in parallel.
*/
func TestRegister(t *testing.T) {
	orig := open
	defer func() { open = orig }()

	open = func(_ context.Context, cfg storage.Config) (*Repository, error) {
		return &Repository{table: identifier(cfg.Table)}, nil
	}
	repo, err := storage.New(context.Background(), storage.Config{Kind: "postgres", Table: "a.b"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if r, ok := repo.(*Repository); !ok || !reflect.DeepEqual(r.table, pgx.Identifier{"a", "b"}) {
		t.Fatalf("storage.New = %#v", repo)
	}

	sql, err := storage.CreateTableSQL("postgres", "a.b", schema.Schema{{Name: "ok", Type: schema.Boolean}})
	if err != nil || !strings.Contains(sql, `"ok" BOOLEAN`) {
		t.Fatalf("CreateTableSQL = %q, %v", sql, err)
	}
}
