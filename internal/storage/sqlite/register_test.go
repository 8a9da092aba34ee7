package sqlite

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tabimport/internal/schema"
	"tabimport/internal/storage"
)

/*
TestRegister_Factory verifies that storage.New("sqlite") goes through the
open hook with the caller's config and returns its error unchanged. It swaps
a package variable and therefore does not run in parallel.
*/
func TestRegister_Factory(t *testing.T) {
	orig := open
	defer func() { open = orig }()

	var got storage.Config
	fake := &Repository{table: "points"}
	open = func(_ context.Context, cfg storage.Config) (*Repository, error) {
		got = cfg
		return fake, nil
	}

	cfg := storage.Config{Kind: "sqlite", DSN: "file:points.db", Table: "main.points"}
	repo, err := storage.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if got != cfg {
		t.Fatalf("open saw %+v; want %+v", got, cfg)
	}
	if repo != storage.Repository(fake) {
		t.Fatalf("storage.New = %T; want the opened repository", repo)
	}
	repo.Close() // nil pool

	locked := errors.New("database is locked")
	open = func(context.Context, storage.Config) (*Repository, error) { return nil, locked }
	repo, err = storage.New(context.Background(), cfg)
	if !errors.Is(err, locked) || repo != nil {
		t.Fatalf("storage.New = %v, %v; want nil, %v", repo, err, locked)
	}
}

// execRecorder captures DDL passed to Exec.
type execRecorder struct {
	storage.Repository
	sql []string
}

func (e *execRecorder) Exec(_ context.Context, sql string) error {
	e.sql = append(e.sql, sql)
	return nil
}

/*
TestRegister_DDL verifies that storage.EnsureTable reaches the sqlite
dialect and that it rejects a schema with duplicate attribute names.
*/
func TestRegister_DDL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rec := &execRecorder{}
	s := schema.Schema{{Name: "age", Type: schema.Integer}}
	if err := storage.EnsureTable(ctx, "sqlite", rec, "points", s); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if len(rec.sql) != 1 || !strings.Contains(rec.sql[0], "\"age\" INTEGER") {
		t.Fatalf("sql = %q; want it to contain %q", rec.sql, "\"age\" INTEGER")
	}

	dup := schema.Schema{{Name: "a", Type: schema.Float}, {Name: "a", Type: schema.Integer}}
	if err := storage.EnsureTable(ctx, "sqlite", rec, "points", dup); err == nil {
		t.Fatalf("duplicate attributes: want error")
	}
}
