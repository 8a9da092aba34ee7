package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tabimport/internal/schema"
)

// DDLBuilder is a backend-specific function that derives the point table
// definition for a schema and renders it as the dialect's
// create-if-missing statement.
//
// Backends register their implementation for a storage kind at init time.
type DDLBuilder func(table string, s schema.Schema) (string, error)

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBuilder{}
)

// RegisterDDL registers (or replaces) the DDLBuilder for the given storage
// kind.
func RegisterDDL(kind string, fn DDLBuilder) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// CreateTableSQL renders the statement EnsureTable would issue for kind.
func CreateTableSQL(kind, table string, s schema.Schema) (string, error) {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no DDL builder registered for storage.kind=%q", kind)
	}
	sql, err := fn(table, s)
	if err != nil {
		return "", fmt.Errorf("infer table definition: %w", err)
	}
	return sql, nil
}

// EnsureTable creates the point table for s unless it exists. Callers stay
// backend-agnostic; they pass the already-open Repository.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string, s schema.Schema) error {
	sql, err := CreateTableSQL(kind, table, s)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, sql); err != nil {
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}

// DDLKinds returns the storage kinds with a registered DDLBuilder, sorted.
func DDLKinds() []string {
	ddlMu.RLock()
	defer ddlMu.RUnlock()
	out := make([]string, 0, len(ddlFns))
	for k := range ddlFns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
