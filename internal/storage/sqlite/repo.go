// Package sqlite is the SQLite output: the default local SQL sink for point
// tables, backed by the pure-Go modernc driver. Each batch is inserted row
// by row through one prepared statement inside a transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tabimport/internal/storage"
	sqliteddl "tabimport/internal/storage/sqlite/ddl"
)

// Repository writes into one point table of a SQLite database.
type Repository struct {
	db    *sql.DB
	table string
}

// Open connects to cfg.DSN, which is a path ("points.db"), a URI
// ("file:points.db?_pragma=busy_timeout(5000)") or ":memory:".
//
// An in-memory database lives and dies with its connection, so the pool is
// pinned to a single connection for those DSNs.
func Open(ctx context.Context, cfg storage.Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: empty DSN")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if inMemory(cfg.DSN) {
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", cfg.DSN, err)
	}
	return &Repository{db: db, table: cfg.Table}, nil
}

func inMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// CopyFrom inserts rows in one transaction. Nothing is kept when a row
// fails, so the count is 0 on every error.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: no columns")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	stmt, err := tx.PrepareContext(ctx, sqliteddl.Dialect.Insert(r.table, columns, 1))
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert into %s: %w", r.table, err)
	}
	defer stmt.Close()

	var n int64
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("sqlite: row %d has %d values for %d columns", i, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("sqlite: insert row %d: %w", i, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return n, nil
}

// Exec runs one statement; blank input is a no-op.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// Close releases the pool.
func (r *Repository) Close() {
	if r.db != nil {
		_ = r.db.Close()
	}
}
