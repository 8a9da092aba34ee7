// Package mssql is the SQL Server output. Batches use the bulk copy API of
// go-mssqldb inside a transaction.
package mssql

import (
	"context"
	"database/sql"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"tabimport/internal/storage"
)

// Repository writes into one point table of a SQL Server database.
type Repository struct {
	db    *sql.DB
	table string
}

// Open validates cfg.DSN ("sqlserver://user:pw@host?database=pts"), opens a
// pool and pings it.
func Open(ctx context.Context, cfg storage.Config) (*Repository, error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, fmt.Errorf("mssql: dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}
	return &Repository{db: db, table: cfg.Table}, nil
}

// CopyFrom bulk-loads rows. A failed batch is rolled back and reports zero
// rows.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (n int64, err error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			n = 0
		}
	}()

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(r.table, mssql.BulkOptions{Tablock: true}, columns...))
	if err != nil {
		return 0, fmt.Errorf("mssql: prepare bulk copy into %s: %w", r.table, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("mssql: bulk row %d: %w", i, err)
		}
	}
	// An Exec without arguments flushes the bulk copy.
	res, err := stmt.ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("mssql: bulk flush: %w", err)
	}
	if n, err = res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("mssql: rows affected: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit: %w", err)
	}
	return n, nil
}

// Exec runs one statement or guarded script.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("mssql: exec: %w", err)
	}
	return nil
}

// Close releases the pool.
func (r *Repository) Close() {
	if r.db != nil {
		_ = r.db.Close()
	}
}
