// Package mysql is the MySQL output. A batch becomes one multi-row INSERT,
// so a batch is either written whole or not at all.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"tabimport/internal/storage"
	myddl "tabimport/internal/storage/mysql/ddl"
)

// maxPlaceholders is the server's limit on bound parameters per statement.
const maxPlaceholders = 65535

// Repository writes into one point table of a MySQL database.
type Repository struct {
	db    *sql.DB
	table string
}

// Open parses cfg.DSN ("user:pw@tcp(host:3306)/db"), opens a pool and pings
// it. A malformed DSN fails before any network access.
func Open(ctx context.Context, cfg storage.Config) (*Repository, error) {
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: dsn: %w", err)
	}
	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, fmt.Errorf("mysql: connector: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: ping %s: %w", mc.Addr, err)
	}
	return &Repository{db: db, table: cfg.Table}, nil
}

// CopyFrom writes rows in one transaction, as few multi-row INSERTs as the
// placeholder limit allows. On error nothing is kept and the count is 0.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	parts, err := chunks(columns, rows)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	var total int64
	for _, part := range parts {
		stmt, args, err := r.insert(columns, part)
		if err != nil {
			return 0, err
		}
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return 0, fmt.Errorf("mysql: insert into %s: %w", r.table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("mysql: rows affected: %w", err)
		}
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return total, nil
}

// chunks splits rows so that no statement binds more than maxPlaceholders
// values.
func chunks(columns []string, rows [][]any) ([][][]any, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("mysql: no columns")
	}
	if len(columns) > maxPlaceholders {
		return nil, fmt.Errorf("mysql: %d columns exceed the %d placeholder limit", len(columns), maxPlaceholders)
	}
	per := maxPlaceholders / len(columns)
	out := make([][][]any, 0, (len(rows)+per-1)/per)
	for len(rows) > per {
		out = append(out, rows[:per])
		rows = rows[per:]
	}
	return append(out, rows), nil
}

// insert renders the statement for rows and flattens their values.
func (r *Repository) insert(columns []string, rows [][]any) (string, []any, error) {
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("mysql: no columns")
	}
	if n := len(columns) * len(rows); n > maxPlaceholders {
		return "", nil, fmt.Errorf("mysql: batch needs %d placeholders, limit is %d", n, maxPlaceholders)
	}
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mysql: row %d has %d values for %d columns", i, len(row), len(columns))
		}
		args = append(args, row...)
	}
	return myddl.Dialect.Insert(r.table, columns, len(rows)), args, nil
}

// Exec runs one statement; blank input is a no-op.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// Close releases the pool.
func (r *Repository) Close() {
	if r.db != nil {
		_ = r.db.Close()
	}
}
