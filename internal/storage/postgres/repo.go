// Package postgres is the Postgres output. Batches go through COPY FROM
// STDIN on a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tabimport/internal/storage"
)

// Repository writes into one point table of a Postgres database.
type Repository struct {
	pool  *pgxpool.Pool
	table pgx.Identifier
}

// Open builds a pool for cfg.DSN. Connections are made lazily, so a
// reachable server is first required by the first statement.
func Open(ctx context.Context, cfg storage.Config) (*Repository, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("postgres: pool: %w", err)
	}
	return &Repository{pool: pool, table: identifier(cfg.Table)}, nil
}

// identifier turns "analytics.points" into {"analytics", "points"}.
func identifier(fqn string) pgx.Identifier {
	var id pgx.Identifier
	for _, p := range strings.Split(fqn, ".") {
		if p = strings.TrimSpace(p); p != "" {
			id = append(id, p)
		}
	}
	return id
}

// CopyFrom streams rows into the point table.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, r.table, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("postgres: copy into %s: %w", r.table.Sanitize(), describe(err))
	}
	return n, nil
}

// describe keeps the server's detail line, which names the offending key or
// value, next to the SQLSTATE.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%s: %s (SQLSTATE %s)", pgErr.Message, pgErr.Detail, pgErr.Code)
	}
	return err
}

// Exec runs one statement.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if _, err := r.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("postgres: exec: %w", describe(err))
	}
	return nil
}

// Close drains the pool.
func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}
