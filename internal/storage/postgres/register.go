package postgres

import (
	"context"

	"tabimport/internal/storage"
	pgddl "tabimport/internal/storage/postgres/ddl"
)

var open = Open // test hook

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, err := open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
	storage.RegisterDDL("postgres", pgddl.CreateTableSQL)
}
