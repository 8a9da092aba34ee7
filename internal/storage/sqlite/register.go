package sqlite

import (
	"context"

	"tabimport/internal/storage"
	sqliteddl "tabimport/internal/storage/sqlite/ddl"
)

// open is swapped by tests that must not touch a database.
var open = Open

var _ storage.Repository = (*Repository)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, err := open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
	storage.RegisterDDL("sqlite", sqliteddl.CreateTableSQL)
}
