package mysql

import (
	"context"

	"tabimport/internal/storage"
	myddl "tabimport/internal/storage/mysql/ddl"
)

// open is the constructor behind the "mysql" kind; tests replace it.
var open = Open

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, err := open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
	storage.RegisterDDL("mysql", myddl.CreateTableSQL)
}
