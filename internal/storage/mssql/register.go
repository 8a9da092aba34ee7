package mssql

import (
	"context"

	"tabimport/internal/storage"
	msddl "tabimport/internal/storage/mssql/ddl"
)

var open = Open

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, err := open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
	storage.RegisterDDL("mssql", msddl.CreateTableSQL)
}
