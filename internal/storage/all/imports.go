// Package all wires every built-in SQL backend into the storage factory.
//
// Importing it for side effects runs each backend's init, which registers
// its factory and DDL bootstrapper. The kinds made available are "sqlite",
// "postgres", "mssql" and "mysql".
//
// A binary that needs only a subset can import the backend packages
// directly instead.
package all

import (
	_ "tabimport/internal/storage/mssql"
	_ "tabimport/internal/storage/mysql"
	_ "tabimport/internal/storage/postgres"
	_ "tabimport/internal/storage/sqlite"
)
